package workflow

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpcl-dt/be-procurement/internal/config"
)

func TestStepsFor_DefaultChain(t *testing.T) {
	p := NewPolicy(nil)

	tests := []struct {
		name       string
		value      string
		wantLevels []int
	}{
		{"small value gets manager only", "500000", []int{1}},
		{"exactly 10 lakh stays at manager", "1000000", []int{1}},
		{"one paisa over 10 lakh adds cfo", "1000000.01", []int{1, 2}},
		{"mid value gets manager and cfo", "2000000", []int{1, 2}},
		{"exactly 5 crore stays at two levels", "50000000", []int{1, 2}},
		{"over 5 crore gets full chain", "60000000", []int{1, 2, 3}},
		{"zero value still gets manager", "0", []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps := p.StepsFor("IT_HARDWARE", decimal.RequireFromString(tt.value))
			levels := make([]int, len(steps))
			for i, s := range steps {
				levels[i] = s.Level
			}
			assert.Equal(t, tt.wantLevels, levels)
		})
	}
}

func TestStepsFor_ChainOrderAndApprovers(t *testing.T) {
	p := NewPolicy(nil)
	steps := p.StepsFor("SERVICES", decimal.NewFromInt(60_000_000))

	require.Len(t, steps, 3)
	assert.Equal(t, "dept.manager@hpcl.co.in", steps[0].ApproverID)
	assert.Equal(t, "cfo@hpcl.co.in", steps[1].ApproverID)
	assert.Equal(t, "board@hpcl.co.in", steps[2].ApproverID)
	assert.Equal(t, "Board of Directors", steps[2].ApproverName)
}

func TestStepsFor_CategoryOverride(t *testing.T) {
	threshold := decimal.NewFromInt(100_000)
	p := NewPolicy(map[string][]LevelRule{
		"CIVIL_WORKS": {
			{Level: 1, ApproverID: "site.engineer@hpcl.co.in", ApproverName: "Site Engineer"},
			{Level: 2, ApproverID: "projects.head@hpcl.co.in", ApproverName: "Projects Head", Threshold: &threshold},
		},
	})

	steps := p.StepsFor("CIVIL_WORKS", decimal.NewFromInt(50_000))
	require.Len(t, steps, 1)
	assert.Equal(t, "site.engineer@hpcl.co.in", steps[0].ApproverID)

	// Other categories still fall through to the default chain.
	steps = p.StepsFor("IT_HARDWARE", decimal.NewFromInt(2_000_000))
	require.Len(t, steps, 2)
	assert.Equal(t, "cfo@hpcl.co.in", steps[1].ApproverID)
}

func TestChainsFromConfig(t *testing.T) {
	chains, err := ChainsFromConfig(map[string][]config.ChainLevel{
		"SERVICES": {
			{Level: 1, ApproverID: "a@hpcl.co.in", ApproverName: "A"},
			{Level: 2, ApproverID: "b@hpcl.co.in", ApproverName: "B", Threshold: "250000"},
		},
	})
	require.NoError(t, err)
	require.Len(t, chains["SERVICES"], 2)
	assert.Nil(t, chains["SERVICES"][0].Threshold)
	assert.True(t, chains["SERVICES"][1].Threshold.Equal(decimal.NewFromInt(250_000)))
}

func TestChainsFromConfig_InvalidThreshold(t *testing.T) {
	_, err := ChainsFromConfig(map[string][]config.ChainLevel{
		"SERVICES": {{Level: 1, ApproverID: "a@hpcl.co.in", Threshold: "ten lakh"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid threshold")
}

func TestChainsFromConfig_Empty(t *testing.T) {
	chains, err := ChainsFromConfig(nil)
	require.NoError(t, err)
	assert.Nil(t, chains)
}

// Package workflow turns the tiered approval policy into data: a chain of
// level rules per category, each with an optional value threshold.
package workflow

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hpcl-dt/be-procurement/internal/config"
)

// LevelRule is one tier of an approval chain. A nil Threshold means the level
// is always instantiated; otherwise it is instantiated when the estimated
// value is strictly greater than the threshold.
type LevelRule struct {
	Level        int
	ApproverID   string
	ApproverName string
	Threshold    *decimal.Decimal
}

// Policy resolves the approval chain for a category. Categories without an
// override use the default three-tier chain.
type Policy struct {
	chains map[string][]LevelRule
	def    []LevelRule
}

// DefaultChain returns the built-in chain: department manager always, CFO
// above 10 lakh INR, board above 5 crore INR.
func DefaultChain() []LevelRule {
	cfoThreshold := decimal.NewFromInt(1_000_000)
	boardThreshold := decimal.NewFromInt(50_000_000)
	return []LevelRule{
		{Level: 1, ApproverID: "dept.manager@hpcl.co.in", ApproverName: "Department Manager"},
		{Level: 2, ApproverID: "cfo@hpcl.co.in", ApproverName: "Chief Financial Officer", Threshold: &cfoThreshold},
		{Level: 3, ApproverID: "board@hpcl.co.in", ApproverName: "Board of Directors", Threshold: &boardThreshold},
	}
}

// NewPolicy creates a policy with per-category overrides over the default chain.
func NewPolicy(overrides map[string][]LevelRule) *Policy {
	return &Policy{chains: overrides, def: DefaultChain()}
}

// ChainFor returns the full chain configured for a category.
func (p *Policy) ChainFor(category string) []LevelRule {
	if chain, ok := p.chains[category]; ok {
		return chain
	}
	return p.def
}

// StepsFor returns the levels to instantiate for a request, in chain order.
func (p *Policy) StepsFor(category string, estimatedValue decimal.Decimal) []LevelRule {
	var steps []LevelRule
	for _, lr := range p.ChainFor(category) {
		if lr.Threshold == nil || estimatedValue.GreaterThan(*lr.Threshold) {
			steps = append(steps, lr)
		}
	}
	return steps
}

// ChainsFromConfig converts configured chain overrides, validating thresholds.
func ChainsFromConfig(cfg map[string][]config.ChainLevel) (map[string][]LevelRule, error) {
	if len(cfg) == 0 {
		return nil, nil
	}
	chains := make(map[string][]LevelRule, len(cfg))
	for category, levels := range cfg {
		chain := make([]LevelRule, 0, len(levels))
		for _, lvl := range levels {
			lr := LevelRule{
				Level:        lvl.Level,
				ApproverID:   lvl.ApproverID,
				ApproverName: lvl.ApproverName,
			}
			if lvl.Threshold != "" {
				threshold, err := decimal.NewFromString(lvl.Threshold)
				if err != nil {
					return nil, fmt.Errorf("approval chain %q level %d: invalid threshold %q: %w",
						category, lvl.Level, lvl.Threshold, err)
				}
				lr.Threshold = &threshold
			}
			chain = append(chain, lr)
		}
		chains[category] = chain
	}
	return chains, nil
}

// Package rule evaluates stored compliance rules against purchase requests.
//
// A rule names a request field, a comparison operator and a string-encoded
// operand. Fields and operators form closed enumerations; anything outside
// them is silently inert so a misconfigured rule can never abort evaluation
// of the others.
package rule

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hpcl-dt/be-procurement/internal/model"
)

// Field is a purchase request field a rule may reference.
type Field int

const (
	FieldUnknown Field = iota
	FieldEstimatedValue
	FieldRequiredByDate
)

// ParseField maps a stored field name to a Field. Unrecognized names map to
// FieldUnknown, which never matches.
func ParseField(name string) Field {
	switch name {
	case "estimatedValueInr":
		return FieldEstimatedValue
	case "requiredByDate":
		return FieldRequiredByDate
	default:
		return FieldUnknown
	}
}

// Operator is a comparison operator.
type Operator int

const (
	OpUnknown Operator = iota
	OpGreater
	OpGreaterEqual
	OpLess
	OpLessEqual
	OpEqual
)

// ParseOperator maps a stored operator token to an Operator. Unrecognized
// tokens map to OpUnknown, which never matches.
func ParseOperator(s string) Operator {
	switch s {
	case ">":
		return OpGreater
	case ">=":
		return OpGreaterEqual
	case "<":
		return OpLess
	case "<=":
		return OpLessEqual
	case "==":
		return OpEqual
	default:
		return OpUnknown
	}
}

// compareDecimal applies op to exact decimal values.
func (op Operator) compareDecimal(field, operand decimal.Decimal) bool {
	c := field.Cmp(operand)
	switch op {
	case OpGreater:
		return c > 0
	case OpGreaterEqual:
		return c >= 0
	case OpLess:
		return c < 0
	case OpLessEqual:
		return c <= 0
	case OpEqual:
		return c == 0
	default:
		return false
	}
}

// compareDate applies op to calendar dates. Equality is not a supported date
// comparison; OpEqual never matches.
func (op Operator) compareDate(field, operand time.Time) bool {
	switch op {
	case OpLess:
		return field.Before(operand)
	case OpLessEqual:
		return !field.After(operand)
	case OpGreater:
		return field.After(operand)
	case OpGreaterEqual:
		return !field.Before(operand)
	default:
		return false
	}
}

// currentDatePrefix marks a relative date operand: CURRENT_DATE or
// CURRENT_DATE+<days>.
const currentDatePrefix = "CURRENT_DATE"

// parseDateOperand resolves a rule's date operand against today. The operand
// is either an ISO date literal or a CURRENT_DATE[+N] expression.
func parseDateOperand(value string, today time.Time) (time.Time, bool) {
	if strings.HasPrefix(value, currentDatePrefix) {
		date := truncateToDate(today)
		rest := value[len(currentDatePrefix):]
		if rest == "" {
			return date, true
		}
		if !strings.HasPrefix(rest, "+") {
			return time.Time{}, false
		}
		days, err := strconv.Atoi(rest[1:])
		if err != nil {
			return time.Time{}, false
		}
		return date.AddDate(0, 0, days), true
	}

	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Matches reports whether the rule's condition holds against the request.
// A match flags the request (is reported as a violation). Null fields,
// unknown field names and malformed operands all evaluate to no-match.
func Matches(r model.Rule, pr model.PurchaseRequest, today time.Time) bool {
	op := ParseOperator(r.Operator)

	switch ParseField(r.FieldName) {
	case FieldEstimatedValue:
		if pr.EstimatedValueInr == nil {
			return false
		}
		operand, err := decimal.NewFromString(r.RuleValue)
		if err != nil {
			return false
		}
		return op.compareDecimal(*pr.EstimatedValueInr, operand)

	case FieldRequiredByDate:
		if pr.RequiredByDate == nil {
			return false
		}
		operand, ok := parseDateOperand(r.RuleValue, today)
		if !ok {
			return false
		}
		return op.compareDate(truncateToDate(*pr.RequiredByDate), operand)

	default:
		return false
	}
}

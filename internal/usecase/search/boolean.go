package search

import (
	"strings"

	"github.com/kailas-cloud/reportdex/internal/domain"
	"github.com/kailas-cloud/reportdex/internal/domain/search/field"
	"github.com/kailas-cloud/reportdex/internal/domain/search/match"
	"github.com/kailas-cloud/reportdex/internal/domain/search/mode"
	"github.com/kailas-cloud/reportdex/internal/domain/search/query"
)

// Operator joins the two operands of a boolean expression.
type Operator string

// Supported operators. Matching is case-insensitive.
const (
	And Operator = "AND"
	Or  Operator = "OR"
	Not Operator = "NOT"
)

const booleanBoost = 1.0

type operand struct {
	field string
	value string
}

// parseOperand splits "field:value" on the first colon; the value may contain colons.
func parseOperand(s string) (operand, error) {
	name, value, ok := strings.Cut(s, ":")
	if !ok {
		return operand{}, domain.NewMalformedQuery("operand %q is not field:value", s)
	}
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if name == "" || value == "" {
		return operand{}, domain.NewMalformedQuery("operand %q has an empty field or value", s)
	}
	if !field.IsValidName(name) {
		return operand{}, domain.NewMalformedQuery("invalid field name %q", name)
	}
	return operand{field: name, value: value}, nil
}

// CompileBoolean compiles [op1, operator, op2]. The left operand is matched fuzzily and
// the right one as a plain match:
//
//	AND -> all_of(fuzzy(op1), plain(op2))
//	OR  -> any_of(fuzzy(op1), plain(op2)), at least one
//	NOT -> all_of(fuzzy(op1)) excluding plain(op2)
func CompileBoolean(operands []string) (query.Query, error) {
	if len(operands) != 3 {
		return query.Query{}, domain.NewMalformedQuery("expression needs 3 elements, got %d", len(operands))
	}

	left, err := parseOperand(operands[0])
	if err != nil {
		return query.Query{}, err
	}
	right, err := parseOperand(operands[2])
	if err != nil {
		return query.Query{}, err
	}

	l := query.NewClause(left.field, match.Fuzzy, left.value, booleanBoost)
	r := query.NewClause(right.field, match.Plain, right.value, booleanBoost)

	switch Operator(strings.ToUpper(strings.TrimSpace(operands[1]))) {
	case And:
		return query.NewAllOf(mode.Boolean, []query.Clause{l, r}, nil), nil
	case Or:
		return query.NewAnyOf(mode.Boolean, []query.Clause{l, r}, 1), nil
	case Not:
		return query.NewAllOf(mode.Boolean, []query.Clause{l}, []query.Clause{r}), nil
	default:
		return query.Query{}, domain.NewMalformedQuery("unknown operator %q", operands[1])
	}
}

// SplitExpression tokenizes "field:value OP field:value" typed as one line.
// Values with spaces must use the array form.
func SplitExpression(expr string) []string {
	return strings.Fields(expr)
}

package vectorstore

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Operator is a leaf predicate operator.
type Operator string

const (
	OpEquals           Operator = "equals"
	OpNotEquals        Operator = "not_equals"
	OpGreaterOrEqual   Operator = "greater_or_equal"
	OpLessOrEqual      Operator = "less_or_equal"
	OpInSet            Operator = "in_set"
)

// listColumns holds delimiter-joined multi-valued columns (decorators,
// imports); equals/in_set against them match list membership, not the raw
// joined string.
var listColumns = map[string]bool{
	"decorators": true,
	"imports":    true,
}

const listDelimiter = "\x1f"

// Filter is a leaf predicate or an all()/any() composite.
type Filter struct {
	Key      string
	Operator Operator
	Value    any

	All []Filter
	Any []Filter
}

// Leaf builds a leaf predicate.
func Leaf(key string, op Operator, value any) Filter {
	return Filter{Key: key, Operator: op, Value: value}
}

// All builds an AND composite.
func All(filters ...Filter) Filter { return Filter{All: filters} }

// Any builds an OR composite.
func Any(filters ...Filter) Filter { return Filter{Any: filters} }

func (f Filter) isLeaf() bool { return f.Key != "" }

// toSQL translates a Filter into a squirrel Sqlizer usable in a WHERE clause.
func toSQL(f Filter) (sq.Sqlizer, error) {
	switch {
	case f.isLeaf():
		return leafToSQL(f)
	case len(f.All) > 0:
		conj := sq.And{}
		for _, child := range f.All {
			s, err := toSQL(child)
			if err != nil {
				return nil, err
			}
			conj = append(conj, s)
		}
		return conj, nil
	case len(f.Any) > 0:
		disj := sq.Or{}
		for _, child := range f.Any {
			s, err := toSQL(child)
			if err != nil {
				return nil, err
			}
			disj = append(disj, s)
		}
		return disj, nil
	default:
		return sq.Expr("1 = 1"), nil
	}
}

func leafToSQL(f Filter) (sq.Sqlizer, error) {
	col := f.Key
	if listColumns[col] {
		return listLeafToSQL(col, f.Operator, f.Value)
	}

	switch f.Operator {
	case OpEquals:
		return sq.Eq{col: f.Value}, nil
	case OpNotEquals:
		return sq.NotEq{col: f.Value}, nil
	case OpGreaterOrEqual:
		return sq.GtOrEq{col: f.Value}, nil
	case OpLessOrEqual:
		return sq.LtOrEq{col: f.Value}, nil
	case OpInSet:
		values, ok := f.Value.([]any)
		if !ok {
			return nil, fmt.Errorf("in_set filter on %q requires a slice value", col)
		}
		return sq.Eq{col: values}, nil
	default:
		return nil, fmt.Errorf("unsupported filter operator %q", f.Operator)
	}
}

// listLeafToSQL matches a value's membership in a delimiter-joined column.
func listLeafToSQL(col string, op Operator, value any) (sq.Sqlizer, error) {
	switch op {
	case OpEquals:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("equals filter on %q requires a string value", col)
		}
		return sq.Like{col: wrapForLike(s)}, nil
	case OpInSet:
		values, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("in_set filter on %q requires a slice value", col)
		}
		disj := sq.Or{}
		for _, v := range values {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("in_set filter on %q requires string values", col)
			}
			disj = append(disj, sq.Like{col: wrapForLike(s)})
		}
		return disj, nil
	default:
		return nil, fmt.Errorf("operator %q is not supported on list column %q", op, col)
	}
}

func wrapForLike(s string) string {
	return "%" + listDelimiter + s + listDelimiter + "%"
}

// joinList serializes a multi-valued field the way it is stored in a
// list column: delimiter-wrapped so membership can be checked with LIKE
// without false positives on substrings.
func joinList(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return listDelimiter + strings.Join(values, listDelimiter) + listDelimiter
}

func splitList(joined string) []string {
	trimmed := strings.Trim(joined, listDelimiter)
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, listDelimiter)
}

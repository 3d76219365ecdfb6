package sheetsdb

import (
	"fmt"
)

type Op string

const (
	Eq Op = "="
	Lt Op = "<"
	Le Op = "<="
	Gt Op = ">"
	Ge Op = ">="
)

// Where is a single condition on a select/update/delete. Conditions are
// AND-ed; an empty condition list matches every row. '=' is legal for any
// scalar column, the ordered comparators only for number columns and JSON
// columns cannot be compared at all.
type Where struct {
	Column string
	Op     Op
	Value  any
}

func (w Where) validate(table string, schema Schema) error {
	ix := schema.Index(w.Column)
	if ix < 0 {
		return fmt.Errorf("table '%s' has no column '%s'", table, w.Column)
	}

	t := schema[ix].Type
	if t == TypeJSON {
		return fmt.Errorf("column '%s' is a json column and cannot be used in a where condition", w.Column)
	}

	switch w.Op {
	case Eq:
		return nil

	case Lt, Le, Gt, Ge:
		if t != TypeNumber {
			return fmt.Errorf("comparator '%s' is not legal for column '%s' of type '%s'", w.Op, w.Column, t)
		}
		return nil

	default:
		return fmt.Errorf("unrecognised comparator '%s'", w.Op)
	}
}

// matches evaluates a condition against a converted record. Conditions must
// have been validated against the schema beforehand.
func (w Where) matches(record Record, schema Schema) bool {
	t := schema[schema.Index(w.Column)].Type

	v := record[w.Column]
	if v == nil {
		return false
	}

	want, err := convert(w.Value, t)
	if err != nil || want == nil {
		return false
	}

	if t == TypeNumber {
		a := v.(float64)
		b := want.(float64)

		switch w.Op {
		case Eq:
			return a == b
		case Lt:
			return a < b
		case Le:
			return a <= b
		case Gt:
			return a > b
		case Ge:
			return a >= b
		}

		return false
	}

	return v == want
}

func validateWhere(table string, schema Schema, conds []Where) error {
	for _, w := range conds {
		if err := w.validate(table, schema); err != nil {
			return err
		}
	}

	return nil
}

func matchesAll(record Record, schema Schema, conds []Where) bool {
	for _, w := range conds {
		if !w.matches(record, schema) {
			return false
		}
	}

	return true
}

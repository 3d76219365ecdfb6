package commands

import (
	"fmt"
	"strings"

	"github.com/sheetsdb/sheetsdb"
)

// multiflag collects a repeatable string flag.
type multiflag []string

func (m *multiflag) String() string {
	return strings.Join(*m, ",")
}

func (m *multiflag) Set(v string) error {
	*m = append(*m, v)

	return nil
}

// parseWhere parses conditions of the form 'column=value', 'column<=value'
// etc. The value is kept as a string - the engine converts it to the
// column's type when matching.
func parseWhere(conditions []string) ([]sheetsdb.Where, error) {
	where := make([]sheetsdb.Where, 0, len(conditions))

	for _, condition := range conditions {
		w, err := parseCondition(condition)
		if err != nil {
			return nil, err
		}

		where = append(where, w)
	}

	return where, nil
}

func parseCondition(condition string) (sheetsdb.Where, error) {
	for _, op := range []sheetsdb.Op{sheetsdb.Le, sheetsdb.Ge, sheetsdb.Lt, sheetsdb.Gt, sheetsdb.Eq} {
		if ix := strings.Index(condition, string(op)); ix > 0 {
			return sheetsdb.Where{
				Column: strings.TrimSpace(condition[:ix]),
				Op:     op,
				Value:  strings.TrimSpace(condition[ix+len(op):]),
			}, nil
		}
	}

	return sheetsdb.Where{}, fmt.Errorf("invalid where condition '%s' - expected something like 'name=Ann' or 'age>=30'", condition)
}

// parseSet parses 'column=value' assignments for update.
func parseSet(assignments []string) (sheetsdb.Record, error) {
	patch := sheetsdb.Record{}

	for _, assignment := range assignments {
		column, value, ok := strings.Cut(assignment, "=")
		if !ok || strings.TrimSpace(column) == "" {
			return nil, fmt.Errorf("invalid assignment '%s' - expected something like 'age=31'", assignment)
		}

		patch[strings.TrimSpace(column)] = strings.TrimSpace(value)
	}

	return patch, nil
}

// parseColumns parses a schema specification like 'name:string,age:number'.
// The type defaults to string when omitted.
func parseColumns(spec string) (sheetsdb.Schema, error) {
	schema := sheetsdb.Schema{}

	for _, field := range strings.Split(spec, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		name, t, ok := strings.Cut(field, ":")
		if !ok {
			t = string(sheetsdb.TypeString)
		}

		schema = append(schema, sheetsdb.Column{
			Name: strings.TrimSpace(name),
			Type: sheetsdb.ColumnType(strings.TrimSpace(t)),
		})
	}

	if err := schema.Validate(); err != nil {
		return nil, err
	}

	return schema, nil
}

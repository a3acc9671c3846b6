package db

import (
	"database/sql"
	"strings"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/shopspring/decimal"
)

// Table is a result of a query.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Records returns rows as maps from column name to value, in column order.
func (t *Table) Records() []*orderedmap.OrderedMap[string, any] {
	records := make([]*orderedmap.OrderedMap[string, any], 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := orderedmap.NewOrderedMap[string, any]()
		for i, col := range t.Columns {
			if i < len(row) {
				rec.Set(col, row[i])
			}
		}
		records = append(records, rec)
	}
	return records
}

// Column returns values of the named column. ok is false for unknown columns.
func (t *Table) Column(name string) (values []any, ok bool) {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	values = make([]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		values = append(values, row[idx])
	}
	return values, true
}

func isDecimal(dbType string) bool {
	switch strings.ToUpper(dbType) {
	case "DECIMAL", "NUMERIC", "NEWDECIMAL":
		return true
	default:
		return false
	}
}

// scan reads all rows.
//
// DECIMAL and NUMERIC columns become decimal.Decimal, and other []byte become string.
func scan(rows *sql.Rows) (*Table, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	t := &Table{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		for i, v := range values {
			dec := i < len(types) && isDecimal(types[i].DatabaseTypeName())
			values[i], err = convert(v, dec)
			if err != nil {
				return nil, err
			}
		}
		t.Rows = append(t.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

func convert(v any, dec bool) (any, error) {
	switch x := v.(type) {
	case []byte:
		if dec {
			return decimal.NewFromString(string(x))
		}
		return string(x), nil
	case string:
		if dec {
			return decimal.NewFromString(x)
		}
		return x, nil
	case float64:
		if dec {
			return decimal.NewFromFloat(x), nil
		}
		return x, nil
	default:
		return v, nil
	}
}

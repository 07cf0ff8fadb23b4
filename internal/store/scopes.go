package store

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Scope is a composable filter predicate
type Scope = func(*gorm.DB) *gorm.DB

// Eq matches documents whose column equals value
func Eq(column string, value interface{}) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{Column: clause.Column{Name: column}, Value: value})
	}
}

// EqFold is a case-insensitive equality match
func EqFold(column, value string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("LOWER("+column+") = ?", strings.ToLower(value))
	}
}

// In matches documents whose column is one of values. No values matches nothing.
func In(column string, values []string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		vals := make([]interface{}, len(values))
		for i, v := range values {
			vals[i] = v
		}
		return db.Where(clause.IN{Column: clause.Column{Name: column}, Values: vals})
	}
}

// Match is a case-insensitive substring match of term against any of columns.
// Wrap JSON string-array columns with Elements so term is matched inside the
// individual elements and never against the array punctuation.
func Match(term string, columns ...string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}
		lowered := strings.ToLower(term)
		pattern := "%" + escapeLike(lowered) + "%"
		elementPattern := "%" + escapeLike(jsonStringContent(lowered)) + "%"

		parts := make([]string, 0, len(columns))
		args := make([]interface{}, 0, len(columns)*4)
		for _, col := range columns {
			if name, ok := strings.CutSuffix(col, elementsSuffix); ok {
				// elements are joined by a newline, which JSON always escapes
				parts = append(parts, "LOWER(CASE WHEN "+name+" = '[]' THEN '' ELSE "+
					"REPLACE(REPLACE(REPLACE("+name+", '\",\"', ?), '[\"', ?), '\"]', ?) END) LIKE ? ESCAPE '\\'")
				args = append(args, "\n", "\n", "\n", elementPattern)
				continue
			}
			parts = append(parts, "LOWER("+col+") LIKE ? ESCAPE '\\'")
			args = append(args, pattern)
		}
		return db.Where("("+strings.Join(parts, " OR ")+")", args...)
	}
}

const elementsSuffix = "[]"

// Elements marks column as a JSON string array for Match
func Elements(column string) string {
	return column + elementsSuffix
}

// HasTag matches documents whose JSON string-array column contains value
func HasTag(column, value string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		encoded := `"` + jsonStringContent(value) + `"`
		return db.Where(column+" LIKE ? ESCAPE '\\'", "%"+escapeLike(encoded)+"%")
	}
}

// jsonStringContent is s encoded as the inside of a JSON string, the way
// models.StringArray stores its elements
func jsonStringContent(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	out := strings.TrimSuffix(buf.String(), "\n")
	return out[1 : len(out)-1]
}

// Between bounds a time column; nil ends are open
func Between(column string, from, to *time.Time) Scope {
	return func(db *gorm.DB) *gorm.DB {
		col := clause.Column{Name: column}
		if from != nil {
			db = db.Where(clause.Gte{Column: col, Value: *from})
		}
		if to != nil {
			db = db.Where(clause.Lte{Column: col, Value: *to})
		}
		return db
	}
}

// OrderBy sorts on column
func OrderBy(column string, desc bool) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc})
	}
}

// Page applies skip/limit pagination. A non-positive limit means no limit.
func Page(skip, limit int) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if skip > 0 {
			db = db.Offset(skip)
		}
		if limit > 0 {
			db = db.Limit(limit)
		}
		return db
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

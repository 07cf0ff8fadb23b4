package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrDuplicate   = errors.New("duplicate key")
	ErrInvalid     = errors.New("invalid document")
	ErrUnavailable = errors.New("store unavailable")
)

// Validator is implemented by every record type written through a Collection
type Validator interface {
	Validate() error
}

// Collection exposes find/insert/update/delete/count/aggregate over one table.
// It owns no business logic.
type Collection[T any] struct {
	db *gorm.DB
}

// NewCollection binds a collection of T to db
func NewCollection[T any](db *gorm.DB) *Collection[T] {
	return &Collection[T]{db: db}
}

func (c *Collection[T]) model(ctx context.Context) *gorm.DB {
	return c.db.WithContext(ctx).Model(new(T))
}

// Get loads the document whose id column equals id
func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	return c.FindOne(ctx, Eq("id", id))
}

// FindOne returns the first document matching the scopes
func (c *Collection[T]) FindOne(ctx context.Context, scopes ...Scope) (*T, error) {
	var doc T
	if err := c.db.WithContext(ctx).Scopes(scopes...).Take(&doc).Error; err != nil {
		return nil, translate(err)
	}
	return &doc, nil
}

// Find returns every document matching the scopes
func (c *Collection[T]) Find(ctx context.Context, scopes ...Scope) ([]T, error) {
	docs := make([]T, 0)
	if err := c.db.WithContext(ctx).Scopes(scopes...).Find(&docs).Error; err != nil {
		return nil, translate(err)
	}
	return docs, nil
}

// Count returns the number of matching documents. Do not pass OrderBy or Page scopes.
func (c *Collection[T]) Count(ctx context.Context, scopes ...Scope) (int64, error) {
	var n int64
	if err := c.model(ctx).Scopes(scopes...).Count(&n).Error; err != nil {
		return 0, translate(err)
	}
	return n, nil
}

// Exists reports whether any document matches the scopes
func (c *Collection[T]) Exists(ctx context.Context, scopes ...Scope) (bool, error) {
	n, err := c.Count(ctx, scopes...)
	return n > 0, err
}

// Insert validates and creates doc
func (c *Collection[T]) Insert(ctx context.Context, doc *T) error {
	if err := validate(doc); err != nil {
		return err
	}
	return translate(c.db.WithContext(ctx).Create(doc).Error)
}

// Replace overwrites every column of an existing document except created_at
func (c *Collection[T]) Replace(ctx context.Context, doc *T) error {
	if err := validate(doc); err != nil {
		return err
	}
	res := c.db.WithContext(ctx).Model(doc).Select("*").Omit("created_at").Updates(doc)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Upsert creates doc or overwrites the row holding the same conflict column
func (c *Collection[T]) Upsert(ctx context.Context, doc *T, conflictColumn string) error {
	if err := validate(doc); err != nil {
		return err
	}
	err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: conflictColumn}},
		UpdateAll: true,
	}).Create(doc).Error
	return translate(err)
}

// SetColumns writes scalar columns without touching updated_at
func (c *Collection[T]) SetColumns(ctx context.Context, id string, columns map[string]interface{}) error {
	res := c.model(ctx).Where("id = ?", id).UpdateColumns(columns)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Increment adds delta to a numeric column
func (c *Collection[T]) Increment(ctx context.Context, id, column string, delta int64) error {
	col := clause.Column{Name: column}
	res := c.model(ctx).Where("id = ?", id).UpdateColumn(column, gorm.Expr("? + ?", col, delta))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the document with the given id
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	res := c.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWhere removes every matching document and returns how many went
func (c *Collection[T]) DeleteWhere(ctx context.Context, scopes ...Scope) (int64, error) {
	if len(scopes) == 0 {
		return 0, fmt.Errorf("%w: refusing to delete without a filter", ErrInvalid)
	}
	res := c.db.WithContext(ctx).Scopes(scopes...).Delete(new(T))
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	return res.RowsAffected, nil
}

// Pluck returns one string column of every matching document
func (c *Collection[T]) Pluck(ctx context.Context, column string, scopes ...Scope) ([]string, error) {
	out := make([]string, 0)
	if err := c.model(ctx).Scopes(scopes...).Pluck(column, &out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// GroupCount counts matching documents grouped by column
func (c *Collection[T]) GroupCount(ctx context.Context, column string, scopes ...Scope) (map[string]int64, error) {
	var rows []struct {
		Grp string
		Cnt int64
	}
	err := c.model(ctx).
		Scopes(scopes...).
		Select("? AS grp, COUNT(*) AS cnt", clause.Column{Name: column}).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Grp] = r.Cnt
	}
	return out, nil
}

func validate(doc interface{}) error {
	v, ok := doc.(Validator)
	if !ok {
		return nil
	}
	if err := v.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// translate maps driver errors onto the store sentinels
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

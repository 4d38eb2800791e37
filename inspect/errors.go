package inspect

import (
	"errors"
	"fmt"
)

// ErrUnknownModelReference is wrapped by *UnknownModelReferenceError.
var ErrUnknownModelReference = errors.New("inspect: unknown model reference")

// ErrAmbiguousForeignKey is wrapped by *AmbiguousForeignKeyError.
var ErrAmbiguousForeignKey = errors.New("inspect: ambiguous foreign key")

// ErrMissingPrimaryKey is wrapped by *MissingPrimaryKeyError.
var ErrMissingPrimaryKey = errors.New("inspect: missing primary key")

// ErrDuplicateTable is wrapped by *DuplicateTableError.
var ErrDuplicateTable = errors.New("inspect: duplicate table")

// UnknownModelReferenceError reports a relation or foreign key naming a
// model that was never passed to Inspect.
type UnknownModelReferenceError struct {
	FromModel string
	Reference string
}

func (e *UnknownModelReferenceError) Error() string {
	return fmt.Sprintf("inspect: %s references unknown model %q", e.FromModel, e.Reference)
}

func (e *UnknownModelReferenceError) Unwrap() error { return ErrUnknownModelReference }

func (e *UnknownModelReferenceError) Is(target error) bool {
	return target == ErrUnknownModelReference
}

func (e *UnknownModelReferenceError) Context() map[string]any {
	return map[string]any{"from_model": e.FromModel, "reference": e.Reference}
}

// AmbiguousForeignKeyError reports a model whose ForeignKey method
// declares more than one link through the same local relation attribute,
// so that attribute cannot be bound to a single foreign key.
type AmbiguousForeignKeyError struct {
	FromModel, ToModel string
	Candidates         int
}

func (e *AmbiguousForeignKeyError) Error() string {
	return fmt.Sprintf("inspect: %d candidate foreign keys between %s and %s, relation is ambiguous",
		e.Candidates, e.FromModel, e.ToModel)
}

func (e *AmbiguousForeignKeyError) Unwrap() error { return ErrAmbiguousForeignKey }

func (e *AmbiguousForeignKeyError) Is(target error) bool {
	return target == ErrAmbiguousForeignKey
}

func (e *AmbiguousForeignKeyError) Context() map[string]any {
	return map[string]any{"from_model": e.FromModel, "to_model": e.ToModel, "candidates": e.Candidates}
}

// MissingPrimaryKeyError reports a model with no resolvable primary key:
// no PrimaryKey method and no field named ID.
type MissingPrimaryKeyError struct {
	Model string
}

func (e *MissingPrimaryKeyError) Error() string {
	return fmt.Sprintf("inspect: %s has no primary key and no ID field", e.Model)
}

func (e *MissingPrimaryKeyError) Unwrap() error { return ErrMissingPrimaryKey }

func (e *MissingPrimaryKeyError) Is(target error) bool {
	return target == ErrMissingPrimaryKey
}

func (e *MissingPrimaryKeyError) Context() map[string]any {
	return map[string]any{"model": e.Model}
}

// DuplicateTableError reports two models mapping to the same
// (datasource, table name) pair.
type DuplicateTableError struct {
	TableName     string
	DataSourceKey string
	Models        []string
}

func (e *DuplicateTableError) Error() string {
	return fmt.Sprintf("inspect: table %q in datasource %q is claimed by models %v",
		e.TableName, e.DataSourceKey, e.Models)
}

func (e *DuplicateTableError) Unwrap() error { return ErrDuplicateTable }

func (e *DuplicateTableError) Is(target error) bool {
	return target == ErrDuplicateTable
}

func (e *DuplicateTableError) Context() map[string]any {
	return map[string]any{"table_name": e.TableName, "data_source_key": e.DataSourceKey, "models": e.Models}
}

// IsUnknownModelReference reports whether err is, or wraps, an
// *UnknownModelReferenceError.
func IsUnknownModelReference(err error) bool {
	var e *UnknownModelReferenceError
	return errors.As(err, &e)
}

// IsAmbiguousForeignKey reports whether err is, or wraps, an
// *AmbiguousForeignKeyError.
func IsAmbiguousForeignKey(err error) bool {
	var e *AmbiguousForeignKeyError
	return errors.As(err, &e)
}

// IsMissingPrimaryKey reports whether err is, or wraps, a
// *MissingPrimaryKeyError.
func IsMissingPrimaryKey(err error) bool {
	var e *MissingPrimaryKeyError
	return errors.As(err, &e)
}

// IsDuplicateTable reports whether err is, or wraps, a
// *DuplicateTableError.
func IsDuplicateTable(err error) bool {
	var e *DuplicateTableError
	return errors.As(err, &e)
}

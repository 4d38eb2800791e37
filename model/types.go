package model

import (
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Kind enumerates the scalar and container shapes a column's Go type can
// take. It is deliberately smaller than Go's own type system: only the
// shapes the generator and the backend need to treat differently appear
// here.
type Kind int

const (
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindBytes
	KindTime
	KindUUID
	KindSlice
	KindModelRef
	KindEnum
)

// EnumMapping describes the declared value set of an enum-like column: a
// named string or int type whose EnumValues method enumerates its valid
// members, the same way a PrimaryKey/Index method declares a key by
// being run rather than by a separate schema annotation.
type EnumMapping struct {
	GoTypeName string
	Values     []string
	// Storage is the underlying scalar kind the enum is persisted as:
	// KindString or KindInt.
	Storage Kind
}

// enumValuer is implemented by a named scalar type to mark it as an
// enum column and declare its valid members.
type enumValuer interface {
	EnumValues() []string
}

var enumValuerType = reflect.TypeOf((*enumValuer)(nil)).Elem()

// TypeInfo describes one field's type for the purposes of schema
// inference, filter rendering, and code generation.
type TypeInfo struct {
	Kind     Kind
	GoType   reflect.Type
	Nullable bool // field type is a pointer
	Elem     *TypeInfo // set when Kind == KindSlice
	Enum     *EnumMapping // set when Kind == KindEnum
}

var (
	timeType = reflect.TypeOf(time.Time{})
	uuidType = reflect.TypeOf(uuid.UUID{})
)

// InferType classifies a struct field's Go type into a TypeInfo. Pointer
// types mark the column nullable and are unwrapped once before
// classification, matching the `Optional[T]`/`T | None` convention the
// Python ancestor used.
func InferType(t reflect.Type) *TypeInfo {
	info := &TypeInfo{GoType: t}
	if t.Kind() == reflect.Ptr {
		info.Nullable = true
		t = t.Elem()
		info.GoType = t
	}
	switch {
	case t == timeType:
		info.Kind = KindTime
	case t == uuidType:
		info.Kind = KindUUID
	default:
		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			info.Kind = KindInt
		case reflect.Float32, reflect.Float64:
			info.Kind = KindFloat
		case reflect.String:
			info.Kind = KindString
		case reflect.Bool:
			info.Kind = KindBool
		case reflect.Slice:
			if t.Elem().Kind() == reflect.Uint8 {
				info.Kind = KindBytes
			} else {
				info.Kind = KindSlice
				info.Elem = InferType(t.Elem())
			}
		case reflect.Struct:
			info.Kind = KindModelRef
		default:
			info.Kind = KindInvalid
		}
	}
	if em := inferEnum(t, info.Kind); em != nil {
		info.Enum = em
		info.Kind = KindEnum
	}
	return info
}

// inferEnum detects a named scalar type declaring its member values via
// an EnumValues method, the same probe-on-zero-value idiom the
// PrimaryKey/Index methods use on a whole record, applied here to a
// single field's type.
func inferEnum(t reflect.Type, storage Kind) *EnumMapping {
	if storage != KindString && storage != KindInt {
		return nil
	}
	if !t.Implements(enumValuerType) {
		return nil
	}
	zero := reflect.New(t).Elem().Interface().(enumValuer)
	return &EnumMapping{
		GoTypeName: t.Name(),
		Values:     zero.EnumValues(),
		Storage:    storage,
	}
}

// IsAutoIncrementCandidate reports whether a field's own shape is eligible
// to be treated as an auto-incrementing integer primary key: a bare
// (non-pointer) integer type. The inspector additionally requires the
// field to be named ID, be the sole primary-key column, and not be
// overridden by an explicit PrimaryKey method before granting
// auto-increment status.
func (ti *TypeInfo) IsAutoIncrementCandidate() bool {
	return ti.Kind == KindInt && !ti.Nullable
}

// SQLiteType maps a TypeInfo to the SQLite storage class used when
// declaring or comparing columns.
func (ti *TypeInfo) SQLiteType() string {
	switch ti.Kind {
	case KindInt, KindBool:
		return "INTEGER"
	case KindFloat:
		return "REAL"
	case KindBytes:
		return "BLOB"
	case KindString, KindTime, KindUUID, KindSlice:
		return "TEXT"
	case KindEnum:
		if ti.Enum != nil && ti.Enum.Storage == KindInt {
			return "INTEGER"
		}
		return "TEXT"
	default:
		return "TEXT"
	}
}

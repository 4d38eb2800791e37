package model

import (
	"errors"
	"fmt"
	"reflect"
)

// Ref names a path of attributes reached off a record, starting from the
// record itself. A single-element path names one of the record's own
// fields; a longer path crosses a relation first, e.g. []string{"User",
// "ID"} for the ID field reached through the User relation.
//
// Ref never carries a value. It exists so that PrimaryKey, Index, and
// ForeignKey methods can describe *which attributes* they mean without
// Self ever dereferencing real data.
type Ref struct {
	Path []string
}

func (r *Ref) String() string {
	if r == nil {
		return "<nil>"
	}
	out := r.Path[0]
	for _, p := range r.Path[1:] {
		out += "." + p
	}
	return out
}

// KeySpec names one primary-key or index definition as an ordered set of
// column references.
type KeySpec struct {
	Refs []*Ref
}

// Key builds a KeySpec from one or more column references, in the order
// they should appear in the key.
func Key(refs ...*Ref) KeySpec {
	return KeySpec{Refs: refs}
}

// ForeignKeyComparison records the two sides of a virtual foreign-key
// equality the way a probed `self.user.id == self.user_id` expression
// would, without ever comparing anything.
type ForeignKeyComparison struct {
	Left, Right *Ref
}

// FKLink is one virtual foreign-key declaration: the comparison that ties
// a local scalar column to a remote model's primary key, plus the name of
// the relation attribute on the remote side that should resolve back to
// this record's collection.
type FKLink struct {
	Comparison   *ForeignKeyComparison
	RemoteModel  string
	RemoteAttr   string
}

// ProbeError is raised (via panic, caught by inspect.Inspect) when a key,
// index, or foreign-key method does something the sentinel cannot
// interpret as a column reference.
type ProbeError struct {
	Model   string
	Method  string
	Message string
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("model: probe failed for %s.%s: %s", e.Model, e.Method, e.Message)
}

func (e *ProbeError) Is(target error) bool {
	_, ok := target.(*ProbeError)
	return ok
}

// Context exposes the failing model and method for programmatic handling.
func (e *ProbeError) Context() map[string]any {
	return map[string]any{"model": e.Model, "method": e.Method}
}

// IsProbeError reports whether err is, or wraps, a *ProbeError.
func IsProbeError(err error) bool {
	var pe *ProbeError
	return errors.As(err, &pe)
}

// Self is the sentinel passed into a record's PrimaryKey, Index,
// UniqueIndex, and ForeignKey methods in place of a real instance. Every
// method on it returns a path-carrying Ref or composite value instead of
// touching any actual record state — this is the entire "fake self" probe.
type Self struct {
	modelName string
	modelType reflect.Type
	fields    map[string]reflect.StructField
}

// NewSelf builds a probe sentinel for the given record type. recordType
// must be a struct type (not a pointer).
func NewSelf(modelName string, recordType reflect.Type) *Self {
	fields := make(map[string]reflect.StructField, recordType.NumField())
	for i := 0; i < recordType.NumField(); i++ {
		f := recordType.Field(i)
		fields[f.Name] = f
	}
	return &Self{modelName: modelName, modelType: recordType, fields: fields}
}

// Col returns a Ref naming one of the record's own fields.
func (s *Self) Col(name string) *Ref {
	if _, ok := s.fields[name]; !ok {
		s.fail("PrimaryKey/Index/ForeignKey", "no field %q on %s", name, s.modelName)
	}
	return &Ref{Path: []string{name}}
}

// Cols returns one Ref per name, in order, for composite keys.
func (s *Self) Cols(names ...string) []*Ref {
	refs := make([]*Ref, 0, len(names))
	for _, n := range names {
		refs = append(refs, s.Col(n))
	}
	return refs
}

// Through returns a Ref for a dotted attribute path that crosses a
// relation before naming a column, e.g. s.Through("User", "ID") for
// self.user.id.
func (s *Self) Through(path ...string) *Ref {
	if len(path) == 0 {
		s.fail("ForeignKey", "empty attribute path")
	}
	if _, ok := s.fields[path[0]]; !ok {
		s.fail("ForeignKey", "no field %q on %s", path[0], s.modelName)
	}
	cp := make([]string, len(path))
	copy(cp, path)
	return &Ref{Path: cp}
}

// Eq records the two sides of a virtual foreign-key equality without
// evaluating either side — the Go stand-in for the probe's overloaded
// `==`, since Go has no operator overloading to intercept.
func (s *Self) Eq(left, right *Ref) *ForeignKeyComparison {
	return &ForeignKeyComparison{Left: left, Right: right}
}

// Link builds one FKLink: the comparison that ties localRef (usually
// reached via Through) to the scalar column scalarRef, plus the name of
// the collection attribute the remote model exposes back to this one.
func (s *Self) Link(localRef, scalarRef *Ref, remoteModel, remoteAttr string) FKLink {
	return FKLink{
		Comparison:  s.Eq(localRef, scalarRef),
		RemoteModel: remoteModel,
		RemoteAttr:  remoteAttr,
	}
}

// Fail aborts the current probe with a ProbeError. Author methods call
// this defensively when asked to describe something the sentinel has no
// vocabulary for.
func (s *Self) Fail(format string, args ...any) {
	s.fail("", format, args...)
}

func (s *Self) fail(method, format string, args ...any) {
	panic(&ProbeError{Model: s.modelName, Method: method, Message: fmt.Sprintf(format, args...)})
}

// Run executes fn with recover, converting any panic that isn't already a
// *ProbeError into one. A *ProbeError raised by the sentinel gets its
// Method set to method, since the sentinel cannot tell which side method
// is calling it. It is the guarded call site inspect.Inspect uses around
// every PrimaryKey/Index/UniqueIndex/ForeignKey method.
func Run[T any](modelName, method string, fn func() T) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(*ProbeError); ok {
				pe.Method = method
				err = pe
				return
			}
			err = &ProbeError{Model: modelName, Method: method, Message: fmt.Sprintf("%v", r)}
		}
	}()
	result = fn()
	return result, nil
}

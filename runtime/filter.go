package runtime

import "reflect"

// filterOpNames maps a scalar filter struct's field name to the where
// compiler's operator keyword, letting FilterToMap convert any
// generated *{Kind}Filter value without bespoke per-type code.
var filterOpNames = map[string]string{
	"Eq":         "eq",
	"Ne":         "ne",
	"Lt":         "lt",
	"Lte":        "lte",
	"Gt":         "gt",
	"Gte":        "gte",
	"In":         "in",
	"NotIn":      "nin",
	"Contains":   "contains",
	"StartsWith": "starts_with",
	"EndsWith":   "ends_with",
	"IsNull":     "is_null",
}

// FilterToMap converts a generated scalar filter struct (IntFilter,
// StringFilter, ...) into the operator map the where compiler expects.
// f must be a pointer to a struct whose fields are named per
// filterOpNames; a nil pointer yields a nil map. Unset fields (nil
// pointers or nil slices) are omitted.
func FilterToMap(f any) map[string]any {
	if f == nil {
		return nil
	}
	v := reflect.ValueOf(f)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	out := map[string]any{}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		op, ok := filterOpNames[field.Name]
		if !ok {
			continue
		}
		fv := v.Field(i)
		switch fv.Kind() {
		case reflect.Ptr:
			if fv.IsNil() {
				continue
			}
			out[op] = fv.Elem().Interface()
		case reflect.Slice:
			if fv.IsNil() {
				continue
			}
			out[op] = fv.Interface()
		default:
			out[op] = fv.Interface()
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

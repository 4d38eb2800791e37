// Package query compiles a nested filter map — the same shape a
// generated {M}Where struct flattens itself into — to a SQL boolean
// expression and its positional parameters.
//
// Top-level keys of a where-map are either:
//
//   - a column name, whose value is either a scalar (shorthand for
//     {"eq": value}) or an operator map ({"eq"|"ne"|"lt"|"lte"|"gt"|"gte":
//     v, "in"|"nin": []v, "contains"|"starts_with"|"ends_with": v,
//     "is_null": bool});
//   - "and"/"or", whose value is a []map[string]any combined with the
//     matching boolean operator;
//   - "not", whose value is a single nested where-map;
//   - a to-one relation name, whose value is {"is"|"is_not":
//     map[string]any} evaluated against the related row via EXISTS/NOT
//     EXISTS, or a bare nested where-map as shorthand for {"is": map};
//   - a to-many relation name, whose value is {"is"|"is_not"|"some"|
//     "every"|"none": map[string]any} ("is"/"is_not" behave like
//     "some"/"none" for a collection). "every" over a relation with no
//     related rows is vacuously true, matching SQL's own
//     NOT EXISTS(violates) behavior.
package query

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/dclass/dclassql/inspect"
)

// Compile translates where into a SQL boolean expression (with no leading
// "WHERE") plus its ordered parameters, evaluated over rows of table
// alias "t0" and compiled against model mi within graph g.
func Compile(where map[string]any, mi *inspect.ModelInfo, g *inspect.Graph) (string, []any, error) {
	c := &compiler{graph: g, aliasSeq: 0}
	sql, args, err := c.compileMap(where, mi, "t0")
	if err != nil {
		return "", nil, err
	}
	if sql == "" {
		sql = "1=1"
	}
	return sql, args, nil
}

type compiler struct {
	graph    *inspect.Graph
	aliasSeq int
}

func (c *compiler) nextAlias() string {
	c.aliasSeq++
	return fmt.Sprintf("t%d", c.aliasSeq)
}

func (c *compiler) compileMap(where map[string]any, mi *inspect.ModelInfo, alias string) (string, []any, error) {
	if len(where) == 0 {
		return "", nil, nil
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var clauses []string
	var args []any

	for _, key := range keys {
		val := where[key]
		switch strings.ToLower(key) {
		case "and":
			clause, a, err := c.compileLogical(val, mi, alias, " AND ")
			if err != nil {
				return "", nil, err
			}
			if clause != "" {
				clauses = append(clauses, clause)
				args = append(args, a...)
			}
			continue
		case "or":
			clause, a, err := c.compileLogical(val, mi, alias, " OR ")
			if err != nil {
				return "", nil, err
			}
			if clause != "" {
				clauses = append(clauses, clause)
				args = append(args, a...)
			}
			continue
		case "not":
			sub, ok := val.(map[string]any)
			if !ok {
				return "", nil, &InvalidFilterError{Model: mi.Name, Detail: `"not" requires a nested filter map`}
			}
			clause, a, err := c.compileMap(sub, mi, alias)
			if err != nil {
				return "", nil, err
			}
			if clause != "" {
				clauses = append(clauses, "NOT ("+clause+")")
				args = append(args, a...)
			}
			continue
		}

		if col := mi.Column(key); col != nil {
			clause, a, err := compileColumn(mi, alias, col.Name, val)
			if err != nil {
				return "", nil, err
			}
			clauses = append(clauses, clause)
			args = append(args, a...)
			continue
		}

		if rel := mi.Relation(key); rel != nil {
			clause, a, err := c.compileRelation(mi, rel, alias, val)
			if err != nil {
				return "", nil, err
			}
			clauses = append(clauses, clause)
			args = append(args, a...)
			continue
		}

		return "", nil, &InvalidFilterError{Model: mi.Name, Detail: fmt.Sprintf("unknown key %q", key)}
	}

	return strings.Join(clauses, " AND "), args, nil
}

func (c *compiler) compileLogical(val any, mi *inspect.ModelInfo, alias, joiner string) (string, []any, error) {
	list, ok := val.([]map[string]any)
	if !ok {
		if raw, okAny := val.([]any); okAny {
			list = make([]map[string]any, 0, len(raw))
			for _, item := range raw {
				m, ok := item.(map[string]any)
				if !ok {
					return "", nil, &InvalidFilterError{Model: mi.Name, Detail: "and/or requires a list of filter maps"}
				}
				list = append(list, m)
			}
		} else {
			return "", nil, &InvalidFilterError{Model: mi.Name, Detail: "and/or requires a list of filter maps"}
		}
	}
	var parts []string
	var args []any
	for _, sub := range list {
		clause, a, err := c.compileMap(sub, mi, alias)
		if err != nil {
			return "", nil, err
		}
		if clause == "" {
			continue
		}
		parts = append(parts, "("+clause+")")
		args = append(args, a...)
	}
	if len(parts) == 0 {
		return "", nil, nil
	}
	return strings.Join(parts, joiner), args, nil
}

func compileColumn(mi *inspect.ModelInfo, alias, col string, val any) (string, []any, error) {
	qualified := alias + "." + col
	opMap, ok := val.(map[string]any)
	if !ok {
		return qualified + " = ?", []any{val}, nil
	}

	keys := make([]string, 0, len(opMap))
	for k := range opMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var clauses []string
	var args []any
	for _, op := range keys {
		v := opMap[op]
		switch strings.ToLower(op) {
		case "eq":
			clauses = append(clauses, qualified+" = ?")
			args = append(args, v)
		case "ne":
			clauses = append(clauses, qualified+" <> ?")
			args = append(args, v)
		case "lt":
			clauses = append(clauses, qualified+" < ?")
			args = append(args, v)
		case "lte":
			clauses = append(clauses, qualified+" <= ?")
			args = append(args, v)
		case "gt":
			clauses = append(clauses, qualified+" > ?")
			args = append(args, v)
		case "gte":
			clauses = append(clauses, qualified+" >= ?")
			args = append(args, v)
		case "in":
			vals, err := toSlice(v)
			if err != nil {
				return "", nil, &InvalidFilterError{Model: mi.Name, Detail: `"in" requires a list`}
			}
			if len(vals) == 0 {
				clauses = append(clauses, "1=0")
				continue
			}
			placeholders := strings.TrimSuffix(strings.Repeat("?,", len(vals)), ",")
			clauses = append(clauses, qualified+" IN ("+placeholders+")")
			args = append(args, vals...)
		case "nin":
			vals, err := toSlice(v)
			if err != nil {
				return "", nil, &InvalidFilterError{Model: mi.Name, Detail: `"nin" requires a list`}
			}
			if len(vals) == 0 {
				clauses = append(clauses, "1=1")
				continue
			}
			placeholders := strings.TrimSuffix(strings.Repeat("?,", len(vals)), ",")
			clauses = append(clauses, qualified+" NOT IN ("+placeholders+")")
			args = append(args, vals...)
		case "contains":
			clauses = append(clauses, qualified+" LIKE ?")
			args = append(args, "%"+fmt.Sprint(v)+"%")
		case "starts_with":
			clauses = append(clauses, qualified+" LIKE ?")
			args = append(args, fmt.Sprint(v)+"%")
		case "ends_with":
			clauses = append(clauses, qualified+" LIKE ?")
			args = append(args, "%"+fmt.Sprint(v))
		case "is_null":
			want, _ := v.(bool)
			if want {
				clauses = append(clauses, qualified+" IS NULL")
			} else {
				clauses = append(clauses, qualified+" IS NOT NULL")
			}
		default:
			return "", nil, &InvalidFilterError{Model: mi.Name, Detail: fmt.Sprintf("unknown operator %q on %s", op, col)}
		}
	}
	return strings.Join(clauses, " AND "), args, nil
}

func toSlice(v any) ([]any, error) {
	if vv, ok := v.([]any); ok {
		return vv, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("not a list")
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

// compileRelation evaluates a relation's filter value, keyed by "is",
// "is_not", and — for a to-many relation only — "some"/"every"/"none".
// A to-one relation also accepts a bare nested filter map as shorthand for
// {"is": map}.
func (c *compiler) compileRelation(mi *inspect.ModelInfo, rel *inspect.RelationInfo, alias string, val any) (string, []any, error) {
	target := c.graph.Model(rel.TargetModel)
	if target == nil {
		return "", nil, &InvalidFilterError{Model: mi.Name, Detail: fmt.Sprintf("relation %q targets unknown model %q", rel.AttrName, rel.TargetModel)}
	}

	if rel.Cardinality != inspect.Many {
		sub, ok := val.(map[string]any)
		if !ok {
			return "", nil, &InvalidFilterError{Model: mi.Name, Detail: fmt.Sprintf("to-one relation %q requires a nested filter map", rel.AttrName)}
		}
		if isSub, ok := sub["is"].(map[string]any); ok {
			return c.compileRelationExists(mi, rel, target, alias, isSub, false)
		}
		if notSub, ok := sub["is_not"].(map[string]any); ok {
			return c.compileRelationExists(mi, rel, target, alias, notSub, true)
		}
		return c.compileRelationExists(mi, rel, target, alias, sub, false)
	}

	spec, ok := val.(map[string]any)
	if !ok {
		return "", nil, &InvalidFilterError{Model: mi.Name, Detail: fmt.Sprintf(`to-many relation %q requires {"is"|"is_not"|"some"|"every"|"none": filter}`, rel.AttrName)}
	}

	if sub, ok := firstMap(spec, "is", "some"); ok {
		return c.compileRelationExists(mi, rel, target, alias, sub, false)
	}
	if sub, ok := firstMap(spec, "is_not", "none"); ok {
		return c.compileRelationExists(mi, rel, target, alias, sub, true)
	}
	if sub, ok := spec["every"].(map[string]any); ok {
		subAlias := c.nextAlias()
		join := fmt.Sprintf("%s.%s = %s.%s", subAlias, rel.ViaForeignKey.FromColumns[0], alias, rel.ViaForeignKey.ToColumns[0])
		body, args, err := c.compileMap(sub, target, subAlias)
		if err != nil {
			return "", nil, err
		}
		negated := "1=1"
		if body != "" {
			negated = "NOT (" + body + ")"
		}
		where := join + " AND " + negated
		return fmt.Sprintf("NOT EXISTS (SELECT 1 FROM %s %s WHERE %s)", target.TableName, subAlias, where), args, nil
	}
	return "", nil, &InvalidFilterError{Model: mi.Name, Detail: fmt.Sprintf(`relation %q filter must set exactly one of "is"/"is_not"/"some"/"every"/"none"`, rel.AttrName)}
}

// firstMap returns the first key present in spec among names, if its value
// is a nested filter map.
func firstMap(spec map[string]any, names ...string) (map[string]any, bool) {
	for _, name := range names {
		if sub, ok := spec[name].(map[string]any); ok {
			return sub, true
		}
	}
	return nil, false
}

// compileRelationExists renders the EXISTS/NOT EXISTS clause joining alias
// (the referencing row) to target through rel, filtered by sub, negated
// when negate is true. Used for to-one "is"/"is_not" and to-many
// "is"/"some"/"is_not"/"none".
func (c *compiler) compileRelationExists(mi *inspect.ModelInfo, rel *inspect.RelationInfo, target *inspect.ModelInfo, alias string, sub map[string]any, negate bool) (string, []any, error) {
	subAlias := c.nextAlias()
	var join string
	if rel.Cardinality == inspect.Many {
		join = fmt.Sprintf("%s.%s = %s.%s", subAlias, rel.ViaForeignKey.FromColumns[0], alias, rel.ViaForeignKey.ToColumns[0])
	} else {
		join = fmt.Sprintf("%s.%s = %s.%s", alias, rel.ViaForeignKey.FromColumns[0], subAlias, rel.ViaForeignKey.ToColumns[0])
	}
	body, args, err := c.compileMap(sub, target, subAlias)
	if err != nil {
		return "", nil, err
	}
	where := join
	if body != "" {
		where += " AND " + body
	}
	verb := "EXISTS"
	if negate {
		verb = "NOT EXISTS"
	}
	return fmt.Sprintf("%s (SELECT 1 FROM %s %s WHERE %s)", verb, target.TableName, subAlias, where), args, nil
}

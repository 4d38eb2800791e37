package codegen

import (
	"github.com/dave/jennifer/jen"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dclass/dclassql/model"
)

var titleCaser = cases.Title(language.English)

// tableDoc renders the one-line doc comment put above a generated
// {Model}Table declaration, title-casing the lower-cased table name the
// same way the teacher's own field-builder generator title-cases names
// pulled from schema definitions.
func tableDoc(tableName string) string {
	return titleCaser.String(tableName) + " rows, backed by the runtime."
}

// goType renders a column's TypeInfo as the Go type used in the
// generated Insert struct: the bare type for required columns, a
// pointer for nullable ones (mirroring `Optional[T]`/`T | None` in the
// source language this was distilled from).
func goType(ti *model.TypeInfo) *jen.Statement {
	base := baseGoType(ti)
	if ti.Nullable {
		return jen.Op("*").Add(base)
	}
	return base
}

func baseGoType(ti *model.TypeInfo) *jen.Statement {
	switch ti.Kind {
	case model.KindInt:
		return jen.Int()
	case model.KindFloat:
		return jen.Float64()
	case model.KindString:
		return jen.String()
	case model.KindBool:
		return jen.Bool()
	case model.KindBytes:
		return jen.Index().Byte()
	case model.KindTime:
		return jen.Qual("time", "Time")
	case model.KindUUID:
		return jen.Qual("github.com/google/uuid", "UUID")
	case model.KindSlice:
		return jen.Index().Add(baseGoType(ti.Elem))
	case model.KindEnum:
		return jen.Id(ti.Enum.GoTypeName)
	default:
		return jen.Any()
	}
}

// filterTypeName names the generated per-kind filter struct used in a
// {M}Where type, e.g. "StringFilter" for a KindString column.
func filterTypeName(ti *model.TypeInfo) string {
	switch ti.Kind {
	case model.KindInt:
		return "IntFilter"
	case model.KindFloat:
		return "FloatFilter"
	case model.KindString:
		return "StringFilter"
	case model.KindBool:
		return "BoolFilter"
	case model.KindBytes:
		return "BytesFilter"
	case model.KindTime:
		return "TimeFilter"
	case model.KindUUID:
		return "UUIDFilter"
	case model.KindEnum:
		if ti.Enum != nil && ti.Enum.Storage == model.KindInt {
			return "IntFilter"
		}
		return "StringFilter"
	default:
		return "StringFilter"
	}
}

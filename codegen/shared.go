package codegen

import (
	"github.com/dave/jennifer/jen"

	"github.com/dclass/dclassql/model"
)

// scalarFilterKinds lists every per-column-kind filter struct the
// generated module declares once, in shared.go, regardless of how many
// models use it.
var scalarFilterKinds = []struct {
	name       string
	comparable bool // supports lt/lte/gt/gte
	listable   bool // supports in/nin
	stringOps  bool // supports contains/starts_with/ends_with
	elemType   *jen.Statement
}{
	{name: "IntFilter", comparable: true, listable: true, elemType: jen.Int()},
	{name: "FloatFilter", comparable: true, listable: true, elemType: jen.Float64()},
	{name: "StringFilter", comparable: true, listable: true, stringOps: true, elemType: jen.String()},
	{name: "BoolFilter", comparable: false, listable: false, elemType: jen.Bool()},
	{name: "BytesFilter", comparable: false, listable: false, elemType: jen.Index().Byte()},
	{name: "TimeFilter", comparable: true, listable: true, elemType: jen.Qual("time", "Time")},
	{name: "UUIDFilter", comparable: false, listable: true, elemType: jen.Qual("github.com/google/uuid", "UUID")},
}

// buildSharedFile renders shared.go: every scalar filter struct, the
// OrderDirection enum, one defined type plus its value constants per
// distinct enum column type in the graph, and one {Model}RelationFilter
// struct per model in the graph (since any model may be the target of a
// to-many relation).
func buildSharedFile(cfg Config, modelNames []string, enums []*model.EnumMapping) *jen.File {
	f := jen.NewFile(cfg.Package)
	f.HeaderComment("Code generated by the client generator. Hand edits are preserved only until the next run.")

	for _, kind := range scalarFilterKinds {
		fields := []jen.Code{
			jen.Id("Eq").Op("*").Add(kind.elemType.Clone()),
			jen.Id("Ne").Op("*").Add(kind.elemType.Clone()),
		}
		if kind.comparable {
			fields = append(fields,
				jen.Id("Lt").Op("*").Add(kind.elemType.Clone()),
				jen.Id("Lte").Op("*").Add(kind.elemType.Clone()),
				jen.Id("Gt").Op("*").Add(kind.elemType.Clone()),
				jen.Id("Gte").Op("*").Add(kind.elemType.Clone()),
			)
		}
		if kind.listable {
			fields = append(fields,
				jen.Id("In").Index().Add(kind.elemType.Clone()),
				jen.Id("NotIn").Index().Add(kind.elemType.Clone()),
			)
		}
		if kind.stringOps {
			fields = append(fields,
				jen.Id("Contains").Op("*").Add(kind.elemType.Clone()),
				jen.Id("StartsWith").Op("*").Add(kind.elemType.Clone()),
				jen.Id("EndsWith").Op("*").Add(kind.elemType.Clone()),
			)
		}
		fields = append(fields, jen.Id("IsNull").Op("*").Bool())
		f.Type().Id(kind.name).Struct(fields...)
	}

	f.Type().Id("OrderDirection").String()
	f.Const().Defs(
		jen.Id("Asc").Id("OrderDirection").Op("=").Lit("asc"),
		jen.Id("Desc").Id("OrderDirection").Op("=").Lit("desc"),
	)

	for _, em := range enums {
		if em.Storage == model.KindInt {
			f.Type().Id(em.GoTypeName).Int()
			defs := make([]jen.Code, 0, len(em.Values))
			for i, v := range em.Values {
				defs = append(defs, jen.Id(em.GoTypeName+titleCaser.String(v)).Id(em.GoTypeName).Op("=").Lit(i))
			}
			f.Const().Defs(defs...)
			continue
		}
		f.Type().Id(em.GoTypeName).String()
		defs := make([]jen.Code, 0, len(em.Values))
		for _, v := range em.Values {
			defs = append(defs, jen.Id(em.GoTypeName+titleCaser.String(v)).Id(em.GoTypeName).Op("=").Lit(v))
		}
		f.Const().Defs(defs...)
	}

	for _, name := range modelNames {
		f.Type().Id(name + "RelationFilter").Struct(
			jen.Id("Is").Op("*").Id(name+"Where"),
			jen.Id("IsNot").Op("*").Id(name+"Where"),
			jen.Id("Some").Op("*").Id(name+"Where"),
			jen.Id("Every").Op("*").Id(name+"Where"),
			jen.Id("None").Op("*").Id(name+"Where"),
		)
		f.Func().Id("flatten"+name+"RelationFilter").Params(jen.Id("f").Op("*").Id(name+"RelationFilter")).Map(jen.String()).Any().Block(
			jen.If(jen.Id("f").Op("==").Nil()).Block(jen.Return(jen.Nil())),
			jen.Id("out").Op(":=").Map(jen.String()).Any().Values(),
			jen.If(jen.Id("f").Dot("Is").Op("!=").Nil()).Block(
				jen.Id("out").Index(jen.Lit("is")).Op("=").Id("flatten" + name + "Where").Call(jen.Id("f").Dot("Is")),
			),
			jen.If(jen.Id("f").Dot("IsNot").Op("!=").Nil()).Block(
				jen.Id("out").Index(jen.Lit("is_not")).Op("=").Id("flatten" + name + "Where").Call(jen.Id("f").Dot("IsNot")),
			),
			jen.If(jen.Id("f").Dot("Some").Op("!=").Nil()).Block(
				jen.Id("out").Index(jen.Lit("some")).Op("=").Id("flatten" + name + "Where").Call(jen.Id("f").Dot("Some")),
			),
			jen.If(jen.Id("f").Dot("Every").Op("!=").Nil()).Block(
				jen.Id("out").Index(jen.Lit("every")).Op("=").Id("flatten" + name + "Where").Call(jen.Id("f").Dot("Every")),
			),
			jen.If(jen.Id("f").Dot("None").Op("!=").Nil()).Block(
				jen.Id("out").Index(jen.Lit("none")).Op("=").Id("flatten" + name + "Where").Call(jen.Id("f").Dot("None")),
			),
			jen.Return(jen.Id("out")),
		)
	}

	return f
}

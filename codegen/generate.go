package codegen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"

	"github.com/dclass/dclassql/inspect"
	"github.com/dclass/dclassql/model"
)

// Generate writes one <model>_gen.go per model plus shared.go and
// client.go into cfg.Dir, using an errgroup capped at cfg.Workers to
// write files concurrently — the same parallel, worker-limited emission
// strategy the teacher's own generator uses.
func Generate(ctx context.Context, g *inspect.Graph, cfg Config) error {
	cfg = cfg.withDefaults()
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return fmt.Errorf("codegen: creating output directory: %w", err)
	}

	names := append([]string(nil), g.Order...)
	sort.Strings(names)

	files := map[string]*jen.File{
		"shared.go": buildSharedFile(cfg, names, collectEnums(g, names)),
		"client.go": buildClientFile(cfg, g, names),
	}
	for _, name := range names {
		files[strings.ToLower(name)+"_gen.go"] = buildModelFile(cfg, g, g.Model(name))
	}

	eg, _ := errgroup.WithContext(ctx)
	if cfg.Workers > 0 {
		eg.SetLimit(cfg.Workers)
	}
	for filename, file := range files {
		filename, file := filename, file
		eg.Go(func() error {
			return writeFile(cfg.Dir, filename, file)
		})
	}
	return eg.Wait()
}

// collectEnums gathers the distinct enum types used by any column across
// every model in the graph, so shared.go can declare each one exactly
// once regardless of how many columns reuse it.
func collectEnums(g *inspect.Graph, names []string) []*model.EnumMapping {
	seen := map[string]*model.EnumMapping{}
	for _, name := range names {
		for _, col := range g.Model(name).Columns {
			if col.Enum != nil {
				seen[col.Enum.GoTypeName] = col.Enum
			}
		}
	}
	out := make([]*model.EnumMapping, 0, len(seen))
	for _, em := range seen {
		out = append(out, em)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GoTypeName < out[j].GoTypeName })
	return out
}

func writeFile(dir, filename string, file *jen.File) error {
	path := filepath.Join(dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("codegen: creating %s: %w", path, err)
	}
	defer f.Close()
	if err := file.Render(f); err != nil {
		return fmt.Errorf("codegen: rendering %s: %w", path, err)
	}
	return nil
}

func buildModelFile(cfg Config, g *inspect.Graph, mi *inspect.ModelInfo) *jen.File {
	f := jen.NewFile(cfg.Package)
	f.HeaderComment("Code generated by the client generator. Hand edits are preserved only until the next run.")
	f.ImportAlias(cfg.RuntimeImport, "runtime")

	buildRecordStruct(f, mi)
	buildInsertStruct(f, mi)
	buildWhereStruct(f, cfg, g, mi)
	buildIncludeType(f, mi)
	buildSortableType(f, mi)
	buildSerializers(f, mi)
	buildTableType(f, cfg, mi)

	return f
}

// buildRecordStruct renders the typed record type every other generated
// function returns: one field per column in its declared Go shape, plus
// one field per relation attribute (left at its zero value until an
// applyIncludes{M} call resolves it through the shared Loader).
func buildRecordStruct(f *jen.File, mi *inspect.ModelInfo) {
	fields := make([]jen.Code, 0, len(mi.Columns)+len(mi.Relations))
	for _, col := range mi.Columns {
		fields = append(fields, jen.Id(col.Name).Add(goType(col.Type)))
	}
	for _, rel := range mi.Relations {
		switch rel.Cardinality {
		case inspect.Many:
			fields = append(fields, jen.Id(rel.AttrName).Index().Id(rel.TargetModel))
		case inspect.OptionalOne:
			fields = append(fields, jen.Id(rel.AttrName).Op("*").Id(rel.TargetModel))
		default:
			fields = append(fields, jen.Id(rel.AttrName).Id(rel.TargetModel))
		}
	}
	f.Comment(mi.Name + " is the generated typed record for the " + mi.TableName + " table.")
	f.Type().Id(mi.Name).Struct(fields...)
}

func buildInsertStruct(f *jen.File, mi *inspect.ModelInfo) {
	fields := make([]jen.Code, 0, len(mi.Columns))
	for _, col := range mi.Columns {
		typ := goType(col.Type)
		if col.AutoIncrementPK {
			typ = jen.Op("*").Add(baseGoType(col.Type))
		}
		fields = append(fields, jen.Id(col.Name).Add(typ))
	}
	f.Type().Id(mi.Name + "Insert").Struct(fields...)
}

func buildWhereStruct(f *jen.File, cfg Config, g *inspect.Graph, mi *inspect.ModelInfo) {
	fields := make([]jen.Code, 0, len(mi.Columns)+len(mi.Relations)+3)
	for _, col := range mi.Columns {
		fields = append(fields, jen.Id(col.Name).Op("*").Id(filterTypeName(col.Type)))
	}
	fields = append(fields,
		jen.Id("And").Index().Id(mi.Name+"Where"),
		jen.Id("Or").Index().Id(mi.Name+"Where"),
		jen.Id("Not").Op("*").Id(mi.Name+"Where"),
	)
	for _, rel := range mi.Relations {
		fields = append(fields, jen.Id(rel.AttrName).Op("*").Id(rel.TargetModel+"RelationFilter"))
	}
	f.Type().Id(mi.Name + "Where").Struct(fields...)

	buildFlattenWhereFunc(f, cfg, mi)
}

func buildFlattenWhereFunc(f *jen.File, cfg Config, mi *inspect.ModelInfo) {
	body := []jen.Code{
		jen.If(jen.Id("w").Op("==").Nil()).Block(jen.Return(jen.Nil())),
		jen.Id("out").Op(":=").Map(jen.String()).Any().Values(),
	}
	for _, col := range mi.Columns {
		body = append(body, jen.If(jen.Id("w").Dot(col.Name).Op("!=").Nil()).Block(
			jen.Id("out").Index(jen.Lit(col.Name)).Op("=").Qual(cfg.RuntimeImport, "FilterToMap").Call(jen.Id("w").Dot(col.Name)),
		))
	}
	body = append(body,
		jen.If(jen.Len(jen.Id("w").Dot("And")).Op(">").Lit(0)).Block(
			jen.Id("list").Op(":=").Make(jen.Index().Any(), jen.Lit(0), jen.Len(jen.Id("w").Dot("And"))),
			jen.For(jen.List(jen.Id("_"), jen.Id("sub")).Op(":=").Range().Id("w").Dot("And")).Block(
				jen.Id("list").Op("=").Append(jen.Id("list"), jen.Id("flatten"+mi.Name+"Where").Call(jen.Op("&").Id("sub"))),
			),
			jen.Id("out").Index(jen.Lit("and")).Op("=").Id("list"),
		),
		jen.If(jen.Len(jen.Id("w").Dot("Or")).Op(">").Lit(0)).Block(
			jen.Id("list").Op(":=").Make(jen.Index().Any(), jen.Lit(0), jen.Len(jen.Id("w").Dot("Or"))),
			jen.For(jen.List(jen.Id("_"), jen.Id("sub")).Op(":=").Range().Id("w").Dot("Or")).Block(
				jen.Id("list").Op("=").Append(jen.Id("list"), jen.Id("flatten"+mi.Name+"Where").Call(jen.Op("&").Id("sub"))),
			),
			jen.Id("out").Index(jen.Lit("or")).Op("=").Id("list"),
		),
		jen.If(jen.Id("w").Dot("Not").Op("!=").Nil()).Block(
			jen.Id("out").Index(jen.Lit("not")).Op("=").Id("flatten"+mi.Name+"Where").Call(jen.Id("w").Dot("Not")),
		),
	)
	for _, rel := range mi.Relations {
		body = append(body, jen.If(jen.Id("w").Dot(rel.AttrName).Op("!=").Nil()).Block(
			jen.Id("out").Index(jen.Lit(rel.AttrName)).Op("=").Id("flatten"+rel.TargetModel+"RelationFilter").Call(jen.Id("w").Dot(rel.AttrName)),
		))
	}
	body = append(body, jen.Return(jen.Id("out")))

	f.Func().Id("flatten"+mi.Name+"Where").Params(jen.Id("w").Op("*").Id(mi.Name+"Where")).Map(jen.String()).Any().Block(body...)
}

func buildIncludeType(f *jen.File, mi *inspect.ModelInfo) {
	f.Type().Id(mi.Name + "IncludeCol").String()
	if len(mi.Relations) > 0 {
		defs := make([]jen.Code, 0, len(mi.Relations))
		for _, rel := range mi.Relations {
			defs = append(defs, jen.Id(mi.Name+"IncludeCol"+rel.AttrName).Id(mi.Name+"IncludeCol").Op("=").Lit(rel.TargetModel))
		}
		f.Const().Defs(defs...)
	}
	f.Type().Id(mi.Name + "Include").Map(jen.Id(mi.Name + "IncludeCol")).Bool()
}

func buildSortableType(f *jen.File, mi *inspect.ModelInfo) {
	f.Type().Id(mi.Name + "SortableCol").String()
	defs := make([]jen.Code, 0, len(mi.Columns))
	for _, col := range mi.Columns {
		defs = append(defs, jen.Id(mi.Name+"SortableCol"+col.Name).Id(mi.Name+"SortableCol").Op("=").Lit(col.Name))
	}
	f.Const().Defs(defs...)
	f.Type().Id(mi.Name + "OrderTerm").Struct(
		jen.Id("Column").Id(mi.Name+"SortableCol"),
		jen.Id("Dir").Id("OrderDirection"),
	)
}

// enumStorageType returns the builtin type an enum column is actually
// bound to the driver as (string or int); for non-enum columns it's the
// same as baseGoType.
func enumStorageType(ti *model.TypeInfo) *jen.Statement {
	if ti.Kind == model.KindEnum && ti.Enum != nil && ti.Enum.Storage == model.KindInt {
		return jen.Int()
	}
	if ti.Kind == model.KindEnum {
		return jen.String()
	}
	return baseGoType(ti)
}

// enumCast wraps expr in a conversion to its column's storage type when
// the column is an enum (the driver binds string/int, not the named
// type), and returns expr unchanged otherwise.
func enumCast(col *inspect.ColumnInfo, expr *jen.Statement) *jen.Statement {
	if col.Type.Kind != model.KindEnum {
		return expr
	}
	return enumStorageType(col.Type).Call(expr)
}

func buildSerializers(f *jen.File, mi *inspect.ModelInfo) {
	serializeBody := []jen.Code{jen.Id("out").Op(":=").Map(jen.String()).Any().Values()}
	for _, col := range mi.Columns {
		if col.AutoIncrementPK {
			serializeBody = append(serializeBody, jen.If(jen.Id("v").Dot(col.Name).Op("!=").Nil()).Block(
				jen.Id("out").Index(jen.Lit(col.Name)).Op("=").Add(enumCast(col, jen.Op("*").Id("v").Dot(col.Name))),
			))
			continue
		}
		if col.Nullable {
			serializeBody = append(serializeBody, jen.If(jen.Id("v").Dot(col.Name).Op("!=").Nil()).Block(
				jen.Id("out").Index(jen.Lit(col.Name)).Op("=").Add(enumCast(col, jen.Op("*").Id("v").Dot(col.Name))),
			).Else().Block(
				jen.Id("out").Index(jen.Lit(col.Name)).Op("=").Nil(),
			))
			continue
		}
		serializeBody = append(serializeBody, jen.Id("out").Index(jen.Lit(col.Name)).Op("=").Add(enumCast(col, jen.Id("v").Dot(col.Name))))
	}
	serializeBody = append(serializeBody, jen.Return(jen.Id("out")))
	f.Func().Id(mi.Name + "Serialize").Params(jen.Id("v").Id(mi.Name + "Insert")).Map(jen.String()).Any().Block(serializeBody...)

	deserializeBody := []jen.Code{jen.Var().Id("out").Id(mi.Name)}
	for _, col := range mi.Columns {
		isEnum := col.Type.Kind == model.KindEnum
		if col.Nullable {
			var thenBlock []jen.Code
			if isEnum {
				thenBlock = []jen.Code{
					jen.Id("ev").Op(":=").Id(col.Type.Enum.GoTypeName).Call(jen.Id("v")),
					jen.Id("out").Dot(col.Name).Op("=").Op("&").Id("ev"),
				}
			} else {
				thenBlock = []jen.Code{jen.Id("out").Dot(col.Name).Op("=").Op("&").Id("v")}
			}
			deserializeBody = append(deserializeBody, jen.If(
				jen.List(jen.Id("v"), jen.Id("ok")).Op(":=").Id("row").Index(jen.Lit(col.Name)).Assert(enumStorageType(col.Type)),
				jen.Id("ok"),
			).Block(thenBlock...))
			continue
		}
		var assign *jen.Statement
		if isEnum {
			assign = jen.Id("out").Dot(col.Name).Op("=").Id(col.Type.Enum.GoTypeName).Call(jen.Id("v"))
		} else {
			assign = jen.Id("out").Dot(col.Name).Op("=").Id("v")
		}
		deserializeBody = append(deserializeBody, jen.If(
			jen.List(jen.Id("v"), jen.Id("ok")).Op(":=").Id("row").Index(jen.Lit(col.Name)).Assert(enumStorageType(col.Type)),
			jen.Id("ok"),
		).Block(assign))
	}
	deserializeBody = append(deserializeBody, jen.Return(jen.Id("out")))
	f.Func().Id(mi.Name+"Deserialize").Params(jen.Id("row").Map(jen.String()).Any()).Id(mi.Name).Block(deserializeBody...)
}

func buildTableType(f *jen.File, cfg Config, mi *inspect.ModelInfo) {
	tableName := mi.Name + "Table"
	f.Comment(tableDoc(mi.TableName))
	f.Type().Id(tableName).Struct(
		jen.Id("backend").Op("*").Qual(cfg.RuntimeImport, "Backend"),
		jen.Id("loader").Op("*").Qual(cfg.RuntimeImport, "Loader"),
	)

	buildApplyIncludesFunc(f, cfg, mi)

	f.Func().Params(jen.Id("t").Op("*").Id(tableName)).Id("Insert").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("data").Id(mi.Name+"Insert"),
	).Params(jen.Id(mi.Name), jen.Error()).Block(
		jen.List(jen.Id("row"), jen.Err()).Op(":=").Id("t").Dot("backend").Dot("InsertContext").Call(
			jen.Id("ctx"), jen.Lit(mi.Name), jen.Id(mi.Name+"Serialize").Call(jen.Id("data")),
		),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Id(mi.Name).Values(), jen.Err()),
		),
		jen.Return(jen.Id(mi.Name+"Deserialize").Call(jen.Id("row")), jen.Nil()),
	)

	f.Func().Params(jen.Id("t").Op("*").Id(tableName)).Id("InsertMany").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("data").Index().Id(mi.Name+"Insert"),
	).Params(jen.Index().Id(mi.Name), jen.Error()).Block(
		jen.Id("rows").Op(":=").Make(jen.Index().Map(jen.String()).Any(), jen.Lit(0), jen.Len(jen.Id("data"))),
		jen.For(jen.List(jen.Id("_"), jen.Id("d")).Op(":=").Range().Id("data")).Block(
			jen.Id("rows").Op("=").Append(jen.Id("rows"), jen.Id(mi.Name+"Serialize").Call(jen.Id("d"))),
		),
		jen.List(jen.Id("inserted"), jen.Err()).Op(":=").Id("t").Dot("backend").Dot("InsertManyContext").Call(jen.Id("ctx"), jen.Lit(mi.Name), jen.Id("rows")),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Err()),
		),
		jen.Id("out").Op(":=").Make(jen.Index().Id(mi.Name), jen.Lit(0), jen.Len(jen.Id("inserted"))),
		jen.For(jen.List(jen.Id("_"), jen.Id("row")).Op(":=").Range().Id("inserted")).Block(
			jen.Id("out").Op("=").Append(jen.Id("out"), jen.Id(mi.Name+"Deserialize").Call(jen.Id("row"))),
		),
		jen.Return(jen.Id("out"), jen.Nil()),
	)

	f.Func().Params(jen.Id("t").Op("*").Id(tableName)).Id("FindMany").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("where").Op("*").Id(mi.Name+"Where"),
		jen.Id("orderBy").Index().Id(mi.Name+"OrderTerm"),
		jen.Id("limit").Int(),
		jen.Id("offset").Int(),
		jen.Id("include").Id(mi.Name+"Include"),
	).Params(jen.Index().Id(mi.Name), jen.Error()).Block(
		jen.Id("terms").Op(":=").Make(jen.Index().Qual(cfg.RuntimeImport, "OrderTerm"), jen.Lit(0), jen.Len(jen.Id("orderBy"))),
		jen.For(jen.List(jen.Id("_"), jen.Id("o")).Op(":=").Range().Id("orderBy")).Block(
			jen.Id("terms").Op("=").Append(jen.Id("terms"), jen.Qual(cfg.RuntimeImport, "OrderTerm").Values(jen.Dict{
				jen.Id("Column"): jen.String().Call(jen.Id("o").Dot("Column")),
				jen.Id("Desc"):   jen.Id("o").Dot("Dir").Op("==").Id("Desc"),
			})),
		),
		jen.List(jen.Id("rows"), jen.Err()).Op(":=").Id("t").Dot("backend").Dot("FindManyContext").Call(
			jen.Id("ctx"), jen.Lit(mi.Name), jen.Id("flatten"+mi.Name+"Where").Call(jen.Id("where")), jen.Id("terms"), jen.Id("limit"), jen.Id("offset"),
		),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Err()),
		),
		jen.Id("out").Op(":=").Make(jen.Index().Id(mi.Name), jen.Lit(0), jen.Len(jen.Id("rows"))),
		jen.Id("loader").Op(":=").Qual(cfg.RuntimeImport, "NewLoader").Call(jen.Id("t").Dot("backend")),
		jen.For(jen.List(jen.Id("_"), jen.Id("row")).Op(":=").Range().Id("rows")).Block(
			jen.Id("item").Op(":=").Id(mi.Name+"Deserialize").Call(jen.Id("row")),
			jen.If(jen.Err().Op(":=").Id("applyIncludes"+mi.Name).Call(jen.Id("ctx"), jen.Id("loader"), jen.Id("include"), jen.Id("row"), jen.Op("&").Id("item")), jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Nil(), jen.Err()),
			),
			jen.Id("out").Op("=").Append(jen.Id("out"), jen.Id("item")),
		),
		jen.Return(jen.Id("out"), jen.Nil()),
	)

	f.Func().Params(jen.Id("t").Op("*").Id(tableName)).Id("FindFirst").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("where").Op("*").Id(mi.Name+"Where"),
		jen.Id("include").Id(mi.Name+"Include"),
	).Params(jen.Id(mi.Name), jen.Bool(), jen.Error()).Block(
		jen.List(jen.Id("row"), jen.Id("ok"), jen.Err()).Op(":=").Id("t").Dot("backend").Dot("FindFirstContext").Call(
			jen.Id("ctx"), jen.Lit(mi.Name), jen.Id("flatten"+mi.Name+"Where").Call(jen.Id("where")), jen.Nil(),
		),
		jen.If(jen.Err().Op("!=").Nil().Op("||").Op("!").Id("ok")).Block(
			jen.Return(jen.Id(mi.Name).Values(), jen.Id("ok"), jen.Err()),
		),
		jen.Id("item").Op(":=").Id(mi.Name+"Deserialize").Call(jen.Id("row")),
		jen.If(jen.Err().Op(":=").Id("applyIncludes"+mi.Name).Call(jen.Id("ctx"), jen.Qual(cfg.RuntimeImport, "NewLoader").Call(jen.Id("t").Dot("backend")), jen.Id("include"), jen.Id("row"), jen.Op("&").Id("item")), jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Id(mi.Name).Values(), jen.False(), jen.Err()),
		),
		jen.Return(jen.Id("item"), jen.True(), jen.Nil()),
	)
}

// buildApplyIncludesFunc emits applyIncludes{M}, which resolves every
// relation flagged true in an {M}Include through the shared Loader and
// assigns it onto the typed result's matching field.
func buildApplyIncludesFunc(f *jen.File, cfg Config, mi *inspect.ModelInfo) {
	body := []jen.Code{}
	for _, rel := range mi.Relations {
		var thenBlock []jen.Code
		thenBlock = append(thenBlock,
			jen.List(jen.Id("resolved"), jen.Err()).Op(":=").Id("loader").Dot("Resolve").Call(
				jen.Id("ctx"), jen.Lit(mi.Name), jen.Id("row"), jen.Lit(rel.AttrName),
			),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
		)
		switch rel.Cardinality {
		case inspect.Many:
			thenBlock = append(thenBlock,
				jen.If(jen.List(jen.Id("rows"), jen.Id("ok")).Op(":=").Id("resolved").Assert(jen.Index().Map(jen.String()).Any()), jen.Id("ok")).Block(
					jen.Id("list").Op(":=").Make(jen.Index().Id(rel.TargetModel), jen.Lit(0), jen.Len(jen.Id("rows"))),
					jen.For(jen.List(jen.Id("_"), jen.Id("r")).Op(":=").Range().Id("rows")).Block(
						jen.Id("list").Op("=").Append(jen.Id("list"), jen.Id(rel.TargetModel+"Deserialize").Call(jen.Id("r"))),
					),
					jen.Id("out").Dot(rel.AttrName).Op("=").Id("list"),
				),
			)
		case inspect.OptionalOne:
			thenBlock = append(thenBlock,
				jen.If(jen.List(jen.Id("r"), jen.Id("ok")).Op(":=").Id("resolved").Assert(jen.Map(jen.String()).Any()), jen.Id("ok").Op("&&").Id("r").Op("!=").Nil()).Block(
					jen.Id("rv").Op(":=").Id(rel.TargetModel+"Deserialize").Call(jen.Id("r")),
					jen.Id("out").Dot(rel.AttrName).Op("=").Op("&").Id("rv"),
				),
			)
		default:
			thenBlock = append(thenBlock,
				jen.If(jen.List(jen.Id("r"), jen.Id("ok")).Op(":=").Id("resolved").Assert(jen.Map(jen.String()).Any()), jen.Id("ok").Op("&&").Id("r").Op("!=").Nil()).Block(
					jen.Id("out").Dot(rel.AttrName).Op("=").Id(rel.TargetModel+"Deserialize").Call(jen.Id("r")),
				),
			)
		}
		body = append(body, jen.If(jen.Id("include").Index(jen.Id(mi.Name+"IncludeCol"+rel.AttrName))).Block(thenBlock...))
	}
	body = append(body, jen.Return(jen.Nil()))

	f.Func().Id("applyIncludes"+mi.Name).Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("loader").Op("*").Qual(cfg.RuntimeImport, "Loader"),
		jen.Id("include").Id(mi.Name+"Include"),
		jen.Id("row").Map(jen.String()).Any(),
		jen.Id("out").Op("*").Id(mi.Name),
	).Error().Block(body...)
}

func buildClientFile(cfg Config, g *inspect.Graph, names []string) *jen.File {
	f := jen.NewFile(cfg.Package)
	f.HeaderComment("Code generated by the client generator. Hand edits are preserved only until the next run.")

	fields := make([]jen.Code, 0, len(names))
	assigns := jen.Dict{}
	for _, name := range names {
		attr := strings.ToLower(name[:1]) + name[1:]
		fields = append(fields, jen.Id(attr).Op("*").Id(name+"Table"))
		assigns[jen.Id(attr)] = jen.Op("&").Id(name + "Table").Values(jen.Dict{
			jen.Id("backend"): jen.Id("backend"),
			jen.Id("loader"):  jen.Id("loader"),
		})
	}
	f.Type().Id("Client").Struct(fields...)

	f.Func().Id("NewClient").Params(jen.Id("backend").Op("*").Qual(cfg.RuntimeImport, "Backend")).Op("*").Id("Client").Block(
		jen.Id("loader").Op(":=").Qual(cfg.RuntimeImport, "NewLoader").Call(jen.Id("backend")),
		jen.Return(jen.Op("&").Id("Client").Values(assigns)),
	)

	for _, name := range names {
		attr := strings.ToLower(name[:1]) + name[1:]
		f.Func().Params(jen.Id("c").Op("*").Id("Client")).Id(name).Params().Op("*").Id(name+"Table").Block(
			jen.Return(jen.Id("c").Dot(attr)),
		)
	}

	return f
}

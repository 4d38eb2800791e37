package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dclass/dclassql/inspect"
	"github.com/dclass/dclassql/model"
	"github.com/dclass/dclassql/query"
)

// OrderTerm is one column of an ORDER BY clause.
type OrderTerm struct {
	Column string
	Desc   bool
}

// Option configures a Backend.
type Option func(*Backend)

// WithEcho turns on SQL echo via slog at Debug level.
func WithEcho(echo bool) Option {
	return func(b *Backend) { b.echo = echo }
}

// WithLogger overrides the slog.Logger used for SQL echo and
// diagnostics. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) { b.logger = l }
}

// WithSlowQueryThreshold sets the duration above which a statement is
// counted in Stats.Snapshot().SlowQueries. Defaults to
// DefaultSlowQueryThreshold.
func WithSlowQueryThreshold(d time.Duration) Option {
	return func(b *Backend) { b.Stats.threshold = d }
}

// Backend executes typed CRUD for one datasource. It owns exactly one
// *sql.DB (itself a pool) and holds no identity map of its own; identity
// maps live on a Loader, which is not safe for concurrent use.
type Backend struct {
	db     *sql.DB
	graph  *inspect.Graph
	echo   bool
	logger *slog.Logger
	Stats  QueryStats
	closed bool
}

// NewBackend builds a Backend executing against db, interpreting models
// according to graph.
func NewBackend(db *sql.DB, graph *inspect.Graph, opts ...Option) *Backend {
	b := &Backend{db: db, graph: graph, logger: slog.Default()}
	b.Stats.threshold = DefaultSlowQueryThreshold
	for _, o := range opts {
		o(b)
	}
	return b
}

// Close releases the underlying connection pool. Backend methods called
// afterward return *ConnectionClosedError.
func (b *Backend) Close() error {
	b.closed = true
	return b.db.Close()
}

func (b *Backend) modelOrErr(name string) (*inspect.ModelInfo, error) {
	mi := b.graph.Model(name)
	if mi == nil {
		return nil, &NoSuchTableError{Model: name}
	}
	return mi, nil
}

func (b *Backend) exec(ctx context.Context, sqlText string, args []any) (sql.Result, error) {
	if b.closed {
		return nil, &ConnectionClosedError{}
	}
	b.echoSQL(sqlText, args)
	start := time.Now()
	res, err := b.db.ExecContext(ctx, sqlText, args...)
	b.Stats.recordDuration(time.Since(start))
	b.Stats.recordQuery()
	if err != nil {
		b.Stats.recordError()
	}
	return res, err
}

func (b *Backend) query(ctx context.Context, sqlText string, args []any) (*sql.Rows, error) {
	if b.closed {
		return nil, &ConnectionClosedError{}
	}
	b.echoSQL(sqlText, args)
	start := time.Now()
	rows, err := b.db.QueryContext(ctx, sqlText, args...)
	b.Stats.recordDuration(time.Since(start))
	b.Stats.recordQuery()
	if err != nil {
		b.Stats.recordError()
	}
	return rows, err
}

func (b *Backend) echoSQL(sqlText string, args []any) {
	if !b.echo {
		return
	}
	b.logger.Debug("sql", "stmt", sqlText, "args", args)
}

// InsertContext inserts one row and returns the committed row exactly as
// read back from the database — the insert never trusts caller-supplied
// values for columns the database can compute (defaults, auto-increment
// primary keys).
func (b *Backend) InsertContext(ctx context.Context, modelName string, values map[string]any) (map[string]any, error) {
	mi, err := b.modelOrErr(modelName)
	if err != nil {
		return nil, err
	}

	cols, args := insertColumns(mi, values)
	sqlText := buildInsertSQL(mi.TableName, cols)
	res, err := b.exec(ctx, sqlText, args)
	if err != nil {
		return nil, translateExecError(mi, err)
	}
	b.Stats.recordInsert()

	pkValues, err := resolvePrimaryKeyAfterInsert(mi, values, res)
	if err != nil {
		return nil, err
	}
	return b.fetchByPrimaryKey(ctx, mi, pkValues)
}

// InsertManyContext inserts every row in one statement and returns each
// committed row in input order. Every row must share the same set of
// provided columns. Auto-increment primary keys are assigned the
// contiguous range ending at the statement's last insert id, matching
// SQLite's own guarantee for a single multi-row INSERT with no
// concurrent writers.
func (b *Backend) InsertManyContext(ctx context.Context, modelName string, rows []map[string]any) ([]map[string]any, error) {
	mi, err := b.modelOrErr(modelName)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols, _ := insertColumns(mi, rows[0])
	var args []any
	for _, row := range rows {
		rowCols, rowArgs := insertColumns(mi, row)
		if !sameColumns(cols, rowCols) {
			return nil, fmt.Errorf("runtime: InsertManyContext requires every row to set the same columns")
		}
		args = append(args, rowArgs...)
	}

	sqlText := buildBulkInsertSQL(mi.TableName, cols, len(rows))
	res, err := b.exec(ctx, sqlText, args)
	if err != nil {
		return nil, translateExecError(mi, err)
	}
	for range rows {
		b.Stats.recordInsert()
	}

	out := make([]map[string]any, 0, len(rows))
	if usesAutoIncrement(mi) {
		lastID, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("runtime: reading last insert id: %w", err)
		}
		firstID := lastID - int64(len(rows)) + 1
		pkCol := mi.PrimaryKey[0]
		for i := range rows {
			row, err := b.fetchByPrimaryKey(ctx, mi, []string{fmt.Sprint(firstID + int64(i))})
			if err != nil {
				return nil, err
			}
			_ = pkCol
			out = append(out, row)
		}
		return out, nil
	}

	for _, row := range rows {
		pkValues := make([]string, 0, len(mi.PrimaryKey))
		for _, pk := range mi.PrimaryKey {
			pkValues = append(pkValues, fmt.Sprint(row[pk]))
		}
		fetched, err := b.fetchByPrimaryKey(ctx, mi, pkValues)
		if err != nil {
			return nil, err
		}
		out = append(out, fetched)
	}
	return out, nil
}

// FindManyContext returns every row matching where, ordered and paginated
// as requested.
func (b *Backend) FindManyContext(ctx context.Context, modelName string, where map[string]any, orderBy []OrderTerm, limit, offset int) ([]map[string]any, error) {
	mi, err := b.modelOrErr(modelName)
	if err != nil {
		return nil, err
	}
	sqlText, args, err := buildSelect(mi, b.graph, where, orderBy, limit, offset)
	if err != nil {
		return nil, err
	}
	rows, err := b.query(ctx, sqlText, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(mi, rows)
}

// FindFirstContext returns the first row matching where, or ok=false if
// none matched.
func (b *Backend) FindFirstContext(ctx context.Context, modelName string, where map[string]any, orderBy []OrderTerm) (map[string]any, bool, error) {
	rows, err := b.FindManyContext(ctx, modelName, where, orderBy, 1, 0)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0], true, nil
}

func (b *Backend) fetchByPrimaryKey(ctx context.Context, mi *inspect.ModelInfo, pkValues []string) (map[string]any, error) {
	where := make(map[string]any, len(mi.PrimaryKey))
	for i, col := range mi.PrimaryKey {
		where[col] = castLike(mi.Column(col), pkValues[i])
	}
	sqlText, args, err := buildSelect(mi, b.graph, where, nil, 1, 0)
	if err != nil {
		return nil, err
	}
	rows, err := b.query(ctx, sqlText, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	found, err := scanRows(mi, rows)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, &RelationUnresolvableError{Model: mi.Name, Relation: strings.Join(mi.PrimaryKey, ",")}
	}
	return found[0], nil
}

func castLike(col *inspect.ColumnInfo, s string) any {
	if col == nil {
		return s
	}
	if col.Type.Kind == model.KindInt {
		var n int64
		fmt.Sscan(s, &n)
		return n
	}
	return s
}

func insertColumns(mi *inspect.ModelInfo, values map[string]any) ([]string, []any) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	args := make([]any, 0, len(names))
	for _, n := range names {
		args = append(args, values[n])
	}
	return names, args
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func usesAutoIncrement(mi *inspect.ModelInfo) bool {
	return len(mi.PrimaryKey) == 1 && mi.Column(mi.PrimaryKey[0]) != nil && mi.Column(mi.PrimaryKey[0]).AutoIncrementPK
}

func buildInsertSQL(table string, cols []string) string {
	if len(cols) == 0 {
		return fmt.Sprintf(`INSERT INTO %q DEFAULT VALUES`, table)
	}
	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = `"` + c + `"`
		placeholders[i] = "?"
	}
	return fmt.Sprintf(`INSERT INTO %q (%s) VALUES (%s)`, table, strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
}

func buildBulkInsertSQL(table string, cols []string, rowCount int) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = `"` + c + `"`
	}
	rowPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",") + ")"
	rowsSQL := make([]string, rowCount)
	for i := range rowsSQL {
		rowsSQL[i] = rowPlaceholder
	}
	return fmt.Sprintf(`INSERT INTO %q (%s) VALUES %s`, table, strings.Join(quoted, ", "), strings.Join(rowsSQL, ", "))
}

func resolvePrimaryKeyAfterInsert(mi *inspect.ModelInfo, values map[string]any, res sql.Result) ([]string, error) {
	if usesAutoIncrement(mi) {
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("runtime: reading last insert id: %w", err)
		}
		return []string{fmt.Sprint(id)}, nil
	}
	out := make([]string, 0, len(mi.PrimaryKey))
	for _, pk := range mi.PrimaryKey {
		out = append(out, fmt.Sprint(values[pk]))
	}
	return out, nil
}

func buildSelect(mi *inspect.ModelInfo, g *inspect.Graph, where map[string]any, orderBy []OrderTerm, limit, offset int) (string, []any, error) {
	colNames := make([]string, 0, len(mi.Columns))
	for _, c := range mi.Columns {
		colNames = append(colNames, `t0."`+c.Name+`"`)
	}
	sqlText := fmt.Sprintf(`SELECT %s FROM %q t0`, strings.Join(colNames, ", "), mi.TableName)

	var args []any
	if len(where) > 0 {
		cond, condArgs, err := query.Compile(where, mi, g)
		if err != nil {
			return "", nil, err
		}
		sqlText += " WHERE " + cond
		args = condArgs
	}
	if len(orderBy) > 0 {
		parts := make([]string, 0, len(orderBy))
		for _, term := range orderBy {
			dir := "ASC"
			if term.Desc {
				dir = "DESC"
			}
			parts = append(parts, fmt.Sprintf(`t0."%s" %s`, term.Column, dir))
		}
		sqlText += " ORDER BY " + strings.Join(parts, ", ")
	}
	if limit > 0 {
		sqlText += fmt.Sprintf(" LIMIT %d", limit)
		if offset > 0 {
			sqlText += fmt.Sprintf(" OFFSET %d", offset)
		}
	}
	return sqlText, args, nil
}

func scanRows(mi *inspect.ModelInfo, rows *sql.Rows) ([]map[string]any, error) {
	var out []map[string]any
	for rows.Next() {
		dest := make([]any, len(mi.Columns))
		ptrs := make([]any, len(mi.Columns))
		for i := range dest {
			ptrs[i] = &dest[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(mi.Columns))
		for i, c := range mi.Columns {
			row[c.Name] = dest[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func translateExecError(mi *inspect.ModelInfo, err error) error {
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "NOT NULL constraint") ||
		strings.Contains(msg, "CHECK constraint") {
		return &IntegrityViolationError{Model: mi.Name, Detail: msg}
	}
	return err
}

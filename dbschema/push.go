package dbschema

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	atlasschema "ariga.io/atlas/sql/schema"

	"github.com/dclass/dclassql/inspect"
)

// PushOptions configures Push.
type PushOptions struct {
	// ConfirmRebuild allows Push to perform a copy-through rebuild when a
	// change cannot be expressed as an in-place ALTER. Without it, Push
	// returns a *RebuildRejectedError instead of touching the table.
	ConfirmRebuild bool
	// SyncIndexes drops live indexes that are no longer declared. Without
	// it, stale indexes are left in place.
	SyncIndexes bool
	Logger      *slog.Logger
}

// Push reconciles every table named by graph with the live database
// reachable through db, in graph.Order.
func Push(ctx context.Context, db *sql.DB, graph *inspect.Graph, opts PushOptions) error {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	for _, name := range graph.Order {
		mi := graph.Model(name)
		if ds, ok := graph.DataSources[mi.DataSourceKey]; ok && ds.Provider != "" && ds.Provider != "sqlite" {
			return &UnsupportedProviderError{Provider: ds.Provider}
		}
		if err := pushOne(ctx, db, mi, opts, log); err != nil {
			return err
		}
	}
	return nil
}

func pushOne(ctx context.Context, db *sql.DB, mi *inspect.ModelInfo, opts PushOptions, log *slog.Logger) error {
	desired := BuildTable(mi)
	live, err := InspectLive(ctx, db, mi.TableName)
	if err != nil {
		return err
	}

	diff := Compare(desired, live)
	if diff.Empty() {
		log.Debug("schema up to date", "table", mi.TableName)
		return nil
	}

	if diff.TableIsNew {
		log.Info("creating table", "table", mi.TableName)
		if _, err := db.ExecContext(ctx, CreateTableSQL(mi)); err != nil {
			return fmt.Errorf("dbschema: creating %q: %w", mi.TableName, err)
		}
		return createMissingIndexes(ctx, db, mi, nil, log)
	}

	if diff.RequiresRebuild {
		if !opts.ConfirmRebuild {
			return &RebuildRejectedError{Table: mi.TableName, Reason: diff.RebuildReason}
		}
		log.Warn("rebuilding table", "table", mi.TableName, "reason", diff.RebuildReason)
		return rebuildTable(ctx, db, mi, live)
	}

	for _, c := range diff.Columns {
		if c.Kind != "added" {
			continue
		}
		col := mi.Column(c.Name)
		stmt := fmt.Sprintf("ALTER TABLE %q ADD COLUMN %q %s", mi.TableName, col.Name, col.Type.SQLiteType())
		log.Info("adding column", "table", mi.TableName, "column", col.Name)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("dbschema: adding column %q to %q: %w", col.Name, mi.TableName, err)
		}
	}

	existing, err := existingIndexNames(ctx, db, mi.TableName)
	if err != nil {
		return err
	}
	if err := createMissingIndexes(ctx, db, mi, existing, log); err != nil {
		return err
	}
	if opts.SyncIndexes {
		if err := dropStaleIndexes(ctx, db, mi, existing, log); err != nil {
			return err
		}
	}
	return nil
}

func createMissingIndexes(ctx context.Context, db *sql.DB, mi *inspect.ModelInfo, existing map[string]bool, log *slog.Logger) error {
	for _, idx := range mi.Indexes {
		if existing != nil && existing[idx.Name] {
			continue
		}
		log.Info("creating index", "table", mi.TableName, "index", idx.Name)
		if _, err := db.ExecContext(ctx, CreateIndexSQL(mi.TableName, idx)); err != nil {
			return fmt.Errorf("dbschema: creating index %q: %w", idx.Name, err)
		}
	}
	return nil
}

func dropStaleIndexes(ctx context.Context, db *sql.DB, mi *inspect.ModelInfo, existing map[string]bool, log *slog.Logger) error {
	declared := make(map[string]bool, len(mi.Indexes))
	for _, idx := range mi.Indexes {
		declared[idx.Name] = true
	}
	for name := range existing {
		if declared[name] || strings.HasPrefix(name, "sqlite_") {
			continue
		}
		log.Info("dropping stale index", "table", mi.TableName, "index", name)
		if _, err := db.ExecContext(ctx, DropIndexSQL(name)); err != nil {
			return fmt.Errorf("dbschema: dropping index %q: %w", name, err)
		}
	}
	return nil
}

// rebuildTable performs the copy-through rebuild: create the new table
// under a temporary name, copy every column present on both shapes,
// drop the old table, and rename the new one into place.
func rebuildTable(ctx context.Context, db *sql.DB, mi *inspect.ModelInfo, live *atlasschema.Table) error {
	tmpName := "_dclassql_rebuild_" + mi.TableName
	tmpMi := &inspect.ModelInfo{
		Name: mi.Name, TableName: tmpName, Columns: mi.Columns,
		PrimaryKey: mi.PrimaryKey, Indexes: nil,
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %q", tmpName)); err != nil {
		return fmt.Errorf("dbschema: clearing rebuild staging table: %w", err)
	}
	if _, err := db.ExecContext(ctx, CreateTableSQL(tmpMi)); err != nil {
		return fmt.Errorf("dbschema: creating rebuild staging table: %w", err)
	}

	shared := sharedColumns(mi, live)
	if len(shared) > 0 {
		cols := strings.Join(quoteAll(shared), ", ")
		copySQL := fmt.Sprintf("INSERT INTO %q (%s) SELECT %s FROM %q", tmpName, cols, cols, mi.TableName)
		if _, err := db.ExecContext(ctx, copySQL); err != nil {
			return fmt.Errorf("dbschema: copying rows into rebuild staging table: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP TABLE %q", mi.TableName)); err != nil {
		return fmt.Errorf("dbschema: dropping old table %q: %w", mi.TableName, err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %q RENAME TO %q", tmpName, mi.TableName)); err != nil {
		return fmt.Errorf("dbschema: renaming rebuilt table into place: %w", err)
	}

	return createMissingIndexes(ctx, db, mi, nil, slog.Default())
}

func sharedColumns(mi *inspect.ModelInfo, live *atlasschema.Table) []string {
	liveCols := make(map[string]bool, len(live.Columns))
	for _, c := range live.Columns {
		liveCols[c.Name] = true
	}
	var shared []string
	for _, c := range mi.Columns {
		if liveCols[c.Name] {
			shared = append(shared, c.Name)
		}
	}
	return shared
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = `"` + n + `"`
	}
	return out
}

// InspectLive reads the current shape of tableName from SQLite's own
// catalog. It returns nil, nil if the table does not exist.
func InspectLive(ctx context.Context, db *sql.DB, tableName string) (*atlasschema.Table, error) {
	var exists int
	err := db.QueryRowContext(ctx,
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?`, tableName).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("dbschema: checking existence of %q: %w", tableName, err)
	}
	if exists == 0 {
		return nil, nil
	}

	t := &atlasschema.Table{Name: tableName}

	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", tableName))
	if err != nil {
		return nil, fmt.Errorf("dbschema: reading columns of %q: %w", tableName, err)
	}
	defer rows.Close()

	var pkCols []string
	for rows.Next() {
		var cid, notnull, pk int
		var name, ctype string
		var dflt any
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, &SchemaInferenceError{Table: tableName, Detail: err.Error()}
		}
		col := &atlasschema.Column{
			Name: name,
			// SQLite reports notnull=0 for an INTEGER PRIMARY KEY; key
			// columns are non-null, as BuildTable declares them.
			Type: &atlasschema.ColumnType{Type: typeFromSQLiteDecl(ctype), Null: notnull == 0 && pk == 0},
		}
		t.Columns = append(t.Columns, col)
		if pk > 0 {
			pkCols = append(pkCols, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// BuildTable gives an inline auto-increment key no PrimaryKey index,
	// so a live table declared that way is read back the same way.
	inline := false
	if len(pkCols) == 1 {
		var createSQL string
		if err := db.QueryRowContext(ctx,
			`SELECT sql FROM sqlite_master WHERE type='table' AND name=?`, tableName).Scan(&createSQL); err != nil {
			return nil, fmt.Errorf("dbschema: reading definition of %q: %w", tableName, err)
		}
		inline = strings.Contains(strings.ToUpper(createSQL), "AUTOINCREMENT")
	}
	if len(pkCols) > 0 && !inline {
		parts := make([]*atlasschema.IndexPart, 0, len(pkCols))
		for _, name := range pkCols {
			parts = append(parts, &atlasschema.IndexPart{C: findColumn(t, name)})
		}
		t.PrimaryKey = &atlasschema.Index{Table: t, Parts: parts}
	}

	idxRows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_list(%q)", tableName))
	if err != nil {
		return nil, fmt.Errorf("dbschema: reading indexes of %q: %w", tableName, err)
	}
	defer idxRows.Close()

	type idxMeta struct {
		name   string
		unique bool
	}
	var metas []idxMeta
	for idxRows.Next() {
		var seq int
		var name, origin string
		var unique, partial int
		if err := idxRows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return nil, &SchemaInferenceError{Table: tableName, Detail: err.Error()}
		}
		metas = append(metas, idxMeta{name: name, unique: unique == 1})
	}
	if err := idxRows.Err(); err != nil {
		return nil, err
	}

	for _, m := range metas {
		cols, err := indexColumns(ctx, db, m.name)
		if err != nil {
			return nil, err
		}
		parts := make([]*atlasschema.IndexPart, 0, len(cols))
		for _, name := range cols {
			parts = append(parts, &atlasschema.IndexPart{C: findColumn(t, name)})
		}
		t.Indexes = append(t.Indexes, &atlasschema.Index{Name: m.name, Unique: m.unique, Table: t, Parts: parts})
	}

	return t, nil
}

func indexColumns(ctx context.Context, db *sql.DB, indexName string) ([]string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_info(%q)", indexName))
	if err != nil {
		return nil, fmt.Errorf("dbschema: reading index %q: %w", indexName, err)
	}
	defer rows.Close()
	var cols []string
	for rows.Next() {
		var seqno, cid int
		var name string
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

func typeFromSQLiteDecl(decl string) atlasschema.Type {
	switch strings.ToUpper(decl) {
	case "INTEGER":
		return &atlasschema.IntegerType{T: "integer"}
	case "REAL":
		return &atlasschema.FloatType{T: "real"}
	case "BLOB":
		return &atlasschema.BinaryType{T: "blob"}
	default:
		return &atlasschema.StringType{T: "text"}
	}
}

func existingIndexNames(ctx context.Context, db *sql.DB, tableName string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?`, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out[name] = true
	}
	return out, rows.Err()
}

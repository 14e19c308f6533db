package cmd

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iksnae/session-archive/internal"
)

var (
	inspectFormat     string
	inspectSampleRows int
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [database-path]",
	Short: "Inspect the session store schema and contents",
	Long: `Inspect the schema and contents of a session store database.

This command provides detailed information about:
  • Database schema (tables, columns, types)
  • Row counts and key prefixes of sessionKV
  • Sample rows from each table

Examples:
  session-archive inspect                          # Inspect the configured store
  session-archive inspect /path/to/sessions.db     # Inspect a specific database
  session-archive inspect --format json --sample 5 # JSON output with 5 sample rows`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		if len(args) > 0 {
			path = args[0]
		} else {
			var err error
			if path, err = resolveDBPath(); err != nil {
				return err
			}
		}

		db, err := internal.OpenReadOnlyDatabase(path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() { _ = db.Close() }()

		report, err := inspectDatabase(db, path)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch inspectFormat {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		case "text":
			printReport(out, report)
			return nil
		default:
			return fmt.Errorf("unsupported format: %s (supported: text, json)", inspectFormat)
		}
	},
}

// DatabaseReport describes a store database
type DatabaseReport struct {
	Path   string        `json:"path"`
	Tables []TableReport `json:"tables"`
}

// TableReport describes one table
type TableReport struct {
	Name     string              `json:"name"`
	Rows     int                 `json:"rows"`
	Columns  []ColumnInfo        `json:"columns"`
	Prefixes map[string]int      `json:"prefixes,omitempty"`
	Samples  []map[string]string `json:"samples,omitempty"`
}

type ColumnInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	NotNull    bool   `json:"notNull"`
	PrimaryKey bool   `json:"primaryKey"`
}

func inspectDatabase(db *sql.DB, path string) (*DatabaseReport, error) {
	tables, err := getTables(db)
	if err != nil {
		return nil, fmt.Errorf("failed to get tables: %w", err)
	}

	report := &DatabaseReport{Path: path}
	for _, name := range tables {
		table, err := inspectTable(db, name)
		if err != nil {
			internal.LogWarn("Error inspecting table %s: %v", name, err)
			continue
		}
		report.Tables = append(report.Tables, *table)
	}
	return report, nil
}

func getTables(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			continue
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func inspectTable(db *sql.DB, tableName string) (*TableReport, error) {
	table := &TableReport{Name: tableName}
	if err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %q", tableName)).Scan(&table.Rows); err != nil {
		return nil, fmt.Errorf("failed to get row count: %w", err)
	}

	columns, err := getTableSchema(db, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %w", err)
	}
	table.Columns = columns

	if tableName == "sessionKV" {
		if table.Prefixes, err = keyPrefixes(db); err != nil {
			return nil, err
		}
	}
	if table.Rows > 0 && inspectSampleRows > 0 {
		if table.Samples, err = sampleRows(db, tableName, columns, inspectSampleRows); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func getTableSchema(db *sql.DB, tableName string) ([]ColumnInfo, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%q)", tableName))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var columns []ColumnInfo
	for rows.Next() {
		var col ColumnInfo
		var cid int
		var notNull, pk int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &defaultValue, &pk); err != nil {
			continue
		}
		col.NotNull = notNull == 1
		col.PrimaryKey = pk == 1
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

// keyPrefixes counts sessionKV keys by the part before the first colon
func keyPrefixes(db *sql.DB) (map[string]int, error) {
	rows, err := db.Query("SELECT key FROM sessionKV")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		prefix, _, _ := strings.Cut(key, ":")
		counts[prefix]++
	}
	return counts, rows.Err()
}

func sampleRows(db *sql.DB, tableName string, columns []ColumnInfo, limit int) ([]map[string]string, error) {
	colNames := make([]string, len(columns))
	for i, col := range columns {
		colNames[i] = fmt.Sprintf("%q", col.Name)
	}

	query := fmt.Sprintf("SELECT %s FROM %q LIMIT %d", strings.Join(colNames, ", "), tableName, limit)
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var samples []map[string]string
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(map[string]string, len(columns))
		for i, col := range columns {
			row[col.Name] = previewValue(values[i])
		}
		samples = append(samples, row)
	}
	return samples, rows.Err()
}

func previewValue(val any) string {
	if val == nil {
		return "<NULL>"
	}
	var s string
	if b, ok := val.([]byte); ok {
		s = string(b)
	} else {
		s = fmt.Sprintf("%v", val)
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + "..."
	}
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

func printReport(out io.Writer, report *DatabaseReport) {
	if len(report.Tables) == 0 {
		_, _ = fmt.Fprintln(out, "⚠️  No tables found in database")
		return
	}

	_, _ = fmt.Fprintf(out, "📋 Database: %s\n", report.Path)
	_, _ = fmt.Fprintf(out, "📊 Found %d table(s)\n\n", len(report.Tables))

	for _, table := range report.Tables {
		_, _ = fmt.Fprintf(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
		_, _ = fmt.Fprintf(out, "📦 Table: %s\n", table.Name)
		_, _ = fmt.Fprintf(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
		_, _ = fmt.Fprintf(out, "📊 Rows: %d\n\n", table.Rows)

		_, _ = fmt.Fprintf(out, "📐 Schema:\n")
		for _, col := range table.Columns {
			pk := ""
			if col.PrimaryKey {
				pk = " [PRIMARY KEY]"
			}
			notNull := ""
			if col.NotNull {
				notNull = " NOT NULL"
			}
			_, _ = fmt.Fprintf(out, "  • %s: %s%s%s\n", col.Name, col.Type, notNull, pk)
		}

		if len(table.Prefixes) > 0 {
			prefixes := make([]string, 0, len(table.Prefixes))
			for p := range table.Prefixes {
				prefixes = append(prefixes, p)
			}
			sort.Strings(prefixes)
			_, _ = fmt.Fprintf(out, "\n🔑 Keys:\n")
			for _, p := range prefixes {
				_, _ = fmt.Fprintf(out, "  • %s: %d\n", p, table.Prefixes[p])
			}
		}

		if len(table.Samples) > 0 {
			_, _ = fmt.Fprintf(out, "\n📄 Sample Data (first %d rows):\n", len(table.Samples))
			for i, row := range table.Samples {
				_, _ = fmt.Fprintf(out, "\n  Row %d:\n", i+1)
				for _, col := range table.Columns {
					_, _ = fmt.Fprintf(out, "    %s: %s\n", col.Name, row[col.Name])
				}
			}
		}
		_, _ = fmt.Fprintln(out)
	}
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "text", "Output format (text, json)")
	inspectCmd.Flags().IntVar(&inspectSampleRows, "sample", 3, "Number of sample rows to show")
}

package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iksnae/session-archive/internal"
	"github.com/iksnae/session-archive/internal/export"
)

var (
	format    string
	outputDir string
	archiveID string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a session to file",
	Long: `Export a stored session to one of: ` + strings.Join(export.Formats, ", ") + `.

The zip format writes the portable session archive that 'import' reads
back. Other formats are one-way renderings. Output is written to
session_<id>.<ext> in --out (default: current directory).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _, db, err := loadSession(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}
		if ae, ok := exporter.(*export.ArchiveExporter); ok {
			ae.SessionID = archiveID
		}

		snapshot := session.Clone()
		var buf bytes.Buffer
		err = internal.ShowProgress(context.Background(), fmt.Sprintf("Exporting session %s as %s", session.ID, exporter.Extension()), func() error {
			return exporter.Export(snapshot, &buf)
		})
		if err != nil {
			return err
		}

		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return &internal.StorageError{Path: outputDir, Op: "write", Err: err}
		}
		path := filepath.Join(outputDir, export.FileName(exporter, snapshot.ID))
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return &internal.StorageError{Path: path, Op: "write", Err: err}
		}

		if _, ok := exporter.(*export.ArchiveExporter); ok {
			recordCatalog(path, internal.CatalogExported, buf.Bytes(), snapshot)
		}

		internal.LogInfo("Wrote %s (%s)", path, internal.FormatBytes(int64(buf.Len())))
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

// recordCatalog notes an archive in the catalog. Catalog failures never
// fail the command that produced the archive.
func recordCatalog(path, direction string, data []byte, session *internal.Session) {
	catalog, err := openCatalog()
	if err == nil {
		_, err = catalog.Record(path, direction, data, session)
	}
	if err != nil {
		internal.LogWarn("Failed to update catalog: %v", err)
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "zip", "Export format ("+strings.Join(export.Formats, ", ")+")")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", ".", "Output directory")
	exportCmd.Flags().StringVar(&archiveID, "archive-id", "", "Session id recorded inside a zip archive (default: the session's own id)")
}

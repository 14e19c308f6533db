package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iksnae/session-archive/internal"
	"github.com/iksnae/session-archive/internal/archive"
)

var (
	importVerifyOnly bool
	importID         string
	importForce      bool
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <archive.zip>",
	Short: "Restore a session from an archive",
	Long: `Read a session archive and save it to the local store.

The archive is validated completely before anything is stored. A failed
read reports its kind: MalformedDocument, SchemaViolation, MissingConfig,
MissingManifest, MissingPayload, IndexConflict, SparseManifest or
OrphanFileRecord.

With --verify-only the archive is read and summarized but not stored.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return &internal.StorageError{Path: path, Op: "read", Err: err}
		}

		session, err := archive.ReadBytes(data)
		if err != nil {
			if kind := internal.ErrorKind(err); kind != "" {
				return fmt.Errorf("import failed [%s]: %w", kind, err)
			}
			return fmt.Errorf("import failed: %w", err)
		}
		if importID != "" {
			session.ID = importID
		}

		out := cmd.OutOrStdout()
		summary := fmt.Sprintf("session %s: %d message(s), %d file(s), %s",
			session.ID, len(session.Messages), session.FileCount(), internal.FormatBytes(session.TotalFileBytes()))
		if importVerifyOnly {
			_, _ = fmt.Fprintln(out, "✓ valid archive, "+summary)
			return nil
		}

		storage, db, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		exists, err := storage.HasSession(session.ID)
		if err != nil {
			return err
		}
		if exists && !importForce {
			return fmt.Errorf("session %s already exists (use --force to replace it or --id to import under a new id)", session.ID)
		}
		if err := storage.SaveSession(session); err != nil {
			return err
		}
		recordCatalog(path, internal.CatalogImported, data, session)

		_, _ = fmt.Fprintln(out, "✓ imported "+summary)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolVar(&importVerifyOnly, "verify-only", false, "Validate the archive without storing it")
	importCmd.Flags().StringVar(&importID, "id", "", "Store the session under this id")
	importCmd.Flags().BoolVar(&importForce, "force", false, "Replace an existing session with the same id")
}

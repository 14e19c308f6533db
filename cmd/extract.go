package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/iksnae/session-archive/internal"
)

var (
	extractOut     string
	extractMessage int
)

var extractCmd = &cobra.Command{
	Use:   "extract <session-id>",
	Short: "Write code blocks from model messages to disk",
	Long: "Find fenced code blocks that name a file path (```lang:path) in the\n" +
		"session's model messages and write each one under --out. Later blocks\n" +
		"for the same path overwrite earlier ones.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _, db, err := loadSession(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		messages := session.Messages
		if extractMessage >= 0 {
			if extractMessage >= len(messages) {
				return fmt.Errorf("message %d out of range (session has %d)", extractMessage, len(messages))
			}
			messages = messages[extractMessage : extractMessage+1]
		}

		out := cmd.OutOrStdout()
		written := 0
		for _, msg := range messages {
			if msg.Role != internal.RoleModel {
				continue
			}
			for f := range internal.ExtractCodeFiles(msg.Content) {
				if !filepath.IsLocal(f.Path) {
					internal.LogWarn("Skipping unsafe path %q", f.Path)
					continue
				}
				dest := filepath.Join(extractOut, filepath.FromSlash(f.Path))
				if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
					return &internal.StorageError{Path: dest, Op: "write", Err: err}
				}
				if err := os.WriteFile(dest, []byte(f.Content), 0644); err != nil {
					return &internal.StorageError{Path: dest, Op: "write", Err: err}
				}
				_, _ = fmt.Fprintf(out, "%s (%s)\n", dest, f.Language)
				written++
			}
		}

		if written == 0 {
			internal.PrintWarning("No code blocks with file paths found")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", ".", "Directory to write files into")
	extractCmd.Flags().IntVarP(&extractMessage, "message", "m", -1, "Only extract from the message at this index")
}

package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iksnae/session-archive/internal"
	"github.com/iksnae/session-archive/internal/archive"
)

var (
	appendRole  string
	appendFiles []string
	appendAlert bool
)

var appendCmd = &cobra.Command{
	Use:   "append <session-id> [text]",
	Short: "Append a message to a session",
	Long: `Append a message to a stored session. The text is read from stdin
when it is not given as an argument.

User messages get the session's prepend/append text when those toggles
are on. Model messages have their path-bearing code blocks extracted as
attachments when parseCodeBlocks is set. Files given with --file are
attached as-is, except zip files, which are expanded.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := messageText(cmd, args)
		if err != nil {
			return err
		}

		session, storage, db, err := loadSession(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		files, err := readAttachments(appendFiles)
		if err != nil {
			return err
		}

		var msg internal.Message
		if appendAlert {
			msg = internal.NewAlert(text)
		} else {
			role := internal.Role(appendRole)
			if !role.Valid() {
				return fmt.Errorf("invalid role %q (want user, model or system)", appendRole)
			}
			switch role {
			case internal.RoleUser:
				text = session.Settings.WrapPrompt(text)
			case internal.RoleModel:
				if session.Settings.Bool("parseCodeBlocks") {
					files = append(files, internal.ExtractAttachments(text)...)
				}
			}
			msg = internal.NewMessage(role, text, files)
		}

		session.Append(msg)
		if err := storage.SaveSession(session); err != nil {
			return err
		}

		internal.LogInfo("Appended %s message with %d file(s) to %s", msg.Role, len(msg.Files), session.ID)
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), msg.ID)
		return nil
	},
}

func messageText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 2 {
		return args[1], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read message from stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// readAttachments loads files from disk. A .zip is expanded into its
// entries; any other file is attached under its base name.
func readAttachments(paths []string) ([]internal.Attachment, error) {
	var files []internal.Attachment
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, &internal.StorageError{Path: p, Op: "read", Err: err}
		}
		if strings.EqualFold(filepath.Ext(p), ".zip") {
			entries, err := archive.Decompress(bytes.NewReader(data), int64(len(data)))
			if err != nil {
				return nil, fmt.Errorf("expand %s: %w", p, err)
			}
			files = append(files, entries...)
			continue
		}
		files = append(files, internal.NewAttachment(filepath.Base(p), data))
	}
	return files, nil
}

func init() {
	rootCmd.AddCommand(appendCmd)
	appendCmd.Flags().StringVarP(&appendRole, "role", "r", string(internal.RoleUser), "Message role (user, model, system)")
	appendCmd.Flags().StringSliceVar(&appendFiles, "file", nil, "Attach a file; zip files are expanded (repeatable)")
	appendCmd.Flags().BoolVar(&appendAlert, "alert", false, "Record the text as a failed-request alert")
}

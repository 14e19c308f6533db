package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iksnae/session-archive/internal"
	"github.com/iksnae/session-archive/internal/archive"
)

var (
	filesAs        string
	filesBundleOut string
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Manage project files and attachments",
	Long: `Project files are versioned documents kept alongside a session in the
local store. They are not written to archives. Message attachments are
part of the messages and travel with the archive.`,
}

var filesListCmd = &cobra.Command{
	Use:   "list <session-id>",
	Short: "List project files and message attachments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _, db, err := loadSession(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		_, _ = fmt.Fprintln(w, "SOURCE\tPATH\tTYPE\tSIZE\tVERSION")
		for _, pf := range session.ProjectFiles {
			_, _ = fmt.Fprintf(w, "project\t%s\t%s\t%s\tv%d\n", pf.Path, pf.MimeType, internal.FormatBytes(pf.Size), pf.Version)
		}
		for i, msg := range session.Messages {
			for _, f := range msg.Files {
				_, _ = fmt.Fprintf(w, "message %d\t%s\t%s\t%s\t-\n", i, f.Path, f.MimeType, internal.FormatBytes(f.Size))
			}
		}
		return w.Flush()
	},
}

var filesAddCmd = &cobra.Command{
	Use:   "add <session-id> <file>",
	Short: "Add a project file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, storage, db, err := loadSession(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		data, err := os.ReadFile(args[1])
		if err != nil {
			return &internal.StorageError{Path: args[1], Op: "read", Err: err}
		}
		name := filesAs
		if name == "" {
			name = filepath.Base(args[1])
		}
		if findProjectFile(session, name) >= 0 {
			return fmt.Errorf("project file %s already exists (use 'files update')", name)
		}

		pf := internal.NewProjectFile(name, data)
		if err := storage.SaveProjectFile(session.ID, &pf); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s v%d (%s)\n", pf.Path, pf.Version, internal.FormatBytes(pf.Size))
		return nil
	},
}

var filesUpdateCmd = &cobra.Command{
	Use:   "update <session-id> <file>",
	Short: "Replace a project file's content",
	Long:  `Replace the content of a project file. The version only changes when the content does.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, storage, db, err := loadSession(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		data, err := os.ReadFile(args[1])
		if err != nil {
			return &internal.StorageError{Path: args[1], Op: "read", Err: err}
		}
		name := filesAs
		if name == "" {
			name = filepath.Base(args[1])
		}
		i := findProjectFile(session, name)
		if i < 0 {
			return fmt.Errorf("project file %s not found", name)
		}

		pf := &session.ProjectFiles[i]
		changed, err := pf.Update(data)
		if err != nil {
			return err
		}
		if changed {
			if err := storage.SaveProjectFile(session.ID, pf); err != nil {
				return err
			}
		} else {
			internal.LogInfo("%s unchanged", pf.Path)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s v%d (%s)\n", pf.Path, pf.Version, internal.FormatBytes(pf.Size))
		return nil
	},
}

var filesEditCmd = &cobra.Command{
	Use:   "edit <session-id> <message> <attachment-path> <file>",
	Short: "Replace the content of a message attachment",
	Long: `Replace the content of one attachment of a message with the bytes of
<file>. The size is recomputed; the path and content type are kept.`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, storage, db, err := loadSession(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		i, err := messageIndex(session, args[1])
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[3])
		if err != nil {
			return &internal.StorageError{Path: args[3], Op: "read", Err: err}
		}

		files := session.Messages[i].Files
		for j := range files {
			if files[j].Path != args[2] {
				continue
			}
			files[j] = files[j].WithContent(data)
			if err := storage.SaveSession(session); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", files[j].Path, internal.FormatBytes(files[j].Size))
			return nil
		}
		return fmt.Errorf("message %d has no attachment %s", i, args[2])
	},
}

var filesBundleCmd = &cobra.Command{
	Use:   "bundle <session-id> <message>",
	Short: "Zip the attachments of one message",
	Long: `Write the attachments of a message, plus its text as message.md and
message.txt, to a zip. The message is given by index or id.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _, db, err := loadSession(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		i, err := messageIndex(session, args[1])
		if err != nil {
			return err
		}
		msg := session.Messages[i]

		var buf bytes.Buffer
		if err := archive.BundleFiles(&buf, msg.Files, &msg); err != nil {
			return err
		}
		out := filesBundleOut
		if out == "" {
			out = fmt.Sprintf("session_%s_message_%d.zip", session.ID, i)
		}
		if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
			return &internal.StorageError{Path: out, Op: "write", Err: err}
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

// messageIndex resolves a message given by id or by position
func messageIndex(session *internal.Session, ref string) (int, error) {
	if i := session.FindMessage(ref); i >= 0 {
		return i, nil
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 0 && n < len(session.Messages) {
		return n, nil
	}
	return -1, fmt.Errorf("message %s not found in session %s", ref, session.ID)
}

func findProjectFile(session *internal.Session, path string) int {
	for i, pf := range session.ProjectFiles {
		if pf.Path == path {
			return i
		}
	}
	return -1
}

func init() {
	rootCmd.AddCommand(filesCmd)
	filesCmd.AddCommand(filesListCmd, filesAddCmd, filesUpdateCmd, filesEditCmd, filesBundleCmd)
	filesAddCmd.Flags().StringVar(&filesAs, "as", "", "Store the file under this path")
	filesUpdateCmd.Flags().StringVar(&filesAs, "as", "", "Path of the project file to update")
	filesBundleCmd.Flags().StringVarP(&filesBundleOut, "out", "o", "", "Output zip (default session_<id>_message_<n>.zip)")
}

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/iksnae/session-archive/internal"
	"github.com/iksnae/session-archive/internal/archive"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that the session store and archive codec work",
	Long: `Check the health of session-archive by verifying:
  • Session store location
  • Store access and schema
  • Session readability
  • Archive write/read round trip
  • Catalog checksums

Any failing step makes the command exit non-zero. Use --verbose for details.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		println := func(a ...any) { _, _ = fmt.Fprintln(out, a...) }
		detail := func(format string, a ...any) {
			if verbose {
				_, _ = fmt.Fprintf(out, "   "+format+"\n", a...)
			}
		}

		println(sectionStyle.Render("🔍 Session Archive Health Check"))
		println()

		// Step 1: store location
		println(infoStyle.Render("Step 1: Resolving session store..."))
		path, err := resolveDBPath()
		if err != nil {
			println(errorStyle.Render("❌ Failed to resolve store path:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		if _, statErr := os.Stat(path); statErr == nil {
			println(successStyle.Render("✅ Session store found"))
		} else {
			println(warningStyle.Render("⚠️  Session store does not exist yet, it will be created"))
		}
		detail("Database: %s", path)
		println()

		// Step 2: open
		println(infoStyle.Render("Step 2: Opening session store..."))
		storage, db, err := openStore()
		if err != nil {
			println(errorStyle.Render("❌ Failed to open session store:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		defer func() { _ = db.Close() }()
		tables, err := getTables(db)
		if err != nil {
			println(errorStyle.Render("❌ Failed to read schema:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		println(successStyle.Render("✅ Session store opened"))
		detail("Tables: %v", tables)
		println()

		// Step 3: sessions
		println(infoStyle.Render("Step 3: Loading sessions..."))
		sessions, err := storage.ListSessions()
		if err != nil {
			println(errorStyle.Render("❌ Failed to load sessions:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		if len(sessions) > 0 {
			println(successStyle.Render(fmt.Sprintf("✅ Found %d session(s)", len(sessions))))
			for i, s := range sessions {
				if i == 5 {
					detail("... and %d more", len(sessions)-5)
					break
				}
				detail("[%d] %s (%d messages)", i+1, s.ID, len(s.Messages))
			}
		} else {
			println(warningStyle.Render("⚠️  No sessions found"))
		}
		println()

		// Step 4: archive codec
		println(infoStyle.Render("Step 4: Testing archive round trip..."))
		if err := archiveSelfTest(); err != nil {
			println(errorStyle.Render("❌ Archive round trip failed:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		println(successStyle.Render("✅ Archive round trip succeeded"))
		println()

		// Step 5: catalog
		println(infoStyle.Render("Step 5: Verifying catalog..."))
		mismatched, err := verifyCatalog(out)
		if err != nil {
			println(errorStyle.Render("❌ Failed to read catalog:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		if mismatched > 0 {
			println(warningStyle.Render(fmt.Sprintf("⚠️  %d catalogued archive(s) changed or missing", mismatched)))
		} else {
			println(successStyle.Render("✅ Catalog consistent"))
		}
		println()

		println(sectionStyle.Render("📊 Summary"))
		println()
		println(successStyle.Render("✅ Health check passed!"))
		println(successStyle.Render(fmt.Sprintf("   • Sessions: %d found", len(sessions))))
		return nil
	},
}

// archiveSelfTest writes a small session to an archive in memory and
// reads it back
func archiveSelfTest() error {
	probe := internal.NewSession(internal.DefaultSettings())
	probe.Append(internal.NewMessage(internal.RoleUser, "healthcheck", nil))
	probe.Append(internal.NewMessage(internal.RoleModel, "ok", []internal.Attachment{
		internal.NewAttachment("probe.txt", []byte("probe")),
	}))

	data, err := archive.Build(probe, probe.ID)
	if err != nil {
		return err
	}
	got, err := archive.ReadBytes(data)
	if err != nil {
		return err
	}
	if got.ID != probe.ID || len(got.Messages) != 2 || got.FileCount() != 1 {
		return fmt.Errorf("archive read back %d message(s) and %d file(s)", len(got.Messages), got.FileCount())
	}
	return nil
}

// verifyCatalog checks every catalogued archive and returns how many no
// longer match
func verifyCatalog(out io.Writer) (int, error) {
	catalog, err := openCatalog()
	if err != nil {
		return 0, err
	}
	index, err := catalog.LoadIndex()
	if err != nil {
		return 0, err
	}
	mismatched := 0
	for _, entry := range index.Archives {
		ok, err := catalog.Verify(entry.Path)
		if err != nil || !ok {
			mismatched++
			if verbose {
				_, _ = fmt.Fprintf(out, "   changed: %s\n", entry.Path)
			}
		}
	}
	return mismatched, nil
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}

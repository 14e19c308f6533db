package cmd

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/iksnae/session-archive/internal"
)

// DBEnvVar overrides the default store location
const DBEnvVar = "SESSION_ARCHIVE_DB"

var (
	verbose      bool
	dbPath       string
	settingsPath string
	version      string = "dev"
	commit       string = "unknown"
	date         string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "session-archive",
	Short: "Persist chat sessions as portable BEJSON archives",
	Long: `Keep chat sessions in a local store and move them in and out of
self-contained zip archives.

An archive holds two BEJSON tables (config.bejson and manifest.bejson) plus
one content.md per message and the raw bytes of every attachment. Archives
written here can be read back into an identical session.

Quick Start:
  session-archive new                          # Start a session
  session-archive append <id> "hello"          # Add a user message
  session-archive export <id> --format zip     # Write session_<id>.zip
  session-archive import session_<id>.zip      # Restore it
  session-archive import x.zip --verify-only   # Check an archive`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Session store database (default $"+DBEnvVar+" or ~/.session-archive/sessions.db)")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "Settings file (.toml, .json, .jsonc, .yaml) applied to new sessions")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// resolveDBPath picks the store location: --db, then the environment,
// then the per-user default
func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if env := os.Getenv(DBEnvVar); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".session-archive", "sessions.db"), nil
}

// openStore opens the session store. The caller closes the returned db.
func openStore() (*internal.Storage, *sql.DB, error) {
	path, err := resolveDBPath()
	if err != nil {
		return nil, nil, err
	}
	internal.LogDebug("Using session store %s", path)
	db, err := internal.OpenDatabase(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session store: %w", err)
	}
	return internal.NewStorage(db), db, nil
}

// openCatalog returns the archive catalog kept next to the store
func openCatalog() (*internal.Catalog, error) {
	path, err := resolveDBPath()
	if err != nil {
		return nil, err
	}
	return internal.NewCatalog(filepath.Dir(path)), nil
}

// loadSettings returns the settings for a new session
func loadSettings() (internal.Settings, error) {
	if settingsPath == "" {
		return internal.DefaultSettings(), nil
	}
	return internal.LoadSettingsFile(settingsPath)
}

// loadSession opens the store and loads one session
func loadSession(id string) (*internal.Session, *internal.Storage, *sql.DB, error) {
	storage, db, err := openStore()
	if err != nil {
		return nil, nil, nil, err
	}
	session, err := storage.LoadSession(id)
	if err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}
	return session, storage, db, nil
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iksnae/session-archive/internal"
)

var (
	newSessionID string
	newSettings  []string
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new session",
	Long: `Create an empty session in the local store and print its id.

Settings come from the defaults, overlaid by --settings and then by any
--set key=value pairs. Values given with --set are parsed as JSON when
possible and kept as strings otherwise.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		overrides, err := parseSettingPairs(newSettings)
		if err != nil {
			return err
		}
		settings.Merge(overrides)

		session := internal.NewSession(settings)
		if newSessionID != "" {
			session.ID = newSessionID
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
		if exists {
			return fmt.Errorf("session %s already exists", session.ID)
		}
		if err := storage.SaveSession(session); err != nil {
			return err
		}

		internal.LogInfo("Created session %s (model %s)", session.ID, session.Settings.String("model"))
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), session.ID)
		return nil
	},
}

// parseSettingPairs turns key=value arguments into settings
func parseSettingPairs(pairs []string) (internal.Settings, error) {
	out := make(internal.Settings, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid setting %q (want key=value)", pair)
		}
		if v, err := internal.DecodeSettingValue(raw); err == nil {
			out[key] = v
		} else {
			out[key] = raw
		}
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().StringVar(&newSessionID, "id", "", "Use this session id instead of a generated one")
	newCmd.Flags().StringArrayVar(&newSettings, "set", nil, "Override a setting (key=value, repeatable)")
}

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iksnae/session-archive/internal"
)

var catalogPrune bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List archives this store has written or imported",
	Long: `Show the archive catalog kept next to the session store. Each entry is
checked against the archive on disk: "ok" means the file still has the
recorded checksum.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := openCatalog()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if catalogPrune {
			removed, err := catalog.Prune()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "pruned %d missing archive(s)\n", removed)
		}

		index, err := catalog.LoadIndex()
		if err != nil {
			return err
		}
		if len(index.Archives) == 0 {
			_, _ = fmt.Fprintln(out, "No archives recorded")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		_, _ = fmt.Fprintln(w, "STATUS\tDIRECTION\tSESSION\tMESSAGES\tFILES\tSIZE\tPATH")
		for _, entry := range index.Archives {
			status := "ok"
			if ok, err := catalog.Verify(entry.Path); err != nil {
				status = "missing"
			} else if !ok {
				status = "changed"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
				status, entry.Direction, entry.SessionID, entry.Messages, entry.Files,
				internal.FormatBytes(entry.Size), entry.Path)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().BoolVar(&catalogPrune, "prune", false, "Drop entries whose archive no longer exists")
}

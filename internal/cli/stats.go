package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rcliao/daybook/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show archive statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	a := mustOpenApp()
	defer a.Close()

	stats, err := store.GetStats(cmd.Context(), a.store, a.cfg.DB)
	if err != nil {
		exitErr("stats", err)
	}

	if textFormat() {
		tw := newTable()
		row := func(k, v string) { fmt.Fprintf(tw, "%s\t%s\n", headerStyle.Render(k), v) }
		row("backend", stats.Backend)
		row("db", fmt.Sprintf("%s (%s)", stats.DBPath, humanize.Bytes(uint64(stats.DBSizeBytes))))
		row("entries", humanize.Comma(int64(stats.Entries)))
		row("content", humanize.Bytes(uint64(stats.TotalBytes)))
		if stats.Entries > 0 {
			row("range", dateStyle.Render(stats.FirstDate)+" .. "+dateStyle.Render(stats.LastDate))
		}
		tw.Flush()
		return
	}
	printJSON(stats)
}

package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived journal entries",
		Run:   runList,
	}

	cmd.Flags().IntP("limit", "l", 0, "Max entries (0 = all)")
	cmd.Flags().Bool("dates-only", false, "Only output dates")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	datesOnly, _ := cmd.Flags().GetBool("dates-only")

	a := mustOpenApp()
	defer a.Close()

	entries, err := a.store.List(cmd.Context())
	if err != nil {
		exitErr("list", err)
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	if datesOnly {
		for _, e := range entries {
			fmt.Println(e.Date)
		}
		return
	}

	if textFormat() {
		if len(entries) == 0 {
			fmt.Println(dimStyle.Render("No journal entries yet."))
			return
		}
		tw := newTable()
		fmt.Fprintln(tw, headerStyle.Render("DATE")+"\t"+headerStyle.Render("SIZE")+"\t"+headerStyle.Render("UPDATED"))
		for _, e := range entries {
			updated := "-"
			if !e.UpdatedAt.IsZero() {
				updated = humanize.Time(e.UpdatedAt)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", dateStyle.Render(e.Date), humanize.Bytes(uint64(e.Size)), dimStyle.Render(updated))
		}
		tw.Flush()
		return
	}
	printJSON(entries)
}

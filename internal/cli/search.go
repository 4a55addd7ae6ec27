package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/daybook/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search archived entries",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().IntP("limit", "l", 10, "Max results")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	a := mustOpenApp()
	defer a.Close()

	searcher, ok := store.AsSearcher(a.store)
	if !ok {
		exitErr("search", store.ErrSearchUnsupported)
	}
	hits, err := searcher.Search(cmd.Context(), store.SearchParams{Query: query, Limit: limit})
	if err != nil {
		exitErr("search", err)
	}

	if textFormat() {
		if len(hits) == 0 {
			fmt.Println(dimStyle.Render("No matches."))
			return
		}
		snip := a.cfg.Archive.Snippet
		for _, h := range hits {
			fmt.Println(dateStyle.Render(h.Date))
			fmt.Println("  " + highlight(h.Snippet, snip.Open, snip.Close))
		}
		return
	}
	printJSON(map[string]any{"query": query, "results": hits})
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "finalize",
		Short: "Synthesize a day's conversation into a journal entry",
		Run:   runFinalize,
	}

	cmd.Flags().String("date", "", "Day (YYYY-MM-DD, default today)")

	RootCmd.AddCommand(cmd)
}

func runFinalize(cmd *cobra.Command, args []string) {
	day, _ := cmd.Flags().GetString("date")

	a := mustOpenApp()
	defer a.Close()

	res, err := a.pipeline.Finalize(cmd.Context(), day)
	if err != nil {
		exitErr("finalize", err)
	}

	if textFormat() {
		fmt.Printf("%s saved (%d bytes)\n", dateStyle.Render(res.Date), res.Size)
		return
	}
	printJSON(map[string]any{"ok": true, "date": res.Date, "size": res.Size})
}

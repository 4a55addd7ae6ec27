package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/daybook/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get <date>",
		Short: "Print an archived journal entry",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}

	cmd.Flags().Bool("raw", false, "Print only the markdown content")

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	raw, _ := cmd.Flags().GetBool("raw")
	day := args[0]
	if err := model.CheckDayKey("date", day); err != nil {
		exitErr("get", err)
	}

	a := mustOpenApp()
	defer a.Close()

	entry, err := a.store.Get(cmd.Context(), day)
	if err != nil {
		exitErr("get", err)
	}

	if raw || textFormat() {
		fmt.Print(entry.Content)
		return
	}
	printJSON(entry)
}

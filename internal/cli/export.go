package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/daybook/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all journal entries as JSON",
		Long:  "Export every archived entry, oldest first, in the format import reads.",
		Run:   runExport,
	}

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	a := mustOpenApp()
	defer a.Close()

	entries, err := store.ExportAll(cmd.Context(), a.store)
	if err != nil {
		exitErr("export", err)
	}
	printJSON(entries)
}

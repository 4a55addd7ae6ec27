package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/daybook/internal/migrate"
)

func init() {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy <date>.md objects from a bucket directory into the archive",
		Run:   runMigrate,
	}

	cmd.Flags().String("source", "", "Bucket directory (overrides migrate.source_dir)")
	cmd.Flags().String("cursor", "", "Resume after this key")
	cmd.Flags().Int("page-size", 0, "Objects per page")
	cmd.Flags().Int("max-pages", 0, "Stop after this many pages (0 = all)")

	RootCmd.AddCommand(cmd)
}

func runMigrate(cmd *cobra.Command, args []string) {
	source, _ := cmd.Flags().GetString("source")
	cursor, _ := cmd.Flags().GetString("cursor")
	pageSize, _ := cmd.Flags().GetInt("page-size")
	maxPages, _ := cmd.Flags().GetInt("max-pages")

	a := mustOpenApp()
	defer a.Close()
	if source != "" {
		a.cfg.Migrate.SourceDir = source
	}

	bridge, err := a.bridge()
	if err != nil {
		exitErr("open source", err)
	}
	if bridge == nil {
		exitErr("migrate", fmt.Errorf("no source: set migrate.source_dir or --source"))
	}

	report, err := bridge.Run(cmd.Context(), migrate.Options{
		Cursor:   cursor,
		PageSize: pageSize,
		MaxPages: maxPages,
	})
	if report != nil {
		if textFormat() {
			s := report.Summary
			fmt.Printf("%s total=%d migrated=%d skipped=%d errors=%d\n",
				headerStyle.Render("migration "+report.RunID), s.Total, s.Migrated, s.Skipped, s.Errors)
			for _, r := range report.Results {
				if r.Status == migrate.StatusError {
					fmt.Printf("  %s %s\n", dateStyle.Render(r.Key), r.Message)
				}
			}
			if report.NextCursor != "" {
				fmt.Println(dimStyle.Render("resume with --cursor " + report.NextCursor))
			}
		} else {
			printJSON(report)
		}
	}
	if err != nil {
		exitErr("migrate", err)
	}
}

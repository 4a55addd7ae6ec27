package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/daybook/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "put [content]",
		Short: "Store a journal entry directly",
		Long:  "Create or replace the archived entry for a day. Content comes from the argument or stdin.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runPut,
	}

	cmd.Flags().String("date", "", "Day (YYYY-MM-DD, default today)")

	RootCmd.AddCommand(cmd)
}

func runPut(cmd *cobra.Command, args []string) {
	day, _ := cmd.Flags().GetString("date")

	content, err := readContent(args)
	if err != nil {
		exitErr("read content", err)
	}
	if strings.TrimSpace(content) == "" {
		exitErr("put", &model.ValidationError{Field: "content", Reason: "empty entry"})
	}

	a := mustOpenApp()
	defer a.Close()

	if day == "" {
		day = a.today()
	}
	if err := model.CheckDayKey("date", day); err != nil {
		exitErr("put", err)
	}

	size, err := a.store.Upsert(cmd.Context(), day, content)
	if err != nil {
		exitErr("put", err)
	}
	fmt.Printf(`{"ok":true,"date":%q,"size":%d}`+"\n", day, size)
}

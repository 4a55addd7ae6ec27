package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/daybook/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Show a day's conversation",
		Run:   runMessages,
	}

	cmd.Flags().String("date", "", "Day (YYYY-MM-DD, default today)")

	RootCmd.AddCommand(cmd)
}

func runMessages(cmd *cobra.Command, args []string) {
	day, _ := cmd.Flags().GetString("date")
	if day != "" {
		if err := model.CheckDayKey("date", day); err != nil {
			exitErr("messages", err)
		}
	}

	a := mustOpenApp()
	defer a.Close()

	day, msgs, err := a.chat.Messages(cmd.Context(), day)
	if err != nil {
		exitErr("messages", err)
	}
	if msgs == nil {
		msgs = []model.Message{}
	}

	if textFormat() {
		fmt.Println(headerStyle.Render(day))
		for _, m := range msgs {
			style, ok := roleStyles[string(m.Role)]
			if !ok {
				style = dimStyle
			}
			fmt.Printf("%s %s  %s\n",
				dimStyle.Render(m.Timestamp.In(a.loc).Format("15:04")),
				style.Render(string(m.Role)),
				m.Content)
		}
		return
	}
	printJSON(map[string]any{"date": day, "messages": msgs})
}

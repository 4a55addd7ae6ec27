package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Add a message to today's conversation",
		Long:  "Record a message in today's log and print the assistant's reply. Reads stdin when no message is given.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runChat,
	}

	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, args []string) {
	content, err := readContent(args)
	if err != nil {
		exitErr("read message", err)
	}

	a := mustOpenApp()
	defer a.Close()

	reply, err := a.chat.Send(cmd.Context(), content)
	if err != nil {
		exitErr("chat", err)
	}

	if textFormat() {
		fmt.Println(roleStyles["assistant"].Render("assistant") + "  " + reply.Content)
		return
	}
	printJSON(reply)
}

// readContent returns args[0] or, when absent, stdin if it is not a terminal.
func readContent(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	stat, _ := os.Stdin.Stat()
	if stat.Mode()&os.ModeCharDevice != 0 {
		return "", fmt.Errorf("provide content as argument or via stdin")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\n"), nil
}

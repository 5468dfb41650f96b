package cli

import (
	"io"

	"github.com/spf13/cobra"
)

// DefaultChatUser is the user id the local chat acts as.
const DefaultChatUser = "local"

// newChatCommand creates the chat command.
func newChatCommand(e *env) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the bot in the terminal",
		Long: `Talk to the bot in the terminal, without LINE.

Messages go through the same dispatcher as webhook events, against the
configured store. Cards are shown as text; use /done N and /fav N to tap
the controls of row N, /list to redraw the card and /quit to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Log lines go to the log file only, never the screen
			c, err := e.container(cmd.Context(), io.Discard)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			return runChatFunc(cmd.Context(), c.HandleEventUseCase(), userID, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", DefaultChatUser, "User id to chat as")

	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xiaowang-jiji/taskbot/internal/usecase/shared"
)

// newTicketCommand creates the ticket command.
func newTicketCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "ticket <user-id>",
		Short: "Issue a browser view ticket for a user",
		Long: `Issue a browser view ticket for a user and print the card links
that carry it.

Tickets only outlive the process when [sync].key is set; without it every
run signs with a fresh key.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := e.container(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			userID := args[0]
			ticket, err := c.Ticketer.Issue(userID)
			if err != nil {
				return fmt.Errorf("issue ticket: %w", err)
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(w, ticket)

			links := shared.BuildLinks(e.cfg.Links, c.Ticketer, userID, c.Logger)
			for _, l := range []struct{ name, url string }{
				{"edit", links.EditURL},
				{"records", links.RecordsURL},
				{"favorites", links.FavoritesURL},
			} {
				if l.url != "" {
					_, _ = fmt.Fprintf(w, "%s: %s\n", l.name, l.url)
				}
			}
			return nil
		},
	}
}

package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// newRecordsCommand creates the records command.
func newRecordsCommand(e *env) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "records <user-id>",
		Short: "List a user's audited messages",
		Long:  `List a user's audited messages from the configured store, newest first.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := e.container(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			if c.Persistence == nil {
				return errors.New("no store configured: [store].driver is \"none\"")
			}

			records, err := c.Persistence.ListMessages(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No records.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "TIME\tKIND\tTEXT")
			for _, rec := range records {
				text := strings.ReplaceAll(rec.Text, "\n", " ")
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", rec.CreatedAt.Local().Format(time.DateTime), rec.Kind, text)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of records (0 for all)")

	return cmd
}

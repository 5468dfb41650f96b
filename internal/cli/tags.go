package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xiaowang-jiji/taskbot/internal/infra/tagfile"
	"github.com/xiaowang-jiji/taskbot/internal/usecase"
)

// newTagsCommand creates the tags command.
func newTagsCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage per-user tags",
	}

	cmd.AddCommand(newTagsImportCommand(e))

	return cmd
}

// newTagsImportCommand creates the tags import subcommand.
func newTagsImportCommand(e *env) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import per-user tags from a YAML tag file",
		Long: `Import per-user tags from a YAML tag file into the configured store.

Each imported user's stored tags are replaced. The file's default
section is not imported; point [tags].file at the file to use it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := tagfile.Load(args[0])
			if err != nil {
				return err
			}

			c, err := e.container(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			out, err := c.ImportTagsUseCase().Execute(cmd.Context(), usecase.ImportTagsInput{
				Source: file,
				UserID: userID,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tags for %d users\n", out.Tags, out.Users)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "Import only this user")

	return cmd
}

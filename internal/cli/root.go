// Package cli provides the command-line interface for taskbot.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/xiaowang-jiji/taskbot/internal/app"
	"github.com/xiaowang-jiji/taskbot/internal/domain"
	"github.com/xiaowang-jiji/taskbot/internal/infra/config"
	"github.com/xiaowang-jiji/taskbot/internal/tui"
)

// Command group IDs.
const (
	groupRun   = "run"
	groupSetup = "setup"
	groupData  = "data"
)

// Function variables, replaced in tests.
var (
	newContainerFunc = app.New
	runChatFunc      = tui.Run
)

// env is the state shared by every command of one invocation.
type env struct {
	loader     *config.Loader
	cfg        *domain.Config
	configPath string
	globalDir  string // Overrides the global config directory when set
}

// container builds the dependency container from the loaded config.
func (e *env) container(ctx context.Context, stderr io.Writer) (*app.Container, error) {
	return newContainerFunc(ctx, e.cfg, stderr)
}

// NewRootCommand creates the root command for taskbot.
func NewRootCommand(version string) *cobra.Command {
	return newRootCommand(version, "")
}

func newRootCommand(version, globalDir string) *cobra.Command {
	e := &env{globalDir: globalDir}

	root := &cobra.Command{
		Use:   "taskbot",
		Short: "Chat bot that keeps a to-do list",
		Long: `taskbot is a LINE chat bot that turns messages into a to-do list.

Plain text becomes a task, questions go to the assistant, and every reply
carries a card with the current list.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if e.globalDir != "" {
				e.loader = config.NewLoaderWithGlobalDir(e.configPath, e.globalDir)
			} else {
				e.loader = config.NewLoader(e.configPath)
			}

			// These work even when the config files are broken
			if cmd.Name() == "template" || cmd.Name() == "init" {
				return nil
			}

			cfg, err := e.loader.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			e.cfg = cfg

			for _, w := range cfg.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&e.configPath, "config", "c", "", "Config file (default ./"+domain.LocalConfigFileName+")")

	// Define command groups
	root.AddGroup(
		&cobra.Group{ID: groupRun, Title: "Run Commands:"},
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupData, Title: "Data Commands:"},
	)

	// Run commands
	serveCmd := newServeCommand(e)
	serveCmd.GroupID = groupRun

	chatCmd := newChatCommand(e)
	chatCmd.GroupID = groupRun

	// Setup commands
	configCmd := newConfigCommand(e)
	configCmd.GroupID = groupSetup

	ticketCmd := newTicketCommand(e)
	ticketCmd.GroupID = groupSetup

	// Data commands
	tagsCmd := newTagsCommand(e)
	tagsCmd.GroupID = groupData

	recordsCmd := newRecordsCommand(e)
	recordsCmd.GroupID = groupData

	root.AddCommand(
		serveCmd,
		chatCmd,
		configCmd,
		ticketCmd,
		tagsCmd,
		recordsCmd,
	)

	return root
}

// Package main is the entry point for the taskbot CLI.
package main

import (
	"fmt"
	"os"

	"github.com/xiaowang-jiji/taskbot/internal/cli"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	rootCmd := cli.NewRootCommand(version)
	return rootCmd.Execute()
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ctxlaunch/ctxlaunch/internal/probe"
)

var toolsTimeout time.Duration

var toolsCmd = &cobra.Command{
	Use:   "tools <server>",
	Short: "Launch a server over MCP stdio and list its tools",
	Long: `Provision and launch the server, perform the MCP handshake, and print
the tools it advertises. Useful to verify settings before wiring the server
into a host.

Examples:
  ctxlaunch tools grafana`,
	Args: cobra.ExactArgs(1),
	RunE: runTools,
}

func init() {
	toolsCmd.Flags().DurationVar(&toolsTimeout, "timeout", 30*time.Second, "Handshake timeout")
	rootCmd.AddCommand(toolsCmd)
}

func runTools(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	descriptor, err := a.launcher.Command(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), toolsTimeout)
	defer cancel()

	report, err := probe.Run(ctx, descriptor)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s\n", report.ServerName, report.ServerVersion)
	for _, tool := range report.Tools {
		fmt.Printf("  %s\n", tool)
	}
	if len(report.Tools) == 0 {
		fmt.Println("  (no tools advertised)")
	}
	return nil
}

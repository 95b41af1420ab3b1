package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var commandCmd = &cobra.Command{
	Use:   "command <server>",
	Short: "Print the launch command for a context server as JSON",
	Long: `Resolve settings, provision the binary if needed, and print the full
command descriptor (path, arguments, environment) as JSON.

This is the integration point for hosts that spawn the server themselves:

  ctxlaunch command grafana | jq .`,
	Args: cobra.ExactArgs(1),
	RunE: runCommand,
}

func init() {
	rootCmd.AddCommand(commandCmd)
}

func runCommand(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	descriptor, err := a.launcher.Command(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(descriptor); err != nil {
		return fmt.Errorf("encoding command: %w", err)
	}
	return nil
}

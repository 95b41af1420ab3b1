package main

import (
	"context"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <server>",
	Short: "Provision and run a context server on stdio",
	Long: `Resolve settings, provision the binary, and run the server in the
foreground with stdin/stdout attached. This is what hosts that speak MCP over
stdio should spawn:

  ctxlaunch run grafana`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cobraCmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	descriptor, err := a.launcher.Command(cobraCmd.Context(), args[0])
	if err != nil {
		return err
	}

	// SIGINT/SIGTERM cancel the context, which kills the subprocess.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	proc := exec.CommandContext(ctx, descriptor.Path, descriptor.Args...)
	proc.Env = append(os.Environ(), descriptor.Env...)
	proc.Stdin = os.Stdin
	proc.Stdout = os.Stdout
	proc.Stderr = os.Stderr

	return proc.Run()
}

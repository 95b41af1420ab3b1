package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ctxlaunch/ctxlaunch/internal/storage"
)

var (
	historyServer   string
	historyLimit    int
	historyLaunches bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent provisioning and launch records",
	Long: `Show the provisioning history (versions installed, reuse, cleanup
failures) or, with --launches, the commands assembled for hosts.

Examples:
  ctxlaunch history
  ctxlaunch history --server grafana --limit 10
  ctxlaunch history --launches`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyServer, "server", "", "Filter by server name")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum records to show")
	historyCmd.Flags().BoolVar(&historyLaunches, "launches", false, "Show launch records instead of provisions")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	opts := storage.ListOptions{Server: historyServer, Limit: historyLimit}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	if historyLaunches {
		launches, err := a.store.ListLaunches(cmd.Context(), opts)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "WHEN\tSERVER\tPATH\tARGS")
		for _, l := range launches {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				l.CreatedAt.Local().Format(time.DateTime), l.Server, l.Path,
				strings.Join(l.Args, " "))
		}
		return w.Flush()
	}

	provisions, err := a.store.ListProvisions(cmd.Context(), opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "WHEN\tSERVER\tVERSION\tREUSED\tCLEANUP FAILURES")
	for _, p := range provisions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%d\n",
			p.CreatedAt.Local().Format(time.DateTime), p.Server, p.Version,
			p.Reused, p.CleanupFailures)
	}
	return w.Flush()
}

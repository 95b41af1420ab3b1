package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/ctxlaunch/ctxlaunch/internal/provision"
)

var provisionCmd = &cobra.Command{
	Use:   "provision <server>",
	Short: "Ensure the server binary is installed and print its path",
	Long: `Download and install the latest release binary for the server if no
usable copy exists yet, evicting stale versions. Prints the executable path.

Examples:
  ctxlaunch provision grafana`,
	Args: cobra.ExactArgs(1),
	RunE: runProvision,
}

func init() {
	rootCmd.AddCommand(provisionCmd)
}

func runProvision(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	a.provisioner.OnEvent = func(ev provision.Event) {
		switch ev.Type {
		case "resolving":
			log.Printf("%s: looking up latest release", ev.Server)
		case "downloading":
			log.Printf("%s: downloading %s (%s)", ev.Server, ev.Message, ev.Version)
		case "cleanup":
			log.Printf("%s: could not remove stale entry %s: %s", ev.Server, ev.Path, ev.Message)
		}
	}

	res, err := a.launcher.Provision(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if res.Reused {
		log.Printf("%s: already provisioned (%s)", args[0], res.Version)
	}
	fmt.Println(res.Path)
	return nil
}

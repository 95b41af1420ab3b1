package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ctxlaunch/ctxlaunch/internal/catalog"
	"github.com/ctxlaunch/ctxlaunch/internal/config"
	"github.com/ctxlaunch/ctxlaunch/internal/launcher"
	"github.com/ctxlaunch/ctxlaunch/internal/provision"
	"github.com/ctxlaunch/ctxlaunch/internal/release"
	"github.com/ctxlaunch/ctxlaunch/internal/storage/sqlite"
)

var rootCmd = &cobra.Command{
	Use:   "ctxlaunch",
	Short: "ctxlaunch - Provision and launch MCP context servers",
	Long: `ctxlaunch resolves settings and launch commands for MCP context servers,
downloading the right GitHub release binary for this platform on demand.

The built-in catalog knows the Grafana MCP server; additional servers can be
added with a catalog manifest.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app bundles the wired components a command needs.
type app struct {
	cfg         *config.Config
	provisioner *provision.Provisioner
	launcher    *launcher.Launcher
	store       *sqlite.SQLiteStore
}

// newApp loads configuration and wires the catalog, provisioner, history
// store, and launcher. Callers must Close it.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	store, err := sqlite.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening history store: %w", err)
	}

	prov := provision.New(cfg.Provision.WorkDir, release.NewClient())
	l := launcher.New(cat, cfg.Servers, prov, store)

	return &app{cfg: cfg, provisioner: prov, launcher: l, store: store}, nil
}

func (a *app) Close() {
	a.store.Close()
}

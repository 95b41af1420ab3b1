package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ctxlaunch/ctxlaunch/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively write a ctxlaunch.yaml config",
	Long: `Prompt for the Grafana connection settings and write them to
~/.ctxlaunch/ctxlaunch.yaml. Existing files are left alone unless --force
is given.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

// initConfig mirrors the config file layout with yaml tags for writing.
type initConfig struct {
	Servers map[string]initServer `yaml:"servers"`
}

type initServer struct {
	URL          string   `yaml:"url"`
	APIKey       string   `yaml:"api_key,omitempty"`
	EnabledTools []string `yaml:"enabled_tools,omitempty"`
	Debug        bool     `yaml:"debug,omitempty"`
}

func runInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultPath()
	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	rl, err := readline.New("")
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	url, err := prompt(rl, "Grafana URL: ")
	if err != nil {
		return err
	}
	for url == "" {
		fmt.Println("A Grafana URL is required.")
		if url, err = prompt(rl, "Grafana URL: "); err != nil {
			return err
		}
	}

	key, err := prompt(rl, "API key (empty for unauthenticated): ")
	if err != nil {
		return err
	}

	toolsLine, err := prompt(rl, "Enabled tool categories, comma separated (empty for all): ")
	if err != nil {
		return err
	}
	var enabled []string
	for _, t := range strings.Split(toolsLine, ",") {
		if t = strings.TrimSpace(t); t != "" {
			enabled = append(enabled, t)
		}
	}

	debugLine, err := prompt(rl, "Enable debug logging? [y/N]: ")
	if err != nil {
		return err
	}
	debug := strings.EqualFold(debugLine, "y") || strings.EqualFold(debugLine, "yes")

	cfg := initConfig{
		Servers: map[string]initServer{
			"grafana": {URL: url, APIKey: key, EnabledTools: enabled, Debug: debug},
		},
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	// The file may hold a credential.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}

func prompt(rl *readline.Instance, label string) (string, error) {
	rl.SetPrompt(label)
	line, err := rl.Readline()
	if err != nil {
		if err == readline.ErrInterrupt || err == io.EOF {
			return "", fmt.Errorf("aborted")
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

package probe

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ctxlaunch/ctxlaunch/internal/launcher"
)

// Report is what a context server said about itself over MCP stdio.
type Report struct {
	ServerName    string   `json:"server_name"`
	ServerVersion string   `json:"server_version"`
	Tools         []string `json:"tools"`
}

// Run launches the assembled command as an MCP stdio subprocess, performs the
// protocol handshake, lists its tools, and shuts the subprocess down.
func Run(ctx context.Context, cmd launcher.Command) (*Report, error) {
	c, err := client.NewStdioMCPClient(cmd.Path, cmd.Env, cmd.Args...)
	if err != nil {
		return nil, fmt.Errorf("starting %s: %w", cmd.Path, err)
	}
	defer c.Close()

	initResult, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ClientInfo: mcp.Implementation{
				Name:    "ctxlaunch",
				Version: "0.1.0",
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("initializing %s: %w", cmd.Path, err)
	}

	toolsResult, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("listing tools from %s: %w", cmd.Path, err)
	}

	report := &Report{
		ServerName:    initResult.ServerInfo.Name,
		ServerVersion: initResult.ServerInfo.Version,
	}
	for _, t := range toolsResult.Tools {
		report.Tools = append(report.Tools, t.Name)
	}
	return report, nil
}

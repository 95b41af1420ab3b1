package probe

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ctxlaunch/ctxlaunch/internal/launcher"
)

func TestRunMissingBinary(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := launcher.Command{
		Path: filepath.Join(t.TempDir(), "does-not-exist"),
		Env:  []string{"GRAFANA_URL=https://grafana.example"},
	}
	if _, err := Run(ctx, cmd); err == nil {
		t.Fatal("expected error for missing binary")
	}
}

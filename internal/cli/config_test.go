package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/forcegraph/pkg/config"
)

func TestConfigInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forcegraph.yaml")
	t.Setenv("FORCEGRAPH_CANVAS_WIDTH", "640")

	if err := execute(t, "config", "init", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	os.Unsetenv("FORCEGRAPH_CANVAS_WIDTH")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Canvas.Width != 640 {
		t.Errorf("saved width = %v, want 640", cfg.Canvas.Width)
	}

	if err := execute(t, "config", "init", path); err == nil {
		t.Error("expected error when the file exists")
	}
	if err := execute(t, "config", "init", path, "--force"); err != nil {
		t.Errorf("config init --force: %v", err)
	}
}

func TestConfigEnvCommand(t *testing.T) {
	t.Setenv("FORCEGRAPH_REDIS_ADDR", "localhost:6379")

	c := New(io.Discard, LogInfo)
	cmd := c.configEnvCommand()
	var out strings.Builder
	cmd.SetOut(&out)
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "* FORCEGRAPH_REDIS_ADDR") {
		t.Errorf("set variable not marked:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "  FORCEGRAPH_LAYOUT_SPRING") {
		t.Errorf("unset variable missing:\n%s", out.String())
	}
}

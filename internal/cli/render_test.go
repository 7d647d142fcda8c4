package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/heynickashwin-oss/viashift/pkg/config"
)

// testDocJSON is a minimal two-layer funnel with a loss branch.
const testDocJSON = `{
  "title": "Test Funnel",
  "nodes": [
    {"id": "a", "layer": 0, "value": 100},
    {"id": "b", "layer": 1, "value": 70},
    {"id": "leak", "layer": 1, "value": 30, "type": "loss"}
  ],
  "links": [
    {"id": "l1", "from": "a", "to": "b", "value": 70},
    {"id": "l2", "from": "a", "to": "leak", "value": 30, "type": "loss"}
  ]
}`

// testContext builds a command context with a quiet logger and a config that
// disables caching.
func testContext(t *testing.T) context.Context {
	t.Helper()
	cfg := config.Default()
	cfg.Cache.Backend = "none"
	ctx := withLogger(context.Background(), newLogger(io.Discard, log.ErrorLevel))
	return withConfig(ctx, cfg)
}

// writeTestDoc writes the sample document into a temp dir and returns its path.
func writeTestDoc(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "funnel.json")
	if err := os.WriteFile(path, []byte(testDocJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		wantErr bool
	}{
		{"single valid", []string{"svg"}, false},
		{"all valid", []string{"svg", "png", "json", "dot"}, false},
		{"invalid", []string{"svg", "pdf"}, true},
		{"empty string", []string{""}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFormats(tt.formats)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"derive from input", "", "flows/funnel.json", "flows/funnel"},
		{"output with format ext", "out.svg", "funnel.json", "out"},
		{"output without ext", "out", "funnel.json", "out"},
		{"output with unknown ext", "out.dat", "funnel.json", "out.dat"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestRunRenderWritesArtifacts(t *testing.T) {
	ctx := testContext(t)
	input := writeTestDoc(t)

	out := filepath.Join(filepath.Dir(input), "out")
	opts := &renderOpts{
		output:  out,
		formats: []string{"svg", "json"},
		width:   1200,
		height:  700,
		scale:   1,
	}
	if err := runRender(ctx, input, opts); err != nil {
		t.Fatalf("runRender() error = %v", err)
	}

	data, err := os.ReadFile(out + ".svg")
	if err != nil {
		t.Fatalf("expected SVG artifact at %s.svg: %v", out, err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("SVG artifact missing <svg element")
	}

	if _, err := os.Stat(out + ".json"); err != nil {
		t.Errorf("expected JSON artifact at %s.json: %v", out, err)
	}
}

func TestRunRenderSingleOutputPath(t *testing.T) {
	ctx := testContext(t)
	input := writeTestDoc(t)
	out := filepath.Join(filepath.Dir(input), "custom.svg")

	opts := &renderOpts{
		output:  out,
		formats: []string{"svg"},
		width:   1200,
		height:  700,
		scale:   1,
	}
	if err := runRender(ctx, input, opts); err != nil {
		t.Fatalf("runRender() error = %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("expected artifact at -o path %s: %v", out, err)
	}
}

func TestRunRenderTooSmallViewport(t *testing.T) {
	ctx := testContext(t)
	input := writeTestDoc(t)

	opts := &renderOpts{
		formats: []string{"svg"},
		width:   100, // below the layout usability floor
		height:  700,
		scale:   1,
	}
	if err := runRender(ctx, input, opts); err != nil {
		t.Fatalf("runRender() should degrade quietly, got %v", err)
	}
	svgPath := strings.TrimSuffix(input, ".json") + ".svg"
	if _, err := os.Stat(svgPath); !os.IsNotExist(err) {
		t.Error("no artifact should be written when the viewport is not ready")
	}
}

func TestRunRenderMissingInput(t *testing.T) {
	ctx := testContext(t)

	opts := &renderOpts{formats: []string{"svg"}, width: 1200, height: 700, scale: 1}
	if err := runRender(ctx, filepath.Join(t.TempDir(), "absent.json"), opts); err == nil {
		t.Fatal("runRender() should fail for a missing input file")
	}
}

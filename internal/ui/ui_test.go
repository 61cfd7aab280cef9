package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/d2verb/civget/internal/registry"
	"github.com/d2verb/civget/internal/selection"
)

// capture redirects Output to a buffer for one test.
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	color.NoColor = true

	var buf bytes.Buffer
	orig := Output
	Output = &buf
	t.Cleanup(func() { Output = orig })
	return &buf
}

func TestPrintResolved(t *testing.T) {
	buf := capture(t)

	PrintResolved("AIR flux1:lora:civitai:667004@746484", "https://civitai.com/api/download/models/746484", "SafeTensor")

	out := buf.String()
	for _, want := range []string{"AIR flux1:lora:civitai:667004@746484", "https://civitai.com/api/download/models/746484", "format: SafeTensor"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q: %q", want, out)
		}
	}
}

func TestPrintResolved_UnknownFormat(t *testing.T) {
	buf := capture(t)

	PrintResolved("ref", "url", "")

	if !strings.Contains(buf.String(), "format: unknown") {
		t.Errorf("output should mark unknown format: %q", buf.String())
	}
}

func TestPrintDecision(t *testing.T) {
	buf := capture(t)

	PrintDecision(selection.Decision{
		File:    registry.File{Name: "model.ckpt", Type: registry.FileTypeModel},
		Verdict: selection.SkippedUnsafe,
	})

	out := buf.String()
	if !strings.Contains(out, "model.ckpt") {
		t.Errorf("output should contain filename: %q", out)
	}
	if !strings.Contains(out, "skipped (unsafe format)") {
		t.Errorf("output should contain verdict: %q", out)
	}
}

func TestPrintRedirects(t *testing.T) {
	buf := capture(t)

	PrintRedirects([]string{"302 https://civitai.com/api/download/models/1"})

	out := buf.String()
	if !strings.Contains(out, "redirected 1 time(s)") {
		t.Errorf("output should mention redirect count: %q", out)
	}
	if !strings.Contains(out, "302 https://civitai.com/api/download/models/1") {
		t.Errorf("output should list the hop: %q", out)
	}
}

func TestPrintRedirects_EmptyPrintsNothing(t *testing.T) {
	buf := capture(t)

	PrintRedirects(nil)

	if buf.Len() != 0 {
		t.Errorf("output should be empty: %q", buf.String())
	}
}

func TestPrintStatusLines(t *testing.T) {
	buf := capture(t)

	PrintSuccess("saved")
	PrintError("failed")
	PrintWarning("careful")
	PrintInfo("fyi")

	out := buf.String()
	for _, want := range []string{"saved", "failed", "careful", "fyi"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q: %q", want, out)
		}
	}
}

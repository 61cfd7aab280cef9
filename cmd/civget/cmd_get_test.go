package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/d2verb/civget/internal/logging"
	"github.com/d2verb/civget/internal/ui"
)

// withTestRegistry points the command at a fake registry and captures
// UI output for the duration of one test.
func withTestRegistry(t *testing.T, handler http.Handler) (*httptest.Server, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	origURL := registryBaseURL
	registryBaseURL = srv.URL
	t.Cleanup(func() { registryBaseURL = origURL })

	var buf bytes.Buffer
	origOut := ui.Output
	ui.Output = &buf
	t.Cleanup(func() { ui.Output = origOut })

	return srv, &buf
}

func testLogger() *slog.Logger {
	return logging.NewLogger(io.Discard, false)
}

func TestRun_AirWithPinnedFormat_SkipsMetadata(t *testing.T) {
	// Arrange
	content := []byte("fake-model-binary-content")
	var metadataCalled bool
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/model-versions/", func(w http.ResponseWriter, r *http.Request) {
		metadataCalled = true
		http.NotFound(w, r)
	})
	mux.HandleFunc("/api/download/models/746484", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", `attachment; filename="model.safetensors"`)
		w.Write(content)
	})
	_, out := withTestRegistry(t, mux)

	destDir := t.TempDir()
	cmd := &GetCmd{Air: []string{"urn:air:flux1:lora:civitai:667004@746484.safetensor"}}

	// Act
	err := cmd.run(context.Background(), "tok", destDir, testLogger())

	// Assert
	if err != nil {
		t.Fatalf("run() error = %v\noutput:\n%s", err, out.String())
	}
	if metadataCalled {
		t.Error("metadata endpoint should not be hit for a format-pinned reference without constraints")
	}

	data, err := os.ReadFile(filepath.Join(destDir, "model.safetensors"))
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Error("downloaded content mismatch")
	}
}

func TestRun_AirWithoutFormat_FetchesMetadataAndSelects(t *testing.T) {
	// Arrange
	content := []byte("weights")
	var downloadQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/model-versions/128078", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"files": [
			{"name": "model.safetensors", "type": "Model", "metadata": {"format": "SafeTensor", "size": "pruned", "fp": 16}},
			{"name": "model.ckpt", "type": "Model", "metadata": {"format": "PickleTensor", "size": "full", "fp": 32}},
			{"name": "vae.pt", "type": "VAE", "metadata": {}}
		]}`)
	})
	mux.HandleFunc("/api/download/models/128078", func(w http.ResponseWriter, r *http.Request) {
		downloadQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", `attachment; filename="model.safetensors"`)
		w.Write(content)
	})
	_, out := withTestRegistry(t, mux)

	destDir := t.TempDir()
	cmd := &GetCmd{Air: []string{"urn:air:sdxl:model:civitai:101055@128078"}}

	// Act
	err := cmd.run(context.Background(), "tok", destDir, testLogger())

	// Assert
	if err != nil {
		t.Fatalf("run() error = %v\noutput:\n%s", err, out.String())
	}
	for _, want := range []string{"format=SafeTensor", "type=Model", "size=pruned", "fp=16"} {
		if !strings.Contains(downloadQuery, want) {
			t.Errorf("download query = %q, should contain %q", downloadQuery, want)
		}
	}

	// The unsafe ckpt and the companion are reported as skipped.
	output := out.String()
	if !strings.Contains(output, "skipped (unsafe format)") {
		t.Errorf("output should report the unsafe skip:\n%s", output)
	}
	if !strings.Contains(output, "skipped (companion)") {
		t.Errorf("output should report the companion skip:\n%s", output)
	}

	if _, err := os.Stat(filepath.Join(destDir, "model.safetensors")); err != nil {
		t.Errorf("downloaded file should exist: %v", err)
	}
}

func TestRun_PartialFailure(t *testing.T) {
	// Arrange: first reference has an unsupported source, second succeeds.
	content := []byte("ok")
	mux := http.NewServeMux()
	mux.HandleFunc("/api/download/models/746484", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", `attachment; filename="good.safetensors"`)
		w.Write(content)
	})
	_, out := withTestRegistry(t, mux)

	destDir := t.TempDir()
	cmd := &GetCmd{Air: []string{
		"urn:air:flux1:lora:huggingface:1@2",
		"urn:air:flux1:lora:civitai:667004@746484.safetensor",
	}}

	// Act
	err := cmd.run(context.Background(), "tok", destDir, testLogger())

	// Assert
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %T, want *ExitError", err)
	}
	if exitErr.Code != exitDownloadFailed {
		t.Errorf("Code = %d, want %d", exitErr.Code, exitDownloadFailed)
	}
	if !strings.Contains(exitErr.Message, "1 of 2") {
		t.Errorf("Message = %q, want mention of 1 of 2", exitErr.Message)
	}

	// The invalid reference is reported, the valid one still completes.
	if !strings.Contains(out.String(), "unsupported source") {
		t.Errorf("output should report the unsupported source:\n%s", out.String())
	}
	if _, err := os.Stat(filepath.Join(destDir, "good.safetensors")); err != nil {
		t.Errorf("valid reference should still be downloaded: %v", err)
	}
}

func TestRun_NoMatchingFiles(t *testing.T) {
	// Arrange: only an unsafe model file, safety gate leaves nothing.
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/model-versions/2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"files": [
			{"name": "model.ckpt", "type": "Model", "metadata": {"format": "PickleTensor", "size": "full", "fp": 32}}
		]}`)
	})
	_, out := withTestRegistry(t, mux)

	cmd := &GetCmd{Air: []string{"urn:air:flux1:lora:civitai:1@2"}}

	// Act
	err := cmd.run(context.Background(), "tok", t.TempDir(), testLogger())

	// Assert
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %T, want *ExitError", err)
	}
	if !strings.Contains(out.String(), "no files match") {
		t.Errorf("output should report no matching files:\n%s", out.String())
	}
}

func TestRun_TransferFailureReported(t *testing.T) {
	// Arrange: download endpoint rejects the token.
	mux := http.NewServeMux()
	mux.HandleFunc("/api/download/models/746484", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	_, out := withTestRegistry(t, mux)

	cmd := &GetCmd{Air: []string{"urn:air:flux1:lora:civitai:667004@746484.safetensor"}}

	// Act
	err := cmd.run(context.Background(), "bad-token", t.TempDir(), testLogger())

	// Assert
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %T, want *ExitError", err)
	}
	if !strings.Contains(out.String(), "access denied") {
		t.Errorf("output should report access denied:\n%s", out.String())
	}
}

func TestRun_URLMode_InvalidURL(t *testing.T) {
	// Arrange
	_, out := withTestRegistry(t, http.NewServeMux())

	cmd := &GetCmd{URL: []string{"https://example.com/api/download/models/1"}}

	// Act
	err := cmd.run(context.Background(), "tok", t.TempDir(), testLogger())

	// Assert
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %T, want *ExitError", err)
	}
	if !strings.Contains(out.String(), "invalid download URL") {
		t.Errorf("output should report the invalid URL:\n%s", out.String())
	}
}

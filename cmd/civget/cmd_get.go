package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/d2verb/civget/internal/air"
	"github.com/d2verb/civget/internal/config"
	"github.com/d2verb/civget/internal/registry"
	"github.com/d2verb/civget/internal/selection"
	"github.com/d2verb/civget/internal/transfer"
	"github.com/d2verb/civget/internal/ui"
)

// registryBaseURL can be overridden in tests.
var registryBaseURL = registry.DefaultBaseURL

var errNoFilesMatch = errors.New("no files match the given constraints")

type GetCmd struct {
	Air []string `help:"AIR resource names (urn:air:ecosystem:type:source:id@version)." short:"a" xor:"refs" required:""`
	URL []string `help:"Direct CivitAI download URLs." short:"u" xor:"refs" required:""`

	Size string `help:"Only download model files with this size metadata." enum:",full,pruned" default:"" predictor:"size"`
	Fp   string `help:"Only download model files with this floating point precision." enum:",8,16,32" default:"" predictor:"fp"`

	IncludeCompanions bool `help:"Include companion files such as VAE or config."`
	ForceUnsafe       bool `help:"Allow downloading non-SafeTensor model files. Use with caution."`

	LocalDir string `help:"Output directory to store models." short:"l" required:""`
	Token    string `help:"CivitAI API token (overrides env and config file)." short:"t"`
	Debug    bool   `help:"Enable debug logging."`
}

func (c *GetCmd) Run() error {
	paths, err := config.GetPaths()
	if err != nil {
		return fmt.Errorf("get paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	logger, closer := newLogger(paths, c.Debug)
	defer closer.Close()

	token, err := resolveToken(c.Token, paths.Config)
	if err != nil {
		return err
	}

	destDir, err := config.ResolveDir(c.LocalDir)
	if err != nil {
		return err
	}

	return c.run(context.Background(), token, destDir, logger)
}

// run processes every reference sequentially. A failed reference is
// reported and the run continues; the command fails at the end when one
// or more references failed.
func (c *GetCmd) run(ctx context.Context, token, destDir string, logger *slog.Logger) error {
	client := registry.NewClient(registryBaseURL, token, logger)
	downloader := transfer.NewDownloader(destDir, token, logger)
	downloader.SetProgressFunc(printProgress)

	constraints := selection.Constraints{
		Size:              c.Size,
		FP:                c.Fp,
		IncludeCompanions: c.IncludeCompanions,
		AllowUnsafe:       c.ForceUnsafe,
	}

	parse := air.ParseAir
	refs := c.Air
	if len(c.URL) > 0 {
		parse = air.ParseDownloadURL
		refs = c.URL
	}

	var merr *multierror.Error
	for _, raw := range refs {
		if err := processReference(ctx, raw, parse, client, downloader, constraints); err != nil {
			logger.Error("reference failed", "ref", raw, "error", err)
			ui.PrintError(fmt.Sprintf("%s: %v", raw, err))
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", raw, err))
		}
	}

	if err := merr.ErrorOrNil(); err != nil {
		return errDownloadFailed(len(merr.Errors), len(refs))
	}
	return nil
}

// processReference resolves one raw reference and downloads every file
// selected for it.
func processReference(
	ctx context.Context,
	raw string,
	parse func(string) (*air.Ref, error),
	client *registry.Client,
	downloader *transfer.Downloader,
	constraints selection.Constraints,
) error {
	ref, err := parse(raw)
	if err != nil {
		return err
	}

	versionID := ref.DownloadID()

	// The metadata lookup is only needed when the reference does not pin
	// a format, or when file-level constraints require the manifest.
	if ref.FormatKnown() && !constraints.Any() {
		return downloadVersion(ctx, ref, client, downloader, nil)
	}

	version, err := client.Version(ctx, versionID)
	if err != nil {
		return err
	}

	files := selection.Select(version.Files, constraints)
	ui.PrintResolved(ref.String(), client.DownloadURL(versionID, registry.DownloadParams{}), resolvedFormat(ref, files))
	for _, d := range selection.Evaluate(version.Files, constraints) {
		ui.PrintDecision(d)
	}
	if len(files) == 0 {
		return errNoFilesMatch
	}

	return downloadVersion(ctx, ref, client, downloader, files)
}

// downloadVersion fetches either the reference's own URL (nil files) or
// one narrowed URL per selected file.
func downloadVersion(
	ctx context.Context,
	ref *air.Ref,
	client *registry.Client,
	downloader *transfer.Downloader,
	files []registry.File,
) error {
	versionID := ref.DownloadID()

	var targets []transfer.Target
	if files == nil {
		url := ref.Raw
		if ref.Type == air.TypeAir {
			url = client.DownloadURL(versionID, registry.DownloadParams{Format: ref.Format})
		}
		ui.PrintResolved(ref.String(), url, resolvedFormat(ref, nil))
		targets = append(targets, transfer.Target{URL: url, Auth: true})
	} else {
		for _, f := range files {
			params := registry.DownloadParams{Type: f.Type, Format: f.Metadata.Format}
			if f.Type == registry.FileTypeModel {
				params.Size = f.Metadata.Size
				params.FP = string(f.Metadata.FP)
			}
			targets = append(targets, transfer.Target{
				URL:  client.DownloadURL(versionID, params),
				Auth: true,
			})
		}
	}

	for _, target := range targets {
		result, err := downloader.Transfer(ctx, target)
		fmt.Fprintln(ui.Output)
		if err != nil {
			return err
		}
		ui.PrintRedirects(result.Redirects)
		ui.PrintSuccess(fmt.Sprintf("Saved: %s (%s in %s)",
			result.Path, formatSize(result.BytesWritten), result.Elapsed.Round(time.Second)))
	}
	return nil
}

// resolvedFormat reports the format for the resolution log line: the one
// pinned by the reference, or the first selected model file's.
func resolvedFormat(ref *air.Ref, files []registry.File) string {
	switch {
	case ref.Type == air.TypeAir && ref.Format != "":
		return ref.Format
	case ref.Type == air.TypeURL && ref.QueryFormat != "":
		return ref.QueryFormat
	}
	for _, f := range files {
		if f.Type == registry.FileTypeModel {
			return f.Metadata.Format
		}
	}
	return ""
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/d2verb/civget/internal/config"
	"github.com/d2verb/civget/internal/logging"
	"github.com/d2verb/civget/internal/ui"
)

// tokenEnvVar overrides the config file token when set.
const tokenEnvVar = "CIVITAI_TOKEN"

func newLogger(paths *config.Paths, debug bool) (*slog.Logger, io.Closer) {
	w := logging.NewRotatingWriter(logging.DefaultConfig(paths.Log))
	return logging.NewLogger(w, debug), w
}

// resolveToken returns the bearer token to use, in precedence order:
// flag, environment, config file, interactive prompt. A prompted token
// is persisted so the next run does not ask again.
func resolveToken(flagToken, configPath string) (string, error) {
	if flagToken != "" {
		return flagToken, nil
	}
	if env := os.Getenv(tokenEnvVar); env != "" {
		return env, nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return "", err
	}
	if cfg.Token != "" {
		return cfg.Token, nil
	}

	token, err := promptToken()
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", fmt.Errorf("no token provided")
	}

	cfg.Token = token
	if err := cfg.Save(configPath); err != nil {
		return "", err
	}
	return token, nil
}

// promptToken reads a token from the terminal without echoing it.
func promptToken() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no token configured (set %s or run: civget token set)", tokenEnvVar)
	}

	fmt.Fprint(ui.Output, "Enter your CivitAI API token: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(ui.Output)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

func printProgress(downloaded, total int64) {
	if total <= 0 {
		fmt.Fprintf(ui.Output, "\r%s downloaded", formatSize(downloaded))
		return
	}

	percent := float64(downloaded) / float64(total) * 100
	barWidth := 40
	filled := int(percent / 100 * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	fmt.Fprintf(ui.Output, "\r[%s] %.1f%% (%s / %s)", bar, percent, formatSize(downloaded), formatSize(total))
}

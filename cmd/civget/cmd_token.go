package main

import (
	"fmt"
	"strings"

	"github.com/d2verb/civget/internal/config"
	"github.com/d2verb/civget/internal/ui"
)

type TokenCmd struct {
	Set   TokenSetCmd   `cmd:"" help:"Store an API token in the config file"`
	Show  TokenShowCmd  `cmd:"" help:"Show the stored API token"`
	Clear TokenClearCmd `cmd:"" help:"Remove the stored API token"`
}

type TokenSetCmd struct {
	Token string `arg:"" optional:"" help:"Token value. Prompted for when omitted."`
}

func (c *TokenSetCmd) Run() error {
	paths, err := config.GetPaths()
	if err != nil {
		return fmt.Errorf("get paths: %w", err)
	}

	token := strings.TrimSpace(c.Token)
	if token == "" {
		token, err = promptToken()
		if err != nil {
			return err
		}
	}
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	cfg, err := config.Load(paths.Config)
	if err != nil {
		return err
	}
	cfg.Token = token
	if err := cfg.Save(paths.Config); err != nil {
		return err
	}

	ui.PrintSuccess("Token saved to " + paths.Config)
	return nil
}

type TokenShowCmd struct{}

func (c *TokenShowCmd) Run() error {
	paths, err := config.GetPaths()
	if err != nil {
		return fmt.Errorf("get paths: %w", err)
	}

	cfg, err := config.Load(paths.Config)
	if err != nil {
		return err
	}
	if cfg.Token == "" {
		ui.PrintWarning("No token stored. Run: civget token set")
		return nil
	}

	fmt.Fprintln(ui.Output, maskToken(cfg.Token))
	return nil
}

type TokenClearCmd struct{}

func (c *TokenClearCmd) Run() error {
	paths, err := config.GetPaths()
	if err != nil {
		return fmt.Errorf("get paths: %w", err)
	}

	cfg, err := config.Load(paths.Config)
	if err != nil {
		return err
	}
	cfg.Token = ""
	if err := cfg.Save(paths.Config); err != nil {
		return err
	}

	ui.PrintSuccess("Token removed.")
	return nil
}

// maskToken keeps the first and last few characters visible.
func maskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}

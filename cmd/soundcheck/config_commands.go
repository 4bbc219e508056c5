package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"soundcheck/internal/config"
	"soundcheck/internal/render"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set youtube.api_key (or export YOUTUBE_API_KEY) before running Soundcheck.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			flagPath, _ := cmd.Flags().GetString("config")
			cfg, path, exists, err := config.Load(strings.TrimSpace(flagPath))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "show",
		Short:       "Print the effective configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			flagPath, _ := cmd.Flags().GetString("config")
			cfg, path, exists, err := config.Load(strings.TrimSpace(flagPath))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			colorize := render.Colorize(out)
			for _, line := range render.SectionHeader("Configuration", colorize) {
				fmt.Fprintln(out, line)
			}
			source := path
			if !exists {
				source = "(defaults; no config file)"
			}
			fmt.Fprintln(out, render.StatusLine("Source", render.Info, source, colorize))
			fmt.Fprintln(out, render.StatusLine("Data dir", render.Info, cfg.Paths.DataDir, colorize))
			fmt.Fprintln(out, render.StatusLine("Report dir", render.Info, cfg.Paths.ReportDir, colorize))
			fmt.Fprintln(out, render.StatusLine("QA dir", render.Info, cfg.Paths.QADir, colorize))

			apiKind := render.OK
			apiText := "configured"
			if strings.TrimSpace(cfg.YouTube.APIKey) == "" {
				apiKind, apiText = render.Error, "missing"
			}
			fmt.Fprintln(out, render.StatusLine("YouTube API key", apiKind, apiText, colorize))

			spotifyKind := render.OK
			spotifyText := "configured"
			if !cfg.SpotifyEnabled() {
				spotifyKind, spotifyText = render.Warn, "not configured; enrichment disabled"
			}
			fmt.Fprintln(out, render.StatusLine("Spotify", spotifyKind, spotifyText, colorize))

			fmt.Fprintln(out, render.StatusLine("Accept threshold", render.Info, fmt.Sprintf("%d", cfg.Matching.AcceptThreshold), colorize))
			fmt.Fprintln(out, render.StatusLine("Flag threshold", render.Info, fmt.Sprintf("%d", cfg.Matching.FlagThreshold), colorize))
			fmt.Fprintln(out, render.StatusLine("View cap", render.Info, fmt.Sprintf("%d", cfg.Verification.DefaultViewCap), colorize))
			fmt.Fprintln(out, render.StatusLine("Trusted channels", render.Info, fmt.Sprintf("%d", len(cfg.Verification.TrustedChannels)), colorize))
			return nil
		},
	}
}

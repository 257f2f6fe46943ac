package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"steward/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
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
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set server.jwt_secret (or export STEWARD_JWT_SECRET) before starting the daemon.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:         "show",
		Short:       "Show the resolved configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file does not exist; showing defaults")
			}
			fmt.Fprintf(out, "Managed root:    %s\n", cfg.Paths.RootDir)
			fmt.Fprintf(out, "Watch directory: %s\n", cfg.WatchDirOrRoot())
			fmt.Fprintf(out, "Data directory:  %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "Log directory:   %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "API:             enabled=%s bind=%s\n", yesNo(cfg.Server.Enabled), cfg.Paths.APIBind)
			fmt.Fprintf(out, "Monitor:         enabled=%s debounce=%ds\n", yesNo(cfg.Monitor.Enabled), cfg.Monitor.DebounceSeconds)
			fmt.Fprintf(out, "Organize:        hierarchical=%s enforce_naming=%s auto_rename=%s recursive=%s\n",
				yesNo(cfg.Organize.Hierarchical), yesNo(cfg.Organize.EnforceNaming),
				yesNo(cfg.Organize.AutoRename), yesNo(cfg.Organize.Recursive))
			if cfg.Organize.Schedule != "" {
				fmt.Fprintf(out, "Sweep schedule:  %s\n", cfg.Organize.Schedule)
			}
			fmt.Fprintf(out, "Notifications:   topic=%s\n", cfg.Notifications.NtfyTopic)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config-path", "p", "", "Configuration file to inspect")
	return cmd
}

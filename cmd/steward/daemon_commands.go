package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"steward/internal/ipc"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the steward daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			if client, err := ctx.dialClient(); err == nil {
				_ = client.Close()
				fmt.Fprintln(stdout, "Daemon already running")
				return nil
			}

			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			launchArgs := []string{}
			if ctx.configFlag != nil {
				if config := strings.TrimSpace(*ctx.configFlag); config != "" {
					launchArgs = append(launchArgs, "--config", config)
				}
			}
			if ctx.socketFlag != nil {
				if socket := strings.TrimSpace(*ctx.socketFlag); socket != "" {
					launchArgs = append(launchArgs, "--socket", socket)
				}
			}

			launch := exec.Command(exe, launchArgs...)
			launch.Stdout = nil
			launch.Stderr = nil
			if err := launch.Start(); err != nil {
				return fmt.Errorf("launch daemon: %w", err)
			}
			// Detach; the daemon owns its own lifecycle from here.
			if err := launch.Process.Release(); err != nil {
				return fmt.Errorf("release daemon process: %w", err)
			}
			fmt.Fprintln(stdout, "Daemon not running, launching...")

			deadline := time.Now().Add(10 * time.Second)
			for time.Now().Before(deadline) {
				if client, err := ctx.dialClient(); err == nil {
					_ = client.Close()
					fmt.Fprintln(stdout, "Daemon started")
					return nil
				}
				time.Sleep(200 * time.Millisecond)
			}
			return errors.New("daemon did not become ready within 10s")
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the steward daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			err := ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Stop()
				if err != nil {
					return err
				}
				if resp.Stopped {
					fmt.Fprintln(stdout, "Daemon stopped")
				} else {
					fmt.Fprintln(stdout, "Stop request sent")
				}
				return nil
			})
			if err != nil && strings.Contains(err.Error(), "not found") {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			return err
		},
	}

	return []*cobra.Command{startCmd, stopCmd}
}

// daemonExecutable locates the stewardd binary, preferring one installed
// next to the CLI.
func daemonExecutable() (string, error) {
	self, err := os.Executable()
	if err == nil {
		sibling := filepath.Join(filepath.Dir(self), "stewardd")
		if info, statErr := os.Stat(sibling); statErr == nil && !info.IsDir() {
			return sibling, nil
		}
	}
	if path, lookErr := exec.LookPath("stewardd"); lookErr == nil {
		return path, nil
	}
	return "", errors.New("stewardd binary not found next to steward or on PATH")
}

package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"steward/internal/daemon"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, module, and job status",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			client, err := ctx.dialClient()
			if err != nil {
				if jsonOut {
					return writeJSON(cmd, map[string]any{"running": false})
				}
				colorize := shouldColorize(stdout)
				for _, line := range renderSectionHeader("Daemon", colorize) {
					fmt.Fprintln(stdout, line)
				}
				fmt.Fprintln(stdout, renderStatusLine("Running", statusWarn, "daemon is not running", colorize))
				return nil
			}
			defer client.Close()

			resp, err := client.Status()
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, resp.Status)
			}
			printStatus(cmd, resp.Status)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit status as JSON")
	return cmd
}

func printStatus(cmd *cobra.Command, status daemon.Status) {
	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)

	for _, line := range renderSectionHeader("Daemon", colorize) {
		fmt.Fprintln(stdout, line)
	}
	runningKind := statusWarn
	runningDetail := "stopped"
	if status.Running {
		runningKind = statusOK
		runningDetail = fmt.Sprintf("pid %d, up %s", status.PID, (time.Duration(status.UptimeSeconds) * time.Second).String())
	}
	fmt.Fprintln(stdout, renderStatusLine("Running", runningKind, runningDetail, colorize))
	fmt.Fprintln(stdout, renderStatusLine("Root", statusInfo, status.RootDir, colorize))
	fmt.Fprintln(stdout, renderStatusLine("Watching", statusInfo, status.WatchDir, colorize))
	if status.APIBind != "" {
		fmt.Fprintln(stdout, renderStatusLine("API", statusInfo, status.APIBind, colorize))
	}
	fmt.Fprintln(stdout, renderStatusLine("Database", statusInfo, status.DatabasePath, colorize))
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Modules", colorize) {
		fmt.Fprintln(stdout, line)
	}
	if len(status.Modules) == 0 {
		fmt.Fprintln(stdout, "No modules registered")
	}
	for _, module := range status.Modules {
		kind := statusWarn
		if module.Status == "active" {
			kind = statusOK
		}
		detail := module.Status
		if module.LastRun != nil {
			detail = fmt.Sprintf("%s, last run %s", module.Status, module.LastRun.Local().Format(time.RFC822))
		}
		fmt.Fprintln(stdout, renderStatusLine(module.DisplayName, kind, detail, colorize))
	}
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Jobs", colorize) {
		fmt.Fprintln(stdout, line)
	}
	if len(status.Jobs) == 0 {
		fmt.Fprintln(stdout, "No jobs on the board")
		return
	}
	statuses := make([]string, 0, len(status.Jobs))
	for jobStatus := range status.Jobs {
		statuses = append(statuses, jobStatus)
	}
	sort.Strings(statuses)
	rows := make([][]string, 0, len(statuses))
	for _, jobStatus := range statuses {
		rows = append(rows, []string{jobStatus, fmt.Sprintf("%d", status.Jobs[jobStatus])})
	}
	fmt.Fprintln(stdout, renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
}

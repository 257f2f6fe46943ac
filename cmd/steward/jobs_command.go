package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"steward/internal/ipc"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Job board queries",
	}
	jobsCmd.AddCommand(newJobsListCommand(ctx))
	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var statuses []string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Jobs(statuses)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, resp.Jobs)
				}

				stdout := cmd.OutOrStdout()
				if len(resp.Jobs) == 0 {
					fmt.Fprintln(stdout, "No jobs found")
					return nil
				}
				rows := make([][]string, 0, len(resp.Jobs))
				for _, job := range resp.Jobs {
					deadline := ""
					if job.Deadline != nil {
						deadline = job.Deadline.Local().Format("2006-01-02")
					}
					rows = append(rows, []string{
						job.JobNumber,
						job.Title,
						job.Customer,
						string(job.Status),
						string(job.Priority),
						deadline,
					})
				}
				fmt.Fprintln(stdout, renderTable(
					[]string{"Job", "Title", "Customer", "Status", "Priority", "Deadline"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by job status (repeatable)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit jobs as JSON")
	return cmd
}

func newAuditCommand(ctx *commandContext) *cobra.Command {
	var entityType string
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the recent audit trail",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Activity(entityType, limit)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, resp.Items)
				}

				stdout := cmd.OutOrStdout()
				if len(resp.Items) == 0 {
					fmt.Fprintln(stdout, "No activity recorded")
					return nil
				}
				rows := make([][]string, 0, len(resp.Items))
				for _, item := range resp.Items {
					rows = append(rows, []string{
						item.CreatedAt.Local().Format(time.RFC822),
						item.EntityType,
						item.EntityID,
						item.Action,
						item.Actor,
					})
				}
				fmt.Fprintln(stdout, renderTable(
					[]string{"When", "Entity", "ID", "Action", "Actor"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&entityType, "entity", "", "Filter by entity type (file, job, task, user, module)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum rows to show")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit audit rows as JSON")
	return cmd
}

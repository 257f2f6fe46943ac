package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"steward/internal/config"
	"steward/internal/logging"
	"steward/internal/mover"
	"steward/internal/organize"
)

// organizeFlags are the per-run overrides shared by organize and init.
type organizeFlags struct {
	root          string
	dryRun        bool
	hierarchical  bool
	customer      string
	enforceNaming bool
	autoRename    bool
	noRecursive   bool
	verbose       bool
	jsonOut       bool
}

func (f *organizeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.root, "root", "", "Managed root directory (overrides configuration)")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Report decisions without moving files")
	cmd.Flags().BoolVar(&f.hierarchical, "hierarchical", false, "Group files by customer and part number")
	cmd.Flags().StringVar(&f.customer, "customer", "", "Customer name for hierarchical grouping")
	cmd.Flags().BoolVar(&f.enforceNaming, "enforce-naming", false, "Hold files that violate the naming convention")
	cmd.Flags().BoolVar(&f.autoRename, "auto-rename", false, "Rename non-compliant files when a canonical name can be derived")
	cmd.Flags().BoolVar(&f.noRecursive, "no-recursive", false, "Do not descend into subdirectories")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Log every pipeline decision")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "Emit results as JSON")
}

// apply copies the flag overrides onto a private copy of the configuration.
func (f *organizeFlags) apply(cfg *config.Config) (*config.Config, error) {
	run := *cfg
	if root := strings.TrimSpace(f.root); root != "" {
		expanded, err := config.ExpandPath(root)
		if err != nil {
			return nil, err
		}
		run.Paths.RootDir = expanded
	}
	if f.hierarchical {
		run.Organize.Hierarchical = true
	}
	if customer := strings.TrimSpace(f.customer); customer != "" {
		run.Organize.DefaultCustomer = customer
	}
	if f.enforceNaming {
		run.Organize.EnforceNaming = true
	}
	if f.autoRename {
		run.Organize.EnforceNaming = true
		run.Organize.AutoRename = true
	}
	if f.noRecursive {
		run.Organize.Recursive = false
	}
	return &run, nil
}

func (f *organizeFlags) logger() *slog.Logger {
	level := "warn"
	if f.verbose {
		level = "info"
	}
	logger, err := logging.New(logging.Options{Level: level, Format: "console"})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var flags organizeFlags

	cmd := &cobra.Command{
		Use:   "organize [directory]",
		Short: "Sort files into the managed folder structure",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.apply(ctx.configValue())
			if err != nil {
				return err
			}

			dir := cfg.WatchDirOrRoot()
			if len(args) == 1 {
				dir, err = config.ExpandPath(args[0])
				if err != nil {
					return err
				}
			}

			logger := flags.logger()
			organizer := organize.New(cfg, mover.New(flags.dryRun, logger), logger)
			if !flags.dryRun {
				if err := organizer.InitFolders(); err != nil {
					return err
				}
			}

			stats, results, err := organizer.Run(dir, organize.Options{})
			if err != nil {
				return err
			}

			if flags.jsonOut {
				return writeJSON(cmd, organizeReport(dir, flags.dryRun, stats, results))
			}
			printOrganizeSummary(cmd, dir, flags.dryRun, stats, results)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newInitCommand(ctx *commandContext) *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the managed folder structure",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *ctx.configValue()
			if trimmed := strings.TrimSpace(root); trimmed != "" {
				expanded, err := config.ExpandPath(trimmed)
				if err != nil {
					return err
				}
				cfg.Paths.RootDir = expanded
			}

			logger := logging.NewNop()
			organizer := organize.New(&cfg, mover.New(false, logger), logger)
			if err := organizer.InitFolders(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Folder structure ready under %s\n", organizer.Root())
			return nil
		},
	}
	cmd.Flags().StringVar(&root, "root", "", "Managed root directory (overrides configuration)")
	return cmd
}

func newArchiveCommand(ctx *commandContext) *cobra.Command {
	var root string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "archive <directory>",
		Short: "Move a job folder into the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *ctx.configValue()
			if trimmed := strings.TrimSpace(root); trimmed != "" {
				expanded, err := config.ExpandPath(trimmed)
				if err != nil {
					return err
				}
				cfg.Paths.RootDir = expanded
			}

			source, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			logger := logging.NewNop()
			organizer := organize.New(&cfg, mover.New(dryRun, logger), logger)
			target, err := organizer.Archive(source)
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Would archive %s to %s\n", source, target)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Archived %s to %s\n", source, target)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&root, "root", "", "Managed root directory (overrides configuration)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report the archive destination without moving anything")
	return cmd
}

type organizeResultView struct {
	Source      string `json:"source"`
	Category    string `json:"category"`
	Destination string `json:"destination,omitempty"`
	NewName     string `json:"new_name,omitempty"`
	Held        bool   `json:"held,omitempty"`
	HeldReason  string `json:"held_reason,omitempty"`
	Error       string `json:"error,omitempty"`
}

type organizeReportView struct {
	Directory   string               `json:"directory"`
	DryRun      bool                 `json:"dry_run"`
	Processed   int                  `json:"processed"`
	Categorized int                  `json:"categorized"`
	Held        int                  `json:"held"`
	Renamed     int                  `json:"renamed"`
	Errors      int                  `json:"errors"`
	Results     []organizeResultView `json:"results"`
}

func organizeReport(dir string, dryRun bool, stats organize.Stats, results []organize.Result) organizeReportView {
	report := organizeReportView{
		Directory:   dir,
		DryRun:      dryRun,
		Processed:   stats.Processed,
		Categorized: stats.Categorized,
		Held:        stats.Held,
		Renamed:     stats.Renamed,
		Errors:      stats.Errors,
		Results:     make([]organizeResultView, 0, len(results)),
	}
	for _, res := range results {
		view := organizeResultView{
			Source:   res.Source,
			Category: string(res.Category),
			Held:     res.Held,
		}
		if res.Held {
			view.HeldReason = res.HeldWhy
		} else {
			view.Destination = res.Operation.Destination
			view.NewName = res.Operation.NewName
		}
		if res.Operation.Err != nil {
			view.Error = res.Operation.Err.Error()
		}
		report.Results = append(report.Results, view)
	}
	return report
}

func printOrganizeSummary(cmd *cobra.Command, dir string, dryRun bool, stats organize.Stats, results []organize.Result) {
	stdout := cmd.OutOrStdout()

	if dryRun {
		fmt.Fprintf(stdout, "Dry run over %s\n", dir)
	} else {
		fmt.Fprintf(stdout, "Organized %s\n", dir)
	}
	fmt.Fprintln(stdout, stats.String())

	if stats.Processed == 0 {
		return
	}

	rows := make([][]string, 0, len(results))
	for _, res := range results {
		outcome := res.Operation.Destination
		switch {
		case res.Operation.Err != nil:
			outcome = "error: " + res.Operation.Err.Error()
		case res.Held:
			outcome = "held: " + res.HeldWhy
		case res.Operation.NewName != "":
			outcome = fmt.Sprintf("%s (renamed to %s)", res.Operation.Destination, res.Operation.NewName)
		}
		rows = append(rows, []string{filepath.Base(res.Source), string(res.Category), outcome})
	}
	fmt.Fprintln(stdout, renderTable([]string{"File", "Category", "Outcome"}, rows, []columnAlignment{alignLeft, alignLeft, alignLeft}))
}

// qa-eval is a reference consumer of the QA evaluation engine: it loads a
// case exported as JSON, runs the check battery, and prints the text report.
//
// Usage:
//
//	qa-eval evaluate <case.json> [--overrides path] [--layout grouped|flat] [--status FAIL,WARN]
//	qa-eval config show [--overrides path]
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rtplan-qa-engine/internal/config"
	"github.com/rtplan-qa-engine/internal/domain"
	"github.com/rtplan-qa-engine/internal/report"
	"github.com/rtplan-qa-engine/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "qa-eval",
		Short:         "Radiotherapy plan QA evaluation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newEvaluateCmd(), newConfigCmd())
	return root
}

func newEvaluateCmd() *cobra.Command {
	var (
		overridesPath string
		layout        string
		statuses      string
		groups        string
		noDetails     bool
	)
	cmd := &cobra.Command{
		Use:   "evaluate <case.json>",
		Short: "Run the QA check battery against an exported case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := config.LoadApp()
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}
			if overridesPath == "" {
				overridesPath = app.OverridePath
			}

			logger := newLogger(app)
			c, err := loadCase(args[0])
			if err != nil {
				return fmt.Errorf("load case: %w", err)
			}

			store := config.NewStore(overridesPath)
			evaluator := service.NewEvaluator(logger, store)
			qa := evaluator.Evaluate(cmd.Context(), c)

			rcfg := report.DefaultRenderConfig()
			rcfg.OKMin = app.ReportOKMin
			rcfg.WarnMin = app.ReportWarn
			rcfg.BarWidth = app.ReportWidth
			rcfg.Details = !noDetails
			if layout != "" {
				rcfg.Layout = report.Layout(layout)
			}
			rcfg.Statuses = parseStatuses(statuses)
			rcfg.Groups = parseGroups(groups)

			return report.Render(os.Stdout, qa, rcfg)
		},
	}
	cmd.Flags().StringVar(&overridesPath, "overrides", "", "Path to the override document (default from settings)")
	cmd.Flags().StringVar(&layout, "layout", "", "Report layout: grouped or flat")
	cmd.Flags().StringVar(&statuses, "status", "", "Comma-separated status filter (OK,WARN,FAIL)")
	cmd.Flags().StringVar(&groups, "group", "", "Comma-separated group filter (CT,STRUCTURES,PLAN,DOSE)")
	cmd.Flags().BoolVar(&noDetails, "no-details", false, "Suppress per-check detail lines")
	return cmd
}

func newConfigCmd() *cobra.Command {
	var overridesPath string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective check configuration",
	}
	show := &cobra.Command{
		Use:   "show",
		Short: "Print sections and checks after applying overrides",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := config.LoadApp()
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}
			if overridesPath == "" {
				overridesPath = app.OverridePath
			}
			snapshot := config.NewStore(overridesPath).Snapshot()

			fmt.Println("Sections:")
			for _, s := range snapshot.SectionViews() {
				fmt.Printf("  %-12s %-20s enabled=%-5v weight=%.1f order=%d\n",
					s.ID, s.Label, s.Enabled, s.Weight, s.Order)
			}
			fmt.Println("Checks:")
			for _, c := range snapshot.CheckViews() {
				fmt.Printf("  %-28s %-28s enabled=%-5v weight=%.1f\n",
					c.CheckKey, c.Label, c.Enabled, c.Weight)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&overridesPath, "overrides", "", "Path to the override document")
	cmd.AddCommand(show)
	return cmd
}

func newLogger(app *config.App) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if level, err := logrus.ParseLevel(app.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if strings.EqualFold(app.LogFormat, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

func parseStatuses(s string) []report.Status {
	if s == "" {
		return nil
	}
	var out []report.Status
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, report.Status(strings.ToUpper(part)))
		}
	}
	return out
}

func parseGroups(s string) []domain.Group {
	if s == "" {
		return nil
	}
	var out []domain.Group
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, domain.Group(strings.ToUpper(part)))
		}
	}
	return out
}

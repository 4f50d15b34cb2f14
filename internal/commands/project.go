package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/curdbook/curdbook/internal/catalog"
	"github.com/curdbook/curdbook/internal/config"
	"github.com/curdbook/curdbook/internal/finance"
	"github.com/curdbook/curdbook/internal/forecast"
)

func newProjectCommand() *cobra.Command {
	var dataDir string
	var months int
	var openingBalance string

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Print a multi-month cashflow projection",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			absDir, err := filepath.Abs(dataDir)
			if err != nil {
				return fmt.Errorf("resolving data dir: %w", err)
			}
			return runProject(absDir, months, openingBalance)
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", ".", "curdbook data directory")
	cmd.Flags().IntVar(&months, "months", 0, "projection length in months (default from config)")
	cmd.Flags().StringVar(&openingBalance, "opening-balance", "0", "opening balance in EUR")

	return cmd
}

func runProject(dataDir string, months int, openingBalance string) error {
	cfg, err := config.Load(filepath.Join(dataDir, configFile))
	if err != nil {
		return err
	}

	opening, err := decimal.NewFromString(openingBalance)
	if err != nil {
		return fmt.Errorf("parsing opening balance %q: %w", openingBalance, err)
	}

	fin, err := finance.Load(filepath.Join(dataDir, financeFile))
	if err != nil {
		return err
	}

	events, err := catalog.Load(filepath.Join(dataDir, eventsFile))
	if err != nil {
		return err
	}

	if months == 0 {
		months = cfg.Defaults.ProjectionMonths
	}

	params := forecast.Params{
		Months:           months,
		OpeningBalance:   opening,
		OverheadFraction: decimal.NewFromFloat(cfg.Defaults.OverheadFraction),
	}
	result := forecast.Project(params, fin, events)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MONTH\tDELTA\tBALANCE")
	for _, m := range result.Months {
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.MonthKey, m.BaselineDeltaEUR.StringFixed(2), m.BaselineBalanceEUR.StringFixed(2))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nOpen receivables: %s EUR\n", result.OpenReceivablesEUR.StringFixed(2))
	fmt.Printf("Open payables:    %s EUR\n", result.OpenPayablesEUR.StringFixed(2))
	return nil
}

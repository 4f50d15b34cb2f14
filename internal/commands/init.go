package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/curdbook/curdbook/internal/config"
	"github.com/curdbook/curdbook/internal/finance"
	"github.com/curdbook/curdbook/internal/model"
	"github.com/curdbook/curdbook/internal/queue"
)

func newInitCommand() *cobra.Command {
	var name string
	var remoteURL string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new curdbook data directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir, name, remoteURL)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&remoteURL, "remote", "", "remote ledger base URL")

	return cmd
}

func runInit(dir, name, remoteURL string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	configPath := filepath.Join(dir, configFile)
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists in %s", configFile, dir)
	}

	cfg := config.Default(name)
	cfg.Remote.BaseURL = remoteURL
	if err := config.Save(configPath, cfg); err != nil {
		return err
	}

	if err := finance.Save(filepath.Join(dir, financeFile), &model.FinanceState{}); err != nil {
		return err
	}

	// Create the queue database up front so the first offline mutation
	// has somewhere durable to land.
	store, err := queue.OpenSQLiteStore(filepath.Join(dir, queueFile))
	if err != nil {
		return err
	}
	if err := store.Close(); err != nil {
		return fmt.Errorf("closing queue store: %w", err)
	}

	fmt.Printf("Initialized curdbook data directory at %s\n", dir)
	return nil
}

package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/curdbook/curdbook/internal/syncer"
)

func newSyncCommand() *cobra.Command {
	var dataDir string
	var force bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Replay the pending action queue against the remote ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(dataDir)
			if err != nil {
				return err
			}
			defer rt.close()

			if rt.queue.IsEmpty() {
				fmt.Println("Pending queue is empty, nothing to sync.")
				return nil
			}

			depth := rt.queue.Len()
			err = rt.engine.ProcessPendingQueue(cmd.Context(), force)
			if errors.Is(err, syncer.ErrOffline) {
				fmt.Printf("Remote unreachable, %d action(s) kept for retry (use --force to try anyway).\n", depth)
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Printf("Synced, %d action(s) confirmed.\n", depth)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", ".", "curdbook data directory")
	cmd.Flags().BoolVar(&force, "force", false, "attempt sync even when the remote looks offline")

	return cmd
}

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/curdbook/curdbook/internal/config"
	"github.com/curdbook/curdbook/internal/ledger"
	"github.com/curdbook/curdbook/internal/queue"
	"github.com/curdbook/curdbook/internal/syncer"
)

const (
	configFile  = "curdbook.yaml"
	financeFile = "finance.yaml"
	eventsFile  = "events.yaml"
	queueFile   = "queue.db"
)

// runtime wires the core services over a data directory for one
// command invocation.
type runtime struct {
	dataDir    string
	cfg        *config.Config
	ledger     *ledger.Store
	queue      *queue.Queue
	queueStore *queue.SQLiteStore
	engine     *syncer.Engine
	log        zerolog.Logger
}

func openRuntime(dataDir string) (*runtime, error) {
	absDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolving data dir: %w", err)
	}

	cfg, err := config.Load(filepath.Join(absDir, configFile))
	if err != nil {
		return nil, err
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	store := ledger.New(log)
	store.EnsureDefaults()

	queueStore, err := queue.OpenSQLiteStore(filepath.Join(absDir, queueFile))
	if err != nil {
		return nil, err
	}

	q, err := queue.New(queueStore, log)
	if err != nil {
		queueStore.Close()
		return nil, err
	}

	timeout := time.Duration(cfg.Remote.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	remote := syncer.NewHTTPRemote(cfg.Remote.BaseURL, timeout, log)

	engine := syncer.New(syncer.Config{
		Ledger:       store,
		Queue:        q,
		Remote:       remote,
		Connectivity: remote,
		DataDir:      absDir,
		Log:          log,
	})

	return &runtime{
		dataDir:    absDir,
		cfg:        cfg,
		ledger:     store,
		queue:      q,
		queueStore: queueStore,
		engine:     engine,
		log:        log,
	}, nil
}

func (rt *runtime) close() {
	if err := rt.queueStore.Close(); err != nil {
		rt.log.Warn().Err(err).Msg("closing queue store failed")
	}
}

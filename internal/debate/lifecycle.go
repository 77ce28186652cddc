package debate

import (
	"github.com/robfig/cron/v3"

	"github.com/soyeahso/arena/internal/config"
	"github.com/soyeahso/arena/internal/logging"
	"github.com/soyeahso/arena/internal/store"
)

// Lifecycle owns the process-scoped storage handle and the retention
// janitor. It is constructed once at startup; a DB that cannot open is
// fatal, nothing works without the store.
type Lifecycle struct {
	db      *store.DB
	store   *store.DebateStore
	janitor *cron.Cron
	log     *logging.Logger
}

// Open opens the database at the configured path (or the default under
// the data dir) and starts the retention janitor when retention is
// enabled.
func Open(cfg config.Config, paths config.Paths, log *logging.Logger) (*Lifecycle, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath = paths.Database()
	}

	db, err := store.Open(dbPath, log)
	if err != nil {
		return nil, err
	}

	lc := &Lifecycle{
		db:    db,
		store: store.NewDebateStore(db),
		log:   log.Sub("lifecycle"),
	}

	if cfg.Retention.Days > 0 {
		days := cfg.Retention.Days
		c := cron.New()
		if _, err := c.AddFunc(cfg.Retention.Schedule, func() {
			removed := lc.store.PurgeOlderThan(days)
			lc.log.Info().Int("removed", removed).Int("days", days).Msg("retention purge ran")
		}); err != nil {
			db.Close()
			return nil, err
		}
		c.Start()
		lc.janitor = c
		lc.log.Info().Str("schedule", cfg.Retention.Schedule).Int("days", days).Msg("retention janitor started")
	}

	return lc, nil
}

// Store returns the debate store. Components receive it from here; there
// is no package-global store.
func (l *Lifecycle) Store() *store.DebateStore {
	return l.store
}

// DB returns the underlying database handle.
func (l *Lifecycle) DB() *store.DB {
	return l.db
}

// Close stops the janitor and closes the database.
func (l *Lifecycle) Close() error {
	if l.janitor != nil {
		l.janitor.Stop()
	}
	return l.db.Close()
}

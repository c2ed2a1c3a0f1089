// Package store persists the current session so it survives a restart.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gundaabinav333/authshell/internal/core/domain"
)

// BadgerConfig configures a BadgerStore.
type BadgerConfig struct {
	// Dir is the storage directory.
	Dir string

	// Sealer encrypts values at rest. Nil stores plaintext.
	Sealer Sealer

	// GCInterval is the interval between value-log GC runs.
	// Zero disables the background loop.
	GCInterval time.Duration

	// GCThreshold is the discard ratio passed to RunValueLogGC.
	GCThreshold float64

	// Registerer receives the store gauges. Nil skips metrics.
	Registerer prometheus.Registerer

	Logger *slog.Logger
}

// DefaultBadgerConfig returns the default configuration for dir.
func DefaultBadgerConfig(dir string) BadgerConfig {
	return BadgerConfig{
		Dir:         dir,
		GCInterval:  10 * time.Minute,
		GCThreshold: 0.5,
	}
}

// BadgerStore implements Store on an embedded Badger database.
type BadgerStore struct {
	db     *badger.DB
	cfg    BadgerConfig
	codec  codec
	logger *slog.Logger

	corrupt prometheus.Counter

	stopCh chan struct{}
	doneCh chan struct{}
}

// OpenBadger opens (or creates) the store in cfg.Dir.
func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	if cfg.Dir == "" {
		return nil, domain.ErrStoreUnavailable.WithDetails("dir is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// A session record is tiny; keep badger's footprint small and make
	// every write durable before Save returns.
	opts := badger.DefaultOptions(cfg.Dir).
		WithLogger(&badgerLogger{logger: logger}).
		WithSyncWrites(true).
		WithMemTableSize(8 << 20).
		WithValueLogFileSize(16 << 20).
		WithBlockCacheSize(1 << 20).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, domain.ErrStoreUnavailable.WithDetails(cfg.Dir).WithCause(err)
	}

	s := &BadgerStore{
		db:     db,
		cfg:    cfg,
		codec:  codec{sealer: cfg.Sealer},
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	if cfg.Registerer != nil {
		if err := s.registerMetrics(cfg.Registerer); err != nil {
			db.Close()
			return nil, fmt.Errorf("register store metrics: %w", err)
		}
	}

	if cfg.GCInterval > 0 {
		go s.gcLoop()
	} else {
		close(s.doneCh)
	}

	logger.Debug("session store opened", "dir", cfg.Dir, "sealed", cfg.Sealer != nil)
	return s, nil
}

// Save writes both keys in one read-write transaction.
func (s *BadgerStore) Save(_ context.Context, token string, cred *domain.Credential) error {
	tokenVal, userVal, err := s.codec.encode(token, cred)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(KeyToken), tokenVal); err != nil {
			return err
		}
		return txn.Set([]byte(KeyUser), userVal)
	})
}

// Load reads both keys from one read snapshot.
func (s *BadgerStore) Load(_ context.Context) (*Record, error) {
	var tokenVal, userVal []byte

	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		if tokenVal, err = getValue(txn, KeyToken); err != nil {
			return err
		}
		userVal, err = getValue(txn, KeyUser)
		return err
	})
	if err != nil {
		return nil, domain.ErrStoreUnavailable.WithCause(err)
	}

	if tokenVal == nil && userVal == nil {
		return nil, nil
	}

	rec, err := s.codec.decode(tokenVal, userVal)
	if err != nil {
		if s.corrupt != nil {
			s.corrupt.Inc()
		}
		s.logger.Warn("ignoring persisted session", "error", err)
		return nil, nil
	}
	return rec, nil
}

// Clear deletes both keys in one transaction.
func (s *BadgerStore) Clear(_ context.Context) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(KeyToken)); err != nil {
			return err
		}
		return txn.Delete([]byte(KeyUser))
	})
}

// Close stops the GC loop and closes the database.
func (s *BadgerStore) Close() error {
	select {
	case <-s.stopCh:
		return nil
	default:
	}
	close(s.stopCh)
	<-s.doneCh

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close session store: %w", err)
	}
	return nil
}

// GC runs value-log garbage collection until nothing is left to rewrite.
func (s *BadgerStore) GC() error {
	for {
		err := s.db.RunValueLogGC(s.cfg.GCThreshold)
		if err != nil {
			if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
				return nil
			}
			return fmt.Errorf("gc: %w", err)
		}
	}
}

func (s *BadgerStore) gcLoop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.GC(); err != nil {
				s.logger.Error("session store gc failed", "error", err)
			}
		case <-s.stopCh:
			return
		}
	}
}

func (s *BadgerStore) registerMetrics(reg prometheus.Registerer) error {
	lsm := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "authshell",
		Subsystem: "store",
		Name:      "lsm_size_bytes",
		Help:      "Badger LSM tree size in bytes",
	}, func() float64 {
		l, _ := s.db.Size()
		return float64(l)
	})

	vlog := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "authshell",
		Subsystem: "store",
		Name:      "value_log_size_bytes",
		Help:      "Badger value log size in bytes",
	}, func() float64 {
		_, v := s.db.Size()
		return float64(v)
	})

	s.corrupt = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "authshell",
		Subsystem: "store",
		Name:      "corrupt_records_total",
		Help:      "Persisted sessions ignored because they could not be decoded",
	})

	for _, c := range []prometheus.Collector{lsm, vlog, s.corrupt} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func getValue(txn *badger.Txn, key string) ([]byte, error) {
	item, err := txn.Get([]byte(key))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return item.ValueCopy(nil)
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
// Badger is chatty at info level, so its info output is logged at debug.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "badger")
}

package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"othello/game"
)

const keyPrefix = "stat/"

var gamesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "othello_stats_games_recorded_total",
	Help: "Finished games recorded in the statistics store, by result",
}, []string{"result"})

type Config struct {
	// Path is the badger directory. Ignored when InMemory is set.
	Path       string
	InMemory   bool
	SyncWrites bool
	// Logger receives badger's own log output. Nil silences it.
	Logger *slog.Logger
}

// Store persists one Statistic per label. It is safe for concurrent use.
type Store struct {
	db *badger.DB
	mu sync.Mutex
}

// badgerLogger adapts slog.Logger to badger.Logger.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("stats: path is required for a persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("stats: create directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("stats: open badger: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Add records one finished game for label from player's side and returns the
// updated statistic.
func (s *Store) Add(label string, player game.Player, outcome game.Outcome) (Statistic, error) {
	if label == "" {
		return Statistic{}, errors.New("stats: empty label")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated Statistic
	err := s.db.Update(func(txn *badger.Txn) error {
		current, err := getStatistic(txn, label)
		if err != nil {
			return err
		}
		current.Add(player, outcome)
		data, err := json.Marshal(current)
		if err != nil {
			return err
		}
		updated = current
		return txn.Set([]byte(keyPrefix+label), data)
	})
	if err != nil {
		return Statistic{}, fmt.Errorf("stats: record %q: %w", label, err)
	}
	gamesRecorded.WithLabelValues(resultLabel(player, outcome)).Inc()
	return updated, nil
}

// Get returns the statistic for label and whether any game was recorded.
func (s *Store) Get(label string) (Statistic, bool, error) {
	var stat Statistic
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		stat, err = getStatistic(txn, label)
		return err
	})
	if err != nil {
		return Statistic{}, false, fmt.Errorf("stats: read %q: %w", label, err)
	}
	return stat, stat.Count > 0, nil
}

// All returns every stored statistic keyed by label.
func (s *Store) All() (map[string]Statistic, error) {
	out := make(map[string]Statistic)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			label := strings.TrimPrefix(string(item.Key()), keyPrefix)
			var stat Statistic
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &stat)
			}); err != nil {
				return fmt.Errorf("decode %q: %w", label, err)
			}
			out[label] = stat
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("stats: list: %w", err)
	}
	return out, nil
}

func getStatistic(txn *badger.Txn, label string) (Statistic, error) {
	var stat Statistic
	item, err := txn.Get([]byte(keyPrefix + label))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return stat, nil
	}
	if err != nil {
		return stat, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &stat)
	})
	return stat, err
}

func resultLabel(player game.Player, outcome game.Outcome) string {
	switch {
	case outcome.Tie:
		return "tie"
	case outcome.Winner == player:
		return "win"
	default:
		return "loss"
	}
}

// Label names a matchup from one side, e.g. "minimax-3 vs random".
func Label(own, opponent string) string {
	return own + " vs " + opponent
}

// PlayerLabel names one side of a matchup. Depth only shows for minimax.
func PlayerLabel(mode string, depth int) string {
	if mode == "minimax" {
		return fmt.Sprintf("%s-%d", mode, depth)
	}
	return mode
}

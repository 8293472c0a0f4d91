package blackboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/dgraph-io/badger/v3"
	"github.com/zclconf/go-cty/cty"
)

// keyPrefix namespaces parameter keys inside the database.
const keyPrefix = "bb/"

// Badger is a persistent Store backed by an embedded badger database.
type Badger struct {
	db     *badger.DB
	closed atomic.Bool
}

// OpenBadger opens (or creates) a database in dir. An empty dir opens an
// in-memory database, which is mostly useful in tests.
func OpenBadger(dir string, logger *slog.Logger) (*Badger, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(&badgerLogger{logger: logger.With("component", "blackboard")})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open blackboard database: %w", err)
	}
	return &Badger{db: db}, nil
}

// Get returns the value stored under key.
func (b *Badger) Get(ctx context.Context, key string) (cty.Value, bool, error) {
	if b.closed.Load() {
		return cty.NilVal, false, ErrClosed
	}

	var raw []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return cty.NilVal, false, nil
	}
	if err != nil {
		return cty.NilVal, false, fmt.Errorf("get %q: %w", key, err)
	}

	v, err := DecodeValue(raw)
	if err != nil {
		return cty.NilVal, false, fmt.Errorf("get %q: %w", key, err)
	}
	return v, true, nil
}

// Set stores v under key.
func (b *Badger) Set(ctx context.Context, key string, v cty.Value) error {
	if b.closed.Load() {
		return ErrClosed
	}
	raw, err := EncodeValue(v)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+key), raw)
	})
}

// Delete removes key.
func (b *Badger) Delete(ctx context.Context, key string) error {
	if b.closed.Load() {
		return ErrClosed
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + key))
	})
}

// Keys lists the stored keys in lexical order.
func (b *Badger) Keys(ctx context.Context) ([]string, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}

	var keys []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, strings.TrimPrefix(string(it.Item().KeyCopy(nil)), keyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	return keys, nil
}

// Close flushes and closes the database. Closing twice is a no-op.
func (b *Badger) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	return b.db.Close()
}

// badgerLogger routes badger's printf-style logging into slog.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

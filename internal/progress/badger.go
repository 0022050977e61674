package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/HartBrook/keyfit/internal/errors"
)

// BadgerStore keeps runs in an embedded Badger database. Keys:
//
//	run/<id>/state             JSON State
//	run/<id>/event/<seq>       JSON Event
type BadgerStore struct {
	db  *badger.DB
	ttl time.Duration
	seq atomic.Uint64
}

// BadgerOptions configures OpenBadger.
type BadgerOptions struct {
	// Dir is the database directory. Empty means in-memory.
	Dir    string
	TTL    time.Duration
	Logger *zap.Logger
}

// badgerLogger adapts zap to Badger's logger interface.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(format string, args ...interface{})   { l.s.Errorf(format, args...) }
func (l *badgerLogger) Warningf(format string, args ...interface{}) { l.s.Warnf(format, args...) }
func (l *badgerLogger) Infof(format string, args ...interface{})    { l.s.Debugf(format, args...) }
func (l *badgerLogger) Debugf(format string, args ...interface{})   { l.s.Debugf(format, args...) }

// OpenBadger opens (or creates) a Badger-backed store.
func OpenBadger(opts BadgerOptions) (*BadgerStore, error) {
	var bopts badger.Options
	if opts.Dir == "" {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, fmt.Errorf("creating progress directory %s: %w", opts.Dir, err)
		}
		bopts = badger.DefaultOptions(opts.Dir)
	}
	bopts = bopts.WithNumVersionsToKeep(1)
	if opts.Logger != nil {
		bopts = bopts.WithLogger(&badgerLogger{s: opts.Logger.Sugar()})
	} else {
		bopts = bopts.WithLogger(nil)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("opening progress database: %w", err)
	}
	s := &BadgerStore{db: db, ttl: opts.TTL}
	s.seq.Store(uint64(time.Now().UnixNano()))
	return s, nil
}

func badgerStateKey(id string) []byte { return []byte("run/" + id + "/state") }
func badgerEventPrefix(id string) []byte { return []byte("run/" + id + "/event/") }

func (s *BadgerStore) entry(key, value []byte) *badger.Entry {
	e := badger.NewEntry(key, value)
	if s.ttl > 0 {
		e = e.WithTTL(s.ttl)
	}
	return e
}

// SetState implements Store.
func (s *BadgerStore) SetState(_ context.Context, st State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding run state: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(s.entry(badgerStateKey(st.ID), data))
	})
}

// State implements Store.
func (s *BadgerStore) State(_ context.Context, id string) (State, error) {
	var st State
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerStateKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &st)
		})
	})
	if err == badger.ErrKeyNotFound {
		return State{}, errors.RunNotFound(id)
	}
	if err != nil {
		return State{}, fmt.Errorf("reading run state: %w", err)
	}
	return st, nil
}

// Append implements Store.
func (s *BadgerStore) Append(_ context.Context, id string, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	// The sequence is seeded from the clock at open, so keys stay ordered
	// across reopenings of a file-backed store.
	key := fmt.Appendf(badgerEventPrefix(id), "%020d", s.seq.Add(1))
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(s.entry(key, data))
	})
}

// Events implements Store.
func (s *BadgerStore) Events(ctx context.Context, id string) ([]Event, error) {
	var events []Event
	prefix := badgerEventPrefix(id)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var ev Event
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &ev)
			}); err != nil {
				return err
			}
			events = append(events, ev)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading run events: %w", err)
	}
	if len(events) == 0 {
		if _, err := s.State(ctx, id); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// List implements Store. Runs are ordered by start time, newest first.
func (s *BadgerStore) List(_ context.Context) ([]State, error) {
	var states []State
	prefix := []byte("run/")
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			if !strings.HasSuffix(string(item.Key()), "/state") {
				continue
			}
			var st State
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &st)
			}); err != nil {
				return err
			}
			states = append(states, st)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	sortStates(states)
	return states, nil
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/HartBrook/keyfit/internal/errors"
)

const redisPrefix = "keyfit:run:"

// RedisStore keeps runs in Redis: a hash per run for its state and a list
// for its events. Both keys expire after the configured TTL.
type RedisStore struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewRedisStore connects to addr and verifies the connection.
func NewRedisStore(ctx context.Context, addr string, ttl time.Duration) (*RedisStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func stateKey(id string) string  { return redisPrefix + id + ":state" }
func eventsKey(id string) string { return redisPrefix + id + ":events" }

// SetState implements Store.
func (s *RedisStore) SetState(ctx context.Context, st State) error {
	key := stateKey(st.ID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		"id":         st.ID,
		"label":      st.Label,
		"status":     string(st.Status),
		"stage":      st.Stage,
		"error":      st.Error,
		"started_at": st.StartedAt.Format(time.RFC3339Nano),
		"updated_at": st.UpdatedAt.Format(time.RFC3339Nano),
	})
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("storing run state: %w", err)
	}
	return nil
}

// State implements Store.
func (s *RedisStore) State(ctx context.Context, id string) (State, error) {
	fields, err := s.client.HGetAll(ctx, stateKey(id)).Result()
	if err != nil {
		return State{}, fmt.Errorf("reading run state: %w", err)
	}
	if len(fields) == 0 {
		return State{}, errors.RunNotFound(id)
	}
	return stateFromHash(fields), nil
}

func stateFromHash(fields map[string]string) State {
	st := State{
		ID:     fields["id"],
		Label:  fields["label"],
		Status: Status(fields["status"]),
		Stage:  fields["stage"],
		Error:  fields["error"],
	}
	st.StartedAt, _ = time.Parse(time.RFC3339Nano, fields["started_at"])
	st.UpdatedAt, _ = time.Parse(time.RFC3339Nano, fields["updated_at"])
	return st
}

// Append implements Store.
func (s *RedisStore) Append(ctx context.Context, id string, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	key := eventsKey(id)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("appending run event: %w", err)
	}
	return nil
}

// Events implements Store.
func (s *RedisStore) Events(ctx context.Context, id string) ([]Event, error) {
	raw, err := s.client.LRange(ctx, eventsKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading run events: %w", err)
	}
	if len(raw) == 0 {
		exists, err := s.client.Exists(ctx, stateKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("reading run state: %w", err)
		}
		if exists == 0 {
			return nil, errors.RunNotFound(id)
		}
	}

	events := make([]Event, 0, len(raw))
	for _, item := range raw {
		var ev Event
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			return nil, fmt.Errorf("decoding run event: %w", err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// List implements Store. Runs are ordered by start time, newest first.
func (s *RedisStore) List(ctx context.Context) ([]State, error) {
	var states []State
	iter := s.client.Scan(ctx, 0, redisPrefix+"*:state", 100).Iterator()
	for iter.Next(ctx) {
		id := strings.TrimSuffix(strings.TrimPrefix(iter.Val(), redisPrefix), ":state")
		st, err := s.State(ctx, id)
		if errors.Is(err, errors.ErrRunNotFound) {
			continue // expired between scan and read
		}
		if err != nil {
			return nil, err
		}
		states = append(states, st)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	sortStates(states)
	return states, nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func sortStates(states []State) {
	sort.SliceStable(states, func(i, j int) bool {
		return states[i].StartedAt.After(states[j].StartedAt)
	})
}

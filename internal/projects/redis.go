package projects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/pitchcraft/pkg/pagination"
)

const (
	recordKeyPrefix = "pitchcraft:project:" // JSON record: pitchcraft:project:{id}
	orderKey        = "pitchcraft:projects" // sorted set of ids scored by created_at (µs)
)

type redisStore struct {
	client     redis.UniversalClient
	logger     *slog.Logger
	pagination pagination.Config
}

// NewRedisStore creates a Store that keeps each record as one JSON value.
// Commits run under WATCH so a concurrent writer aborts the transaction.
func NewRedisStore(client redis.UniversalClient, logger *slog.Logger, cfg pagination.Config) Store {
	return &redisStore{
		client:     client,
		logger:     logger.With("system", "projects", "store", "redis"),
		pagination: cfg,
	}
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func recordKey(id uuid.UUID) string {
	return recordKeyPrefix + id.String()
}

// Create writes the record and its order index in one MULTI/EXEC. A
// concurrent create of the same id aborts the transaction.
func (s *redisStore) Create(ctx context.Context, p Project) error {
	data, err := json.Marshal(Record{Project: p})
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}

	key := recordKey(p.ID)
	score := float64(p.CreatedAt.UnixMicro())

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("create project: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("%w: %s", ErrDuplicate, p.ID)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.ZAdd(ctx, orderKey, redis.Z{Score: score, Member: p.ID.String()})
			return nil
		})
		if err != nil {
			return fmt.Errorf("create project: %w", err)
		}
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("%w: %s", ErrDuplicate, p.ID)
	}
	return err
}

func (s *redisStore) Find(ctx context.Context, id uuid.UUID) (*Record, error) {
	return s.get(ctx, s.client, id)
}

func (s *redisStore) get(ctx context.Context, c getter, id uuid.UUID) (*Record, error) {
	data, err := c.Get(ctx, recordKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal project: %w", err)
	}
	return &r, nil
}

func (s *redisStore) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Project], error) {
	page.Normalize(s.pagination)

	records, err := s.all(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]Project, len(records))
	for i, r := range records {
		items[i] = r.Project
	}

	result := selectPage(items, page, filters)
	return &result, nil
}

func (s *redisStore) Commit(ctx context.Context, c Commit) error {
	key := recordKey(c.Project.ID)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := s.get(ctx, tx, c.Project.ID)
		if err != nil {
			return err
		}

		c.Apply(current)
		data, err := json.Marshal(current)
		if err != nil {
			return fmt.Errorf("marshal project: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("%w: concurrent commit", ErrBusy)
	}
	return err
}

func (s *redisStore) Stats(ctx context.Context) (map[Status]int, error) {
	records, err := s.all(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[Status]int, len(statuses))
	for _, r := range records {
		counts[r.Project.Status]++
	}
	return counts, nil
}

// all loads every record in creation order. Ids whose record has vanished
// are skipped.
func (s *redisStore) all(ctx context.Context) ([]Record, error) {
	ids, err := s.client.ZRange(ctx, orderKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list project ids: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = recordKeyPrefix + id
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}

	records := make([]Record, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			s.logger.Warn("indexed project missing", "id", ids[i])
			continue
		}
		var r Record
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("unmarshal project %s: %w", ids[i], err)
		}
		records = append(records, r)
	}
	return records, nil
}

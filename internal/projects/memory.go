package projects

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/JaimeStill/pitchcraft/pkg/pagination"
)

type memoryStore struct {
	mu         sync.RWMutex
	records    map[uuid.UUID]*Record
	order      []uuid.UUID
	pagination pagination.Config
}

// NewMemoryStore creates an in-process Store. Records are deep-copied on
// every read and write so callers never share state with the store.
func NewMemoryStore(cfg pagination.Config) Store {
	return &memoryStore{
		records:    make(map[uuid.UUID]*Record),
		pagination: cfg,
	}
}

func (m *memoryStore) Create(ctx context.Context, p Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[p.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, p.ID)
	}
	m.records[p.ID] = &Record{Project: p}
	m.order = append(m.order, p.ID)
	return nil
}

func (m *memoryStore) Find(ctx context.Context, id uuid.UUID) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := r.Clone()
	return &clone, nil
}

func (m *memoryStore) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Project], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page.Normalize(m.pagination)

	m.mu.RLock()
	items := make([]Project, 0, len(m.order))
	for _, id := range m.order {
		items = append(items, m.records[id].Project)
	}
	m.mu.RUnlock()

	result := selectPage(items, page, filters)
	return &result, nil
}

func (m *memoryStore) Commit(ctx context.Context, c Commit) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.records[c.Project.ID]
	if !ok {
		return ErrNotFound
	}

	next := existing.Clone()
	c.Apply(&next)
	m.records[c.Project.ID] = &next
	return nil
}

func (m *memoryStore) Stats(ctx context.Context) (map[Status]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[Status]int, len(statuses))
	for _, r := range m.records {
		counts[r.Project.Status]++
	}
	return counts, nil
}

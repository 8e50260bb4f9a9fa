package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/romariotrain/vidtube/internal/models"
	"github.com/romariotrain/vidtube/internal/video/domain"
	"github.com/romariotrain/vidtube/internal/video/query"
)

type MemoryRepository struct {
	mu     sync.RWMutex
	data   map[uuid.UUID]*models.Video
	owners map[uuid.UUID]models.Owner
	clock  func() time.Time
}

var _ VideoRepository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		data:   make(map[uuid.UUID]*models.Video),
		owners: make(map[uuid.UUID]models.Owner),
		clock:  time.Now,
	}
}

// AddOwner registers display fields used to resolve video owners.
func (r *MemoryRepository) AddOwner(o models.Owner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners[o.ID] = o
}

func (r *MemoryRepository) List(ctx context.Context, q query.VideoQuery) ([]models.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*models.Video, 0, len(r.data))
	for _, v := range r.data {
		if q.Filter.Matches(v) {
			matched = append(matched, v)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		c := compareVideos(matched[i], matched[j], q.Sort.Field)
		if q.Sort.Desc {
			return c > 0
		}
		return c < 0
	})

	skip := q.Skip()
	if skip >= len(matched) {
		return []models.Video{}, nil
	}
	end := skip + q.Limit
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]models.Video, 0, end-skip)
	for _, v := range matched[skip:end] {
		out = append(out, r.resolved(v))
	}
	return out, nil
}

func (r *MemoryRepository) Count(ctx context.Context, f query.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, v := range r.data {
		if f.Matches(v) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	if id == uuid.Nil {
		return nil, models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.data[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := r.resolved(v)
	return &cp, nil
}

func (r *MemoryRepository) Create(ctx context.Context, v *models.Video) error {
	if v == nil || v.ID == uuid.Nil {
		return models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.data[v.ID]; exists {
		return models.ErrConflict
	}

	// Stored values are copies so callers cannot mutate them.
	cp := *v
	cp.Owner = nil
	r.data[v.ID] = &cp
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, v *models.Video, caller uuid.UUID) (*models.Video, error) {
	if v == nil || v.ID == uuid.Nil {
		return nil, models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.writable(v.ID, caller)
	if err != nil {
		return nil, err
	}
	if stored.Version != v.Version {
		return nil, models.ErrConflict
	}

	stored.Title = v.Title
	stored.Description = v.Description
	stored.Thumbnail = v.Thumbnail
	r.touch(stored)

	cp := r.resolved(stored)
	return &cp, nil
}

func (r *MemoryRepository) TogglePublished(ctx context.Context, id, caller uuid.UUID) (*models.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.writable(id, caller)
	if err != nil {
		return nil, err
	}
	stored.IsPublished = domain.VisibilityOf(stored.IsPublished).Toggle().IsPublished()
	r.touch(stored)

	cp := r.resolved(stored)
	return &cp, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id, caller uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.writable(id, caller); err != nil {
		return err
	}
	delete(r.data, id)
	return nil
}

// writable must be called with the write lock held.
func (r *MemoryRepository) writable(id, caller uuid.UUID) (*models.Video, error) {
	stored, ok := r.data[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if !stored.OwnedBy(caller) {
		return nil, models.ErrForbidden
	}
	return stored, nil
}

func (r *MemoryRepository) touch(v *models.Video) {
	v.Version++
	v.UpdatedAt = r.clock()
}

// resolved returns a copy of v with its owner display fields attached.
func (r *MemoryRepository) resolved(v *models.Video) models.Video {
	cp := *v
	if o, ok := r.owners[v.OwnerID]; ok {
		cp.Owner = &o
	}
	return cp
}

func compareVideos(a, b *models.Video, field query.SortField) int {
	var c int
	switch field {
	case query.SortByTitle:
		c = strings.Compare(a.Title, b.Title)
	case query.SortByDuration:
		c = compareFloat(a.Duration, b.Duration)
	case query.SortByUpdatedAt:
		c = a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		c = a.CreatedAt.Compare(b.CreatedAt)
	}
	if c != 0 {
		return c
	}
	return strings.Compare(a.ID.String(), b.ID.String())
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

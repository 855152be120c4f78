package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"dyntemplates/internal/models"
	"dyntemplates/internal/store"
)

// memCategories is an in-memory CategoryRepository.
type memCategories struct {
	mu   sync.Mutex
	rows map[uuid.UUID]models.Category
}

func newMemCategories() *memCategories {
	return &memCategories{rows: make(map[uuid.UUID]models.Category)}
}

func (m *memCategories) List(_ context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Category
	for _, c := range m.rows {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

func (m *memCategories) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *memCategories) taken(c *models.Category) bool {
	for _, other := range m.rows {
		if other.ID != c.ID && other.Namespace == c.Namespace && other.Name == c.Name {
			return true
		}
	}
	return false
}

func (m *memCategories) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.taken(c) {
		return nil, store.ErrDuplicate
	}
	row := *c
	row.ID = uuid.New()
	row.CreatedAt = time.Now()
	row.UpdatedAt = row.CreatedAt
	m.rows[row.ID] = row
	return &row, nil
}

func (m *memCategories) Update(_ context.Context, c *models.Category, apply func() error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.taken(c) {
		return store.ErrDuplicate
	}
	if apply != nil {
		if err := apply(); err != nil {
			return err
		}
	}
	c.UpdatedAt = time.Now()
	m.rows[c.ID] = *c
	return nil
}

func (m *memCategories) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memCategories) Namespaces(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, c := range m.rows {
		if !seen[c.Namespace] {
			seen[c.Namespace] = true
			out = append(out, c.Namespace)
		}
	}
	sort.Strings(out)
	return out, nil
}

// memTemplates is an in-memory TemplateRepository. It joins categories from
// cats the way the SQL store does.
type memTemplates struct {
	mu   sync.Mutex
	rows map[uuid.UUID]models.Template
	cats *memCategories
}

func newMemTemplates(cats *memCategories) *memTemplates {
	return &memTemplates{rows: make(map[uuid.UUID]models.Template), cats: cats}
}

func (m *memTemplates) join(t models.Template) models.Template {
	if c, _ := m.cats.FindByID(context.Background(), t.CategoryID); c != nil {
		t.Category = c
	}
	return t
}

func (m *memTemplates) List(_ context.Context, categoryID *uuid.UUID) ([]models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Template
	for _, t := range m.rows {
		if categoryID == nil || t.CategoryID == *categoryID {
			out = append(out, m.join(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

// ListActiveByNamespace serves the bulk sync job.
func (m *memTemplates) ListActiveByNamespace(_ context.Context, ns string) ([]models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Template
	for _, t := range m.rows {
		t = m.join(t)
		if t.IsActive && t.Category != nil && t.Category.Namespace == ns {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (m *memTemplates) FindByID(_ context.Context, id uuid.UUID) (*models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	t = m.join(t)
	return &t, nil
}

func (m *memTemplates) nameTaken(categoryID uuid.UUID, name string, exclude uuid.UUID) bool {
	for _, t := range m.rows {
		if t.ID != exclude && t.IsActive && t.CategoryID == categoryID && t.Name == name {
			return true
		}
	}
	return false
}

func (m *memTemplates) ActiveNameTaken(_ context.Context, categoryID uuid.UUID, name string, exclude uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nameTaken(categoryID, name, exclude), nil
}

func (m *memTemplates) Create(_ context.Context, t *models.Template) (*models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.IsActive && m.nameTaken(t.CategoryID, t.Name, uuid.Nil) {
		return nil, store.ErrDuplicate
	}
	row := *t
	row.ID = uuid.New()
	row.Category = nil
	row.CreatedAt = time.Now()
	m.rows[row.ID] = row
	return &row, nil
}

func (m *memTemplates) Update(_ context.Context, t *models.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.IsActive && m.nameTaken(t.CategoryID, t.Name, t.ID) {
		return store.ErrDuplicate
	}
	row := *t
	row.Category = nil
	m.rows[row.ID] = row
	return nil
}

func (m *memTemplates) Revise(_ context.Context, old *models.Template, content, actor string, apply func() error) (*models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.rows[old.ID]
	deactivated := prev
	deactivated.IsActive = false
	m.rows[old.ID] = deactivated

	if apply != nil {
		if err := apply(); err != nil {
			m.rows[old.ID] = prev
			return nil, err
		}
	}

	oldID := old.ID
	row := models.Template{
		ID:         uuid.New(),
		CategoryID: old.CategoryID,
		Name:       old.Name,
		Content:    content,
		IsActive:   true,
		RevisionOf: &oldID,
		CreatedAt:  time.Now(),
		CreatedBy:  actor,
	}
	m.rows[row.ID] = row

	old.IsActive = false
	row.Category = old.Category
	return &row, nil
}

func (m *memTemplates) History(_ context.Context, id uuid.UUID) ([]models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var chain []models.Template
	for cur, ok := m.rows[id]; ok; {
		chain = append(chain, cur)
		if cur.RevisionOf == nil {
			break
		}
		cur, ok = m.rows[*cur.RevisionOf]
	}
	return chain, nil
}

func (m *memTemplates) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

// recordedEvent is one call to memEvents.Log.
type recordedEvent struct {
	entityType string
	entityID   uuid.UUID
	action     string
	detail     string
}

type memEvents struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (m *memEvents) Log(_ context.Context, entityType string, entityID uuid.UUID, action, detail string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, recordedEvent{entityType, entityID, action, detail})
}

func (m *memEvents) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.events {
		out = append(out, e.action)
	}
	return out
}

// memObjects is an in-memory ObjectMirror.
type memObjects struct {
	mu      sync.Mutex
	objects map[string]string
}

func newMemObjects() *memObjects {
	return &memObjects{objects: make(map[string]string)}
}

func (m *memObjects) Put(_ context.Context, key string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = string(body)
	return nil
}

func (m *memObjects) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// memViews records invalidations.
type memViews struct {
	mu          sync.Mutex
	invalidated []uuid.UUID
	all         int
}

func (m *memViews) Invalidate(_ context.Context, ids ...uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, ids...)
}

func (m *memViews) InvalidateAll(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.all++
}

package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository exposes the read-mostly service catalog. Resolution only ever
// sees active services.
type Repository interface {
	// Resolve finds an active service by name. ErrServiceNotFound when the
	// name matches nothing active.
	Resolve(ctx context.Context, name string) (*Service, error)
	// GetByID finds an active service by identifier.
	GetByID(ctx context.Context, id string) (*Service, error)
	// List returns active services ordered by category then name.
	List(ctx context.Context, filter ListFilter) ([]Service, error)
	// Search returns active services whose name or description contains
	// term, case-insensitively, ordered by category then name.
	Search(ctx context.Context, term string) ([]Service, error)
	// Create inserts a new service. ErrDuplicateService on a name collision.
	Create(ctx context.Context, svc *Service) error
	// Deactivate hides a service from resolution without deleting it.
	Deactivate(ctx context.Context, id string) error
}

// InMemoryRepository is a Repository backed by a mutex-guarded map. Used in
// development mode and in tests.
type InMemoryRepository struct {
	mu       sync.RWMutex
	byName   map[string]*Service
	services map[string]*Service
}

// NewInMemoryRepository creates an empty in-memory catalog.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byName:   make(map[string]*Service),
		services: make(map[string]*Service),
	}
}

// Create inserts a service, enforcing name uniqueness.
func (r *InMemoryRepository) Create(ctx context.Context, svc *Service) error {
	if err := svc.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := NormalizeName(svc.Name)
	if _, exists := r.byName[key]; exists {
		return ErrDuplicateService
	}
	if svc.ID == "" {
		svc.ID = uuid.New().String()
	}
	if svc.CreatedAt.IsZero() {
		svc.CreatedAt = time.Now().UTC()
	}
	stored := *svc
	r.byName[key] = &stored
	r.services[stored.ID] = &stored
	return nil
}

// Resolve finds an active service by name.
func (r *InMemoryRepository) Resolve(ctx context.Context, name string) (*Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	svc, ok := r.byName[NormalizeName(name)]
	if !ok || !svc.Active {
		return nil, ErrServiceNotFound
	}
	found := *svc
	return &found, nil
}

// GetByID finds an active service by ID.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	svc, ok := r.services[id]
	if !ok || !svc.Active {
		return nil, ErrServiceNotFound
	}
	found := *svc
	return &found, nil
}

// List returns active services ordered by (category, name).
func (r *InMemoryRepository) List(ctx context.Context, filter ListFilter) ([]Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Service, 0, len(r.services))
	for _, svc := range r.services {
		if !svc.Active {
			continue
		}
		if filter.Category != "" && svc.Category != filter.Category {
			continue
		}
		out = append(out, *svc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Search matches the term against service names and descriptions.
func (r *InMemoryRepository) Search(ctx context.Context, term string) ([]Service, error) {
	needle := NormalizeName(term)
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Service
	for _, svc := range r.services {
		if !svc.Active {
			continue
		}
		if !strings.Contains(strings.ToLower(svc.Name), needle) &&
			!strings.Contains(strings.ToLower(svc.Description), needle) {
			continue
		}
		out = append(out, *svc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Deactivate hides a service from resolution.
func (r *InMemoryRepository) Deactivate(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	svc, ok := r.services[id]
	if !ok {
		return ErrServiceNotFound
	}
	svc.Active = false
	return nil
}

// GroupByCategory folds an ordered service list into category groups,
// preserving order.
func GroupByCategory(services []Service) []CategoryGroup {
	var groups []CategoryGroup
	for _, svc := range services {
		if n := len(groups); n == 0 || groups[n-1].Category != svc.Category {
			groups = append(groups, CategoryGroup{Category: svc.Category})
		}
		last := &groups[len(groups)-1]
		last.Services = append(last.Services, svc)
	}
	return groups
}

// DefaultServices is the stock menu seeded on first run.
func DefaultServices() []Service {
	return []Service{
		{Name: "Swedish Massage", Description: "Relaxing full-body massage using long, flowing strokes", DurationMinutes: 60, Price: 80.00, Category: "massage", Active: true},
		{Name: "Deep Tissue Massage", Description: "Therapeutic massage targeting deep muscle layers", DurationMinutes: 60, Price: 90.00, Category: "massage", Active: true},
		{Name: "Hot Stone Massage", Description: "Massage with heated stones for ultimate relaxation", DurationMinutes: 75, Price: 110.00, Category: "massage", Active: true},
		{Name: "Classic Facial", Description: "Cleansing, exfoliating, and nourishing facial treatment", DurationMinutes: 60, Price: 70.00, Category: "facial", Active: true},
		{Name: "Anti-Aging Facial", Description: "Advanced facial with anti-aging ingredients", DurationMinutes: 75, Price: 95.00, Category: "facial", Active: true},
		{Name: "Body Scrub", Description: "Exfoliating body treatment with natural ingredients", DurationMinutes: 45, Price: 65.00, Category: "body_treatment", Active: true},
		{Name: "Aromatherapy Session", Description: "Therapeutic session using essential oils", DurationMinutes: 60, Price: 85.00, Category: "wellness", Active: true},
	}
}

// Seed inserts the default menu, skipping names that already exist.
func Seed(ctx context.Context, repo Repository) error {
	for _, svc := range DefaultServices() {
		svc := svc
		if err := repo.Create(ctx, &svc); err != nil && err != ErrDuplicateService {
			return err
		}
	}
	return nil
}

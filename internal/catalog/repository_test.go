package catalog

import (
	"context"
	"errors"
	"testing"
)

func seededRepo(t *testing.T) *InMemoryRepository {
	t.Helper()
	repo := NewInMemoryRepository()
	if err := Seed(context.Background(), repo); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return repo
}

func TestResolveKnownService(t *testing.T) {
	repo := seededRepo(t)
	svc, err := repo.Resolve(context.Background(), "Swedish Massage")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if svc.DurationMinutes != 60 || svc.Price != 80.00 {
		t.Fatalf("unexpected service snapshot: %+v", svc)
	}
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	repo := seededRepo(t)
	if _, err := repo.Resolve(context.Background(), "  swedish massage "); err != nil {
		t.Fatalf("Resolve with odd casing: %v", err)
	}
}

func TestResolveUnknownService(t *testing.T) {
	repo := seededRepo(t)
	if _, err := repo.Resolve(context.Background(), "Crystal Healing"); !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("expected ErrServiceNotFound, got %v", err)
	}
}

func TestResolveSkipsInactive(t *testing.T) {
	repo := seededRepo(t)
	svc, err := repo.Resolve(context.Background(), "Body Scrub")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := repo.Deactivate(context.Background(), svc.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if _, err := repo.Resolve(context.Background(), "Body Scrub"); !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("expected inactive service to be invisible, got %v", err)
	}
	if _, err := repo.GetByID(context.Background(), svc.ID); !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("expected inactive service invisible by id, got %v", err)
	}
}

func TestCreateRejectsDuplicates(t *testing.T) {
	repo := seededRepo(t)
	dup := Service{Name: "swedish massage", DurationMinutes: 30, Price: 40, Category: "massage", Active: true}
	if err := repo.Create(context.Background(), &dup); !errors.Is(err, ErrDuplicateService) {
		t.Fatalf("expected ErrDuplicateService, got %v", err)
	}
}

func TestCreateValidates(t *testing.T) {
	repo := NewInMemoryRepository()
	bad := Service{Name: "Zero Minute Wonder", DurationMinutes: 0, Price: 10, Active: true}
	if err := repo.Create(context.Background(), &bad); !errors.Is(err, ErrInvalidService) {
		t.Fatalf("expected ErrInvalidService, got %v", err)
	}
	negative := Service{Name: "Charity Massage", DurationMinutes: 30, Price: -1, Active: true}
	if err := repo.Create(context.Background(), &negative); !errors.Is(err, ErrInvalidService) {
		t.Fatalf("expected ErrInvalidService for negative price, got %v", err)
	}
}

func TestListOrdering(t *testing.T) {
	repo := seededRepo(t)
	services, err := repo.List(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(services) != 7 {
		t.Fatalf("expected 7 seeded services, got %d", len(services))
	}
	for i := 1; i < len(services); i++ {
		prev, cur := services[i-1], services[i]
		if prev.Category > cur.Category ||
			(prev.Category == cur.Category && prev.Name > cur.Name) {
			t.Fatalf("services not ordered by (category, name) at %d: %s/%s then %s/%s",
				i, prev.Category, prev.Name, cur.Category, cur.Name)
		}
	}
}

func TestListFilterByCategory(t *testing.T) {
	repo := seededRepo(t)
	services, err := repo.List(context.Background(), ListFilter{Category: "massage"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(services) != 3 {
		t.Fatalf("expected 3 massage services, got %d", len(services))
	}
	for _, svc := range services {
		if svc.Category != "massage" {
			t.Fatalf("unexpected category %s", svc.Category)
		}
	}
}

func TestGroupByCategory(t *testing.T) {
	repo := seededRepo(t)
	services, _ := repo.List(context.Background(), ListFilter{})
	groups := GroupByCategory(services)
	if len(groups) != 4 {
		t.Fatalf("expected 4 categories, got %d", len(groups))
	}
	total := 0
	for _, g := range groups {
		total += len(g.Services)
	}
	if total != len(services) {
		t.Fatalf("grouping lost services: %d != %d", total, len(services))
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	repo := seededRepo(t)
	if err := Seed(context.Background(), repo); err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	services, _ := repo.List(context.Background(), ListFilter{})
	if len(services) != 7 {
		t.Fatalf("expected seed to be idempotent, got %d services", len(services))
	}
}

func TestSearchMatchesNameAndDescription(t *testing.T) {
	repo := seededRepo(t)

	byName, err := repo.Search(context.Background(), "MASSAGE")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(byName) != 3 {
		t.Fatalf("expected the three massage services, got %d: %+v", len(byName), byName)
	}
	for i := 1; i < len(byName); i++ {
		prev, cur := byName[i-1], byName[i]
		if prev.Category > cur.Category || (prev.Category == cur.Category && prev.Name > cur.Name) {
			t.Fatalf("results out of (category, name) order: %+v", byName)
		}
	}

	byDescription, err := repo.Search(context.Background(), "essential oils")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(byDescription) != 1 || byDescription[0].Name != "Aromatherapy Session" {
		t.Fatalf("expected the aromatherapy description match, got %+v", byDescription)
	}
}

func TestSearchSkipsInactiveAndMisses(t *testing.T) {
	repo := seededRepo(t)

	svc, err := repo.Resolve(context.Background(), "Hot Stone Massage")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := repo.Deactivate(context.Background(), svc.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	results, err := repo.Search(context.Background(), "hot stone")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no matches for deactivated service, got %+v", results)
	}

	if results, err = repo.Search(context.Background(), "crystal"); err != nil || len(results) != 0 {
		t.Fatalf("expected empty miss, got %v / %+v", err, results)
	}
}

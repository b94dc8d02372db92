package catalog

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hotlinehub/backend/internal/models"
)

// ---------------------------------------------------------------------------
// In-memory mocks for CatalogRepo and ListCache. Passing a nil cache
// gives the no-op cache, so most tests run against the repo directly.
// ---------------------------------------------------------------------------

type mockCatalogRepo struct {
	services []*models.Service

	listCalls    int
	lastCategory string
	lastSearch   string
}

func (m *mockCatalogRepo) ListActive(_ context.Context, category, search string) ([]*models.Service, error) {
	m.listCalls++
	m.lastCategory = category
	m.lastSearch = search
	var out []*models.Service
	for _, s := range m.services {
		if !s.IsActive {
			continue
		}
		if category != "" && s.Category != category {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *mockCatalogRepo) GetActive(_ context.Context, id uuid.UUID) (*models.Service, error) {
	for _, s := range m.services {
		if s.ID == id && s.IsActive {
			return s, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockCatalogRepo) Categories(context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, s := range m.services {
		if s.IsActive && !seen[s.Category] {
			seen[s.Category] = true
			out = append(out, s.Category)
		}
	}
	return out, nil
}

func (m *mockCatalogRepo) Create(_ context.Context, p CreateParams) (*models.Service, error) {
	s := &models.Service{
		ID:          uuid.New(),
		Name:        p.Name,
		Category:    p.Category,
		PhoneNumber: p.PhoneNumber,
		IsActive:    true,
	}
	m.services = append(m.services, s)
	return s, nil
}

func (m *mockCatalogRepo) Update(_ context.Context, id uuid.UUID, p UpdateParams) error {
	for _, s := range m.services {
		if s.ID == id {
			s.Name = p.Name
			return nil
		}
	}
	return pgx.ErrNoRows
}

// ---

type mockCache struct {
	entries map[string][]byte
	deleted []string
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string][]byte)}
}

func (m *mockCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	data, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (m *mockCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = data
	return nil
}

func (m *mockCache) DeleteByPrefix(_ context.Context, prefix string) error {
	m.deleted = append(m.deleted, prefix)
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

func svcEntry(name, category string, active bool) *models.Service {
	return &models.Service{ID: uuid.New(), Name: name, Category: category, PhoneNumber: "112", IsActive: active}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestList_CategoryNormalization(t *testing.T) {
	repo := &mockCatalogRepo{services: []*models.Service{
		svcEntry("Police HQ", models.CategoryPolice, true),
		svcEntry("Fire Station", models.CategoryFire, true),
	}}
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	cases := []struct {
		in   string
		want string
	}{
		{"police", "police"},
		{" Police ", "police"},
		{"all", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if _, err := svc.List(ctx, tc.in, ""); err != nil {
			t.Fatalf("List(%q): %v", tc.in, err)
		}
		if repo.lastCategory != tc.want {
			t.Errorf("category %q: repo saw %q, want %q", tc.in, repo.lastCategory, tc.want)
		}
	}
}

func TestList_UnknownCategoryMatchesNothing(t *testing.T) {
	repo := &mockCatalogRepo{services: []*models.Service{
		svcEntry("Police HQ", models.CategoryPolice, true),
	}}
	svc := NewService(repo, nil, nil)

	list, err := svc.List(context.Background(), "notacategory", "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("unknown category must match nothing, got %d entries", len(list))
	}
	if repo.listCalls != 0 {
		t.Errorf("unknown category must not query the repo, got %d calls", repo.listCalls)
	}
}

func TestList_SearchTrimmed(t *testing.T) {
	repo := &mockCatalogRepo{}
	svc := NewService(repo, nil, nil)

	if _, err := svc.List(context.Background(), "", "  ambulance  "); err != nil {
		t.Fatalf("List: %v", err)
	}
	if repo.lastSearch != "ambulance" {
		t.Errorf("search: repo saw %q, want %q", repo.lastSearch, "ambulance")
	}
}

func TestList_FiltersByCategory(t *testing.T) {
	repo := &mockCatalogRepo{services: []*models.Service{
		svcEntry("Police HQ", models.CategoryPolice, true),
		svcEntry("Old Station", models.CategoryPolice, false),
		svcEntry("Fire Station", models.CategoryFire, true),
	}}
	svc := NewService(repo, nil, nil)

	list, err := svc.List(context.Background(), "police", "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Police HQ" {
		t.Errorf("expected only the active police entry, got %d entries", len(list))
	}
}

func TestList_CacheHitSkipsRepo(t *testing.T) {
	repo := &mockCatalogRepo{services: []*models.Service{
		svcEntry("Police HQ", models.CategoryPolice, true),
	}}
	c := newMockCache()
	svc := NewService(repo, c, nil)
	ctx := context.Background()

	first, err := svc.List(ctx, "police", "")
	if err != nil {
		t.Fatalf("first List: %v", err)
	}
	if repo.listCalls != 1 {
		t.Fatalf("first List repo calls: got %d, want 1", repo.listCalls)
	}

	second, err := svc.List(ctx, "police", "")
	if err != nil {
		t.Fatalf("second List: %v", err)
	}
	if repo.listCalls != 1 {
		t.Errorf("cached List must not touch the repo, got %d calls", repo.listCalls)
	}
	if len(second) != len(first) || second[0].ID != first[0].ID {
		t.Error("cached list should equal the original list")
	}

	// A different (category, search) pair is its own cache entry.
	if _, err := svc.List(ctx, "fire", ""); err != nil {
		t.Fatalf("List(fire): %v", err)
	}
	if repo.listCalls != 2 {
		t.Errorf("distinct filter must query the repo, got %d calls", repo.listCalls)
	}
}

func TestAdminWritesInvalidateCache(t *testing.T) {
	repo := &mockCatalogRepo{}
	c := newMockCache()
	svc := NewService(repo, c, nil)
	ctx := context.Background()

	if _, err := svc.List(ctx, "", ""); err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(c.entries) != 1 {
		t.Fatalf("cache entries after list: got %d, want 1", len(c.entries))
	}

	created, err := svc.Create(ctx, CreateParams{Name: "Coast Guard", Category: models.CategoryPolice, PhoneNumber: "158"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(c.entries) != 0 {
		t.Error("create must invalidate the cached lists")
	}

	if _, err := svc.List(ctx, "", ""); err != nil {
		t.Fatalf("List: %v", err)
	}
	if err := svc.Update(ctx, created.ID, UpdateParams{Name: "Coast Guard HQ", Category: models.CategoryPolice, PhoneNumber: "158", IsActive: true}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(c.entries) != 0 {
		t.Error("update must invalidate the cached lists")
	}
}

func TestGet_InactiveIsNotFound(t *testing.T) {
	inactive := svcEntry("Old Station", models.CategoryPolice, false)
	repo := &mockCatalogRepo{services: []*models.Service{inactive}}
	svc := NewService(repo, nil, nil)

	if _, err := svc.Get(context.Background(), inactive.ID); !IsNotFound(err) {
		t.Errorf("inactive service should read as not found, got: %v", err)
	}
}

func TestCreateAndUpdate(t *testing.T) {
	repo := &mockCatalogRepo{}
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateParams{Name: "Coast Guard", Category: models.CategoryPolice, PhoneNumber: "158"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("created service should have an id")
	}

	if err := svc.Update(ctx, created.ID, UpdateParams{Name: "Coast Guard HQ"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Coast Guard HQ" {
		t.Errorf("name after update: got %q", got.Name)
	}

	if err := svc.Update(ctx, uuid.New(), UpdateParams{Name: "x"}); !IsNotFound(err) {
		t.Errorf("updating an unknown service should be not found, got: %v", err)
	}
}

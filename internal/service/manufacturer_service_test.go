package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pricewatch/internal/domain"
	"pricewatch/internal/repository"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Mock repositories for testing
type mockManufacturerRepository struct {
	manufacturers map[uuid.UUID]*domain.Manufacturer
	brandCounts   map[uuid.UUID]int
}

func newMockManufacturerRepository() *mockManufacturerRepository {
	return &mockManufacturerRepository{
		manufacturers: make(map[uuid.UUID]*domain.Manufacturer),
		brandCounts:   make(map[uuid.UUID]int),
	}
}

func (m *mockManufacturerRepository) Create(ctx context.Context, manufacturer *domain.Manufacturer) error {
	copied := *manufacturer
	m.manufacturers[manufacturer.ID] = &copied
	return nil
}

func (m *mockManufacturerRepository) Update(ctx context.Context, manufacturer *domain.Manufacturer) error {
	if _, exists := m.manufacturers[manufacturer.ID]; !exists {
		return repository.ErrManufacturerNotFound
	}
	copied := *manufacturer
	m.manufacturers[manufacturer.ID] = &copied
	return nil
}

func (m *mockManufacturerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.manufacturers[id]; !exists {
		return repository.ErrManufacturerNotFound
	}
	delete(m.manufacturers, id)
	return nil
}

func (m *mockManufacturerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Manufacturer, error) {
	manufacturer, exists := m.manufacturers[id]
	if !exists {
		return nil, repository.ErrManufacturerNotFound
	}
	return manufacturer, nil
}

func (m *mockManufacturerRepository) List(ctx context.Context, filter repository.ManufacturerFilter) ([]*domain.Manufacturer, error) {
	out := []*domain.Manufacturer{}
	for _, manufacturer := range m.manufacturers {
		out = append(out, manufacturer)
	}
	return out, nil
}

func (m *mockManufacturerRepository) ListWithBrandCounts(ctx context.Context, filter repository.ManufacturerFilter) ([]*domain.ManufacturerWithBrands, error) {
	out := []*domain.ManufacturerWithBrands{}
	for _, manufacturer := range m.manufacturers {
		out = append(out, &domain.ManufacturerWithBrands{
			Manufacturer: *manufacturer,
			BrandCount:   m.brandCounts[manufacturer.ID],
		})
	}
	return out, nil
}

func (m *mockManufacturerRepository) CountBrands(ctx context.Context, id uuid.UUID) (int, error) {
	return m.brandCounts[id], nil
}

func (m *mockManufacturerRepository) NameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	for _, manufacturer := range m.manufacturers {
		if manufacturer.Name == name && manufacturer.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockManufacturerRepository) TaxIDExists(ctx context.Context, taxID string, excludeID uuid.UUID) (bool, error) {
	for _, manufacturer := range m.manufacturers {
		if manufacturer.TaxID != nil && *manufacturer.TaxID == taxID && manufacturer.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func strPtr(s string) *string {
	return &s
}

func TestManufacturerCreateRejectsDuplicateName(t *testing.T) {
	repo := newMockManufacturerRepository()
	service := NewManufacturerService(repo)
	ctx := context.Background()

	_, err := service.Create(ctx, &domain.Manufacturer{Name: "Soprole"})
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err = service.Create(ctx, &domain.Manufacturer{Name: "Soprole"})
	conflict := &ConflictError{}
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Message != "Manufacturer with name 'Soprole' already exists" {
		t.Errorf("unexpected message %q", conflict.Message)
	}
}

func TestManufacturerCreateRejectsDuplicateTaxID(t *testing.T) {
	repo := newMockManufacturerRepository()
	service := NewManufacturerService(repo)
	ctx := context.Background()

	_, err := service.Create(ctx, &domain.Manufacturer{Name: "Soprole", TaxID: strPtr("76.101.812-4")})
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err = service.Create(ctx, &domain.Manufacturer{Name: "Colun", TaxID: strPtr("76.101.812-4")})
	conflict := &ConflictError{}
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Message != "Manufacturer with tax ID '76.101.812-4' already exists" {
		t.Errorf("unexpected message %q", conflict.Message)
	}
}

func TestManufacturerGetReturnsNotFound(t *testing.T) {
	repo := newMockManufacturerRepository()
	service := NewManufacturerService(repo)

	id := uuid.New()
	_, err := service.Get(context.Background(), id)

	notFound := &NotFoundError{}
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if !strings.Contains(notFound.Message, id.String()) {
		t.Errorf("message should carry the ID, got %q", notFound.Message)
	}
}

func TestManufacturerDeleteBlockedByBrands(t *testing.T) {
	repo := newMockManufacturerRepository()
	service := NewManufacturerService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, &domain.Manufacturer{Name: "Nestlé Chile"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	repo.brandCounts[created.ID] = 3

	err = service.Delete(ctx, created.ID)
	dependency := &DependencyConflictError{}
	if !errors.As(err, &dependency) {
		t.Fatalf("expected DependencyConflictError, got %v", err)
	}
	want := "Cannot delete manufacturer 'Nestlé Chile' because it has 3 associated brand(s). Please remove or reassign the brands first."
	if dependency.Message != want {
		t.Errorf("unexpected message %q", dependency.Message)
	}

	if _, stillThere := repo.manufacturers[created.ID]; !stillThere {
		t.Error("blocked delete must not remove the row")
	}
}

func TestManufacturerDeleteRemovesUnreferencedRow(t *testing.T) {
	repo := newMockManufacturerRepository()
	service := NewManufacturerService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, &domain.Manufacturer{Name: "Quillayes"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := service.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, stillThere := repo.manufacturers[created.ID]; stillThere {
		t.Error("delete should remove the row")
	}
}

func TestManufacturerUpdateChecksNameOnlyWhenChanged(t *testing.T) {
	repo := newMockManufacturerRepository()
	service := NewManufacturerService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, &domain.Manufacturer{Name: "Watt's", Country: strPtr("Chile")})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Re-sending the current name alongside a new website must not conflict
	// with the row itself.
	updated, err := service.Update(ctx, created.ID, domain.ManufacturerUpdate{
		Name:    domain.Optional[string]{Value: "Watt's", Set: true},
		Website: domain.Optional[*string]{Value: strPtr("https://watts.cl"), Set: true},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Website == nil || *updated.Website != "https://watts.cl" {
		t.Errorf("website not applied: %+v", updated.Website)
	}
	if updated.Country == nil || *updated.Country != "Chile" {
		t.Error("unset fields must survive the update")
	}
}

// Test that sparse updates only touch the fields present in the payload,
// whatever combination of fields that is.
func TestProperty_ManufacturerSparseUpdatePreservesUnsetFields(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("unset fields keep their previous values", prop.ForAll(
		func(setName, setCountry, setWebsite bool) bool {
			repo := newMockManufacturerRepository()
			service := NewManufacturerService(repo)
			ctx := context.Background()

			created, err := service.Create(ctx, &domain.Manufacturer{
				Name:    "Surlat",
				Country: strPtr("Chile"),
				Website: strPtr("https://surlat.cl"),
			})
			if err != nil {
				t.Logf("FAIL: Create failed: %v", err)
				return false
			}

			update := domain.ManufacturerUpdate{}
			if setName {
				update.Name = domain.Optional[string]{Value: "Surlat Lácteos", Set: true}
			}
			if setCountry {
				update.Country = domain.Optional[*string]{Value: strPtr("Argentina"), Set: true}
			}
			if setWebsite {
				update.Website = domain.Optional[*string]{Value: nil, Set: true}
			}

			updated, err := service.Update(ctx, created.ID, update)
			if err != nil {
				t.Logf("FAIL: Update failed: %v", err)
				return false
			}

			if setName && updated.Name != "Surlat Lácteos" {
				t.Logf("FAIL: name not applied")
				return false
			}
			if !setName && updated.Name != "Surlat" {
				t.Logf("FAIL: unset name was changed")
				return false
			}
			if setCountry && (updated.Country == nil || *updated.Country != "Argentina") {
				t.Logf("FAIL: country not applied")
				return false
			}
			if !setCountry && (updated.Country == nil || *updated.Country != "Chile") {
				t.Logf("FAIL: unset country was changed")
				return false
			}
			if setWebsite && updated.Website != nil {
				t.Logf("FAIL: explicit null website not applied")
				return false
			}
			if !setWebsite && (updated.Website == nil || *updated.Website != "https://surlat.cl") {
				t.Logf("FAIL: unset website was changed")
				return false
			}

			if !updated.UpdatedAt.After(created.UpdatedAt) && !updated.UpdatedAt.Equal(created.UpdatedAt) {
				t.Logf("FAIL: UpdatedAt went backwards")
				return false
			}

			return true
		},
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

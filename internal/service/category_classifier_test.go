package service

import (
	"context"
	"testing"

	"pricewatch/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func TestClassifierCreatesKeywordCategoryUnderDairy(t *testing.T) {
	catalogRepo := newMockCatalogRepository()
	categoryRepo := newMockCategoryRepository()
	classifier := NewCategoryClassifier(catalogRepo, categoryRepo, zap.NewNop())
	ctx := context.Background()

	dairy := &domain.Category{ID: uuid.New(), Name: "Dairy", Slug: "dairy", Active: true}
	categoryRepo.categories[dairy.ID] = dairy

	categoryID, err := classifier.ResolveCategory(ctx, "Yogurt Griego Vainilla 125g", nil)
	if err != nil {
		t.Fatalf("ResolveCategory failed: %v", err)
	}
	if categoryID == nil {
		t.Fatal("expected a category to be resolved")
	}

	created, err := categoryRepo.FindByID(ctx, *categoryID)
	if err != nil {
		t.Fatalf("created category not stored: %v", err)
	}
	if created.Name != "Yogurt" || created.Slug != "yogurt" {
		t.Errorf("unexpected category %q (%q)", created.Name, created.Slug)
	}
	if created.ParentID == nil || *created.ParentID != dairy.ID {
		t.Error("dairy keyword categories should nest under the dairy parent")
	}
}

func TestClassifierCreatesRootCategoryWithoutDairyParent(t *testing.T) {
	catalogRepo := newMockCatalogRepository()
	categoryRepo := newMockCategoryRepository()
	classifier := NewCategoryClassifier(catalogRepo, categoryRepo, zap.NewNop())
	ctx := context.Background()

	categoryID, err := classifier.ResolveCategory(ctx, "Leche Entera 1L", nil)
	if err != nil {
		t.Fatalf("ResolveCategory failed: %v", err)
	}
	if categoryID == nil {
		t.Fatal("expected a category to be resolved")
	}

	created, err := categoryRepo.FindByID(ctx, *categoryID)
	if err != nil {
		t.Fatalf("created category not stored: %v", err)
	}
	if created.Name != "Milk" {
		t.Errorf("unexpected category %q", created.Name)
	}
	if created.ParentID != nil {
		t.Error("without a dairy parent the category stays at the root")
	}
}

func TestClassifierReusesExistingCategory(t *testing.T) {
	catalogRepo := newMockCatalogRepository()
	categoryRepo := newMockCategoryRepository()
	classifier := NewCategoryClassifier(catalogRepo, categoryRepo, zap.NewNop())
	ctx := context.Background()

	milk := &domain.Category{ID: uuid.New(), Name: "Milk", Slug: "milk", Active: true}
	categoryRepo.categories[milk.ID] = milk

	categoryID, err := classifier.ResolveCategory(ctx, "Leche Descremada 1L", nil)
	if err != nil {
		t.Fatalf("ResolveCategory failed: %v", err)
	}
	if categoryID == nil || *categoryID != milk.ID {
		t.Errorf("expected existing Milk category, got %v", categoryID)
	}
	if len(categoryRepo.categories) != 1 {
		t.Errorf("no category should be created, have %d", len(categoryRepo.categories))
	}
}

func TestClassifierPrefersBrandPrecedent(t *testing.T) {
	catalogRepo := newMockCatalogRepository()
	categoryRepo := newMockCategoryRepository()
	classifier := NewCategoryClassifier(catalogRepo, categoryRepo, zap.NewNop())
	ctx := context.Background()

	brandID := uuid.New()
	precedentCategory := uuid.New()

	// The sibling was hand-filed under a category the keyword table would
	// not pick.
	sibling := &domain.CatalogProduct{
		ID:         uuid.New(),
		Name:       "Yogurt Batido Frutilla 155g",
		BrandID:    &brandID,
		CategoryID: &precedentCategory,
		Active:     true,
	}
	catalogRepo.products[sibling.ID] = sibling

	categoryID, err := classifier.ResolveCategory(ctx, "Yogurt Batido Mora 155g", &brandID)
	if err != nil {
		t.Fatalf("ResolveCategory failed: %v", err)
	}
	if categoryID == nil || *categoryID != precedentCategory {
		t.Errorf("expected the sibling's category, got %v", categoryID)
	}
	if len(categoryRepo.categories) != 0 {
		t.Error("the precedent path must not create categories")
	}
}

func TestClassifierSkipsShortWordsForPrecedent(t *testing.T) {
	catalogRepo := newMockCatalogRepository()
	categoryRepo := newMockCategoryRepository()
	classifier := NewCategoryClassifier(catalogRepo, categoryRepo, zap.NewNop())
	ctx := context.Background()

	brandID := uuid.New()
	otherCategory := uuid.New()

	// "Uno" is too short to be a useful prefix; a product that happens to
	// start with it must not become a precedent.
	decoy := &domain.CatalogProduct{
		ID:         uuid.New(),
		Name:       "Uno Queso Untable 200g",
		BrandID:    &brandID,
		CategoryID: &otherCategory,
		Active:     true,
	}
	catalogRepo.products[decoy.ID] = decoy

	categoryID, err := classifier.ResolveCategory(ctx, "Uno Multifruta 100ml", &brandID)
	if err != nil {
		t.Fatalf("ResolveCategory failed: %v", err)
	}
	if categoryID == nil {
		t.Fatal("keyword table should still resolve the product")
	}

	created, err := categoryRepo.FindByID(ctx, *categoryID)
	if err != nil {
		t.Fatalf("created category not stored: %v", err)
	}
	if created.Name != "Beverages" {
		t.Errorf("expected Beverages from the keyword table, got %q", created.Name)
	}
}

func TestClassifierUnknownProductGetsNoCategory(t *testing.T) {
	catalogRepo := newMockCatalogRepository()
	categoryRepo := newMockCategoryRepository()
	classifier := NewCategoryClassifier(catalogRepo, categoryRepo, zap.NewNop())

	categoryID, err := classifier.ResolveCategory(context.Background(), "Detergente Matic 3kg", nil)
	if err != nil {
		t.Fatalf("ResolveCategory failed: %v", err)
	}
	if categoryID != nil {
		t.Errorf("expected no category, got %v", categoryID)
	}
	if len(categoryRepo.categories) != 0 {
		t.Error("unmatched products must not create categories")
	}
}

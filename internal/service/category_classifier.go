package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"pricewatch/internal/domain"
	"pricewatch/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// keywordCategory pairs a canonical category name with the Spanish keywords
// that identify it in product names.
type keywordCategory struct {
	name     string
	keywords []string
}

// categoryKeywords is scanned in order; the first keyword hit wins, so more
// specific categories must come before broader ones (e.g. "postre" before
// "crema", which would otherwise claim "crema de postre").
var categoryKeywords = []keywordCategory{
	{name: "Yogurt", keywords: []string{"yogurt", "yoghurt", "yogur"}},
	{name: "Milk", keywords: []string{"leche"}},
	{name: "Cheese", keywords: []string{"queso"}},
	{name: "Butter & Margarine", keywords: []string{"mantequilla"}},
	{name: "Desserts", keywords: []string{"postre", "flan", "manjarate", "sémola", "semola", "creme caramel"}},
	{name: "Beverages", keywords: []string{"probiótico", "probiotico", "uno multifruta", "bebida lactea"}},
	{name: "Cream", keywords: []string{"crema"}},
	{name: "Ice Cream", keywords: []string{"helado", "ice cream"}},
}

// dairyParentSlug is the slug of the category new dairy categories are
// parented under when it exists.
const dairyParentSlug = "dairy"

// dairyCategories lists the keyword categories (lowercased) that belong
// under the dairy parent. Beverages and Ice Cream stay at the root.
var dairyCategories = map[string]bool{
	"yogurt":             true,
	"milk":               true,
	"cheese":             true,
	"butter & margarine": true,
	"cream":              true,
	"desserts":           true,
}

// CategoryClassifier defines the interface for assigning categories to
// products by name. Resolution is two-staged: same-brand precedent first,
// keyword matching second. Unmatched names resolve to no category.
type CategoryClassifier interface {
	ResolveCategory(ctx context.Context, productName string, brandID *uuid.UUID) (*uuid.UUID, error)
}

type categoryClassifier struct {
	catalogRepo  repository.CatalogRepository
	categoryRepo repository.CategoryRepository
	logger       *zap.Logger
}

// NewCategoryClassifier creates a new instance of CategoryClassifier
func NewCategoryClassifier(
	catalogRepo repository.CatalogRepository,
	categoryRepo repository.CategoryRepository,
	logger *zap.Logger,
) CategoryClassifier {
	return &categoryClassifier{
		catalogRepo:  catalogRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// ResolveCategory finds or creates the category for a product name. It
// returns nil without error when no category can be determined.
func (c *categoryClassifier) ResolveCategory(ctx context.Context, productName string, brandID *uuid.UUID) (*uuid.UUID, error) {
	// Same-brand precedent: a categorized sibling whose name starts with one
	// of the first two significant words ("Yogurt", "Leche", ...)
	if brandID != nil {
		words := strings.Fields(productName)
		if len(words) > 2 {
			words = words[:2]
		}
		for _, word := range words {
			if utf8.RuneCountInString(word) <= 3 {
				continue
			}
			similar, err := c.catalogRepo.FindFirstByBrandAndPrefix(ctx, *brandID, word)
			if err != nil {
				return nil, fmt.Errorf("failed to look up similar products: %w", err)
			}
			if similar != nil {
				c.logger.Debug("Category inferred from similar product",
					zap.String("product", productName),
					zap.String("similar", similar.Name),
				)
				return similar.CategoryID, nil
			}
		}
	}

	// Keyword matching against the ordered table
	nameLower := strings.ToLower(productName)
	for _, kc := range categoryKeywords {
		for _, keyword := range kc.keywords {
			if strings.Contains(nameLower, keyword) {
				category, err := c.resolveOrCreate(ctx, kc.name)
				if err != nil {
					return nil, err
				}
				return &category.ID, nil
			}
		}
	}

	return nil, nil
}

// resolveOrCreate finds a category by name or slug, creating it when
// missing. A concurrent create losing the unique race re-reads the winner.
func (c *categoryClassifier) resolveOrCreate(ctx context.Context, name string) (*domain.Category, error) {
	slug := domain.Slugify(name)

	category, err := c.categoryRepo.FindByNameOrSlug(ctx, name, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to look up category: %w", err)
	}
	if category != nil {
		return category, nil
	}

	var parentID *uuid.UUID
	if dairyCategories[strings.ToLower(name)] {
		parent, err := c.categoryRepo.FindBySlug(ctx, dairyParentSlug)
		if err != nil && err != repository.ErrCategoryNotFound {
			return nil, fmt.Errorf("failed to look up dairy parent: %w", err)
		}
		if parent != nil {
			parentID = &parent.ID
		}
	}

	category = &domain.Category{
		ID:        uuid.New(),
		Name:      name,
		Slug:      slug,
		ParentID:  parentID,
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := c.categoryRepo.Create(ctx, category); err != nil {
		if err == repository.ErrCategoryAlreadyExists {
			// Lost the create race; use the winner's row
			winner, findErr := c.categoryRepo.FindByNameOrSlug(ctx, name, slug)
			if findErr != nil {
				return nil, fmt.Errorf("failed to re-read category after create race: %w", findErr)
			}
			if winner != nil {
				return winner, nil
			}
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	c.logger.Info("Created category",
		zap.String("name", name),
		zap.String("slug", slug),
		zap.Bool("under_dairy", parentID != nil),
	)

	return category, nil
}

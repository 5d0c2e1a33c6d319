package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pricewatch/internal/domain"
	"pricewatch/internal/middleware"
	"pricewatch/internal/repository"
	"pricewatch/internal/scraper"

	"github.com/google/uuid"
)

// noLimit stands in for the scrape rate limiter in tests.
func noLimit(next http.Handler) http.Handler {
	return next
}

// errorMessage decodes the error envelope of a failed response.
func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp middleware.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("could not decode error response: %v", err)
	}
	return resp.Error.Message
}

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
	copied := *manufacturer
	return &copied, nil
}

func (m *mockManufacturerRepository) List(ctx context.Context, filter repository.ManufacturerFilter) ([]*domain.Manufacturer, error) {
	results := []*domain.Manufacturer{}
	for _, manufacturer := range m.manufacturers {
		if filter.Search != "" && !strings.Contains(strings.ToLower(manufacturer.Name), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Country != "" {
			if manufacturer.Country == nil || !strings.Contains(strings.ToLower(*manufacturer.Country), strings.ToLower(filter.Country)) {
				continue
			}
		}
		copied := *manufacturer
		results = append(results, &copied)
	}
	return results, nil
}

func (m *mockManufacturerRepository) ListWithBrandCounts(ctx context.Context, filter repository.ManufacturerFilter) ([]*domain.ManufacturerWithBrands, error) {
	results := []*domain.ManufacturerWithBrands{}
	for _, manufacturer := range m.manufacturers {
		results = append(results, &domain.ManufacturerWithBrands{
			Manufacturer: *manufacturer,
			BrandCount:   m.brandCounts[manufacturer.ID],
		})
	}
	return results, nil
}

func (m *mockManufacturerRepository) CountBrands(ctx context.Context, id uuid.UUID) (int, error) {
	return m.brandCounts[id], nil
}

func (m *mockManufacturerRepository) NameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	for _, manufacturer := range m.manufacturers {
		if manufacturer.ID != excludeID && strings.EqualFold(manufacturer.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockManufacturerRepository) TaxIDExists(ctx context.Context, taxID string, excludeID uuid.UUID) (bool, error) {
	for _, manufacturer := range m.manufacturers {
		if manufacturer.ID != excludeID && manufacturer.TaxID != nil && *manufacturer.TaxID == taxID {
			return true, nil
		}
	}
	return false, nil
}

type mockBrandRepository struct {
	brands map[uuid.UUID]*domain.Brand
}

func newMockBrandRepository() *mockBrandRepository {
	return &mockBrandRepository{brands: make(map[uuid.UUID]*domain.Brand)}
}

func (m *mockBrandRepository) Create(ctx context.Context, brand *domain.Brand) error {
	copied := *brand
	m.brands[brand.ID] = &copied
	return nil
}

func (m *mockBrandRepository) Update(ctx context.Context, brand *domain.Brand) error {
	if _, exists := m.brands[brand.ID]; !exists {
		return repository.ErrBrandNotFound
	}
	copied := *brand
	m.brands[brand.ID] = &copied
	return nil
}

func (m *mockBrandRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.brands[id]; !exists {
		return repository.ErrBrandNotFound
	}
	delete(m.brands, id)
	return nil
}

func (m *mockBrandRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Brand, error) {
	brand, exists := m.brands[id]
	if !exists {
		return nil, repository.ErrBrandNotFound
	}
	copied := *brand
	return &copied, nil
}

func (m *mockBrandRepository) FindByNameILike(ctx context.Context, name string) (*domain.Brand, error) {
	for _, brand := range m.brands {
		if strings.Contains(strings.ToLower(brand.Name), strings.ToLower(name)) {
			copied := *brand
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockBrandRepository) List(ctx context.Context, filter repository.BrandFilter) ([]*domain.Brand, error) {
	results := []*domain.Brand{}
	for _, brand := range m.brands {
		if filter.Search != "" && !strings.Contains(strings.ToLower(brand.Name), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.ManufacturerID != uuid.Nil {
			if brand.ManufacturerID == nil || *brand.ManufacturerID != filter.ManufacturerID {
				continue
			}
		}
		if filter.ActiveOnly && !brand.Active {
			continue
		}
		copied := *brand
		results = append(results, &copied)
	}
	return results, nil
}

func (m *mockBrandRepository) ListWithManufacturer(ctx context.Context, filter repository.BrandFilter) ([]*domain.BrandWithManufacturer, error) {
	results := []*domain.BrandWithManufacturer{}
	for _, brand := range m.brands {
		if filter.ActiveOnly && !brand.Active {
			continue
		}
		results = append(results, &domain.BrandWithManufacturer{Brand: *brand})
	}
	return results, nil
}

func (m *mockBrandRepository) NameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	for _, brand := range m.brands {
		if brand.ID != excludeID && strings.EqualFold(brand.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

type mockCategoryRepository struct {
	categories map[uuid.UUID]*domain.Category
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{categories: make(map[uuid.UUID]*domain.Category)}
}

func (m *mockCategoryRepository) nameOrSlugTaken(name, slug string, excludeID uuid.UUID) bool {
	for _, category := range m.categories {
		if category.ID == excludeID {
			continue
		}
		if strings.EqualFold(category.Name, name) || category.Slug == slug {
			return true
		}
	}
	return false
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if m.nameOrSlugTaken(category.Name, category.Slug, category.ID) {
		return repository.ErrCategoryAlreadyExists
	}
	copied := *category
	m.categories[category.ID] = &copied
	return nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	if _, exists := m.categories[category.ID]; !exists {
		return repository.ErrCategoryNotFound
	}
	if m.nameOrSlugTaken(category.Name, category.Slug, category.ID) {
		return repository.ErrCategoryAlreadyExists
	}
	copied := *category
	m.categories[category.ID] = &copied
	return nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.categories[id]; !exists {
		return repository.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, exists := m.categories[id]
	if !exists {
		return nil, repository.ErrCategoryNotFound
	}
	copied := *category
	return &copied, nil
}

func (m *mockCategoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	for _, category := range m.categories {
		if category.Slug == slug {
			copied := *category
			return &copied, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (m *mockCategoryRepository) FindByNameOrSlug(ctx context.Context, name, slug string) (*domain.Category, error) {
	for _, category := range m.categories {
		if strings.EqualFold(category.Name, name) || category.Slug == slug {
			copied := *category
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockCategoryRepository) List(ctx context.Context, activeOnly bool, skip, limit int) ([]*domain.Category, error) {
	results := []*domain.Category{}
	for _, category := range m.categories {
		if activeOnly && !category.Active {
			continue
		}
		copied := *category
		results = append(results, &copied)
	}
	return results, nil
}

func (m *mockCategoryRepository) ListAll(ctx context.Context) ([]*domain.Category, error) {
	return m.List(ctx, false, 0, 0)
}

func (m *mockCategoryRepository) CountChildren(ctx context.Context, id uuid.UUID) (int, error) {
	count := 0
	for _, category := range m.categories {
		if category.ParentID != nil && *category.ParentID == id {
			count++
		}
	}
	return count, nil
}

func (m *mockCategoryRepository) NameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	for _, category := range m.categories {
		if category.ID != excludeID && strings.EqualFold(category.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCategoryRepository) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	for _, category := range m.categories {
		if category.ID != excludeID && category.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

type mockStoreRepository struct {
	stores      map[uuid.UUID]*domain.Store
	offerCounts map[uuid.UUID]int
}

func newMockStoreRepository() *mockStoreRepository {
	return &mockStoreRepository{
		stores:      make(map[uuid.UUID]*domain.Store),
		offerCounts: make(map[uuid.UUID]int),
	}
}

func (m *mockStoreRepository) Create(ctx context.Context, store *domain.Store) error {
	copied := *store
	m.stores[store.ID] = &copied
	return nil
}

func (m *mockStoreRepository) Update(ctx context.Context, store *domain.Store) error {
	if _, exists := m.stores[store.ID]; !exists {
		return repository.ErrStoreNotFound
	}
	copied := *store
	m.stores[store.ID] = &copied
	return nil
}

func (m *mockStoreRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.stores[id]; !exists {
		return repository.ErrStoreNotFound
	}
	delete(m.stores, id)
	return nil
}

func (m *mockStoreRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Store, error) {
	store, exists := m.stores[id]
	if !exists {
		return nil, repository.ErrStoreNotFound
	}
	copied := *store
	return &copied, nil
}

func (m *mockStoreRepository) FindByFuzzyName(ctx context.Context, name string) (*domain.Store, error) {
	search := strings.ToLower(name)
	for _, store := range m.stores {
		if !store.Active {
			continue
		}
		stored := strings.ToLower(store.Name)
		if stored == search || strings.Contains(stored, search) || strings.Contains(search, stored) {
			copied := *store
			return &copied, nil
		}
	}
	return nil, repository.ErrStoreNotFound
}

func (m *mockStoreRepository) List(ctx context.Context, activeOnly bool, skip, limit int) ([]*domain.Store, error) {
	results := []*domain.Store{}
	for _, store := range m.stores {
		if activeOnly && !store.Active {
			continue
		}
		copied := *store
		results = append(results, &copied)
	}
	return results, nil
}

func (m *mockStoreRepository) Upsert(ctx context.Context, name, baseURL string) (*domain.Store, error) {
	for _, store := range m.stores {
		if store.Name == name {
			store.UpdatedAt = time.Now()
			copied := *store
			return &copied, nil
		}
	}
	store := &domain.Store{
		ID:        uuid.New(),
		Name:      name,
		BaseURL:   baseURL,
		Active:    false,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.stores[store.ID] = store
	copied := *store
	return &copied, nil
}

func (m *mockStoreRepository) NameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	for _, store := range m.stores {
		if store.ID != excludeID && strings.EqualFold(store.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStoreRepository) CountOffers(ctx context.Context, id uuid.UUID) (int, error) {
	return m.offerCounts[id], nil
}

type mockCatalogRepository struct {
	products    map[uuid.UUID]*domain.CatalogProduct
	offerCounts map[uuid.UUID]int
}

func newMockCatalogRepository() *mockCatalogRepository {
	return &mockCatalogRepository{
		products:    make(map[uuid.UUID]*domain.CatalogProduct),
		offerCounts: make(map[uuid.UUID]int),
	}
}

func (m *mockCatalogRepository) Create(ctx context.Context, product *domain.CatalogProduct) error {
	if product.SKU != nil {
		for _, existing := range m.products {
			if existing.SKU != nil && *existing.SKU == *product.SKU {
				return repository.ErrDuplicateSKU
			}
		}
	}
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *mockCatalogRepository) Update(ctx context.Context, product *domain.CatalogProduct) error {
	if _, exists := m.products[product.ID]; !exists {
		return repository.ErrCatalogProductNotFound
	}
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *mockCatalogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.products[id]; !exists {
		return repository.ErrCatalogProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockCatalogRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.CatalogProduct, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrCatalogProductNotFound
	}
	copied := *product
	return &copied, nil
}

func (m *mockCatalogRepository) List(ctx context.Context, filter repository.CatalogFilter) ([]*domain.CatalogProduct, error) {
	results := []*domain.CatalogProduct{}
	for _, product := range m.products {
		if filter.Search != "" && !strings.Contains(strings.ToLower(product.Name), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.BrandID != uuid.Nil {
			if product.BrandID == nil || *product.BrandID != filter.BrandID {
				continue
			}
		}
		if filter.ActiveOnly && !product.Active {
			continue
		}
		copied := *product
		results = append(results, &copied)
	}
	return results, nil
}

func (m *mockCatalogRepository) ListWithDetails(ctx context.Context, filter repository.CatalogFilter) ([]*domain.CatalogProductWithDetails, error) {
	products, err := m.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	results := make([]*domain.CatalogProductWithDetails, 0, len(products))
	for _, product := range products {
		results = append(results, &domain.CatalogProductWithDetails{CatalogProduct: *product})
	}
	return results, nil
}

func (m *mockCatalogRepository) ResolveByName(ctx context.Context, query string) (*domain.CatalogMatch, error) {
	search := strings.ToLower(query)
	for _, product := range m.products {
		if !product.Active {
			continue
		}
		name := strings.ToLower(product.Name)
		if strings.Contains(name, search) || strings.Contains(search, name) {
			return &domain.CatalogMatch{
				ID:         product.ID,
				Name:       product.Name,
				SKU:        product.SKU,
				BrandID:    product.BrandID,
				CategoryID: product.CategoryID,
			}, nil
		}
	}
	return nil, nil
}

func (m *mockCatalogRepository) FindFirstByBrandAndPrefix(ctx context.Context, brandID uuid.UUID, prefix string) (*domain.CatalogProduct, error) {
	for _, product := range m.products {
		if product.BrandID == nil || *product.BrandID != brandID || product.CategoryID == nil {
			continue
		}
		if strings.HasPrefix(strings.ToLower(product.Name), strings.ToLower(prefix)) {
			copied := *product
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockCatalogRepository) NameExists(ctx context.Context, name string) (bool, error) {
	for _, product := range m.products {
		if product.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCatalogRepository) SKUExists(ctx context.Context, sku string, excludeID uuid.UUID) (bool, error) {
	for _, product := range m.products {
		if product.ID != excludeID && product.SKU != nil && *product.SKU == sku {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCatalogRepository) CountOffers(ctx context.Context, id uuid.UUID) (int, error) {
	return m.offerCounts[id], nil
}

type mockOfferRepository struct {
	offers []*domain.OfferView
}

func newMockOfferRepository() *mockOfferRepository {
	return &mockOfferRepository{offers: []*domain.OfferView{}}
}

func (m *mockOfferRepository) ListByCatalogID(ctx context.Context, catalogID uuid.UUID) ([]*domain.OfferView, error) {
	results := []*domain.OfferView{}
	for _, offer := range m.offers {
		if offer.CatalogID == catalogID {
			results = append(results, offer)
		}
	}
	return results, nil
}

func (m *mockOfferRepository) ListAll(ctx context.Context, skip, limit int) ([]*domain.OfferView, error) {
	return m.offers, nil
}

func (m *mockOfferRepository) UpsertOfferWithPrice(ctx context.Context, params repository.UpsertOfferParams) (*domain.ProductOffer, error) {
	offer := &domain.ProductOffer{
		ID:        uuid.New(),
		CatalogID: params.CatalogID,
		StoreID:   params.StoreID,
		URL:       params.URL,
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	offer.CurrentPrice.Decimal = params.Price
	offer.CurrentPrice.Valid = true

	view := &domain.OfferView{
		ProductOffer: *offer,
		Price: &domain.Price{
			ID:        uuid.New(),
			ProductID: offer.ID,
			Price:     params.Price,
			Currency:  params.Currency,
			InStock:   params.InStock,
		},
	}
	m.offers = append(m.offers, view)
	return offer, nil
}

// fakeScraperClient satisfies scraper.Client with programmable responses.
type fakeScraperClient struct {
	retailerFn func(retailer, productName string) (*scraper.RetailerResult, error)
	shoppingFn func(productName string) ([]scraper.RetailerResult, error)
	catalogFn  func(brandQuery string) (*scraper.BrandCatalog, error)
}

func (f *fakeScraperClient) ScrapeRetailer(ctx context.Context, retailer, productName string) (*scraper.RetailerResult, error) {
	if f.retailerFn == nil {
		return nil, errors.New("unexpected retailer call")
	}
	return f.retailerFn(retailer, productName)
}

func (f *fakeScraperClient) ScrapeShopping(ctx context.Context, productName string) ([]scraper.RetailerResult, error) {
	if f.shoppingFn == nil {
		return nil, errors.New("unexpected shopping call")
	}
	return f.shoppingFn(productName)
}

func (f *fakeScraperClient) ScrapeBrandCatalog(ctx context.Context, brandQuery string) (*scraper.BrandCatalog, error) {
	if f.catalogFn == nil {
		return nil, errors.New("unexpected brand catalog call")
	}
	return f.catalogFn(brandQuery)
}

package scraper

// RetailerResult is one retailer's answer for a product lookup. Field names
// follow the scraper service's wire format, which reports product name and
// price under their Spanish keys.
type RetailerResult struct {
	Retailer string `json:"retailer"`
	Name     string `json:"nombre"`
	Price    string `json:"precio"`
	SKU      string `json:"sku"`
	URL      string `json:"url"`
	Found    bool   `json:"encontrado"`
}

// CatalogItem is one product row from a brand catalog scrape.
type CatalogItem struct {
	Name     string `json:"name"`
	JumboID  string `json:"jumbo_id"`
	URL      string `json:"url"`
	Price    string `json:"price"`
	ImageURL string `json:"image_url"`
}

// BrandCatalog is the scraper's response to a brand catalog request.
type BrandCatalog struct {
	Status   string        `json:"status"`
	Products []CatalogItem `json:"products"`
}

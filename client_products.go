package gtindata

import (
	"context"
	"net/http"
	"strconv"
)

// apiProduct is the catalog entry as the backend sends it: most fields
// nullable, NCM unformatted, weight split into value and unit.
type apiProduct struct {
	GTIN             string   `json:"gtin"`
	GTINType         *int     `json:"gtin_type"`
	Brand            *string  `json:"brand"`
	ProductName      *string  `json:"product_name"`
	OwnerTaxID       *string  `json:"owner_tax_id"`
	OriginCountry    *string  `json:"origin_country"`
	NCM              *string  `json:"ncm"`
	CEST             []string `json:"cest"`
	GrossWeightValue *float64 `json:"gross_weight_value"`
	GrossWeightUnit  *string  `json:"gross_weight_unit"`
	DSITDate         *string  `json:"dsit_date"`
	UpdatedAt        *string  `json:"updated_at"`
	ImageURL         *string  `json:"image_url"`
}

// transformProduct collapses nullable wire fields into display-ready
// zero values and derives the formatted NCM. A refresh replaces the
// whole Product; nothing mutates one in place.
func transformProduct(p apiProduct) Product {
	out := Product{
		GTIN:     p.GTIN,
		GTINType: "13",
		CEST:     []string{},
		GrossWeight: GrossWeight{
			Unit: "GRM",
		},
	}

	if p.GTINType != nil {
		out.GTINType = strconv.Itoa(*p.GTINType)
	}
	if p.Brand != nil {
		out.Brand = *p.Brand
	}
	if p.ProductName != nil {
		out.ProductName = *p.ProductName
	}
	if p.OwnerTaxID != nil {
		out.OwnerTaxID = *p.OwnerTaxID
	}
	if p.OriginCountry != nil {
		out.OriginCountry = *p.OriginCountry
	}
	if p.NCM != nil {
		out.NCM = *p.NCM
		out.NCMFormatted = FormatNCM(*p.NCM)
	}
	if len(p.CEST) > 0 {
		out.CEST = p.CEST
	}
	if p.GrossWeightValue != nil {
		out.GrossWeight.Value = *p.GrossWeightValue
	}
	if p.GrossWeightUnit != nil && *p.GrossWeightUnit != "" {
		out.GrossWeight.Unit = *p.GrossWeightUnit
	}
	if p.DSITDate != nil {
		out.DSITDate = *p.DSITDate
	}
	if p.UpdatedAt != nil {
		out.UpdatedAt = *p.UpdatedAt
	}
	if p.ImageURL != nil {
		out.ImageURL = *p.ImageURL
	}

	return out
}

func (c *Client) productByPath(ctx context.Context, prefix, gtin string, requiresAuth bool) (Product, error) {
	normalized := NormalizeGTIN(gtin)
	if normalized == "" {
		return Product{}, validationError("gtin must contain digits")
	}

	var raw apiProduct
	if err := c.send(ctx, http.MethodGet, prefix+"/"+trimmedPathSegment(normalized), nil, nil, requiresAuth, &raw); err != nil {
		return Product{}, err
	}
	return transformProduct(raw), nil
}

// ProductByGTIN looks a product up through the dashboard endpoint,
// authenticated with the session credential. The lookup counts against
// the organization's daily quota; hitting the ceiling comes back as
// KindRateLimited with the backend's message and retry hint attached.
func (c *Client) ProductByGTIN(ctx context.Context, gtin string) (Product, error) {
	return c.productByPath(ctx, "/v1/dashboard/gtins", gtin, true)
}

// PublicProductByGTIN looks a product up through the unauthenticated
// demo endpoint. Unknown GTINs are KindNotFound, not an empty product.
func (c *Client) PublicProductByGTIN(ctx context.Context, gtin string) (Product, error) {
	return c.productByPath(ctx, "/v1/public/gtins", gtin, false)
}

// LookupGTIN queries the key-authenticated catalog endpoint. The caller
// is expected to hit it with an API key via a custom HTTP client or
// proxy; no bearer credential is attached.
func (c *Client) LookupGTIN(ctx context.Context, gtin string) (Product, error) {
	return c.productByPath(ctx, "/v1/gtins", gtin, false)
}

type batchRequest struct {
	GTINs []string `json:"gtins"`
}

type apiBatchResult struct {
	GTIN    string      `json:"gtin"`
	Found   bool        `json:"found"`
	Product *apiProduct `json:"product"`
}

type apiBatchResponse struct {
	TotalRequested int              `json:"total_requested"`
	TotalFound     int              `json:"total_found"`
	Results        []apiBatchResult `json:"results"`
}

const maxBatchSize = 100

// GTINBatch looks up several GTINs in one call. Inputs are normalized
// client-side; misses appear as found=false entries rather than
// errors, so a batch never fails on unknown codes alone.
func (c *Client) GTINBatch(ctx context.Context, gtins []string) (BatchResponse, error) {
	if len(gtins) == 0 {
		return BatchResponse{}, validationError("at least one gtin required")
	}
	if len(gtins) > maxBatchSize {
		return BatchResponse{}, validationError("at most 100 gtins per batch")
	}

	normalized := make([]string, 0, len(gtins))
	for _, g := range gtins {
		n := NormalizeGTIN(g)
		if n == "" {
			return BatchResponse{}, validationError("gtin must contain digits")
		}
		normalized = append(normalized, n)
	}

	var raw apiBatchResponse
	if err := c.send(ctx, http.MethodPost, "/v1/gtins:batch", nil, batchRequest{GTINs: normalized}, false, &raw); err != nil {
		return BatchResponse{}, err
	}

	out := BatchResponse{
		TotalRequested: raw.TotalRequested,
		TotalFound:     raw.TotalFound,
		Results:        make([]BatchResult, 0, len(raw.Results)),
	}
	for _, r := range raw.Results {
		result := BatchResult{GTIN: r.GTIN, Found: r.Found}
		if r.Product != nil {
			p := transformProduct(*r.Product)
			result.Product = &p
		}
		out.Results = append(out.Results, result)
	}
	return out, nil
}

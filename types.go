package gtindata

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Token is the payload of a successful login or registration.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Identity describes the authenticated user as reported by the backend.
type Identity struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	OrganizationID   int64     `json:"organization_id"`
	OrganizationName string    `json:"organization_name"`
	Plan             string    `json:"plan"`
	DailyLimit       int       `json:"daily_limit"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest carries the public registration payload. The backend
// creates the organization alongside the user.
type RegisterRequest struct {
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=8"`
	OrganizationName string `json:"organization_name" validate:"required,min=2,max=255"`
}

// UpdateIdentityRequest updates the user's email and/or organization
// name. Nil fields are left untouched.
type UpdateIdentityRequest struct {
	Email            *string `json:"email,omitempty" validate:"omitempty,email"`
	OrganizationName *string `json:"organization_name,omitempty" validate:"omitempty,min=2,max=255"`
}

// APIKey is a dashboard API key with the secret masked.
type APIKey struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	MaskedKey  string     `json:"masked_key"`
	Status     string     `json:"status"` // "active" or "revoked"
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}

// Active reports whether the key is usable.
func (k APIKey) Active() bool { return k.Status == "active" }

// APIKeyCreated is returned by CreateAPIKey. Key holds the full secret
// and is shown exactly once; it is never retrievable again.
type APIKeyCreated struct {
	APIKey
	Key string `json:"key"`
}

// ListOptions selects a page of a listing.
type ListOptions struct {
	Page    int `validate:"omitempty,min=1"`
	PerPage int `validate:"omitempty,min=1,max=100"`
}

// APIKeyPage is the paginated API-key listing envelope.
type APIKeyPage struct {
	Items       []APIKey `json:"items"`
	Page        int      `json:"page"`
	PerPage     int      `json:"per_page"`
	Total       int      `json:"total"`
	ActiveCount int      `json:"active_count"`
	ActiveLimit int      `json:"active_limit"`
}

// TotalPages derives the page count from Total and PerPage. A listing
// with total=15 and per_page=10 has two pages.
func (p APIKeyPage) TotalPages() int {
	if p.PerPage <= 0 {
		return 0
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

// CanCreate reports whether the organization may create another key
// under its active-key limit. Callers check this before issuing the
// create call so the rejection never costs a network round trip.
func (p APIKeyPage) CanCreate() bool {
	return p.ActiveLimit <= 0 || p.ActiveCount < p.ActiveLimit
}

// Date is a calendar day serialized as "2006-01-02", the backend's
// date-only wire format.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate builds a Date from year, month, and day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", raw, err)
	}
	d.Time = parsed
	return nil
}

// String returns the date in wire format.
func (d Date) String() string { return d.Format(dateLayout) }

// DailyUsage is one day's call counts.
type DailyUsage struct {
	Date         Date `json:"date"`
	SuccessCount int  `json:"success_count"`
	ErrorCount   int  `json:"error_count"`
	TotalCount   int  `json:"total_count"`
}

// APIKeyUsage aggregates one key's calls over a summary period.
type APIKeyUsage struct {
	APIKeyID     int64  `json:"api_key_id"`
	APIKeyName   string `json:"api_key_name"`
	TotalSuccess int    `json:"total_success"`
	TotalError   int    `json:"total_error"`
	TotalCalls   int    `json:"total_calls"`
}

// UsageSummaryData is the aggregated usage over the last N days, broken
// down per key.
type UsageSummaryData struct {
	PeriodDays   int           `json:"period_days"`
	StartDate    Date          `json:"start_date"`
	EndDate      Date          `json:"end_date"`
	TotalSuccess int           `json:"total_success"`
	TotalError   int           `json:"total_error"`
	TotalCalls   int           `json:"total_calls"`
	ByAPIKey     []APIKeyUsage `json:"by_api_key"`
}

// DailySeriesData is the organization-wide day-by-day usage series.
// Days without traffic appear as zero entries; the series has no gaps.
type DailySeriesData struct {
	StartDate Date         `json:"start_date"`
	EndDate   Date         `json:"end_date"`
	TotalDays int          `json:"total_days"`
	Series    []DailyUsage `json:"series"`
}

// APIKeyDailySeriesData is the day-by-day usage series of one key.
type APIKeyDailySeriesData struct {
	APIKeyID     int64        `json:"api_key_id"`
	APIKeyName   string       `json:"api_key_name"`
	StartDate    Date         `json:"start_date"`
	EndDate      Date         `json:"end_date"`
	TotalDays    int          `json:"total_days"`
	TotalSuccess int          `json:"total_success"`
	TotalError   int          `json:"total_error"`
	Series       []DailyUsage `json:"series"`
}

// Subscription describes the organization's current plan.
type Subscription struct {
	Plan            string  `json:"plan"`
	Price           float64 `json:"price"`
	BillingCycle    string  `json:"billing_cycle"`
	NextBillingDate Date    `json:"next_billing_date"`
	Status          string  `json:"status"`
}

// Invoice is one past or pending charge.
type Invoice struct {
	ID          string  `json:"id"`
	Date        Date    `json:"date"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status"` // "paid", "pending", "failed"
	Description string  `json:"description"`
}

// PaymentMethod is a stored payment instrument.
type PaymentMethod struct {
	ID        string `json:"id"`
	Type      string `json:"type"` // "credit_card", "pix"
	Last4     string `json:"last4"`
	Brand     string `json:"brand"`
	IsDefault bool   `json:"is_default"`
}

// BillingData is the full billing snapshot shown on the billing page.
type BillingData struct {
	Subscription   Subscription    `json:"subscription"`
	Invoices       []Invoice       `json:"invoices"`
	PaymentMethods []PaymentMethod `json:"payment_methods"`
}

// CheckoutSession carries the billing-provider redirect URL for a plan
// checkout.
type CheckoutSession struct {
	URL string `json:"url"`
}

// BillingPortal carries the billing-provider customer portal URL.
type BillingPortal struct {
	URL string `json:"url"`
}

// GrossWeight is a product's declared gross weight.
type GrossWeight struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Product is a catalog entry, shaped for display: nullable wire fields
// collapse to zero values and the NCM is pre-formatted.
type Product struct {
	GTIN          string      `json:"gtin"`
	GTINType      string      `json:"gtin_type"`
	Brand         string      `json:"brand"`
	ProductName   string      `json:"product_name"`
	OwnerTaxID    string      `json:"owner_tax_id"`
	OriginCountry string      `json:"origin_country"`
	NCM           string      `json:"ncm"`
	NCMFormatted  string      `json:"ncm_formatted"`
	CEST          []string    `json:"cest"`
	GrossWeight   GrossWeight `json:"gross_weight"`
	DSITDate      string      `json:"dsit_date"`
	UpdatedAt     string      `json:"updated_at"`
	ImageURL      string      `json:"image_url"`
}

// BatchResult is one entry of a batch lookup.
type BatchResult struct {
	GTIN    string   `json:"gtin"`
	Found   bool     `json:"found"`
	Product *Product `json:"product"`
}

// BatchResponse is the result of a multi-GTIN lookup.
type BatchResponse struct {
	TotalRequested int           `json:"total_requested"`
	TotalFound     int           `json:"total_found"`
	Results        []BatchResult `json:"results"`
}

// NormalizeGTIN strips non-digit characters and left-pads to 14 digits,
// matching the backend's canonical form. Inputs longer than 14 digits
// are returned with digits only.
func NormalizeGTIN(gtin string) string {
	var b strings.Builder
	b.Grow(14)
	for _, r := range gtin {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 0 || len(digits) >= 14 {
		return digits
	}
	return strings.Repeat("0", 14-len(digits)) + digits
}

// FormatNCM renders an 8-digit NCM code as XXXX.XX.XX. Values that are
// not exactly eight digits are returned unchanged.
func FormatNCM(ncm string) string {
	var digits strings.Builder
	for _, r := range ncm {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) != 8 {
		return ncm
	}
	return d[:4] + "." + d[4:6] + "." + d[6:8]
}

package gtindata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	defaultPerPage = 10
)

// ListAPIKeys returns one page of the organization's keys. Requesting a
// page past the end of a non-empty listing is rejected as a validation
// error instead of silently returning an empty page.
func (c *Client) ListAPIKeys(ctx context.Context, opts ListOptions) (APIKeyPage, error) {
	var page APIKeyPage

	if err := c.checkInput(opts); err != nil {
		return page, err
	}
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.PerPage <= 0 {
		opts.PerPage = defaultPerPage
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(opts.Page))
	query.Set("per_page", strconv.Itoa(opts.PerPage))

	if err := c.send(ctx, http.MethodGet, "/v1/dashboard/api-keys", query, nil, true, &page); err != nil {
		return APIKeyPage{}, err
	}

	if page.Total > 0 && opts.Page > page.TotalPages() {
		return APIKeyPage{}, validationError(
			fmt.Sprintf("page %d is past the last page (%d)", opts.Page, page.TotalPages()))
	}

	return page, nil
}

type createAPIKeyRequest struct {
	Name string `json:"name"`
}

// CreateAPIKey generates a new key. The returned Key field holds the
// full secret and is shown exactly once. Creation is never retried
// automatically. Callers should check APIKeyPage.CanCreate first; the
// backend enforces the limit regardless.
func (c *Client) CreateAPIKey(ctx context.Context, name string) (APIKeyCreated, error) {
	var created APIKeyCreated

	err := c.send(ctx, http.MethodPost, "/v1/dashboard/api-keys", nil, createAPIKeyRequest{Name: name}, true, &created)
	if err != nil {
		// A 403 on creation specifically means the plan has no API
		// access; give the caller a message that says so.
		if apiErr := AsAPIError(err); apiErr != nil && apiErr.Kind == KindForbidden {
			return APIKeyCreated{}, &APIError{
				Kind:    KindForbidden,
				Status:  apiErr.Status,
				Message: "current plan does not include API access",
				Detail:  apiErr.Detail,
			}
		}
		return APIKeyCreated{}, err
	}

	c.metricInc(MetricKeyCreated)
	return created, nil
}

// CreateAPIKeyChecked consults the listing envelope's active-key limit
// before creating: when active_count has reached active_limit the
// create is refused locally and the POST is never issued. Control
// surfaces (the CLI, a dashboard) should prefer this over a bare
// CreateAPIKey so an at-limit create fails fast with a limit message
// instead of a round trip.
func (c *Client) CreateAPIKeyChecked(ctx context.Context, name string) (APIKeyCreated, error) {
	page, err := c.ListAPIKeys(ctx, ListOptions{})
	if err != nil {
		return APIKeyCreated{}, err
	}
	if !page.CanCreate() {
		c.metricInc(MetricValidationRejected)
		return APIKeyCreated{}, validationError(
			fmt.Sprintf("active key limit reached (%d of %d)", page.ActiveCount, page.ActiveLimit))
	}
	return c.CreateAPIKey(ctx, name)
}

// RevokeAPIKey deactivates a key and returns its updated record.
// Revoking an already-revoked key surfaces the backend's validation
// detail; the operation is not assumed idempotent.
func (c *Client) RevokeAPIKey(ctx context.Context, id int64) (APIKey, error) {
	if id <= 0 {
		return APIKey{}, validationError("api key id must be positive")
	}

	var key APIKey
	path := fmt.Sprintf("/v1/dashboard/api-keys/%d/revoke", id)
	if err := c.send(ctx, http.MethodPost, path, nil, nil, true, &key); err != nil {
		return APIKey{}, err
	}

	c.metricInc(MetricKeyRevoked)
	return key, nil
}

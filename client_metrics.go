package gtindata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// UsageSummary returns aggregated usage for the last days days, broken
// down per API key. days defaults to 7 and is capped at 365, matching
// the backend's accepted range.
func (c *Client) UsageSummary(ctx context.Context, days int) (UsageSummaryData, error) {
	if days == 0 {
		days = 7
	}
	if days < 1 || days > 365 {
		return UsageSummaryData{}, validationError("days must be between 1 and 365")
	}

	var summary UsageSummaryData
	query := singleQuery("days", strconv.Itoa(days))
	if err := c.send(ctx, http.MethodGet, "/v1/metrics/summary", query, nil, true, &summary); err != nil {
		return UsageSummaryData{}, err
	}
	return summary, nil
}

// DailySeries returns the organization-wide day-by-day usage series.
// Zero dates fall back to the backend defaults (last 30 days, ending
// today). The backend zero-fills days without traffic, so the series
// is gapless.
func (c *Client) DailySeries(ctx context.Context, start, end Date) (DailySeriesData, error) {
	query, err := dateRangeQuery(start, end)
	if err != nil {
		return DailySeriesData{}, err
	}

	var series DailySeriesData
	if err := c.send(ctx, http.MethodGet, "/v1/metrics/daily", query, nil, true, &series); err != nil {
		return DailySeriesData{}, err
	}
	return series, nil
}

// APIKeyDailySeries returns the day-by-day series of one key. An id the
// organization does not own comes back as KindNotFound.
func (c *Client) APIKeyDailySeries(ctx context.Context, id int64, start, end Date) (APIKeyDailySeriesData, error) {
	if id <= 0 {
		return APIKeyDailySeriesData{}, validationError("api key id must be positive")
	}

	query, err := dateRangeQuery(start, end)
	if err != nil {
		return APIKeyDailySeriesData{}, err
	}

	var series APIKeyDailySeriesData
	path := fmt.Sprintf("/v1/metrics/api-keys/%d", id)
	if err := c.send(ctx, http.MethodGet, path, query, nil, true, &series); err != nil {
		return APIKeyDailySeriesData{}, err
	}
	return series, nil
}

func dateRangeQuery(start, end Date) (url.Values, error) {
	if !start.IsZero() && !end.IsZero() && end.Before(start.Time) {
		return nil, validationError("end date is before start date")
	}

	query := url.Values{}
	if !start.IsZero() {
		query.Set("start_date", start.String())
	}
	if !end.IsZero() {
		query.Set("end_date", end.String())
	}
	if len(query) == 0 {
		return nil, nil
	}
	return query, nil
}

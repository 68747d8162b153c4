package test

import (
	"context"
	"testing"
	"time"

	gtindata "github.com/gtindata/gtindata-go"
	"github.com/gtindata/gtindata-go/credential"
	"github.com/gtindata/gtindata-go/guard"
	"github.com/gtindata/gtindata-go/session"
)

// This test intentionally guards public API compile-compat for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = gtindata.New

	var _ *gtindata.Client
	var _ gtindata.Config
	var _ gtindata.Token
	var _ gtindata.Identity
	var _ gtindata.APIKey
	var _ gtindata.APIKeyCreated
	var _ gtindata.APIKeyPage
	var _ gtindata.UsageSummaryData
	var _ gtindata.DailySeriesData
	var _ gtindata.BillingData
	var _ gtindata.Product
	var _ gtindata.BatchResponse
	var _ gtindata.RequestEvent
	var _ gtindata.EventSink
	var _ gtindata.MetricsSnapshot

	var _ error = gtindata.ErrBuilderUsed
	var _ error = gtindata.ErrNoBaseURL
	var _ error = gtindata.ErrNoCredentialStore
	var _ error = &gtindata.APIError{}

	var _ func(error) bool = gtindata.IsUnauthorized
	var _ func(error) bool = gtindata.IsForbidden
	var _ func(error) bool = gtindata.IsNotFound
	var _ func(error) bool = gtindata.IsRateLimited
	var _ func(error) bool = gtindata.IsConnection
	var _ func(error) *gtindata.APIError = gtindata.AsAPIError

	var _ credential.Store = credential.NewMemory()
	var _ func(string) (*credential.File, error) = credential.NewFile

	var _ func(*gtindata.Client, context.Context, gtindata.LoginRequest) (gtindata.Token, error) = (*gtindata.Client).Login
	var _ func(*gtindata.Client, context.Context) (gtindata.Identity, error) = (*gtindata.Client).Me
	var _ func(*gtindata.Client, context.Context, gtindata.ListOptions) (gtindata.APIKeyPage, error) = (*gtindata.Client).ListAPIKeys
	var _ func(*gtindata.Client, context.Context, string) (gtindata.APIKeyCreated, error) = (*gtindata.Client).CreateAPIKey
	var _ func(*gtindata.Client, context.Context, int64) (gtindata.APIKey, error) = (*gtindata.Client).RevokeAPIKey
	var _ func(*gtindata.Client, context.Context, int) (gtindata.UsageSummaryData, error) = (*gtindata.Client).UsageSummary
	var _ func(*gtindata.Client, context.Context, string) (gtindata.Product, error) = (*gtindata.Client).ProductByGTIN

	var _ session.Backend = (*gtindata.Client)(nil)
	var _ func(session.Backend, credential.Store) *session.Controller = session.NewController
	var _ func(*session.Controller, context.Context) session.Snapshot = (*session.Controller).Boot

	var _ *guard.Group = guard.NewGroup()
	var _ func(*session.Controller, time.Duration) bool = (*session.Controller).ExpiresWithin
}

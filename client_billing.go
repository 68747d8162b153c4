package gtindata

import (
	"context"
	"net/http"
)

// Billing endpoints live under /api/v1 rather than /v1; the backend
// mounts its billing router on a different prefix than the rest of the
// dashboard surface.
const billingPrefix = "/api/v1/billing"

type planRequest struct {
	Plan string `json:"plan" validate:"required,oneof=basic starter pro advanced"`
}

// Subscription returns the organization's current plan.
func (c *Client) Subscription(ctx context.Context) (Subscription, error) {
	var sub Subscription
	if err := c.send(ctx, http.MethodGet, billingPrefix+"/subscription", nil, nil, true, &sub); err != nil {
		return Subscription{}, err
	}
	return sub, nil
}

// BillingData returns the full billing snapshot: subscription, past
// invoices, and stored payment methods.
func (c *Client) BillingData(ctx context.Context) (BillingData, error) {
	var data BillingData
	if err := c.send(ctx, http.MethodGet, billingPrefix+"/data", nil, nil, true, &data); err != nil {
		return BillingData{}, err
	}
	return data, nil
}

// CreateCheckoutSession starts a billing-provider checkout for plan and
// returns the redirect URL. The call has side effects on the provider
// side and is never retried automatically.
func (c *Client) CreateCheckoutSession(ctx context.Context, plan string) (CheckoutSession, error) {
	req := planRequest{Plan: plan}
	if err := c.checkInput(req); err != nil {
		return CheckoutSession{}, err
	}

	var session CheckoutSession
	if err := c.send(ctx, http.MethodPost, billingPrefix+"/checkout-session", nil, req, true, &session); err != nil {
		return CheckoutSession{}, err
	}
	return session, nil
}

// CustomerPortal returns the billing-provider portal URL for managing
// payment methods and invoices.
func (c *Client) CustomerPortal(ctx context.Context) (BillingPortal, error) {
	var portal BillingPortal
	if err := c.send(ctx, http.MethodPost, billingPrefix+"/customer-portal", nil, nil, true, &portal); err != nil {
		return BillingPortal{}, err
	}
	return portal, nil
}

// SwitchPlan changes the subscription plan directly, without a checkout
// redirect, and returns the updated subscription.
func (c *Client) SwitchPlan(ctx context.Context, plan string) (Subscription, error) {
	req := planRequest{Plan: plan}
	if err := c.checkInput(req); err != nil {
		return Subscription{}, err
	}

	var sub Subscription
	if err := c.send(ctx, http.MethodPost, billingPrefix+"/switch-plan", nil, req, true, &sub); err != nil {
		return Subscription{}, err
	}
	return sub, nil
}

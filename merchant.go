package setto

import (
	"context"
	"fmt"
	"net/http"
)

// CreateMerchant creates a new merchant in Setto Wallet.
//
// User identification (one of):
//   - Email: platform partner creates on behalf of a user
//   - OneTimeToken: individual partner creates directly, user taken from the token
func (c *Client) CreateMerchant(ctx context.Context, req *CreateMerchantRequest) (*CreateMerchantResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("create merchant: %w", invalidArgument("request", "must not be nil"))
	}
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("create merchant: %w", err)
	}

	var resp CreateMerchantResponse
	if err := c.do(ctx, opCreateMerchant, http.MethodPost, "/api/merchant", req, &resp); err != nil {
		return nil, fmt.Errorf("create merchant: %w", err)
	}
	return &resp, nil
}

// GetMerchant retrieves merchant information.
func (c *Client) GetMerchant(ctx context.Context, merchantID string) (*Merchant, error) {
	if err := requireNonEmpty("merchant_id", merchantID); err != nil {
		return nil, fmt.Errorf("get merchant: %w", err)
	}

	var merchant Merchant
	if err := c.do(ctx, opGetMerchant, http.MethodGet, "/api/merchant/"+pathSegment(merchantID), nil, &merchant); err != nil {
		return nil, fmt.Errorf("get merchant: %w", err)
	}
	return &merchant, nil
}

// UpdateMerchant updates merchant payout addresses and details.
// Requires a One-Time Token with scope UPDATE_MERCHANT.
func (c *Client) UpdateMerchant(ctx context.Context, req *UpdateMerchantRequest) (*Merchant, error) {
	if req == nil {
		return nil, fmt.Errorf("update merchant: %w", invalidArgument("request", "must not be nil"))
	}
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("update merchant: %w", err)
	}

	var merchant Merchant
	if err := c.do(ctx, opUpdateMerchant, http.MethodPut, "/api/merchant/"+pathSegment(req.MerchantID), req, &merchant); err != nil {
		return nil, fmt.Errorf("update merchant: %w", err)
	}
	return &merchant, nil
}

// UpdateMerchantProfile updates only merchant display info (name, photo_url).
// No One-Time Token is required; the partner API key is enough.
func (c *Client) UpdateMerchantProfile(ctx context.Context, req *UpdateMerchantProfileRequest) (*MerchantProfile, error) {
	if req == nil {
		return nil, fmt.Errorf("update merchant profile: %w", invalidArgument("request", "must not be nil"))
	}
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("update merchant profile: %w", err)
	}

	var profile MerchantProfile
	if err := c.do(ctx, opUpdateMerchantProfile, http.MethodPatch, "/api/merchant/"+pathSegment(req.MerchantID)+"/profile", req, &profile); err != nil {
		return nil, fmt.Errorf("update merchant profile: %w", err)
	}
	return &profile, nil
}

package setto

import (
	"context"
	"fmt"
	"net/http"
)

// GetVerificationStatus checks if a user has completed phone verification.
// Used before store/merchant creation to enforce the verification requirement.
func (c *Client) GetVerificationStatus(ctx context.Context, userID string) (*VerificationStatus, error) {
	if err := requireNonEmpty("user_id", userID); err != nil {
		return nil, fmt.Errorf("get verification status: %w", err)
	}

	var status VerificationStatus
	if err := c.do(ctx, opGetVerificationStatus, http.MethodGet, "/api/partner/user/"+pathSegment(userID)+"/verification", nil, &status); err != nil {
		return nil, fmt.Errorf("get verification status: %w", err)
	}
	return &status, nil
}

// ExchangeAccountLinkToken exchanges a one-time link token for user info.
// The platform consumes the token atomically; a second exchange fails with
// PaymentOTTAlreadyUsed.
func (c *Client) ExchangeAccountLinkToken(ctx context.Context, linkToken string) (*AccountLinkInfo, error) {
	if err := requireNonEmpty("link_token", linkToken); err != nil {
		return nil, fmt.Errorf("exchange account link token: %w", err)
	}

	var info AccountLinkInfo
	reqBody := &exchangeAccountLinkTokenRequest{LinkToken: linkToken}
	if err := c.do(ctx, opExchangeAccountLinkToken, http.MethodPost, "/api/partner/exchange-link-token", reqBody, &info); err != nil {
		return nil, fmt.Errorf("exchange account link token: %w", err)
	}
	return &info, nil
}

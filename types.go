package setto

import "time"

// String returns a pointer to s, for the optional fields of update requests.
func String(s string) *string {
	return &s
}

// ---- Merchant types ----

// Merchant is a merchant profile as stored by the platform.
type Merchant struct {
	MerchantID       string `json:"merchant_id"`
	Name             string `json:"name"`
	PhotoURL         string `json:"photo_url"`
	PayoutEVMAddress string `json:"payout_evm_address"`
	PayoutSVMAddress string `json:"payout_svm_address,omitempty"`
	FeeRate          string `json:"fee_rate,omitempty"`
	Email            string `json:"email,omitempty"`
}

// CreateMerchantRequest creates a merchant. Name and PayoutEVMAddress are
// required; empty optional fields are left out of the request body.
//
// The owning user is identified either by Email (platform partners creating on
// behalf of a user) or by OneTimeToken (individual partners, verified flow).
type CreateMerchantRequest struct {
	Name             string `json:"name"`
	PayoutEVMAddress string `json:"payout_evm_address"`
	Email            string `json:"email,omitempty"`
	PhotoURL         string `json:"photo_url,omitempty"`
	PayoutSVMAddress string `json:"payout_svm_address,omitempty"`
	FeeRate          string `json:"fee_rate,omitempty"`
	OneTimeToken     string `json:"one_time_token,omitempty"`
}

// CreateMerchantResponse carries the ID assigned by the platform.
type CreateMerchantResponse struct {
	MerchantID string `json:"merchant_id"`
}

// UpdateMerchantRequest changes payout addresses and other merchant fields.
// OneTimeToken must be freshly issued with the UPDATE_MERCHANT scope. Nil fields
// are left untouched by the platform.
type UpdateMerchantRequest struct {
	MerchantID       string  `json:"merchant_id"`
	OneTimeToken     string  `json:"one_time_token"`
	Name             *string `json:"name,omitempty"`
	PhotoURL         *string `json:"photo_url,omitempty"`
	PayoutEVMAddress *string `json:"payout_evm_address,omitempty"`
	PayoutSVMAddress *string `json:"payout_svm_address,omitempty"`
}

// UpdateMerchantProfileRequest changes display information only and needs no
// one-time token.
type UpdateMerchantProfileRequest struct {
	MerchantID string  `json:"merchant_id"`
	Name       *string `json:"name,omitempty"`
	PhotoURL   *string `json:"photo_url,omitempty"`
}

// MerchantProfile is the display part of a merchant.
type MerchantProfile struct {
	MerchantID string `json:"merchant_id"`
	Name       string `json:"name"`
	PhotoURL   string `json:"photo_url"`
}

// ---- Partner types ----

// VerificationStatus is the phone verification state of a user.
type VerificationStatus struct {
	IsPhoneVerified bool  `json:"is_phone_verified"`
	VerifiedAt      int64 `json:"verified_at"` // epoch seconds, 0 if not verified
}

// VerifiedTime returns VerifiedAt as a time, or the zero time when unverified.
func (v *VerificationStatus) VerifiedTime() time.Time {
	if v.VerifiedAt == 0 {
		return time.Time{}
	}
	return time.Unix(v.VerifiedAt, 0)
}

// AccountLinkInfo is the identity released by a consumed account link token.
type AccountLinkInfo struct {
	UserID          string `json:"user_id"`
	Email           string `json:"email"`
	IsPhoneVerified bool   `json:"is_phone_verified"`
}

type exchangeAccountLinkTokenRequest struct {
	LinkToken string `json:"link_token"`
}

// ---- JWT Claims ----

// Claims are the already verified claims of a Wallet ID token. See package
// idtoken for verification.
type Claims struct {
	UserID        string    `json:"user_id"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	IssuedAt      time.Time `json:"issued_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Expired reports whether the claims are past their expiry at now.
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

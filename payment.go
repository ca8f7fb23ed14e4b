package setto

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSubmitted PaymentStatus = "submitted"
	PaymentStatusIncluded  PaymentStatus = "included"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// Valid reports whether s is one of the five wire states.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusSubmitted, PaymentStatusIncluded,
		PaymentStatusFailed, PaymentStatusCancelled:
		return true
	}
	return false
}

// PaymentInfo is the platform's record of a payment.
type PaymentInfo struct {
	PaymentID   string        `json:"payment_id"`
	Status      PaymentStatus `json:"status"`
	TxHash      string        `json:"tx_hash,omitempty"`
	Amount      string        `json:"amount"`
	Currency    string        `json:"currency"`
	CreatedAt   int64         `json:"created_at"`
	CompletedAt int64         `json:"completed_at,omitempty"`
}

// IsComplete returns true if the payment was included on chain.
func (p *PaymentInfo) IsComplete() bool {
	return p.Status == PaymentStatusIncluded
}

// IsFailed returns true if the payment failed or was cancelled.
func (p *PaymentInfo) IsFailed() bool {
	return p.Status == PaymentStatusFailed || p.Status == PaymentStatusCancelled
}

// IsPending returns true if the payment has not reached a final state yet.
func (p *PaymentInfo) IsPending() bool {
	return p.Status == PaymentStatusPending || p.Status == PaymentStatusSubmitted
}

// AmountDecimal parses Amount without going through float64.
func (p *PaymentInfo) AmountDecimal() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(p.Amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("setto: invalid payment amount %q: %w", p.Amount, err)
	}
	return d, nil
}

// CompletedTime returns CompletedAt as a time, or the zero time if unset.
func (p *PaymentInfo) CompletedTime() time.Time {
	if p.CompletedAt == 0 {
		return time.Time{}
	}
	return time.Unix(p.CompletedAt, 0)
}

// GetPaymentStatus retrieves the status of a payment.
func (c *Client) GetPaymentStatus(ctx context.Context, paymentID string) (*PaymentInfo, error) {
	if paymentID == "" {
		return nil, fmt.Errorf("get payment status: %w", invalidArgument("payment_id", "must not be empty"))
	}

	var info PaymentInfo
	if err := c.do(ctx, opGetPaymentStatus, http.MethodGet, "/api/external/payment/"+pathSegment(paymentID), nil, &info); err != nil {
		return nil, fmt.Errorf("get payment status: %w", err)
	}
	return &info, nil
}

// PollPayment calls GetPaymentStatus every interval until the payment leaves the
// pending states or ctx is done. The first error ends polling and is returned;
// ctx ending, between or during requests, is a NetworkError.
func (c *Client) PollPayment(ctx context.Context, paymentID string, interval time.Duration) (*PaymentInfo, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("poll payment: %w", invalidArgument("interval", "must be positive"))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		info, err := c.GetPaymentStatus(ctx, paymentID)
		if err != nil {
			return nil, fmt.Errorf("poll payment: %w", err)
		}
		if !info.IsPending() {
			return info, nil
		}

		c.cfg.logger.Debug(fmt.Sprintf("Payment %s still %s, next check in %s", paymentID, info.Status, interval), logCategory)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("poll payment: %w", &NetworkError{Cause: ctx.Err()})
		case <-ticker.C:
		}
	}
}

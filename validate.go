package setto

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
)

func requireNonEmpty(field, value string) error {
	if value == "" {
		return invalidArgument(field, "must not be empty")
	}
	return nil
}

// validateEVMAddress accepts 0x-prefixed or bare 20-byte hex addresses. The
// checksum is left to the platform.
func validateEVMAddress(field, addr string) error {
	if !common.IsHexAddress(addr) {
		return invalidArgument(field, "not a valid EVM address")
	}
	return nil
}

func validateSVMAddress(field, addr string) error {
	if _, err := solana.PublicKeyFromBase58(addr); err != nil {
		return invalidArgument(field, "not a valid SVM address")
	}
	return nil
}

func (r *CreateMerchantRequest) validate() error {
	if err := requireNonEmpty("name", r.Name); err != nil {
		return err
	}
	if err := requireNonEmpty("payout_evm_address", r.PayoutEVMAddress); err != nil {
		return err
	}
	if err := validateEVMAddress("payout_evm_address", r.PayoutEVMAddress); err != nil {
		return err
	}
	if r.PayoutSVMAddress != "" {
		return validateSVMAddress("payout_svm_address", r.PayoutSVMAddress)
	}
	return nil
}

func (r *UpdateMerchantRequest) validate() error {
	if err := requireNonEmpty("merchant_id", r.MerchantID); err != nil {
		return err
	}
	if err := requireNonEmpty("one_time_token", r.OneTimeToken); err != nil {
		return err
	}
	// An empty address is sent as-is for the platform to accept or reject
	if r.PayoutEVMAddress != nil && *r.PayoutEVMAddress != "" {
		if err := validateEVMAddress("payout_evm_address", *r.PayoutEVMAddress); err != nil {
			return err
		}
	}
	if r.PayoutSVMAddress != nil && *r.PayoutSVMAddress != "" {
		return validateSVMAddress("payout_svm_address", *r.PayoutSVMAddress)
	}
	return nil
}

func (r *UpdateMerchantProfileRequest) validate() error {
	return requireNonEmpty("merchant_id", r.MerchantID)
}

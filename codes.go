package setto

import "strings"

// SystemCode is a platform-internal error code. The platform may add codes at any
// time, so values outside the constants below are kept as-is.
type SystemCode string

// System error codes.
const (
	SystemOK          SystemCode = "SYSTEM_OK"
	SystemInternal    SystemCode = "SYSTEM_INTERNAL"
	SystemRPCFailed   SystemCode = "SYSTEM_RPC_FAILED"
	SystemRateLimited SystemCode = "SYSTEM_RATE_LIMITED"
)

// Known reports whether c is one of the codes this SDK version was built with.
func (c SystemCode) Known() bool {
	switch c {
	case SystemOK, SystemInternal, SystemRPCFailed, SystemRateLimited:
		return true
	}
	return false
}

// PaymentCode is a payment-domain error code.
type PaymentCode string

// Payment error codes.
const (
	PaymentOK                         PaymentCode = "PAYMENT_OK"
	PaymentNotFound                   PaymentCode = "PAYMENT_NOT_FOUND"
	PaymentMerchantNotFound           PaymentCode = "PAYMENT_MERCHANT_NOT_FOUND"
	PaymentMerchantNameRequired       PaymentCode = "PAYMENT_MERCHANT_NAME_REQUIRED"
	PaymentPayoutAddressRequired      PaymentCode = "PAYMENT_PAYOUT_ADDRESS_REQUIRED"
	PaymentInvalidEVMAddress          PaymentCode = "PAYMENT_INVALID_EVM_ADDRESS"
	PaymentInvalidSVMAddress          PaymentCode = "PAYMENT_INVALID_SVM_ADDRESS"
	PaymentOTTRequired                PaymentCode = "PAYMENT_OTT_REQUIRED"
	PaymentOTTInvalid                 PaymentCode = "PAYMENT_OTT_INVALID"
	PaymentOTTExpired                 PaymentCode = "PAYMENT_OTT_EXPIRED"
	PaymentOTTAlreadyUsed             PaymentCode = "PAYMENT_OTT_ALREADY_USED"
	PaymentOTTScopeMismatch           PaymentCode = "PAYMENT_OTT_SCOPE_MISMATCH"
	PaymentStoreLimitExceeded         PaymentCode = "PAYMENT_STORE_LIMIT_EXCEEDED"
	PaymentAmountRequired             PaymentCode = "PAYMENT_AMOUNT_REQUIRED"
	PaymentAmountTooLow               PaymentCode = "PAYMENT_AMOUNT_TOO_LOW"
	PaymentAmountTooHigh              PaymentCode = "PAYMENT_AMOUNT_TOO_HIGH"
	PaymentAmountInvalidFormat        PaymentCode = "PAYMENT_AMOUNT_INVALID_FORMAT"
	PaymentProductNameRequired        PaymentCode = "PAYMENT_PRODUCT_NAME_REQUIRED"
	PaymentProductNameTooShort        PaymentCode = "PAYMENT_PRODUCT_NAME_TOO_SHORT"
	PaymentProductNameTooLong         PaymentCode = "PAYMENT_PRODUCT_NAME_TOO_LONG"
	PaymentProductDescTooLong         PaymentCode = "PAYMENT_PRODUCT_DESC_TOO_LONG"
	PaymentInvalidStock               PaymentCode = "PAYMENT_INVALID_STOCK"
	PaymentProductTagTooLong          PaymentCode = "PAYMENT_PRODUCT_TAG_TOO_LONG"
	PaymentProductMainImagesTooMany   PaymentCode = "PAYMENT_PRODUCT_MAIN_IMAGES_TOO_MANY"
	PaymentProductDetailImagesTooMany PaymentCode = "PAYMENT_PRODUCT_DETAIL_IMAGES_TOO_MANY"
	PaymentProductLimitExceeded       PaymentCode = "PAYMENT_PRODUCT_LIMIT_EXCEEDED"
)

var knownPaymentCodes = map[PaymentCode]struct{}{
	PaymentOK: {}, PaymentNotFound: {}, PaymentMerchantNotFound: {},
	PaymentMerchantNameRequired: {}, PaymentPayoutAddressRequired: {},
	PaymentInvalidEVMAddress: {}, PaymentInvalidSVMAddress: {},
	PaymentOTTRequired: {}, PaymentOTTInvalid: {}, PaymentOTTExpired: {},
	PaymentOTTAlreadyUsed: {}, PaymentOTTScopeMismatch: {},
	PaymentStoreLimitExceeded: {}, PaymentAmountRequired: {},
	PaymentAmountTooLow: {}, PaymentAmountTooHigh: {},
	PaymentAmountInvalidFormat: {}, PaymentProductNameRequired: {},
	PaymentProductNameTooShort: {}, PaymentProductNameTooLong: {},
	PaymentProductDescTooLong: {}, PaymentInvalidStock: {},
	PaymentProductTagTooLong: {}, PaymentProductMainImagesTooMany: {},
	PaymentProductDetailImagesTooMany: {}, PaymentProductLimitExceeded: {},
}

// Known reports whether c is one of the codes this SDK version was built with.
func (c PaymentCode) Known() bool {
	_, ok := knownPaymentCodes[c]
	return ok
}

// IsOTTFailure reports whether the code rejects the supplied one-time token.
func (c PaymentCode) IsOTTFailure() bool {
	return strings.HasPrefix(string(c), "PAYMENT_OTT_")
}

// ValidationCode is a request validation error code.
type ValidationCode string

// Validation error codes.
const (
	ValidationOK             ValidationCode = "VALIDATION_OK"
	ValidationRequiredField  ValidationCode = "VALIDATION_REQUIRED_FIELD"
	ValidationInvalidFormat  ValidationCode = "VALIDATION_INVALID_FORMAT"
	ValidationInvalidAddress ValidationCode = "VALIDATION_INVALID_ADDRESS"
	ValidationInvalidAmount  ValidationCode = "VALIDATION_INVALID_AMOUNT"
	ValidationInvalidChainID ValidationCode = "VALIDATION_INVALID_CHAIN_ID"
	ValidationInvalidID      ValidationCode = "VALIDATION_INVALID_ID"
	ValidationInvalidRequest ValidationCode = "VALIDATION_INVALID_REQUEST"
)

// Known reports whether c is one of the codes this SDK version was built with.
func (c ValidationCode) Known() bool {
	switch c {
	case ValidationOK, ValidationRequiredField, ValidationInvalidFormat,
		ValidationInvalidAddress, ValidationInvalidAmount, ValidationInvalidChainID,
		ValidationInvalidID, ValidationInvalidRequest:
		return true
	}
	return false
}

const (
	systemPrefix     = "SYSTEM_"
	paymentPrefix    = "PAYMENT_"
	validationPrefix = "VALIDATION_"
)

package errors

import "fmt"

// ShortfallDetails is attached to INSUFFICIENT_CREDITS errors.
type ShortfallDetails struct {
	Required  int64 `json:"required"`
	Available int64 `json:"available"`
	Shortfall int64 `json:"shortfall"`
}

func InsufficientCredits(required, available int64) *Error {
	shortfall := required - available
	if shortfall < 0 {
		shortfall = 0
	}
	msg := fmt.Sprintf("%d credits required, %d available", required, available)
	return New(CodeInsufficientCredits, msg).WithDetails(ShortfallDetails{
		Required:  required,
		Available: available,
		Shortfall: shortfall,
	})
}

// Shortfall extracts the credit shortfall from an INSUFFICIENT_CREDITS error.
func Shortfall(err error) (ShortfallDetails, bool) {
	typed := As(err)
	if typed == nil || typed.code != CodeInsufficientCredits {
		return ShortfallDetails{}, false
	}
	details, ok := typed.details.(ShortfallDetails)
	return details, ok
}

func Storage(err error, message string) *Error {
	return Wrap(CodeStorage, err, message)
}

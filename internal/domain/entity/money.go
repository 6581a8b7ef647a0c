package entity

import (
	"fmt"
	"strconv"
	"strings"

	errs "github.com/ledgerkit/ledger-api/internal/domain/error"
)

// MaxDecimalPlaces defines the maximum number of decimal places allowed for money amounts
const MaxDecimalPlaces = 2

// ValidateAndConvertAmount validates and converts a non-negative decimal string
// to integer cents. Uses a string-based approach to sidestep floating point:
// - no decimal point: append "00"
// - one digit after the point: append "0"
// - two digits: strip the point
// Returns the amount in cents and an error if validation fails.
func ValidateAndConvertAmount(amount string) (int64, error) {
	amount = strings.TrimSpace(amount)
	if len(amount) == 0 {
		return 0, fmt.Errorf("%w: empty value", errs.ErrInvalidAmount)
	}

	if strings.HasPrefix(amount, "-") {
		return 0, errs.ErrNegativeAmount
	}

	parts := strings.Split(amount, ".")
	if len(parts) > 2 {
		return 0, fmt.Errorf("%w: invalid number format", errs.ErrInvalidAmount)
	}

	var integerValue string

	if len(parts) == 1 {
		integerValue = parts[0] + "00"
	} else {
		switch len(parts[1]) {
		case 0:
			integerValue = parts[0] + "00"
		case 1:
			integerValue = parts[0] + parts[1] + "0"
		case 2:
			integerValue = parts[0] + parts[1]
		default:
			return 0, fmt.Errorf("%w: maximum %d decimal places allowed", errs.ErrInvalidAmount, MaxDecimalPlaces)
		}
	}

	value, err := strconv.ParseInt(integerValue, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errs.ErrInvalidAmount, err.Error())
	}

	return value, nil
}

// ParseSignedAmount converts a decimal string that may carry a leading minus
// sign to integer cents. Used for opening balances, where a negative value is
// a legal starting position (overdraft, existing credit-card debt).
func ParseSignedAmount(amount string) (int64, error) {
	amount = strings.TrimSpace(amount)
	negative := strings.HasPrefix(amount, "-")
	if negative {
		amount = amount[1:]
	}

	cents, err := ValidateAndConvertAmount(amount)
	if err != nil {
		return 0, err
	}
	if negative {
		return -cents, nil
	}
	return cents, nil
}

// AmountInCentsToString converts integer cents to a decimal string.
// For example 1015 becomes "10.15" and -1000 becomes "-10.00".
func AmountInCentsToString(amountInCents int64) string {
	isNegative := amountInCents < 0
	if isNegative {
		amountInCents = -amountInCents
	}

	amountStr := fmt.Sprintf("%d", amountInCents)

	for len(amountStr) < 3 {
		amountStr = "0" + amountStr
	}

	decimalPos := len(amountStr) - 2
	wholePart := amountStr[:decimalPos]
	decimalPart := amountStr[decimalPos:]

	if wholePart == "" {
		wholePart = "0"
	}

	if isNegative {
		return "-" + wholePart + "." + decimalPart
	}
	return wholePart + "." + decimalPart
}

// EnsureTwoDecimalPlaces normalizes a string representation of money to
// exactly 2 decimal places. "10.1" becomes "10.10", "10" becomes "10.00",
// "10.156" is truncated to "10.15".
func EnsureTwoDecimalPlaces(amount string) string {
	if len(strings.TrimSpace(amount)) == 0 {
		return "0.00"
	}

	parts := strings.Split(amount, ".")

	if len(parts) == 1 {
		return parts[0] + ".00"
	}

	wholePart := parts[0]
	decimalPart := parts[1]

	switch len(decimalPart) {
	case 0:
		return wholePart + ".00"
	case 1:
		return wholePart + "." + decimalPart + "0"
	case 2:
		return wholePart + "." + decimalPart
	default:
		return wholePart + "." + decimalPart[:2]
	}
}

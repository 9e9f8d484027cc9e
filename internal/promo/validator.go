// Package promo validates submitted promo codes against the promotion
// catalog. Validation is pure: the catalog slice and "now" are injected.
package promo

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/velstore/storefront/internal/domain"
)

// FailureReason is the machine-readable outcome of a failed validation.
type FailureReason string

const (
	ReasonCodeNotFound      FailureReason = "code_not_found"
	ReasonCodeInactive      FailureReason = "code_inactive"
	ReasonExpired           FailureReason = "expired"
	ReasonUsageLimitReached FailureReason = "usage_limit_reached"
	ReasonBelowMinimum      FailureReason = "below_minimum"
)

// ValidationError is an expected, recoverable outcome of user input, carrying
// the interpolation values the UI needs for messaging.
type ValidationError struct {
	Code      string
	Reason    FailureReason
	Shortfall decimal.Decimal // set for ReasonBelowMinimum
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonBelowMinimum:
		return fmt.Sprintf("promo code %s: order is %s below the minimum", e.Code, e.Shortfall)
	default:
		return fmt.Sprintf("promo code %s: %s", e.Code, e.Reason)
	}
}

// NormalizeCode makes promo codes case-insensitive at the data-model level.
// Both the catalog writes and every lookup go through this.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks a submitted code against the catalog. Checks run in a fixed
// order and the first failing check wins: not found, inactive, date window,
// usage limit, minimum order amount. On success the matched promotion is
// returned; the caller increments its usage count on redemption.
func Validate(code string, orderAmount decimal.Decimal, catalog []domain.Promotion, now time.Time) (*domain.Promotion, error) {
	normalized := NormalizeCode(code)

	var match *domain.Promotion
	for i := range catalog {
		if NormalizeCode(catalog[i].Code) == normalized {
			match = &catalog[i]
			break
		}
	}
	if match == nil {
		return nil, &ValidationError{Code: normalized, Reason: ReasonCodeNotFound}
	}
	if !match.Active {
		return nil, &ValidationError{Code: normalized, Reason: ReasonCodeInactive}
	}
	if !match.WithinWindow(now) {
		return nil, &ValidationError{Code: normalized, Reason: ReasonExpired}
	}
	if match.UsageExhausted() {
		return nil, &ValidationError{Code: normalized, Reason: ReasonUsageLimitReached}
	}
	if orderAmount.LessThan(match.MinOrderAmount) {
		return nil, &ValidationError{
			Code:      normalized,
			Reason:    ReasonBelowMinimum,
			Shortfall: match.MinOrderAmount.Sub(orderAmount),
		}
	}
	return match, nil
}

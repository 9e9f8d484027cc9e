// Package payment simulates a card processor. All payment flows in this
// system are simulated; the processor sits behind an interface so checkout
// does not care.
package payment

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

var ErrChargeRefused = errors.New("charge refused")

type Receipt struct {
	TransactionID string
	CheckoutID    string
	Amount        decimal.Decimal
	ChargedAt     time.Time
}

type Processor interface {
	Charge(ctx context.Context, checkoutID string, amount decimal.Decimal) (*Receipt, error)
}

// OutcomeSource decides whether a simulated charge succeeds; swap it out in
// tests for deterministic behavior.
type OutcomeSource interface {
	Outcome() (ok bool, refusal string)
}

type RandomOutcome struct{}

func (RandomOutcome) Outcome() (bool, string) {
	return classify(rand.Intn(101)) // 101 because Intn is exclusive of the upper bound
}

func classify(n int) (bool, string) {
	switch {
	case n < 95:
		return true, ""
	case n < 97:
		return false, "insufficient funds"
	case n < 99:
		return false, "card declined"
	default:
		return false, "processor unavailable"
	}
}

// AlwaysApprove is for local runs and tests that must not flake.
type AlwaysApprove struct{}

func (AlwaysApprove) Outcome() (bool, string) { return true, "" }

type Simulator struct {
	source OutcomeSource
}

func NewSimulator(source OutcomeSource) *Simulator {
	return &Simulator{source: source}
}

func (s *Simulator) Charge(_ context.Context, checkoutID string, amount decimal.Decimal) (*Receipt, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("cannot charge negative amount %s", amount)
	}

	ok, refusal := s.source.Outcome()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrChargeRefused, refusal)
	}

	now := time.Now()
	return &Receipt{
		TransactionID: fmt.Sprintf("TXN-%d", now.UnixNano()),
		CheckoutID:    checkoutID,
		Amount:        amount,
		ChargedAt:     now,
	}, nil
}

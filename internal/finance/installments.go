package finance

import (
	"errors"
	"fmt"
	"math"
	"time"

	"cashflow/internal/core"
)

var (
	ErrInvalidInstallments = core.ErrInvalidInstallments
	ErrNegativeAmount      = errors.New("amount must not be negative")
)

// InstallmentRequest is a purchase to split across card statements.
// Amount is a decimal currency amount; it is converted to cents here and nowhere else.
type InstallmentRequest struct {
	PurchaseDate core.Date
	Amount       float64
	Installments int
	ClosingDay   int
	DueDay       int
}

// Installment is one slice of a purchase, billed on its own statement.
type Installment struct {
	Index          int
	Amount         core.Money
	StatementMonth time.Month
	StatementYear  int
	DueDate        core.Date
	ID             string
}

// InstallmentID is the stable identifier of the index-th slice of a purchase.
func InstallmentID(purchase core.Date, index int) string {
	return fmt.Sprintf("%s-i%d", purchase.String(), index)
}

// SplitCents divides total into n parts. The first part absorbs the remainder so the
// parts always add back up to total.
func SplitCents(total int64, n int) []int64 {
	base := total / int64(n)
	remainder := total - base*int64(n)

	parts := make([]int64, n)
	for i := range parts {
		parts[i] = base
	}
	parts[0] += remainder
	return parts
}

// GenerateInstallments splits a purchase into req.Installments slices with cent-exact
// amounts. The first slice follows the purchase's billing cycle; slice k lands k-1
// statements after it with the same due-day rule.
func GenerateInstallments(req InstallmentRequest) ([]Installment, error) {
	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		return nil, fmt.Errorf("%w: got %v", core.ErrInvalidAmount, req.Amount)
	}
	if req.Amount < 0 {
		return nil, fmt.Errorf("%w: got %v", ErrNegativeAmount, req.Amount)
	}
	return GenerateInstallmentsCents(req.PurchaseDate, core.MoneyFromFloat(req.Amount), req.Installments, req.ClosingDay, req.DueDay)
}

// GenerateInstallmentsCents is GenerateInstallments for callers already holding cents.
func GenerateInstallmentsCents(purchase core.Date, total core.Money, installments, closingDay, dueDay int) ([]Installment, error) {
	if installments < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidInstallments, installments)
	}
	if total.Cents < 0 {
		return nil, fmt.Errorf("%w: got %d cents", ErrNegativeAmount, total.Cents)
	}

	parts := SplitCents(total.Cents, installments)
	first := AssignBillingCycle(purchase, closingDay, dueDay)

	out := make([]Installment, 0, installments)
	for i, cents := range parts {
		cycle := first
		if i > 0 {
			cycle = assignmentFor(core.AddMonths(first.Statement(), i, 1), closingDay, dueDay)
		}
		index := i + 1
		out = append(out, Installment{
			Index:          index,
			Amount:         core.Money{Cents: cents},
			StatementMonth: cycle.StatementMonth,
			StatementYear:  cycle.StatementYear,
			DueDate:        cycle.DueDate,
			ID:             InstallmentID(purchase, index),
		})
	}
	return out, nil
}

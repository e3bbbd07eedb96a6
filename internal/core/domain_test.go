package core

import (
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Kind:        Expense,
		Date:        NewDate(2025, 1, 1),
		Description: "ok",
		Amount:      Money{Cents: 100},
		Category:    "Casa",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Kind: Expense, Date: Date{}, Description: "a", Amount: Money{Cents: 1}, Category: "c"},
		{Kind: Expense, Date: NewDate(2025, 1, 1), Description: "", Amount: Money{Cents: 1}, Category: "c"},
		{Kind: Expense, Date: NewDate(2025, 1, 1), Description: "a", Amount: Money{Cents: 0}, Category: "c"},
		{Kind: Expense, Date: NewDate(2025, 1, 1), Description: "a", Amount: Money{Cents: 1}, Category: ""},
		{Kind: "transfer", Date: NewDate(2025, 1, 1), Description: "a", Amount: Money{Cents: 1}, Category: "c"},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionNet(t *testing.T) {
	in := Transaction{Kind: Income, Amount: Money{Cents: 500}}
	out := Transaction{Kind: Expense, Amount: Money{Cents: 200}}
	if in.Net() != 500 {
		t.Errorf("income Net() = %d, want 500", in.Net())
	}
	if out.Net() != -200 {
		t.Errorf("expense Net() = %d, want -200", out.Net())
	}
}

func TestParsePattern(t *testing.T) {
	tests := []struct {
		in   string
		want Pattern
	}{
		{"weekly", Weekly},
		{" Yearly ", Yearly},
		{"monthly", Monthly},
		{"", Monthly},
		{"fortnightly", Monthly},
	}
	for _, tt := range tests {
		if got := ParsePattern(tt.in); got != tt.want {
			t.Errorf("ParsePattern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRecurringSeriesValidate(t *testing.T) {
	base := RecurringSeries{
		Kind:        Expense,
		Anchor:      NewDate(2025, 1, 31),
		Pattern:     Monthly,
		TargetDay:   31,
		Description: "Affitto",
		Amount:      Money{Cents: 90000},
		Category:    "Casa",
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	endBefore := base
	endBefore.EndDate = NewDate(2024, 12, 1)
	if err := endBefore.Validate(); err == nil {
		t.Error("expected error for end date before anchor")
	}

	badDay := base
	badDay.TargetDay = 32
	if err := badDay.Validate(); err == nil {
		t.Error("expected error for target day 32")
	}

	badPattern := base
	badPattern.Pattern = "daily"
	if err := badPattern.Validate(); err == nil {
		t.Error("expected error for unsupported pattern")
	}
}

func TestCardValidate(t *testing.T) {
	tests := []struct {
		name string
		card Card
		ok   bool
	}{
		{"valid", Card{Name: "Visa", ClosingDay: 25, DueDay: 5}, true},
		{"closing zero", Card{Name: "Visa", ClosingDay: 0, DueDay: 5}, false},
		{"due 32", Card{Name: "Visa", ClosingDay: 10, DueDay: 32}, false},
		{"no name", Card{ClosingDay: 10, DueDay: 20}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.card.Validate()
			if tt.ok != (err == nil) {
				t.Errorf("Validate() error = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

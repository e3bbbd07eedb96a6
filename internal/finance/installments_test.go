package finance

import (
	"errors"
	"math"
	"testing"
	"time"

	"cashflow/internal/core"
)

func TestGenerateInstallmentsRemainderGoesFirst(t *testing.T) {
	got, err := GenerateInstallments(InstallmentRequest{
		PurchaseDate: core.NewDate(2025, time.March, 10),
		Amount:       100.01,
		Installments: 3,
		ClosingDay:   25,
		DueDay:       5,
	})
	if err != nil {
		t.Fatalf("GenerateInstallments() error = %v", err)
	}

	want := []int64{3335, 3333, 3333}
	for i, inst := range got {
		if inst.Amount.Cents != want[i] {
			t.Errorf("installment %d = %d cents, want %d", inst.Index, inst.Amount.Cents, want[i])
		}
	}
}

func TestGenerateInstallmentsSumIsExact(t *testing.T) {
	amounts := []float64{0, 0.01, 0.1, 1, 9.99, 10, 33.33, 100.01, 1234.56, 999999.99, 0.1 + 0.2}
	for _, amount := range amounts {
		for n := 1; n <= 36; n++ {
			got, err := GenerateInstallments(InstallmentRequest{
				PurchaseDate: core.NewDate(2025, time.January, 31),
				Amount:       amount,
				Installments: n,
				ClosingDay:   10,
				DueDay:       20,
			})
			if err != nil {
				t.Fatalf("GenerateInstallments(%v, %d) error = %v", amount, n, err)
			}
			if len(got) != n {
				t.Fatalf("GenerateInstallments(%v, %d) returned %d installments", amount, n, len(got))
			}
			var sum int64
			for _, inst := range got {
				sum += inst.Amount.Cents
				if inst.Amount.Cents < got[len(got)-1].Amount.Cents {
					t.Fatalf("installment %d smaller than the last one", inst.Index)
				}
			}
			if want := core.CentsFromFloat(amount); sum != want {
				t.Fatalf("GenerateInstallments(%v, %d) sums to %d, want %d", amount, n, sum, want)
			}
		}
	}
}

func TestGenerateInstallmentsSchedule(t *testing.T) {
	got, err := GenerateInstallments(InstallmentRequest{
		PurchaseDate: core.NewDate(2025, time.November, 28),
		Amount:       300,
		Installments: 3,
		ClosingDay:   25,
		DueDay:       5,
	})
	if err != nil {
		t.Fatalf("GenerateInstallments() error = %v", err)
	}

	want := []struct {
		month time.Month
		year  int
		due   string
		id    string
	}{
		{time.December, 2025, "2026-01-05", "2025-11-28-i1"},
		{time.January, 2026, "2026-02-05", "2025-11-28-i2"},
		{time.February, 2026, "2026-03-05", "2025-11-28-i3"},
	}
	for i, w := range want {
		inst := got[i]
		if inst.Index != i+1 {
			t.Errorf("installment %d index = %d", i, inst.Index)
		}
		if inst.StatementMonth != w.month || inst.StatementYear != w.year {
			t.Errorf("installment %d statement = %s %d, want %s %d", inst.Index, inst.StatementMonth, inst.StatementYear, w.month, w.year)
		}
		if inst.DueDate.String() != w.due {
			t.Errorf("installment %d due = %s, want %s", inst.Index, inst.DueDate, w.due)
		}
		if inst.ID != w.id {
			t.Errorf("installment %d id = %s, want %s", inst.Index, inst.ID, w.id)
		}
		if inst.Amount.Cents != 10000 {
			t.Errorf("installment %d amount = %d, want 10000", inst.Index, inst.Amount.Cents)
		}
	}
}

func TestGenerateInstallmentsClampsDueDayPerMonth(t *testing.T) {
	got, err := GenerateInstallments(InstallmentRequest{
		PurchaseDate: core.NewDate(2025, time.January, 5),
		Amount:       90,
		Installments: 4,
		ClosingDay:   10,
		DueDay:       31,
	})
	if err != nil {
		t.Fatalf("GenerateInstallments() error = %v", err)
	}
	want := []string{"2025-01-31", "2025-02-28", "2025-03-31", "2025-04-30"}
	for i, inst := range got {
		if inst.DueDate.String() != want[i] {
			t.Errorf("installment %d due = %s, want %s", inst.Index, inst.DueDate, want[i])
		}
	}
}

func TestGenerateInstallmentsIsDeterministic(t *testing.T) {
	req := InstallmentRequest{
		PurchaseDate: core.NewDate(2025, time.July, 14),
		Amount:       57.5,
		Installments: 6,
		ClosingDay:   3,
		DueDay:       12,
	}
	a, _ := GenerateInstallments(req)
	b, _ := GenerateInstallments(req)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("run mismatch at %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestGenerateInstallmentsRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		req     InstallmentRequest
		wantErr error
	}{
		{
			name:    "zero installments",
			req:     InstallmentRequest{PurchaseDate: core.NewDate(2025, 1, 1), Amount: 10, Installments: 0, ClosingDay: 1, DueDay: 1},
			wantErr: ErrInvalidInstallments,
		},
		{
			name:    "negative installments",
			req:     InstallmentRequest{PurchaseDate: core.NewDate(2025, 1, 1), Amount: 10, Installments: -2, ClosingDay: 1, DueDay: 1},
			wantErr: ErrInvalidInstallments,
		},
		{
			name:    "negative amount",
			req:     InstallmentRequest{PurchaseDate: core.NewDate(2025, 1, 1), Amount: -0.01, Installments: 1, ClosingDay: 1, DueDay: 1},
			wantErr: ErrNegativeAmount,
		},
		{
			name:    "NaN amount",
			req:     InstallmentRequest{PurchaseDate: core.NewDate(2025, 1, 1), Amount: math.NaN(), Installments: 2, ClosingDay: 1, DueDay: 1},
			wantErr: core.ErrInvalidAmount,
		},
		{
			name:    "positive infinity",
			req:     InstallmentRequest{PurchaseDate: core.NewDate(2025, 1, 1), Amount: math.Inf(1), Installments: 2, ClosingDay: 1, DueDay: 1},
			wantErr: core.ErrInvalidAmount,
		},
		{
			name:    "negative infinity",
			req:     InstallmentRequest{PurchaseDate: core.NewDate(2025, 1, 1), Amount: math.Inf(-1), Installments: 2, ClosingDay: 1, DueDay: 1},
			wantErr: core.ErrInvalidAmount,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateInstallments(tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("GenerateInstallments() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerateInstallmentsCents(t *testing.T) {
	tests := []struct {
		name    string
		total   core.Money
		n       int
		want    []int64
		wantErr error
	}{
		{name: "remainder first", total: core.Money{Cents: 10001}, n: 3, want: []int64{3335, 3333, 3333}},
		{name: "near int64 max", total: core.Money{Cents: math.MaxInt64}, n: 2, want: []int64{math.MaxInt64/2 + 1, math.MaxInt64 / 2}},
		{name: "zero installments", total: core.Money{Cents: 100}, n: 0, wantErr: ErrInvalidInstallments},
		{name: "negative total", total: core.Money{Cents: -1}, n: 1, wantErr: ErrNegativeAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateInstallmentsCents(core.NewDate(2025, time.March, 10), tt.total, tt.n, 5, 15)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("GenerateInstallmentsCents() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GenerateInstallmentsCents() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("GenerateInstallmentsCents() returned %d installments, want %d", len(got), len(tt.want))
			}
			for i, inst := range got {
				if inst.Amount.Cents != tt.want[i] {
					t.Errorf("installment %d = %d cents, want %d", inst.Index, inst.Amount.Cents, tt.want[i])
				}
			}
		})
	}
}

func TestSplitCents(t *testing.T) {
	got := SplitCents(10, 4)
	want := []int64{4, 2, 2, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SplitCents(10, 4) = %v, want %v", got, want)
		}
	}
}

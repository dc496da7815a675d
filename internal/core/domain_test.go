package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMonthYearPrevious(t *testing.T) {
	cases := map[MonthYear]MonthYear{
		"2025-06": "2025-05",
		"2025-01": "2024-12",
		"2024-03": "2024-02",
		"bogus":   "",
	}
	for in, want := range cases {
		if got := in.Previous(); got != want {
			t.Errorf("%s.Previous() = %q, want %q", in, got, want)
		}
	}
}

func TestParseMonthYear(t *testing.T) {
	if m, err := ParseMonthYear(" 2025-06 "); err != nil || m != "2025-06" {
		t.Fatalf("unexpected: %q %v", m, err)
	}
	for _, bad := range []string{"", "2025-13", "2025/06", "06-2025"} {
		if _, err := ParseMonthYear(bad); !errors.Is(err, ErrInvalidMonth) {
			t.Errorf("%q: expected ErrInvalidMonth, got %v", bad, err)
		}
	}
}

func TestExpenseDraftParse(t *testing.T) {
	today := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	cats := Catalog{"Food", "Rent"}

	good := ExpenseDraft{Description: "lunch", Amount: "12.50", Category: "Food", Date: "2025-06-10"}
	e, err := good.Parse(cats, today)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !e.Amount.Equal(decimal.RequireFromString("12.5")) || Day(e.Date) != "2025-06-10" {
		t.Fatalf("unexpected expense: %+v", e)
	}

	tests := []struct {
		name   string
		draft  ExpenseDraft
		fields []string
	}{
		{"negative amount", ExpenseDraft{"x", "-1", "Food", "2025-06-01"}, []string{FieldAmount}},
		{"zero amount", ExpenseDraft{"x", "0", "Food", "2025-06-01"}, []string{FieldAmount}},
		{"future date", ExpenseDraft{"x", "1", "Food", "2025-06-11"}, []string{FieldDate}},
		{"unknown category", ExpenseDraft{"x", "1", "Cars", "2025-06-01"}, []string{FieldCategory}},
		{"everything wrong", ExpenseDraft{" ", "abc", "", ""}, []string{FieldDescription, FieldAmount, FieldCategory, FieldDate}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.draft.Parse(cats, today)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if len(verr.Fields) != len(tt.fields) {
				t.Fatalf("expected fields %v, got %v", tt.fields, verr.Fields)
			}
			for _, f := range tt.fields {
				if verr.Field(f) == nil {
					t.Errorf("expected error on %s", f)
				}
			}
		})
	}
}

func TestIncomeDraftParse(t *testing.T) {
	today := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	srcs := Catalog{"Salary"}

	if _, err := (IncomeDraft{Source: "Salary", Amount: "100", Date: "2025-06-10"}).Parse(srcs, today); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	for _, amount := range []string{"-1", "0"} {
		_, err := (IncomeDraft{Source: "Salary", Amount: amount, Date: "2025-06-01"}).Parse(srcs, today)
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Field(FieldAmount) == nil {
			t.Errorf("amount %q should be rejected, got %v", amount, err)
		}
	}
	_, err := (IncomeDraft{Source: "Lottery", Amount: "5", Date: "2025-06-01"}).Parse(srcs, today)
	if !errors.Is(err.(*ValidationError).Field(FieldSource), ErrUnknownSource) {
		t.Errorf("expected unknown source, got %v", err)
	}
}

func TestPercentUsedZeroLimit(t *testing.T) {
	u := NewBudgetUsage("Food", decimal.Zero, decimal.NewFromInt(40))
	if u.PercentUsed != 0 {
		t.Fatalf("zero limit must pin percentUsed to 0, got %v", u.PercentUsed)
	}
	if !u.Remaining.Equal(decimal.NewFromInt(-40)) {
		t.Fatalf("unexpected remaining %s", u.Remaining)
	}

	u = NewBudgetUsage("Food", decimal.NewFromInt(50), decimal.NewFromInt(75))
	if u.PercentUsed != 150 {
		t.Fatalf("expected 150, got %v", u.PercentUsed)
	}
	if BarWidth(u.PercentUsed) != 100 || BarWidth(-3) != 0 || BarWidth(42.5) != 42.5 {
		t.Fatal("bar width must clamp to [0,100]")
	}
}

func TestBudgetValidate(t *testing.T) {
	ok := Budget{Category: "Food", LimitAmount: decimal.Zero, MonthYear: "2025-06"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("zero limit should be valid: %v", err)
	}
	bad := Budget{Category: "Food", LimitAmount: decimal.NewFromInt(-1), MonthYear: "2025-06"}
	if !errors.Is(bad.Validate(), ErrNegativeLimit) {
		t.Fatal("negative limit must be rejected")
	}
	bad = Budget{Category: "Food", MonthYear: "June"}
	if !errors.Is(bad.Validate(), ErrInvalidMonth) {
		t.Fatal("bad month must be rejected")
	}
}

func TestExpenseCheck(t *testing.T) {
	today := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	e := Expense{Description: "bus", Amount: decimal.NewFromInt(2), Category: "Transport", Date: today}
	if err := e.Check(Catalog{"Transport"}, today); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	e.Amount = decimal.Zero
	e.Date = today.AddDate(0, 0, 1)
	var verr *ValidationError
	if !errors.As(e.Check(Catalog{"Transport"}, today), &verr) || len(verr.Fields) != 2 {
		t.Fatalf("expected amount and date errors, got %v", verr)
	}
}

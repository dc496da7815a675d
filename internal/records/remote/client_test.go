package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/prefs"
	"budgetbuddy/internal/records"
)

func newClient(t *testing.T, h http.HandlerFunc) (*Client, *prefs.Memory) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	p := prefs.NewMemory()
	_ = p.Set(prefs.KeyToken, "secret")
	c, err := New(srv.URL, p)
	if err != nil {
		t.Fatal(err)
	}
	return c, p
}

func TestListExpensesQueryAndAuth(t *testing.T) {
	var gotQuery, gotAuth string
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[{"id":"1","description":"lunch","amount":12.5,"category":"Food","date":"2025-06-01"}]`))
	})

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	got, err := c.ListExpenses(context.Background(), records.ExpenseFilter{Category: "Food", Start: start, End: start.AddDate(0, 0, 29)})
	if err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotQuery != "category=Food&endDate=2025-06-30&startDate=2025-06-01" {
		t.Fatalf("query = %q", gotQuery)
	}
	if len(got) != 1 || got[0].Amount.String() != "12.5" || core.Day(got[0].Date) != "2025-06-01" {
		t.Fatalf("unexpected expenses %+v", got)
	}
}

func TestHalfRangeNotSent(t *testing.T) {
	var gotQuery string
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	})
	_, err := c.ListIncome(context.Background(), records.IncomeFilter{Start: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	if gotQuery != "" {
		t.Fatalf("half-open range must not be sent, query %q", gotQuery)
	}
}

func TestUnauthorizedClearsToken(t *testing.T) {
	c, p := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"token expired"}`))
	})
	_, err := c.ListBudgets(context.Background())
	if !errors.Is(err, core.ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
	if _, ok := p.Get(prefs.KeyToken); ok {
		t.Fatal("token must be cleared after a 401")
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"conflict", http.StatusConflict, `{"error":"no budgets for 2025-05"}`, core.IsConflict},
		{"validation", http.StatusUnprocessableEntity, `{"error":"invalid","fields":{"limitAmount":"must be zero or positive"}}`, core.IsValidation},
		{"not found", http.StatusNotFound, `{"error":"nope"}`, func(err error) bool { return errors.Is(err, core.ErrNotFound) }},
		{"server error", http.StatusBadGateway, ``, core.IsNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := c.CopyBudgets(context.Background(), "2025-05", "2025-06")
			if !tt.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}
}

func TestConflictMessage(t *testing.T) {
	var gotQuery string
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"no budgets for 2025-05"}`))
	})
	_, err := c.CopyBudgets(context.Background(), "2025-05", "2025-06")
	var conflict *core.ConflictError
	if !errors.As(err, &conflict) || conflict.Message != "no budgets for 2025-05" {
		t.Fatalf("unexpected error %v", err)
	}
	if gotQuery != "from=2025-05&to=2025-06" {
		t.Fatalf("query = %q", gotQuery)
	}
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := New(url, prefs.NewMemory())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.AvailableMonths(context.Background()); !core.IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestMalformedResponsesRejected(t *testing.T) {
	bodies := map[string]string{
		"missing id":     `[{"category":"Food","limitAmount":10,"monthYear":"2025-06"}]`,
		"negative limit": `[{"id":"1","category":"Food","limitAmount":-1,"monthYear":"2025-06"}]`,
		"bad month":      `[{"id":"1","category":"Food","limitAmount":1,"monthYear":"June"}]`,
		"object body":    `{"id":"1"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(body)) })
			_, err := c.ListBudgets(context.Background())
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestSummaryDecode(t *testing.T) {
	var gotQuery string
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"totalIncome":100,"totalExpenses":40,"netSavings":60,
			"budgetUsage":[{"category":"Food","limit":0,"spent":40,"percentUsed":null}]}`))
	})
	s, err := c.Summary(context.Background(), "2025-06")
	if err != nil {
		t.Fatal(err)
	}
	if gotQuery != "monthYear=2025-06" {
		t.Fatalf("query = %q", gotQuery)
	}
	if len(s.BudgetUsage) != 1 || s.BudgetUsage[0].PercentUsed != 0 {
		t.Fatalf("zero limit must decode to 0 percent, got %+v", s.BudgetUsage)
	}

	_, _ = c.Summary(context.Background(), "")
	if gotQuery != "" {
		t.Fatalf("all-time summary must not send a month, got %q", gotQuery)
	}
}

func TestLoginStoresToken(t *testing.T) {
	c, p := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"token":"fresh"}`))
	})
	if err := c.Login(context.Background(), Credentials{Email: "a@b.c", Password: "pw"}); err != nil {
		t.Fatal(err)
	}
	if tok, _ := p.Get(prefs.KeyToken); tok != "fresh" {
		t.Fatalf("token = %q", tok)
	}
	_ = c.Logout()
	if _, ok := p.Get(prefs.KeyToken); ok {
		t.Fatal("logout must clear the token")
	}
}

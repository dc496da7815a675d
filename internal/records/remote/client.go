// Package remote implements records.Store against the BudgetBuddy HTTP API.
//
// Every request carries the bearer token held in the preference store. A 401
// response clears that token and yields core.ErrAuth; transport failures,
// timeouts and 5xx responses come back as *core.NetworkError. Response bodies
// are decoded into explicit wire shapes and rejected when malformed.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/prefs"
	"budgetbuddy/internal/records"
)

const defaultTimeout = 10 * time.Second

// maxBodySize caps how much of a response body is read.
const maxBodySize = 4 << 20

// ErrMalformed marks a response that does not match the expected schema.
var ErrMalformed = errors.New("malformed response")

type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

type Client struct {
	base   *url.URL
	http   *http.Client
	tokens prefs.Store
}

var _ records.Store = (*Client)(nil)

// New returns a client for the API rooted at baseURL. Tokens are read from and
// cleared in p under prefs.KeyToken.
func New(baseURL string, p prefs.Store, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", baseURL)
	}
	c := &Client{
		base:   u,
		http:   &http.Client{Timeout: defaultTimeout},
		tokens: p,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// errorBody is the JSON error envelope returned by the server.
type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (c *Client) endpoint(path string, q url.Values) string {
	u := *c.base
	u.Path = c.base.Path + path
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// do sends one request. op names the operation in errors and logs.
func (c *Client) do(ctx context.Context, op, method, path string, q url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, q), body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok, ok := c.tokens.Get(prefs.KeyToken); ok && tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "Request failed", log.FieldComponent, log.ComponentRemote, "op", op, "error", err)
		return &core.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &core.NetworkError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	slog.DebugContext(ctx, "Request completed", log.FieldComponent, log.ComponentRemote, "op", op,
		"status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(bytes.TrimSpace(raw)) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return &core.NetworkError{Op: op, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
		}
		return nil
	}
	return c.statusError(op, resp.StatusCode, raw)
}

func (c *Client) statusError(op string, status int, raw []byte) error {
	var eb errorBody
	_ = json.Unmarshal(raw, &eb)
	msg := eb.Error
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized:
		if err := c.tokens.Delete(prefs.KeyToken); err != nil {
			slog.Warn("Failed to clear session token", log.FieldComponent, log.ComponentRemote, "error", err)
		}
		return fmt.Errorf("%s: %w", op, core.ErrAuth)
	case status == http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	case status == http.StatusConflict:
		return &core.ConflictError{Message: msg}
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		fields := core.FieldErrors{}
		for name, reason := range eb.Fields {
			fields.Add(name, errors.New(reason))
		}
		if len(fields) == 0 {
			fields.Add("request", errors.New(msg))
		}
		return fields.Err()
	default:
		return &core.NetworkError{Op: op, Err: fmt.Errorf("server returned %d: %s", status, msg)}
	}
}

func rangeQuery(q url.Values, start, end time.Time) {
	if start.IsZero() || end.IsZero() {
		return
	}
	q.Set("startDate", core.Day(start))
	q.Set("endDate", core.Day(end))
}

func (c *Client) ListExpenses(ctx context.Context, f records.ExpenseFilter) ([]core.Expense, error) {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	rangeQuery(q, f.Start, f.End)

	var wire []expenseJSON
	if err := c.do(ctx, "list expenses", http.MethodGet, "/expenses", q, nil, &wire); err != nil {
		return nil, err
	}
	return decodeAll("list expenses", wire, expenseJSON.decode)
}

func (c *Client) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	var wire expenseJSON
	if err := c.do(ctx, "create expense", http.MethodPost, "/expenses", nil, encodeExpense(e), &wire); err != nil {
		return core.Expense{}, err
	}
	return decodeOne("create expense", wire, expenseJSON.decode)
}

func (c *Client) UpdateExpense(ctx context.Context, id string, e core.Expense) (core.Expense, error) {
	var wire expenseJSON
	if err := c.do(ctx, "update expense", http.MethodPut, "/expenses/"+url.PathEscape(id), nil, encodeExpense(e), &wire); err != nil {
		return core.Expense{}, err
	}
	return decodeOne("update expense", wire, expenseJSON.decode)
}

func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	return c.do(ctx, "delete expense", http.MethodDelete, "/expenses/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) ListIncome(ctx context.Context, f records.IncomeFilter) ([]core.Income, error) {
	q := url.Values{}
	rangeQuery(q, f.Start, f.End)

	var wire []incomeJSON
	if err := c.do(ctx, "list income", http.MethodGet, "/income", q, nil, &wire); err != nil {
		return nil, err
	}
	return decodeAll("list income", wire, incomeJSON.decode)
}

func (c *Client) CreateIncome(ctx context.Context, i core.Income) (core.Income, error) {
	var wire incomeJSON
	if err := c.do(ctx, "create income", http.MethodPost, "/income", nil, encodeIncome(i), &wire); err != nil {
		return core.Income{}, err
	}
	return decodeOne("create income", wire, incomeJSON.decode)
}

func (c *Client) UpdateIncome(ctx context.Context, id string, i core.Income) (core.Income, error) {
	var wire incomeJSON
	if err := c.do(ctx, "update income", http.MethodPut, "/income/"+url.PathEscape(id), nil, encodeIncome(i), &wire); err != nil {
		return core.Income{}, err
	}
	return decodeOne("update income", wire, incomeJSON.decode)
}

func (c *Client) DeleteIncome(ctx context.Context, id string) error {
	return c.do(ctx, "delete income", http.MethodDelete, "/income/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	var wire []budgetJSON
	if err := c.do(ctx, "list budgets", http.MethodGet, "/budgets", nil, nil, &wire); err != nil {
		return nil, err
	}
	return decodeAll("list budgets", wire, budgetJSON.decode)
}

func (c *Client) BulkCreateBudgets(ctx context.Context, budgets []core.Budget) ([]core.Budget, error) {
	body := make([]budgetRequest, len(budgets))
	for i, b := range budgets {
		body[i] = encodeBudget(b)
	}
	var wire []budgetJSON
	if err := c.do(ctx, "bulk create budgets", http.MethodPost, "/budgets/bulk", nil, body, &wire); err != nil {
		return nil, err
	}
	return decodeAll("bulk create budgets", wire, budgetJSON.decode)
}

func (c *Client) CopyBudgets(ctx context.Context, from, to core.MonthYear) ([]core.Budget, error) {
	q := url.Values{"from": {string(from)}, "to": {string(to)}}
	var wire []budgetJSON
	if err := c.do(ctx, "copy budgets", http.MethodPost, "/budgets/copy", q, nil, &wire); err != nil {
		return nil, err
	}
	return decodeAll("copy budgets", wire, budgetJSON.decode)
}

func (c *Client) UpdateBudget(ctx context.Context, id string, b core.Budget) (core.Budget, error) {
	var wire budgetJSON
	if err := c.do(ctx, "update budget", http.MethodPut, "/budgets/"+url.PathEscape(id), nil, encodeBudget(b), &wire); err != nil {
		return core.Budget{}, err
	}
	return decodeOne("update budget", wire, budgetJSON.decode)
}

func (c *Client) Summary(ctx context.Context, month core.MonthYear) (core.Summary, error) {
	q := url.Values{}
	if month != "" {
		q.Set("monthYear", string(month))
	}
	var wire summaryJSON
	if err := c.do(ctx, "analytics summary", http.MethodGet, "/analytics/summary", q, nil, &wire); err != nil {
		return core.Summary{}, err
	}
	return decodeOne("analytics summary", wire, summaryJSON.decode)
}

func (c *Client) AvailableMonths(ctx context.Context) ([]core.MonthYear, error) {
	var wire []string
	if err := c.do(ctx, "available months", http.MethodGet, "/analytics/available-months", nil, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]core.MonthYear, 0, len(wire))
	for _, s := range wire {
		m, err := core.ParseMonthYear(s)
		if err != nil {
			return nil, &core.NetworkError{Op: "available months", Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
		}
		out = append(out, m)
	}
	return out, nil
}

// Credentials is the body of the register and login calls.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a token and stores it.
func (c *Client) Login(ctx context.Context, cr Credentials) error {
	return c.authenticate(ctx, "login", "/auth/login", cr)
}

// Register creates an account and stores the issued token.
func (c *Client) Register(ctx context.Context, cr Credentials) error {
	return c.authenticate(ctx, "register", "/auth/register", cr)
}

func (c *Client) authenticate(ctx context.Context, op, path string, cr Credentials) error {
	var tr tokenResponse
	if err := c.do(ctx, op, http.MethodPost, path, nil, cr, &tr); err != nil {
		return err
	}
	if tr.Token == "" {
		return &core.NetworkError{Op: op, Err: fmt.Errorf("%w: empty token", ErrMalformed)}
	}
	return c.tokens.Set(prefs.KeyToken, tr.Token)
}

// Logout forgets the stored token.
func (c *Client) Logout() error {
	return c.tokens.Delete(prefs.KeyToken)
}

// ActivityLogs lists the caller's activity log.
func (c *Client) ActivityLogs(ctx context.Context, f core.ActivityFilter) ([]core.ActivityEvent, error) {
	q := url.Values{}
	if f.EntityType != "" {
		q.Set("entityType", f.EntityType)
	}
	if !f.From.IsZero() {
		q.Set("from", f.From.Format(time.RFC3339))
	}
	if !f.To.IsZero() {
		q.Set("to", f.To.Format(time.RFC3339))
	}
	var out []core.ActivityEvent
	if err := c.do(ctx, "activity logs", http.MethodGet, "/activity/logs", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

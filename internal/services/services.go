package services

import (
	"time"

	"budgetbuddy/internal/cache"
	"budgetbuddy/internal/core"
)

// Deps wires a Services bundle. Publisher and SummaryCache may be nil: events
// then go straight to the repository and summaries are always recomputed.
type Deps struct {
	Repo         Repository
	Categories   core.Catalog
	Sources      core.Catalog
	Publisher    ActivityPublisher
	Passwords    PasswordHasher
	Tokens       TokenIssuer
	SummaryCache cache.Cache[core.Summary]
	Now          func() time.Time
}

type Services struct {
	Expenses  *ExpenseService
	Incomes   *IncomeService
	Budgets   *BudgetService
	Analytics *AnalyticsService
	Users     *UserService
	Activity  *ActivityService
}

func New(d Deps) *Services {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Publisher == nil {
		d.Publisher = DirectPublisher{Repo: d.Repo}
	}
	analytics := newAnalyticsService(d.Repo, d.Categories, d.SummaryCache)
	track := tracker{pub: d.Publisher, analytics: analytics, now: d.Now}

	return &Services{
		Expenses:  &ExpenseService{repo: d.Repo, categories: d.Categories, track: track},
		Incomes:   &IncomeService{repo: d.Repo, sources: d.Sources, track: track},
		Budgets:   &BudgetService{repo: d.Repo, categories: d.Categories, track: track},
		Analytics: analytics,
		Users:     &UserService{repo: d.Repo, passwords: d.Passwords, tokens: d.Tokens, track: track},
		Activity:  NewActivityService(d.Repo),
	}
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"budgetbuddy/internal/config"
	"budgetbuddy/internal/core"
	"budgetbuddy/internal/export"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/prefs"
	"budgetbuddy/internal/records"
	"budgetbuddy/internal/records/remote"
	"budgetbuddy/internal/sheets"
	"budgetbuddy/internal/sheets/google"
)

// Session issues and forgets the stored credential.
type Session interface {
	Login(ctx context.Context, cr remote.Credentials) error
	Register(ctx context.Context, cr remote.Credentials) error
	Logout() error
}

// ActivityLister reads the caller's activity log.
type ActivityLister interface {
	ActivityLogs(ctx context.Context, f core.ActivityFilter) ([]core.ActivityEvent, error)
}

// Env is everything a command works against.
type Env struct {
	Store    records.Store
	Session  Session
	Activity ActivityLister
	Prefs    prefs.Store
	Catalogs config.Catalogs
	Exporter *export.Exporter
	// Sheets opens the spreadsheet writer on first use.
	Sheets func(ctx context.Context) (sheets.TransactionWriter, error)
	Now    func() time.Time
	Close  func() error
}

// Connector builds the Env for one invocation.
type Connector func(ctx context.Context, s Settings) (*Env, error)

// Connect is the production Connector: a SQLite preference file, the catalog
// file and the HTTP Record Store.
func Connect(ctx context.Context, s Settings) (*Env, error) {
	cats, err := config.LoadCatalogs(s.CatalogFile)
	if err != nil {
		return nil, err
	}

	var store prefs.Store = prefs.NewMemory()
	closeFn := func() error { return nil }
	if s.PrefsPath != "" {
		sq, err := prefs.OpenSQLite(s.PrefsPath)
		if err != nil {
			return nil, err
		}
		store, closeFn = sq, sq.Close
	}

	client, err := remote.New(s.Server, store, remote.WithTimeout(s.Timeout))
	if err != nil {
		closeFn()
		return nil, err
	}

	return &Env{
		Store:    client,
		Session:  client,
		Activity: client,
		Prefs:    store,
		Catalogs: cats,
		Exporter: export.New(s.ExportDir),
		Sheets: func(ctx context.Context) (sheets.TransactionWriter, error) {
			cfg := google.ConfigFromEnv()
			if s.SpreadsheetID != "" {
				cfg.SpreadsheetID = s.SpreadsheetID
			}
			if s.SheetName != "" {
				cfg.SheetName = s.SheetName
			}
			if s.ServiceAccountFile != "" {
				cfg.CredentialsJSON, cfg.CredentialsFile = nil, s.ServiceAccountFile
			}
			return google.New(ctx, cfg)
		},
		Now:   time.Now,
		Close: closeFn,
	}, nil
}

// App is the budgetbuddy command tree.
type App struct {
	root    *cobra.Command
	version string
	connect Connector
	console *Console

	configFile string
	settings   Settings
	env        *Env
}

type AppOption func(*App)

// WithConnector replaces Connect.
func WithConnector(c Connector) AppOption {
	return func(a *App) { a.connect = c }
}

// WithOutput sends command output to w instead of stdout.
func WithOutput(w io.Writer) AppOption {
	return func(a *App) { a.console = NewConsole(w) }
}

func NewApp(version string, opts ...AppOption) *App {
	app := &App{
		version: version,
		connect: Connect,
		console: NewConsole(os.Stdout),
	}
	for _, opt := range opts {
		opt(app)
	}

	root := &cobra.Command{
		Use:               "budgetbuddy",
		Short:             "Track expenses, income and monthly budgets",
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: app.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			app.console.Println(banner(app.version))
			return cmd.Help()
		},
	}
	root.SetOut(app.console.out)
	root.SetErr(app.console.out)
	root.SetVersionTemplate(`{{printf "BudgetBuddy version: %s\n" .Version}}`)

	pf := root.PersistentFlags()
	pf.StringVarP(&app.configFile, "config", "C", "", "Path to a config file (default $HOME/.budgetbuddy.yaml)")
	pf.String("server", "", "BudgetBuddy API base URL")
	pf.String("prefs", "", "Path of the local preference database")
	pf.String("catalog", "", "Path to a TOML, YAML, JSON or text catalog file")
	pf.Duration("timeout", 10*time.Second, "Per-request timeout")
	pf.StringP("dir", "d", "", "Directory for exported files (default: current directory)")
	pf.String("log-level", "", "Log level: debug, info, warn or error")

	root.AddCommand(
		app.loginCmd(),
		app.registerCmd(),
		app.logoutCmd(),
		app.expensesCmd(),
		app.incomeCmd(),
		app.budgetsCmd(),
		app.analyticsCmd(),
		app.dashboardCmd(),
		app.activityCmd(),
		app.exportCmd(),
	)

	app.root = root
	return app
}

// Root exposes the command for tests and completion generation.
func (app *App) Root() *cobra.Command { return app.root }

// Execute runs the command line and prints any failure.
func (app *App) Execute(ctx context.Context) error {
	err := app.root.ExecuteContext(ctx)
	if err != nil {
		app.console.Error(err)
		_ = app.teardown()
	}
	return err
}

func (app *App) setup(cmd *cobra.Command, args []string) error {
	s, err := LoadSettings(app.configFile, cmd.Flags())
	if err != nil {
		return err
	}
	app.settings = s
	log.Setup(os.Stderr, s.LogLevel, log.ComponentCLI)

	env, err := app.connect(cmd.Context(), s)
	if err != nil {
		return fmt.Errorf("initialise client: %w", err)
	}
	if env.Now == nil {
		env.Now = time.Now
	}
	if env.Exporter == nil {
		env.Exporter = export.New(s.ExportDir)
	}
	app.env = env
	return nil
}

func (app *App) teardown() error {
	if app.env == nil || app.env.Close == nil {
		return nil
	}
	err := app.env.Close()
	app.env = nil
	return err
}

// requireSession fails early when no credential is stored.
func (app *App) requireSession() error {
	if v, ok := app.env.Prefs.Get(prefs.KeyToken); !ok || v == "" {
		return fmt.Errorf("not signed in: %w", core.ErrAuth)
	}
	return nil
}

// withStatus runs fn under a spinner.
func (app *App) withStatus(text string, fn func() error) error {
	stop := app.console.Status(text)
	defer stop()
	return fn()
}


package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/dukerupert/grocerylist/internal/database"
	"github.com/dukerupert/grocerylist/internal/logging"
	"github.com/dukerupert/grocerylist/internal/shopping"
	"github.com/dukerupert/grocerylist/internal/store"
)

type options struct {
	dbPath   string
	logLevel string
	grace    time.Duration
	locale   string
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "grocerylist",
		Short:         "A shopping list grouped by aisle",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.dbPath, "db", envOr("GROCERY_DB_PATH", "grocerylist.db"), "SQLite database path (env GROCERY_DB_PATH)")
	pf.StringVarP(&opts.logLevel, "log-level", "l", envOr("GROCERY_LOG_LEVEL", "info"), "debug, info, warn or error (env GROCERY_LOG_LEVEL)")
	pf.DurationVar(&opts.grace, "grace", envDuration("GROCERY_GRACE", time.Second), "how long completed items stay visible before hiding (env GROCERY_GRACE)")
	pf.StringVar(&opts.locale, "locale", envOr("GROCERY_LOCALE", "und"), "BCP 47 tag used to sort titles (env GROCERY_LOCALE)")

	root.AddCommand(
		newServeCmd(opts),
		newListCmd(opts),
		newAddCmd(opts),
		newEditCmd(opts),
		newToggleCmd(opts),
		newDeleteCmd(opts),
		newClearCompletedCmd(opts),
		newEssentialsCmd(opts),
		newViewCmd(opts),
		newCategoriesCmd(),
	)
	return root
}

func (o *options) logger() *slog.Logger {
	return logging.Setup(o.logLevel)
}

func (o *options) shoppingConfig() (shopping.Config, error) {
	tag, err := language.Parse(o.locale)
	if err != nil {
		return shopping.Config{}, fmt.Errorf("parse locale %q: %w", o.locale, err)
	}
	return shopping.Config{Grace: o.grace, Locale: tag}, nil
}

// openService opens the database and builds a service with no change feed,
// for one-shot commands.
func (o *options) openService() (*shopping.Service, *sql.DB, error) {
	logger := o.logger()
	cfg, err := o.shoppingConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(o.dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	svc := shopping.New(store.NewItemStore(db), store.NewSettingsStore(db), nil, cfg, logger.With("component", "shopping"))
	return svc, db, nil
}

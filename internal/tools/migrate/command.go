package migrate

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/sandeepkv93/storefront-admin-console/internal/config"
	"github.com/sandeepkv93/storefront-admin-console/internal/database"
	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
	"github.com/sandeepkv93/storefront-admin-console/internal/tools/common"
	"github.com/sandeepkv93/storefront-admin-console/internal/tools/ui"
)

type options struct {
	envFile string
	timeout time.Duration
	ci      bool
}

// models lists what database.Migrate manages, in migration order.
var models = []struct {
	name  string
	model any
}{
	{"permissions", &domain.Permission{}},
	{"roles", &domain.Role{}},
	{"staff", &domain.Staff{}},
	{"orders", &domain.Order{}},
	{"products", &domain.Product{}},
	{"notifications", &domain.Notification{}},
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tooling",
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")

	cmd.AddCommand(
		newUpCommand(opts),
		newStatusCommand(opts),
		newPlanCommand(opts),
	)
	return cmd
}

func newUpCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "migrate up", func(ctx context.Context, cfg *config.Config, db *gorm.DB) ([]string, error) {
				if err := database.Migrate(db); err != nil {
					return nil, err
				}
				return append([]string{"schema migration applied"}, tableStates(db)...), nil
			})
		},
	}
}

func newStatusCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check database reachability and table presence",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "migrate status", func(ctx context.Context, cfg *config.Config, db *gorm.DB) ([]string, error) {
				return append([]string{"database reachable", "env: " + cfg.Env}, tableStates(db)...), nil
			})
		},
	}
}

func newPlanCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show migration plan (dry-run)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "migrate plan", func(ctx context.Context, cfg *config.Config, db *gorm.DB) ([]string, error) {
				details := make([]string, 0, len(models)+1)
				m := db.Migrator()
				for _, t := range models {
					if m.HasTable(t.model) {
						details = append(details, fmt.Sprintf("would reconcile columns and indexes of %s", t.name))
					} else {
						details = append(details, fmt.Sprintf("would create %s", t.name))
					}
				}
				return append(details, "no mutation executed in plan mode"), nil
			})
		},
	}
}

func tableStates(db *gorm.DB) []string {
	m := db.Migrator()
	out := make([]string, 0, len(models))
	for _, t := range models {
		state := "missing"
		if m.HasTable(t.model) {
			state = "present"
		}
		out = append(out, fmt.Sprintf("%s: %s", t.name, state))
	}
	return out
}

func execute(opts *options, title string, fn func(context.Context, *config.Config, *gorm.DB) ([]string, error)) error {
	_, err := ui.Execute(opts.ci, title, opts.timeout, func(ctx context.Context) ([]string, error) {
		cfg, db, err := loadConfigDB(opts.envFile)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		defer func() { _ = sqlDB.Close() }()
		if err := sqlDB.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("db ping: %w", err)
		}
		return fn(ctx, cfg, db)
	})
	if err != nil {
		os.Exit(3)
	}
	return nil
}

func loadConfigDB(envFile string) (*config.Config, *gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

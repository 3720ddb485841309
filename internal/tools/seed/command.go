package seed

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/storefront-admin-console/internal/config"
	"github.com/sandeepkv93/storefront-admin-console/internal/database"
	"github.com/sandeepkv93/storefront-admin-console/internal/di"
	"github.com/sandeepkv93/storefront-admin-console/internal/permission"
	"github.com/sandeepkv93/storefront-admin-console/internal/tools/common"
	"github.com/sandeepkv93/storefront-admin-console/internal/tools/ui"
)

type options struct {
	envFile    string
	adminEmail string
	timeout    time.Duration
	ci         bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "seed", Short: "Database seed tooling"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().StringVar(&opts.adminEmail, "admin-email", "", "override bootstrap admin email")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", time.Minute, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newApplyCommand(opts), newDryRunCommand(opts))
	return cmd
}

func newApplyCommand(opts *options) *cobra.Command {
	var demo bool
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Migrate, then converge roles, permissions and the bootstrap admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := ui.Execute(opts.ci, "seed apply", opts.timeout, func(ctx context.Context) ([]string, error) {
				if err := loadEnv(opts); err != nil {
					return nil, err
				}
				runner, err := di.InitializeMigrationRunner()
				if err != nil {
					return nil, err
				}
				defer func() { _ = runner.Close() }()
				report, err := runner.Run(demo)
				if err != nil {
					return nil, err
				}
				return reportDetails(report), nil
			})
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&demo, "demo", false, "load sample orders, products and notifications into empty tables")
	return cmd
}

func newDryRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dry-run",
		Short: "Show what seeding would do",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := ui.Execute(opts.ci, "seed dry-run", opts.timeout, func(ctx context.Context) ([]string, error) {
				if err := loadEnv(opts); err != nil {
					return nil, err
				}
				cfg, err := config.Load()
				if err != nil {
					return nil, err
				}
				details := []string{"would ensure permissions: " + strings.Join(permission.All, ", ")}
				roles := make([]string, 0, len(permission.DefaultRoles))
				for name := range permission.DefaultRoles {
					roles = append(roles, name)
				}
				sort.Strings(roles)
				for _, name := range roles {
					details = append(details, fmt.Sprintf("would bind role %s: %s", name, strings.Join(permission.DefaultRoles[name], ", ")))
				}
				if cfg.BootstrapAdminEmail != "" {
					details = append(details, "would create protected admin if missing: "+cfg.BootstrapAdminEmail)
				}
				return details, nil
			})
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func loadEnv(opts *options) error {
	if err := common.LoadEnvFile(opts.envFile); err != nil {
		return err
	}
	if opts.adminEmail != "" {
		return os.Setenv("BOOTSTRAP_ADMIN_EMAIL", opts.adminEmail)
	}
	return nil
}

func reportDetails(r *database.SyncReport) []string {
	if r.Noop {
		return []string{"already in sync"}
	}
	return []string{
		fmt.Sprintf("permissions created: %d", r.CreatedPermissions),
		fmt.Sprintf("roles created: %d", r.CreatedRoles),
		fmt.Sprintf("role grants bound: %d", r.BoundPermissions),
		fmt.Sprintf("staff created: %d", r.CreatedStaff),
		fmt.Sprintf("demo rows: %d orders, %d products, %d notifications", r.DemoOrders, r.DemoProducts, r.DemoNotifications),
	}
}

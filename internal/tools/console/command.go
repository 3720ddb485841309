package console

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/storefront-admin-console/internal/export"
	"github.com/sandeepkv93/storefront-admin-console/internal/listctl"
	"github.com/sandeepkv93/storefront-admin-console/internal/screens"
	"github.com/sandeepkv93/storefront-admin-console/internal/tools/ui"
)

type options struct {
	envFile string
	timeout time.Duration
	ci      bool
}

var resources = []string{screens.ResourceOrders, screens.ResourceProducts, screens.ResourceNotifications}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "console", Short: "Storefront admin console"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", time.Minute, "timeout for export and whoami")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	for _, r := range resources {
		cmd.AddCommand(newScreenCommand(opts, r))
	}
	cmd.AddCommand(newExportCommand(opts), newWhoamiCommand(opts))
	return cmd
}

func newScreenCommand(opts *options, resource string) *cobra.Command {
	return &cobra.Command{
		Use:   resource,
		Short: "Browse " + resource,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			s, err := openSession(ctx, opts.envFile)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()
			return runTUI(ctx, s, resource)
		},
	}
}

type exportOptions struct {
	resource string
	format   string
	out      string
	search   string
	filters  []string
	page     int
}

func newExportCommand(opts *options) *cobra.Command {
	eo := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export one page of a list to xlsx or pdf",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := ui.Execute(opts.ci, "console export", opts.timeout, func(ctx context.Context) ([]string, error) {
				s, err := openSession(ctx, opts.envFile)
				if err != nil {
					return nil, err
				}
				defer func() { _ = s.Close() }()
				res, err := runExport(ctx, s, eo, time.Now())
				if err != nil {
					return nil, err
				}
				return []string{
					"wrote " + res.path,
					fmt.Sprintf("rows: %d of %d", res.rows, res.meta.TotalItems),
					fmt.Sprintf("page: %d/%d", res.meta.Page, max(res.meta.TotalPages, 1)),
				}, nil
			})
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&eo.resource, "resource", screens.ResourceOrders, "orders|products|notifications")
	cmd.Flags().StringVar(&eo.format, "format", string(export.FormatXLSX), "xlsx|pdf")
	cmd.Flags().StringVar(&eo.out, "out", "", "output file (default export dir and generated name)")
	cmd.Flags().StringVar(&eo.search, "search", "", "search term")
	cmd.Flags().StringArrayVar(&eo.filters, "filter", nil, "filter as key=value, repeatable")
	cmd.Flags().IntVar(&eo.page, "page", listctl.DefaultPage, "page to export")
	return cmd
}

type exportResult struct {
	path string
	rows int
	meta export.Meta
}

// runExport loads one page with the requested query and writes it. The
// debounce clock is manual so only the explicit loads reach the API.
func runExport(ctx context.Context, s *session, eo *exportOptions, now time.Time) (exportResult, error) {
	format, err := export.ParseFormat(eo.format)
	if err != nil {
		return exportResult{}, err
	}
	s.scheduler = listctl.NewManualScheduler()
	b, err := s.bind(eo.resource, nil, nil)
	if err != nil {
		return exportResult{}, err
	}
	if !b.screen.Can(screens.AffordanceExport) {
		return exportResult{}, fmt.Errorf("export %s: %w", eo.resource, screens.ErrUnavailable)
	}
	if eo.search != "" {
		b.list.SetSearchTerm(eo.search)
	}
	for _, f := range eo.filters {
		key, value, ok := strings.Cut(f, "=")
		if !ok {
			return exportResult{}, fmt.Errorf("filter %q: want key=value", f)
		}
		if err := b.screen.SetFilter(key, value); err != nil {
			return exportResult{}, err
		}
	}
	if err := b.screen.Load(ctx); err != nil {
		return exportResult{}, err
	}
	if eo.page > listctl.DefaultPage {
		if !b.list.SetPage(eo.page) {
			return exportResult{}, fmt.Errorf("page %d is out of range (1-%d)", eo.page, max(b.list.PageInfo().TotalPages, 1))
		}
		if err := b.screen.Load(ctx); err != nil {
			return exportResult{}, err
		}
	}

	path := eo.out
	if path == "" {
		path = filepath.Join(s.cfg.ExportDir, export.FileName(b.screen.Resource(), format, now))
	}
	table, meta, err := b.screen.ExportTable(ctx)
	if err != nil {
		return exportResult{}, err
	}
	f, err := os.Create(path)
	if err != nil {
		return exportResult{}, err
	}
	if err := b.screen.Export(ctx, f, format); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return exportResult{}, err
	}
	if err := f.Close(); err != nil {
		return exportResult{}, err
	}
	return exportResult{path: path, rows: len(table.Rows), meta: meta}, nil
}

func newWhoamiCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in staff member and what each screen allows",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := ui.Execute(opts.ci, "console whoami", opts.timeout, func(ctx context.Context) ([]string, error) {
				s, err := openSession(ctx, opts.envFile)
				if err != nil {
					return nil, err
				}
				defer func() { _ = s.Close() }()
				return whoamiDetails(s)
			})
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func whoamiDetails(s *session) ([]string, error) {
	details := []string{
		fmt.Sprintf("staff: %s <%s>", s.identity.Name, s.identity.Email),
		fmt.Sprintf("protected: %t", s.identity.IsProtected),
	}
	for _, r := range resources {
		b, err := s.bind(r, nil, nil)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(b.screen.Affordances()))
		for _, a := range b.screen.Affordances() {
			names = append(names, string(a))
		}
		if len(names) == 0 {
			names = append(names, "none")
		}
		details = append(details, fmt.Sprintf("%s: %s", r, strings.Join(names, ", ")))
	}
	return details, nil
}

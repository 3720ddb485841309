package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sandeepkv93/storefront-admin-console/internal/config"
	"github.com/sandeepkv93/storefront-admin-console/internal/datasource"
	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
	"github.com/sandeepkv93/storefront-admin-console/internal/listctl"
	"github.com/sandeepkv93/storefront-admin-console/internal/observability"
	"github.com/sandeepkv93/storefront-admin-console/internal/permission"
	"github.com/sandeepkv93/storefront-admin-console/internal/present"
	"github.com/sandeepkv93/storefront-admin-console/internal/screens"
	"github.com/sandeepkv93/storefront-admin-console/internal/shell"
	"github.com/sandeepkv93/storefront-admin-console/internal/storage"
	"github.com/sandeepkv93/storefront-admin-console/internal/tools/common"
)

var ErrNoCredentials = errors.New("set CONSOLE_API_TOKEN or CONSOLE_LOGIN_EMAIL and CONSOLE_LOGIN_PASSWORD")

// session is one signed-in operator talking to one API.
type session struct {
	cfg      *config.Console
	logger   *slog.Logger
	client   *datasource.Client
	identity datasource.Identity
	actor    *permission.Actor
	unread   *shell.UnreadCounter
	images   present.ImageResolver
	closers  []func() error

	// scheduler overrides the debounce clock; nil uses wall time.
	scheduler listctl.Scheduler
}

func openSession(ctx context.Context, envFile string) (*session, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.LoadConsole()
	if err != nil {
		return nil, err
	}
	logger, closeLog, err := consoleLogger(cfg)
	if err != nil {
		return nil, err
	}
	s, err := newSession(ctx, cfg, logger)
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	s.closers = append(s.closers, closeLog)
	return s, nil
}

func newSession(ctx context.Context, cfg *config.Console, logger *slog.Logger) (*session, error) {
	if !cfg.HasCredentials() {
		return nil, ErrNoCredentials
	}
	client := datasource.New(cfg.APIBaseURL, cfg.RequestTimeout, datasource.WithLogger(logger))
	if cfg.APIToken != "" {
		client.SetTokenSource(datasource.StaticTokenSource(cfg.APIToken))
	} else {
		client.SetTokenSource(datasource.LoginTokenSource(client, cfg.LoginEmail, cfg.LoginPassword, cfg.RequestTimeout))
	}
	identity, err := client.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve signed-in staff: %w", err)
	}

	images := present.ImageResolver{BaseURL: cfg.AssetBaseURL}
	if cfg.StorageEndpoint != "" {
		store, err := storage.NewMinIOStore(storage.MinIOConfig{
			Endpoint:   cfg.StorageEndpoint,
			AccessKey:  cfg.StorageAccessKey,
			SecretKey:  cfg.StorageSecretKey,
			Bucket:     cfg.StorageBucket,
			Region:     cfg.StorageRegion,
			UseSSL:     cfg.StorageUseSSL,
			PresignTTL: cfg.StoragePresignTTL,
		})
		if err != nil {
			return nil, err
		}
		images.Presigner = store
	}

	logger.InfoContext(ctx, "console session opened", "staff_id", identity.ID, "protected", identity.IsProtected)
	return &session{
		cfg:      cfg,
		logger:   logger,
		client:   client,
		identity: identity,
		actor:    permission.NewActor(identity.IsProtected, identity.Permissions...),
		unread:   shell.NewUnreadCounter(),
		images:   images,
	}, nil
}

// consoleLogger writes to CONSOLE_LOG_FILE when set and discards otherwise,
// so nothing lands on the terminal the TUI draws on.
func consoleLogger(cfg *config.Console) (*slog.Logger, func() error, error) {
	if cfg.LogFile == "" {
		return observability.InitConsoleLogger(io.Discard, cfg.LogLevel), func() error { return nil }, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open console log file: %w", err)
	}
	return observability.InitConsoleLogger(f, cfg.LogLevel), f.Close, nil
}

func (s *session) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func (s *session) options(notifier listctl.Notifier, onChange func()) screens.Options {
	return screens.Options{
		Actor:           s.actor,
		ActorName:       s.identity.Email,
		InitialQuery:    listctl.Query{Page: listctl.DefaultPage, PageSize: s.cfg.DefaultPageSize},
		PageSizeOptions: s.cfg.PageSizeOptions,
		Debounce:        s.cfg.SearchDebounce,
		FetchTimeout:    s.cfg.RequestTimeout,
		Scheduler:       s.scheduler,
		Notifier:        notifier,
		OnChange:        onChange,
		Logger:          s.logger,
	}
}

// bind builds the screen for resource. A nil notifier logs notices.
func (s *session) bind(resource string, notifier listctl.Notifier, onChange func()) (*binding, error) {
	if notifier == nil {
		notifier = listctl.NewLogNotifier(s.logger)
	}
	opts := s.options(notifier, onChange)
	switch resource {
	case screens.ResourceOrders:
		scr, err := screens.NewOrders(datasource.NewResource[domain.Order](s.client, resource), opts)
		if err != nil {
			return nil, err
		}
		return bindOrders(scr, s.unread), nil
	case screens.ResourceProducts:
		scr, err := screens.NewProducts(datasource.NewResource[domain.Product](s.client, resource), s.images, opts)
		if err != nil {
			return nil, err
		}
		return bindProducts(scr, s.unread), nil
	case screens.ResourceNotifications:
		scr, err := screens.NewNotifications(datasource.NewResource[domain.Notification](s.client, resource), s.unread, opts)
		if err != nil {
			return nil, err
		}
		return bindNotifications(scr), nil
	default:
		return nil, fmt.Errorf("unknown resource %q", resource)
	}
}

// primeUnread loads notification stats through a Notifications screen, the
// counter's only writer, so every screen header shows the unread count.
// Failures leave the counter at zero.
func (s *session) primeUnread(ctx context.Context) {
	if !permission.Authorize(s.actor, permission.NotificationsRead) {
		return
	}
	scr, err := screens.NewNotifications(
		datasource.NewResource[domain.Notification](s.client, screens.ResourceNotifications),
		s.unread,
		s.options(listctl.NewLogNotifier(s.logger), nil),
	)
	if err != nil {
		return
	}
	if _, err := scr.RefreshStats(ctx); err != nil {
		s.logger.WarnContext(ctx, "unread count unavailable", "error", err)
	}
}

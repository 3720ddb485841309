package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"
)

// Console configures the terminal admin console.
type Console struct {
	APIBaseURL     string
	APIToken       string
	LoginEmail     string
	LoginPassword  string
	RequestTimeout time.Duration

	PageSizeOptions []int
	DefaultPageSize int
	SearchDebounce  time.Duration

	AssetBaseURL      string
	StorageEndpoint   string
	StorageAccessKey  string
	StorageSecretKey  string
	StorageBucket     string
	StorageRegion     string
	StorageUseSSL     bool
	StoragePresignTTL time.Duration

	ExportDir string
	LogFile   string
	LogLevel  string
}

func LoadConsole() (*Console, error) {
	cfg := &Console{
		APIBaseURL:       strings.TrimRight(getEnv("CONSOLE_API_BASE_URL", "http://localhost:8080/api/v1"), "/"),
		APIToken:         os.Getenv("CONSOLE_API_TOKEN"),
		LoginEmail:       strings.TrimSpace(strings.ToLower(os.Getenv("CONSOLE_LOGIN_EMAIL"))),
		LoginPassword:    os.Getenv("CONSOLE_LOGIN_PASSWORD"),
		AssetBaseURL:     strings.TrimRight(os.Getenv("ASSET_BASE_URL"), "/"),
		StorageEndpoint:  os.Getenv("STORAGE_ENDPOINT"),
		StorageAccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey: os.Getenv("STORAGE_SECRET_KEY"),
		StorageBucket:    getEnv("STORAGE_BUCKET", "product-images"),
		StorageRegion:    getEnv("STORAGE_REGION", "us-east-1"),
		StorageUseSSL:    getEnvBool("STORAGE_USE_SSL", false),
		ExportDir:        getEnv("CONSOLE_EXPORT_DIR", "."),
		LogFile:          os.Getenv("CONSOLE_LOG_FILE"),
		LogLevel:         strings.ToLower(getEnv("CONSOLE_LOG_LEVEL", "info")),
	}

	sizes, err := splitIntCSV(getEnv("CONSOLE_PAGE_SIZE_OPTIONS", "10,20,50,100"))
	if err != nil {
		return nil, fmt.Errorf("parse CONSOLE_PAGE_SIZE_OPTIONS: %w", err)
	}
	cfg.PageSizeOptions = sizes
	cfg.DefaultPageSize = getEnvInt("CONSOLE_PAGE_SIZE", 10)

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{key: "CONSOLE_REQUEST_TIMEOUT", def: "10s", dst: &cfg.RequestTimeout},
		{key: "CONSOLE_SEARCH_DEBOUNCE", def: "400ms", dst: &cfg.SearchDebounce},
		{key: "STORAGE_PRESIGN_TTL", def: "15m", dst: &cfg.StoragePresignTTL},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Console) Validate() error {
	var errs []string
	if u, err := url.Parse(c.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "CONSOLE_API_BASE_URL must be an absolute URL")
	}
	if c.APIToken == "" && (c.LoginEmail == "") != (c.LoginPassword == "") {
		errs = append(errs, "CONSOLE_LOGIN_EMAIL and CONSOLE_LOGIN_PASSWORD must be set together")
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, "CONSOLE_REQUEST_TIMEOUT must be > 0")
	}
	if c.SearchDebounce <= 0 {
		errs = append(errs, "CONSOLE_SEARCH_DEBOUNCE must be > 0")
	}
	if len(c.PageSizeOptions) == 0 {
		errs = append(errs, "CONSOLE_PAGE_SIZE_OPTIONS must list at least one size")
	}
	for _, n := range c.PageSizeOptions {
		if n <= 0 || n > 100 {
			errs = append(errs, "CONSOLE_PAGE_SIZE_OPTIONS entries must be between 1 and 100")
			break
		}
	}
	if !slices.Contains(c.PageSizeOptions, c.DefaultPageSize) {
		errs = append(errs, "CONSOLE_PAGE_SIZE must be one of CONSOLE_PAGE_SIZE_OPTIONS")
	}
	if c.StorageEndpoint != "" && (c.StorageAccessKey == "" || c.StorageSecretKey == "") {
		errs = append(errs, "STORAGE_ACCESS_KEY and STORAGE_SECRET_KEY are required when STORAGE_ENDPOINT is set")
	}
	if !isValidLogLevel(c.LogLevel) {
		errs = append(errs, "CONSOLE_LOG_LEVEL must be one of debug, info, warn, error")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// HasCredentials reports whether the console can authenticate at all.
func (c *Console) HasCredentials() bool {
	return c.APIToken != "" || (c.LoginEmail != "" && c.LoginPassword != "")
}

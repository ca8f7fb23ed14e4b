package setto

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zeebo/blake3"
)

// Environment represents the Setto environment.
type Environment int

const (
	// Production is the live environment. HTTPS is enforced.
	Production Environment = iota
	// Development is the test environment.
	Development
)

func (e Environment) String() string {
	switch e {
	case Production:
		return "production"
	case Development:
		return "development"
	}
	return fmt.Sprintf("environment(%d)", int(e))
}

// ParseEnvironment accepts "production"/"prod" and "development"/"dev".
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "prod":
		return Production, nil
	case "development", "dev":
		return Development, nil
	}
	return 0, invalidConfig("unknown environment %q", s)
}

const (
	// APIKeyPrefix is the required prefix of partner API keys.
	APIKeyPrefix = "sk_partner."

	ProductionURL  = "https://wallet.settopay.com"
	DevelopmentURL = "https://dev-wallet.settopay.com"

	DefaultTimeout = 30 * time.Second

	sdkVersion       = "0.1.0"
	defaultUserAgent = "setto-server-sdk-go/" + sdkVersion
)

// Config holds the caller supplied settings for creating a Client.
type Config struct {
	APIKey      string      // Partner API Key (sk_partner.xxx)
	Environment Environment // Production or Development
}

// Doer sends an HTTP request. *http.Client satisfies it and must be safe for
// concurrent use, as must any replacement.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures the Client.
type Option func(*clientOptions)

type clientOptions struct {
	timeout    time.Duration
	timeoutSet bool
	httpClient Doer
	baseURL    string
	logger     Logger
	registerer prometheus.Registerer
	userAgent  string
}

// WithTimeout sets the per-call timeout. Default: 30s. Non-positive values are
// rejected by Resolve.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = d
		o.timeoutSet = true
	}
}

// WithHTTPClient replaces the default pooled http.Client.
func WithHTTPClient(c Doer) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithBaseURL overrides the environment URL. The value is used verbatim.
func WithBaseURL(url string) Option {
	return func(o *clientOptions) { o.baseURL = url }
}

// WithLogger sets the logger. Default: nothing is logged.
func WithLogger(l Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// WithMetrics registers request counters and latency histograms on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *clientOptions) { o.registerer = reg }
}

// WithUserAgent prefixes the SDK user agent with the caller's product token.
func WithUserAgent(product string) Option {
	return func(o *clientOptions) { o.userAgent = product }
}

// ResolvedConfig is the validated, immutable configuration a Client runs with.
type ResolvedConfig struct {
	apiKey      string
	environment Environment
	baseURL     string
	timeout     time.Duration
	httpClient  Doer
	logger      Logger
	metrics     *clientMetrics
	userAgent   string
}

// Resolve validates cfg and opts. It performs no network I/O.
func Resolve(cfg Config, opts ...Option) (*ResolvedConfig, error) {
	if cfg.APIKey == "" {
		return nil, invalidConfig("API key is required")
	}
	if !strings.HasPrefix(cfg.APIKey, APIKeyPrefix) {
		return nil, invalidConfig("API key must start with '%s'", APIKeyPrefix)
	}

	options := &clientOptions{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(options)
	}

	baseURL := options.baseURL
	if baseURL == "" {
		switch cfg.Environment {
		case Production:
			baseURL = ProductionURL
		case Development:
			baseURL = DevelopmentURL
		default:
			return nil, invalidConfig("unknown environment %s", cfg.Environment)
		}
	}

	if cfg.Environment == Production && !strings.HasPrefix(baseURL, "https://") {
		return nil, invalidConfig("HTTPS is required in production (got %s)", baseURL)
	}

	if options.timeoutSet && options.timeout <= 0 {
		return nil, invalidConfig("timeout must be positive (got %s)", options.timeout)
	}

	httpClient := options.httpClient
	if httpClient == nil {
		httpClient = newHTTPClient(options.timeout)
	}

	logger := options.logger
	if logger == nil {
		logger = defaultLogger()
	}

	metrics, err := newClientMetrics(options.registerer)
	if err != nil {
		return nil, invalidConfig("register metrics: %v", err)
	}

	userAgent := defaultUserAgent
	if options.userAgent != "" {
		userAgent = options.userAgent + " " + defaultUserAgent
	}

	return &ResolvedConfig{
		apiKey:      cfg.APIKey,
		environment: cfg.Environment,
		baseURL:     baseURL,
		timeout:     options.timeout,
		httpClient:  httpClient,
		logger:      logger,
		metrics:     metrics,
		userAgent:   userAgent,
	}, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 16
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// BaseURL returns the endpoint requests are sent to, exactly as configured.
func (rc *ResolvedConfig) BaseURL() string { return rc.baseURL }

// Environment returns the configured environment.
func (rc *ResolvedConfig) Environment() Environment { return rc.environment }

// Timeout returns the per-call timeout.
func (rc *ResolvedConfig) Timeout() time.Duration { return rc.timeout }

// Logger returns the logger calls report to.
func (rc *ResolvedConfig) Logger() Logger { return rc.logger }

// KeyFingerprint identifies the API key in logs without revealing it.
func (rc *ResolvedConfig) KeyFingerprint() string {
	return Fingerprint(rc.apiKey)
}

// Fingerprint returns the first 8 bytes of the BLAKE3 hash of apiKey, hex encoded.
func Fingerprint(apiKey string) string {
	sum := blake3.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:8])
}

func (rc *ResolvedConfig) endpoint(path string) string {
	return strings.TrimRight(rc.baseURL, "/") + path
}

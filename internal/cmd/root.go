package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	setto "github.com/settopay/setto-server-sdk-go"
	"github.com/settopay/setto-server-sdk-go/internal/credentials"
	"github.com/settopay/setto-server-sdk-go/internal/database"
	"github.com/settopay/setto-server-sdk-go/internal/utils"
)

const (
	version = "0.1.0"

	// APIKeyEnv overrides any stored credential
	APIKeyEnv = "SETTO_API_KEY"
	// PassphraseEnv unlocks the encrypted credentials file without a prompt
	PassphraseEnv = "SETTO_CREDENTIALS_PASSPHRASE"

	logCategory = "cli"
)

// cli holds the state shared by all commands of one invocation
type cli struct {
	configPath  string
	environment string
	baseURL     string
	timeout     time.Duration
	output      string
	apiKey      string

	config *utils.ConfigManager
	logger *utils.LogsManager
	store  credentials.Store

	journalMu sync.Mutex
	journal   *database.SQLiteManager

	// resolved by client()
	env         setto.Environment
	fingerprint string
}

// newRootCmd builds the setto command tree around c
func newRootCmd(c *cli) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "setto",
		Short: "Setto partner platform CLI",
		Long: `Manage merchants, check payments and verify Wallet ID tokens against the
Setto partner platform.

The API key is taken from --api-key, then the SETTO_API_KEY environment
variable (a .env file in the working directory is loaded), then the key stored
with 'setto login' for the selected environment.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "config file path")
	flags.StringVar(&c.environment, "env", "", "platform environment (production|development)")
	flags.StringVar(&c.baseURL, "base-url", "", "override the platform base URL")
	flags.DurationVar(&c.timeout, "timeout", 0, "per-request timeout (default from config)")
	flags.StringVarP(&c.output, "output", "o", "", "output format (json|yaml)")
	flags.StringVar(&c.apiKey, "api-key", "", "partner API key (sk_partner.…)")

	rootCmd.AddCommand(
		newLoginCmd(c),
		newLogoutCmd(c),
		newMerchantCmd(c),
		newUserCmd(c),
		newLinkCmd(c),
		newPaymentCmd(c),
		newTokenCmd(c),
		newHistoryCmd(c),
		newConfigCmd(c),
	)

	return rootCmd
}

func Execute() {
	c := &cli{}
	err := newRootCmd(c).Execute()
	// Runs on failure too, unlike PersistentPostRun
	c.teardown()

	if err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

func (c *cli) setup(cmd *cobra.Command) error {
	// A missing .env is normal
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	config, err := utils.NewConfigManager(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	c.config = config

	// Flags override config
	if c.environment != "" {
		config.SetConfig("environment", c.environment)
	}
	if c.baseURL != "" {
		config.SetConfig("base_url", c.baseURL)
	}
	if c.timeout != 0 {
		config.SetConfig("timeout", c.timeout)
	}
	if c.output != "" {
		config.SetConfig("output", c.output)
	}

	switch format := config.GetConfigWithDefault("output", "json"); format {
	case "json", "yaml":
	default:
		return fmt.Errorf("unsupported output format %q (json|yaml)", format)
	}

	env, err := setto.ParseEnvironment(config.GetConfigWithDefault("environment", "production"))
	if err != nil {
		return err
	}
	c.env = env

	logger, err := utils.NewLogsManager(config)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	c.logger = logger
	c.logger.Debug(fmt.Sprintf("Running '%s' against %s", cmd.CommandPath(), env), logCategory)

	paths := utils.GetAppPaths("")
	credentialsFile := utils.ResolvePath(paths.DataDir, config.GetConfigWithDefault("credentials_file", "credentials.json"))
	c.store = credentials.NewFallbackStore(
		credentials.NewKeyringStore(),
		credentials.NewFileStore(credentialsFile, c.credentialsPassphrase),
		c.logger,
	)

	return nil
}

func (c *cli) teardown() {
	c.journalMu.Lock()
	if c.journal != nil {
		c.journal.Close()
		c.journal = nil
	}
	c.journalMu.Unlock()

	if c.logger != nil {
		c.logger.Close()
	}
}

// credentialsPassphrase unlocks the file fallback of the credential store
func (c *cli) credentialsPassphrase() (string, error) {
	if p := os.Getenv(PassphraseEnv); p != "" {
		return p, nil
	}
	if p := c.config.GetConfigWithDefault("credentials_passphrase", ""); p != "" {
		return p, nil
	}
	if !isTerminal(os.Stdin) {
		return "", fmt.Errorf("%w: set %s", credentials.ErrPassphraseRequired, PassphraseEnv)
	}
	return promptSecret("Credentials file passphrase: ")
}

// resolveAPIKey picks the key from the flag, the environment, then the store
func (c *cli) resolveAPIKey() (string, error) {
	if c.apiKey != "" {
		return c.apiKey, nil
	}
	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		return key, nil
	}

	key, err := c.store.Get(c.env.String())
	if errors.Is(err, credentials.ErrNotFound) {
		return "", fmt.Errorf("no API key for %s: run 'setto login' or set %s", c.env, APIKeyEnv)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read stored API key: %w", err)
	}
	return key, nil
}

// client builds an SDK client from the resolved configuration
func (c *cli) client() (*setto.Client, error) {
	apiKey, err := c.resolveAPIKey()
	if err != nil {
		return nil, err
	}

	opts := []setto.Option{
		setto.WithTimeout(c.config.GetConfigDuration("timeout", setto.DefaultTimeout)),
		setto.WithLogger(c.logger),
		setto.WithUserAgent("setto-cli/" + version),
	}
	if baseURL := c.config.GetConfigWithDefault("base_url", ""); baseURL != "" {
		opts = append(opts, setto.WithBaseURL(baseURL))
	}

	client, err := setto.NewClient(setto.Config{APIKey: apiKey, Environment: c.env}, opts...)
	if err != nil {
		return nil, err
	}
	c.fingerprint = client.Config().KeyFingerprint()
	return client, nil
}

// platformURL is the base URL calls would go to, without needing an API key
func (c *cli) platformURL() string {
	if baseURL := c.config.GetConfigWithDefault("base_url", ""); baseURL != "" {
		return baseURL
	}
	if c.env == setto.Development {
		return setto.DevelopmentURL
	}
	return setto.ProductionURL
}

// formatError adds the platform's classification to err
func formatError(err error) string {
	kind := setto.KindOf(err)
	switch kind {
	case setto.KindUnknown, setto.KindPrecondition:
		return "Error: " + err.Error()
	}
	msg := fmt.Sprintf("Error (%s): %v", kind, err)
	if setto.IsRetryable(err) {
		msg += " [retryable]"
	}
	return msg
}

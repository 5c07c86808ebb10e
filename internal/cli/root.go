package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/proposta/internal/logging"
	"github.com/ppiankov/proposta/internal/model"
)

// Version is set at build time with -ldflags
var Version = "v0.1.0"

// PROPOSTA_STORE_KIND overrides store.kind, and so on
var replacer = strings.NewReplacer(".", "_")

var (
	cfgFile string
	verbose bool
	logger  = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "proposta",
	Short: "Proposta - commercial proposal generator backed by a shared catalog",
	Long: `Proposta builds commercial proposal documents from a shared catalog of
scope items, exclusions, client responsibilities, clients and coverage texts.

The catalog lives in an external tabular store (a spreadsheet, published CSV
endpoints, a CSV directory or a local SQLite mirror). A proposal form selects
catalog entries by short title; Proposta groups the chosen scope by category,
numbers the groups and renders the final document.

It computes no prices and does not validate the technical content of the
catalog entries.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(verbose)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = l
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug("using config file", zap.String("path", f))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "proposta %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.proposta/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// configDir is where config init writes and where the disk cache lives
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".proposta"), nil
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(viper.GetViper(), model.DefaultConfig())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(dir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("PROPOSTA")
	viper.SetEnvKeyReplacer(replacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Error reading config %s: %v\n", cfgFile, err)
		}
	}
}

// setDefaults registers every key so environment overrides reach Unmarshal
func setDefaults(v *viper.Viper, cfg *model.Config) {
	v.SetDefault("store.kind", string(cfg.Store.Kind))
	v.SetDefault("store.spreadsheet_id", cfg.Store.SpreadsheetID)
	v.SetDefault("store.credentials_file", cfg.Store.CredentialsFile)
	v.SetDefault("store.sqlite_path", cfg.Store.SQLitePath)
	v.SetDefault("store.dir", cfg.Store.Dir)
	v.SetDefault("store.watch", cfg.Store.Watch)
	v.SetDefault("store.legacy_titles", cfg.Store.LegacyTitles)

	v.SetDefault("cache.enabled", cfg.Cache.Enabled)
	v.SetDefault("cache.ttl", cfg.Cache.TTL)
	v.SetDefault("cache.dir", cfg.Cache.Dir)

	v.SetDefault("http.timeout", cfg.HTTP.Timeout)
	v.SetDefault("http.user_agent", cfg.HTTP.UserAgent)
	v.SetDefault("http.max_body_bytes", cfg.HTTP.MaxBodyBytes)
	v.SetDefault("http.http_proxy", cfg.HTTP.HTTPProxy)
	v.SetDefault("http.https_proxy", cfg.HTTP.HTTPSProxy)
	v.SetDefault("http.no_proxy", cfg.HTTP.NoProxy)
	v.SetDefault("http.requests_per_second", cfg.HTTP.RequestsPerSecond)
	v.SetDefault("http.burst", cfg.HTTP.Burst)

	v.SetDefault("proposal.quantity_label", cfg.Proposal.QuantityLabel)
	v.SetDefault("proposal.section", cfg.Proposal.Section)
	v.SetDefault("proposal.revision", cfg.Proposal.Revision)
	v.SetDefault("proposal.mode", string(cfg.Proposal.Mode))

	v.SetDefault("output.dir", cfg.Output.Dir)
	v.SetDefault("output.format", cfg.Output.Format)
	v.SetDefault("output.client_in_name", cfg.Output.ClientInName)

	v.SetDefault("workers", cfg.Workers)
}

// loadConfig merges defaults, the config file and PROPOSTA_* variables
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Cache.Enabled && cfg.Cache.TTL <= 0 {
		return nil, fmt.Errorf("cache.ttl must be positive when the cache is enabled, got %s (set cache.enabled: false to skip caching)", cfg.Cache.TTL)
	}
	return cfg, nil
}

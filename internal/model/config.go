package model

import "time"

// Config holds the complete runtime configuration
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	HTTP     HTTPConfig     `yaml:"http" mapstructure:"http"`
	Proposal ProposalConfig `yaml:"proposal" mapstructure:"proposal"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Workers  int            `yaml:"workers" mapstructure:"workers"`
}

// StoreKind names a catalog store transport
type StoreKind string

const (
	StoreCSV    StoreKind = "csv"    // published CSV endpoints, read-only
	StoreSheets StoreKind = "sheets" // authenticated spreadsheet API
	StoreSQLite StoreKind = "sqlite" // local SQLite mirror
	StoreDir    StoreKind = "dir"    // directory of <Table>.csv files
	StoreMemory StoreKind = "memory"
)

// StoreConfig selects and parameterizes the catalog store
type StoreConfig struct {
	Kind            StoreKind         `yaml:"kind" mapstructure:"kind"`
	SpreadsheetID   string            `yaml:"spreadsheet_id" mapstructure:"spreadsheet_id"`
	CredentialsFile string            `yaml:"credentials_file" mapstructure:"credentials_file"`
	CSVURLs         map[string]string `yaml:"csv_urls" mapstructure:"csv_urls"` // table name -> published CSV URL
	SQLitePath      string            `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	Dir             string            `yaml:"dir" mapstructure:"dir"`
	Watch           bool              `yaml:"watch" mapstructure:"watch"`
	LegacyTitles    bool              `yaml:"legacy_titles" mapstructure:"legacy_titles"`
}

// CacheConfig controls the catalog read cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Dir     string        `yaml:"dir" mapstructure:"dir"` // empty disables the disk layer
}

// HTTPConfig applies to the CSV transport
type HTTPConfig struct {
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy         string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy        string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy           string        `yaml:"no_proxy" mapstructure:"no_proxy"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	// HostRates overrides RequestsPerSecond for individual endpoint hosts
	HostRates map[string]float64 `yaml:"host_rates,omitempty" mapstructure:"host_rates"`
}

// ProposalConfig tunes document text synthesis
type ProposalConfig struct {
	QuantityLabel string    `yaml:"quantity_label" mapstructure:"quantity_label"`
	Section       string    `yaml:"section" mapstructure:"section"`
	Revision      string    `yaml:"revision" mapstructure:"revision"`
	Mode          ScopeMode `yaml:"mode" mapstructure:"mode"`
}

// OutputConfig controls generated files
type OutputConfig struct {
	Dir          string `yaml:"dir" mapstructure:"dir"`
	Format       string `yaml:"format" mapstructure:"format"` // html or json
	ClientInName bool   `yaml:"client_in_name" mapstructure:"client_in_name"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Kind: StoreSheets,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     60 * time.Second,
		},
		HTTP: HTTPConfig{
			Timeout:           30 * time.Second,
			UserAgent:         "Proposta/0.1",
			MaxBodyBytes:      5_000_000,
			RequestsPerSecond: 2,
			Burst:             5,
		},
		Proposal: ProposalConfig{
			QuantityLabel: "Quantidade",
			Section:       "1",
			Revision:      DefaultRevision,
			Mode:          ScopeModeGrouped,
		},
		Output: OutputConfig{
			Dir:    ".",
			Format: "html",
		},
		Workers: 4,
	}
}

package types

import "time"

// Supported storage adapter names.
const (
	AdapterMemory = "memory"
	AdapterSQLite = "sqlite"
	AdapterRedis  = "redis"
)

// Conflict resolution policies for two-way sync.
const (
	ClientWins = "client-wins"
	ServerWins = "server-wins"
	NewestWins = "newest-wins"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultNamespace    = "chartstore"
	DefaultCacheTTL     = 5 * time.Minute
	DefaultSyncInterval = 30 * time.Second
)

// Config selects and parameterizes the storage adapter, cache, and the
// optional background sync. Zero values fall back to defaults via
// ApplyDefaults; Validate rejects configurations no adapter can serve.
type Config struct {
	Adapter       string        `json:"adapter" yaml:"adapter" mapstructure:"adapter"`
	DataDir       string        `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	Namespace     string        `json:"namespace" yaml:"namespace" mapstructure:"namespace"`
	RedisAddr     string        `json:"redis_addr" yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword string        `json:"redis_password" yaml:"redis_password" mapstructure:"redis_password"`
	RedisDB       int           `json:"redis_db" yaml:"redis_db" mapstructure:"redis_db"`
	CacheTTL      time.Duration `json:"cache_ttl" yaml:"cache_ttl" mapstructure:"cache_ttl"`
	SeedOnOpen    bool          `json:"seed_on_open" yaml:"seed_on_open" mapstructure:"seed_on_open"`
	Sync          SyncConfig    `json:"sync" yaml:"sync" mapstructure:"sync"`
}

// SyncConfig drives the background sync manager. Collections defaults to
// the standard clinic set; ConflictPolicy defaults to newest-wins.
type SyncConfig struct {
	Enabled        bool          `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Endpoint       string        `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`
	APIKey         string        `json:"api_key" yaml:"api_key" mapstructure:"api_key"`
	Interval       time.Duration `json:"interval" yaml:"interval" mapstructure:"interval"`
	Collections    []string      `json:"collections" yaml:"collections" mapstructure:"collections"`
	ConflictPolicy string        `json:"conflict_policy" yaml:"conflict_policy" mapstructure:"conflict_policy"`
}

// knownAdapters lists the adapters that Validate accepts.
var knownAdapters = map[string]bool{
	AdapterMemory: true,
	AdapterSQLite: true,
	AdapterRedis:  true,
}

// knownPolicies lists the conflict policies that Validate accepts.
var knownPolicies = map[string]bool{
	ClientWins: true,
	ServerWins: true,
	NewestWins: true,
}

// ApplyDefaults fills unset optional fields in place. The adapter itself
// stays untouched so that Validate can flag a missing selection.
func (c *Config) ApplyDefaults() {
	if c.Namespace == "" {
		c.Namespace = DefaultNamespace
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.Sync.Interval <= 0 {
		c.Sync.Interval = DefaultSyncInterval
	}
	if c.Sync.ConflictPolicy == "" {
		c.Sync.ConflictPolicy = NewestWins
	}
	if len(c.Sync.Collections) == 0 {
		c.Sync.Collections = append([]string(nil), StandardCollections...)
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.Adapter == "" {
		return ErrAdapterEmpty
	}
	if !knownAdapters[c.Adapter] {
		return ErrAdapterUnknown
	}
	if c.Sync.Enabled {
		if c.Sync.Endpoint == "" {
			return ErrEndpointEmpty
		}
		if c.Sync.Interval < 0 {
			return ErrSyncIntervalInvalid
		}
		if c.Sync.ConflictPolicy != "" && !knownPolicies[c.Sync.ConflictPolicy] {
			return ErrConflictPolicyUnknown
		}
	}
	return nil
}

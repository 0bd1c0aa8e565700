// Package config provides layered configuration loading.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the resolved configuration.
type Config struct {
	// API settings
	BaseURL string
	APIKey  string
	Timeout int // seconds

	// Request defaults
	DefaultPriority int
	DefaultLimit    int

	// Profile settings (named server+credential bundles)
	Profiles       map[string]*ProfileConfig
	DefaultProfile string
	ActiveProfile  string // set at runtime, not persisted

	// Cache settings
	CacheDir     string
	CacheEnabled bool

	// Output settings
	Format string

	// Behavior preferences (persisted via config set, overridable by flags)
	Hints   *bool
	Stats   *bool
	Verbose *int

	// Sources tracks where each value came from (for config show).
	Sources map[string]string
}

// ProfileConfig holds configuration for a named profile.
type ProfileConfig struct {
	BaseURL string
	APIKey  string
	Timeout int
}

// Source indicates where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceSystem  Source = "system"
	SourceGlobal  Source = "global"
	SourceLocal   Source = "local"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
	SourceProfile Source = "profile"
)

// FlagOverrides holds command-line flag values.
type FlagOverrides struct {
	BaseURL string
	Format  string
	Profile string
	Timeout int
	NoCache bool
	Stats   bool
	Verbose int
}

// Default returns the default configuration.
func Default() *Config {
	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		home, _ := os.UserHomeDir()
		cacheDir = filepath.Join(home, ".cache")
	}

	return &Config{
		Timeout:         30,
		DefaultPriority: 3,
		DefaultLimit:    100,
		CacheDir:        filepath.Join(cacheDir, "tcli"),
		CacheEnabled:    true,
		Format:          "auto",
		Sources:         make(map[string]string),
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence: flags > env > profile > local > global > system > defaults
func Load(overrides FlagOverrides) (*Config, error) {
	cfg := Default()

	loadFromFile(cfg, SystemConfigPath(), SourceSystem)
	loadFromFile(cfg, GlobalConfigPath(), SourceGlobal)
	loadFromFile(cfg, LocalConfigPath(), SourceLocal)

	loadFromEnv(cfg)
	applyOverrides(cfg, overrides)

	// Profile overlay overwrites config fields, so env vars and flags
	// are applied again afterwards to keep the final say.
	if name := profileName(cfg, overrides); name != "" {
		if err := cfg.ApplyProfile(name); err != nil {
			return nil, err
		}
		loadFromEnv(cfg)
		applyOverrides(cfg, overrides)
	}

	return cfg, nil
}

func profileName(cfg *Config, o FlagOverrides) string {
	if o.Profile != "" {
		return o.Profile
	}
	if v := os.Getenv("TCLI_PROFILE"); v != "" {
		return v
	}
	return cfg.DefaultProfile
}

// fileConfig mirrors the on-disk YAML schema. Pointer fields
// distinguish absent keys from zero values.
type fileConfig struct {
	API      *apiSection      `yaml:"api"`
	Defaults *defaultsSection `yaml:"defaults"`
	Output   *outputSection   `yaml:"output"`
	Cache    *cacheSection    `yaml:"cache"`

	Hints          *bool                   `yaml:"hints"`
	Stats          *bool                   `yaml:"stats"`
	Verbose        *int                    `yaml:"verbose"`
	DefaultProfile *string                 `yaml:"default_profile"`
	Profiles       map[string]*profileFile `yaml:"profiles"`
}

type apiSection struct {
	BaseURL *string `yaml:"base_url"`
	APIKey  *string `yaml:"api_key"`
	Timeout *int    `yaml:"timeout"`
}

type defaultsSection struct {
	Priority *int `yaml:"priority"`
	Limit    *int `yaml:"limit"`
}

type outputSection struct {
	Format *string `yaml:"format"`
}

type cacheSection struct {
	Dir     *string `yaml:"dir"`
	Enabled *bool   `yaml:"enabled"`
}

type profileFile struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Timeout int    `yaml:"timeout"`
}

func loadFromFile(cfg *Config, path string, source Source) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Path is from trusted config locations
	if err != nil {
		return // File doesn't exist, skip
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		warnf("skipping malformed config at %s: %v", path, err)
		return
	}

	applyFile(cfg, &fc, source, path)
}

func applyFile(cfg *Config, fc *fileConfig, source Source, path string) {
	// Authority keys (api.base_url, profiles, default_profile) control
	// where the API key is sent, and api.api_key controls which key is
	// used. A config file in the current directory must not set these:
	// a planted .tcli/config.yaml could redirect authenticated traffic.
	untrusted := source == SourceLocal

	if fc.API != nil {
		if v := fc.API.BaseURL; v != nil && *v != "" {
			if untrusted {
				warnf("ignoring api.base_url %q from %s config at %s (authority keys are not trusted from local config)", *v, source, path)
			} else {
				cfg.BaseURL = NormalizeBaseURL(*v)
				cfg.Sources["api.base_url"] = string(source)
			}
		}
		if v := fc.API.APIKey; v != nil && *v != "" {
			if untrusted {
				warnf("ignoring api.api_key from %s config at %s (credentials are not trusted from local config)", source, path)
			} else {
				cfg.APIKey = *v
				cfg.Sources["api.api_key"] = string(source)
			}
		}
		if v := fc.API.Timeout; v != nil {
			if *v >= 1 {
				cfg.Timeout = *v
				cfg.Sources["api.timeout"] = string(source)
			} else {
				warnf("ignoring api.timeout %d from %s config at %s (must be a positive number of seconds)", *v, source, path)
			}
		}
	}

	if fc.Defaults != nil {
		if v := fc.Defaults.Priority; v != nil {
			if *v >= 1 && *v <= 5 {
				cfg.DefaultPriority = *v
				cfg.Sources["defaults.priority"] = string(source)
			} else {
				warnf("ignoring defaults.priority %d from %s config at %s (must be between 1 and 5)", *v, source, path)
			}
		}
		if v := fc.Defaults.Limit; v != nil {
			if *v >= 1 {
				cfg.DefaultLimit = *v
				cfg.Sources["defaults.limit"] = string(source)
			} else {
				warnf("ignoring defaults.limit %d from %s config at %s (must be positive)", *v, source, path)
			}
		}
	}

	if fc.Output != nil {
		if v := fc.Output.Format; v != nil && *v != "" {
			cfg.Format = *v
			cfg.Sources["output.format"] = string(source)
		}
	}

	if fc.Cache != nil {
		if v := fc.Cache.Dir; v != nil && *v != "" {
			cfg.CacheDir = *v
			cfg.Sources["cache.dir"] = string(source)
		}
		if v := fc.Cache.Enabled; v != nil {
			cfg.CacheEnabled = *v
			cfg.Sources["cache.enabled"] = string(source)
		}
	}

	if fc.Hints != nil {
		cfg.Hints = fc.Hints
		cfg.Sources["hints"] = string(source)
	}
	if fc.Stats != nil {
		cfg.Stats = fc.Stats
		cfg.Sources["stats"] = string(source)
	}
	if fc.Verbose != nil {
		if *fc.Verbose >= 0 && *fc.Verbose <= 2 {
			cfg.Verbose = fc.Verbose
			cfg.Sources["verbose"] = string(source)
		} else {
			warnf("ignoring verbose %d from %s config at %s (must be 0, 1 or 2)", *fc.Verbose, source, path)
		}
	}

	if v := fc.DefaultProfile; v != nil && *v != "" {
		if untrusted {
			warnf("ignoring default_profile %q from %s config at %s (authority keys are not trusted from local config)", *v, source, path)
		} else {
			cfg.DefaultProfile = *v
			cfg.Sources["default_profile"] = string(source)
		}
	}

	if len(fc.Profiles) > 0 {
		if untrusted {
			warnf("ignoring profiles from %s config at %s (authority keys are not trusted from local config)", source, path)
		} else {
			if cfg.Profiles == nil {
				cfg.Profiles = make(map[string]*ProfileConfig)
			}
			for name, p := range fc.Profiles {
				if p == nil || p.BaseURL == "" {
					// A profile without a base_url selects nothing
					continue
				}
				cfg.Profiles[name] = &ProfileConfig{
					BaseURL: NormalizeBaseURL(p.BaseURL),
					APIKey:  p.APIKey,
					Timeout: p.Timeout,
				}
			}
			cfg.Sources["profiles"] = string(source)
		}
	}
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TAPI_URL"); v != "" {
		cfg.BaseURL = NormalizeBaseURL(v)
		cfg.Sources["api.base_url"] = string(SourceEnv)
	}
	if v := os.Getenv("TAPI_KEY"); v != "" {
		cfg.APIKey = v
		cfg.Sources["api.api_key"] = string(SourceEnv)
	}
	if v := os.Getenv("TCLI_DEBUG"); v != "" {
		if lvl, ok := parseDebugLevel(v); ok {
			cfg.Verbose = &lvl
			cfg.Sources["verbose"] = string(SourceEnv)
		}
	}
}

// parseEnvBool parses a boolean value strictly. Unrecognized values are
// ignored by callers to preserve three-state pointer semantics.
func parseEnvBool(v string) (bool, bool) {
	switch strings.ToLower(v) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	default:
		return false, false
	}
}

func parseDebugLevel(v string) (int, bool) {
	switch strings.ToLower(v) {
	case "0", "false":
		return 0, true
	case "1", "true":
		return 1, true
	case "2":
		return 2, true
	default:
		return 0, false
	}
}

func applyOverrides(cfg *Config, o FlagOverrides) {
	if o.BaseURL != "" {
		cfg.BaseURL = NormalizeBaseURL(o.BaseURL)
		cfg.Sources["api.base_url"] = string(SourceFlag)
	}
	if o.Format != "" {
		cfg.Format = o.Format
		cfg.Sources["output.format"] = string(SourceFlag)
	}
	if o.Timeout > 0 {
		cfg.Timeout = o.Timeout
		cfg.Sources["api.timeout"] = string(SourceFlag)
	}
	if o.NoCache {
		cfg.CacheEnabled = false
		cfg.Sources["cache.enabled"] = string(SourceFlag)
	}
	if o.Stats {
		v := true
		cfg.Stats = &v
		cfg.Sources["stats"] = string(SourceFlag)
	}
	if o.Verbose > 0 {
		v := o.Verbose
		cfg.Verbose = &v
		cfg.Sources["verbose"] = string(SourceFlag)
	}
}

// ApplyProfile overlays profile values onto the config. Load re-applies
// env vars and flags afterwards so they keep final precedence.
func (cfg *Config) ApplyProfile(name string) error {
	if cfg.Profiles == nil {
		return fmt.Errorf("no profiles configured")
	}
	p, ok := cfg.Profiles[name]
	if !ok {
		return fmt.Errorf("profile %q not found", name)
	}

	cfg.ActiveProfile = name

	if p.BaseURL != "" {
		cfg.BaseURL = p.BaseURL
		cfg.Sources["api.base_url"] = string(SourceProfile)
	}
	if p.APIKey != "" {
		cfg.APIKey = p.APIKey
		cfg.Sources["api.api_key"] = string(SourceProfile)
	}
	if p.Timeout > 0 {
		cfg.Timeout = p.Timeout
		cfg.Sources["api.timeout"] = string(SourceProfile)
	}

	return nil
}

// Validate checks that the settings required to reach the service are
// present. The API key is checked separately because it can also come
// from the credential store.
func (cfg *Config) Validate() error {
	if cfg.BaseURL == "" {
		return fmt.Errorf("API base URL not configured. Set TAPI_URL environment variable or create config file at %s", GlobalConfigPath())
	}
	return nil
}

// VerboseLevel returns the effective verbosity (0 when unset).
func (cfg *Config) VerboseLevel() int {
	if cfg.Verbose == nil {
		return 0
	}
	return *cfg.Verbose
}

// HintsEnabled reports whether error hints should be shown.
func (cfg *Config) HintsEnabled() bool {
	if cfg.Hints == nil {
		return true
	}
	return *cfg.Hints
}

// StatsEnabled reports whether session stats should be printed.
func (cfg *Config) StatsEnabled() bool {
	if cfg.Stats == nil {
		return false
	}
	return *cfg.Stats
}

func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}

// Path helpers

// SystemConfigPath returns the machine-wide config file location.
func SystemConfigPath() string {
	return "/etc/tcli/config.yaml"
}

// GlobalConfigDir returns the directory holding the user config file.
// TCLI_CONFIG_DIR overrides the platform default.
func GlobalConfigDir() string {
	if v := os.Getenv("TCLI_CONFIG_DIR"); v != "" {
		return v
	}
	home, _ := os.UserHomeDir()
	if runtime.GOOS == "windows" {
		return filepath.Join(home, ".tcli")
	}
	if configDir := os.Getenv("XDG_CONFIG_HOME"); configDir != "" {
		return filepath.Join(configDir, "tcli")
	}
	return filepath.Join(home, ".config", "tcli")
}

// GlobalConfigPath returns the user config file location.
func GlobalConfigPath() string {
	return filepath.Join(GlobalConfigDir(), "config.yaml")
}

// LocalConfigPath returns the per-directory config file location.
// Local config is untrusted: it cannot set authority keys.
func LocalConfigPath() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, ".tcli", "config.yaml")
}

// Layer pairs a config source with its file path.
type Layer struct {
	Source Source
	Path   string
}

// Layers returns the config file locations in load order.
func Layers() []Layer {
	return []Layer{
		{SourceSystem, SystemConfigPath()},
		{SourceGlobal, GlobalConfigPath()},
		{SourceLocal, LocalConfigPath()},
	}
}

// Config file editing (config set / config unset)

var formatNames = []string{"auto", "json", "markdown", "styled", "quiet", "ids", "count"}

// KnownKeys lists every key accepted by SetKey, for help output and
// shell completion. Profile keys follow the pattern
// profiles.<name>.{base_url,api_key,timeout}.
func KnownKeys() []string {
	return []string{
		"api.api_key",
		"api.base_url",
		"api.timeout",
		"cache.dir",
		"cache.enabled",
		"default_profile",
		"defaults.limit",
		"defaults.priority",
		"hints",
		"output.format",
		"stats",
		"verbose",
	}
}

func keyKind(key string) (string, bool) {
	if parts := strings.Split(key, "."); len(parts) >= 2 && parts[0] == "profiles" && parts[1] != "" {
		if len(parts) == 2 {
			return "section", true
		}
		if len(parts) == 3 {
			switch parts[2] {
			case "base_url":
				return "url", true
			case "api_key":
				return "string", true
			case "timeout":
				return "timeout", true
			}
		}
		return "", false
	}

	switch key {
	case "api.base_url":
		return "url", true
	case "api.api_key", "cache.dir", "default_profile":
		return "string", true
	case "api.timeout":
		return "timeout", true
	case "defaults.priority":
		return "priority", true
	case "defaults.limit":
		return "limit", true
	case "output.format":
		return "format", true
	case "cache.enabled", "hints", "stats":
		return "bool", true
	case "verbose":
		return "verbosity", true
	}
	return "", false
}

// coerceValue validates value against the key's type and returns the
// YAML scalar tag to store it under.
func coerceValue(key, value string) (tag, out string, err error) {
	kind, known := keyKind(key)
	if !known {
		return "", "", fmt.Errorf("unknown configuration key %q", key)
	}

	switch kind {
	case "url":
		if value == "" {
			return "", "", fmt.Errorf("%s cannot be empty", key)
		}
		return "!!str", NormalizeBaseURL(value), nil
	case "string":
		if value == "" {
			return "", "", fmt.Errorf("%s cannot be empty", key)
		}
		return "!!str", value, nil
	case "timeout", "limit":
		n, convErr := strconv.Atoi(value)
		if convErr != nil || n < 1 {
			return "", "", fmt.Errorf("%s must be a positive integer, got %q", key, value)
		}
		return "!!int", strconv.Itoa(n), nil
	case "priority":
		n, convErr := strconv.Atoi(value)
		if convErr != nil || n < 1 || n > 5 {
			return "", "", fmt.Errorf("%s must be between 1 and 5, got %q", key, value)
		}
		return "!!int", strconv.Itoa(n), nil
	case "format":
		f := strings.ToLower(value)
		if !slices.Contains(formatNames, f) {
			return "", "", fmt.Errorf("%s must be one of %s, got %q", key, strings.Join(formatNames, ", "), value)
		}
		return "!!str", f, nil
	case "bool":
		b, ok := parseEnvBool(value)
		if !ok {
			return "", "", fmt.Errorf("%s must be true or false, got %q", key, value)
		}
		return "!!bool", strconv.FormatBool(b), nil
	case "verbosity":
		n, convErr := strconv.Atoi(value)
		if convErr != nil || n < 0 || n > 2 {
			return "", "", fmt.Errorf("%s must be 0, 1 or 2, got %q", key, value)
		}
		return "!!int", strconv.Itoa(n), nil
	case "section":
		return "", "", fmt.Errorf("%s is a section; set %s.base_url or %s.api_key", key, key, key)
	}
	return "", "", fmt.Errorf("unknown configuration key %q", key)
}

// SetKey writes a single key into the config file at path, creating the
// file when missing. Comments in an existing file survive the rewrite.
func SetKey(path, key, value string) error {
	tag, out, err := coerceValue(key, value)
	if err != nil {
		return err
	}

	root, err := readDocument(path)
	if err != nil {
		return err
	}

	parent := root.Content[0]
	segments := strings.Split(key, ".")
	for _, segment := range segments[:len(segments)-1] {
		parent, err = childMapping(parent, segment, true)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	setScalar(parent, segments[len(segments)-1], tag, out)

	return writeDocument(path, root)
}

// UnsetKey removes a key from the config file at path. It reports
// whether the key was present. Whole profiles can be removed with
// profiles.<name>.
func UnsetKey(path, key string) (bool, error) {
	if _, known := keyKind(key); !known {
		return false, fmt.Errorf("unknown configuration key %q", key)
	}
	if _, err := os.Stat(path); err != nil {
		return false, nil
	}

	root, err := readDocument(path)
	if err != nil {
		return false, err
	}

	parent := root.Content[0]
	segments := strings.Split(key, ".")
	for _, segment := range segments[:len(segments)-1] {
		parent, err = childMapping(parent, segment, false)
		if err != nil {
			return false, fmt.Errorf("%s: %w", path, err)
		}
		if parent == nil {
			return false, nil
		}
	}
	if !removeKey(parent, segments[len(segments)-1]) {
		return false, nil
	}
	return true, writeDocument(path, root)
}

func readDocument(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Path is from trusted config locations
	if err != nil {
		if os.IsNotExist(err) {
			return emptyDocument(), nil
		}
		return nil, err
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return emptyDocument(), nil
	}
	if root.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s: top level is not a mapping", path)
	}
	return &root, nil
}

func emptyDocument() *yaml.Node {
	return &yaml.Node{
		Kind:    yaml.DocumentNode,
		Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
	}
}

// childMapping returns the mapping stored under key, optionally
// creating it. A null value is promoted to a mapping; any other scalar
// is an error rather than silently dropping what the user wrote.
func childMapping(parent *yaml.Node, key string, create bool) (*yaml.Node, error) {
	for i := 0; i+1 < len(parent.Content); i += 2 {
		if parent.Content[i].Value != key {
			continue
		}
		value := parent.Content[i+1]
		if value.Kind == yaml.MappingNode {
			return value, nil
		}
		if value.Tag == "!!null" {
			value.Kind = yaml.MappingNode
			value.Tag = "!!map"
			value.Value = ""
			return value, nil
		}
		return nil, fmt.Errorf("%s is not a section", key)
	}

	if !create {
		return nil, nil
	}
	parent.Content = append(parent.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"},
	)
	return parent.Content[len(parent.Content)-1], nil
}

func setScalar(parent *yaml.Node, key, tag, value string) {
	for i := 0; i+1 < len(parent.Content); i += 2 {
		if parent.Content[i].Value == key {
			node := parent.Content[i+1]
			node.Kind = yaml.ScalarNode
			node.Style = 0
			node.Tag = tag
			node.Value = value
			node.Content = nil
			return
		}
	}
	parent.Content = append(parent.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value},
	)
}

func removeKey(parent *yaml.Node, key string) bool {
	for i := 0; i+1 < len(parent.Content); i += 2 {
		if parent.Content[i].Value == key {
			parent.Content = append(parent.Content[:i], parent.Content[i+2:]...)
			return true
		}
	}
	return false
}

func writeDocument(path string, root *yaml.Node) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return WriteFile(path, buf.Bytes())
}

// WriteFile writes a config file with owner-only permissions, creating
// the parent directory when missing. Config files can carry api_key.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// DefaultFileContent renders the starter config written by config init.
// Empty values come out as commented examples.
func DefaultFileContent(baseURL, apiKey string) string {
	var b strings.Builder
	b.WriteString("# tcli configuration.\n")
	b.WriteString("#\n")
	b.WriteString("# Environment variables (TAPI_URL, TAPI_KEY) and command line\n")
	b.WriteString("# flags override values set here.\n")
	b.WriteString("\n")
	b.WriteString("api:\n")
	if baseURL != "" {
		fmt.Fprintf(&b, "  base_url: %s\n", NormalizeBaseURL(baseURL))
	} else {
		b.WriteString("  # base_url: https://tapi.example.com\n")
	}
	if apiKey != "" {
		fmt.Fprintf(&b, "  api_key: %s\n", apiKey)
	} else {
		b.WriteString("  # api_key: <your key, or run 'tcli auth login'>\n")
	}
	b.WriteString("  # Request timeout in seconds.\n")
	b.WriteString("  # timeout: 30\n")
	b.WriteString("\n")
	b.WriteString("# Field defaults for new todos and list queries.\n")
	b.WriteString("# defaults:\n")
	b.WriteString("#   priority: 3\n")
	b.WriteString("#   limit: 100\n")
	b.WriteString("\n")
	b.WriteString("# Output format: auto, json, markdown, styled, quiet, ids, count.\n")
	b.WriteString("# output:\n")
	b.WriteString("#   format: auto\n")
	b.WriteString("\n")
	b.WriteString("# Response cache (ETag revalidation).\n")
	b.WriteString("# cache:\n")
	b.WriteString("#   enabled: true\n")
	b.WriteString("#   dir: /path/to/cache\n")
	b.WriteString("\n")
	b.WriteString("# Named server bundles, selected with --profile or TCLI_PROFILE.\n")
	b.WriteString("# profiles:\n")
	b.WriteString("#   staging:\n")
	b.WriteString("#     base_url: https://staging.tapi.example.com\n")
	b.WriteString("#     api_key: <staging key>\n")
	return b.String()
}

// NormalizeBaseURL ensures consistent URL format (no trailing slash).
func NormalizeBaseURL(url string) string {
	return strings.TrimSuffix(url, "/")
}

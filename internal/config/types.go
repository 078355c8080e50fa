// Package config loads and validates the plugin's own YAML configuration —
// separate from the FDU manifests the engine processes at runtime.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"gopkg.in/yaml.v3"
)

// PluginConfig is the complete configuration for one kvm-fdurt process.
type PluginConfig struct {
	// BaseDir is the root of the plugin's working tree: disks/, images/, logs/.
	BaseDir string `yaml:"base_dir"`

	// FabricLocator addresses the desired/actual-state store (etcd endpoints,
	// comma-separated, e.g. "127.0.0.1:2379").
	FabricLocator string `yaml:"fabric_locator"`

	// NodeID identifies this host within the fabric's key namespace.
	NodeID string `yaml:"node_id"`

	PluginUUID    string `yaml:"plugin_uuid"`
	PluginName    string `yaml:"plugin_name,omitempty"`
	PluginVersion string `yaml:"plugin_version,omitempty"`

	// LibvirtURI is the connection URI passed to the hypervisor driver
	// (default: "qemu:///system").
	LibvirtURI string `yaml:"libvirt_uri,omitempty"`

	// DomainReadyTimeoutSeconds bounds the post-create() poll for state==RUNNING.
	DomainReadyTimeoutSeconds int `yaml:"domain_ready_timeout_seconds,omitempty"`

	// ShutdownPollAttempts and ShutdownPollIntervalMillis bound the
	// post-shutdown() poll before stop_fdu falls back to destroy().
	ShutdownPollAttempts      int `yaml:"shutdown_poll_attempts,omitempty"`
	ShutdownPollIntervalMillis int `yaml:"shutdown_poll_interval_millis,omitempty"`

	// EtcdEndpoints overrides FabricLocator when multiple endpoints are needed.
	EtcdEndpoints          []string `yaml:"etcd_endpoints,omitempty"`
	EtcdDialTimeoutSeconds int      `yaml:"etcd_dial_timeout_seconds,omitempty"`

	// LogLevel sets the process log verbosity: debug, info, warn, or error.
	LogLevel string `yaml:"log_level,omitempty"`
}

const (
	defaultLibvirtURI                 = "qemu:///system"
	defaultDomainReadyTimeoutSeconds   = 60
	defaultShutdownPollAttempts        = 100
	defaultShutdownPollIntervalMillis  = 15
	defaultEtcdDialTimeoutSeconds      = 5
)

// Normalize fills zero-value fields with defaults and trims whitespace from
// identifiers. Must be called before Validate.
func (c *PluginConfig) Normalize() {
	c.BaseDir = strings.TrimSpace(c.BaseDir)
	c.FabricLocator = strings.TrimSpace(c.FabricLocator)
	c.NodeID = strings.ToLower(strings.TrimSpace(c.NodeID))
	c.PluginUUID = strings.TrimSpace(c.PluginUUID)

	if c.LibvirtURI == "" {
		c.LibvirtURI = defaultLibvirtURI
	}
	if c.DomainReadyTimeoutSeconds == 0 {
		c.DomainReadyTimeoutSeconds = defaultDomainReadyTimeoutSeconds
	}
	if c.ShutdownPollAttempts == 0 {
		c.ShutdownPollAttempts = defaultShutdownPollAttempts
	}
	if c.ShutdownPollIntervalMillis == 0 {
		c.ShutdownPollIntervalMillis = defaultShutdownPollIntervalMillis
	}
	if c.EtcdDialTimeoutSeconds == 0 {
		c.EtcdDialTimeoutSeconds = defaultEtcdDialTimeoutSeconds
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if len(c.EtcdEndpoints) == 0 && c.FabricLocator != "" {
		c.EtcdEndpoints = strings.Split(c.FabricLocator, ",")
		for i := range c.EtcdEndpoints {
			c.EtcdEndpoints[i] = strings.TrimSpace(c.EtcdEndpoints[i])
		}
	}
}

// Validate checks the configuration for errors. Does not attempt to reach
// the hypervisor or the fabric — only config structure.
func (c *PluginConfig) Validate() error {
	if c.BaseDir == "" {
		return fmt.Errorf("base_dir is required")
	}
	if c.FabricLocator == "" && len(c.EtcdEndpoints) == 0 {
		return fmt.Errorf("fabric_locator is required")
	}
	if c.NodeID == "" {
		return fmt.Errorf("node_id is required")
	}

	namePattern := `^[a-z0-9][a-z0-9_-]*[a-z0-9]$`
	if len(c.NodeID) == 1 {
		namePattern = `^[a-z0-9]$`
	}
	matched, err := regexp.MatchString(namePattern, c.NodeID)
	if err != nil {
		return fmt.Errorf("node_id validation error: %w", err)
	}
	if !matched {
		return fmt.Errorf("node_id must start and end with alphanumeric characters and contain only alphanumeric, hyphens, or underscores, got %q", c.NodeID)
	}

	if c.PluginUUID == "" {
		return fmt.Errorf("plugin_uuid is required")
	}

	if c.DomainReadyTimeoutSeconds <= 0 {
		return fmt.Errorf("domain_ready_timeout_seconds must be > 0, got %d", c.DomainReadyTimeoutSeconds)
	}
	if c.ShutdownPollAttempts <= 0 {
		return fmt.Errorf("shutdown_poll_attempts must be > 0, got %d", c.ShutdownPollAttempts)
	}
	if c.ShutdownPollIntervalMillis <= 0 {
		return fmt.Errorf("shutdown_poll_interval_millis must be > 0, got %d", c.ShutdownPollIntervalMillis)
	}
	if c.EtcdDialTimeoutSeconds <= 0 {
		return fmt.Errorf("etcd_dial_timeout_seconds must be > 0, got %d", c.EtcdDialTimeoutSeconds)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", c.LogLevel)
	}

	return nil
}

// DomainReadyTimeout returns the configured timeout as a time.Duration.
func (c *PluginConfig) DomainReadyTimeout() time.Duration {
	return time.Duration(c.DomainReadyTimeoutSeconds) * time.Second
}

// ShutdownPollInterval returns the configured poll interval as a time.Duration.
func (c *PluginConfig) ShutdownPollInterval() time.Duration {
	return time.Duration(c.ShutdownPollIntervalMillis) * time.Millisecond
}

// EtcdDialTimeout returns the configured etcd dial timeout as a time.Duration.
func (c *PluginConfig) EtcdDialTimeout() time.Duration {
	return time.Duration(c.EtcdDialTimeoutSeconds) * time.Second
}

// DisksDir, ImagesDir, and LogsDir return the plugin's standard subdirectories.
func (c *PluginConfig) DisksDir() string  { return fmt.Sprintf("%s/disks", c.BaseDir) }
func (c *PluginConfig) ImagesDir() string { return fmt.Sprintf("%s/images", c.BaseDir) }
func (c *PluginConfig) LogsDir() string   { return fmt.Sprintf("%s/logs", c.BaseDir) }

// LoadFromFile loads a plugin configuration from a YAML file, applying
// defaults and validating the result.
func LoadFromFile(path string) (*PluginConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg PluginConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// ValidateSSHKey checks that key is a well-formed SSH authorized-key line,
// used by define_fdu when a manifest carries an FDUSpec.SSHKey.
func ValidateSSHKey(key string) error {
	_, _, _, _, err := ssh.ParseAuthorizedKey([]byte(key))
	if err != nil {
		return fmt.Errorf("not a valid SSH public key: %w", err)
	}
	return nil
}

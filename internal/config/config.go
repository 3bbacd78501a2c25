package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Rotation defines the schedule and retention of the rotating log file.
type Rotation struct {
	When        string `yaml:"when,omitempty"`                                // hourly, daily, weekly, midnight or a duration ("6h", "2d")
	BackupCount *int   `yaml:"backup_count,omitempty" validate:"omitempty,min=-1"` // 0 or -1 keeps all, default 15
	MaxSize     string `yaml:"max_size,omitempty"`                            // MB value ("100") or with units ("100MB")
	Compress    bool   `yaml:"compress,omitempty"`
}

// Syslog defines the remote collector of the syslog sink.
type Syslog struct {
	Host        string `yaml:"host,omitempty"`
	Port        int    `yaml:"port,omitempty" validate:"min=0,max=65535"`
	Network     string `yaml:"network,omitempty" validate:"omitempty,oneof=udp tcp"`
	Format      string `yaml:"format,omitempty" validate:"omitempty,oneof=rfc3164 gelf"`
	Compression string `yaml:"compression,omitempty" validate:"omitempty,oneof=none gzip zlib"` // GELF over UDP only
}

// Admin defines the optional HTTP API used to change the logger at runtime.
type Admin struct {
	Enabled    bool     `yaml:"enabled"`
	Host       string   `yaml:"host"`
	Port       int      `yaml:"port" validate:"min=0,max=65535"`
	Mode       string   `yaml:"mode" validate:"omitempty,oneof=debug release"`
	AllowedIPs []string `yaml:"allowed_ips" validate:"dive,cidr_or_ip"`
	RateLimit  int      `yaml:"rate_limit" validate:"min=0"` // requests per minute per client IP, 0 disables
}

// Config represents the application configuration
type Config struct {
	Application    string   `yaml:"application" validate:"required"`
	Level          string   `yaml:"level" validate:"omitempty,oneof=DEBUG INFO WARNING WARN ERROR CRITICAL FATAL"`
	Verbose        *bool    `yaml:"verbose,omitempty"` // omitted = derive from level
	HostnamePrefix bool     `yaml:"hostname_prefix"`
	LogFile        string   `yaml:"log_file,omitempty"`
	Rotation       Rotation `yaml:"rotation"`
	Syslog         Syslog   `yaml:"syslog"`
	Admin          Admin    `yaml:"admin"`
}

// Default returns a configuration with every default applied.
func Default(application string) *Config {
	cfg := &Config{Application: application}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills unset fields. It is safe to call more than once.
func applyDefaults(cfg *Config) {
	cfg.Level = strings.ToUpper(strings.TrimSpace(cfg.Level))
	if cfg.Level == "" {
		cfg.Level = "WARNING"
	}
	if cfg.Rotation.When == "" {
		cfg.Rotation.When = "daily"
	}
	if cfg.Rotation.BackupCount == nil {
		backups := 15
		cfg.Rotation.BackupCount = &backups
	}
	if cfg.Syslog.Port == 0 {
		cfg.Syslog.Port = 514
	}
	if cfg.Syslog.Network == "" {
		cfg.Syslog.Network = "udp"
	}
	if cfg.Syslog.Format == "" {
		cfg.Syslog.Format = "rfc3164"
	}
	if cfg.Syslog.Compression == "" {
		cfg.Syslog.Compression = "none"
	}
	if cfg.Admin.Host == "" {
		cfg.Admin.Host = "127.0.0.1"
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 8514
	}
	if cfg.Admin.Mode == "" {
		cfg.Admin.Mode = "release"
	}
	if cfg.Admin.AllowedIPs == nil {
		cfg.Admin.AllowedIPs = []string{"127.0.0.1", "::1"}
	}
}

// Custom validator for CIDR or IP
var cidrOrIPRegex = regexp.MustCompile(`^([0-9]{1,3}\.){3}[0-9]{1,3}(\/([0-9]|[1-2][0-9]|3[0-2]))?$|^([0-9a-fA-F:]+:+)+[0-9a-fA-F]+(\/([0-9]|[1-9][0-9]|1[0-1][0-9]|12[0-8]))?$|^::1?(\/([0-9]|[1-9][0-9]|1[0-1][0-9]|12[0-8]))?$`)

func validateCIDROrIP(fl validator.FieldLevel) bool {
	ipOrCIDR := fl.Field().String()
	if ipOrCIDR == "" {
		return false
	}
	return cidrOrIPRegex.MatchString(ipOrCIDR)
}

// LoadConfig loads and validates the configuration from a file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file '%s': %w", path, err)
	}
	applyDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// validateConfig performs semantic validation of the configuration
func validateConfig(cfg *Config) error {
	if _, _, err := ParseRotationWhen(cfg.Rotation.When); err != nil {
		return fmt.Errorf("invalid rotation.when: %w", err)
	}
	if cfg.Rotation.MaxSize != "" {
		if _, err := cfg.Rotation.MaxSizeMB(); err != nil {
			return fmt.Errorf("invalid rotation.max_size: %w", err)
		}
	}
	if cfg.Syslog.Compression != "none" && cfg.Syslog.Format != "gelf" {
		return fmt.Errorf("syslog.compression '%s' requires syslog.format 'gelf'", cfg.Syslog.Compression)
	}
	if cfg.Admin.Enabled {
		if cfg.Admin.Port <= 0 {
			return errors.New("admin.port is required when admin is enabled")
		}
		if len(cfg.Admin.AllowedIPs) == 0 {
			return errors.New("admin.allowed_ips cannot be empty when admin is enabled")
		}
	}
	return nil
}

// ValidateConfig uses go-playground/validator for struct-level validation.
// It complements the semantic validation in validateConfig.
func ValidateConfig(cfg *Config) error {
	validate := validator.New()

	if err := validate.RegisterValidation("cidr_or_ip", validateCIDROrIP); err != nil {
		return fmt.Errorf("failed to register custom validator: %w", err)
	}

	err := validate.Struct(cfg)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return err
		}
		// Translate validation errors into a more readable format
		messages := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			messages = append(messages, fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", fe.Namespace(), fe.Tag()))
		}
		return errors.New(strings.Join(messages, "; "))
	}

	// Perform additional semantic validation (that validator can't easily handle)
	return validateConfig(cfg)
}

// ParseRotationWhen checks a rotation specifier. Named specifiers and their
// single-letter forms return the canonical name ("hourly", "daily", "weekly",
// "midnight"); durations such as "6h" or "2d" return an empty name. An empty
// specifier means daily. "midnight" has no fixed length and returns 0.
func ParseRotationWhen(when string) (string, time.Duration, error) {
	switch strings.ToLower(strings.TrimSpace(when)) {
	case "", "daily", "d":
		return "daily", 24 * time.Hour, nil
	case "hourly", "h":
		return "hourly", time.Hour, nil
	case "weekly", "w":
		return "weekly", 7 * 24 * time.Hour, nil
	case "midnight":
		return "midnight", 0, nil
	}
	d, err := ParseDuration(when)
	if err != nil {
		return "", 0, err
	}
	return "", d, nil
}

// MaxSizeMB returns the size trigger in megabytes (0 when unset).
// Plain numbers are megabytes; K, M and G suffixes are converted and
// rounded up to the 1 MB minimum of the rotation library.
func (r Rotation) MaxSizeMB() (int, error) {
	if r.MaxSize == "" {
		return 0, nil
	}
	if mb, err := strconv.Atoi(strings.TrimSpace(r.MaxSize)); err == nil {
		if mb < 0 {
			return 0, fmt.Errorf("size cannot be negative: %d", mb)
		}
		return mb, nil
	}
	sizeBytes, err := ParseSize(r.MaxSize)
	if err != nil {
		return 0, err
	}
	mb := int(sizeBytes / (1024 * 1024))
	if sizeBytes > 0 && mb == 0 {
		mb = 1
	}
	return mb, nil
}

// Backups returns the configured backup count, 15 when unset.
func (r Rotation) Backups() int {
	if r.BackupCount == nil {
		return 15
	}
	return *r.BackupCount
}

// ParseDuration parses a duration string (e.g., "10m", "1h30m", "7d").
// Supports standard time.ParseDuration units plus 'd' for days.
// Returns an error if the format is invalid or the duration is non-positive.
func ParseDuration(durationStr string) (time.Duration, error) {
	durationStr = strings.TrimSpace(durationStr)
	if durationStr == "" {
		return 0, errors.New("duration string cannot be empty")
	}

	// Handle 'd' suffix manually
	if strings.HasSuffix(strings.ToLower(durationStr), "d") {
		numStr := strings.TrimSuffix(strings.ToLower(durationStr), "d")
		days, err := strconv.ParseInt(numStr, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number format for days in '%s': %w", durationStr, err)
		}
		if days <= 0 {
			return 0, fmt.Errorf("duration must be positive: '%s'", durationStr)
		}
		d := time.Duration(days) * 24 * time.Hour
		if d <= 0 {
			return 0, fmt.Errorf("duration %dd results in overflow", days)
		}
		return d, nil
	}

	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return 0, fmt.Errorf("invalid duration format '%s': %w", durationStr, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive: '%s'", durationStr)
	}
	return d, nil
}

// ParseSize parses a size string (e.g., "10MB", "5k", "1G") into bytes.
// Supports K, M, G suffixes (case-insensitive), with or without a trailing B.
func ParseSize(sizeStr string) (int64, error) {
	sizeStr = strings.TrimSpace(strings.ToUpper(sizeStr))
	if sizeStr == "" {
		return 0, errors.New("size string cannot be empty")
	}

	multipliers := []struct {
		suffix string
		factor int64
	}{
		{"KB", 1024}, {"K", 1024},
		{"MB", 1024 * 1024}, {"M", 1024 * 1024},
		{"GB", 1024 * 1024 * 1024}, {"G", 1024 * 1024 * 1024},
	}

	numStr := sizeStr
	var multiplier int64 = 1
	for _, m := range multipliers {
		if strings.HasSuffix(sizeStr, m.suffix) {
			numStr = strings.TrimSpace(strings.TrimSuffix(sizeStr, m.suffix))
			multiplier = m.factor
			break
		}
	}

	// Use big.Int for invalid format detection and negative numbers
	numBig := new(big.Int)
	if _, ok := numBig.SetString(numStr, 10); !ok {
		return 0, fmt.Errorf("invalid number format in size string '%s'", sizeStr)
	}
	if numBig.Sign() < 0 {
		return 0, fmt.Errorf("size cannot be negative: %s", numBig.String())
	}

	resultBig := new(big.Int).Mul(numBig, big.NewInt(multiplier))
	if !resultBig.IsInt64() {
		return 0, fmt.Errorf("size value %s results in overflow (exceeds max int64)", sizeStr)
	}
	return resultBig.Int64(), nil
}

// Package config loads cofoundr settings from defaults, an optional YAML
// file, a .env file and COFOUNDR_* environment variables, in that order.
// Command-line flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all cofoundr configuration
type Config struct {
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`

	ArtifactDir string   `yaml:"artifact_dir"`
	S3          S3Config `yaml:"s3"`

	Kafka KafkaConfig `yaml:"kafka"`

	ListenAddr string `yaml:"listen_addr"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// S3Config selects the S3 artifact store when Bucket is set
type S3Config struct {
	Bucket        string        `yaml:"bucket"`
	Prefix        string        `yaml:"prefix"`
	Region        string        `yaml:"region"`
	Profile       string        `yaml:"profile"`
	PathStyle     bool          `yaml:"path_style"`
	PresignExpiry time.Duration `yaml:"presign_expiry"`
}

// KafkaConfig enables step event publishing when Brokers is non-empty
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		BaseURL:      DefaultBaseURL,
		Timeout:      DefaultTimeout,
		PollInterval: DefaultPollInterval,
		ArtifactDir:  filepath.Join(os.TempDir(), ArtifactDirName),
		S3: S3Config{
			PresignExpiry: DefaultPresignExpiry,
		},
		Kafka: KafkaConfig{
			Topic: DefaultKafkaTopic,
		},
		ListenAddr: DefaultListenAddr,
		LogLevel:   DefaultLogLevel,
		LogFile:    DefaultLogFile,
	}
}

// Load builds the configuration. An empty path or a missing file leaves the
// defaults in place; a .env file in the working directory is loaded if
// present.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from COFOUNDR_* variables
func (c *Config) applyEnv() error {
	setString(&c.BaseURL, "BASE_URL")
	setString(&c.ArtifactDir, "ARTIFACT_DIR")
	setString(&c.S3.Bucket, "S3_BUCKET")
	setString(&c.S3.Prefix, "S3_PREFIX")
	setString(&c.S3.Region, "S3_REGION")
	setString(&c.S3.Profile, "S3_PROFILE")
	setString(&c.Kafka.Topic, "KAFKA_TOPIC")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFile, "LOG_FILE")
	setString(&c.ListenAddr, "LISTEN_ADDR")

	if v := os.Getenv("PORT"); v != "" && os.Getenv(EnvPrefix+"LISTEN_ADDR") == "" {
		c.ListenAddr = ":" + v
	}

	if v := env("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}

	if v := env("S3_PATH_STYLE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sS3_PATH_STYLE: %w", EnvPrefix, err)
		}
		c.S3.PathStyle = b
	}

	for key, dst := range map[string]*time.Duration{
		"TIMEOUT":           &c.Timeout,
		"POLL_INTERVAL":     &c.PollInterval,
		"S3_PRESIGN_EXPIRY": &c.S3.PresignExpiry,
	} {
		v := env(key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
		}
		*dst = d
	}
	return nil
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("base URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base URL %q", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.S3.Bucket != "" && c.S3.PresignExpiry <= 0 {
		return fmt.Errorf("s3 presign expiry must be positive, got %s", c.S3.PresignExpiry)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + key))
}

func setString(dst *string, key string) {
	if v := env(key); v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is the hosted MyDayLog API.
const DefaultAPIURL = "https://my-daily-log-svc.onrender.com"

// Client holds the CLI settings stored in config.yaml.
type Client struct {
	APIURL  string        `yaml:"api_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultClient returns the built-in client settings.
func DefaultClient() Client {
	return Client{APIURL: DefaultAPIURL, Timeout: 15 * time.Second}
}

// Dir returns the directory holding config.yaml and state.yaml.
// MYDAYLOG_HOME overrides the user config directory.
func Dir() (string, error) {
	if d := os.Getenv("MYDAYLOG_HOME"); d != "" {
		return d, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(base, "mydaylog"), nil
}

// LoadClient reads config.yaml from dir, falling back to defaults when absent.
// MYDAYLOG_API_URL overrides the file. Trailing slashes are trimmed from the URL.
// PRE: none
// POST: APIURL is non-empty and has no trailing slash
func LoadClient(dir string) (Client, error) {
	cfg := DefaultClient()

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	if err != nil && !os.IsNotExist(err) {
		return Client{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Client{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if u := os.Getenv("MYDAYLOG_API_URL"); u != "" {
		cfg.APIURL = u
	}
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultClient().Timeout
	}
	return cfg, nil
}

// Save writes the client settings to dir/config.yaml.
func (c Client) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

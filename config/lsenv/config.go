// Package lsenv loads the installer configuration file and the operator
// credentials file.
package lsenv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kompox/lsinstall/domain/model"
	"github.com/kompox/lsinstall/internal/naming"
)

// Environment variable names
const (
	ConfigEnvKey = "LSINSTALL_CONFIG"
)

// Default file names
const (
	DefaultConfigFileName = "lsinstall.yml"
	DefaultEnvFileName    = ".env"
)

// Credential keys read from the env file.
const (
	EmailKey      = "initialOrgAdminEmail"
	LicenseKeyKey = "LicenseKey"
)

// Config is the installer configuration. Every field has a default so the
// config file is optional.
type Config struct {
	Repo            model.Repository  `yaml:"repo"`
	Primary         model.ReleaseSpec `yaml:"primary"`
	Extension       model.ReleaseSpec `yaml:"extension"`
	BaseTemplate    string            `yaml:"baseTemplate"`
	PrimaryValues   string            `yaml:"primaryValues"`   // file name, written next to BaseTemplate
	ExtensionValues string            `yaml:"extensionValues"` // file name, written next to BaseTemplate
	IngressName     string            `yaml:"ingressName"`
	PVCNames        []string          `yaml:"pvcNames"`
	InstallTimeout  time.Duration     `yaml:"installTimeout"`
	EndpointPoll    EndpointPoll      `yaml:"endpointPoll"`
}

// EndpointPoll bounds the ingress address polling after a primary install.
type EndpointPoll struct {
	Attempts int           `yaml:"attempts"`
	Interval time.Duration `yaml:"interval"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Repo:            model.Repository{Name: "langchain", URL: "https://langchain-ai.github.io/helm/"},
		Primary:         model.ReleaseSpec{Name: "langsmith", Chart: "langchain/langsmith"},
		Extension:       model.ReleaseSpec{Name: "langgraph-dataplane", Chart: "langchain/langgraph-dataplane"},
		BaseTemplate:    "langsmith_config.yaml",
		PrimaryValues:   "langsmith_config_values.yaml",
		ExtensionValues: "langsmith_config_ld_values.yaml",
		IngressName:     "langsmith-ingress",
		PVCNames: []string{
			"data-langsmith-postgres-0",
			"data-langsmith-redis-0",
			"data-langsmith-clickhouse-0",
			"data-langsmith-minio-0",
		},
		InstallTimeout: 30 * time.Minute,
		EndpointPoll:   EndpointPoll{Attempts: 30, Interval: 10 * time.Second},
	}
}

// ConfigPath picks the config file path: the flag value when explicitly set,
// then $LSINSTALL_CONFIG, then the default file name.
func ConfigPath(flagValue string, flagChanged bool) string {
	if flagChanged && flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(ConfigEnvKey); v != "" {
		return v
	}
	if flagValue != "" {
		return flagValue
	}
	return DefaultConfigFileName
}

// LoadConfig reads path over the defaults. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %q: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the fields the installer cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.Repo.Name == "" || c.Repo.URL == "" {
		errs = append(errs, errors.New("repo.name and repo.url are required"))
	}
	for _, r := range []model.ReleaseSpec{c.Primary, c.Extension} {
		if r.Chart == "" {
			errs = append(errs, fmt.Errorf("release %q: chart is required", r.Name))
		}
		if err := naming.ValidateReleaseName(r.Name); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Primary.Name == c.Extension.Name {
		errs = append(errs, fmt.Errorf("primary and extension releases share the name %q", c.Primary.Name))
	}
	if c.BaseTemplate == "" || c.PrimaryValues == "" || c.ExtensionValues == "" {
		errs = append(errs, errors.New("baseTemplate, primaryValues and extensionValues are required"))
	}
	for _, name := range []string{c.PrimaryValues, c.ExtensionValues} {
		if strings.ContainsRune(name, filepath.Separator) || strings.Contains(name, "/") {
			errs = append(errs, fmt.Errorf("output name %q must be a plain file name", name))
		}
	}
	if c.InstallTimeout <= 0 {
		errs = append(errs, errors.New("installTimeout must be positive"))
	}
	if c.EndpointPoll.Attempts < 1 || c.EndpointPoll.Interval < 0 {
		errs = append(errs, errors.New("endpointPoll.attempts must be at least 1 and interval non-negative"))
	}
	return errors.Join(errs...)
}

// PrimaryValuesPath is the derived primary document path.
func (c *Config) PrimaryValuesPath() string {
	return filepath.Join(filepath.Dir(c.BaseTemplate), c.PrimaryValues)
}

// ExtensionValuesPath is the derived extension document path.
func (c *Config) ExtensionValuesPath() string {
	return filepath.Join(filepath.Dir(c.BaseTemplate), c.ExtensionValues)
}

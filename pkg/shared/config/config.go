package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"

	"github.com/scan-io-git/scanio-analysis/pkg/history"
)

const (
	EnvConfigPath        = "SCANIO_ANALYSIS_CONFIG"
	EnvDashboardUser     = "AXIVION_USER"
	EnvDashboardPassword = "AXIVION_PASSWORD"
)

type Config struct {
	Logger       Logger                `yaml:"logger"`
	HTTPClient   HTTPClient            `yaml:"http_client"`
	Dashboard    Dashboard             `yaml:"dashboard"`
	Blame        Blame                 `yaml:"blame"`
	History      History               `yaml:"history"`
	QualityGates []history.QualityGate `yaml:"quality_gates"`
	Parsers      Parsers               `yaml:"parsers"`
}

type Logger struct {
	Level           string `yaml:"level"`
	DisableTime     *bool  `yaml:"disable_time"`
	JSONFormat      *bool  `yaml:"json_format"`
	IncludeLocation *bool  `yaml:"include_location"`
}

type HTTPClient struct {
	Debug            *bool           `yaml:"debug"`
	RetryCount       int             `yaml:"retry_count"`
	RetryWaitTime    time.Duration   `yaml:"retry_wait_time"`
	RetryMaxWaitTime time.Duration   `yaml:"retry_max_wait_time"`
	Timeout          time.Duration   `yaml:"timeout"`
	TLSClientConfig  TLSClientConfig `yaml:"tls_client_config"`
	Proxy            Proxy           `yaml:"proxy"`
}

type TLSClientConfig struct {
	Verify *bool `yaml:"verify"`
}

type Proxy struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Dashboard configures access to the Axivion dashboard. Credentials are never
// read from the file, see Credentials.
type Dashboard struct {
	ProjectURL                  string `yaml:"project_url"`
	BaseDir                     string `yaml:"base_dir"`
	NamedFilter                 string `yaml:"named_filter"`
	IgnoreSuppressedOrJustified *bool  `yaml:"ignore_suppressed_or_justified"`
}

type Blame struct {
	Disabled   bool   `yaml:"disabled"`
	PluginPath string `yaml:"plugin_path"`
}

type History struct {
	StoreFolder     string `yaml:"store_folder"`
	QualityGateMode string `yaml:"quality_gate_mode"`
	JobResultMode   string `yaml:"job_result_mode"`
	ReferenceJob    string `yaml:"reference_job"`
}

type Parsers struct {
	RulesFile string `yaml:"rules_file"`
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Credentials returns the dashboard user and password from the environment.
func Credentials(lookup LookupFunc) (string, string) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	user, _ := lookup(EnvDashboardUser)
	password, _ := lookup(EnvDashboardPassword)
	return user, password
}

func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// NewConfig loads the configuration file. An empty path falls back to the
// SCANIO_ANALYSIS_CONFIG variable; without any file the defaults are used.
func NewConfig(configPath string) (*Config, error) {
	config := &Config{}
	if configPath == "" {
		configPath = os.Getenv(EnvConfigPath)
	}
	if configPath == "" {
		return config, nil
	}

	if err := LoadYAML(configPath, config); err != nil {
		return nil, fmt.Errorf("failed to load config %q: %w", configPath, err)
	}

	return config, nil
}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/scan-io-git/scanio-analysis/pkg/history"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/files"
)

// ValidateConfig checks if the global configurations have valid values.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := ValidateHTTPConfig(&cfg.HTTPClient); err != nil {
		return fmt.Errorf("YAML global config: http_client directive is invalid: %w", err)
	}
	if err := ValidateDashboardConfig(&cfg.Dashboard); err != nil {
		return fmt.Errorf("YAML global config: dashboard directive is invalid: %w", err)
	}
	if err := ValidateHistoryConfig(&cfg.History); err != nil {
		return fmt.Errorf("YAML global config: history directive is invalid: %w", err)
	}
	for i, gate := range cfg.QualityGates {
		if err := gate.Validate(); err != nil {
			return fmt.Errorf("YAML global config: quality_gates[%d] is invalid: %w", i, err)
		}
	}
	if cfg.Parsers.RulesFile != "" {
		expanded, err := files.ExpandPath(cfg.Parsers.RulesFile)
		if err != nil {
			return fmt.Errorf("YAML global config: parsers directive is invalid: %w", err)
		}
		cfg.Parsers.RulesFile = expanded
	}
	return nil
}

// ValidateHTTPConfig checks if the HTTP configurations have valid values.
func ValidateHTTPConfig(httpConfig *HTTPClient) error {
	if httpConfig == nil {
		return fmt.Errorf("HTTP configuration is nil")
	}
	if httpConfig.RetryCount < 0 || httpConfig.RetryCount > 20 {
		return fmt.Errorf("retry_count must be between 0 and 20: %d", httpConfig.RetryCount)
	}

	durations := map[string]time.Duration{
		"RetryMaxWaitTime": httpConfig.RetryMaxWaitTime,
		"RetryWaitTime":    httpConfig.RetryWaitTime,
		"Timeout":          httpConfig.Timeout,
	}
	for name, duration := range durations {
		if err := validateDuration(duration, name, 300*time.Second); err != nil {
			return err
		}
	}

	if err := validateProxy(&httpConfig.Proxy); err != nil {
		return err
	}

	return nil
}

// ValidateDashboardConfig normalizes the project URL of the dashboard. An
// empty URL is accepted here and rejected by the commands that need it.
func ValidateDashboardConfig(dashboard *Dashboard) error {
	if dashboard == nil {
		return fmt.Errorf("dashboard configuration is nil")
	}
	if dashboard.ProjectURL == "" {
		return nil
	}
	dashboard.ProjectURL = strings.TrimRight(dashboard.ProjectURL, "/")
	u, err := url.Parse(dashboard.ProjectURL)
	if err != nil {
		return fmt.Errorf("invalid project_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("project_url must use http or https: %q", dashboard.ProjectURL)
	}
	return nil
}

// ValidateHistoryConfig checks the evaluation modes and sets the store folder.
func ValidateHistoryConfig(h *History) error {
	if h == nil {
		return fmt.Errorf("history configuration is nil")
	}
	if _, err := history.ParseQualityGateEvaluationMode(h.QualityGateMode); err != nil {
		return err
	}
	if _, err := history.ParseJobResultEvaluationMode(h.JobResultMode); err != nil {
		return err
	}
	h.StoreFolder = SetThen(h.StoreFolder, DefaultStoreFolder)
	expanded, err := files.ExpandPath(h.StoreFolder)
	if err != nil {
		return fmt.Errorf("failed to expand store_folder %q: %w", h.StoreFolder, err)
	}
	h.StoreFolder = expanded
	return nil
}

// validateDuration checks that a time.Duration is valid and within a specified maximum duration.
func validateDuration(d time.Duration, name string, max time.Duration) error {
	if d < 0 {
		return fmt.Errorf("invalid duration for %q: %v cannot be negative", name, d)
	}
	if d > max {
		return fmt.Errorf("%q duration is too long: %v exceeds maximum of %v", name, d, max)
	}
	return nil
}

// validateProxy checks if the given Proxy settings are valid.
func validateProxy(proxy *Proxy) error {
	if proxy == nil {
		return fmt.Errorf("proxy configuration is nil")
	}

	// If host or port is not set, skip further validation
	if proxy.Host == "" || proxy.Port == 0 {
		return nil
	}

	if err := validateHost(&proxy.Host); err != nil {
		return err
	}

	if err := validatePort(proxy.Port); err != nil {
		return err
	}

	return nil
}

// validateHost ensures the host includes a scheme; adds "http" if missing.
func validateHost(host *string) error {
	if host == nil {
		return fmt.Errorf("host string pointer is nil")
	}

	if !strings.Contains(*host, "://") {
		*host = "http://" + *host
	}
	*host = strings.TrimRight(*host, "/")

	if _, err := url.Parse(*host); err != nil {
		return fmt.Errorf("invalid host URL: %w", err)
	}

	return nil
}

// validatePort checks if the port part of the proxy configuration is valid.
func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

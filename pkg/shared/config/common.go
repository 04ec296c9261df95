package config

import (
	"crypto/tls"
	"fmt"
	"time"
)

// DefaultStoreFolder is used when history.store_folder is not configured.
const DefaultStoreFolder = ".scanio-analysis"

// ClientSettings are the effective settings of the dashboard HTTP client.
type ClientSettings struct {
	Debug            bool
	RetryCount       int
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
	Timeout          time.Duration
	TLSClientConfig  *tls.Config
	Proxy            string
}

// DefaultClientSettings returns the settings used for unset http_client values.
func DefaultClientSettings() ClientSettings {
	return ClientSettings{
		RetryCount:       3,
		RetryWaitTime:    1 * time.Second,
		RetryMaxWaitTime: 5 * time.Second,
		Timeout:          60 * time.Second,
		TLSClientConfig:  &tls.Config{MinVersion: tls.VersionTLS12},
	}
}

// Settings applies the configured values on top of DefaultClientSettings.
func (h HTTPClient) Settings() ClientSettings {
	s := DefaultClientSettings()
	s.Debug = BoolOr(h.Debug, s.Debug)
	s.RetryCount = SetThen(h.RetryCount, s.RetryCount)
	s.RetryWaitTime = SetThen(h.RetryWaitTime, s.RetryWaitTime)
	s.RetryMaxWaitTime = SetThen(h.RetryMaxWaitTime, s.RetryMaxWaitTime)
	s.Timeout = SetThen(h.Timeout, s.Timeout)
	s.TLSClientConfig.InsecureSkipVerify = !BoolOr(h.TLSClientConfig.Verify, true)
	if h.Proxy.Host != "" && h.Proxy.Port != 0 {
		s.Proxy = fmt.Sprintf("%s:%d", h.Proxy.Host, h.Proxy.Port)
	}
	return s
}

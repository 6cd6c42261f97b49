// Package config loads pulsewatch's startup configuration from the
// environment, mirroring the env-var surface of the original AppConfig.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"pulsewatch/internal/upstream"
)

const (
	defaultTimeoutMS = 1000
	defaultIP        = "127.0.0.1"
	defaultPort      = 8000
)

// Config is the fully parsed, validated startup configuration.
type Config struct {
	URLs      []string
	Interval  time.Duration
	SMAWindow int
	Timeout   time.Duration
	IP        string
	Port      int
}

// Load reads URLS, INTERVAL, SMA_N (required) and TIME_OUT, IP, PORT
// (optional, defaulted) from the environment. All missing-required-var
// errors are collected and returned together via multierr rather than
// failing on the first one.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("time_out", defaultTimeoutMS)
	v.SetDefault("ip", defaultIP)
	v.SetDefault("port", defaultPort)
	v.AutomaticEnv()
	_ = v.BindEnv("urls", "URLS")
	_ = v.BindEnv("interval", "INTERVAL")
	_ = v.BindEnv("sma_n", "SMA_N")
	_ = v.BindEnv("time_out", "TIME_OUT")
	_ = v.BindEnv("ip", "IP")
	_ = v.BindEnv("port", "PORT")

	var errs error

	rawURLs := strings.TrimSpace(v.GetString("urls"))
	if !v.IsSet("urls") || rawURLs == "" {
		errs = multierr.Append(errs, fmt.Errorf("URLS is required"))
	}
	if !v.IsSet("interval") || strings.TrimSpace(v.GetString("interval")) == "" {
		errs = multierr.Append(errs, fmt.Errorf("INTERVAL is required"))
	}
	if !v.IsSet("sma_n") || strings.TrimSpace(v.GetString("sma_n")) == "" {
		errs = multierr.Append(errs, fmt.Errorf("SMA_N is required"))
	}

	if errs != nil {
		return Config{}, errs
	}

	intervalMS := v.GetInt("interval")
	if intervalMS <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("INTERVAL must be a positive integer, got %q", v.GetString("interval")))
	}

	smaN := v.GetInt("sma_n")
	if smaN <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("SMA_N must be a positive integer, got %q", v.GetString("sma_n")))
	}

	if errs != nil {
		return Config{}, errs
	}

	urls := make([]string, 0)
	for _, part := range strings.Split(rawURLs, ",") {
		cleaned := strings.TrimSpace(upstream.CleanURL(part))
		if cleaned == "" {
			continue
		}
		urls = append(urls, cleaned)
	}
	if len(urls) == 0 {
		return Config{}, fmt.Errorf("URLS must contain at least one URL")
	}

	timeoutMS := v.GetInt("time_out")
	if timeoutMS <= 0 {
		timeoutMS = defaultTimeoutMS
	}

	port := v.GetInt("port")
	if port <= 0 {
		port = defaultPort
	}

	return Config{
		URLs:      urls,
		Interval:  time.Duration(intervalMS) * time.Millisecond,
		SMAWindow: smaN,
		Timeout:   time.Duration(timeoutMS) * time.Millisecond,
		IP:        v.GetString("ip"),
		Port:      port,
	}, nil
}

package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	JWTSecret   string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	JWTTTL      time.Duration `mapstructure:"jwt_ttl" yaml:"jwt_ttl"`

	OTPTTL time.Duration `mapstructure:"otp_ttl" yaml:"otp_ttl"`

	// BroadcastProfileUpdates controls whether a profile change is pushed to
	// every connected user or only persisted. Defaults to on so client
	// contact lists stay fresh; operators can disable it.
	BroadcastProfileUpdates bool `mapstructure:"broadcast_profile_updates" yaml:"broadcast_profile_updates"`

	// AuthRateLimit caps auth requests per client IP per minute. 0 disables.
	AuthRateLimit int `mapstructure:"auth_rate_limit" yaml:"auth_rate_limit"`

	MediaDir     string `mapstructure:"media_dir" yaml:"media_dir"`
	MediaBaseURL string `mapstructure:"media_base_url" yaml:"media_base_url"`

	SMTP SMTPConfig `mapstructure:"smtp" yaml:"smtp"`
}

// SMTPConfig holds outgoing mail settings. When Host is empty the server
// logs emails instead of sending them.
type SMTPConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	From     string `mapstructure:"from" yaml:"from"`
	FromName string `mapstructure:"from_name" yaml:"from_name"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:                    ":8080",
		ReadHeaderTimeout:       5 * time.Second,
		ShutdownTimeout:         5 * time.Second,
		LogLevel:                "info",
		DatabasePath:            "chatify.db",
		JWTIssuer:               "chatify",
		JWTAudience:             "chatify-clients",
		JWTTTL:                  7 * 24 * time.Hour,
		OTPTTL:                  10 * time.Minute,
		BroadcastProfileUpdates: true,
		AuthRateLimit:           30,
		MediaDir:                "media",
		MediaBaseURL:            "/media",
		SMTP: SMTPConfig{
			Port:     587,
			From:     "no-reply@chatify.local",
			FromName: "Chatify",
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.JWTSecret != "" {
		c.JWTSecret = other.JWTSecret
	}
}

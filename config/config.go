// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	resetURLOnly   = pflag.Bool("reset-url-only", false, "Never send reset mails, only log the reset URL")
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
)

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.domain", "host_domain")
	v.BindEnv("host.cors", "host_cors")
	v.BindEnv("host.frontend_url", "host_frontend_url")

	v.BindEnv("security.jwt_secret", "security_jwt_secret")
	v.BindEnv("security.jwt_lifetime_hours", "security_jwt_lifetime_hours")
	v.BindEnv("security.reset_lifetime_minutes", "security_reset_lifetime_minutes")
	v.BindEnv("security.rate_limit", "security_rate_limit")

	v.BindEnv("security.argon.memory", "security_argon_memory")
	v.BindEnv("security.argon.iterations", "security_argon_iterations")
	v.BindEnv("security.argon.parallelism", "security_argon_parallelism")

	v.BindEnv("database.url", "database_url")

	v.BindEnv("mail.host", "mail_host")
	v.BindEnv("mail.port", "mail_port")
	v.BindEnv("mail.sender_address", "mail_sender_address")
	v.BindEnv("mail.password", "mail_password")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")
	v.SetDefault("host.cors", "http://localhost:5173")
	v.SetDefault("host.frontend_url", "http://localhost:5173")

	v.SetDefault("security.jwt_lifetime_hours", 24)
	v.SetDefault("security.reset_lifetime_minutes", 60)
	v.SetDefault("security.rate_limit", 20)

	// Argon2id cost, RFC 9106 low-memory profile
	v.SetDefault("security.argon.memory", 64*1024)
	v.SetDefault("security.argon.iterations", 3)
	v.SetDefault("security.argon.parallelism", 2)

	v.SetDefault("mail.port", 587)

	if err := v.ReadInConfig(); err != nil {
		// Envs and defaults can carry the whole config on their own
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	if *resetURLOnly {
		v.Set("mail.host", "")
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetString("security.jwt_secret") == "" {
		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	if v.GetInt("security.jwt_lifetime_hours") <= 0 {
		return errors.New("security.jwt_lifetime_hours must be bigger than 0")
	}

	if v.GetInt("security.reset_lifetime_minutes") <= 0 {
		return errors.New("security.reset_lifetime_minutes must be bigger than 0")
	}

	if v.GetUint32("security.argon.memory") < 8*1024 {
		return errors.New("security.argon.memory must be at least 8192 (KiB)")
	}

	if v.GetUint32("security.argon.iterations") == 0 {
		return errors.New("security.argon.iterations must be bigger than 0")
	}

	if v.GetString("mail.host") != "" {
		if v.GetString("mail.sender_address") == "" {
			return errors.New("mail.sender_address can't be empty when mail.host is set")
		}

		if v.GetString("mail.password") == "" {
			return errors.New("mail.password can't be empty when mail.host is set")
		}
	} else {
		fmt.Println("[WARNING]: Mail delivery is not configured. Password reset links will only be written to the log")
	}

	return nil
}

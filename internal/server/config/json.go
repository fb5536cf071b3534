package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/beppofit-auth/internal/flagx"
	"github.com/dmitrijs2005/beppofit-auth/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Duration fields accept either
// "24h"-style strings or integer nanoseconds. Keys absent from the file
// keep the value Config already had.
type JsonConfig struct {
	EndpointAddrHTTP   string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC   string         `json:"endpoint_addr_grpc"`
	DatabaseDSN        string         `json:"database_dsn"`
	DBConnectRetries   int            `json:"db_connect_retries"`
	DBConnectInterval  timex.Duration `json:"db_connect_interval"`
	StoreTimeout       timex.Duration `json:"store_timeout"`
	SecretKey          string         `json:"secret_key"`
	TokenIssuer        string         `json:"token_issuer"`
	SessionTokenTTL    timex.Duration `json:"session_token_ttl"`
	VerificationTTL    timex.Duration `json:"verification_ttl"`
	PasswordResetTTL   timex.Duration `json:"password_reset_ttl"`
	Argon2Memory       uint32         `json:"argon2_memory"`
	Argon2Time         uint32         `json:"argon2_time"`
	Argon2Parallelism  uint8          `json:"argon2_parallelism"`
	FrontendURL        string         `json:"frontend_url"`
	PublicURL          string         `json:"public_url"`
	MailDriver         string         `json:"mail_driver"`
	MailFrom           string         `json:"mail_from"`
	SMTPHost           string         `json:"smtp_host"`
	SMTPPort           int            `json:"smtp_port"`
	SMTPUser           string         `json:"smtp_user"`
	SMTPPassword       string         `json:"smtp_password"`
	SESRegion          string         `json:"ses_region"`
	GoogleClientID     string         `json:"google_client_id"`
	GoogleClientSecret string         `json:"google_client_secret"`
	GoogleRedirectURL  string         `json:"google_redirect_url"`
	GoogleIssuer       string         `json:"google_issuer"`
	RedisAddr          string         `json:"redis_addr"`
	RedisPassword      string         `json:"redis_password"`
	RedisDB            int            `json:"redis_db"`
	OAuthStateTTL      timex.Duration `json:"oauth_state_ttl"`
	LogLevel           string         `json:"log_level"`
	LogFormat          string         `json:"log_format"`
}

// parseJson overlays config with the JSON file named by -c / -config.
// Without the flag nothing is loaded.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFilePath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := toJson(config)
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	fromJson(config, c)
	return nil
}

func toJson(c *Config) *JsonConfig {
	return &JsonConfig{
		EndpointAddrHTTP:   c.EndpointAddrHTTP,
		EndpointAddrGRPC:   c.EndpointAddrGRPC,
		DatabaseDSN:        c.DatabaseDSN,
		DBConnectRetries:   c.DBConnectRetries,
		DBConnectInterval:  timex.Duration{Duration: c.DBConnectInterval},
		StoreTimeout:       timex.Duration{Duration: c.StoreTimeout},
		SecretKey:          c.SecretKey,
		TokenIssuer:        c.TokenIssuer,
		SessionTokenTTL:    timex.Duration{Duration: c.SessionTokenTTL},
		VerificationTTL:    timex.Duration{Duration: c.VerificationTTL},
		PasswordResetTTL:   timex.Duration{Duration: c.PasswordResetTTL},
		Argon2Memory:       c.Argon2Memory,
		Argon2Time:         c.Argon2Time,
		Argon2Parallelism:  c.Argon2Parallelism,
		FrontendURL:        c.FrontendURL,
		PublicURL:          c.PublicURL,
		MailDriver:         c.MailDriver,
		MailFrom:           c.MailFrom,
		SMTPHost:           c.SMTPHost,
		SMTPPort:           c.SMTPPort,
		SMTPUser:           c.SMTPUser,
		SMTPPassword:       c.SMTPPassword,
		SESRegion:          c.SESRegion,
		GoogleClientID:     c.GoogleClientID,
		GoogleClientSecret: c.GoogleClientSecret,
		GoogleRedirectURL:  c.GoogleRedirectURL,
		GoogleIssuer:       c.GoogleIssuer,
		RedisAddr:          c.RedisAddr,
		RedisPassword:      c.RedisPassword,
		RedisDB:            c.RedisDB,
		OAuthStateTTL:      timex.Duration{Duration: c.OAuthStateTTL},
		LogLevel:           c.LogLevel,
		LogFormat:          c.LogFormat,
	}
}

func fromJson(c *Config, j *JsonConfig) {
	c.EndpointAddrHTTP = j.EndpointAddrHTTP
	c.EndpointAddrGRPC = j.EndpointAddrGRPC
	c.DatabaseDSN = j.DatabaseDSN
	c.DBConnectRetries = j.DBConnectRetries
	c.DBConnectInterval = j.DBConnectInterval.Duration
	c.StoreTimeout = j.StoreTimeout.Duration
	c.SecretKey = j.SecretKey
	c.TokenIssuer = j.TokenIssuer
	c.SessionTokenTTL = j.SessionTokenTTL.Duration
	c.VerificationTTL = j.VerificationTTL.Duration
	c.PasswordResetTTL = j.PasswordResetTTL.Duration
	c.Argon2Memory = j.Argon2Memory
	c.Argon2Time = j.Argon2Time
	c.Argon2Parallelism = j.Argon2Parallelism
	c.FrontendURL = j.FrontendURL
	c.PublicURL = j.PublicURL
	c.MailDriver = j.MailDriver
	c.MailFrom = j.MailFrom
	c.SMTPHost = j.SMTPHost
	c.SMTPPort = j.SMTPPort
	c.SMTPUser = j.SMTPUser
	c.SMTPPassword = j.SMTPPassword
	c.SESRegion = j.SESRegion
	c.GoogleClientID = j.GoogleClientID
	c.GoogleClientSecret = j.GoogleClientSecret
	c.GoogleRedirectURL = j.GoogleRedirectURL
	c.GoogleIssuer = j.GoogleIssuer
	c.RedisAddr = j.RedisAddr
	c.RedisPassword = j.RedisPassword
	c.RedisDB = j.RedisDB
	c.OAuthStateTTL = j.OAuthStateTTL.Duration
	c.LogLevel = j.LogLevel
	c.LogFormat = j.LogFormat
}

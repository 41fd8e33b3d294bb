package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/fintracker/internal/flagx"
	"github.com/dmitrijs2005/fintracker/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept both
// "1h" strings and integer nanoseconds. Pointer fields distinguish "absent"
// from an explicit false or zero.
type JsonConfig struct {
	Env                string         `json:"env"`
	HTTPAddr           string         `json:"http_addr"`
	GRPCHealthAddr     string         `json:"grpc_health_addr"`
	Storage            string         `json:"storage"`
	DatabaseDSN        string         `json:"database_dsn"`
	JWTSecret          string         `json:"jwt_secret"`
	SessionValidity    timex.Duration `json:"session_validity"`
	BcryptCost         int            `json:"bcrypt_cost"`
	EmailHMACKey       string         `json:"email_hmac_key"`
	EmailEncryptionKey string         `json:"email_encryption_key"`
	ResetTokenValidity timex.Duration `json:"reset_token_validity"`
	AppBaseURL         string         `json:"app_base_url"`
	SMTPHost           string         `json:"smtp_host"`
	SMTPPort           int            `json:"smtp_port"`
	SMTPUser           string         `json:"smtp_user"`
	SMTPPassword       string         `json:"smtp_password"`
	EmailFrom          string         `json:"email_from"`
	AllowedOrigins     []string       `json:"allowed_origins"`
	RateLimitEnabled   *bool          `json:"rate_limit_enabled"`
	LogLevel           string         `json:"log_level"`
	LogFormat          string         `json:"log_format"`
	ArchiveEnabled     *bool          `json:"archive_enabled"`
	S3RootUser         string         `json:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	ShutdownTimeout    timex.Duration `json:"shutdown_timeout"`
	JanitorInterval    timex.Duration `json:"janitor_interval"`
}

// parseJson loads the file named by -c/-config, if any, and copies every
// field present in it into config. Unreadable files and invalid JSON panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setStr(&config.Env, c.Env)
	setStr(&config.HTTPAddr, c.HTTPAddr)
	setStr(&config.GRPCHealthAddr, c.GRPCHealthAddr)
	setStr(&config.Storage, c.Storage)
	setStr(&config.DatabaseDSN, c.DatabaseDSN)
	setStr(&config.JWTSecret, c.JWTSecret)
	setDur(&config.SessionValidity, c.SessionValidity)
	setInt(&config.BcryptCost, c.BcryptCost)
	setStr(&config.EmailHMACKey, c.EmailHMACKey)
	setStr(&config.EmailEncryptionKey, c.EmailEncryptionKey)
	setDur(&config.ResetTokenValidity, c.ResetTokenValidity)
	setStr(&config.AppBaseURL, c.AppBaseURL)
	setStr(&config.SMTPHost, c.SMTPHost)
	setInt(&config.SMTPPort, c.SMTPPort)
	setStr(&config.SMTPUser, c.SMTPUser)
	setStr(&config.SMTPPassword, c.SMTPPassword)
	setStr(&config.EmailFrom, c.EmailFrom)
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.RateLimitEnabled != nil {
		config.RateLimitEnabled = *c.RateLimitEnabled
	}
	setStr(&config.LogLevel, c.LogLevel)
	setStr(&config.LogFormat, c.LogFormat)
	if c.ArchiveEnabled != nil {
		config.ArchiveEnabled = *c.ArchiveEnabled
	}
	setStr(&config.S3RootUser, c.S3RootUser)
	setStr(&config.S3RootPassword, c.S3RootPassword)
	setStr(&config.S3Bucket, c.S3Bucket)
	setStr(&config.S3Region, c.S3Region)
	setStr(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setDur(&config.ShutdownTimeout, c.ShutdownTimeout)
	setDur(&config.JanitorInterval, c.JanitorInterval)
}

func setStr(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDur(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}

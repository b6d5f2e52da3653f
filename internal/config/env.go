package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"irs-mortality/internal/errors"
)

// Environment variables that override file configuration
const (
	EnvDataDir   = "IRS_MORTALITY_DATA_DIR"
	EnvLogLevel  = "IRS_MORTALITY_LOG_LEVEL"
	EnvAddr      = "IRS_MORTALITY_ADDR"
	EnvPrecision = "IRS_MORTALITY_PRECISION"
)

// ApplyEnv loads the given .env files into the process environment (files
// that do not exist are skipped; variables already set win) and then
// applies the IRS_MORTALITY_* overrides. With no files, ".env" is tried.
func (c *Config) ApplyEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return errors.Config("load "+f, err)
		}
	}

	if v := os.Getenv(EnvDataDir); v != "" {
		c.Data.Directory = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvPrecision); v != "" {
		p, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return errors.Config(EnvPrecision+" must be an integer", err)
		}
		c.Calculation.FinalPrecision = int32(p)
	}
	return c.Validate()
}

package config

import (
	"os"
	"strconv"

	"gopkg.in/ini.v1"

	"proxyz/internal/shared/types"
)

// Load reads the behavior configuration from an ini file on top of the
// stock defaults. A missing file is not an error: the defaults stand and
// flags may still override them.
func Load(fileName string) (*types.Config, error) {
	cfg := types.Defaults()

	iniFile, err := ini.Load(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := iniFile.MapTo(cfg); err != nil {
		return nil, err
	}

	overrideFromEnvInt(&cfg.CheckerConf.Concurrency, "PROXYZ_CONCURRENCY")
	overrideFromEnvInt(&cfg.CheckerConf.TimeoutSeconds, "PROXYZ_TIMEOUT")
	return cfg, nil
}

func overrideFromEnvInt(target *int, envName string) {
	envValue := os.Getenv(envName)
	if envValue != "" {
		if intValue, err := strconv.Atoi(envValue); err == nil {
			*target = intValue
		}
	}
}

package utils

import (
	"strings"

	"github.com/blagojts/viper"
)

// EnvPrefix namespaces every benchgate environment variable, e.g.
// BENCHGATE_ITERATIONS or BENCHGATE_BASELINE.
const EnvPrefix = "benchgate"

// SetupEnv wires environment variables into the configuration with the
// BENCHGATE_ prefix. Flag names map to env names by uppercasing and
// replacing dashes, so --samples-per-sec reads BENCHGATE_SAMPLES_PER_SEC.
// Precedence stays explicit-flag > environment > flag default.
func SetupEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// SetupConfigFile defines the settings for the optional configuration
// file support.
func SetupConfigFile() error {
	viper.SetConfigName("benchgate")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		// Ignore error if config file not found.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	return nil
}

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// FILEIO_BUFFER_SIZE for --buffer-size.
const EnvPrefix = "FILEIO"

// Load resolves the final configuration into c. Values come from, in
// order of precedence: flags that were set, FILEIO_* environment
// variables, the optional YAML config file, and finally the flag
// defaults registered by BindFlags.
func Load(fs *pflag.FlagSet, configFile string, c *Config) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return fmt.Errorf("error while binding flags: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}

	return c.Validate()
}

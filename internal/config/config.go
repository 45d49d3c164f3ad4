// Package config loads settings for the uamqp tools.
package config

import (
	"strings"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// DefaultMaxFrameSize is large enough for any frame a broker sends
// before max-frame-size has been negotiated down.
const DefaultMaxFrameSize = 65536

type Config struct {
	// MaxFrameSize is applied to the frame codec.
	MaxFrameSize uint32
	// Hex enables hex dumps of frame bodies.
	Hex      bool
	LogLevel string
}

// Load reads configuration from configPath, falling back to
// ./amqpdump.toml when configPath is empty. Environment variables with
// envPrefix override file values; "codec.max_frame_size" is read from
// <PREFIX>_CODEC_MAX_FRAME_SIZE.
func Load(configPath string, envPrefix string) (*Config, error) {
	v := viper.New()

	v.SetDefault("codec.max_frame_size", DefaultMaxFrameSize)
	v.SetDefault("dump.hex", false)
	v.SetDefault("log.level", "info")

	if envPrefix != "" {
		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config %s", configPath)
		}
	} else {
		v.SetConfigName("amqpdump")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		// defaults and environment are enough without a file
		_ = v.ReadInConfig()
	}

	cfg := &Config{
		MaxFrameSize: v.GetUint32("codec.max_frame_size"),
		Hex:          v.GetBool("dump.hex"),
		LogLevel:     v.GetString("log.level"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.MaxFrameSize < 8 {
		result = multierror.Append(result, errors.Errorf("codec.max_frame_size %d, must be at least 8", c.MaxFrameSize))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "log.level"))
	}

	return result.ErrorOrNil()
}

package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/fstree/pkg/errors"
	"github.com/arthur-debert/fstree/pkg/logging"
)

// EnvPrefix is the prefix of environment variables read as configuration
const EnvPrefix = "FSTREE_"

// Sources selects the layers LoadConfiguration reads on top of the embedded
// defaults.
type Sources struct {
	// File is an explicit configuration file; it must exist. When empty the
	// user file is read if present.
	File string

	// SkipUserFile ignores the user file in the XDG config directory
	SkipUserFile bool

	// SkipEnv ignores FSTREE_* environment variables
	SkipEnv bool

	// Overrides holds values set on the command line, keyed like "read.workers"
	Overrides map[string]interface{}
}

// UserConfigPath returns the location of the user's configuration file
func UserConfigPath() string {
	return filepath.Join(xdg.ConfigHome, logging.AppName, "config.toml")
}

// LoadConfiguration layers the configured sources and decodes the result.
func LoadConfiguration(src Sources) (*Config, error) {
	log := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. User or explicit file
	path, err := configFile(src)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path).
				WithDetail(errors.DetailFullPath, path)
		}
		log.Debug().Str("path", path).Msg("Loaded config file")
	}

	// 3. Environment
	if !src.SkipEnv {
		err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
			return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
		}), nil)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
		}
	}

	// 4. Command-line overrides
	if len(src.Overrides) > 0 {
		if err := k.Load(confmap.Provider(src.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load overrides")
		}
	}

	// 5. Unmarshal
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.TextUnmarshallerHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "invalid configuration")
	}
	return &cfg, nil
}

// configFile picks the file layer: the explicit file, which must exist, or
// the user file when present.
func configFile(src Sources) (string, error) {
	if src.File != "" {
		if _, err := os.Stat(src.File); err != nil {
			return "", errors.Wrapf(err, errors.ErrConfigLoad, "cannot read config file %s", src.File).
				WithDetail(errors.DetailFullPath, src.File)
		}
		return src.File, nil
	}
	if src.SkipUserFile {
		return "", nil
	}

	path := UserConfigPath()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrapf(err, errors.ErrConfigLoad, "cannot read config file %s", path).
			WithDetail(errors.DetailFullPath, path)
	}
	return path, nil
}

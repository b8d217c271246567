package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/openstax/bookops/pkg/errors"
	"github.com/openstax/bookops/pkg/logging"
	"github.com/openstax/bookops/pkg/paths"
)

const (
	// EnvPrefix marks environment variables read into the configuration.
	EnvPrefix = "BOOKOPS_"
	// FileName is the optional config file in the tool root.
	FileName = paths.Marker
	// DotEnvFile is the optional environment file in the tool root.
	DotEnvFile = ".env"
)

// legacyEnv maps unprefixed variables used by older tooling to config keys.
var legacyEnv = map[string]string{
	"ABL_URL":        "abl.url",
	"GITHUB_TOKEN":   "github.token",
	"PLONE_USER":     "plone.user",
	"PLONE_PASSWORD": "plone.password",
}

// Options selects where configuration is read from.
type Options struct {
	// Root is the tool root. Empty discovers it with paths.FindRoot.
	Root string
	// File overrides <root>/bookops.toml. It must exist when set.
	File string
}

// Load builds the effective configuration.
func Load(opts Options) (*Config, error) {
	root, err := resolveRoot(opts.Root)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. Config file
	path := opts.File
	if path == "" {
		path = filepath.Join(root, FileName)
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path)
		}
	} else if opts.File != "" {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s not found", path)
	}

	// 3. .env in the tool root
	vars, err := ReadDotEnv(filepath.Join(root, DotEnvFile))
	if err != nil {
		return nil, err
	}
	if err := k.Load(confmap.Provider(envToKeys(vars), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load .env")
	}

	// 4. Environment
	err = k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		return envKey(key), value
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
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
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}
	cfg.Root = root

	// 6. Post-process
	resolvePaths(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ReadDotEnv parses a .env file. A missing file yields no variables.
func ReadDotEnv(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot read %s", path)
	}
	parsed, err := dotenv.Parser().Unmarshal(data)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "cannot parse %s", path)
	}
	vars := make(map[string]string, len(parsed))
	for k, v := range parsed {
		vars[k] = fmt.Sprint(v)
	}
	return vars, nil
}

// envKey maps an environment variable name to a config key, or "" when
// the variable is not configuration.
func envKey(name string) string {
	if key, ok := legacyEnv[name]; ok {
		return key
	}
	if !strings.HasPrefix(name, EnvPrefix) {
		return ""
	}
	return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(name, EnvPrefix), "__", "."))
}

func envToKeys(vars map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(vars))
	for name, value := range vars {
		if key := envKey(name); key != "" {
			out[key] = value
		}
	}
	return out
}

func resolveRoot(explicit string) (string, error) {
	root, err := paths.FindRoot(explicit)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrConfigLoad, "cannot resolve tool root")
	}
	if root.Fallback {
		logger := logging.GetLogger("config")
		logger.Debug().Str("root", root.Path).Msg("No bookops.toml found, using working directory as root")
	}
	return root.Path, nil
}

func resolvePaths(cfg *Config) {
	for _, p := range []*string{
		&cfg.WorkDir,
		&cfg.ABL.Path,
		&cfg.GitHub.CredentialsDir,
		&cfg.Poet.Dir,
		&cfg.RepoPrep.Dir,
		&cfg.RepoPrep.StaticDir,
		&cfg.RepoPrep.LicensesDir,
		&cfg.Archive.OutputDir,
		&cfg.Plone.OutputDir,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(cfg.Root, *p)
		}
	}
}

func validate(cfg *Config) error {
	switch {
	case cfg.Jobs < 1:
		return errors.Newf(errors.ErrConfigValid, "jobs must be at least 1, got %d", cfg.Jobs)
	case cfg.Org == "":
		return errors.New(errors.ErrConfigValid, "org must not be empty")
	case cfg.Branch == "":
		return errors.New(errors.ErrConfigValid, "branch must not be empty")
	case cfg.Plone.Throttle < 0:
		return errors.New(errors.ErrConfigValid, "plone.throttle must not be negative")
	}
	return nil
}

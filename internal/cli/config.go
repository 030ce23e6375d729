package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/mintfactory/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// envPrefix prefixes every environment override, e.g. MINTFACTORY_LEDGER_NAME.
	envPrefix = "MINTFACTORY"
)

// Config keys.
const (
	cfgKeyBackend     = "backend"
	cfgKeyDataDir     = "data_dir"
	cfgKeyAccount     = "account"
	cfgKeyGateway     = "gateway"
	cfgKeyLogLevel    = "log_level"
	cfgKeyLogFormat   = "log_format"
	cfgKeyName        = "ledger.name"
	cfgKeySymbol      = "ledger.symbol"
	cfgKeyMaxSupply   = "ledger.max_supply"
	cfgKeyCostPerUnit = "ledger.cost_per_token"
)

// configFile is the structure written to a fresh config.yaml.
type configFile struct {
	Backend   string       `yaml:"backend"`
	DataDir   string       `yaml:"data_dir,omitempty"`
	Gateway   string       `yaml:"gateway,omitempty"`
	LogLevel  string       `yaml:"log_level"`
	LogFormat string       `yaml:"log_format"`
	Ledger    ledgerConfig `yaml:"ledger"`
}

type ledgerConfig struct {
	Name         string `yaml:"name"`
	Symbol       string `yaml:"symbol"`
	MaxSupply    uint64 `yaml:"max_supply"`
	CostPerToken string `yaml:"cost_per_token"`
}

func defaultConfigFile() configFile {
	return configFile{
		Backend:   types.BackendSQLite,
		LogLevel:  "info",
		LogFormat: "text",
		Ledger: ledgerConfig{
			Name:         types.DefaultName,
			Symbol:       types.DefaultSymbol,
			MaxSupply:    types.DefaultMaxSupply,
			CostPerToken: types.DefaultCostPerToken().String(),
		},
	}
}

// loadConfig reads config.yaml from configDir using Viper, creating the
// directory and a default file on first run. Environment variables with
// the MINTFACTORY_ prefix override file values.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := writeConfigIfMissing(filepath.Join(configDir, configFileExt)); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	def := defaultConfigFile()
	v := viper.New()
	v.SetDefault(cfgKeyBackend, def.Backend)
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)
	v.SetDefault(cfgKeyLogFormat, def.LogFormat)
	v.SetDefault(cfgKeyName, def.Ledger.Name)
	v.SetDefault(cfgKeySymbol, def.Ledger.Symbol)
	v.SetDefault(cfgKeyMaxSupply, def.Ledger.MaxSupply)
	v.SetDefault(cfgKeyCostPerUnit, def.Ledger.CostPerToken)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only covers keys viper already knows.
	for _, key := range []string{cfgKeyDataDir, cfgKeyAccount, cfgKeyGateway} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns nil.
func writeConfigIfMissing(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}

	cfg := defaultConfigFile()
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# mintfactory configuration. MINTFACTORY_* environment variables override these values.\n")
	return os.WriteFile(path, append(header, data...), 0o644)
}

// loadEnvFile loads a dotenv file into the process environment without
// overriding variables that are already set. A missing file is only an
// error when it was named explicitly.
func loadEnvFile(path string, explicit bool) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if explicit {
			return fmt.Errorf("env file %s: %w", path, err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

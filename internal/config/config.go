package config

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Impute ImputeConfig `yaml:"impute" mapstructure:"impute"`
	Train  TrainConfig  `yaml:"train" mapstructure:"train"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the feed inputs and produced artifacts, all
// relative to the data directory.
type DataConfig struct {
	Dir               string `yaml:"dir" mapstructure:"dir"`
	VendorFeed        string `yaml:"vendor_feed" mapstructure:"vendor_feed"`
	PartnerFeed       string `yaml:"partner_feed" mapstructure:"partner_feed"`
	ReferenceCorpus   string `yaml:"reference_corpus" mapstructure:"reference_corpus"`
	TrainLabels       string `yaml:"train_labels" mapstructure:"train_labels"`
	ItemsCSV          string `yaml:"items_csv" mapstructure:"items_csv"`
	ItemsXLSX         string `yaml:"items_xlsx" mapstructure:"items_xlsx"`
	EnrichedLocalCSV  string `yaml:"enriched_local_csv" mapstructure:"enriched_local_csv"`
	EnrichedLocalXLSX string `yaml:"enriched_local_xlsx" mapstructure:"enriched_local_xlsx"`
	EnrichedModelCSV  string `yaml:"enriched_model_csv" mapstructure:"enriched_model_csv"`
	EnrichedModelXLSX string `yaml:"enriched_model_xlsx" mapstructure:"enriched_model_xlsx"`
	AggregatesCSV     string `yaml:"aggregates_csv" mapstructure:"aggregates_csv"`
	AggregatesXLSX    string `yaml:"aggregates_xlsx" mapstructure:"aggregates_xlsx"`
	MetricsFile       string `yaml:"metrics_file" mapstructure:"metrics_file"`
}

// Path joins a configured file name onto the data directory.
func (d DataConfig) Path(name string) string {
	return filepath.Join(d.Dir, name)
}

// ImputeConfig holds the fuzzy-match acceptance thresholds.
type ImputeConfig struct {
	MedThreshold  int `yaml:"med_threshold" mapstructure:"med_threshold"`
	HighThreshold int `yaml:"high_threshold" mapstructure:"high_threshold"`
}

// TrainConfig configures the text-regressor training stage.
type TrainConfig struct {
	ModelsDir string `yaml:"models_dir" mapstructure:"models_dir"`
}

// StoreConfig configures the SQLite mirror of the aggregate table.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the read-only query facade.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml (cwd) and MENUCLI_*
// environment variables, with defaults for every knob.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MENUCLI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.dir", "data")
	v.SetDefault("data.vendor_feed", "vendor_menus.json")
	v.SetDefault("data.partner_feed", "partner_menus.json")
	v.SetDefault("data.reference_corpus", "indian_foods_nutrition.json")
	v.SetDefault("data.train_labels", "train_labels_highconf.csv")
	v.SetDefault("data.items_csv", "items.csv")
	v.SetDefault("data.items_xlsx", "items.xlsx")
	v.SetDefault("data.enriched_local_csv", "items_enriched_local.csv")
	v.SetDefault("data.enriched_local_xlsx", "items_enriched_local.xlsx")
	v.SetDefault("data.enriched_model_csv", "items_enriched_model.csv")
	v.SetDefault("data.enriched_model_xlsx", "items_enriched_model.xlsx")
	v.SetDefault("data.aggregates_csv", "vendor_aggregates.csv")
	v.SetDefault("data.aggregates_xlsx", "vendor_aggregates.xlsx")
	v.SetDefault("data.metrics_file", "metrics.json")
	v.SetDefault("impute.med_threshold", 75)
	v.SetDefault("impute.high_threshold", 90)
	v.SetDefault("train.models_dir", "models")
	v.SetDefault("store.path", "data/output.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file is optional.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}

// InitLogger builds the global zap logger from LogConfig.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

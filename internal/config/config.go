package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/werhatvorfahrt/werhatvorfahrt/internal/render"
)

// FileName is the config file looked up in the config directory.
const FileName = "vorfahrt.cfg.json"

// PuzzleConfig controls sign generation. Zero Sides or Cars means the shape
// is drawn at random for each puzzle; zero Seed means an unseeded source.
type PuzzleConfig struct {
	Seed  uint64 `json:"seed" mapstructure:"seed"`
	Count int    `json:"count" mapstructure:"count"`
	Sides int    `json:"sides" mapstructure:"sides"`
	Cars  int    `json:"cars" mapstructure:"cars"`
}

// ExportConfig controls the files written next to the SVG: the JSON puzzle
// document and a PNG raster of the figure.
type ExportConfig struct {
	Enabled  bool `json:"json" mapstructure:"json"`
	Compress bool `json:"compress" mapstructure:"compress"`
	PNG      bool `json:"png" mapstructure:"png"`
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")
	viper.SetDefault("outputDir", "./puzzles")

	def := render.DefaultOptions()
	viper.SetDefault("render.figureWidth", def.FigureWidth)
	viper.SetDefault("render.figureHeight", def.FigureHeight)
	viper.SetDefault("render.dpi", def.DPI)
	viper.SetDefault("render.lineColor", def.LineColor)
	viper.SetDefault("render.lineWidth", def.LineWidth)

	viper.SetDefault("puzzle.seed", 0)
	viper.SetDefault("puzzle.count", 1)
	viper.SetDefault("puzzle.sides", 0)
	viper.SetDefault("puzzle.cars", 0)

	viper.SetDefault("export.json", true)
	viper.SetDefault("export.compress", false)
	viper.SetDefault("export.png", false)

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "vorfahrt")
	viper.SetDefault("otel.batchTimeout", "5s")
}

// Load sets default values and reads configDir/vorfahrt.cfg.json if present.
// A missing file is not an error; a malformed one is.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// BindFlags lets command line flags override file and default values.
// Flag names are the config keys, e.g. --puzzle.count.
func BindFlags(flags *pflag.FlagSet) error {
	if err := viper.BindPFlags(flags); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetRenderOptions returns the figure settings.
func GetRenderOptions() render.Options {
	return render.Options{
		FigureWidth:  viper.GetFloat64("render.figureWidth"),
		FigureHeight: viper.GetFloat64("render.figureHeight"),
		DPI:          viper.GetFloat64("render.dpi"),
		LineColor:    viper.GetString("render.lineColor"),
		LineWidth:    viper.GetFloat64("render.lineWidth"),
	}
}

// GetPuzzleConfig returns the generation settings.
func GetPuzzleConfig() PuzzleConfig {
	return PuzzleConfig{
		Seed:  viper.GetUint64("puzzle.seed"),
		Count: viper.GetInt("puzzle.count"),
		Sides: viper.GetInt("puzzle.sides"),
		Cars:  viper.GetInt("puzzle.cars"),
	}
}

// GetExportConfig returns the export settings.
func GetExportConfig() ExportConfig {
	return ExportConfig{
		Enabled:  viper.GetBool("export.json"),
		Compress: viper.GetBool("export.compress"),
		PNG:      viper.GetBool("export.png"),
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
	}
}

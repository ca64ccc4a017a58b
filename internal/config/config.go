// Package config assembles the wavyd configuration from built-in defaults,
// presets, an optional config file, WAVYD_* environment variables and
// command line flags, in increasing order of precedence.
package config

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cwbudde/algo-wavyd/dsp/core"
)

// EnvPrefix prefixes environment overrides, e.g. WAVYD_TABLE_SIZE.
const EnvPrefix = "WAVYD"

// DefaultSpec is a fundamental plus a half-weight second harmonic.
const DefaultSpec = "1:0,0.5:0"

// Config is the complete tool configuration.
type Config struct {
	Spec         string  `mapstructure:"spec"`
	Frequency    float64 `mapstructure:"frequency"`
	Duration     float64 `mapstructure:"duration"`
	SampleRate   int     `mapstructure:"sample-rate"`
	BitDepth     int     `mapstructure:"bit-depth"`
	Channels     int     `mapstructure:"channels"`
	MaxAmplitude float64 `mapstructure:"max-amplitude"`
	Play         bool    `mapstructure:"play"`
	WavPath      string  `mapstructure:"wav"`
	Template     string  `mapstructure:"template"`
	Output       string  `mapstructure:"output"`
	Analyze      int     `mapstructure:"analyze"`
	Table        Table   `mapstructure:"table"`
	Plot         Plot    `mapstructure:"plot"`
}

// Table configures the lookup table dump.
type Table struct {
	Dump      bool    `mapstructure:"dump"`
	Size      int     `mapstructure:"size"`
	Scale     float64 `mapstructure:"scale"`
	Round     bool    `mapstructure:"round"`
	Normalize bool    `mapstructure:"normalize"`
}

// Plot configures the plots of one cycle.
type Plot struct {
	ASCII   bool   `mapstructure:"ascii"`
	PNGPath string `mapstructure:"png"`
	Width   int    `mapstructure:"width"`
	Height  int    `mapstructure:"height"`
	Margin  int    `mapstructure:"margin"`
}

var defaults = map[string]any{
	"spec":            DefaultSpec,
	"frequency":       441.0,
	"duration":        2.0,
	"sample-rate":     core.DefaultSampleRate,
	"bit-depth":       core.DefaultBitDepth,
	"channels":        core.DefaultChannels,
	"max-amplitude":   float64(core.DefaultMaxAmplitude),
	"play":            false,
	"wav":             "",
	"template":        "c-array",
	"output":          "",
	"analyze":         0,
	"table.dump":      false,
	"table.size":      1024,
	"table.scale":     2048.0,
	"table.round":     true,
	"table.normalize": false,
	"plot.ascii":      false,
	"plot.png":        "",
	"plot.width":      800,
	"plot.height":     300,
	"plot.margin":     20,
}

// presets override defaults; files, environment and flags still win.
var presets = map[string]map[string]any{
	"theremin": {
		"table.dump":  true,
		"table.size":  1024,
		"table.scale": 2048.0,
		"table.round": true,
		"template":    "c-array",
	},
	"list": {
		"table.dump":  true,
		"table.round": true,
		"template":    "list",
	},
}

// Presets returns the preset names in sorted order.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// flagKeys maps flag names to config keys where they differ.
var flagKeys = map[string]string{
	"dump":       "table.dump",
	"table":      "table.size",
	"scale":      "table.scale",
	"round":      "table.round",
	"normalize":  "table.normalize",
	"ascii":      "plot.ascii",
	"png":        "plot.png",
	"png-width":  "plot.width",
	"png-height": "plot.height",
	"png-margin": "plot.margin",
}

// RegisterFlags defines the tool flags on fs. Defaults shown in help text
// are the built-in ones.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (yaml, toml, json, ...)")
	fs.String("preset", "", "apply a preset ("+strings.Join(Presets(), ", ")+")")
	fs.String("spec", DefaultSpec, "partials as weight:phase pairs, phase may use a PI suffix")
	fs.Float64("frequency", 441, "fundamental frequency in Hz")
	fs.Float64("duration", 2, "stream duration in seconds")
	fs.Int("sample-rate", core.DefaultSampleRate, "sample rate in Hz")
	fs.Int("bit-depth", core.DefaultBitDepth, "sample width in bits (16)")
	fs.Int("channels", core.DefaultChannels, "number of channels (1 or 2)")
	fs.Float64("max-amplitude", core.DefaultMaxAmplitude, "integer peak at the envelope maximum")
	fs.Bool("play", false, "play the stream on the default audio device")
	fs.String("wav", "", "write the stream to a WAV file")
	fs.String("template", "c-array", "table template name or file")
	fs.String("output", "", "write the rendered table to a file instead of stdout")
	fs.Int("analyze", 0, "print the measured level of the first N harmonics")
	fs.Bool("dump", false, "render the lookup table")
	fs.Int("table", 1024, "lookup table size")
	fs.Float64("scale", 2048, "lookup table scale")
	fs.Bool("round", true, "round table values to integers")
	fs.Bool("normalize", false, "rescale the table cycle to its peak before scaling")
	fs.Bool("ascii", false, "print an ASCII plot of one cycle")
	fs.String("png", "", "write a PNG plot of one cycle")
	fs.Int("png-width", 800, "PNG width in pixels")
	fs.Int("png-height", 300, "PNG height in pixels")
	fs.Int("png-margin", 20, "PNG margin in pixels")
}

// BindFlags binds every registered flag to its config key.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		key := f.Name
		if k, ok := flagKeys[key]; ok {
			key = k
		}
		err = v.BindPFlag(key, f)
	})
	return err
}

// Load resolves the preset and config file named in v and decodes the
// merged configuration.
func Load(v *viper.Viper) (Config, error) {
	if name := v.GetString("preset"); name != "" {
		preset, ok := presets[name]
		if !ok {
			return Config{}, fmt.Errorf("config: unknown preset %q (%s): %w",
				name, strings.Join(Presets(), ", "), core.ErrConfig)
		}
		for key, val := range preset {
			v.SetDefault(key, val)
		}
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

// Format returns the PCM format described by the configuration.
func (c Config) Format() (core.Format, error) {
	return core.NewFormat(
		core.WithSampleRate(c.SampleRate),
		core.WithBitDepth(c.BitDepth),
		core.WithChannels(c.Channels),
		core.WithMaxAmplitude(c.MaxAmplitude),
	)
}

// Validate checks the parameters of every enabled output.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Spec) == "" {
		return fmt.Errorf("config: spec must not be empty: %w", core.ErrParse)
	}
	if c.Play || c.WavPath != "" {
		if math.IsNaN(c.Frequency) || math.IsInf(c.Frequency, 0) {
			return fmt.Errorf("config: frequency must be finite: %v: %w", c.Frequency, core.ErrConfig)
		}
		if !(c.Duration > 0) {
			return fmt.Errorf("config: duration must be > 0: %v: %w", c.Duration, core.ErrConfig)
		}
		if _, err := c.Format(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if c.Table.Dump || c.Plot.ASCII || c.Analyze > 0 {
		if c.Table.Size <= 0 {
			return fmt.Errorf("config: table size must be > 0: %d: %w", c.Table.Size, core.ErrConfig)
		}
	}
	if c.Plot.PNGPath != "" {
		if c.Plot.Margin < 0 {
			return fmt.Errorf("config: png margin must be >= 0: %d: %w", c.Plot.Margin, core.ErrConfig)
		}
		if c.Plot.Width-2*c.Plot.Margin <= 0 || c.Plot.Height-2*c.Plot.Margin <= 0 {
			return fmt.Errorf("config: png canvas %dx%d leaves no room inside margin %d: %w",
				c.Plot.Width, c.Plot.Height, c.Plot.Margin, core.ErrConfig)
		}
	}
	if c.Analyze < 0 {
		return fmt.Errorf("config: analyze must be >= 0: %d: %w", c.Analyze, core.ErrConfig)
	}
	return nil
}

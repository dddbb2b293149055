// Package config loads the settings shared by the commands from an optional
// YAML file, CRYSTAL_ environment variables and built-in defaults.
package config

import "os"
import "path/filepath"
import "strings"

import "github.com/pkg/errors"
import "github.com/spf13/viper"
import "gopkg.in/yaml.v3"

import "github.com/neurlang/crystal/datasets/pdb"
import "github.com/neurlang/crystal/learning"

// EnvPrefix prefixes the environment overrides, train.epochs is CRYSTAL_TRAIN_EPOCHS
const EnvPrefix = "CRYSTAL"

type Config struct {
	Data    DataConfig    `mapstructure:"data" yaml:"data"`
	Train   TrainConfig   `mapstructure:"train" yaml:"train"`
	Model   ModelConfig   `mapstructure:"model" yaml:"model"`
	History HistoryConfig `mapstructure:"history" yaml:"history"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

type DataConfig struct {
	Path   string `mapstructure:"path" yaml:"path"`     // gzip JSON lines export
	Cache  string `mapstructure:"cache" yaml:"cache"`   // feature cache directory, empty disables
	Filter bool   `mapstructure:"filter" yaml:"filter"` // drop physically implausible rows
}

// TrainConfig mirrors learning.HyperParameters. An empty Hidden selects the
// problem's default topology.
type TrainConfig struct {
	Hidden        []int   `mapstructure:"hidden" yaml:"hidden,flow"`
	Activation    string  `mapstructure:"activation" yaml:"activation"`
	Epochs        int     `mapstructure:"epochs" yaml:"epochs"`
	BatchSize     int     `mapstructure:"batch_size" yaml:"batch_size"`
	LearningRate  float64 `mapstructure:"learning_rate" yaml:"learning_rate"`
	Beta1         float64 `mapstructure:"beta1" yaml:"beta1"`
	Beta2         float64 `mapstructure:"beta2" yaml:"beta2"`
	Eps           float64 `mapstructure:"eps" yaml:"eps"`
	WeightDecay   float64 `mapstructure:"weight_decay" yaml:"weight_decay"`
	Schedule      string  `mapstructure:"schedule" yaml:"schedule"`
	StepSize      int     `mapstructure:"step_size" yaml:"step_size"`
	Gamma         float64 `mapstructure:"gamma" yaml:"gamma"`
	TrainFraction float64 `mapstructure:"train_fraction" yaml:"train_fraction"`
	Seed          int64   `mapstructure:"seed" yaml:"seed"`
	Threads       int     `mapstructure:"threads" yaml:"threads"`
}

type ModelConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"` // directory of the per problem model files
}

type HistoryConfig struct {
	Path string `mapstructure:"path" yaml:"path"` // sqlite database, empty disables
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // text or json
}

func defaults(v *viper.Viper) {
	h := learning.Defaults()

	v.SetDefault("data.path", "pdb_entries.jsonl.gz")
	v.SetDefault("data.cache", "")
	v.SetDefault("data.filter", true)

	v.SetDefault("train.hidden", []int{})
	v.SetDefault("train.activation", h.Activation)
	v.SetDefault("train.epochs", h.Epochs)
	v.SetDefault("train.batch_size", h.BatchSize)
	v.SetDefault("train.learning_rate", h.LearningRate)
	v.SetDefault("train.beta1", h.Beta1)
	v.SetDefault("train.beta2", h.Beta2)
	v.SetDefault("train.eps", h.Eps)
	v.SetDefault("train.weight_decay", h.WeightDecay)
	v.SetDefault("train.schedule", h.Schedule)
	v.SetDefault("train.step_size", h.StepSize)
	v.SetDefault("train.gamma", h.Gamma)
	v.SetDefault("train.train_fraction", h.TrainFraction)
	v.SetDefault("train.seed", h.Seed)
	v.SetDefault("train.threads", h.Threads)

	v.SetDefault("model.dir", ".")
	v.SetDefault("history.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads the YAML file at path when it exists, then applies environment
// overrides. An empty path loads the defaults and the environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	defaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(errors.Cause(err)) {
				return nil, errors.Wrapf(err, "reading config %s", path)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	return &cfg, nil
}

// Hidden is the default topology of each problem
func Hidden(p pdb.Problem) []int {
	if p == pdb.Solvent {
		return []int{16}
	}
	return []int{64, 32}
}

// Hyper returns the validated hyperparameters for training problem p.
func (c *Config) Hyper(p pdb.Problem) (learning.HyperParameters, error) {
	t := c.Train
	h := learning.HyperParameters{
		Hidden:        append([]int(nil), t.Hidden...),
		Activation:    t.Activation,
		Epochs:        t.Epochs,
		BatchSize:     t.BatchSize,
		LearningRate:  t.LearningRate,
		Beta1:         t.Beta1,
		Beta2:         t.Beta2,
		Eps:           t.Eps,
		WeightDecay:   t.WeightDecay,
		Schedule:      t.Schedule,
		StepSize:      t.StepSize,
		Gamma:         t.Gamma,
		TrainFraction: t.TrainFraction,
		Seed:          t.Seed,
		Threads:       t.Threads,
	}
	if len(h.Hidden) == 0 {
		h.Hidden = Hidden(p)
	}
	if err := h.Validate(); err != nil {
		return h, errors.Wrapf(err, "%s hyperparameters", p)
	}
	return h, nil
}

// ModelPath names the model file of problem p inside the model directory
func (c *Config) ModelPath(p pdb.Problem) string {
	return filepath.Join(c.Model.Dir, p.String()+".json.zlib")
}

// CachePath names the feature cache of problem p, empty when caching is off
func (c *Config) CachePath(p pdb.Problem) string {
	if c.Data.Cache == "" {
		return ""
	}
	return filepath.Join(c.Data.Cache, p.String()+".features.msgpack")
}

// Dump renders the effective configuration as YAML.
func Dump(c *Config) ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "encoding config")
	}
	return out, nil
}

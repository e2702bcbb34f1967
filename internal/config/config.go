package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/zeusync/behave/internal/core/observability/log"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "BEHAVE_"

var ErrInvalid = errors.New("config: invalid value")

// Config drives one btrun invocation.
type Config struct {
	Definition     string
	Agents         int
	Frames         int
	Interval       time.Duration
	Workers        int
	StopOnTerminal bool
	LogLevel       log.Level
	// Seed makes random selectors reproducible; zero keeps them random.
	Seed uint64
	// Values seed every agent's blackboard.
	Values map[string]string
}

func Default() Config {
	return Config{
		Agents:         1,
		Frames:         100,
		Interval:       0,
		StopOnTerminal: true,
		LogLevel:       log.LevelInfo,
		Values:         map[string]string{},
	}
}

// LoadEnv loads the given .env files, or ./.env when none are given, into the
// process environment. Variables already set are kept. A missing default file
// is not an error.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		p := filepath.Join(cwd, ".env")
		if _, err = os.Stat(p); errors.Is(err, os.ErrNotExist) {
			return nil
		}
		paths = []string{p}
	}
	if err := godotenv.Load(paths...); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	return nil
}

// Load builds a Config from defaults, then BEHAVE_* variables found through
// lookup, then command-line args. The definition may also be given as the
// single positional argument.
func Load(args []string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return cfg, err
	}

	level := cfg.LogLevel.String()
	fs := cfg.flagSet(&level)
	if err := fs.Parse(args); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if fs.NArg() > 1 {
		return cfg, fmt.Errorf("%w: unexpected arguments %v", ErrInvalid, fs.Args()[1:])
	}
	if fs.NArg() == 1 {
		cfg.Definition = fs.Arg(0)
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return cfg, fmt.Errorf("%w: log level: %v", ErrInvalid, err)
	}
	cfg.LogLevel = parsed
	return cfg, cfg.Validate()
}

// Usage describes the command-line flags.
func Usage() string {
	cfg := Default()
	level := cfg.LogLevel.String()
	fs := cfg.flagSet(&level)
	var b strings.Builder
	b.WriteString("usage: btrun [flags] <definition>\n")
	fs.SetOutput(&b)
	fs.PrintDefaults()
	return b.String()
}

func (c *Config) flagSet(level *string) *flag.FlagSet {
	fs := flag.NewFlagSet("btrun", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&c.Definition, "definition", c.Definition, "tree definition file (.json, .yaml, .yml, .hcl)")
	fs.IntVar(&c.Agents, "agents", c.Agents, "number of agents to spawn")
	fs.IntVar(&c.Frames, "frames", c.Frames, "frames per agent, <= 0 runs until interrupted")
	fs.DurationVar(&c.Interval, "interval", c.Interval, "pause between frames")
	fs.IntVar(&c.Workers, "workers", c.Workers, "agents stepped concurrently, 0 for all")
	fs.BoolVar(&c.StopOnTerminal, "stop", c.StopOnTerminal, "stop an agent once its tree succeeds or fails")
	fs.StringVar(level, "log-level", *level, "debug, info, warn or error")
	fs.Uint64Var(&c.Seed, "seed", c.Seed, "random selector seed, 0 for random")
	fs.Func("set", "blackboard entry key=value, repeatable", func(s string) error {
		return parseValue(c.Values, s)
	})
	return fs
}

func (c Config) Validate() error {
	switch {
	case c.Definition == "":
		return fmt.Errorf("%w: no definition file", ErrInvalid)
	case c.Agents < 1:
		return fmt.Errorf("%w: agents must be positive, got %d", ErrInvalid, c.Agents)
	case c.Interval < 0:
		return fmt.Errorf("%w: negative interval %s", ErrInvalid, c.Interval)
	case c.Workers < 0:
		return fmt.Errorf("%w: negative workers %d", ErrInvalid, c.Workers)
	}
	return nil
}

// Keys returns the blackboard preset keys in sorted order.
func (c Config) Keys() []string {
	keys := make([]string, 0, len(c.Values))
	for k := range c.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}
	var err error
	if v, ok := get("DEFINITION"); ok {
		c.Definition = v
	}
	if v, ok := get("AGENTS"); ok {
		if c.Agents, err = strconv.Atoi(v); err != nil {
			return envError("AGENTS", err)
		}
	}
	if v, ok := get("FRAMES"); ok {
		if c.Frames, err = strconv.Atoi(v); err != nil {
			return envError("FRAMES", err)
		}
	}
	if v, ok := get("INTERVAL"); ok {
		if c.Interval, err = time.ParseDuration(v); err != nil {
			return envError("INTERVAL", err)
		}
	}
	if v, ok := get("WORKERS"); ok {
		if c.Workers, err = strconv.Atoi(v); err != nil {
			return envError("WORKERS", err)
		}
	}
	if v, ok := get("STOP"); ok {
		if c.StopOnTerminal, err = strconv.ParseBool(v); err != nil {
			return envError("STOP", err)
		}
	}
	if v, ok := get("LOG_LEVEL"); ok {
		if c.LogLevel, err = log.ParseLevel(v); err != nil {
			return envError("LOG_LEVEL", err)
		}
	}
	if v, ok := get("SEED"); ok {
		if c.Seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			return envError("SEED", err)
		}
	}
	if v, ok := get("SET"); ok {
		for _, pair := range strings.Split(v, ",") {
			if err = parseValue(c.Values, strings.TrimSpace(pair)); err != nil {
				return envError("SET", err)
			}
		}
	}
	return nil
}

func parseValue(dst map[string]string, s string) error {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	dst[key] = value
	return nil
}

func envError(name string, err error) error {
	return fmt.Errorf("%w: %s%s: %v", ErrInvalid, EnvPrefix, name, err)
}

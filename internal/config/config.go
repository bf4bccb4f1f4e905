package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultPositionManager is the Uniswap V3 NonfungiblePositionManager.
const DefaultPositionManager = "0xC36442b4a4522E871399CD717aBDD847Ab11FE88"

// SourceConfig says where pool and position state comes from: a snapshot
// file written by the snapshot command, or a live RPC read.
type SourceConfig struct {
	SnapshotFile    string
	RPCURL          string
	Pool            string
	PositionManager string
	TokenID         string
	Block           uint64
	QuoteToken0     bool
}

// Live reports whether state is read from chain rather than a file.
func (s SourceConfig) Live() bool {
	return s.SnapshotFile == "" && s.RPCURL != ""
}

// ValueConfig holds configuration for the value command.
type ValueConfig struct {
	Source       SourceConfig
	InitialValue string
	Out          string
	LogLevel     string
}

// CurveConfig holds configuration for the curve command.
type CurveConfig struct {
	Source       SourceConfig
	MinPrice     string
	MaxPrice     string
	Points       int
	InitialValue string
	Out          string
	LogLevel     string
}

// PnLConfig holds configuration for the pnl command.
type PnLConfig struct {
	Source        SourceConfig
	In            string
	Errors        string
	PositionID    string
	CurrentValue  string
	Unclaimed     string
	QuoteDecimals uint8
	Now           string
	PGDSN         string
	StateFile     string
	Out           string
	LogLevel      string
}

// SnapshotConfig holds configuration for the snapshot command.
type SnapshotConfig struct {
	Source   SourceConfig
	Out      string
	LogLevel string
}

// LoadValue merges config file, environment variables, and flags into ValueConfig.
func LoadValue(cfgFile string, flags *pflag.FlagSet) (ValueConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return ValueConfig{}, err
	}
	v.SetDefault("out", "-")

	return ValueConfig{
		Source:       loadSource(v),
		InitialValue: v.GetString("initial-value"),
		Out:          v.GetString("out"),
		LogLevel:     v.GetString("log-level"),
	}, nil
}

// LoadCurve merges config file, environment variables, and flags into CurveConfig.
func LoadCurve(cfgFile string, flags *pflag.FlagSet) (CurveConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return CurveConfig{}, err
	}
	v.SetDefault("points", 150)
	v.SetDefault("out", "./data/curve.jsonl")

	cfg := CurveConfig{
		Source:       loadSource(v),
		MinPrice:     v.GetString("min-price"),
		MaxPrice:     v.GetString("max-price"),
		Points:       v.GetInt("points"),
		InitialValue: v.GetString("initial-value"),
		Out:          v.GetString("out"),
		LogLevel:     v.GetString("log-level"),
	}
	if cfg.MinPrice == "" || cfg.MaxPrice == "" {
		return CurveConfig{}, fmt.Errorf("min-price and max-price are required")
	}
	return cfg, nil
}

// LoadPnL merges config file, environment variables, and flags into PnLConfig.
func LoadPnL(cfgFile string, flags *pflag.FlagSet) (PnLConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return PnLConfig{}, err
	}
	v.SetDefault("errors", "./data/event_errors.jsonl")
	v.SetDefault("out", "-")

	cfg := PnLConfig{
		Source:        loadSource(v),
		In:            v.GetString("in"),
		Errors:        v.GetString("errors"),
		PositionID:    v.GetString("position-id"),
		CurrentValue:  v.GetString("current-value"),
		Unclaimed:     v.GetString("unclaimed"),
		QuoteDecimals: uint8(v.GetUint("quote-decimals")),
		Now:           v.GetString("now"),
		PGDSN:         v.GetString("pg-dsn"),
		StateFile:     v.GetString("state-file"),
		Out:           v.GetString("out"),
		LogLevel:      v.GetString("log-level"),
	}
	if cfg.In == "" {
		return PnLConfig{}, fmt.Errorf("input events file is required")
	}
	return cfg, nil
}

// LoadSnapshot merges config file, environment variables, and flags into SnapshotConfig.
func LoadSnapshot(cfgFile string, flags *pflag.FlagSet) (SnapshotConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return SnapshotConfig{}, err
	}
	v.SetDefault("out", "./data/snapshot.json")

	cfg := SnapshotConfig{
		Source:   loadSource(v),
		Out:      v.GetString("out"),
		LogLevel: v.GetString("log-level"),
	}
	if cfg.Source.RPCURL == "" {
		return SnapshotConfig{}, fmt.Errorf("rpc url is required")
	}
	if cfg.Source.Pool == "" {
		return SnapshotConfig{}, fmt.Errorf("pool address is required")
	}
	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("POSITIONSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("position-manager", DefaultPositionManager)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func loadSource(v *viper.Viper) SourceConfig {
	return SourceConfig{
		SnapshotFile:    v.GetString("snapshot-file"),
		RPCURL:          v.GetString("rpc"),
		Pool:            v.GetString("pool"),
		PositionManager: v.GetString("position-manager"),
		TokenID:         v.GetString("token-id"),
		Block:           v.GetUint64("block"),
		QuoteToken0:     v.GetBool("quote-token0"),
	}
}

// ParseTimestamp parses a timestamp value (unix seconds or RFC3339).
func ParseTimestamp(input string) (uint64, error) {
	if strings.TrimSpace(input) == "" {
		return 0, nil
	}

	if isNumeric(input) {
		val, err := strconv.ParseUint(input, 10, 64)
		if err != nil {
			return 0, err
		}
		return val, nil
	}

	tm, err := time.Parse(time.RFC3339, input)
	if err != nil {
		return 0, err
	}
	return uint64(tm.Unix()), nil
}

// ParseNow resolves the evaluation instant, defaulting to fallback when
// input is empty.
func ParseNow(input string, fallback time.Time) (time.Time, error) {
	if strings.TrimSpace(input) == "" {
		return fallback.UTC(), nil
	}
	ts, err := ParseTimestamp(input)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse now: %w", err)
	}
	return time.Unix(int64(ts), 0).UTC(), nil
}

func isNumeric(input string) bool {
	for _, r := range input {
		if r < '0' || r > '9' {
			return false
		}
	}
	return input != ""
}

package store

import "github.com/rapidstash/rapidstash/logger"

const (
	defaultGrowthFactor   = 1.25
	defaultMaxMapSize     = uint64(1)<<32 - 1 // 4 GiB
	defaultInitialMapSize = uint64(4096)
	defaultMaxFiles       = uint32(2000000)
	defaultMaxNameLen     = uint32(MaxNameLen)
	defaultMinAlloc       = uint64(128)
)

// Config holds the process- or store-level knobs a Store is opened with.
type Config struct {
	MVCCEnabled    bool
	TimingEnabled  bool
	InitialMapSize uint64
	GrowthFactor   float64
	MaxMapSize     uint64
	MaxFiles       uint32
	MaxNameLen     uint32
	MinAlloc       uint64

	// Logger receives lifecycle, allocation, and corruption events. A NoOp
	// logger is used when nil.
	Logger logger.Logger
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		MVCCEnabled:    false,
		TimingEnabled:  true,
		InitialMapSize: defaultInitialMapSize,
		GrowthFactor:   defaultGrowthFactor,
		MaxMapSize:     defaultMaxMapSize,
		MaxFiles:       defaultMaxFiles,
		MaxNameLen:     defaultMaxNameLen,
		MinAlloc:       defaultMinAlloc,
		Logger:         nil,
	}
}

func (c *Config) withDefaults() *Config {
	cfg := *c
	if cfg.InitialMapSize == 0 {
		cfg.InitialMapSize = defaultInitialMapSize
	}
	if cfg.GrowthFactor == 0 {
		cfg.GrowthFactor = defaultGrowthFactor
	}
	if cfg.MaxMapSize == 0 {
		cfg.MaxMapSize = defaultMaxMapSize
	}
	if cfg.MaxFiles == 0 {
		cfg.MaxFiles = defaultMaxFiles
	}
	if cfg.MaxNameLen == 0 {
		cfg.MaxNameLen = defaultMaxNameLen
	}
	if cfg.MinAlloc == 0 {
		cfg.MinAlloc = defaultMinAlloc
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoOp()
	}
	return &cfg
}

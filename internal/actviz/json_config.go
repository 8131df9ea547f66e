package actviz

import (
	"encoding/json"
	"fmt"
	"os"
)

type ServeCfg struct {
	Addr        string `json:"addr"`
	ServiceName string `json:"serviceName,omitempty"`
	// When true, requests are traced through the Datadog agent.
	Trace bool `json:"trace,omitempty"`
}

type Config struct {
	Input    string   `json:"input"`            // inference response with an "activations" map
	Layers   []string `json:"layers,omitempty"` // render order, defaults to every decoded layer sorted by name
	Modes    []string `json:"modes,omitempty"`  // views rendered for combined grids, defaults to all + sampled
	OutDir   string   `json:"outDir"`
	GIFOut   string   `json:"gifOut"`
	GIFDelay int      `json:"gifDelay,omitempty"`
	Serve    ServeCfg `json:"serve"`

	modes []ViewMode
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.defaults(); err != nil {
		return nil, err
	}
	DebugLog("Loaded config from %s: input=%s, layers=%v, modes=%v, out=%s", path, cfg.Input, cfg.Layers, cfg.Modes, cfg.OutDir)
	return &cfg, nil
}

// defaults fills zero values and validates the rest.
func (cfg *Config) defaults() error {
	if cfg.Input == "" {
		cfg.Input = ActivationsIn
	}
	if cfg.OutDir == "" {
		cfg.OutDir = OutDir
	}
	if cfg.GIFOut == "" {
		cfg.GIFOut = GIFOut
	}
	if cfg.GIFDelay <= 0 {
		cfg.GIFDelay = GIFDelay
	}
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = ServeAddr
	}
	if cfg.Serve.ServiceName == "" {
		cfg.Serve.ServiceName = ServiceName
	}
	if len(cfg.Modes) == 0 {
		cfg.Modes = []string{AllChannels.String(), Sampled.String()}
	}
	cfg.modes = cfg.modes[:0]
	for _, s := range cfg.Modes {
		m, err := ParseViewMode(s)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		cfg.modes = append(cfg.modes, m)
	}
	return nil
}

package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ScoringWeights are the ranking components of the combined score.
type ScoringWeights struct {
	Street     float64 `yaml:"street" json:"street"`
	City       float64 `yaml:"city" json:"city"`
	Structured float64 `yaml:"structured" json:"structured"`
}

// EngineCfg tunes the resolution engine. Zero values fall back to the
// engine defaults.
type EngineCfg struct {
	Threshold     float64        `yaml:"threshold" json:"threshold"`
	Weights       ScoringWeights `yaml:"weights" json:"weights"`
	MaxResults    int            `yaml:"max_results" json:"max_results"`
	MaxCandidates int            `yaml:"max_candidates" json:"max_candidates"`
	BlockLen      int            `yaml:"block_len" json:"block_len"`
	CacheSize     int            `yaml:"cache_size" json:"cache_size"`
}

var C EngineCfg

// Load reads the engine config file. Selected ENV overrides apply on top
// so deployments can tune without editing the file.
func Load(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, &C); err != nil {
		return err
	}
	if v := os.Getenv("MATCH_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			C.Threshold = f
		}
	}
	if v := os.Getenv("MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			C.MaxResults = n
		}
	}
	return nil
}

// RequestTimeout bounds one resolution request.
func RequestTimeout() time.Duration { return 1500 * time.Millisecond }

package srs

import (
	"time"

	"github.com/wordloom/wordloom-api/internal/config"
)

// Params defines all configurable parameters for the scheduling algorithm.
// Every tunable constant lives here so product changes never touch algorithm code.
type Params struct {
	// Core limits
	MinEaseFactor   float64
	MaxIntervalDays int

	// Ease factor adjustments
	AgainEasePenalty float64
	HardEasePenalty  float64
	EasyEaseBonus    float64

	// Interval modifiers applied on top of the ease factor
	HardIntervalModifier float64
	EasyIntervalModifier float64

	// Level tiers
	RepetitionsPerLevel int
	MaxLevel            int
	MasteryLevel        int

	// Delay before a newly added word is first due
	InitialReviewDelay time.Duration
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the default.
type ParamsConfig struct {
	MinEaseFactor   float64
	MaxIntervalDays int

	AgainEasePenalty float64
	HardEasePenalty  float64
	EasyEaseBonus    float64

	HardIntervalModifier float64
	EasyIntervalModifier float64

	RepetitionsPerLevel int
	MaxLevel            int
	MasteryLevel        int

	InitialReviewDelay time.Duration
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:   1.3,
		MaxIntervalDays: 36500,

		AgainEasePenalty: 0.20,
		HardEasePenalty:  0.15,
		EasyEaseBonus:    0.15,

		HardIntervalModifier: 0.8,
		EasyIntervalModifier: 1.3,

		// One level per successful review, up to 10; level 5 counts as mastered.
		RepetitionsPerLevel: 1,
		MaxLevel:            10,
		MasteryLevel:        5,

		InitialReviewDelay: 0,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.MaxIntervalDays > 0 {
		params.MaxIntervalDays = config.MaxIntervalDays
	}

	if config.AgainEasePenalty > 0 {
		params.AgainEasePenalty = config.AgainEasePenalty
	}
	if config.HardEasePenalty > 0 {
		params.HardEasePenalty = config.HardEasePenalty
	}
	if config.EasyEaseBonus > 0 {
		params.EasyEaseBonus = config.EasyEaseBonus
	}

	if config.HardIntervalModifier > 0 {
		params.HardIntervalModifier = config.HardIntervalModifier
	}
	if config.EasyIntervalModifier > 0 {
		params.EasyIntervalModifier = config.EasyIntervalModifier
	}

	if config.RepetitionsPerLevel > 0 {
		params.RepetitionsPerLevel = config.RepetitionsPerLevel
	}
	if config.MaxLevel > 0 {
		params.MaxLevel = config.MaxLevel
	}
	if config.MasteryLevel > 0 {
		params.MasteryLevel = config.MasteryLevel
	}

	if config.InitialReviewDelay > 0 {
		params.InitialReviewDelay = config.InitialReviewDelay
	}

	return params
}

// ParamsFromConfig builds Params from the application's SRS settings.
func ParamsFromConfig(cfg config.SRSConfig) *Params {
	return NewParams(ParamsConfig{
		MinEaseFactor:        cfg.MinEaseFactor,
		MaxIntervalDays:      cfg.MaxIntervalDays,
		AgainEasePenalty:     cfg.AgainEasePenalty,
		HardEasePenalty:      cfg.HardEasePenalty,
		EasyEaseBonus:        cfg.EasyEaseBonus,
		HardIntervalModifier: cfg.HardIntervalModifier,
		EasyIntervalModifier: cfg.EasyIntervalModifier,
		RepetitionsPerLevel:  cfg.RepetitionsPerLevel,
		MaxLevel:             cfg.MaxLevel,
		MasteryLevel:         cfg.MasteryLevel,
		InitialReviewDelay:   time.Duration(cfg.InitialReviewDelayMinutes) * time.Minute,
	})
}

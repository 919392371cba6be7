package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/wordloom/wordloom-api/internal/config"
)

func TestNewDefaultParams(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	assert.Equal(t, 1.3, params.MinEaseFactor)
	assert.Greater(t, params.AgainEasePenalty, params.HardEasePenalty)
	assert.Greater(t, params.EasyEaseBonus, 0.0)
	assert.Less(t, params.HardIntervalModifier, 1.0)
	assert.Greater(t, params.EasyIntervalModifier, 1.0)
	assert.LessOrEqual(t, params.MasteryLevel, params.MaxLevel)
	assert.Equal(t, time.Duration(0), params.InitialReviewDelay)
}

func TestNewParams(t *testing.T) {
	t.Parallel()

	params := NewParams(ParamsConfig{
		MinEaseFactor:       1.5,
		MasteryLevel:        7,
		RepetitionsPerLevel: 2,
		InitialReviewDelay:  5 * time.Minute,
	})

	assert.Equal(t, 1.5, params.MinEaseFactor)
	assert.Equal(t, 7, params.MasteryLevel)
	assert.Equal(t, 2, params.RepetitionsPerLevel)
	assert.Equal(t, 5*time.Minute, params.InitialReviewDelay)

	// Unset fields keep defaults
	defaults := NewDefaultParams()
	assert.Equal(t, defaults.HardEasePenalty, params.HardEasePenalty)
	assert.Equal(t, defaults.MaxIntervalDays, params.MaxIntervalDays)
}

func TestParamsFromConfig(t *testing.T) {
	t.Parallel()

	params := ParamsFromConfig(config.SRSConfig{
		MasteryLevel:              6,
		InitialReviewDelayMinutes: 10,
		DefaultDeckLimit:          20,
		MaxDeckLimit:              100,
	})

	assert.Equal(t, 6, params.MasteryLevel)
	assert.Equal(t, 10*time.Minute, params.InitialReviewDelay)
	assert.Equal(t, 1.3, params.MinEaseFactor, "zero values keep the defaults")
	assert.Equal(t, 10, params.MaxLevel)
}

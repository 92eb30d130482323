package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Boundaries(t *testing.T) {
	cases := map[int]Category{
		0:    CategoryLightning,
		249:  CategoryLightning,
		250:  CategoryQuick,
		399:  CategoryQuick,
		400:  CategoryGood,
		5000: CategoryGood,
	}
	for ms, want := range cases {
		assert.Equal(t, want, Classify(time.Duration(ms)*time.Millisecond), "latency %dms", ms)
	}
}

func TestTiers_Custom(t *testing.T) {
	tiers := Tiers{LightningBelow: 100 * time.Millisecond, QuickBelow: 200 * time.Millisecond}
	assert.NoError(t, tiers.Validate())
	assert.Equal(t, CategoryQuick, tiers.Classify(100*time.Millisecond))
	assert.Equal(t, CategoryGood, tiers.Classify(200*time.Millisecond))
}

func TestTiers_Validate(t *testing.T) {
	assert.NoError(t, DefaultTiers().Validate())
	assert.Error(t, Tiers{}.Validate())
	assert.Error(t, Tiers{LightningBelow: 400 * time.Millisecond, QuickBelow: 250 * time.Millisecond}.Validate())
}

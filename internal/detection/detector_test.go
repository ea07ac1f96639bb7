package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crisis-service/internal/models"
)

func TestDetect_CriticalShortCircuitsLowerTiers(t *testing.T) {
	d := NewDetector()

	// Medium ("depressed") and High ("hopeless") keywords co-occur with a
	// Critical one; only the Critical tier is reported.
	indicators := d.Detect("I feel depressed and hopeless and I want to kill myself")

	require.NotEmpty(t, indicators)
	for _, ind := range indicators {
		assert.Equal(t, models.SeverityCritical, ind.Tier)
		assert.Equal(t, models.IndicatorSourceKeyword, ind.Source)
	}
}

func TestDetect_CaseInsensitive(t *testing.T) {
	d := NewDetector()

	indicators := d.Detect("I WANT TO KILL MYSELF")

	require.Len(t, indicators, 1)
	assert.Equal(t, "kill myself", indicators[0].Pattern)
	assert.Equal(t, models.SeverityCritical, indicators[0].Tier)
}

func TestDetect_HighTier(t *testing.T) {
	d := NewDetector()

	indicators := d.Detect("everything feels hopeless lately")

	require.Len(t, indicators, 1)
	assert.Equal(t, models.SeverityHigh, indicators[0].Tier)
}

func TestDetect_MultipleMatchesInOneTier(t *testing.T) {
	d := NewDetector()

	indicators := d.Detect("I'm hopeless and there is no way out")

	require.Len(t, indicators, 2)
	for _, ind := range indicators {
		assert.Equal(t, models.SeverityHigh, ind.Tier)
	}
}

func TestDetect_EmptyAndNonMatchingText(t *testing.T) {
	d := NewDetector()

	assert.Empty(t, d.Detect(""))
	assert.Empty(t, d.Detect("   "))
	assert.Empty(t, d.Detect("had a really nice walk today"))
}

func TestBehavioralIndicators(t *testing.T) {
	d := NewDetector()

	indicators := d.BehavioralIndicators([]string{"isolation_pattern", "something_unmapped", ""})

	require.Len(t, indicators, 2)
	assert.Equal(t, "isolation_pattern", indicators[0].Pattern)
	assert.Equal(t, models.SeverityMedium, indicators[0].Tier)
	assert.Equal(t, models.IndicatorSourceBehavioral, indicators[0].Source)
	// Unmapped behavioral patterns fall back to Low.
	assert.Equal(t, models.SeverityLow, indicators[1].Tier)
}

func TestDetect_BehavioralDoesNotAffectKeywordShortCircuit(t *testing.T) {
	d := NewDetector()

	keyword := d.Detect("feeling so depressed")
	merged := append(keyword, d.BehavioralIndicators([]string{"isolation_pattern"})...)

	require.Len(t, merged, 2)
	assert.Equal(t, models.IndicatorSourceKeyword, merged[0].Source)
	assert.Equal(t, models.SeverityMedium, merged[0].Tier)
	assert.Equal(t, models.IndicatorSourceBehavioral, merged[1].Source)
}

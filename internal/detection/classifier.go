package detection

import (
	"crisis-service/internal/history"
	"crisis-service/internal/models"
)

// Classify combines indicator tiers with the subject's history pattern
// into one risk level.
//
// Base severity is the highest tier among keyword indicators; if only
// behavioral indicators matched, the base is Low. A frequent_crisis or
// escalating history upgrades Medium to High. The upgrade is one step
// and only from Medium: Low never upgrades and nothing upgrades to
// Critical.
func Classify(indicators []models.Indicator, pattern history.Pattern) models.Severity {
	if len(indicators) == 0 {
		return models.SeverityNone
	}

	base := models.SeverityNone
	behavioralOnly := true
	for _, ind := range indicators {
		if ind.Source != models.IndicatorSourceKeyword {
			continue
		}
		behavioralOnly = false
		if ind.Tier > base {
			base = ind.Tier
		}
	}
	if behavioralOnly {
		base = models.SeverityLow
	}

	if base == models.SeverityMedium &&
		(pattern == history.PatternFrequentCrisis || pattern == history.PatternEscalating) {
		return models.SeverityHigh
	}
	return base
}

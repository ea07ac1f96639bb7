package detection

import (
	"strings"

	"crisis-service/internal/models"
)

type keywordTier struct {
	tier     models.Severity
	keywords []string
}

// Detector scans free text against the layered keyword tables and maps
// behavioral pattern names to indicators. Pure and deterministic for a
// fixed pattern table; safe for concurrent use.
type Detector struct {
	tiers      []keywordTier
	behavioral map[string]models.Severity
}

func NewDetector() *Detector {
	return &Detector{
		tiers: []keywordTier{
			{tier: models.SeverityCritical, keywords: criticalKeywords},
			{tier: models.SeverityHigh, keywords: highKeywords},
			{tier: models.SeverityMedium, keywords: mediumKeywords},
		},
		behavioral: behavioralTiers,
	}
}

// Detect returns the keyword indicators matched in text. Tiers are
// checked highest first and evaluation stops at the first tier with at
// least one match. Empty or non-matching text yields no indicators.
func (d *Detector) Detect(text string) []models.Indicator {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return nil
	}

	for _, tier := range d.tiers {
		var matched []models.Indicator
		for _, keyword := range tier.keywords {
			if strings.Contains(lowered, keyword) {
				matched = append(matched, models.Indicator{
					Pattern: keyword,
					Tier:    tier.tier,
					Source:  models.IndicatorSourceKeyword,
				})
			}
		}
		if len(matched) > 0 {
			return matched
		}
	}
	return nil
}

// BehavioralIndicators converts caller-supplied behavioral pattern names
// into indicators. These merge with keyword results without affecting
// the keyword tier short-circuit.
func (d *Detector) BehavioralIndicators(patterns []string) []models.Indicator {
	var list []models.Indicator
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		tier, ok := d.behavioral[pattern]
		if !ok {
			tier = models.SeverityLow
		}
		list = append(list, models.Indicator{
			Pattern: pattern,
			Tier:    tier,
			Source:  models.IndicatorSourceBehavioral,
		})
	}
	return list
}

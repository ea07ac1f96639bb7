package detection

import "crisis-service/internal/models"

// Keyword tiers, highest first. Detection short-circuits at the first
// tier with a match, so a Critical hit suppresses High/Medium reporting.
var criticalKeywords = []string{
	"kill myself",
	"end my life",
	"suicide",
	"want to die",
	"better off dead",
	"take my own life",
	"end it all",
	"no reason to live",
}

var highKeywords = []string{
	"hurt myself",
	"self-harm",
	"self harm",
	"cutting myself",
	"hopeless",
	"can't go on",
	"cant go on",
	"no way out",
	"worthless",
	"give up on everything",
}

var mediumKeywords = []string{
	"depressed",
	"overwhelmed",
	"panic attack",
	"so alone",
	"empty inside",
	"numb",
	"can't sleep",
	"cant sleep",
	"exhausted all the time",
	"nobody cares",
}

// behavioralTiers maps caller-supplied behavioral pattern names to their
// severity tier. Unknown patterns fall back to Low.
var behavioralTiers = map[string]models.Severity{
	"isolation_pattern":       models.SeverityMedium,
	"withdrawal_pattern":      models.SeverityMedium,
	"sleep_disruption":        models.SeverityLow,
	"missed_checkins":         models.SeverityLow,
	"giving_away_possessions": models.SeverityHigh,
	"sudden_calm":             models.SeverityHigh,
}

package models

// Indicator sources.
const (
	IndicatorSourceKeyword    = "keyword"
	IndicatorSourceBehavioral = "behavioral"
)

// Indicator is a single detected crisis signal. Immutable once produced.
type Indicator struct {
	Pattern string   `json:"pattern"`
	Tier    Severity `json:"tier"`
	Source  string   `json:"source"`
}

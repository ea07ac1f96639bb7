package models

// Resource kinds. Hotline/emergency channels outrank chat/text, which
// outrank website/app when resources are ordered for severe alerts.
const (
	ResourceKindHotline   = "hotline"
	ResourceKindEmergency = "emergency"
	ResourceKindChat      = "chat"
	ResourceKindText      = "text"
	ResourceKindWebsite   = "website"
	ResourceKindApp       = "app"
)

// Wildcards used in resource language/jurisdiction sets.
const (
	LanguageMultiple          = "multiple"
	JurisdictionInternational = "international"
)

// Resource is an external support channel. Read-only reference data,
// managed by configuration rather than per request.
type Resource struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Kind            string   `json:"kind"`
	Contact         string   `json:"contact"`
	Languages       []string `json:"languages"`
	Jurisdictions   []string `json:"jurisdictions"`
	Specializations []string `json:"specializations,omitempty"`
}

package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"crisis-service/internal/models"
)

// Catalog holds the support resource table. Read-only after construction.
type Catalog struct {
	resources []models.Resource
}

func New(resources []models.Resource) *Catalog {
	return &Catalog{resources: resources}
}

// LoadFile reads a resource table from a JSON file. Used when operators
// override the built-in defaults.
func LoadFile(path string) ([]models.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resource file %s: %w", path, err)
	}
	var resources []models.Resource
	if err := json.Unmarshal(data, &resources); err != nil {
		return nil, fmt.Errorf("failed to parse resource file %s: %w", path, err)
	}
	return resources, nil
}

// Lookup returns resources matching the requested language and
// jurisdiction, in the catalog's relevance order. A resource matches if
// its language set contains the language or the "multiple" wildcard, and
// its jurisdiction set contains the jurisdiction or the "international"
// wildcard.
func (c *Catalog) Lookup(language, jurisdiction string) []models.Resource {
	var matched []models.Resource
	for _, r := range c.resources {
		if containsOr(r.Languages, language, models.LanguageMultiple) &&
			containsOr(r.Jurisdictions, jurisdiction, models.JurisdictionInternational) {
			matched = append(matched, r)
		}
	}
	return matched
}

// All returns the full resource table.
func (c *Catalog) All() []models.Resource {
	return c.resources
}

func containsOr(set []string, value, wildcard string) bool {
	for _, entry := range set {
		if entry == value || entry == wildcard {
			return true
		}
	}
	return false
}

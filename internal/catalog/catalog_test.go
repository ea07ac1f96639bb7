package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crisis-service/internal/models"
)

func TestLookup_LanguageAndJurisdictionFilter(t *testing.T) {
	c := New(Default())

	resources := c.Lookup("en", "US")
	require.NotEmpty(t, resources)

	ids := make(map[string]bool)
	for _, r := range resources {
		ids[r.ID] = true
		langOK := containsOr(r.Languages, "en", models.LanguageMultiple)
		jurOK := containsOr(r.Jurisdictions, "US", models.JurisdictionInternational)
		assert.True(t, langOK, "resource %s does not match language", r.ID)
		assert.True(t, jurOK, "resource %s does not match jurisdiction", r.ID)
	}

	assert.True(t, ids["us-988-lifeline"])
	// Wildcard resources always match.
	assert.True(t, ids["intl-iasp-directory"])
	// UK-only line must not appear for a US subject.
	assert.False(t, ids["uk-samaritans"])
}

func TestLookup_WildcardOnlyJurisdiction(t *testing.T) {
	c := New(Default())

	resources := c.Lookup("de", "DE")
	require.NotEmpty(t, resources)
	for _, r := range resources {
		assert.Contains(t, r.Languages, models.LanguageMultiple)
		assert.Contains(t, r.Jurisdictions, models.JurisdictionInternational)
	}
}

func TestLookup_FrenchCanada(t *testing.T) {
	c := New(Default())

	resources := c.Lookup("fr", "CA")
	ids := make(map[string]bool)
	for _, r := range resources {
		ids[r.ID] = true
	}
	assert.True(t, ids["ca-talk-suicide"])
	assert.False(t, ids["us-988-lifeline"])
}

func TestLookup_PreservesCatalogOrder(t *testing.T) {
	c := New([]models.Resource{
		{ID: "a", Kind: models.ResourceKindWebsite, Languages: []string{"en"}, Jurisdictions: []string{"US"}},
		{ID: "b", Kind: models.ResourceKindHotline, Languages: []string{"en"}, Jurisdictions: []string{"US"}},
	})

	resources := c.Lookup("en", "US")
	require.Len(t, resources, 2)
	assert.Equal(t, "a", resources[0].ID)
	assert.Equal(t, "b", resources[1].ID)
}

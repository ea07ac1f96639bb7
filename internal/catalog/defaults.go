package catalog

import "crisis-service/internal/models"

// Default returns the built-in resource table, ordered by relevance.
func Default() []models.Resource {
	return []models.Resource{
		{
			ID:            "us-988-lifeline",
			Name:          "988 Suicide & Crisis Lifeline",
			Kind:          models.ResourceKindHotline,
			Contact:       "988",
			Languages:     []string{"en", "es"},
			Jurisdictions: []string{"US"},
		},
		{
			ID:              "us-crisis-text-line",
			Name:            "Crisis Text Line",
			Kind:            models.ResourceKindText,
			Contact:         "Text HOME to 741741",
			Languages:       []string{"en"},
			Jurisdictions:   []string{"US", "CA", "UK"},
			Specializations: []string{"text-based support"},
		},
		{
			ID:              "us-trevor-project",
			Name:            "The Trevor Project",
			Kind:            models.ResourceKindHotline,
			Contact:         "1-866-488-7386",
			Languages:       []string{"en"},
			Jurisdictions:   []string{"US"},
			Specializations: []string{"lgbtq", "youth"},
		},
		{
			ID:            "uk-samaritans",
			Name:          "Samaritans",
			Kind:          models.ResourceKindHotline,
			Contact:       "116 123",
			Languages:     []string{"en"},
			Jurisdictions: []string{"UK", "IE"},
		},
		{
			ID:            "ca-talk-suicide",
			Name:          "Talk Suicide Canada",
			Kind:          models.ResourceKindHotline,
			Contact:       "1-833-456-4566",
			Languages:     []string{"en", "fr"},
			Jurisdictions: []string{"CA"},
		},
		{
			ID:            "au-lifeline",
			Name:          "Lifeline Australia",
			Kind:          models.ResourceKindHotline,
			Contact:       "13 11 14",
			Languages:     []string{"en"},
			Jurisdictions: []string{"AU"},
		},
		{
			ID:              "intl-7cups",
			Name:            "7 Cups",
			Kind:            models.ResourceKindChat,
			Contact:         "https://www.7cups.com",
			Languages:       []string{models.LanguageMultiple},
			Jurisdictions:   []string{models.JurisdictionInternational},
			Specializations: []string{"peer support"},
		},
		{
			ID:            "intl-iasp-directory",
			Name:          "IASP Crisis Centre Directory",
			Kind:          models.ResourceKindWebsite,
			Contact:       "https://www.iasp.info/resources/Crisis_Centres",
			Languages:     []string{models.LanguageMultiple},
			Jurisdictions: []string{models.JurisdictionInternational},
		},
		{
			ID:            "intl-befrienders",
			Name:          "Befrienders Worldwide",
			Kind:          models.ResourceKindWebsite,
			Contact:       "https://befrienders.org",
			Languages:     []string{models.LanguageMultiple},
			Jurisdictions: []string{models.JurisdictionInternational},
		},
	}
}

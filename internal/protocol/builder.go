package protocol

import (
	"sort"

	"github.com/google/uuid"

	"crisis-service/internal/catalog"
	"crisis-service/internal/models"
)

const maxResources = 5

// Builder assembles intervention protocols from the fixed per-severity
// action tables and the resource catalog.
type Builder struct {
	catalog       *catalog.Catalog
	level1Minutes int
	level2Minutes int
}

func NewBuilder(cat *catalog.Catalog, level1Minutes, level2Minutes int) *Builder {
	if level1Minutes <= 0 {
		level1Minutes = 5
	}
	if level2Minutes <= level1Minutes {
		level2Minutes = level1Minutes + 10
	}
	return &Builder{catalog: cat, level1Minutes: level1Minutes, level2Minutes: level2Minutes}
}

// Build assembles the protocol for one detection event.
func (b *Builder) Build(severity models.Severity, indicators []models.Indicator, language, jurisdiction string) models.CrisisProtocol {
	return models.CrisisProtocol{
		Indicators:       indicators,
		ImmediateActions: immediateActions(severity),
		FollowUpActions:  followUpActions(severity),
		Resources:        b.SelectResources(severity, language, jurisdiction),
		EscalationPath:   b.EscalationPath(),
	}
}

// SelectResources looks up catalog resources for the subject's language
// and jurisdiction. For High and Critical severity, hotline/emergency
// kinds are moved ahead of chat/text, which precede website/app; for
// Medium and Low the catalog's relevance order is kept. At most five
// resources are returned.
func (b *Builder) SelectResources(severity models.Severity, language, jurisdiction string) []models.Resource {
	resources := b.catalog.Lookup(language, jurisdiction)
	if severity >= models.SeverityHigh {
		sort.SliceStable(resources, func(i, j int) bool {
			return kindRank(resources[i].Kind) < kindRank(resources[j].Kind)
		})
	}
	if len(resources) > maxResources {
		resources = resources[:maxResources]
	}
	return resources
}

// EscalationPath returns the fixed two-step path. Both timeouts are
// measured from alert creation.
func (b *Builder) EscalationPath() []models.EscalationStep {
	return []models.EscalationStep{
		{
			Level:          1,
			Condition:      "unresolved_after_timeout",
			Action:         "escalate_to_senior_handler",
			NotifyTargets:  []string{models.RoleSeniorHandler},
			TimeoutMinutes: b.level1Minutes,
		},
		{
			Level:          2,
			Condition:      "unresolved_after_timeout",
			Action:         "contact_emergency_services_if_location_known",
			NotifyTargets:  []string{models.RoleCrisisTeamLead, models.RoleEmergencyLiaison},
			TimeoutMinutes: b.level2Minutes,
		},
	}
}

func immediateActions(severity models.Severity) []models.Action {
	switch severity {
	case models.SeverityCritical:
		return []models.Action{
			newAction(models.ActionNotifyHandler, 1, true, "Notify the on-call crisis handler immediately"),
			newAction(models.ActionProvideResources, 1, true, "Present crisis hotline and emergency resources"),
			newAction(models.ActionConnectCounselor, 1, true, "Offer an immediate counselor connection"),
		}
	case models.SeverityHigh:
		return []models.Action{
			newAction(models.ActionProvideResources, 2, true, "Present crisis support resources"),
			newAction(models.ActionNotifyHandler, 2, true, "Notify the on-call crisis handler"),
		}
	default:
		return []models.Action{
			newAction(models.ActionProvideResources, 3, true, "Present support resources"),
		}
	}
}

func followUpActions(severity models.Severity) []models.Action {
	switch severity {
	case models.SeverityCritical:
		return []models.Action{
			newAction(models.ActionConnectCounselor, 2, false, "Schedule a counselor follow-up within 24 hours"),
		}
	case models.SeverityHigh:
		return []models.Action{
			newAction(models.ActionConnectCounselor, 3, false, "Offer a counselor session within 48 hours"),
		}
	default:
		return nil
	}
}

func newAction(actionType string, priority int, automated bool, description string) models.Action {
	return models.Action{
		ID:          uuid.New().String(),
		Type:        actionType,
		Priority:    priority,
		Automated:   automated,
		Description: description,
	}
}

func kindRank(kind string) int {
	switch kind {
	case models.ResourceKindHotline, models.ResourceKindEmergency:
		return 0
	case models.ResourceKindChat, models.ResourceKindText:
		return 1
	default:
		return 2
	}
}

package models

import "time"

// Handler roles targeted by protocol actions and escalation steps.
const (
	RoleHandlerOnCall    = "handler_on_call"
	RoleCounselorOnCall  = "counselor_on_call"
	RoleSeniorHandler    = "senior_handler"
	RoleCrisisTeamLead   = "crisis_team_lead"
	RoleEmergencyLiaison = "emergency_liaison"
)

// ContactPoint binds a handler role (e.g. "senior_handler", "crisis_team")
// to a delivery channel. Notification targets on escalation steps are
// roles; dispatch resolves them to contact points at send time.
type ContactPoint struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Role          string                 `json:"role"`
	Type          string                 `json:"type"`
	Configuration map[string]interface{} `json:"configuration"`
	Status        string                 `json:"status"`
	CreatedAt     time.Time              `json:"created_at"`
}

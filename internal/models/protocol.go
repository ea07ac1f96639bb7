package models

// Action types executed as part of a crisis protocol.
const (
	ActionNotifyHandler    = "notify_handler"
	ActionProvideResources = "provide_resources"
	ActionConnectCounselor = "connect_counselor"
)

// Action is one step of a crisis protocol.
type Action struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Priority    int    `json:"priority"`
	Automated   bool   `json:"automated"`
	Description string `json:"description"`
}

// EscalationStep is a timed rule that fires if the alert is still
// unhandled when its timeout elapses. Timeouts are measured from alert
// creation, not from the previous step firing.
type EscalationStep struct {
	Level          int      `json:"level"`
	Condition      string   `json:"condition"`
	Action         string   `json:"action"`
	NotifyTargets  []string `json:"notify_targets"`
	TimeoutMinutes int      `json:"timeout_minutes"`
}

// CrisisProtocol is the ephemeral plan computed for one detection event.
// It is never persisted; the alert record keeps the executed-action trail.
type CrisisProtocol struct {
	Indicators       []Indicator      `json:"indicators"`
	ImmediateActions []Action         `json:"immediate_actions"`
	FollowUpActions  []Action         `json:"follow_up_actions"`
	Resources        []Resource       `json:"resources"`
	EscalationPath   []EscalationStep `json:"escalation_path"`
}

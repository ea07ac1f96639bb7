package models

// InputEvent is the structured "evaluate input" unit consumed from chat
// message handling or assessment-response recording, either over HTTP or
// from the input-events topic.
type InputEvent struct {
	SubjectID    string   `json:"subject_id"`
	Text         string   `json:"text"`
	Context      string   `json:"context"`
	Language     string   `json:"language"`
	Jurisdiction string   `json:"jurisdiction"`
	Behavioral   []string `json:"behavioral,omitempty"`
}

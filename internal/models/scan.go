package models

// ScanResult is the structured answer from the vision identifier for one
// photo of a game or console. Field names mirror the JSON schema the model
// is prompted to produce.
type ScanResult struct {
	Identified      bool   `json:"identified"`
	GameName        string `json:"game_name"`
	PlatformKey     string `json:"platform_key"`
	PlatformDisplay string `json:"platform_display"`
	Condition       string `json:"condition"`       // loose, cib, cib_incomplete, new_sealed, damaged, unknown
	ConditionGrade  string `json:"condition_grade"` // Excellent, Good, Fair, Poor
	ConditionNotes  string `json:"condition_notes"`
	Confidence      string `json:"confidence"` // high, medium, low
	NeedsMorePhotos bool   `json:"needs_more_photos"`
	PhotoRequest    string `json:"photo_request"`
	ResaleNotes     string `json:"resale_notes"`
}

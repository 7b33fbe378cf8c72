package models

// Podcast is one catalog record, either seeded or generated by a user.
// JSON field names match the on-disk podcasts.json format.
type Podcast struct {
	ID          int    `json:"id" db:"id"`
	Title       string `json:"title" db:"title"`
	Host        string `json:"host" db:"host"`
	Listens     string `json:"listens" db:"listens"`
	Duration    string `json:"duration" db:"duration"`
	Category    string `json:"category" db:"category"`
	AudioURL    string `json:"audioUrl" db:"audio_url"`
	Description string `json:"description" db:"description"`
	Featured    bool   `json:"featured" db:"featured"`

	// Present only for user-generated entries.
	Script    string `json:"script,omitempty" db:"script"`
	VoiceID   string `json:"voice_id,omitempty" db:"voice_id"`
	VoiceName string `json:"voice_name,omitempty" db:"voice_name"`
	CreatedAt string `json:"created_at,omitempty" db:"created_at"`
	UserID    string `json:"user_id,omitempty" db:"user_id"`
}

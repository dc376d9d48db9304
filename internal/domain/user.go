package domain

// User represents a Telegram user of the tracker and their settings.
type User struct {
	ID         int64 // internal row id
	PlatformID int64 // Telegram user id
	Profile    Profile
	Settings   Settings
}

// Profile is the Telegram identity captured on first interaction.
type Profile struct {
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	IsBot        bool   `json:"is_bot"`
}

// Settings holds per-user preferences.
type Settings struct {
	UTCOffset int     `json:"utc_offset"`          // hours
	SleepTag  *string `json:"sleep_tag,omitempty"` // day-boundary tag, e.g. "#sleep"
}

// HasSleepTag reports whether a day-boundary tag is configured.
func (s Settings) HasSleepTag() bool {
	return s.SleepTag != nil && *s.SleepTag != ""
}

package domain

import (
	"time"
)

// Consents records what the patient has allowed the app to do.
type Consents struct {
	Camera            bool `json:"camera"`
	CloudVerification bool `json:"cloud_verification"`
	CaregiverNotify   bool `json:"caregiver_notify"`
}

// Preferences holds accessibility and voice settings.
type Preferences struct {
	VoiceTone  string  `json:"voice_tone"`
	VoiceSpeed float64 `json:"voice_speed"`
	TextSize   string  `json:"text_size"` // "normal" or "large"
}

// Profile represents a device-scoped patient profile.
type Profile struct {
	DeviceID      string      `json:"device_id"`
	DisplayName   string      `json:"display_name"`
	Authenticated bool        `json:"authenticated"`
	Consents      Consents    `json:"consents"`
	Preferences   Preferences `json:"preferences"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

package domain

// SeedMedications returns the initial medication schedule loaded on first run.
func SeedMedications() []Medication {
	return []Medication{
		{
			ID:                   "1",
			Name:                 "Metformin",
			Dose:                 "500 mg",
			Form:                 "tablet",
			Times:                []string{"09:00", "21:00"},
			ContainerDescription: "white bottle with blue cap",
			RefillDate:           "2025-06-15",
			ImageURL:             "https://images.unsplash.com/photo-1584308666744-24d5c474f2ae?auto=format&fit=crop&w=300&q=80",
			Instructions:         "Take with a meal.",
		},
		{
			ID:                   "2",
			Name:                 "Lisinopril",
			Dose:                 "10 mg",
			Form:                 "tablet",
			Times:                []string{"08:00"},
			ContainerDescription: "orange bottle with white cap",
			RefillDate:           "2025-06-10",
			ImageURL:             "https://images.unsplash.com/photo-1550572017-ed2002b42d7e?auto=format&fit=crop&w=300&q=80",
			Instructions:         "Monitor blood pressure.",
		},
	}
}

// DefaultConsents returns the consent set for a new profile.
func DefaultConsents() Consents {
	return Consents{
		Camera:            true,
		CloudVerification: false,
		CaregiverNotify:   true,
	}
}

// DefaultPreferences returns the accessibility defaults for a new profile.
func DefaultPreferences() Preferences {
	return Preferences{
		VoiceTone:  "friendly-emphatic",
		VoiceSpeed: 0.95,
		TextSize:   "large",
	}
}

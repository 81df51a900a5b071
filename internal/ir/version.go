package ir

// Version constants for the candidate record and journal layouts.
const (
	// RecordVersion is the candidate record layout version.
	RecordVersion = "1"

	// SearchVersion is the destroy search version.
	SearchVersion = "0.1.0"
)

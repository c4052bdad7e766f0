package constants

const (
	// Default preference values
	DefaultFocusMinutes = 25
	DefaultBreakMinutes = 5
	DefaultDailyGoal    = 4
	DefaultTimezone     = "Local" // Use system local timezone by default
)

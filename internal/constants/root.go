package constants

import "time"

// TaskStatus represents where a task is in its lifecycle
type TaskStatus string

// Priority represents the priority of a task
type Priority string

// Mood represents a logged mood value
type Mood string

// TransactionKind represents the direction of a ledger journal entry
type TransactionKind string

const (
	AppName            = "neurozen"
	DefaultKeyringUser = "database-connection"
	AIKeyringUser      = "ai-api-key"
	DefaultConfigDir   = "~/.config/neurozen"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "neurozen-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "neurozen-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.neurozen"
	TrayAppExecutable      = "neurozen-tray"

	// Task Status constants
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"

	// Priority constants
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"

	// Mood constants
	MoodVeryHappy Mood = "very_happy"
	MoodHappy     Mood = "happy"
	MoodNeutral   Mood = "neutral"
	MoodSad       Mood = "sad"
	MoodVerySad   Mood = "very_sad"

	// Ledger journal kinds
	TransactionEarn  TransactionKind = "earn"
	TransactionSpend TransactionKind = "spend"

	// Summary generation
	DefaultAITimeout = 30 * time.Second
	DefaultAIModel   = "deepseek/deepseek-v3"
	DefaultAIBaseURL = "https://openrouter.ai/api/v1"
	// SummaryLockTTL bounds how long a generation lock may be held by a crashed holder
	SummaryLockTTL = 2 * time.Minute

	// HTTP API
	DefaultServerAddr = ":8080"
	RequestIDHeader   = "X-Request-ID"
)

// DefaultCategories lists the categories every user starts with, in display order.
var DefaultCategories = []string{"work", "study", "personal", "health", "social", "hobby", "self_care", "other"}

// DefaultCategoryColors maps default category names to their colours.
var DefaultCategoryColors = map[string]string{
	"work":      "#FF6B6B",
	"study":     "#4ECDC4",
	"personal":  "#45B7D1",
	"health":    "#96CEB4",
	"social":    "#FFEEAD",
	"hobby":     "#D4A5A5",
	"self_care": "#9B59B6",
	"other":     "#95A5A6",
}

// FallbackCategoryColor is used for categories without a configured colour.
const FallbackCategoryColor = "#95A5A6"

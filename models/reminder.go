package models

// Reminder payload constants shared between the job and the client.
const (
	ReminderDataType = "watering_reminder"

	// ReminderTag lets the receiving client collapse repeated same-day
	// reminders into a single visible alert instead of stacking them.
	ReminderTag = "watering_reminder_daily"
)

// ReminderMessage is the per-user push composed by the watering-reminder
// job. It is ephemeral: built, delivered to every device token of one user,
// and discarded.
type ReminderMessage struct {
	Title    string
	Body     string
	Data     map[string]string // type, plantIds (comma-joined), count
	Tag      string
	Renotify bool
	Urgency  string
}

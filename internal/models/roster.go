package models

// Student is a classroom roster entry shown on the dashboard and health pages
type Student struct {
	ID          string
	Name        string
	ParentPhone string
	ClassGroup  string
	Allergies   []string
	Medicines   []string
}

// EmergencyContact is a quick-dial entry on the health data page
type EmergencyContact struct {
	ID    string
	Name  string
	Phone string
	Icon  string // "ambulance", "nurse" or "hospital"
}

// MedicationReminder is a scheduled medication entry for a student
type MedicationReminder struct {
	ID          string
	StudentName string
	Medication  string
	Time        string
	Completed   bool
}

// CalendarEvent is a dated entry on the classroom calendar
type CalendarEvent struct {
	ID    string
	Title string
	Date  string // YYYY-MM-DD
	Time  string
	Kind  string // "birthday", "meeting", "activity", "holiday"
}

// Activity is a planned classroom activity
type Activity struct {
	ID          string
	Title       string
	Description string
	Duration    string
	Category    string
}

// SpeechReport is a per-student speech practice summary
type SpeechReport struct {
	ID           string
	StudentName  string
	SessionCount int
	AvgClarity   float64 // 0..100
	LastSession  string  // YYYY-MM-DD
}

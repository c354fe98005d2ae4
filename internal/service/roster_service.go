package service

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"mochiteach/internal/models"
)

var ErrReminderNotFound = errors.New("reminder not found")

// RosterService serves the classroom dashboard pages: students, health data,
// medication reminders, the calendar, activities and speech reports. The data
// is seeded in memory; a school-records integration would replace the seeds.
type RosterService struct {
	mu        sync.Mutex
	students  []models.Student
	contacts  []models.EmergencyContact
	reminders []models.MedicationReminder
	events    []models.CalendarEvent
	acts      []models.Activity
	speech    []models.SpeechReport
}

// NewRosterService creates a roster service with the demo classroom seeded
func NewRosterService() *RosterService {
	today := time.Now()
	day := func(offset int) string {
		return today.AddDate(0, 0, offset).Format("2006-01-02")
	}

	return &RosterService{
		students: []models.Student{
			{ID: "1", Name: "Movindu Gamage", ParentPhone: "+94 77 111 2222", ClassGroup: "Class A", Allergies: []string{"Peanuts", "Dust"}, Medicines: []string{"Cetirizine 5mg"}},
			{ID: "2", Name: "Sithumi Perera", ParentPhone: "+94 77 333 4444", ClassGroup: "Class A", Allergies: []string{"Lactose"}, Medicines: []string{"Lactaid"}},
			{ID: "3", Name: "Kavith Fernando", ParentPhone: "+94 77 555 6666", ClassGroup: "Class A", Allergies: []string{}, Medicines: []string{"Ventolin Inhaler"}},
			{ID: "4", Name: "Nethmi Silva", ParentPhone: "+94 77 777 8888", ClassGroup: "Class B", Allergies: []string{"Shellfish", "Eggs"}, Medicines: []string{}},
			{ID: "5", Name: "Anul Sandes", ParentPhone: "+94 77 999 0000", ClassGroup: "Class B", Allergies: []string{"Pollen"}, Medicines: []string{"Flonase Nasal Spray"}},
			{ID: "6", Name: "Thewan Jayaweera", ParentPhone: "+94 77 123 7890", ClassGroup: "Class B", Allergies: []string{"Gluten"}, Medicines: []string{"Gluten-Free Multivitamin"}},
		},
		contacts: []models.EmergencyContact{
			{ID: "1", Name: "Ambulance Service", Phone: "1990", Icon: "ambulance"},
			{ID: "2", Name: "School Nurse", Phone: "+94 77 123 4567", Icon: "nurse"},
			{ID: "3", Name: "Nearest Hospital", Phone: "+94 11 234 5678", Icon: "hospital"},
		},
		events: []models.CalendarEvent{
			{ID: "1", Title: "Morning Circle", Date: day(0), Time: "9:00 AM", Kind: "activity"},
			{ID: "2", Title: "Color Learning Session", Date: day(0), Time: "10:00 AM", Kind: "activity"},
			{ID: "3", Title: "Parent Meeting", Date: day(2), Time: "3:00 PM", Kind: "meeting"},
			{ID: "4", Title: "Field Trip to Zoo", Date: day(5), Time: "9:00 AM", Kind: "activity"},
		},
		acts: []models.Activity{
			{ID: "1", Title: "Color Matching", Description: "Match colors with objects", Duration: "15 mins", Category: "easy"},
			{ID: "2", Title: "Animal Sounds Quiz", Description: "Identify animals by their sounds", Duration: "20 mins", Category: "easy"},
			{ID: "3", Title: "Shape Sorting", Description: "Sort shapes into categories", Duration: "15 mins", Category: "medium"},
			{ID: "4", Title: "Number Hunt", Description: "Find numbers around the room", Duration: "25 mins", Category: "medium"},
			{ID: "5", Title: "Story Building", Description: "Create stories together", Duration: "30 mins", Category: "hard"},
		},
		speech: []models.SpeechReport{
			{ID: "1", StudentName: "Emma Johnson", SessionCount: 12, AvgClarity: 85, LastSession: day(-1)},
			{ID: "2", StudentName: "Liam Smith", SessionCount: 15, AvgClarity: 92, LastSession: day(-2)},
			{ID: "3", StudentName: "Olivia Brown", SessionCount: 8, AvgClarity: 65, LastSession: day(-3)},
			{ID: "4", StudentName: "Noah Davis", SessionCount: 10, AvgClarity: 75, LastSession: day(-1)},
		},
	}
}

// Students returns the classroom roster
func (s *RosterService) Students() []models.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Student(nil), s.students...)
}

// EmergencyContacts returns the quick-dial contacts for the health page
func (s *RosterService) EmergencyContacts() []models.EmergencyContact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.EmergencyContact(nil), s.contacts...)
}

// MedicationReminders returns today's medication schedule
func (s *RosterService) MedicationReminders() []models.MedicationReminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.MedicationReminder(nil), s.reminders...)
}

// AddMedicationReminder schedules a medication entry for a student
func (s *RosterService) AddMedicationReminder(studentName, medication, timeOfDay string) models.MedicationReminder {
	reminder := models.MedicationReminder{
		ID:          uuid.New().String(),
		StudentName: studentName,
		Medication:  medication,
		Time:        timeOfDay,
	}

	s.mu.Lock()
	s.reminders = append(s.reminders, reminder)
	s.mu.Unlock()

	return reminder
}

// ToggleMedicationReminder flips a reminder's completed state
func (s *RosterService) ToggleMedicationReminder(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.reminders {
		if s.reminders[i].ID == id {
			s.reminders[i].Completed = !s.reminders[i].Completed
			return nil
		}
	}
	return ErrReminderNotFound
}

// CalendarEvents returns the classroom calendar entries
func (s *RosterService) CalendarEvents() []models.CalendarEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CalendarEvent(nil), s.events...)
}

// EventsOn returns the events scheduled for one date (YYYY-MM-DD)
func (s *RosterService) EventsOn(date string) []models.CalendarEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.CalendarEvent
	for _, event := range s.events {
		if event.Date == date {
			matched = append(matched, event)
		}
	}
	return matched
}

// Activities returns the planned classroom activities
func (s *RosterService) Activities() []models.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Activity(nil), s.acts...)
}

// SpeechReports returns per-student speech practice summaries
func (s *RosterService) SpeechReports() []models.SpeechReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.SpeechReport(nil), s.speech...)
}

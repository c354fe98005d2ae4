package service

import (
	"errors"
	"testing"
)

func TestRosterSeedData(t *testing.T) {
	svc := NewRosterService()

	if len(svc.Students()) == 0 {
		t.Error("no seeded students")
	}
	if len(svc.EmergencyContacts()) == 0 {
		t.Error("no seeded emergency contacts")
	}
	if len(svc.Activities()) == 0 {
		t.Error("no seeded activities")
	}
	if len(svc.SpeechReports()) == 0 {
		t.Error("no seeded speech reports")
	}
}

func TestAddAndToggleMedicationReminder(t *testing.T) {
	svc := NewRosterService()
	before := len(svc.MedicationReminders())

	reminder := svc.AddMedicationReminder("Nimali Perera", "Inhaler", "09:30")
	if reminder.ID == "" {
		t.Fatal("AddMedicationReminder returned empty id")
	}
	if reminder.Completed {
		t.Error("new reminder is already completed")
	}
	if len(svc.MedicationReminders()) != before+1 {
		t.Error("reminder was not stored")
	}

	if err := svc.ToggleMedicationReminder(reminder.ID); err != nil {
		t.Fatalf("ToggleMedicationReminder() error = %v", err)
	}
	for _, r := range svc.MedicationReminders() {
		if r.ID == reminder.ID && !r.Completed {
			t.Error("reminder not marked completed after toggle")
		}
	}

	if err := svc.ToggleMedicationReminder("missing"); !errors.Is(err, ErrReminderNotFound) {
		t.Errorf("ToggleMedicationReminder(missing) error = %v, want ErrReminderNotFound", err)
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	svc := NewRosterService()

	students := svc.Students()
	original := students[0].Name
	students[0].Name = "changed"

	if svc.Students()[0].Name != original {
		t.Error("mutating a returned slice changed the roster")
	}
}

func TestEventsOn(t *testing.T) {
	svc := NewRosterService()
	events := svc.CalendarEvents()
	if len(events) == 0 {
		t.Fatal("no seeded calendar events")
	}

	date := events[0].Date
	matched := svc.EventsOn(date)
	if len(matched) == 0 {
		t.Errorf("EventsOn(%q) found nothing", date)
	}
	for _, e := range matched {
		if e.Date != date {
			t.Errorf("EventsOn(%q) returned event on %q", date, e.Date)
		}
	}

	if got := svc.EventsOn("1999-01-01"); len(got) != 0 {
		t.Errorf("EventsOn(1999-01-01) = %v, want empty", got)
	}
}

package handlers

import (
	"html/template"
	"log"
	"net/http"
	"time"

	"mochiteach/internal/service"
)

// DashboardHandler serves the classroom pages: the teacher dashboard, health
// data, medication reminders, calendar, activities and speech reports
type DashboardHandler struct {
	rosterService *service.RosterService
	lessonService *service.LessonService
	middleware    *Middleware
	templates     *template.Template
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(rosterService *service.RosterService, lessonService *service.LessonService, middleware *Middleware, templates *template.Template) *DashboardHandler {
	return &DashboardHandler{
		rosterService: rosterService,
		lessonService: lessonService,
		middleware:    middleware,
		templates:     templates,
	}
}

// Dashboard renders the teacher home page
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := DashboardViewData{
		Title:     "Dashboard - Mochi",
		User:      GetUserFromContext(r.Context()),
		Students:  h.rosterService.Students(),
		Lessons:   h.lessonService.List(),
		Events:    h.rosterService.EventsOn(time.Now().Format("2006-01-02")),
		Flash:     PopFlash(w, r),
		CSRFToken: h.middleware.CSRFToken(r),
	}
	h.render(w, "dashboard.tmpl", data)
}

// HealthData renders the student health page with emergency contacts
func (h *DashboardHandler) HealthData(w http.ResponseWriter, r *http.Request) {
	data := HealthDataViewData{
		Title:     "Health Data - Mochi",
		User:      GetUserFromContext(r.Context()),
		Students:  h.rosterService.Students(),
		Contacts:  h.rosterService.EmergencyContacts(),
		Reminders: h.rosterService.MedicationReminders(),
		CSRFToken: h.middleware.CSRFToken(r),
		Flash:     PopFlash(w, r),
	}
	h.render(w, "health_data.tmpl", data)
}

// Reminders renders the medication reminders page
func (h *DashboardHandler) Reminders(w http.ResponseWriter, r *http.Request) {
	data := RemindersViewData{
		Title:     "Reminders - Mochi",
		User:      GetUserFromContext(r.Context()),
		Students:  h.rosterService.Students(),
		Reminders: h.rosterService.MedicationReminders(),
		CSRFToken: h.middleware.CSRFToken(r),
		Flash:     PopFlash(w, r),
	}
	h.render(w, "reminders.tmpl", data)
}

// AddReminder schedules a medication reminder
func (h *DashboardHandler) AddReminder(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	studentName := r.FormValue("student_name")
	medication := r.FormValue("medication")
	timeOfDay := r.FormValue("time")

	if studentName == "" || medication == "" || timeOfDay == "" {
		SetFlash(w, r, Flash{Title: "All fields are required", Severity: "error"})
		http.Redirect(w, r, "/reminders", http.StatusSeeOther)
		return
	}

	h.rosterService.AddMedicationReminder(studentName, medication, timeOfDay)
	SetFlash(w, r, Flash{Title: "Reminder added", Description: medication + " for " + studentName, Severity: "success"})
	http.Redirect(w, r, "/reminders", http.StatusSeeOther)
}

// ToggleReminder flips a reminder's completed state
func (h *DashboardHandler) ToggleReminder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.rosterService.ToggleMedicationReminder(id); err != nil {
		SetFlash(w, r, Flash{Title: "Reminder not found", Severity: "error"})
	}
	http.Redirect(w, r, "/reminders", http.StatusSeeOther)
}

// Calendar renders the classroom calendar
func (h *DashboardHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	data := CalendarViewData{
		Title:  "Calendar - Mochi",
		User:   GetUserFromContext(r.Context()),
		Events: h.rosterService.CalendarEvents(),
	}
	h.render(w, "calendar.tmpl", data)
}

// Activities renders the planned classroom activities
func (h *DashboardHandler) Activities(w http.ResponseWriter, r *http.Request) {
	data := ActivitiesViewData{
		Title:      "Activities - Mochi",
		User:       GetUserFromContext(r.Context()),
		Activities: h.rosterService.Activities(),
	}
	h.render(w, "activities.tmpl", data)
}

// SpeechReports renders per-student speech practice summaries
func (h *DashboardHandler) SpeechReports(w http.ResponseWriter, r *http.Request) {
	data := SpeechReportsViewData{
		Title:   "Speech Reports - Mochi",
		User:    GetUserFromContext(r.Context()),
		Reports: h.rosterService.SpeechReports(),
	}
	h.render(w, "speech_reports.tmpl", data)
}

func (h *DashboardHandler) render(w http.ResponseWriter, name string, data interface{}) {
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Error rendering %s template: %v", name, err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

package handlers

import (
	"mochiteach/internal/models"
	"mochiteach/internal/service"
)

type LoginViewData struct {
	Title          string
	OAuthProviders []OAuthProviderView
	Error          string
	Email          string
	Success        string
}

type RegisterViewData struct {
	Title          string
	OAuthProviders []OAuthProviderView
	Error          string
	Email          string
	Name           string
}

type ForgotPasswordViewData struct {
	Title   string
	Success string
	Error   string
}

type ResetPasswordViewData struct {
	Title string
	Token string
	Error string
}

type HomeViewData struct {
	Title string
	User  *models.User
	Flash *Flash
}

type LessonLibraryViewData struct {
	Title     string
	User      *models.User
	Lessons   []models.Lesson
	CSRFToken string
	Flash     *Flash
}

type LessonEditorViewData struct {
	Title     string
	User      *models.User
	Draft     *service.Draft
	IsNew     bool
	Error     string
	CSRFToken string
}

type PlayerViewData struct {
	Title     string
	User      *models.User
	View      *service.PlayerView
	CSRFToken string
	Flash     *Flash
}

type VisualSearchViewData struct {
	Title     string
	User      *models.User
	Query     string
	Results   []models.VisualResult
	Generated *models.GeneratedContent
	Error     string
	CSRFToken string
}

type DashboardViewData struct {
	Title     string
	User      *models.User
	Students  []models.Student
	Lessons   []models.Lesson
	Events    []models.CalendarEvent
	Flash     *Flash
	CSRFToken string
}

type HealthDataViewData struct {
	Title     string
	User      *models.User
	Students  []models.Student
	Contacts  []models.EmergencyContact
	Reminders []models.MedicationReminder
	CSRFToken string
	Flash     *Flash
}

type RemindersViewData struct {
	Title     string
	User      *models.User
	Students  []models.Student
	Reminders []models.MedicationReminder
	CSRFToken string
	Flash     *Flash
}

type CalendarViewData struct {
	Title  string
	User   *models.User
	Events []models.CalendarEvent
}

type ActivitiesViewData struct {
	Title      string
	User       *models.User
	Activities []models.Activity
}

type SpeechReportsViewData struct {
	Title   string
	User    *models.User
	Reports []models.SpeechReport
}

package main

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"mochiteach/internal/audio"
	"mochiteach/internal/config"
	"mochiteach/internal/database"
	"mochiteach/internal/handlers"
	"mochiteach/internal/repository"
	"mochiteach/internal/security"
	"mochiteach/internal/service"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// The server starts listening before initialization finishes so the
	// browser gets a progress page instead of a connection error
	var appHandler atomic.Value
	gate := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !handlers.IsReady() {
			handlers.ShowStartupStatus(w, r)
			return
		}
		appHandler.Load().(http.Handler).ServeHTTP(w, r)
	})

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      gate,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	handlers.SetCurrentStep("Connecting to database...")

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)
	handlers.CompleteStep("Database connection")

	// Run migrations
	handlers.SetCurrentStep("Running migrations...")
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")
	handlers.CompleteStep("Running migrations")

	// Seed the visual search safety blocklist
	if err := db.SeedSafetyBlocklist(); err != nil {
		log.Printf("Warning: Failed to seed safety blocklist: %v", err)
	}

	// Load templates
	handlers.SetCurrentStep("Loading templates...")
	templates, err := loadTemplates(cfg.TemplatesPath)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	log.Println("Templates loaded successfully")
	handlers.CompleteStep("Loading templates")

	// Initialize repositories
	handlers.SetCurrentStep("Initializing services...")
	userRepo := repository.NewUserRepository(db)
	kvRepo := repository.NewKVRepository(db)
	lessonStore := repository.NewLessonStore(kvRepo)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.SessionDuration, cfg.JWTSecret)
	emailService, err := service.NewEmailService(cfg.SESRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	lessonService := service.NewLessonService(lessonStore)
	narrator := audio.NewGoogleTTS(cfg.AudioCachePath, "/static/audio")
	playerService := service.NewPlayerService(lessonStore, narrator)
	aiService := service.NewAILessonService(cfg.GeminiAPIKey, cfg.GeminiTextModel, cfg.GeminiImageModel, cfg.ImageTimeout)
	visualService := service.NewVisualSearchService(cfg.VisualSearchURL, db)
	rosterService := service.NewRosterService()

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
		"facebook": {
			Name:  "facebook",
			Label: "Facebook",
			Config: &oauth2.Config{
				ClientID:     cfg.FacebookClientID,
				ClientSecret: cfg.FacebookClientSecret,
				Endpoint:     facebook.Endpoint,
				Scopes:       []string{"email", "public_profile"},
			},
			UserInfoURL: "https://graph.facebook.com/me?fields=id,name,email",
		},
	}
	handlers.CompleteStep("Initializing services")

	// Warm the narration voice cache and drop audio files no lesson uses
	handlers.SetCurrentStep("Warming narration voices...")
	warmCtx, cancelWarm := context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := narrator.PreloadVoices(warmCtx); err != nil {
		log.Printf("Warning: Failed to preload narration voices: %v", err)
	}
	cancelWarm()

	keep := map[string]bool{}
	for _, lesson := range lessonService.List() {
		for _, item := range lesson.Items {
			keep[audio.AudioFilenameFor(item.NarrationText())] = true
		}
	}
	if err := narrator.CleanupOrphanedAudio(keep); err != nil {
		log.Printf("Warning: Failed to cleanup orphaned audio files: %v", err)
	}
	handlers.CompleteStep("Warming narration voices")

	// Initialize handlers
	rateLimiter := security.NewRateLimiter(20, time.Minute)
	csrf := security.NewCSRFGenerator(cfg.JWTSecret)
	middleware := handlers.NewMiddleware(authService, rateLimiter, csrf)
	authHandler := handlers.NewAuthHandler(authService, emailService, templates, oauthProviders, cfg.OAuthRedirectBaseURL)
	lessonHandler := handlers.NewLessonHandler(lessonService, middleware, templates, cfg.UploadMaxSize)
	playerHandler := handlers.NewPlayerHandler(playerService, middleware, templates)
	visualHandler := handlers.NewVisualSearchHandler(visualService, middleware, templates)
	dashboardHandler := handlers.NewDashboardHandler(rosterService, lessonService, middleware, templates)
	apiHandler := handlers.NewAPIHandler(aiService, lessonService)

	// Setup routes
	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticFilesPath))))

	// Public routes
	mux.HandleFunc("GET /", authHandler.Home)
	mux.HandleFunc("GET /login", authHandler.ShowLogin)
	mux.HandleFunc("POST /login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("GET /register", authHandler.ShowRegister)
	mux.HandleFunc("POST /register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /logout", authHandler.Logout)
	mux.HandleFunc("GET /forgot-password", authHandler.ShowForgotPassword)
	mux.HandleFunc("POST /forgot-password", middleware.RateLimit(authHandler.ForgotPassword))
	mux.HandleFunc("GET /auth/reset-password", authHandler.ShowResetPassword)
	mux.HandleFunc("POST /auth/reset-password", middleware.RateLimit(authHandler.ResetPassword))
	mux.HandleFunc("GET /auth/{provider}/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", authHandler.OAuthCallback)
	mux.HandleFunc("GET /api/health", apiHandler.Health)

	// Dashboard and classroom routes
	mux.HandleFunc("GET /dashboard", middleware.RequireAuth(dashboardHandler.Dashboard))
	mux.HandleFunc("GET /health-data", middleware.RequireAuth(dashboardHandler.HealthData))
	mux.HandleFunc("GET /reminders", middleware.RequireAuth(dashboardHandler.Reminders))
	mux.HandleFunc("POST /reminders", middleware.RequireAuth(middleware.CSRFProtect(dashboardHandler.AddReminder)))
	mux.HandleFunc("POST /reminders/{id}/toggle", middleware.RequireAuth(middleware.CSRFProtect(dashboardHandler.ToggleReminder)))
	mux.HandleFunc("GET /calendar", middleware.RequireAuth(dashboardHandler.Calendar))
	mux.HandleFunc("GET /activities", middleware.RequireAuth(dashboardHandler.Activities))
	mux.HandleFunc("GET /speech-reports", middleware.RequireAuth(dashboardHandler.SpeechReports))

	// Lesson library and editor routes
	mux.HandleFunc("GET /lessons", middleware.RequireAuth(lessonHandler.Library))
	mux.HandleFunc("GET /lessons/new", middleware.RequireAuth(lessonHandler.ShowCreate))
	mux.HandleFunc("GET /lessons/{id}/edit", middleware.RequireAuth(lessonHandler.ShowEdit))
	mux.HandleFunc("POST /lessons/save", middleware.RequireAuth(middleware.CSRFProtect(lessonHandler.Save)))
	mux.HandleFunc("POST /lessons/{id}/delete", middleware.RequireAuth(middleware.CSRFProtect(lessonHandler.Delete)))

	// Lesson player routes
	mux.HandleFunc("GET /lessons/{id}/play", middleware.RequireAuth(playerHandler.Play))
	mux.HandleFunc("GET /player", middleware.RequireAuth(playerHandler.Show))
	mux.HandleFunc("POST /player/next", middleware.RequireAuth(middleware.CSRFProtect(playerHandler.Next)))
	mux.HandleFunc("POST /player/speak", middleware.RequireAuth(middleware.CSRFProtect(playerHandler.Speak)))
	mux.HandleFunc("POST /player/repeat", middleware.RequireAuth(middleware.CSRFProtect(playerHandler.Repeat)))
	mux.HandleFunc("POST /player/exit", middleware.RequireAuth(middleware.CSRFProtect(playerHandler.Exit)))

	// Visual search routes
	mux.HandleFunc("GET /visual-search", middleware.RequireAuth(visualHandler.Show))
	mux.HandleFunc("POST /visual-search", middleware.RequireAuth(middleware.CSRFProtect(visualHandler.Search)))
	mux.HandleFunc("POST /visual-search/generate", middleware.RequireAuth(middleware.CSRFProtect(visualHandler.Generate)))
	mux.HandleFunc("POST /visual-search/track-download", middleware.RequireAuth(middleware.CSRFProtect(visualHandler.TrackDownload)))

	// AI generation API routes
	mux.HandleFunc("POST /api/generate-lesson", middleware.RequireAuth(middleware.RateLimit(apiHandler.GenerateLesson)))
	mux.HandleFunc("POST /api/generate-lesson-content", middleware.RequireAuth(middleware.RateLimit(apiHandler.GenerateLessonContent)))

	// Wrap with logging middleware and open the gate
	appHandler.Store(handlers.Logging(mux))
	handlers.CompleteStep("Server ready")
	handlers.MarkReady()

	// Start background session cleanup
	go cleanupExpiredSessions(authService)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

// loadTemplates loads all template files
func loadTemplates(templatesPath string) (*template.Template, error) {
	baseTemplate := filepath.Join(templatesPath, "base.tmpl")

	var files []string
	files = append(files, baseTemplate)

	matches, err := filepath.Glob(filepath.Join(templatesPath, "pages/*.tmpl"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob templates: %w", err)
	}
	files = append(files, matches...)

	// Define template functions
	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"pct": func(part, total int) int {
			if total == 0 {
				return 0
			}
			return (part * 100) / total
		},
		// Lesson and search images are often data: URIs, which the template
		// engine would otherwise reject as unsafe URLs
		"imgsrc": func(s string) template.URL {
			return template.URL(s)
		},
	}

	// Parse all templates with functions
	tmpl, err := template.New("").Funcs(funcMap).ParseFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return tmpl, nil
}

// cleanupExpiredSessions periodically removes expired sessions
func cleanupExpiredSessions(authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Error cleaning up expired sessions: %v", err)
		} else {
			log.Println("Expired sessions cleaned up")
		}
	}
}

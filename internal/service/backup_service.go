package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"mochiteach/internal/database"
	"mochiteach/internal/models"
	"mochiteach/internal/repository"
)

// BackupData represents the complete backup structure
type BackupData struct {
	Version    string          `json:"version"`
	ExportedAt time.Time       `json:"exported_at"`
	Users      []UserBackup    `json:"users"`
	Lessons    []models.Lesson `json:"lessons"`
}

// UserBackup represents an educator account for backup
type UserBackup struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	Name          string    `json:"name"`
	OAuthProvider string    `json:"oauth_provider"`
	OAuthSubject  string    `json:"oauth_subject"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BackupService exports and restores the application data: educator accounts
// from the users table and the whole lesson collection blob
type BackupService struct {
	db *database.DB
	kv repository.KeyValue
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, kv repository.KeyValue) *BackupService {
	return &BackupService{db: db, kv: kv}
}

// Export creates a complete backup to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Export completed successfully to %s", outputPath)
	return nil
}

// ExportToWriter exports the application data as indented JSON
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
	}

	if err := s.exportUsers(backup); err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	if err := s.exportLessons(backup); err != nil {
		return fmt.Errorf("failed to export lessons: %w", err)
	}

	log.Printf("Exported: %d users, %d lessons", len(backup.Users), len(backup.Lessons))

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(backup)
}

// Import restores application data from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores application data from a backup stream. Users are
// inserted with their original ids; the lesson collection blob is replaced
// wholesale so ids and timestamps survive the round trip.
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	if err := s.importUsers(backup.Users); err != nil {
		return fmt.Errorf("failed to import users: %w", err)
	}
	if err := s.importLessons(backup.Lessons); err != nil {
		return fmt.Errorf("failed to import lessons: %w", err)
	}

	log.Println("Import completed successfully")
	return nil
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	query := "SELECT id, email, COALESCE(password_hash, ''), name, COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), created_at, updated_at FROM users ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.OAuthProvider, &u.OAuthSubject, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportLessons(backup *BackupData) error {
	raw, found, err := s.kv.Read(repository.LessonsKey)
	if err != nil {
		return err
	}
	if !found || raw == "" {
		backup.Lessons = []models.Lesson{}
		return nil
	}

	if err := json.Unmarshal([]byte(raw), &backup.Lessons); err != nil {
		return fmt.Errorf("stored lesson collection is corrupt: %w", err)
	}
	return nil
}

func (s *BackupService) importUsers(users []UserBackup) error {
	log.Printf("Importing %d users...", len(users))
	for _, u := range users {
		query := "INSERT INTO users (id, email, password_hash, name, oauth_provider, oauth_subject, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, u.ID, u.Email, u.PasswordHash, u.Name, u.OAuthProvider, u.OAuthSubject, u.CreatedAt, u.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import user %d: %w", u.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importLessons(lessons []models.Lesson) error {
	log.Printf("Importing %d lessons...", len(lessons))
	if lessons == nil {
		lessons = []models.Lesson{}
	}

	data, err := json.Marshal(lessons)
	if err != nil {
		return fmt.Errorf("failed to encode lesson collection: %w", err)
	}
	return s.kv.Write(repository.LessonsKey, string(data))
}

package database

import (
	"fmt"
	"log"
	"strings"
)

// defaultBlockedTerms is the built-in child-safety filter applied to visual
// search and AI generation prompts. Restricted prompts are swapped for a
// friendly fallback rather than rejected with an error.
var defaultBlockedTerms = []string{
	"gun", "weapon", "knife", "sword", "blood", "gore", "violence",
	"kill", "death", "war", "bomb", "scary", "fight", "monster", "18+",
}

// SeedSafetyBlocklist populates the safety_blocklist table with the built-in
// terms if it is empty.
func (db *DB) SeedSafetyBlocklist() error {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM safety_blocklist").Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check blocklist count: %w", err)
	}

	if count > 0 {
		log.Printf("Safety blocklist already populated with %d terms", count)
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	added := 0
	for _, term := range defaultBlockedTerms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if _, err := tx.Exec("INSERT INTO safety_blocklist (term) VALUES (?)", term); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert blocked term: %w", err)
		}
		added++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit blocklist seed: %w", err)
	}

	log.Printf("Seeded safety blocklist with %d terms", added)
	return nil
}

// BlockedTerms returns all blocklist terms, lowercased
func (db *DB) BlockedTerms() ([]string, error) {
	rows, err := db.Query("SELECT term FROM safety_blocklist")
	if err != nil {
		return nil, fmt.Errorf("failed to query blocklist: %w", err)
	}
	defer rows.Close()

	var terms []string
	for rows.Next() {
		var term string
		if err := rows.Scan(&term); err != nil {
			return nil, fmt.Errorf("failed to scan blocked term: %w", err)
		}
		terms = append(terms, strings.ToLower(term))
	}

	return terms, rows.Err()
}

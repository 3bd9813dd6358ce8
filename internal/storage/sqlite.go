package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"deeplx/internal/models"
)

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS translations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		translated TEXT NOT NULL,
		detected_lang TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_translations_created ON translations(created_at);
	CREATE INDEX IF NOT EXISTS idx_translations_target ON translations(target_lang);
	`
	_, err := s.db.Exec(query)
	return err
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// InsertTranslation records a resolved translate call.
func (s *SQLiteStorage) InsertTranslation(tr *models.Translation) error {
	query := `
	INSERT INTO translations (text, source_lang, target_lang, translated, detected_lang, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.Exec(query,
		tr.Text,
		tr.SourceLang,
		tr.TargetLang,
		tr.Translated,
		tr.DetectedLang,
		tr.CreatedAt,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	tr.ID = id
	return nil
}

// GetRecentTranslations returns the most recent history entries.
func (s *SQLiteStorage) GetRecentTranslations(limit int) ([]*models.Translation, error) {
	query := `
	SELECT id, text, source_lang, target_lang, translated, detected_lang, created_at
	FROM translations
	ORDER BY created_at DESC, id DESC
	LIMIT ?
	`
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var translations []*models.Translation
	for rows.Next() {
		var tr models.Translation
		err := rows.Scan(
			&tr.ID,
			&tr.Text,
			&tr.SourceLang,
			&tr.TargetLang,
			&tr.Translated,
			&tr.DetectedLang,
			&tr.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		translations = append(translations, &tr)
	}

	return translations, rows.Err()
}

// Stats holds history counts.
type Stats struct {
	Total       int `json:"total"`
	TargetLangs int `json:"target_langs"`
	Today       int `json:"today"`
}

// GetStats returns history statistics.
func (s *SQLiteStorage) GetStats() (*Stats, error) {
	var stats Stats
	if err := s.db.QueryRow("SELECT COUNT(*) FROM translations").Scan(&stats.Total); err != nil {
		return nil, err
	}
	if err := s.db.QueryRow("SELECT COUNT(DISTINCT target_lang) FROM translations").Scan(&stats.TargetLangs); err != nil {
		return nil, err
	}
	err := s.db.QueryRow("SELECT COUNT(*) FROM translations WHERE created_at >= DATE('now')").Scan(&stats.Today)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

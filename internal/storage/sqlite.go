package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/ghost-match/internal/games/ghostmatch/engine"
)

const settingsKey = "settings"

// SQLiteStore is a Store backed by the pure-Go modernc.org/sqlite driver.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// DefaultPath returns ~/.ghostmatch/scores.db.
func DefaultPath() string {
	return filepath.Join("~", ".ghostmatch", "scores.db")
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*SQLiteStore, error) {
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// One writer; the SSH server shares this handle across sessions.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *SQLiteStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			score INTEGER NOT NULL,
			moves INTEGER NOT NULL DEFAULT 0,
			longest_chain INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_game_id ON scores(game_id);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(game_id, score DESC);

		CREATE TABLE IF NOT EXISTS saved_games (
			game_id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			saved_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS player_stats (
			game_id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveScore records a finished game. Returns the ID of the inserted record.
func (s *SQLiteStore) SaveScore(e ScoreEntry) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO scores (game_id, score, moves, longest_chain) VALUES (?, ?, ?, ?)",
		e.GameID, e.Score, e.Moves, e.LongestChain,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save score: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// TopScores retrieves the top N scores for the given game, best first.
// Ties go to the earlier game.
func (s *SQLiteStore) TopScores(gameID string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, game_id, score, moves, longest_chain, created_at
		 FROM scores
		 WHERE game_id = ?
		 ORDER BY score DESC, id ASC
		 LIMIT ?`,
		gameID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.GameID, &e.Score, &e.Moves, &e.LongestChain, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTimestamp(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// HighScore returns the highest score for the given game, or 0.
func (s *SQLiteStore) HighScore(gameID string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM scores WHERE game_id = ?",
		gameID,
	).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}
	if !score.Valid {
		return 0, nil
	}
	return int(score.Int64), nil
}

// ClearScores deletes all scores for the given game.
func (s *SQLiteStore) ClearScores(gameID string) error {
	if _, err := s.db.Exec("DELETE FROM scores WHERE game_id = ?", gameID); err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

// GameStats retrieves aggregated leaderboard statistics for a game.
func (s *SQLiteStore) GameStats(gameID string) (GameStats, error) {
	stats := GameStats{GameID: gameID}
	var lastPlayed any

	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0), COALESCE(SUM(score), 0), MAX(created_at)
		 FROM scores WHERE game_id = ?`,
		gameID,
	).Scan(&stats.GamesCount, &stats.HighScore, &stats.AvgScore, &stats.TotalScore, &lastPlayed)
	if err != nil {
		return stats, fmt.Errorf("storage: cannot get game stats: %w", err)
	}
	stats.LastPlayed = parseTimestamp(lastPlayed)
	return stats, nil
}

// SaveGame stores g as the resumable game for gameID, replacing any previous one.
func (s *SQLiteStore) SaveGame(gameID string, g engine.SavedGame) error {
	data, err := jsoniter.MarshalToString(blobFromGame(g))
	if err != nil {
		return fmt.Errorf("storage: cannot encode saved game: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO saved_games (game_id, data, saved_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(game_id) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at`,
		gameID, data,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save game: %w", err)
	}
	return nil
}

// LoadGame returns the saved game for gameID, or ErrNoSavedGame.
func (s *SQLiteStore) LoadGame(gameID string) (engine.SavedGame, error) {
	var data string
	err := s.db.QueryRow("SELECT data FROM saved_games WHERE game_id = ?", gameID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.SavedGame{}, ErrNoSavedGame
	}
	if err != nil {
		return engine.SavedGame{}, fmt.Errorf("storage: cannot load game: %w", err)
	}

	var blob savedGameBlob
	if err := jsoniter.UnmarshalFromString(data, &blob); err != nil {
		return engine.SavedGame{}, fmt.Errorf("storage: cannot decode saved game: %w", err)
	}
	return blob.game()
}

// ClearGame deletes the saved game for gameID. Missing games are not an error.
func (s *SQLiteStore) ClearGame(gameID string) error {
	if _, err := s.db.Exec("DELETE FROM saved_games WHERE game_id = ?", gameID); err != nil {
		return fmt.Errorf("storage: cannot clear saved game: %w", err)
	}
	return nil
}

// SaveSettings stores user preferences.
func (s *SQLiteStore) SaveSettings(settings Settings) error {
	data, err := jsoniter.MarshalToString(settings)
	if err != nil {
		return fmt.Errorf("storage: cannot encode settings: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		settingsKey, data,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save settings: %w", err)
	}
	return nil
}

// LoadSettings returns stored preferences, or DefaultSettings if none were saved.
func (s *SQLiteStore) LoadSettings() (Settings, error) {
	var data string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", settingsKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return DefaultSettings(), fmt.Errorf("storage: cannot load settings: %w", err)
	}

	settings := DefaultSettings()
	if err := jsoniter.UnmarshalFromString(data, &settings); err != nil {
		return DefaultSettings(), fmt.Errorf("storage: cannot decode settings: %w", err)
	}
	return settings, nil
}

// SavePlayerStats replaces the cumulative stats for gameID.
func (s *SQLiteStore) SavePlayerStats(gameID string, stats PlayerStats) error {
	data, err := jsoniter.MarshalToString(stats)
	if err != nil {
		return fmt.Errorf("storage: cannot encode player stats: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO player_stats (game_id, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(game_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		gameID, data,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save player stats: %w", err)
	}
	return nil
}

// LoadPlayerStats returns the cumulative stats for gameID; zero if none.
func (s *SQLiteStore) LoadPlayerStats(gameID string) (PlayerStats, error) {
	var data string
	err := s.db.QueryRow("SELECT data FROM player_stats WHERE game_id = ?", gameID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return PlayerStats{}, nil
	}
	if err != nil {
		return PlayerStats{}, fmt.Errorf("storage: cannot load player stats: %w", err)
	}

	var stats PlayerStats
	if err := jsoniter.UnmarshalFromString(data, &stats); err != nil {
		return PlayerStats{}, fmt.Errorf("storage: cannot decode player stats: %w", err)
	}
	return stats, nil
}

// ClearAll deletes every score, saved game, setting and stat.
func (s *SQLiteStore) ClearAll() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin reset: %w", err)
	}
	for _, table := range []string{"scores", "saved_games", "settings", "player_stats"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			tx.Rollback()
			return fmt.Errorf("storage: cannot clear %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit reset: %w", err)
	}
	return nil
}

// parseTimestamp handles the driver returning either time.Time or text.
func parseTimestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// Package storage persists scores, saved games, settings and cumulative
// player statistics. SQLiteStore is the durable backend; MemoryStore is used
// when the database cannot be opened.
package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/ghost-match/internal/games/ghostmatch/engine"
)

// ErrNoSavedGame is returned by LoadGame when nothing is saved for a game.
var ErrNoSavedGame = errors.New("storage: no saved game")

// Store is the persistence contract used by the TUI and CLI.
type Store interface {
	SaveScore(e ScoreEntry) (int64, error)
	TopScores(gameID string, limit int) ([]ScoreEntry, error)
	HighScore(gameID string) (int, error)
	ClearScores(gameID string) error
	GameStats(gameID string) (GameStats, error)

	SaveGame(gameID string, g engine.SavedGame) error
	LoadGame(gameID string) (engine.SavedGame, error)
	ClearGame(gameID string) error

	SaveSettings(s Settings) error
	LoadSettings() (Settings, error)

	SavePlayerStats(gameID string, s PlayerStats) error
	LoadPlayerStats(gameID string) (PlayerStats, error)

	ClearAll() error
	Close() error
}

// ScoreEntry is a finished game on the leaderboard.
type ScoreEntry struct {
	ID           int64
	GameID       string
	Score        int
	Moves        int
	LongestChain int
	CreatedAt    time.Time
}

// GameStats aggregates the leaderboard for one game.
type GameStats struct {
	GameID     string
	GamesCount int
	HighScore  int
	AvgScore   float64
	TotalScore int64
	LastPlayed time.Time
}

// Settings are user preferences that outlive a session.
type Settings struct {
	AudioEnabled bool    `json:"audio_enabled"`
	Volume       float64 `json:"volume"`
	Difficulty   string  `json:"difficulty"`
}

// DefaultSettings returns the settings used before anything is saved.
func DefaultSettings() Settings {
	return Settings{AudioEnabled: true, Volume: 0.6, Difficulty: "normal"}
}

// PlayerStats are totals across every finished game of one variant.
type PlayerStats struct {
	GamesPlayed     int           `json:"games_played"`
	TotalScore      int64         `json:"total_score"`
	TotalMoves      int           `json:"total_moves"`
	TotalMatches    int           `json:"total_matches"`
	TotalChains     int           `json:"total_chains"`
	MaxChainLevel   int           `json:"max_chain_level"`
	ElementsCleared int           `json:"elements_cleared"`
	BestTurn        int           `json:"best_turn"`
	PlayTime        time.Duration `json:"play_time"`
}

// Add folds one finished game into the totals.
func (p PlayerStats) Add(other PlayerStats) PlayerStats {
	p.GamesPlayed += other.GamesPlayed
	p.TotalScore += other.TotalScore
	p.TotalMoves += other.TotalMoves
	p.TotalMatches += other.TotalMatches
	p.TotalChains += other.TotalChains
	p.MaxChainLevel = max(p.MaxChainLevel, other.MaxChainLevel)
	p.ElementsCleared += other.ElementsCleared
	p.BestTurn = max(p.BestTurn, other.BestTurn)
	p.PlayTime += other.PlayTime
	return p
}

// StatsFromGame converts one game's counters into a PlayerStats delta.
func StatsFromGame(status engine.Status, stats engine.ScoreStats) PlayerStats {
	return PlayerStats{
		GamesPlayed:     1,
		TotalScore:      int64(status.Score),
		TotalMoves:      status.Moves,
		TotalMatches:    stats.TotalMatches,
		TotalChains:     stats.TotalChains,
		MaxChainLevel:   stats.MaxChainLevel,
		ElementsCleared: stats.ElementsCleared,
		BestTurn:        stats.BestTurn,
		PlayTime:        status.Elapsed,
	}
}

// RecordGame stores the score of a finished game and folds it into the
// player's cumulative stats.
func RecordGame(s Store, gameID string, status engine.Status, stats engine.ScoreStats) (PlayerStats, error) {
	if _, err := s.SaveScore(ScoreEntry{
		GameID:       gameID,
		Score:        status.Score,
		Moves:        status.Moves,
		LongestChain: status.LongestChain,
	}); err != nil {
		return PlayerStats{}, err
	}

	total, err := s.LoadPlayerStats(gameID)
	if err != nil {
		return PlayerStats{}, err
	}
	total = total.Add(StatsFromGame(status, stats))
	if err := s.SavePlayerStats(gameID, total); err != nil {
		return PlayerStats{}, err
	}
	return total, nil
}

// OpenOrMemory opens the SQLite database at path, falling back to an
// in-memory store when that fails.
func OpenOrMemory(path string, logger *log.Logger) Store {
	store, err := Open(path)
	if err == nil {
		return store
	}
	if logger != nil {
		logger.Warn("scores will not be saved", "path", path, "err", err)
	}
	return NewMemoryStore()
}

// savedGameBlob is the serialized form of a saved game.
type savedGameBlob struct {
	Version   int           `json:"version"`
	Size      int           `json:"size"`
	Symbols   int           `json:"symbols"`
	Rows      [][]int       `json:"rows"`
	Score     int           `json:"score"`
	HighScore int           `json:"high_score"`
	Moves     int           `json:"moves"`
	Elapsed   time.Duration `json:"elapsed"`
	SavedAt   time.Time     `json:"saved_at"`
}

func blobFromGame(g engine.SavedGame) savedGameBlob {
	rows := make([][]int, len(g.Board))
	for r, row := range g.Board {
		rows[r] = make([]int, len(row))
		for c, sym := range row {
			rows[r][c] = int(sym)
		}
	}
	return savedGameBlob{
		Version:   g.Version,
		Size:      g.Size,
		Symbols:   g.Symbols,
		Rows:      rows,
		Score:     g.Score,
		HighScore: g.HighScore,
		Moves:     g.Moves,
		Elapsed:   g.Elapsed,
		SavedAt:   g.SavedAt,
	}
}

func (b savedGameBlob) game() (engine.SavedGame, error) {
	if b.Version != engine.SaveVersion {
		return engine.SavedGame{}, fmt.Errorf("storage: unsupported save version %d", b.Version)
	}
	board := make(engine.Board, len(b.Rows))
	for r, row := range b.Rows {
		board[r] = make([]engine.Symbol, len(row))
		for c, v := range row {
			if v < 0 || v > engine.MaxSymbols {
				return engine.SavedGame{}, fmt.Errorf("storage: corrupt saved board at (%d,%d)", r, c)
			}
			board[r][c] = engine.Symbol(v)
		}
	}
	return engine.SavedGame{
		Version:   b.Version,
		Size:      b.Size,
		Symbols:   b.Symbols,
		Board:     board,
		Score:     b.Score,
		HighScore: b.HighScore,
		Moves:     b.Moves,
		Elapsed:   b.Elapsed,
		SavedAt:   b.SavedAt,
	}, nil
}

package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/vovakirdan/ghost-match/internal/games/ghostmatch/engine"
)

// MemoryStore is a Store that keeps everything in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	nextID   int64
	scores   []ScoreEntry
	games    map[string]savedGameBlob
	settings *Settings
	stats    map[string]PlayerStats
	now      func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games: make(map[string]savedGameBlob),
		stats: make(map[string]PlayerStats),
		now:   time.Now,
	}
}

func (m *MemoryStore) SaveScore(e ScoreEntry) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	e.ID = m.nextID
	e.CreatedAt = m.now()
	m.scores = append(m.scores, e)
	return e.ID, nil
}

func (m *MemoryStore) TopScores(gameID string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []ScoreEntry
	for _, e := range m.scores {
		if e.GameID == gameID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) HighScore(gameID string) (int, error) {
	top, _ := m.TopScores(gameID, 1)
	if len(top) == 0 {
		return 0, nil
	}
	return top[0].Score, nil
}

func (m *MemoryStore) ClearScores(gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.scores[:0]
	for _, e := range m.scores {
		if e.GameID != gameID {
			kept = append(kept, e)
		}
	}
	m.scores = kept
	return nil
}

func (m *MemoryStore) GameStats(gameID string) (GameStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := GameStats{GameID: gameID}
	for _, e := range m.scores {
		if e.GameID != gameID {
			continue
		}
		stats.GamesCount++
		stats.TotalScore += int64(e.Score)
		stats.HighScore = max(stats.HighScore, e.Score)
		if e.CreatedAt.After(stats.LastPlayed) {
			stats.LastPlayed = e.CreatedAt
		}
	}
	if stats.GamesCount > 0 {
		stats.AvgScore = float64(stats.TotalScore) / float64(stats.GamesCount)
	}
	return stats, nil
}

func (m *MemoryStore) SaveGame(gameID string, g engine.SavedGame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[gameID] = blobFromGame(g)
	return nil
}

func (m *MemoryStore) LoadGame(gameID string) (engine.SavedGame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.games[gameID]
	if !ok {
		return engine.SavedGame{}, ErrNoSavedGame
	}
	return blob.game()
}

func (m *MemoryStore) ClearGame(gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, gameID)
	return nil
}

func (m *MemoryStore) SaveSettings(s Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = &s
	return nil
}

func (m *MemoryStore) LoadSettings() (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		return DefaultSettings(), nil
	}
	return *m.settings, nil
}

func (m *MemoryStore) SavePlayerStats(gameID string, s PlayerStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[gameID] = s
	return nil
}

func (m *MemoryStore) LoadPlayerStats(gameID string) (PlayerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats[gameID], nil
}

func (m *MemoryStore) ClearAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = nil
	m.games = make(map[string]savedGameBlob)
	m.settings = nil
	m.stats = make(map[string]PlayerStats)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/ghost-match/internal/games/ghostmatch/engine"
)

// BoardFixture is a hand-written starting board.
//
// Rows use one character per cell: letters A-I or digits 1-9 for symbols,
// '.' for an empty cell.
//
//	id: corner-l
//	name: Corner L
//	symbols: 6
//	rows:
//	  - AABCDE
//	  - ...
type BoardFixture struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Symbols  int      `yaml:"symbols"`
	Rows     []string `yaml:"rows"`
	FilePath string   `yaml:"-"`
}

// ParseBoardFixture decodes and validates a fixture document.
func ParseBoardFixture(data []byte) (BoardFixture, error) {
	var f BoardFixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parsing fixture: %w", err)
	}
	if f.ID == "" {
		return f, errors.New("fixture id is required")
	}
	if f.Symbols == 0 {
		f.Symbols = engine.DefaultSymbols
	}
	if _, err := f.Board(); err != nil {
		return f, fmt.Errorf("fixture %s: %w", f.ID, err)
	}
	return f, nil
}

// LoadBoardFixture loads a single fixture file.
func LoadBoardFixture(path string) (BoardFixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return BoardFixture{}, fmt.Errorf("reading file %s: %w", path, err)
	}
	f, err := ParseBoardFixture(data)
	if err != nil {
		return BoardFixture{}, fmt.Errorf("%s: %w", path, err)
	}
	f.FilePath = path
	return f, nil
}

// LoadBoardFixtures recursively loads every .yaml/.yml fixture under dir.
// Invalid files are skipped. Results are sorted by ID.
func LoadBoardFixtures(dir string) ([]BoardFixture, error) {
	var fixtures []BoardFixture

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		f, err := LoadBoardFixture(path)
		if err != nil {
			return nil
		}
		fixtures = append(fixtures, f)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", dir, err)
	}

	sort.Slice(fixtures, func(i, j int) bool {
		return fixtures[i].ID < fixtures[j].ID
	})
	return fixtures, nil
}

// Size returns the board dimension.
func (f BoardFixture) Size() int {
	return len(f.Rows)
}

// Board converts the rows into an engine board.
func (f BoardFixture) Board() (engine.Board, error) {
	n := len(f.Rows)
	if n < 3 {
		return nil, fmt.Errorf("board must have at least 3 rows, got %d", n)
	}
	if f.Symbols < 3 || f.Symbols > engine.MaxSymbols {
		return nil, fmt.Errorf("symbols must be between 3 and %d, got %d", engine.MaxSymbols, f.Symbols)
	}

	b := make(engine.Board, n)
	for r, row := range f.Rows {
		if len(row) != n {
			return nil, fmt.Errorf("row %d has %d cells, want %d", r, len(row), n)
		}
		b[r] = make([]engine.Symbol, n)
		for c := 0; c < n; c++ {
			sym, err := parseCell(row[c])
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", r, c, err)
			}
			if int(sym) > f.Symbols {
				return nil, fmt.Errorf("row %d col %d: symbol %c exceeds %d symbols", r, c, row[c], f.Symbols)
			}
			b[r][c] = sym
		}
	}
	return b, nil
}

// SavedGame returns the fixture as a game to restore at score zero.
func (f BoardFixture) SavedGame() (*engine.SavedGame, error) {
	board, err := f.Board()
	if err != nil {
		return nil, err
	}
	return &engine.SavedGame{
		Version: engine.SaveVersion,
		Size:    f.Size(),
		Symbols: f.Symbols,
		Board:   board,
	}, nil
}

func parseCell(ch byte) (engine.Symbol, error) {
	switch {
	case ch == '.':
		return engine.Empty, nil
	case ch >= 'A' && ch <= 'I':
		return engine.Symbol(ch-'A') + 1, nil
	case ch >= 'a' && ch <= 'i':
		return engine.Symbol(ch-'a') + 1, nil
	case ch >= '1' && ch <= '9':
		return engine.Symbol(ch - '0'), nil
	default:
		return engine.Empty, fmt.Errorf("invalid cell %q", ch)
	}
}

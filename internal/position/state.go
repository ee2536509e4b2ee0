package position

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"TradeSentinel/internal/model"
)

// LoadState reads the book from a JSON file. Returns an empty book if the file doesn't exist.
func LoadState(filePath string) (*model.BookState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.BookState{Positions: map[string]*model.Position{}}, nil
		}
		return nil, err
	}
	var state model.BookState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state.Positions == nil {
		state.Positions = map[string]*model.Position{}
	}
	return &state, nil
}

// SaveState writes the book to a JSON file, replacing it atomically.
func SaveState(filePath string, state *model.BookState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}

package app

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	_ "embed"

	"auxwheel/internal/domain"
)

//go:embed music.json
var defaultCatalog []byte

// Catalog holds the music library the song sets are drawn from
type Catalog struct {
	songs []domain.Song
}

type catalogFile struct {
	Songs []domain.Song `json:"songs"`
}

// LoadCatalog reads a catalog from the given JSON file, falling back to the
// embedded library when path is empty
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		data = b
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	if len(file.Songs) < domain.SongSetSize {
		return nil, fmt.Errorf("catalog needs at least %d songs, got %d", domain.SongSetSize, len(file.Songs))
	}

	return &Catalog{songs: file.Songs}, nil
}

// Size returns the number of songs in the catalog
func (c *Catalog) Size() int {
	return len(c.songs)
}

// Draw returns a fresh random song set
func (c *Catalog) Draw(rng *rand.Rand) []domain.Song {
	shuffled := make([]domain.Song, len(c.songs))
	copy(shuffled, c.songs)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:domain.SongSetSize]
}

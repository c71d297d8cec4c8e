package app

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auxwheel/internal/domain"
)

func TestLoadCatalog_Embedded(t *testing.T) {
	catalog, err := LoadCatalog("")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, catalog.Size(), domain.SongSetSize)
}

func TestLoadCatalog_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "music.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"songs":[
		{"id":"1","title":"One","artist":"A","audio":"/1.mp3"},
		{"id":"2","title":"Two","artist":"B","audio":"/2.mp3"},
		{"id":"3","title":"Three","artist":"C","audio":"/3.mp3"},
		{"id":"4","title":"Four","artist":"D","audio":"/4.mp3"},
		{"id":"5","title":"Five","artist":"E","audio":"/5.mp3"}
	]}`), 0o600))

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, 5, catalog.Size())
}

func TestLoadCatalog_TooSmall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "music.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"songs":[{"id":"1","title":"One","artist":"A","audio":"/1.mp3"}]}`), 0o600))

	_, err := LoadCatalog(path)
	assert.Error(t, err)
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestCatalog_Draw(t *testing.T) {
	catalog, err := LoadCatalog("")
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	set := catalog.Draw(rng)
	require.Len(t, set, domain.SongSetSize)

	seen := make(map[string]bool)
	for _, song := range set {
		assert.False(t, seen[song.ID], "song %s drawn twice", song.ID)
		seen[song.ID] = true
	}
}

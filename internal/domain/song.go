package domain

// Song is a catalog entry. The core treats everything beyond the ID as
// opaque and echoes it back verbatim in broadcasts.
type Song struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Audio  string `json:"audio"`
	Cover  string `json:"cover,omitempty"`
}

// SongSetSize is the fixed number of songs drawn per set
const SongSetSize = 5

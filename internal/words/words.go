// Package words provides the vocabulary source for board generation. The
// word list is opaque to the game rules; difficulty tagging and content
// curation happen upstream in the list files.
package words

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sync"
)

var (
	loaded   []string
	loadOnce sync.Once
	loadErr  error
)

// Load reads a JSON word list (an array of strings) from the given path.
func Load(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read word list: %w", err)
			return
		}

		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal word list: %w", err)
			return
		}
		loaded = list
	})
	return loadErr
}

// All returns the active word list: the loaded file if present, otherwise
// the built-in fallback list.
func All() []string {
	if len(loaded) > 0 {
		return loaded
	}
	return builtin
}

// Draw returns n distinct words sampled from the active list.
func Draw(rng *rand.Rand, n int) ([]string, error) {
	pool := All()
	if n > len(pool) {
		return nil, fmt.Errorf("word list has %d words, need %d", len(pool), n)
	}

	shuffled := make([]string, len(pool))
	copy(shuffled, pool)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled[:n], nil
}

// builtin is the fallback vocabulary used when no word list file is mounted.
var builtin = []string{
	"Hund", "Katze", "Tier", "Baum", "Wald", "Fluss", "Berg", "Stern",
	"Mond", "Sonne", "Wasser", "Feuer", "Erde", "Luft", "Haus", "Garten",
	"Brücke", "Straße", "Schule", "Buch", "Brief", "Zeitung", "Musik",
	"Licht", "Schatten", "Traum", "Nacht", "Morgen", "Winter", "Sommer",
	"Regen", "Schnee", "Wind", "Wolke", "Blume", "Wiese", "Vogel", "Fisch",
	"Pferd", "Schiff", "Zug", "Flugzeug", "Stadt", "Dorf", "Insel", "Meer",
	"Küche", "Fenster", "Spiegel", "Schlüssel", "Uhr", "Glas", "Tisch",
	"Stuhl", "Lampe", "Karte", "Zahl", "Wort", "Sprache", "Spiel",
}

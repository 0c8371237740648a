package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/samber/lo"

	"framecheck/internal/models"
)

// ErrGameNotFound is returned when a catalog lookup misses
var ErrGameNotFound = errors.New("game not found in catalog")

// GameCatalog resolves games by name
type GameCatalog interface {
	Game(name string) (models.CatalogGame, bool)
	Games() []models.CatalogGame
}

type catalogFile struct {
	Games []models.CatalogGame `json:"games"`
}

// Catalog is an immutable in-memory game catalog keyed by lower-cased name
type Catalog struct {
	games  []models.CatalogGame
	byName map[string]models.CatalogGame
}

// LoadCatalog reads a catalog JSON file. Entries without a name or without
// a complete fps profile for every resolution are skipped with a warning.
func LoadCatalog(path string) (*Catalog, error) {
	log.Printf("[CATALOG] Loading games from %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	catalog := NewCatalog(file.Games)
	log.Printf("[CATALOG] Loaded %d of %d games", len(catalog.games), len(file.Games))
	return catalog, nil
}

// NewCatalog builds a catalog from entries, dropping invalid ones. A later
// entry with the same name replaces an earlier one.
func NewCatalog(entries []models.CatalogGame) *Catalog {
	valid := lo.Filter(entries, func(g models.CatalogGame, _ int) bool {
		if strings.TrimSpace(g.Name) == "" {
			log.Printf("[CATALOG] Skipping unnamed entry")
			return false
		}
		for _, res := range models.Resolutions {
			if !g.FpsProfiles[res].Complete() {
				log.Printf("[CATALOG] Skipping %q: incomplete %s fps profile", g.Name, res)
				return false
			}
		}
		return true
	})

	byName := make(map[string]models.CatalogGame, len(valid))
	lo.ForEach(valid, func(g models.CatalogGame, _ int) {
		byName[catalogKey(g.Name)] = g
	})

	games := lo.Values(byName)
	sort.Slice(games, func(i, j int) bool {
		return strings.ToLower(games[i].Name) < strings.ToLower(games[j].Name)
	})
	return &Catalog{games: games, byName: byName}
}

func catalogKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Game looks a game up by name, ignoring case
func (c *Catalog) Game(name string) (models.CatalogGame, bool) {
	g, ok := c.byName[catalogKey(name)]
	return g, ok
}

// Games returns every game sorted by name
func (c *Catalog) Games() []models.CatalogGame {
	return append([]models.CatalogGame(nil), c.games...)
}

// Len returns the number of games
func (c *Catalog) Len() int {
	return len(c.games)
}

// ResolveRequirements maps game names to scoring requirements. Unknown
// names are reported together in one error.
func ResolveRequirements(catalog GameCatalog, names []string) ([]models.GameRequirement, error) {
	var missing []string
	reqs := make([]models.GameRequirement, 0, len(names))
	for _, name := range names {
		g, ok := catalog.Game(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		reqs = append(reqs, g.Requirement())
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, strings.Join(missing, ", "))
	}
	return reqs, nil
}

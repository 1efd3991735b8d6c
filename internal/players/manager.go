package players

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Andromalius22/Nexora/internal/game"
	"github.com/Andromalius22/Nexora/internal/locker"
	"github.com/Andromalius22/Nexora/internal/model"
	"github.com/Andromalius22/Nexora/pkg/logger"
	"github.com/google/uuid"
)

// Manager :
// The persistent store of players. Metadata lives in a single
// `players.json` file mapping player id to its entry; each
// player's galaxy is written to its own JSON file under the
// `galaxies` subdirectory of the save directory.
// Per-player mutation locks come from a shared lock pool: the
// dispatcher and the tick loops call `WithLock` around every
// mutation of a player's galaxy.
//
// The `lock` guards the `players` map itself; the per-player
// locks guard the state referenced by the map entries.
type Manager struct {
	saveDir string
	reg     *model.Registry
	params  game.GenerationParams
	locks   *locker.ConcurrentLocker
	log     logger.Logger
	rng     *rand.Rand

	lock    sync.RWMutex
	players map[string]*Player
}

// ErrUnknownPlayer : Indicates that no player matches the
// requested identifier.
var ErrUnknownPlayer = fmt.Errorf("unknown player")

// NewManager :
// Builds a player manager rooted at the provided save
// directory and loads every persisted player. For each loaded
// entry the galaxy file is read and attached; a missing file
// triggers regeneration and an immediate write.
//
// The `saveDir` defines the root of the persisted state.
//
// The `reg` defines the content registry.
//
// The `params` define the galaxy generation knobs.
//
// The `locks` defines the shared per-player lock pool.
//
// The `log` defines a way to notify from the manager.
//
// Returns the built-in manager along with any error.
func NewManager(saveDir string, reg *model.Registry, params game.GenerationParams, locks *locker.ConcurrentLocker, log logger.Logger) (*Manager, error) {
	m := &Manager{
		saveDir: saveDir,
		reg:     reg,
		params:  params,
		locks:   locks,
		log:     log,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		players: make(map[string]*Player),
	}

	if err := m.load(); err != nil {
		return nil, err
	}

	return m, nil
}

// metadataPath : Location of the players metadata file.
func (m *Manager) metadataPath() string {
	return filepath.Join(m.saveDir, "players.json")
}

// galaxyPath : Location of a player's galaxy file.
func (m *Manager) galaxyPath(playerID string) string {
	return filepath.Join(m.saveDir, "galaxies", playerID+".json")
}

// load :
// Reads the metadata file and attaches each player's galaxy.
// An absent metadata file means a fresh start and is not an
// error.
func (m *Manager) load() error {
	data, err := os.ReadFile(m.metadataPath())
	if err != nil {
		if os.IsNotExist(err) {
			m.log.Trace(logger.Info, "players", "No player data found, starting fresh")
			return nil
		}
		return fmt.Errorf("cannot read players file (err: %v)", err)
	}

	var entries map[string]*Player
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("cannot parse players file (err: %v)", err)
	}

	for id, p := range entries {
		galaxy, err := game.GalaxyFromFile(p.GalaxyPath)
		if err != nil {
			m.log.Trace(logger.Warning, "players", fmt.Sprintf("No galaxy found for \"%s\", generating a new one (err: %v)", p.Name, err))

			galaxy = game.GenerateForPlayer(p.ID, m.params, m.reg, m.rng)
			p.GalaxyPath = m.galaxyPath(p.ID)
			if err := galaxy.SaveToFile(p.GalaxyPath); err != nil {
				m.log.Trace(logger.Error, "players", fmt.Sprintf("Failed to save galaxy for \"%s\" (err: %v)", p.Name, err))
			}
		}

		p.Galaxy = galaxy
		m.players[id] = p
	}

	m.log.Trace(logger.Info, "players", fmt.Sprintf("Loaded %d player(s) from disk", len(m.players)))

	return nil
}

// Resolve :
// Fetches the player matching the provided token, creating a
// fresh player when the token is empty or unknown. Creation
// generates a galaxy, assigns the home system from the
// starting hex and persists both the galaxy and the metadata.
//
// The `token` defines the optional reconnection credential.
//
// The `name` defines the display name for a new player.
//
// Returns the resolved player along with any error.
func (m *Manager) Resolve(token string, name string) (*Player, error) {
	if len(token) > 0 {
		// The last-seen stamp is written here, so the scan takes
		// the write lock.
		m.lock.Lock()
		for _, p := range m.players {
			if p.Token == token {
				p.LastSeen = time.Now().Unix()
				m.lock.Unlock()

				m.log.Trace(logger.Info, "players", fmt.Sprintf("Reconnected player \"%s\" (%s)", p.Name, p.ID))
				return p, nil
			}
		}
		m.lock.Unlock()
	}

	m.lock.Lock()
	if len(name) == 0 {
		name = fmt.Sprintf("Player_%d", len(m.players)+1)
	}

	p := &Player{
		ID:       uuid.New().String(),
		Name:     name,
		Token:    uuid.New().String(),
		LastSeen: time.Now().Unix(),
	}

	p.Galaxy = game.GenerateForPlayer(p.ID, m.params, m.reg, m.rng)
	if sys := p.Galaxy.StartingSystem(); sys != nil {
		p.HomeSystemID = sys.ID
	}
	p.GalaxyPath = m.galaxyPath(p.ID)

	m.players[p.ID] = p
	m.lock.Unlock()

	// The tick loops can see the player as soon as the map entry
	// exists, so even this first write goes through the lock.
	var saveErr error
	m.WithLock(p.ID, func() {
		saveErr = p.Galaxy.SaveToFile(p.GalaxyPath)
	})
	if saveErr != nil {
		return nil, fmt.Errorf("cannot persist galaxy for new player (err: %v)", saveErr)
	}
	if err := m.SaveAll(); err != nil {
		return nil, err
	}

	m.log.Trace(logger.Info, "players", fmt.Sprintf("Created player \"%s\" (%s)", p.Name, p.ID))

	return p, nil
}

// Get :
// Fetches a player by identifier.
//
// Returns the player along with any error.
func (m *Manager) Get(id string) (*Player, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	p, ok := m.players[id]
	if !ok {
		return nil, fmt.Errorf("%w: \"%s\"", ErrUnknownPlayer, id)
	}

	return p, nil
}

// All :
// Collects every loaded player.
func (m *Manager) All() []*Player {
	m.lock.RLock()
	defer m.lock.RUnlock()

	all := make([]*Player, 0, len(m.players))
	for _, p := range m.players {
		all = append(all, p)
	}

	return all
}

// SaveAll :
// Writes the metadata file and each loaded galaxy to its own
// file. Galaxies are never embedded in the metadata file.
// Each galaxy is snapshotted under its player's mutation lock
// so that the save pass never observes a half-applied change
// from the dispatcher or a tick loop; the files themselves are
// written with no lock held.
//
// Returns any error.
func (m *Manager) SaveAll() error {
	type pending struct {
		path string
		snap *game.GalaxySnapshot
	}

	m.lock.Lock()
	ids := make([]string, 0, len(m.players))
	for id, p := range m.players {
		if len(p.GalaxyPath) == 0 {
			p.GalaxyPath = m.galaxyPath(id)
		}
		ids = append(ids, id)
	}
	m.lock.Unlock()

	snaps := make([]pending, 0, len(ids))
	for _, id := range ids {
		m.lock.RLock()
		p, ok := m.players[id]
		m.lock.RUnlock()
		if !ok || p.Galaxy == nil {
			continue
		}

		var snap *game.GalaxySnapshot
		m.WithLock(id, func() {
			snap = p.Galaxy.ToSnapshot()
		})
		snaps = append(snaps, pending{path: p.GalaxyPath, snap: snap})
	}

	for _, s := range snaps {
		if err := s.snap.SaveToFile(s.path); err != nil {
			m.log.Trace(logger.Error, "players", fmt.Sprintf("Failed to save galaxy at %s (err: %v)", s.path, err))
		}
	}

	if err := os.MkdirAll(m.saveDir, 0o755); err != nil {
		return fmt.Errorf("cannot create save directory (err: %v)", err)
	}

	m.lock.RLock()
	data, err := json.MarshalIndent(m.players, "", "  ")
	m.lock.RUnlock()
	if err != nil {
		return fmt.Errorf("cannot serialize players (err: %v)", err)
	}
	if err := os.WriteFile(m.metadataPath(), data, 0o644); err != nil {
		return fmt.Errorf("cannot write players file (err: %v)", err)
	}

	return nil
}

// WithLock :
// Runs the provided function while holding the mutation lock
// of a player. Every mutation of a player's galaxy from the
// dispatcher or a tick loop goes through here.
//
// The `playerID` defines the player to guard.
//
// The `fn` defines the mutation to run.
func (m *Manager) WithLock(playerID string, fn func()) {
	l := m.locks.Acquire(playerID)
	defer m.locks.Release(l)

	l.Lock()
	defer l.Release()

	fn()
}

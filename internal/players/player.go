package players

import (
	"github.com/Andromalius22/Nexora/internal/game"
)

// Player :
// One registered player of the server. The token is the
// long-lived reconnection credential and must survive
// restarts; the galaxy lives in its own file referenced by
// `GalaxyPath` and is never embedded in the metadata file.
//
// The `HomeSystemID` references the star system of the
// starting hex of the player's galaxy.
//
// The `Patents` holds the production bonuses owned by the
// player, applied by the production step.
type Player struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Token        string `json:"token"`
	HomeSystemID string `json:"home_system_id"`
	LastSeen     int64  `json:"last_seen"`
	GalaxyPath   string `json:"galaxy_path"`

	Galaxy  *game.Galaxy   `json:"-"`
	Patents []*game.Patent `json:"-"`
}

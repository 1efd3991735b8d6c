package session

import (
	"fmt"

	"github.com/Andromalius22/Nexora/internal/game"
	"github.com/Andromalius22/Nexora/internal/players"
	"github.com/Andromalius22/Nexora/pkg/logger"
)

// planetAction :
// One decoded `planet_action` command. MessagePack decodes
// numbers into a variety of integer widths so the fields are
// coerced while parsing.
type planetAction struct {
	Action         string
	PlanetGlobalID int64
	PlanetID       int
	Data           string
	Resource       string
	PlayerID       string
}

// actionHandler :
// Mutates the planet according to one action. Handlers run
// while the player's mutation lock is held. A non-nil error
// drops the command without an ack.
type actionHandler func(s *Server, player *players.Player, planet *game.Planet, cmd planetAction) error

// actionHandlers : The enumerated set of recognized actions.
var actionHandlers = map[string]actionHandler{
	"set_mode":           handleSetMode,
	"apply_resource":     handleApplyResource,
	"toggle_slot":        handleToggleSlot,
	"add_slot":           handleAddSlot,
	"remove_slot":        handleRemoveSlot,
	"build_defense_unit": handleBuildDefenseUnit,
}

// asString : Coerces a decoded payload value to a string.
func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// asInt64 : Coerces a decoded payload number to an int64.
func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int16:
		return int64(n)
	case int8:
		return int64(n)
	case int:
		return int64(n)
	case uint64:
		return int64(n)
	case uint32:
		return int64(n)
	case uint16:
		return int64(n)
	case uint8:
		return int64(n)
	case uint:
		return int64(n)
	case float64:
		return int64(n)
	case float32:
		return int64(n)
	}
	return 0
}

// dispatch :
// Routes one inbound packet. Unknown message types and
// unknown actions are logged and ignored; validation failures
// drop the command without an ack but keep the connection.
func (s *Server) dispatch(client *Client, packet map[string]interface{}) {
	msgType := asString(packet["type"])
	if msgType != "planet_action" {
		s.log.Trace(logger.Warning, "dispatcher", fmt.Sprintf("Ignoring unknown message type \"%s\"", msgType))
		return
	}

	cmd := planetAction{
		Action:         asString(packet["action"]),
		PlanetGlobalID: asInt64(packet["planet_global_id"]),
		PlanetID:       int(asInt64(packet["planet_id"])),
		Data:           asString(packet["data"]),
		Resource:       asString(packet["resource"]),
		PlayerID:       asString(packet["player_id"]),
	}

	handler, ok := actionHandlers[cmd.Action]
	if !ok {
		s.log.Trace(logger.Warning, "dispatcher", fmt.Sprintf("Ignoring unknown action \"%s\"", cmd.Action))
		return
	}

	player, err := s.manager.Get(cmd.PlayerID)
	if err != nil {
		s.log.Trace(logger.Warning, "dispatcher", fmt.Sprintf("Dropping \"%s\": %v", cmd.Action, err))
		return
	}

	var snapshot *game.PlanetSnapshot

	s.manager.WithLock(player.ID, func() {
		planet := player.Galaxy.PlanetByGlobalID(cmd.PlanetGlobalID)
		if planet == nil {
			s.log.Trace(logger.Warning, "dispatcher", fmt.Sprintf("Dropping \"%s\": unknown planet %d for player \"%s\"", cmd.Action, cmd.PlanetGlobalID, player.Name))
			return
		}

		if err := handler(s, player, planet, cmd); err != nil {
			s.log.Trace(logger.Warning, "dispatcher", fmt.Sprintf("Dropping \"%s\" on planet %d: %v", cmd.Action, cmd.PlanetGlobalID, err))
			return
		}

		snapshot = planet.ToSnapshot()
	})

	if snapshot == nil {
		return
	}

	ack := map[string]interface{}{
		"type":             "planet_update",
		"planet_id":        cmd.PlanetID,
		"planet_global_id": cmd.PlanetGlobalID,
		"action":           cmd.Action,
		"new_state":        snapshot,
	}
	if err := client.Send(ack); err != nil {
		s.log.Trace(logger.Warning, "dispatcher", fmt.Sprintf("Failed to ack \"%s\" (err: %v)", cmd.Action, err))
	}
}

// handleSetMode : `planet.mode` becomes the provided value,
// which must be `mine` or `refine`.
func handleSetMode(s *Server, player *players.Player, planet *game.Planet, cmd planetAction) error {
	if cmd.Data != game.ModeMine && cmd.Data != game.ModeRefine {
		return fmt.Errorf("invalid mode \"%s\"", cmd.Data)
	}

	planet.Mode = cmd.Data

	return nil
}

// handleApplyResource : Selects the resource the planet works
// on; the value must be a known resource id.
func handleApplyResource(s *Server, player *players.Player, planet *game.Planet, cmd planetAction) error {
	if _, ok := s.reg.Resources[cmd.Data]; !ok {
		return fmt.Errorf("unknown resource \"%s\"", cmd.Data)
	}

	planet.CurrentResource = cmd.Data

	return nil
}

// handleToggleSlot : Flips the active flag of one slot and
// invalidates the matching production cache.
func handleToggleSlot(s *Server, player *players.Player, planet *game.Planet, cmd planetAction) error {
	var index int
	if _, err := fmt.Sscanf(cmd.Data, "%d", &index); err != nil {
		return fmt.Errorf("invalid slot index \"%s\"", cmd.Data)
	}
	if index < 0 || index >= len(planet.Slots) {
		return fmt.Errorf("slot index %d out of range", index)
	}

	slot := planet.Slots[index]
	slot.ToggleActive()
	planet.OnSlotsChanged(slot.Type)

	return nil
}

// handleAddSlot : Queues the construction of a building whose
// slot type matches the requested one.
func handleAddSlot(s *Server, player *players.Player, planet *game.Planet, cmd planetAction) error {
	itemID := cmd.Data

	// The client may send a slot type rather than a building
	// id; resolve the first catalog building of that type.
	if _, ok := s.reg.Buildings[itemID]; !ok {
		for id, b := range s.reg.Buildings {
			if b.SlotType == cmd.Data {
				itemID = id
				break
			}
		}
	}

	if _, err := planet.StartBuild(s.reg, itemID); err != nil {
		return err
	}

	return nil
}

// handleRemoveSlot : Frees one slot of the requested type.
func handleRemoveSlot(s *Server, player *players.Player, planet *game.Planet, cmd planetAction) error {
	if _, ok := planet.RemoveBuildingFromSlot(cmd.Data); !ok {
		return fmt.Errorf("no \"%s\" slot to free", cmd.Data)
	}

	return nil
}

// handleBuildDefenseUnit : Queues the construction of one
// defense unit.
func handleBuildDefenseUnit(s *Server, player *players.Player, planet *game.Planet, cmd planetAction) error {
	if _, ok := s.reg.DefenseUnits[cmd.Data]; !ok {
		return fmt.Errorf("%w: \"%s\"", game.ErrUnknownItem, cmd.Data)
	}

	if _, err := planet.StartBuild(s.reg, cmd.Data); err != nil {
		return err
	}

	return nil
}

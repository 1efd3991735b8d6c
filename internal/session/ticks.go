package session

import (
	"fmt"

	"github.com/Andromalius22/Nexora/internal/game"
	"github.com/Andromalius22/Nexora/pkg/background"
	"github.com/Andromalius22/Nexora/pkg/logger"
)

// tickScheduler :
// The three periodic loops of the server: build progression,
// production and persistence. Each runs as an independent
// background process; iterations take the mutation lock of
// each player they touch and push updates to the owning
// client only.
type tickScheduler struct {
	server *Server

	build      *background.Process
	production *background.Process
	save       *background.Process
}

// newTickScheduler :
// Wires the three processes with the configured periods.
func newTickScheduler(s *Server) *tickScheduler {
	t := &tickScheduler{server: s}

	t.build = background.NewProcess(s.config.BuildTick, s.log).
		WithModule("build_tick").
		WithOperation(t.buildTick)

	t.production = background.NewProcess(s.config.ProductionTick, s.log).
		WithModule("production_tick").
		WithOperation(t.productionTick)

	t.save = background.NewProcess(s.config.SaveTick, s.log).
		WithModule("save_tick").
		WithOperation(t.saveTick)

	return t
}

// start : Starts the three loops.
func (t *tickScheduler) start() error {
	if err := t.build.Start(); err != nil {
		return err
	}
	if err := t.production.Start(); err != nil {
		return err
	}
	return t.save.Start()
}

// stop : Stops the three loops, letting in-flight iterations
// finish.
func (t *tickScheduler) stop() {
	t.build.Stop()
	t.production.Stop()
	t.save.Stop()
}

// buildTick :
// Advances the head build order of every colonized planet by
// the build period. Completed orders trigger a `planet_update`
// push to the owning client.
func (t *tickScheduler) buildTick() error {
	s := t.server
	delta := s.config.BuildTick.Seconds()

	for _, player := range s.manager.All() {
		type completion struct {
			planetID int
			globalID int64
			snapshot *game.PlanetSnapshot
		}
		completed := make([]completion, 0)

		s.manager.WithLock(player.ID, func() {
			for _, planet := range player.Galaxy.ColonizedPlanets() {
				if order := planet.AdvanceBuild(s.reg, delta); order != nil {
					s.log.Trace(logger.Info, "build_tick", fmt.Sprintf("Completed \"%s\" on %s", order.ItemName, planet.Name))
					completed = append(completed, completion{
						planetID: planet.ID,
						globalID: planet.GlobalID,
						snapshot: planet.ToSnapshot(),
					})
				}
			}
		})

		for _, c := range completed {
			s.pushToPlayer(player.ID, map[string]interface{}{
				"type":             "planet_update",
				"planet_id":        c.planetID,
				"planet_global_id": c.globalID,
				"action":           "build_completed",
				"new_state":        c.snapshot,
			})
		}
	}

	return nil
}

// productionTick :
// Runs one production step on every colonized planet and
// pushes the resulting resource amounts and rates to the
// owning client.
func (t *tickScheduler) productionTick() error {
	s := t.server

	for _, player := range s.manager.All() {
		type production struct {
			globalID   int64
			resources  map[string]float64
			statistics map[string]float64
		}
		updates := make([]production, 0)

		s.manager.WithLock(player.ID, func() {
			for _, planet := range player.Galaxy.ColonizedPlanets() {
				planet.ExtractResources(s.reg, player.Patents, false)

				resources := make(map[string]float64, len(planet.Resources))
				for id, amount := range planet.Resources {
					resources[id] = amount
				}
				statistics := make(map[string]float64, len(planet.Statistics))
				for k, v := range planet.Statistics {
					statistics[k] = v
				}

				updates = append(updates, production{
					globalID:   planet.GlobalID,
					resources:  resources,
					statistics: statistics,
				})
			}
		})

		for _, u := range updates {
			s.pushToPlayer(player.ID, map[string]interface{}{
				"type":             "planet_resource_update",
				"planet_global_id": u.globalID,
				"resources":        u.resources,
				"statistics":       u.statistics,
			})
		}
	}

	return nil
}

// saveTick :
// Persists every player and galaxy. Failures are logged and
// retried on the next tick.
func (t *tickScheduler) saveTick() error {
	return t.server.manager.SaveAll()
}

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Andromalius22/Nexora/internal/admin"
	"github.com/Andromalius22/Nexora/internal/game"
	"github.com/Andromalius22/Nexora/internal/locker"
	"github.com/Andromalius22/Nexora/internal/model"
	"github.com/Andromalius22/Nexora/internal/players"
	"github.com/Andromalius22/Nexora/internal/session"
	"github.com/Andromalius22/Nexora/pkg/arguments"
	"github.com/Andromalius22/Nexora/pkg/logger"
)

// usage :
// Displays the usage of the server. Typically requires a
// configuration file to fetch the configuration variables to
// use during the execution of the server.
func usage() {
	fmt.Println("Usage:")
	fmt.Println("-config=[file] for configuration file to use (local/master/staging/production)")
}

// main :
// Loads the content catalogs, restores the persisted players
// and serves the game until an interruption signal.
func main() {
	help := flag.Bool("h", false, "Print usage")
	configFile := flag.String("config", "", "Configuration file to customize the server")
	flag.Parse()

	if *help {
		usage()
		return
	}

	config := arguments.Parse(*configFile)

	log := logger.NewStdLogger()
	defer log.Release()

	reg, err := model.LoadRegistry(config.ContentDir, log)
	if err != nil {
		log.Trace(logger.Fatal, "main", fmt.Sprintf("Cannot load content catalogs (err: %v)", err))
		os.Exit(1)
	}

	locks := locker.NewConcurrentLocker(log)

	params := game.GenerationParams{
		Width:         config.GalaxyWidth,
		Height:        config.GalaxyHeight,
		StarDensity:   config.StarDensity,
		NebulaDensity: config.NebulaDensity,
	}

	manager, err := players.NewManager(config.SaveDir, reg, params, locks, log)
	if err != nil {
		log.Trace(logger.Fatal, "main", fmt.Sprintf("Cannot restore players (err: %v)", err))
		os.Exit(1)
	}

	server := session.NewServer(config, reg, manager, log)

	if config.AdminPort > 0 {
		endpoint := admin.NewEndpoint(server, manager, log)
		go func() {
			if err := endpoint.Serve(config.AdminPort); err != nil {
				log.Trace(logger.Error, "main", fmt.Sprintf("Admin endpoint failed (err: %v)", err))
			}
		}()
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-interrupt
		log.Trace(logger.Notice, "main", "Shutting down")
		server.Stop()
	}()

	if err := server.Serve(); err != nil {
		log.Trace(logger.Fatal, "main", fmt.Sprintf("Server failed (err: %v)", err))
		os.Exit(1)
	}

	// Final save so that no progress is lost on shutdown.
	if err := manager.SaveAll(); err != nil {
		log.Trace(logger.Error, "main", fmt.Sprintf("Final save failed (err: %v)", err))
	}
}

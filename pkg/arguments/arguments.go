package arguments

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config :
// Describes the set of properties used to configure the current
// instance of the game server. Most of these values come from a
// configuration file provided at startup, with sane defaults so
// that a development instance can be launched without any file
// tweaking.
//
// The `Host` defines the address on which the server listens for
// incoming client connections.
// The default value is "0.0.0.0".
//
// The `Port` specifies on which port the simulation server can
// be reached by clients. This is useful especially in dev
// environment where we can run multiple servers on the same
// machine and thus should be able to configure the port.
// The default value is 5000.
//
// The `AdminPort` defines the port used by the HTTP status
// endpoint. A value of `0` disables the endpoint entirely.
// The default value is 0.
//
// The `ContentDir` points at the directory holding the content
// catalogs (buildings, resources, planet types, etc.) loaded
// once at startup.
// The default value is "data".
//
// The `SaveDir` points at the directory where player metadata
// and galaxy snapshots are persisted.
// The default value is "saves".
//
// The `BuildTick` defines the interval between two consecutive
// progressions of the planets' build queues.
// The default value is 1 second.
//
// The `ProductionTick` defines the interval between two runs of
// the production step on every colonized planet.
// The default value is 60 seconds.
//
// The `SaveTick` defines the interval between two persistence
// passes saving all players and galaxies to disk.
// The default value is 60 seconds.
//
// The `MaxFrameSize` defines the hard cap on the byte length of
// a single framed message. Frames advertising a larger length
// are considered protocol violations.
// The default value is 64 MiB.
//
// The `GalaxyWidth` and `GalaxyHeight` define the dimensions in
// hexes of the galaxies generated for new players.
// The default values are 20x20.
//
// The `StarDensity` and `NebulaDensity` drive the feature
// weights used during galaxy generation. Both are expressed in
// the [0; 100] range.
// The default values are 50 and 20.
type Config struct {
	Host       string
	Port       int
	AdminPort  int
	ContentDir string
	SaveDir    string

	BuildTick      time.Duration
	ProductionTick time.Duration
	SaveTick       time.Duration

	MaxFrameSize uint32

	GalaxyWidth   int
	GalaxyHeight  int
	StarDensity   int
	NebulaDensity int
}

// Parse :
// Used to parse the configuration file and produce the values to
// apply to the various aspects of the application. Properties can
// also be provided through environment variables prefixed with
// `ENV` where dots in the key are replaced by underscores.
//
// The `configFile` is a string describing the optional name of
// the configuration file (without extension) provided by the
// runtime of the application. When empty only defaults and env
// variables are used.
//
// Returns the built-in configuration.
func Parse(configFile string) Config {
	// Assign the extra paths to use to reach the configuration file.
	viper.SetEnvPrefix("ENV")
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)
	viper.AutomaticEnv()

	if len(configFile) > 0 {
		viper.SetConfigName(configFile)

		// Optionally look for config in the working directory and
		// in the common `data/config` directory.
		viper.AddConfigPath(".")
		viper.AddConfigPath("data/config")

		if err := viper.ReadInConfig(); err != nil {
			panic(fmt.Errorf("could not parse input configuration \"%s\" (err: %v)", configFile, err))
		}
	}

	// Create the default configuration.
	config := Config{
		Host:       "0.0.0.0",
		Port:       5000,
		AdminPort:  0,
		ContentDir: "data",
		SaveDir:    "saves",

		BuildTick:      1 * time.Second,
		ProductionTick: 60 * time.Second,
		SaveTick:       60 * time.Second,

		MaxFrameSize: 64 * 1024 * 1024,

		GalaxyWidth:   20,
		GalaxyHeight:  20,
		StarDensity:   50,
		NebulaDensity: 20,
	}

	// Fetch values from the configuration produced by the runtime.
	if viper.IsSet("Server.Host") {
		config.Host = viper.GetString("Server.Host")
	}
	if viper.IsSet("Server.Port") {
		config.Port = viper.GetInt("Server.Port")
	}
	if viper.IsSet("Admin.Port") {
		config.AdminPort = viper.GetInt("Admin.Port")
	}
	if viper.IsSet("Data.ContentDir") {
		config.ContentDir = viper.GetString("Data.ContentDir")
	}
	if viper.IsSet("Data.SaveDir") {
		config.SaveDir = viper.GetString("Data.SaveDir")
	}
	if viper.IsSet("Ticks.Build") {
		config.BuildTick = viper.GetDuration("Ticks.Build")
	}
	if viper.IsSet("Ticks.Production") {
		config.ProductionTick = viper.GetDuration("Ticks.Production")
	}
	if viper.IsSet("Ticks.Save") {
		config.SaveTick = viper.GetDuration("Ticks.Save")
	}
	if viper.IsSet("Frame.MaxSize") {
		config.MaxFrameSize = viper.GetUint32("Frame.MaxSize")
	}
	if viper.IsSet("Galaxy.Width") {
		config.GalaxyWidth = viper.GetInt("Galaxy.Width")
	}
	if viper.IsSet("Galaxy.Height") {
		config.GalaxyHeight = viper.GetInt("Galaxy.Height")
	}
	if viper.IsSet("Galaxy.StarDensity") {
		config.StarDensity = viper.GetInt("Galaxy.StarDensity")
	}
	if viper.IsSet("Galaxy.NebulaDensity") {
		config.NebulaDensity = viper.GetInt("Galaxy.NebulaDensity")
	}

	return config
}

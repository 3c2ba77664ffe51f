// Command motionsim replays a scripted input scenario against the player
// controller on a level, without a window, and logs what the character did.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/milk9111/platformer/logging"
	"go.uber.org/zap"
)

func main() {
	levelName := flag.String("level", "test_room", "level name in levels/ (basename, .json optional)")
	scenarioName := flag.String("scenario", "short_hop", "scenario script in prefabs/scripts (basename, .tengo optional)")
	every := flag.Int("every", 1, "log one line per N ticks (0 logs the summary only)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	logFormat := flag.String("log-format", "console", "log format: console or json")
	flag.Parse()

	cfg := logging.DefaultConfig()
	cfg.Level = *logLevel
	cfg.Format = *logFormat
	log, err := logging.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "motionsim: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if _, err := simulate(options{Level: *levelName, Scenario: *scenarioName, Every: *every}, log); err != nil {
		log.Error("simulation failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

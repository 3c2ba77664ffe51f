package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/platformer/common"
	"github.com/milk9111/platformer/logging"
	"go.uber.org/zap"
)

func main() {
	debug := flag.Bool("debug", false, "draw physics shapes, probes and the motion HUD")
	watch := flag.Bool("watch", false, "reload player tuning when prefabs/player.yaml changes")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	levelName := flag.String("level", "test_room", "level name in levels/ (basename, .json optional)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	logFormat := flag.String("log-format", "console", "log format: console or json")
	flag.Parse()

	cfg := logging.DefaultConfig()
	if *debug {
		cfg = logging.DebugConfig()
	}
	if isFlagSet("log-level") {
		cfg.Level = *logLevel
	}
	cfg.Format = *logFormat
	log, err := logging.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "platformer: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("platformer")
	ebiten.SetTPS(common.TPS)

	game, err := NewGame(*levelName, *debug, *watch, log)
	if err != nil {
		log.Error("start game", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	defer func() { _ = game.Close() }()

	if err := ebiten.RunGame(game); err != nil {
		log.Error("run game", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

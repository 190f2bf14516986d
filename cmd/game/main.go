package main

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Skin-Clinic/internal/config"
	"github.com/Garsondee/Skin-Clinic/internal/game"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := config.NewLogger(cfg.Env)

	g, err := game.New(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("start clinic")
	}

	ebiten.SetWindowTitle("Skin Clinic")
	ebiten.SetWindowSize(g.Layout(0, 0))
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"github.com/guidoenr/bloomer/internal/log"
	"github.com/urfave/cli"
)

var logger = log.New("bloomer")

// setupLogging applies the config level, then lets -v / -vv raise it.
func setupLogging(ctx *cli.Context, level string) {
	log.SetLevel(log.ParseLevel(level))

	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}

package main

import (
	"github.com/urfave/cli"

	"github.com/vkngwrapper/framecore/internal/log"
)

var logger = log.New("framecore")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}

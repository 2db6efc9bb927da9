// Package main is the entry point for the quranku application.
package main

import (
	"github.com/samber/lo"

	"github.com/quranku-cli/quranku/cmd"
	"github.com/quranku-cli/quranku/config"
	"github.com/quranku-cli/quranku/internal/cache"
	"github.com/quranku-cli/quranku/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	// Prune expired cache artifacts in the background.
	go cache.CollectGarbage()

	cmd.Execute()
}

// Package main is the entry point for the offplay application.
package main

import (
	"github.com/offplay/offplay/cmd"
	"github.com/offplay/offplay/config"
	"github.com/offplay/offplay/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}

package store

import (
	"fmt"

	"github.com/offplay/offplay/log"
)

// pebbleLogger routes pebble's internal diagnostics to the application log.
type pebbleLogger struct{}

func (pebbleLogger) Infof(format string, args ...interface{}) {
	log.Debugf("pebble: "+format, args...)
}

func (pebbleLogger) Errorf(format string, args ...interface{}) {
	log.Errorf("pebble: "+format, args...)
}

func (pebbleLogger) Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf("pebble: "+format, args...)
	log.Error(msg)
	panic(msg)
}

// Package logging configures the shared zerolog global logger every
// package in this module logs through via github.com/rs/zerolog/log, the
// same convention the rest of the stack uses.
package logging

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Configure sets the global zerolog logger's level and output writer.
// Call it once from main; library code should just use
// github.com/rs/zerolog/log directly rather than threading a logger
// through every constructor.
func Configure(level zerolog.Level, pretty bool) {
	zerolog.SetGlobalLevel(level)
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

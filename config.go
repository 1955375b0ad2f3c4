package teardown

import (
	"github.com/go-logr/logr"
)

// Option is a function that configures a Manager.
type Option func(*config)

type config struct {
	log logr.Logger
}

func defaultConfig() config {
	return config{
		log: logr.Discard(),
	}
}

// WithLogger sets the logger used during Shutdown. The default
// discards everything.
var WithLogger = func(log logr.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

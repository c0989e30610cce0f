package internal

import (
	"io"

	"github.com/starford/formbind/internal/prompt"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	seed   string
	driver prompt.Driver
	out    io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithSeed selects the seed the fill command starts from.
func WithSeed(name string) Option {
	return func(a *application) {
		a.seed = name
	}
}

// WithPromptDriver replaces the terminal used by the fill command.
func WithPromptDriver(d prompt.Driver) Option {
	return func(a *application) {
		a.driver = d
	}
}

// WithOutput sets where the fill command writes the finished document.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.out = w
	}
}

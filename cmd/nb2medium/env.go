package main

import (
	"io"
	"os"

	nb2medium "github.com/alnah/go-nb2medium"
)

// Environment holds injectable dependencies for testability.
// Includes I/O and the remote service clients.
type Environment struct {
	Stdout    io.Writer
	Stderr    io.Writer
	NewMedium func(token string) nb2medium.MediumAPI
	NewGist   func(token string) nb2medium.GistCreator
	// ConverterOptions are applied after the ones derived from flags and
	// config, so they win.
	ConverterOptions []nb2medium.Option
}

// DefaultEnv returns production environment talking to the real services.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		NewMedium: nb2medium.NewMediumClient,
		NewGist:   nb2medium.NewGistClient,
	}
}

// Package cli parses the command line into an app.Config. Defaults come
// from the environment, flags override them, and the first positional
// argument selects the command.
package cli

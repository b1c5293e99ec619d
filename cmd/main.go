// Package cmd implements the CLI application to acquire and report market
// data.
package cmd

import (
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on
// the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&syncCmd{}, "acquisition")
	c.Register(&watchCmd{}, "acquisition")

	c.Register(&latestCmd{}, "reporting")
	c.Register(&reportCmd{}, "reporting")
}

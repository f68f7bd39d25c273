// Package cli implements the enginectl command line interface.
//
// Every subcommand loads the configuration, opens a Runtime (postgres engine plus command executor)
// and runs exactly one engine command through the executor.
package cli

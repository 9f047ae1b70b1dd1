// Command simulator drives a MatchingEngine with randomized, concurrent,
// multi-symbol order traffic, reporting fills recovered by diffing book
// snapshots.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"lockfree-matcher/config"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "simulator",
		Short: "Drive a lock-free matching engine with synthetic order flow",
	}

	config.BindFlags(root.PersistentFlags())
	root.AddCommand(newRunCommand())
	root.AddCommand(newBenchCommand())
	root.AddCommand(newProfileCommand())
	return root
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

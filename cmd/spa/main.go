// Command spa is the CLI driver for the SIMPLE/PQL static program analyzer:
// it parses a SIMPLE source file into a program knowledge base, runs the
// design extractor over it, and evaluates PQL queries against the result.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

func init() {
	level, err := logrus.ParseLevel(os.Getenv("SPA_LOG_LEVEL"))
	if err != nil {
		level = logrus.WarnLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
}

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&analyzeCmd{}, "")
	subcommands.Register(&queryCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/darienchong/spa/extractor"
	"github.com/darienchong/spa/simpleparser"
)

// analyzeCmd runs phases 1 and 2 only: tokenize+parse the source into a
// PKB, then run the design extractor over it.
type analyzeCmd struct{}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "parse a SIMPLE source file and run the design extractor" }
func (*analyzeCmd) Usage() string {
	return `analyze <source-file>:
  Parses the given SIMPLE source file and extracts all design abstractions.
  Prints "ok" and exits 0 on success; prints the error and exits nonzero
  on any tokenization, parse, or design-semantic failure.
`
}
func (*analyzeCmd) SetFlags(*flag.FlagSet) {}

func (*analyzeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: spa analyze <source-file>")
		return subcommands.ExitUsageError
	}

	if _, err := runAnalyze(f.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Println("ok")
	return subcommands.ExitSuccess
}

// runAnalyze parses src and runs the extractor over the resulting PKB,
// returning it for reuse by the query subcommand.
func runAnalyze(path string) (*pkbResult, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	logrus.WithField("file", path).Debug("parsing source")
	_, kb, err := simpleparser.New(string(src)).Parse()
	if err != nil {
		return nil, err
	}

	logrus.Debug("running design extractor")
	if err := extractor.Run(kb); err != nil {
		return nil, err
	}

	return &pkbResult{kb: kb}, nil
}

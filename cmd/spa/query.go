package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/darienchong/spa/planner"
	"github.com/darienchong/spa/pql"
)

// queryCmd runs the full pipeline: parse + extract the source, then
// evaluate each query found in the query file against the resulting PKB.
type queryCmd struct {
	workers int
}

func (*queryCmd) Name() string { return "query" }
func (*queryCmd) Synopsis() string {
	return "parse a SIMPLE source file and evaluate PQL queries against it"
}
func (*queryCmd) Usage() string {
	return `query <source-file> <query-file>:
  Parses the source file, runs the design extractor, then evaluates the
  query (or queries) in query-file against the result. A query-file holding
  a single query's declarations and Select clause prints one line per
  result tuple, "TRUE"/"FALSE" for a Boolean query, or "none" when empty,
  per the source file format. A query-file holding several queries
  separated by a blank line evaluates each one with up to -workers of
  concurrency and prints each one's lines in turn.
  A query that itself fails to parse or evaluate prints its error message
  in place of its result lines; other queries still run. Exits nonzero
  only if the source file itself fails to parse or extract, or if either
  file cannot be read.
`
}
func (c *queryCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.workers, "workers", 1, "number of queries to evaluate concurrently in batch mode")
}

func (c *queryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: spa query <source-file> <query-file>")
		return subcommands.ExitUsageError
	}

	result, err := runAnalyze(f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	segments, err := querySegments(f.Arg(1))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	batch := make([]planner.BatchQuery, 0, len(segments))
	outputs := make([]string, len(segments))
	queryIdx := make([]int, 0, len(segments))
	var failures error
	for i, seg := range segments {
		q, err := pql.New(seg).Parse()
		if err != nil {
			outputs[i] = err.Error()
			failures = multierror.Append(failures, fmt.Errorf("query %d: %w", i+1, err))
			continue
		}
		batch = append(batch, planner.BatchQuery{Label: fmt.Sprint(i), Query: q})
		queryIdx = append(queryIdx, i)
	}

	eval := planner.New(result.kb)
	outcomes := planner.RunBatch(eval, batch, c.workers)

	for j, outcome := range outcomes {
		i := queryIdx[j]
		if outcome.Err != nil {
			outputs[i] = outcome.Err.Error()
			failures = multierror.Append(failures, fmt.Errorf("query %d: %w", i+1, outcome.Err))
			continue
		}
		outputs[i] = formatResult(outcome.Result)
	}

	for _, out := range outputs {
		fmt.Println(out)
	}

	if failures != nil {
		logrus.WithError(failures).Warn("some queries failed")
	}

	return subcommands.ExitSuccess
}

// querySegments reads path and splits it on blank lines into one or more
// complete query texts, each a possibly-multi-line block of declarations
// followed by a Select clause.
func querySegments(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var segments []string
	var cur []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if len(cur) > 0 {
				segments = append(segments, strings.Join(cur, " "))
				cur = nil
			}
			continue
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		segments = append(segments, strings.Join(cur, " "))
	}
	return segments, scanner.Err()
}

// formatResult renders one query's Result the way the driver reports it: one
// line per tuple, "TRUE"/"FALSE" for a Boolean query, or "none" when empty.
func formatResult(res planner.Result) string {
	if res.Boolean {
		if res.BoolValue {
			return "TRUE"
		}
		return "FALSE"
	}
	if len(res.Rows) == 0 {
		return "none"
	}
	lines := make([]string, len(res.Rows))
	for i, row := range res.Rows {
		lines[i] = strings.Join(row, " ")
	}
	return strings.Join(lines, "\n")
}

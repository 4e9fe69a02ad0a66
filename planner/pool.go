package planner

import (
	"sync"

	"github.com/darienchong/spa/pql"
)

// BatchQuery pairs a parsed query with a label used to report its result in
// original submission order.
type BatchQuery struct {
	Label string
	Query *pql.Query
}

// BatchOutcome is one query's evaluation outcome, paired back to its label.
type BatchOutcome struct {
	Label  string
	Result Result
	Err    error
}

// RunBatch evaluates every query in qs against e, using a fixed-size pool of
// workers pulling from a shared job channel. Evaluation
// against a read-only PKB is safe to parallelize as long as each goroutine
// uses its own call into Evaluate; workers share only the channel and one
// Evaluator, never mutable state. Results are returned in the same order as
// qs regardless of completion order.
func RunBatch(e *Evaluator, qs []BatchQuery, workers int) []BatchOutcome {
	if workers < 1 {
		workers = 1
	}
	if workers > len(qs) {
		workers = len(qs)
	}
	if workers == 0 {
		return nil
	}

	outcomes := make([]BatchOutcome, len(qs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := e.Evaluate(qs[i].Query)
				outcomes[i] = BatchOutcome{Label: qs[i].Label, Result: res, Err: err}
			}
		}()
	}

	for i := range qs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

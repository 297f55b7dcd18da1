package app

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/samvad-hq/hn-contract-checks/internal/checks"
	"github.com/samvad-hq/hn-contract-checks/pkg/profile"
)

// Summary counts the outcome of one run.
type Summary struct {
	Passed  int
	Failed  int
	Elapsed time.Duration
}

// Summarize tallies results.
func Summarize(results []checks.Result, elapsed time.Duration) Summary {
	s := Summary{Elapsed: elapsed}
	for _, r := range results {
		if r.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

var (
	passLabel = color.New(color.FgGreen, color.Bold).SprintFunc()
	failLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	dim       = color.New(color.Faint).SprintFunc()
)

// WriteReport prints one line per check followed by a summary line.
func WriteReport(w io.Writer, name profile.Name, results []checks.Result, s Summary) {
	fmt.Fprintf(w, "HN API contract checks (%s)\n", name)
	for _, r := range results {
		label := passLabel("PASS")
		if !r.Passed {
			label = failLabel("FAIL")
		}
		fmt.Fprintf(w, "  %s %-26s %s\n", label, r.ID, dim(r.Elapsed.Round(time.Millisecond)))
		if r.Err != nil {
			fmt.Fprintf(w, "       %s\n", r.Err)
		}
	}

	verdict := passLabel("OK")
	if s.Failed > 0 {
		verdict = failLabel("FAILED")
	}
	fmt.Fprintf(w, "%s: %d passed, %d failed in %s\n", verdict, s.Passed, s.Failed, s.Elapsed.Round(time.Millisecond))
}

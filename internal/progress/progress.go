// Package progress renders per-generation run progress for humans. One
// line per generation, append-friendly, so the same stream works on a
// terminal and in a log file.
package progress

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"diecup/internal/model"
)

// Reporter prints one line per completed generation plus a final
// summary. Not safe for concurrent use; the orchestrator calls it from
// a single goroutine.
type Reporter struct {
	out    io.Writer
	total  int
	trials int64
}

// NewReporter writes to out and knows the generation cap for ETA math.
func NewReporter(out io.Writer, totalGenerations int) *Reporter {
	return &Reporter{out: out, total: totalGenerations}
}

// Generation renders one progress line.
func (r *Reporter) Generation(record model.GenerationRecord) {
	r.trials += int64(record.TrialsRun)

	verdict := "held"
	if record.Accepted {
		verdict = "accepted"
	}

	elapsed := time.Duration(record.ElapsedMillis) * time.Millisecond
	fmt.Fprintf(r.out, "gen %*d/%d  best %.4f (mean %.2f sd %.2f med %.1f q3 %.1f)  screen %.4f  %s  mut %.3f  stale %d  trials %s  elapsed %s  eta %s\n",
		digits(r.total), record.Generation, r.total,
		record.BestFitness,
		record.BestStats.Mean,
		math.Sqrt(record.BestStats.Variance),
		record.BestStats.Median,
		record.BestStats.Q3,
		record.ScreeningBest,
		verdict,
		record.MutationStrength,
		record.StagnationCount,
		humanize.Comma(r.trials),
		elapsed.Truncate(time.Second),
		eta(elapsed, record.Generation, r.total).Truncate(time.Second),
	)
}

// Finish renders the final best snapshot, genes included.
func (r *Reporter) Finish(best model.BestSnapshot) {
	fmt.Fprintf(r.out, "best fitness %.4f (confirmed at generation %d over %s trials)\n",
		best.Fitness, best.Generation, humanize.Comma(int64(best.Stats.Trials)))
	fmt.Fprintf(r.out, "weights:")
	for _, g := range best.Genes {
		fmt.Fprintf(r.out, " %.4f", g)
	}
	fmt.Fprintln(r.out)
}

func eta(elapsed time.Duration, done, total int) time.Duration {
	if done <= 0 || done >= total {
		return 0
	}
	perGeneration := elapsed / time.Duration(done)
	return perGeneration * time.Duration(total-done)
}

func digits(n int) int {
	return len(fmt.Sprint(n))
}

// OpenLog opens an append-only progress log. The caller closes it.
func OpenLog(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

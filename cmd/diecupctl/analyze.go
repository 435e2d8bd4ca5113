package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"diecup/internal/diecup"
	"diecup/internal/evo"
	"diecup/internal/stats"
)

const histogramWidth = 50

// runAnalyze plays a fixed weight vector for many games and reports the
// turn-count distribution. Useful for judging a confirmed best outside
// the optimizer, or for baselining the hand-tuned defaults.
func runAnalyze(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	weightsArg := fs.String("weights", "", "comma-separated strategy weights (default: hand-tuned)")
	games := fs.Int("games", 10000, "number of games to play")
	dice := fs.Int("dice", 6, "dice in the cup")
	sides := fs.Int("sides", 6, "sides per die")
	seed := fs.Int64("seed", 0, "master seed (0 picks one from the clock)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *games <= 0 {
		return fmt.Errorf("games must be > 0, got %d", *games)
	}

	weights := diecup.DefaultWeights()
	if *weightsArg != "" {
		parsed, err := parseWeights(*weightsArg)
		if err != nil {
			return err
		}
		weights = parsed
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	oracle, err := diecup.NewOracle(*dice, *sides)
	if err != nil {
		return err
	}

	outcomes := make([]float64, *games)
	for i, trialSeed := range evo.NewSeedGenerator(*seed).Batch(*games) {
		outcome, err := oracle.Simulate(weights, trialSeed)
		if err != nil {
			return err
		}
		outcomes[i] = outcome
	}

	printAnalysis(os.Stdout, weights, outcomes)
	return nil
}

func printAnalysis(out io.Writer, weights, outcomes []float64) {
	median, q3 := stats.Quartiles(outcomes)
	fmt.Fprintf(out, "games %s  weights %s\n", humanize.Comma(int64(len(outcomes))), formatWeights(weights))
	fmt.Fprintf(out, "mean %.4f  sd %.4f  median %.1f  q3 %.1f  se %.4f\n",
		stats.Mean(outcomes), math.Sqrt(stats.SampleVariance(outcomes)), median, q3,
		stats.StandardError(outcomes))
	fmt.Fprint(out, renderHistogram(outcomes))
}

// renderHistogram buckets the outcomes per integer turn count and draws
// a proportional bar per bucket.
func renderHistogram(outcomes []float64) string {
	counts := make(map[int]int)
	peak := 0
	for _, outcome := range outcomes {
		turns := int(outcome)
		counts[turns]++
		if counts[turns] > peak {
			peak = counts[turns]
		}
	}

	buckets := make([]int, 0, len(counts))
	for turns := range counts {
		buckets = append(buckets, turns)
	}
	sort.Ints(buckets)

	var sb strings.Builder
	for _, turns := range buckets {
		bar := counts[turns] * histogramWidth / peak
		sb.WriteString(fmt.Sprintf("%4d %-*s %d\n", turns, histogramWidth, strings.Repeat("#", bar), counts[turns]))
	}
	return sb.String()
}

func parseWeights(arg string) ([]float64, error) {
	parts := strings.Split(arg, ",")
	weights := make([]float64, len(parts))
	for i, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("weight %d: %w", i, err)
		}
		weights[i] = value
	}
	return weights, nil
}

func formatWeights(weights []float64) string {
	parts := make([]string, len(weights))
	for i, w := range weights {
		parts[i] = strconv.FormatFloat(w, 'f', 4, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseWeights(t *testing.T) {
	weights, err := parseWeights("0.5, 1.0,-0.25")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(weights) != 3 || weights[0] != 0.5 || weights[2] != -0.25 {
		t.Fatalf("unexpected weights: %v", weights)
	}

	if _, err := parseWeights("0.5,abc"); err == nil {
		t.Fatal("expected error for a non-numeric weight")
	}
}

func TestRenderHistogram(t *testing.T) {
	out := renderHistogram([]float64{10, 10, 10, 10, 12, 12, 15})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 buckets, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "  10") || !strings.HasSuffix(lines[0], " 4") {
		t.Fatalf("unexpected first bucket: %q", lines[0])
	}
	// The peak bucket owns the full bar width.
	if strings.Count(lines[0], "#") != histogramWidth {
		t.Fatalf("peak bar width: %q", lines[0])
	}
	if strings.Count(lines[2], "#") >= strings.Count(lines[1], "#") {
		t.Fatalf("bars must scale with counts:\n%s", out)
	}
}

func TestPrintAnalysis(t *testing.T) {
	var buf bytes.Buffer
	printAnalysis(&buf, []float64{0.5, 1.0}, []float64{10, 12, 14, 16})

	out := buf.String()
	for _, want := range []string{"games 4", "[0.5000 1.0000]", "mean 13.0000"} {
		if !strings.Contains(out, want) {
			t.Fatalf("analysis missing %q:\n%s", want, out)
		}
	}
}

func TestRunAnalyzeCommand(t *testing.T) {
	if err := runAnalyze(nil, []string{"-games", "200", "-seed", "7"}); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if err := runAnalyze(nil, []string{"-games", "0"}); err == nil {
		t.Fatal("expected error for zero games")
	}
	if err := runAnalyze(nil, []string{"-weights", "0.1,0.2"}); err == nil {
		t.Fatal("expected error for wrong weight count")
	}
}

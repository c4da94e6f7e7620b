package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/EGRM23/fisica-computacional-2024/internal/optimization/gsa"
)

type outputFormat string

const (
	formatText outputFormat = "text"
	formatJSON outputFormat = "json"
	formatYAML outputFormat = "yaml"
)

func parseFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(s)); f {
	case formatText, formatJSON, formatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
}

// report is the printed outcome of a run.
type report struct {
	Objective         string    `json:"objective" yaml:"objective"`
	X                 []float64 `json:"x" yaml:"x"`
	F                 float64   `json:"f" yaml:"f"`
	Evaluations       int       `json:"evaluations" yaml:"evaluations"`
	Accepted          int       `json:"accepted" yaml:"accepted"`
	Restarts          int       `json:"restarts" yaml:"restarts"`
	BestRun           int       `json:"best_run" yaml:"best_run"`
	Refined           bool      `json:"refined" yaml:"refined"`
	RefineEvaluations int       `json:"refine_evaluations,omitempty" yaml:"refine_evaluations,omitempty"`
	Seed              uint64    `json:"seed" yaml:"seed"`
	ElapsedSeconds    float64   `json:"elapsed_seconds" yaml:"elapsed_seconds"`
	HalfValueLayer    *float64  `json:"half_value_layer,omitempty" yaml:"half_value_layer,omitempty"`
}

func newReport(objective string, seed uint64, ms *gsa.MultiStartResult) *report {
	r := &report{
		Objective: objective,
		X:         append([]float64(nil), ms.Best.X...),
		F:         ms.Best.F,
		Restarts:  len(ms.Runs),
		BestRun:   ms.BestRun,
		Seed:      seed,
	}
	for _, run := range ms.Runs {
		r.Evaluations += run.Evaluations
		r.Accepted += run.Accepted
	}
	return r
}

func writeReport(w io.Writer, format outputFormat, r *report) error {
	switch format {
	case formatJSON:
		if math.IsNaN(r.F) || math.IsInf(r.F, 0) {
			// encoding/json rejects non-finite floats.
			return fmt.Errorf("best value %v cannot be encoded as JSON", r.F)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "objective:\t%s\n", r.Objective)
	fmt.Fprintf(tw, "x:\t%s\n", formatVector(r.X))
	fmt.Fprintf(tw, "f:\t%.10g\n", r.F)
	fmt.Fprintf(tw, "evaluations:\t%d\n", r.Evaluations)
	fmt.Fprintf(tw, "accepted:\t%d\n", r.Accepted)
	if r.Restarts > 1 {
		fmt.Fprintf(tw, "restarts:\t%d (best run %d)\n", r.Restarts, r.BestRun)
	}
	if r.Refined || r.RefineEvaluations > 0 {
		fmt.Fprintf(tw, "refined:\t%t (%d evaluations)\n", r.Refined, r.RefineEvaluations)
	}
	if r.HalfValueLayer != nil {
		fmt.Fprintf(tw, "half value layer:\t%.4g\n", *r.HalfValueLayer)
	}
	fmt.Fprintf(tw, "seed:\t%d\n", r.Seed)
	fmt.Fprintf(tw, "elapsed:\t%.3fs\n", r.ElapsedSeconds)
	return tw.Flush()
}

func formatVector(x []float64) string {
	parts := make([]string, len(x))
	for i, v := range x {
		parts[i] = strconv.FormatFloat(v, 'g', 8, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Command cli analyzes a local CSV or Excel file without a server or
// database: it profiles the dataset, generates the pipeline, and prints
// the result.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"autopipe/adapters/tabular"
	"autopipe/internal/explain"
	"autopipe/internal/fallback"
	"autopipe/internal/profiling"
	"autopipe/internal/rules"
)

func main() {
	var (
		filePath = flag.String("file", "", "path to a CSV or Excel dataset (required)")
		target   = flag.String("target", "", "target column name (required)")
		format   = flag.String("format", "json", "output format: json or report")
	)
	flag.Parse()

	if *filePath == "" || *target == "" {
		flag.Usage()
		os.Exit(2)
	}

	table, err := tabular.NewDataReader().ReadFile(*filePath)
	if err != nil {
		log.Fatalf("failed to read dataset: %v", err)
	}

	p, err := profiling.NewProfiler().ProfileDataset(table, *target)
	if err != nil {
		log.Fatalf("profiling failed: %v", err)
	}

	ladder := fallback.NewLadder(rules.NewEngine())
	outcome, err := ladder.GeneratePipeline(p, p.Target.SuggestedTask)
	if err != nil {
		log.Fatalf("pipeline generation failed: %v", err)
	}

	switch *format {
	case "report":
		fmt.Println(explain.NewRenderer().Render(outcome.Config, p))
	case "json":
		out := map[string]any{
			"profile":  p,
			"pipeline": outcome.Config,
			"tier":     outcome.Tier,
		}
		if len(outcome.Failures) > 0 {
			out["failures"] = outcome.Failures
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			log.Fatalf("failed to encode output: %v", err)
		}
	default:
		log.Fatalf("unknown format %q", *format)
	}
}

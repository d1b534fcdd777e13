package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ersonp/entrylink/internal/application/handlers"
	"github.com/ersonp/entrylink/internal/domain/naming"
)

func printRunResult(w io.Writer, r *handlers.RunResult) {
	fmt.Fprintf(w, "Run %s\n", r.RunID)
	for _, idx := range r.Indices {
		fmt.Fprintf(w, "  indexed %s -> %s (%d keys, %d values)\n",
			idx.Target.Table, naming.IndexFileName(idx.Target.Key.PrimaryID, idx.Target.Key.RelatedModel), idx.Keys, idx.Values)
	}
	total := 0
	for _, m := range r.Models {
		fmt.Fprintf(w, "  linked %s: %d records\n", m.Model, m.Records)
		total += m.Records
	}
	fmt.Fprintf(w, "%d indices, %d models, %d records in %s\n", len(r.Indices), len(r.Models), total, r.Duration.Round(time.Millisecond))
}

func printCheckResult(w io.Writer, r *handlers.CheckResult) {
	fmt.Fprintf(w, "Mapping OK: %d models, %d relations, %d helper indices\n", r.Models, r.Relations, len(r.Indices))
	for _, t := range r.Indices {
		fmt.Fprintf(w, "  %s <- %s.%s\n", naming.IndexFileName(t.Key.PrimaryID, t.Key.RelatedModel), t.Table, t.ForeignID)
	}
}

func printModels(w io.Writer, models []handlers.ModelInfo) {
	if len(models) == 0 {
		fmt.Fprintln(w, "No models in mapping.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tCONTENT TYPE\tTYPE\tDIRECTORY\tTABLE\tRELATIONS")
	for _, m := range models {
		relations := "-"
		if len(m.Relations) > 0 {
			relations = strings.Join(m.Relations, ", ")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", m.Name, m.ContentType, m.Type, m.Collection, m.Table, relations)
	}
	_ = tw.Flush()
}

package output

import (
	"fmt"
	"io"

	"github.com/codeatlas/codeatlas-go/internal/extract"
)

// PrintBundle writes the labeled record sections: entities, relationships,
// calls, data-flows, endpoints. One record per line in (a, b, c) form.
func PrintBundle(w io.Writer, bundle *extract.Bundle) {
	fmt.Fprintln(w, "Extracted Entities:")
	for _, e := range bundle.Entities.Items() {
		fmt.Fprintf(w, "(%s, %s, %s)\n", e.Kind, e.Name, e.Scope)
	}

	fmt.Fprintln(w, "\nExtracted Relationships:")
	printRelationships(w, bundle.Relationships.Items())

	fmt.Fprintln(w, "\nExecution Flow (Function Calls):")
	printRelationships(w, bundle.Calls.Items())

	fmt.Fprintln(w, "\nData Flow (Variable Dependencies):")
	printRelationships(w, bundle.DataFlows.Items())

	fmt.Fprintln(w, "\nAPI Endpoints:")
	printRelationships(w, bundle.Endpoints.Items())
}

func printRelationships(w io.Writer, items []extract.Relationship) {
	for _, r := range items {
		fmt.Fprintf(w, "(%s, %s, %s)\n", r.Source, r.Relation, r.Target)
	}
}

// PrintSummary writes aggregate record counts
func PrintSummary(w io.Writer, bundle *extract.Bundle) {
	fmt.Fprintln(w, "Extraction Summary:")
	fmt.Fprintf(w, "- %d entities\n", bundle.Entities.Len())
	fmt.Fprintf(w, "- %d structural relationships\n", bundle.Relationships.Len())
	fmt.Fprintf(w, "- %d function calls\n", bundle.Calls.Len())
	fmt.Fprintf(w, "- %d data flows\n", bundle.DataFlows.Len())
	fmt.Fprintf(w, "- %d endpoint records\n", bundle.Endpoints.Len())
}

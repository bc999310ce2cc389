package validate

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteReport renders the three labeled sections followed by the summary
// line. The layout is stable so scripts can grep it.
func WriteReport(w io.Writer, r Result) error {
	sections := []struct {
		title string
		items []string
	}{
		{"STRUCTURE ERRORS", r.StructureErrors},
		{"INTEGRITY ERRORS", r.IntegrityErrors},
		{"WARNINGS", r.Warnings},
	}

	for _, s := range sections {
		if _, err := fmt.Fprintf(w, "%s (%d):\n", s.title, len(s.items)); err != nil {
			return err
		}
		for _, item := range s.items {
			if _, err := fmt.Fprintf(w, "  - %s\n", item); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w, Summary(r))
	return err
}

// Summary is the final report line.
func Summary(r Result) string {
	if r.Valid() {
		return "Result: VALID"
	}
	return fmt.Sprintf("Result: INVALID (%d errors, %d warnings)", r.ErrorCount(), len(r.Warnings))
}

// WriteJSON emits the result as an indented JSON object.
func WriteJSON(w io.Writer, r Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Result
		Valid bool `json:"valid"`
	}{Result: r, Valid: r.Valid()})
}

package scheduler

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"framepress/internal/encoding"
)

// Tally accumulates terminal job results. Results arrive in any order
// across lanes, so totals are built by accumulation only.
type Tally struct {
	Compressed     int
	Copied         int
	FallbackCopied int
	Skipped        int
	Errors         int
	InputBytes     int64
	OutputBytes    int64
}

// Add folds one result into the tally.
func (t *Tally) Add(result encoding.Result) {
	switch result.Status {
	case encoding.StatusCompressed:
		t.Compressed++
	case encoding.StatusCopied:
		t.Copied++
	case encoding.StatusFallbackCopied:
		t.FallbackCopied++
	case encoding.StatusSkipped:
		t.Skipped++
	default:
		t.Errors++
	}
	if result.Status != encoding.StatusError {
		t.InputBytes += result.InputSize
		t.OutputBytes += result.OutputSize
	}
}

// Total is the number of results folded in.
func (t *Tally) Total() int {
	return t.Compressed + t.Copied + t.FallbackCopied + t.Skipped + t.Errors
}

// Saved is the net byte reduction across the run, never negative.
func (t *Tally) Saved() int64 {
	if t.OutputBytes >= t.InputBytes {
		return 0
	}
	return t.InputBytes - t.OutputBytes
}

// Render formats the run summary as a table.
func (t *Tally) Render() string {
	printer := message.NewPrinter(language.English)
	writer := table.NewWriter()
	writer.SetStyle(table.StyleLight)
	writer.AppendHeader(table.Row{"Outcome", "Count"})
	writer.AppendRows([]table.Row{
		{"Compressed", printer.Sprintf("%d", t.Compressed)},
		{"Copied", printer.Sprintf("%d", t.Copied)},
		{"Fallback copied", printer.Sprintf("%d", t.FallbackCopied)},
		{"Skipped", printer.Sprintf("%d", t.Skipped)},
		{"Errors", printer.Sprintf("%d", t.Errors)},
	})
	writer.AppendFooter(table.Row{"Total", printer.Sprintf("%d", t.Total())})

	summary := writer.Render()
	if saved := t.Saved(); saved > 0 {
		summary += fmt.Sprintf("\nSpace saved: %s (%s in, %s out)",
			humanize.Bytes(uint64(saved)),
			humanize.Bytes(uint64(t.InputBytes)),
			humanize.Bytes(uint64(t.OutputBytes)))
	}
	return summary
}

// Package report renders scan progress for humans.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/screa/brainwallet-scanner/pkg/types"
)

const timeLayout = "2006-01-02 15:04:05 MST"

// Status writes a progress table and, when present, a hits table to w.
// totalPhrases <= 0 means the phrase list size is unknown.
func Status(w io.Writer, cp *types.Checkpoint, hits []types.Hit, totalPhrases int) error {
	progress := table.NewWriter()
	progress.SetTitle("Scan progress")
	progress.SetStyle(table.StyleLight)
	progress.AppendRows([]table.Row{
		{"Completed phrases", completion(len(cp.CompletedBasePhrases), totalPhrases)},
		{"Current index", cp.CurrentIndex},
		{"Candidates checked", cp.TotalChecked},
		{"Hits", cp.TotalHits},
		{"Started", formatTime(cp.StartedAt)},
		{"Last update", formatTime(cp.LastUpdate)},
	})
	if _, err := fmt.Fprintln(w, progress.Render()); err != nil {
		return err
	}

	if len(hits) == 0 {
		_, err := fmt.Fprintln(w, "No hits recorded.")
		return err
	}

	ht := table.NewWriter()
	ht.SetTitle("Hits")
	ht.SetStyle(table.StyleLight)
	ht.AppendHeader(table.Row{"#", "Base phrase", "Candidate", "Address", "Type", "Txs", "Received (sat)", "Balance (sat)", "Provider", "Found"})
	for i, h := range hits {
		ht.AppendRow(table.Row{
			i + 1, h.BasePhrase, h.Candidate, h.Address, h.AddressType,
			h.TxCount, h.ReceivedSatoshis, h.BalanceSatoshis, h.Provider, formatTime(h.FoundAt),
		})
	}
	ht.SetColumnConfigs([]table.ColumnConfig{
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
	})
	_, err := fmt.Fprintln(w, ht.Render())
	return err
}

func completion(done, total int) string {
	if total <= 0 {
		return fmt.Sprintf("%d", done)
	}
	return fmt.Sprintf("%d/%d (%.1f%%)", done, total, 100*float64(done)/float64(total))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(timeLayout)
}

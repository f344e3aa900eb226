// Package split partitions a corrected wire table into bounded output
// batches keyed by gauge+color and the PLCIO marker.
package split

import (
	"fmt"

	"github.com/wireprint/wireprint-go/pkg/wireprint/models"
	"github.com/wireprint/wireprint-go/pkg/wireprint/textutil"
)

// DefaultMaxPerFile is the default maximum number of wires per output batch.
const DefaultMaxPerFile = 150

const stage = "split"

// Output is one emitted batch: the naming key (no extension) and a
// header-preserving table holding the batch rows.
type Output struct {
	Name  string
	Table *models.Table
}

type groupKey struct {
	gc    string
	plcio bool
}

// ByGaugeColor buckets data rows by (gauge+color, PLCIO flag) and emits
// size-bounded chunks per bucket. Rows keep their original relative order
// within a bucket, across chunk boundaries. Output names are
// "<section><panel><gc>", "_PLCIO" appended for PLCIO buckets and a
// zero-padded "_NN" appended when a bucket needs more than one chunk.
func ByGaugeColor(t *models.Table, source, anchor string, maxPer int, diags *models.Diagnostics) ([]Output, error) {
	hdrIdx, err := t.FindHeaderRow(anchor, models.DefaultHeaderScanLimit)
	if err != nil {
		return nil, err
	}
	hdr := models.HeaderMap(t.Rows[hdrIdx])

	colWire, ok := hdr["Wire ID"]
	if !ok {
		diags.Addf(stage, "missing %q header; cannot split", "Wire ID")
		return nil, nil
	}
	colAid, haveAid := hdr["Article ID"]

	if maxPer <= 0 {
		maxPer = DefaultMaxPerFile
	}

	// Stable grouping: bucket order follows first appearance, row order
	// within a bucket is the input order.
	var order []groupKey
	groups := make(map[groupKey][]*models.Row)

	for _, r := range t.DataRows(hdrIdx) {
		cells := r.CellMap()
		gc := textutil.GaugeColor(cells[colWire].Text())

		isPLCIO := false
		if haveAid {
			isPLCIO = textutil.HasPLCIO(cells[colAid].Text())
		}

		key := groupKey{gc: gc, plcio: isPLCIO}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}

	section, panel := textutil.SectionPanel(source)

	var outputs []Output
	for _, key := range order {
		rows := groups[key]
		name := section + panel + key.gc
		if key.plcio {
			name += "_PLCIO"
		}
		chunks := (len(rows) + maxPer - 1) / maxPer
		if chunks < 1 {
			chunks = 1
		}

		for i := 0; i < chunks; i++ {
			lo := i * maxPer
			hi := lo + maxPer
			if hi > len(rows) {
				hi = len(rows)
			}

			nt := t.CloneHeaderOnly(hdrIdx)
			for _, r := range rows[lo:hi] {
				nt.Rows = append(nt.Rows, r.Clone())
			}

			chunkName := name
			if chunks > 1 {
				chunkName = fmt.Sprintf("%s_%02d", name, i+1)
			}
			outputs = append(outputs, Output{Name: chunkName, Table: nt})
		}
	}

	if !haveAid {
		diags.Addf(stage, "%q header not found; PLCIO separation was skipped", "Article ID")
	}
	return outputs, nil
}

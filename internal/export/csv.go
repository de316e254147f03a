package export

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"

	"github.com/bioleads/bioleads-cli/internal/model"
)

// WriteCSV writes the ranked batch as CSV with a header row.
func WriteCSV(w io.Writer, scored []model.ScoredLead) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return eris.Wrap(err, "csv: write header")
	}
	for _, sl := range scored {
		if err := cw.Write(leadRow(sl)); err != nil {
			return eris.Wrapf(err, "csv: write rank %d", sl.Rank)
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "csv: flush")
}

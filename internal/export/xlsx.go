package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/bioleads/bioleads-cli/internal/model"
)

// WriteXLSX writes the ranked batch to an Excel workbook at path.
func WriteXLSX(path string, scored []model.ScoredLead) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range Header {
		header.AddCell().Value = col
	}

	for _, sl := range scored {
		row := sheet.AddRow()
		for _, cell := range leadRow(sl) {
			row.AddCell().Value = cell
		}
	}

	return eris.Wrapf(f.Save(path), "xlsx: save %s", path)
}

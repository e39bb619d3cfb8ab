// Package export renders a resolution as a spreadsheet.
package export

import (
	"io"

	"github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"

	"github.com/preciolens/backend/internal/domain"
)

// SheetName is the worksheet holding the line items.
const SheetName = "Resultados"

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var header = []any{"Codigo EAN", "Nombre", "Precio", "Servidor"}

// WriteResolution writes the line items, followed by the suggested price, as an xlsx workbook.
func WriteResolution(w io.Writer, res *domain.Resolution) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return errors.Wrap(err, "rename sheet")
	}

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return errors.Wrap(err, "write header")
	}

	row := 2
	for _, item := range res.Items {
		values := []any{item.EAN, item.ProductName, item.PriceText, item.Source}
		if err := setRow(f, row, values); err != nil {
			return err
		}
		row++
	}

	// blank line, then the derived price
	row++
	if err := setRow(f, row, []any{"Precio sugerido", res.SuggestedPrice}); err != nil {
		return err
	}

	if err := f.SetColWidth(SheetName, "B", "B", 48); err != nil {
		return errors.Wrap(err, "set width")
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	return nil
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errors.Wrap(err, "cell name")
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return errors.Wrapf(err, "write row %d", row)
	}
	return nil
}

package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"github.com/yukikurage/pto-approval-api/internal/models"
	"github.com/yukikurage/pto-approval-api/internal/utils"
)

// SheetName is the worksheet holding the request rows
const SheetName = "PTO Requests"

// ContentType is the MIME type of the produced workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headers = []string{"Employee", "Email", "Department", "Start", "End", "Hours", "Status", "Notes", "Created"}

// WriteRequests renders requests as an xlsx workbook into w. Requests are
// expected to carry User and User.Department preloaded.
func WriteRequests(w io.Writer, requests []models.PTORequest) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	lastColumn, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetCellStyle(SheetName, "A1", lastColumn+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, request := range requests {
		department := ""
		if request.User.Department != nil {
			department = request.User.Department.Name
		}
		hours, _ := request.Hours.Float64()

		row := []interface{}{
			request.User.Name,
			request.User.Email,
			department,
			utils.FormatDate(request.StartDate),
			utils.FormatDate(request.EndDate),
			hours,
			string(request.Status),
			request.Notes,
			request.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

package export

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/dandantas/profilewatch/internal/model"
	"github.com/dandantas/profilewatch/internal/projector"
)

// WorkbookContentType is the media type of WorkbookBytes output
const WorkbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ErrNoResult is returned when there is no completed result to export
var ErrNoResult = errors.New("no completed result to export")

// WorkbookBytes renders the column table of result as an xlsx workbook
func WorkbookBytes(result *model.ProfileResult) ([]byte, error) {
	if result == nil {
		return nil, ErrNoResult
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Columns"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	headers := []string{
		"Column",
		"Inferred Type",
		"Semantic Type",
		"Null %",
		"Distinct",
		"Unique",
		"Quality Score",
		"Critical",
		"Warning",
		"Info",
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for idx, col := range result.Columns {
		cell, err := excelize.CoordinatesToCellName(1, idx+2)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", idx+2, err)
		}

		semantic := ""
		if col.SemanticType != nil {
			semantic = *col.SemanticType
		}
		counts := projector.Histogram([]model.Column{col})

		values := []any{
			col.Name,
			col.InferredType,
			semantic,
			col.NullPercentage,
			col.DistinctCount,
			col.IsUnique,
			col.QualityScore,
			counts.Critical,
			counts.Warning,
			counts.Info,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write column %q: %w", col.Name, err)
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return nil, fmt.Errorf("size columns: %w", err)
	}
	if err := f.SetColWidth(sheet, "B", "C", 16); err != nil {
		return nil, fmt.Errorf("size columns: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// WorkbookName is the filename used for a job's local workbook
func WorkbookName(jobID string) string {
	if jobID == "" {
		return fallbackName(FormatXLSX)
	}
	return "profile_" + jobID + "." + FormatXLSX
}

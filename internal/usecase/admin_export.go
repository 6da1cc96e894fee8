package usecase

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"careers-backend/internal/domain"

	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{
	"APPLICATION ID",
	"JOB",
	"STATUS",
	"APPLIED AT",
	"EMAIL",
	"FULL NAME",
	"GENDER",
	"DATE OF BIRTH",
	"NATIONAL ID",
	"PHONE",
	"ADDRESS",
	"SKILLS",
	"RESUME",
}

func exportValues(r domain.ApplicationExportRow) []string {
	dob := ""
	if r.DateOfBirth != nil {
		dob = r.DateOfBirth.Format("2006-01-02")
	}
	return []string{
		fmt.Sprintf("%d", r.ApplicationID),
		r.JobTitle,
		string(r.Status),
		r.AppliedAt.Format(time.RFC3339),
		r.Email,
		r.FullName,
		r.Gender,
		dob,
		r.NationalID,
		r.Phone,
		r.Address,
		strings.Join(r.Skills, ", "),
		r.ResumeURL,
	}
}

func exportFilename(ext string) string {
	return fmt.Sprintf("applications_%s.%s", time.Now().Format("20060102_150405"), ext)
}

// exportExcel generates an Excel file from application rows
func exportExcel(rows []domain.ApplicationExportRow) (*domain.ExportFile, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Applications"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	// Style headers - Dark Blue background with White text
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, r := range rows {
		for colIdx, v := range exportValues(r) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	for i := range exportHeaders {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return &domain.ExportFile{
		Filename:    exportFilename("xlsx"),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        buf.Bytes(),
	}, nil
}

// exportCSV generates a CSV file from application rows
func exportCSV(rows []domain.ApplicationExportRow) (*domain.ExportFile, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeaders); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write(exportValues(r)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	return &domain.ExportFile{
		Filename:    exportFilename("csv"),
		ContentType: "text/csv; charset=utf-8",
		Data:        buf.Bytes(),
	}, nil
}

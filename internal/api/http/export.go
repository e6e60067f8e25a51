package apihttp

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	readings "climate-hub/internal/readings/domain"
)

// BuildReadingsXLSX renders readings into a two-sheet workbook: a
// summary and the raw rows.
func BuildReadingsXLSX(series []readings.Reading) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	rowsSheet := "readings"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(rowsSheet)

	summary := summarize(series)
	_ = f.SetCellValue(summarySheet, "A1", "Climate Readings Export")
	_ = f.SetCellValue(summarySheet, "A3", "Readings")
	_ = f.SetCellValue(summarySheet, "B3", len(series))
	_ = f.SetCellValue(summarySheet, "A4", "Temperature min")
	_ = f.SetCellValue(summarySheet, "B4", summary.tempMin)
	_ = f.SetCellValue(summarySheet, "A5", "Temperature max")
	_ = f.SetCellValue(summarySheet, "B5", summary.tempMax)
	_ = f.SetCellValue(summarySheet, "A6", "Temperature mean")
	_ = f.SetCellValue(summarySheet, "B6", summary.tempMean)
	_ = f.SetCellValue(summarySheet, "A7", "Humidity min")
	_ = f.SetCellValue(summarySheet, "B7", summary.humMin)
	_ = f.SetCellValue(summarySheet, "A8", "Humidity max")
	_ = f.SetCellValue(summarySheet, "B8", summary.humMax)
	_ = f.SetCellValue(summarySheet, "A9", "Humidity mean")
	_ = f.SetCellValue(summarySheet, "B9", summary.humMean)

	_ = f.SetCellValue(rowsSheet, "A1", "Timestamp")
	_ = f.SetCellValue(rowsSheet, "B1", "Device")
	_ = f.SetCellValue(rowsSheet, "C1", "Source")
	_ = f.SetCellValue(rowsSheet, "D1", "Temperature")
	_ = f.SetCellValue(rowsSheet, "E1", "Humidity")
	for i, reading := range series {
		row := i + 2
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("A%d", row), reading.TS.Format(time.RFC3339))
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("B%d", row), reading.DeviceID)
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("C%d", row), reading.Source)
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("D%d", row), reading.Temperature)
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("E%d", row), reading.Humidity)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildReadingsPDF renders a minimal PDF summary report with a row
// table.
func BuildReadingsPDF(series []readings.Reading) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Climate Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	summary := summarize(series)
	pdf.Cell(0, 6, fmt.Sprintf("Readings: %d", len(series)))
	pdf.Ln(5)
	if len(series) > 0 {
		pdf.Cell(0, 6, fmt.Sprintf("From: %s", series[0].TS.Format(time.RFC3339)))
		pdf.Ln(5)
		pdf.Cell(0, 6, fmt.Sprintf("To: %s", series[len(series)-1].TS.Format(time.RFC3339)))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Temperature min/mean/max: %.1f / %.1f / %.1f", summary.tempMin, summary.tempMean, summary.tempMax))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Humidity min/mean/max: %.1f / %.1f / %.1f", summary.humMin, summary.humMean, summary.humMax))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, "Timestamp", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Temperature", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Humidity", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, reading := range series {
		pdf.CellFormat(60, 6, reading.TS.Format("2006-01-02 15:04"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.1f", reading.Temperature), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.1f", reading.Humidity), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type seriesSummary struct {
	tempMin, tempMax, tempMean float64
	humMin, humMax, humMean    float64
}

func summarize(series []readings.Reading) seriesSummary {
	var s seriesSummary
	if len(series) == 0 {
		return s
	}
	s.tempMin, s.tempMax = series[0].Temperature, series[0].Temperature
	s.humMin, s.humMax = series[0].Humidity, series[0].Humidity
	var tempSum, humSum float64
	for _, reading := range series {
		if reading.Temperature < s.tempMin {
			s.tempMin = reading.Temperature
		}
		if reading.Temperature > s.tempMax {
			s.tempMax = reading.Temperature
		}
		if reading.Humidity < s.humMin {
			s.humMin = reading.Humidity
		}
		if reading.Humidity > s.humMax {
			s.humMax = reading.Humidity
		}
		tempSum += reading.Temperature
		humSum += reading.Humidity
	}
	s.tempMean = tempSum / float64(len(series))
	s.humMean = humSum / float64(len(series))
	return s
}

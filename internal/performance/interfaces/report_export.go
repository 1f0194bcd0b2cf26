package interfaces

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	performance "pvmonitor-cloud/internal/performance/domain"
)

// CSVHeader is the fixed column contract for CSV report exports.
// Downstream spreadsheets parse by header name, so order and naming are
// stable.
var CSVHeader = []string{
	"label",
	"rated_power_kwp",
	"orientation",
	"forecast_total_kwh",
	"actual_total_kwh",
	"deviation_percent",
	"performance_ratio_percent",
	"specific_yield_kwh_per_kwp",
}

const undefinedCell = "n/a"

// ReportRows projects a report into CSV cells, one row per string in
// report order. Undefined metrics render as "n/a", never as 0.
func ReportRows(report *performance.AggregatedReport) [][]string {
	rows := make([][]string, 0, len(report.Strings))
	for _, s := range report.Strings {
		rows = append(rows, []string{
			s.Label,
			formatKWh(s.RatedPowerKWp),
			s.Orientation,
			formatKWh(s.ForecastTotalKWh),
			formatKWh(s.ActualTotalKWh),
			formatMetric(s.DeviationPercent, 2),
			formatRatioPercent(s.PerformanceRatio),
			formatMetric(s.SpecificYieldKWhPerKWp, 2),
		})
	}
	return rows
}

// BuildReportCSV renders the report as CSV with the fixed header.
func BuildReportCSV(report *performance.AggregatedReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CSVHeader); err != nil {
		return nil, err
	}
	for _, row := range ReportRows(report) {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildReportXLSX renders the report as a workbook with summary,
// strings and monthly sheets.
func BuildReportXLSX(report *performance.AggregatedReport) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	stringsSheet := "strings"
	monthlySheet := "monthly"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(stringsSheet)
	f.NewSheet(monthlySheet)

	_ = f.SetCellValue(summarySheet, "A1", "PV Performance Report")
	_ = f.SetCellValue(summarySheet, "A3", "Installation")
	_ = f.SetCellValue(summarySheet, "B3", report.InstallationID)
	_ = f.SetCellValue(summarySheet, "A4", "Years")
	_ = f.SetCellValue(summarySheet, "B4", formatYears(report.Years))
	_ = f.SetCellValue(summarySheet, "A5", "Forecast available")
	_ = f.SetCellValue(summarySheet, "B5", report.ForecastAvailable)
	_ = f.SetCellValue(summarySheet, "A6", "Installed capacity (kWp)")
	_ = f.SetCellValue(summarySheet, "B6", report.InstalledCapacityKWp)
	_ = f.SetCellValue(summarySheet, "A7", "Forecast total (kWh)")
	_ = f.SetCellValue(summarySheet, "B7", report.ForecastGrandTotalKWh)
	_ = f.SetCellValue(summarySheet, "A8", "Actual total (kWh)")
	_ = f.SetCellValue(summarySheet, "B8", report.ActualGrandTotalKWh)
	_ = f.SetCellValue(summarySheet, "A9", "Deviation (kWh)")
	_ = f.SetCellValue(summarySheet, "B9", report.DeviationGrandTotalKWh)
	_ = f.SetCellValue(summarySheet, "A10", "Deviation (%)")
	_ = f.SetCellValue(summarySheet, "B10", formatMetric(report.DeviationGrandPercent, 2))
	if report.BestStringLabel != nil {
		_ = f.SetCellValue(summarySheet, "A12", "Best string")
		_ = f.SetCellValue(summarySheet, "B12", *report.BestStringLabel)
	}
	if report.WorstStringLabel != nil {
		_ = f.SetCellValue(summarySheet, "A13", "Worst string")
		_ = f.SetCellValue(summarySheet, "B13", *report.WorstStringLabel)
	}

	for col, name := range CSVHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(stringsSheet, cell, name)
	}
	for i, row := range ReportRows(report) {
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			_ = f.SetCellValue(stringsSheet, cell, value)
		}
	}

	_ = f.SetCellValue(monthlySheet, "A1", "label")
	_ = f.SetCellValue(monthlySheet, "B1", "month")
	_ = f.SetCellValue(monthlySheet, "C1", "forecast_kwh")
	_ = f.SetCellValue(monthlySheet, "D1", "actual_kwh")
	row := 2
	for _, s := range report.Strings {
		for _, mv := range s.MonthlyAggregates {
			_ = f.SetCellValue(monthlySheet, fmt.Sprintf("A%d", row), s.Label)
			_ = f.SetCellValue(monthlySheet, fmt.Sprintf("B%d", row), mv.MonthIndex)
			_ = f.SetCellValue(monthlySheet, fmt.Sprintf("C%d", row), mv.ForecastKWh)
			_ = f.SetCellValue(monthlySheet, fmt.Sprintf("D%d", row), mv.ActualKWh)
			row++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildReportPDF renders a minimal PDF for the report.
func BuildReportPDF(report *performance.AggregatedReport) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "PV Performance Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Installation: %s", report.InstallationID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Years: %s", formatYears(report.Years)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Installed capacity (kWp): %.2f", report.InstalledCapacityKWp))
	pdf.Ln(5)
	if report.ForecastAvailable {
		pdf.Cell(0, 6, fmt.Sprintf("Forecast total (kWh): %.1f", report.ForecastGrandTotalKWh))
		pdf.Ln(5)
	} else {
		pdf.Cell(0, 6, "No forecast data for the selected years")
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Actual total (kWh): %.1f", report.ActualGrandTotalKWh))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Deviation: %s kWh / %s", formatKWh(report.DeviationGrandTotalKWh), formatMetricSuffix(report.DeviationGrandPercent, 2, "%")))
	pdf.Ln(5)
	if report.BestStringLabel != nil && report.WorstStringLabel != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Best: %s / Worst: %s", *report.BestStringLabel, *report.WorstStringLabel))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	widths := []float64{50, 28, 28, 32, 32, 30, 30, 40}
	titles := []string{"Label", "kWp", "Orientation", "Forecast kWh", "Actual kWh", "Dev %", "PR %", "kWh/kWp"}
	pdf.SetFont("Arial", "B", 9)
	for i, title := range titles {
		pdf.CellFormat(widths[i], 6, title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, row := range ReportRows(report) {
		for i, value := range row {
			align := "R"
			if i == 0 || i == 2 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, value, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatKWh(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatMetric(m performance.Metric, precision int) string {
	if !m.Defined {
		return undefinedCell
	}
	return strconv.FormatFloat(m.Value, 'f', precision, 64)
}

func formatMetricSuffix(m performance.Metric, precision int, suffix string) string {
	if !m.Defined {
		return undefinedCell
	}
	return strconv.FormatFloat(m.Value, 'f', precision, 64) + suffix
}

// formatRatioPercent renders a performance ratio as a percentage, so a
// ratio of 1.024 exports as 102.40.
func formatRatioPercent(m performance.Metric) string {
	if !m.Defined {
		return undefinedCell
	}
	return strconv.FormatFloat(m.Value*100, 'f', 2, 64)
}

func formatYears(years []int) string {
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = strconv.Itoa(y)
	}
	return strings.Join(parts, ", ")
}

// Package export writes final-state run artifacts: a PDF engineering
// report and an XLSX member schedule. Exports consume iteration reports
// only; no optimization history is persisted.
package export

import (
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/StructKit/beso-go/pkg/config"
	"github.com/StructKit/beso-go/pkg/core"
	"github.com/StructKit/beso-go/pkg/errors"
)

// WritePDF produces an A4 engineering report for a finished run: title
// block, run parameters, summary and the active-member schedule.
func WritePDF(path string, params config.RunParams, final *core.IterationReport) error {
	if final == nil {
		return errors.New(errors.ExportFailed, "no iteration report to export")
	}

	printer := message.NewPrinter(language.English)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Topology Optimization Report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Run Parameters")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 10)

	paramRows := [][2]string{
		{"Span", fmt.Sprintf("%.2f m", params.Span)},
		{"Height", fmt.Sprintf("%.2f m", params.Height)},
		{"Point load", printer.Sprintf("%d N", int64(params.Load))},
		{"Supports", params.Support},
		{"Elastic modulus", fmt.Sprintf("%.0f GPa", params.ModulusGPa)},
		{"Section B x D", fmt.Sprintf("%.0f x %.0f mm", params.Section.FlangeWidth*1000, params.Section.Depth*1000)},
		{"Section tw / tf", fmt.Sprintf("%.1f / %.1f mm", params.Section.WebThickness*1000, params.Section.FlangeThickness*1000)},
		{"Removal ratio", fmt.Sprintf("%.2f", params.RemovalRatio)},
		{"Safety / convergence floor", fmt.Sprintf("%d / %d", params.SafetyFloor, params.ConvergenceFloor)},
		{"Grid", fmt.Sprintf("%d x %d", params.XDivs, params.YDivs)},
	}
	for _, row := range paramRows {
		pdf.Cell(60, 6, row[0])
		pdf.Cell(0, 6, row[1])
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Run Summary")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 10)

	summaryRows := [][2]string{
		{"Iterations", fmt.Sprintf("%d", final.Iteration)},
		{"Final state", final.State},
		{"Active members", fmt.Sprintf("%d of %d", final.ActiveCount, len(final.Members))},
		{"Max member force", printer.Sprintf("%.2f kN", final.MaxForce/1000)},
		{"Total system energy", fmt.Sprintf("%.3e", final.TotalEnergy)},
	}
	for _, row := range summaryRows {
		pdf.Cell(60, 6, row[0])
		pdf.Cell(0, 6, row[1])
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Active Member Schedule")
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "B", 9)
	headers := []struct {
		label string
		width float64
	}{
		{"#", 10},
		{"X1 (m)", 22},
		{"Y1 (m)", 22},
		{"X2 (m)", 22},
		{"Y2 (m)", 22},
		{"Length (m)", 26},
		{"Force (kN)", 30},
	}
	for _, h := range headers {
		pdf.Cell(h.width, 6, h.label)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 9)
	row := 0
	for _, m := range final.Members {
		if !m.Active {
			continue
		}
		row++
		cells := []string{
			fmt.Sprintf("%d", row),
			fmt.Sprintf("%.3f", m.P1.X),
			fmt.Sprintf("%.3f", m.P1.Y),
			fmt.Sprintf("%.3f", m.P2.X),
			fmt.Sprintf("%.3f", m.P2.Y),
			fmt.Sprintf("%.3f", m.P1.Hypot(m.P2)),
			printer.Sprintf("%.2f", m.Force/1000),
		}
		for i, cell := range cells {
			pdf.Cell(headers[i].width, 5, cell)
		}
		pdf.Ln(5)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return errors.Wrap(err, errors.ExportFailed, "failed to write PDF report")
	}
	return nil
}

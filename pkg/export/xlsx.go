package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/StructKit/beso-go/pkg/config"
	"github.com/StructKit/beso-go/pkg/core"
	"github.com/StructKit/beso-go/pkg/errors"
)

// WriteXLSX produces a two-sheet workbook: run parameters and the full
// member schedule (active and ghost members) of the final iteration.
func WriteXLSX(path string, params config.RunParams, final *core.IterationReport) error {
	if final == nil {
		return errors.New(errors.ExportFailed, "no iteration report to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	const paramSheet = "Parameters"
	if err := f.SetSheetName("Sheet1", paramSheet); err != nil {
		return errors.Wrap(err, errors.ExportFailed, "failed to name parameter sheet")
	}

	paramRows := [][2]interface{}{
		{"span_m", params.Span},
		{"height_m", params.Height},
		{"load_n", params.Load},
		{"support", params.Support},
		{"modulus_gpa", params.ModulusGPa},
		{"flange_width_m", params.Section.FlangeWidth},
		{"depth_m", params.Section.Depth},
		{"web_thickness_m", params.Section.WebThickness},
		{"flange_thickness_m", params.Section.FlangeThickness},
		{"removal_ratio", params.RemovalRatio},
		{"safety_floor", params.SafetyFloor},
		{"convergence_floor", params.ConvergenceFloor},
		{"iterations", final.Iteration},
		{"active_members", final.ActiveCount},
	}
	for i, row := range paramRows {
		cellA := fmt.Sprintf("A%d", i+1)
		cellB := fmt.Sprintf("B%d", i+1)
		if err := f.SetCellValue(paramSheet, cellA, row[0]); err != nil {
			return errors.Wrap(err, errors.ExportFailed, "failed to write parameter row")
		}
		if err := f.SetCellValue(paramSheet, cellB, row[1]); err != nil {
			return errors.Wrap(err, errors.ExportFailed, "failed to write parameter row")
		}
	}

	const memberSheet = "Members"
	if _, err := f.NewSheet(memberSheet); err != nil {
		return errors.Wrap(err, errors.ExportFailed, "failed to create member sheet")
	}

	headers := []string{"id", "x1", "y1", "x2", "y2", "length", "active", "force_n"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(memberSheet, cell, h); err != nil {
			return errors.Wrap(err, errors.ExportFailed, "failed to write member header")
		}
	}

	for i, m := range final.Members {
		values := []interface{}{
			i + 1,
			m.P1.X, m.P1.Y,
			m.P2.X, m.P2.Y,
			m.P1.Hypot(m.P2),
			m.Active,
			m.Force,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(memberSheet, cell, v); err != nil {
				return errors.Wrap(err, errors.ExportFailed, "failed to write member row")
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrap(err, errors.ExportFailed, "failed to save workbook")
	}
	return nil
}

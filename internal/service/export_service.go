package service

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/whenfree-api/internal/dto"
	"github.com/noah-isme/whenfree-api/internal/models"
	"github.com/noah-isme/whenfree-api/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title, subtitle string) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService turns a results grid into CSV or PDF.
type ExportService struct {
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{csv: csv, pdf: pdf, logger: logger}
}

// Render produces the requested format for the grid.
func (s *ExportService) Render(results dto.EventResults, format models.ExportFormat) (*ExportFile, error) {
	dataset := BuildDataset(results)

	var (
		payload []byte
		err     error
	)
	switch format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		subtitle := fmt.Sprintf("%d response(s), %d guest(s)", results.TotalResponses, results.GuestCount)
		payload, err = s.pdf.Render(dataset, results.Event.Title, subtitle)
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
	if err != nil {
		s.logger.Error("render export", zap.String("event_id", results.Event.ID), zap.String("format", string(format)), zap.Error(err))
		return nil, err
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("%s-availability.%s", results.Event.ID, format),
		ContentType: format.ContentType(),
		Body:        payload,
	}, nil
}

// BuildDataset lays the grid out as Name, Plus One, then one column per host
// date, closed by an "Available" footer of n/total per date.
func BuildDataset(results dto.EventResults) export.Dataset {
	headers := []string{"Name", "Plus One"}
	for _, d := range results.Dates {
		headers = append(headers, d.Date)
	}

	rows := make([][]string, 0, len(results.Respondents))
	for _, r := range results.Respondents {
		row := make([]string, 0, len(headers))
		plusOne := ""
		if r.PlusOne != nil {
			plusOne = *r.PlusOne
		}
		row = append(row, r.Name, plusOne)
		for _, cell := range r.Cells {
			labels := make([]string, len(cell.Slots))
			for i, slot := range cell.Slots {
				labels[i] = slot.Label()
			}
			row = append(row, strings.Join(labels, ", "))
		}
		rows = append(rows, row)
	}

	footer := []string{"Available", ""}
	for _, d := range results.Dates {
		marker := ""
		if d.IsBest {
			marker = " *"
		}
		footer = append(footer, fmt.Sprintf("%d/%d%s", d.Count, results.TotalResponses, marker))
	}

	return export.Dataset{Headers: headers, Rows: rows, Footer: footer}
}

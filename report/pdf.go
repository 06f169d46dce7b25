package report

import (
	"bytes"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
)

const timestampLayout = "2006-01-02 15:04:05"

// table column widths in points, summing to PageWidth - 2*Margin
var columnWidths = []float64{30, 110, 80, 80, 80, 50, 125.28}

// PDFWriter lays captures and the project table out on A4 pages.
type PDFWriter struct {
	pdf       *fpdf.Fpdf
	tr        func(string) string
	title     string
	generated time.Time
	images    int
}

func NewPDFWriter(title string, generatedAt time.Time) *PDFWriter {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreationDate(generatedAt)
	pdf.SetMargins(Margin, Margin, Margin)
	pdf.SetAutoPageBreak(true, Margin)
	return &PDFWriter{
		pdf:       pdf,
		tr:        pdf.UnicodeTranslatorFromDescriptor(""),
		title:     title,
		generated: generatedAt,
	}
}

func (w *PDFWriter) header() {
	w.pdf.AddPage()
	w.pdf.SetFont("Helvetica", "", 18)
	w.pdf.Text(20, 30, w.tr(w.title))
	w.pdf.SetFont("Helvetica", "", 12)
	w.pdf.Text(20, 50, "Generated on: "+w.generated.Format(timestampLayout))
}

// ChartPage adds a page with the header and one PNG per slot.
func (w *PDFWriter) ChartPage(slots []Slot, images [][]byte) error {
	if len(slots) != len(images) {
		return errors.Errorf("report.ChartPage: %d slots for %d images", len(slots), len(images))
	}
	w.header()
	for i, slot := range slots {
		w.images++
		name := "chart" + strconv.Itoa(w.images)
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		w.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(images[i]))
		w.pdf.ImageOptions(name, slot.X, slot.Y, slot.W, slot.H, false, opts, 0, "")
	}
	return w.pdf.Error()
}

// TablePage adds a page with the header and the project rows.
func (w *PDFWriter) TablePage(rows []Row) error {
	w.header()
	w.pdf.SetY(Offset + Margin)
	w.pdf.SetFont("Helvetica", "B", 9)
	w.pdf.SetFillColor(230, 230, 230)
	for i, h := range TableHeader {
		w.pdf.CellFormat(columnWidths[i], 18, h, "1", 0, "L", true, 0, "")
	}
	w.pdf.Ln(-1)

	w.pdf.SetFont("Helvetica", "", 8)
	if len(rows) == 0 {
		w.pdf.CellFormat(PageWidth-Margin*2, 16, "No projects", "1", 1, "C", false, 0, "")
	}
	for _, r := range rows {
		for i, cell := range r.Cells() {
			w.pdf.CellFormat(columnWidths[i], 16, w.fit(w.tr(cell), columnWidths[i]), "1", 0, "L", false, 0, "")
		}
		w.pdf.Ln(-1)
	}
	return w.pdf.Error()
}

// fit truncates s to the cell width.
func (w *PDFWriter) fit(s string, width float64) string {
	lines := w.pdf.SplitText(s, width-4)
	if len(lines) <= 1 {
		return s
	}
	return lines[0] + "..."
}

func (w *PDFWriter) Output(out io.Writer) error {
	return errors.Wrap(w.pdf.Output(out), "report.Output")
}

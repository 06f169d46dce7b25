package report

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

// Render captures every chart, one after the other, and writes the A4 document to out.
// The first failed capture aborts the render and nothing is written.
func Render(ctx context.Context, r Report, capturer Capturer, filter TableFilter, out io.Writer) error {
	images := make([][]byte, len(r.Charts))
	for i, s := range r.Charts {
		img, err := capturer.Capture(ctx, s)
		if err != nil {
			return errors.Wrapf(err, "report.Render: chart %q", s.ID)
		}
		images[i] = img
	}

	doc := NewPDFWriter(r.Title, r.GeneratedAt)
	for _, page := range Plan(len(r.Charts)) {
		if page.Table {
			var rows []Row
			if r.Table != nil {
				rows = r.Table.Filter(filter)
			}
			if err := doc.TablePage(rows); err != nil {
				return err
			}
			continue
		}
		pageImages := make([][]byte, 0, len(page.Slots))
		for _, slot := range page.Slots {
			pageImages = append(pageImages, images[slot.Chart])
		}
		if err := doc.ChartPage(page.Slots, pageImages); err != nil {
			return err
		}
	}
	return doc.Output(out)
}

package report

// A4 portrait layout, in points.
const (
	PageWidth  = 595.28
	PageHeight = 841.89
	Margin     = 20.0
	Offset     = 70.0

	ChartsPerPage = 2
)

// SlotHeight is the height of one chart slot, two slots fitting under the page header.
const SlotHeight = (PageHeight - Margin*3 - Offset) / 2

// Slot is where one chart capture is drawn.
type Slot struct {
	Chart int
	X, Y  float64
	W, H  float64
}

// Page is one output page: chart slots, or the project table.
type Page struct {
	Slots []Slot
	Table bool
}

// Plan lays out n charts at most two per page, followed by the table page.
func Plan(n int) []Page {
	pages := make([]Page, 0, n/ChartsPerPage+2)
	for i := 0; i < n; i += ChartsPerPage {
		var p Page
		for j := 0; j < ChartsPerPage && i+j < n; j++ {
			p.Slots = append(p.Slots, Slot{
				Chart: i + j,
				X:     Margin,
				Y:     Offset + Margin + float64(j)*(SlotHeight+Margin),
				W:     PageWidth - Margin*2,
				H:     SlotHeight,
			})
		}
		pages = append(pages, p)
	}
	return append(pages, Page{Table: true})
}

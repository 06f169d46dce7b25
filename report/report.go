// Package report turns platform statistics into chart series, a filterable project table
// and a printable A4 document.
package report

import (
	"sort"
	"time"

	"github.com/trezcool/capstone/core/project"
)

// TopK is the number of projects shown in the top projects chart.
const TopK = 5

type Kind int

const (
	Pie Kind = iota + 1
	Bar
)

// Point is one labelled value of a series. Color is a #rrggbb hex string.
type Point struct {
	Label string
	Value float64
	Color string
}

// Series is the data of one chart.
type Series struct {
	ID     string
	Title  string
	Kind   Kind
	Points []Point
}

// Total returns the sum of the series values.
func (s Series) Total() float64 {
	var total float64
	for _, p := range s.Points {
		total += p.Value
	}
	return total
}

// FieldColors maps each known field to its chart colour.
var FieldColors = map[string]string{
	"Artificial Intelligence":    "#4bc0c0",
	"Data Science":               "#ff6384",
	"Cyber Security":             "#9966ff",
	"Software Engineering":       "#ff9f40",
	"Network Engineering":        "#36a2eb",
	"Human-Computer Interaction": "#ffce56",
	"Cloud Computing":            "#4bc0c0",
	"Information Systems":        "#9966ff",
	"Machine Learning":           "#ff6384",
	"Blockchain":                 "#36a2eb",
	"Other":                      "#ff9f40",
}

const (
	defaultColor  = "#c9cbcf"
	selectedColor = "#ffce56"
)

var roleColors = []string{"#ff6384", "#36a2eb", "#ffce56", "#4bc0c0"}

func fieldColor(field string) string {
	if c, ok := FieldColors[field]; ok {
		return c
	}
	return defaultColor
}

// Options tune Assemble.
type Options struct {
	Title string
	// SelectedField defaults to the first known field of the statistics.
	SelectedField string
	// Now is used for the generation timestamp. time.Now when nil.
	Now func() time.Time
}

// Report is everything a printable document is made of.
type Report struct {
	Title         string
	GeneratedAt   time.Time
	SelectedField string
	Fields        []string
	Charts        []Series
	Table         *Table
}

// Assemble builds the chart series and the project table. It never fetches.
func Assemble(stats project.Statistics, projects []project.Detail, opts Options) Report {
	if opts.Title == "" {
		opts.Title = "Project Statistics"
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	fields := make([]project.FieldCount, 0, len(stats.Fields))
	for _, f := range stats.Fields {
		if project.KnownField(f.Field) {
			fields = append(fields, f)
		}
	}
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Field)
	}

	selected := opts.SelectedField
	if !contains(names, selected) {
		selected = ""
		if len(names) > 0 {
			selected = names[0]
		}
	}

	return Report{
		Title:         opts.Title,
		GeneratedAt:   now(),
		SelectedField: selected,
		Fields:        names,
		Charts: []Series{
			Distribution(stats),
			PerField(fields),
			SelectedField(stats.Projects, selected),
			TopProjects(stats.Projects, TopK),
		},
		Table: NewTable(projects),
	}
}

// Distribution is the pie of users per role.
func Distribution(stats project.Statistics) Series {
	counts := []struct {
		label string
		value int
	}{
		{"Students", stats.TotalStudents},
		{"Clients", stats.TotalClients},
		{"Tutors", stats.TotalTutors},
		{"Coordinators", stats.TotalCoordinators},
	}
	s := Series{ID: "distribution", Title: "User Distribution", Kind: Pie}
	for i, c := range counts {
		s.Points = append(s.Points, Point{Label: c.label, Value: float64(c.value), Color: roleColors[i]})
	}
	return s
}

// PerField is the bar of allocated teams per field.
func PerField(fields []project.FieldCount) Series {
	s := Series{ID: "fields", Title: "Teams per Field", Kind: Bar, Points: []Point{}}
	for _, f := range fields {
		s.Points = append(s.Points, Point{Label: f.Field, Value: float64(f.Teams), Color: fieldColor(f.Field)})
	}
	return s
}

// SelectedField is the bar of allocated teams per project of one field.
func SelectedField(projects []project.ProjectCount, field string) Series {
	s := Series{ID: "selected", Title: "Projects in " + field, Kind: Bar, Points: []Point{}}
	for _, p := range projects {
		if p.Field == field {
			s.Points = append(s.Points, Point{Label: p.Title, Value: float64(p.Teams), Color: selectedColor})
		}
	}
	return s
}

// TopProjects is the bar of the k projects with the most teams. Ties keep the payload order.
func TopProjects(projects []project.ProjectCount, k int) Series {
	sorted := append([]project.ProjectCount(nil), projects...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Teams > sorted[j].Teams })
	if len(sorted) > k {
		sorted = sorted[:k]
	}
	s := Series{ID: "top", Title: "Top Projects", Kind: Bar, Points: []Point{}}
	for _, p := range sorted {
		s.Points = append(s.Points, Point{Label: p.Title, Value: float64(p.Teams), Color: fieldColor(p.Field)})
	}
	return s
}

// Select returns a copy of r whose selected-field chart follows field.
// Unknown fields are ignored.
func (r Report) Select(stats project.Statistics, field string) Report {
	if !contains(r.Fields, field) {
		return r
	}
	charts := append([]Series(nil), r.Charts...)
	for i, c := range charts {
		if c.ID == "selected" {
			charts[i] = SelectedField(stats.Projects, field)
		}
	}
	r.Charts = charts
	r.SelectedField = field
	return r
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

package report

import (
	"sort"
	"strconv"
	"strings"

	"github.com/trezcool/capstone/core/project"
)

type Column string

const (
	ColumnClient      Column = "client"
	ColumnTutor       Column = "tutor"
	ColumnCoordinator Column = "coordinator"
)

// TableHeader names the printed columns.
var TableHeader = []string{"ID", "Title", "Client", "Tutor", "Coordinator", "Teams", "Team Names"}

// Row is one project of the table.
type Row struct {
	ProjectID   int
	Title       string
	Client      string
	Tutor       string
	Coordinator string
	Allocated   int
	MaxTeams    int
	TeamNames   []string
}

// Cells renders the row in TableHeader order.
func (r Row) Cells() []string {
	capacity := "N/A"
	if r.MaxTeams > 0 {
		capacity = strconv.Itoa(r.MaxTeams)
	}
	return []string{
		strconv.Itoa(r.ProjectID),
		r.Title,
		r.Client,
		r.Tutor,
		r.Coordinator,
		strconv.Itoa(r.Allocated) + " / " + capacity,
		strings.Join(r.TeamNames, ", "),
	}
}

func (r Row) value(col Column) string {
	switch col {
	case ColumnClient:
		return r.Client
	case ColumnTutor:
		return r.Tutor
	case ColumnCoordinator:
		return r.Coordinator
	}
	return ""
}

// TableFilter keeps the rows equal to every non-empty name.
type TableFilter struct {
	Client      string
	Tutor       string
	Coordinator string
}

func (f TableFilter) keep(r Row) bool {
	return (f.Client == "" || r.Client == f.Client) &&
		(f.Tutor == "" || r.Tutor == f.Tutor) &&
		(f.Coordinator == "" || r.Coordinator == f.Coordinator)
}

// Table is the project list projected on the people in charge.
type Table struct {
	rows []Row
}

func NewTable(projects []project.Detail) *Table {
	rows := make([]Row, 0, len(projects))
	for _, p := range projects {
		names := make([]string, 0, len(p.AllocatedTeams))
		for _, t := range p.AllocatedTeams {
			names = append(names, t.TeamName)
		}
		rows = append(rows, Row{
			ProjectID:   p.ProjectID,
			Title:       p.Title,
			Client:      p.ClientName,
			Tutor:       p.TutorName,
			Coordinator: p.CoordinatorName,
			Allocated:   len(p.AllocatedTeams),
			MaxTeams:    p.MaxTeams,
			TeamNames:   names,
		})
	}
	return &Table{rows: rows}
}

// Rows returns every row.
func (t *Table) Rows() []Row {
	return append([]Row{}, t.rows...)
}

// Filter returns the rows matching f. The table itself is left untouched.
func (t *Table) Filter(f TableFilter) []Row {
	out := make([]Row, 0, len(t.rows))
	for _, r := range t.rows {
		if f.keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// UniqueValues returns the sorted distinct non-empty values of col, used to fill the filter choices.
func (t *Table) UniqueValues(col Column) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range t.rows {
		v := r.value(col)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

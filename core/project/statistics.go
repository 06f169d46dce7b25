package project

import (
	"github.com/trezcool/capstone/core/role"
	"github.com/trezcool/capstone/core/user"
)

type FieldCount struct {
	Field string `json:"field"`
	Teams int    `json:"teams"`
}

type ProjectCount struct {
	Title string `json:"title"`
	Field string `json:"field"`
	Teams int    `json:"teams"`
}

// Statistics is the payload of the statistics endpoint.
type Statistics struct {
	TotalStudents     int            `json:"totalStudents"`
	TotalClients      int            `json:"totalClients"`
	TotalTutors       int            `json:"totalTutors"`
	TotalCoordinators int            `json:"totalCoordinators"`
	Fields            []FieldCount   `json:"fields"`
	Projects          []ProjectCount `json:"projects"`
}

// ComputeStatistics counts users per role and allocated teams per field and per public project.
func ComputeStatistics(users []user.User, projects []Project) Statistics {
	stats := Statistics{Fields: []FieldCount{}, Projects: []ProjectCount{}}
	for _, u := range users {
		switch u.Role {
		case role.Student:
			stats.TotalStudents++
		case role.Client:
			stats.TotalClients++
		case role.Tutor:
			stats.TotalTutors++
		case role.Coordinator:
			stats.TotalCoordinators++
		}
	}

	perField := make(map[string]int)
	var order []string
	for _, p := range projects {
		if p.Archived {
			continue
		}
		if _, ok := perField[p.Field]; !ok {
			order = append(order, p.Field)
		}
		perField[p.Field] += len(p.TeamIDs)
		stats.Projects = append(stats.Projects, ProjectCount{Title: p.Title, Field: p.Field, Teams: len(p.TeamIDs)})
	}
	for _, f := range order {
		stats.Fields = append(stats.Fields, FieldCount{Field: f, Teams: perField[f]})
	}
	return stats
}

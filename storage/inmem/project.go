package inmemdb

import (
	"sort"

	"github.com/trezcool/capstone/core/project"
)

type projectRepository struct {
	db *projectTable
}

var _ project.Repository = (*projectRepository)(nil) // interface compliance check

func NewProjectRepository(db *DB) project.Repository {
	return &projectRepository{db: db.project}
}

func (repo *projectRepository) CreateProject(p project.Project) (project.Project, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pk++
	p.ID = repo.db.pk
	repo.db.table[p.ID] = &p
	return p, nil
}

func (repo *projectRepository) QueryProjects(archived bool) ([]project.Project, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	projects := make([]project.Project, 0, len(repo.db.table))
	for _, p := range repo.db.table {
		if p.Archived == archived {
			projects = append(projects, *p)
		}
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	return projects, nil
}

func (repo *projectRepository) GetProjectByID(id int) (project.Project, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.table[id]; ok {
		return *p, nil
	}
	return project.Project{}, project.ErrNotFound
}

func (repo *projectRepository) UpdateProject(p project.Project) (project.Project, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[p.ID]; !ok {
		return project.Project{}, project.ErrNotFound
	}
	repo.db.table[p.ID] = &p
	return p, nil
}

func (repo *projectRepository) DeleteProject(id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return project.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

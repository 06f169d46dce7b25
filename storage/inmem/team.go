package inmemdb

import (
	"sort"

	"github.com/trezcool/capstone/core/team"
)

type teamRepository struct {
	db *teamTable
}

var _ team.Repository = (*teamRepository)(nil) // interface compliance check

func NewTeamRepository(db *DB) team.Repository {
	return &teamRepository{db: db.team}
}

func (repo *teamRepository) query() []team.Team {
	teams := make([]team.Team, 0, len(repo.db.table))
	for _, t := range repo.db.table {
		teams = append(teams, *t)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams
}

func (repo *teamRepository) CreateTeam(t team.Team) (team.Team, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pk++
	t.ID = repo.db.pk
	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *teamRepository) QueryAllTeams() ([]team.Team, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *teamRepository) FilterTeams(course string) ([]team.Team, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	teams := make([]team.Team, 0)
	for _, t := range repo.query() {
		if course == "" || t.Course == course {
			teams = append(teams, t)
		}
	}
	return teams, nil
}

func (repo *teamRepository) GetTeamByID(id int) (team.Team, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.table[id]; ok {
		return *t, nil
	}
	return team.Team{}, team.ErrNotFound
}

func (repo *teamRepository) UpdateTeam(t team.Team) (team.Team, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[t.ID]; !ok {
		return team.Team{}, team.ErrNotFound
	}
	repo.db.table[t.ID] = &t
	return t, nil
}

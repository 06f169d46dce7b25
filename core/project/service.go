package project

import (
	"errors"

	"github.com/trezcool/capstone/core"
	"github.com/trezcool/capstone/core/role"
	"github.com/trezcool/capstone/core/user"
)

var (
	// errors
	ErrNotFound       = errors.New("project not found")
	ErrNotClient      = errors.New("project can only be assigned to client")
	ErrNotTutor       = errors.New("user is not a tutor")
	ErrSameTutor      = errors.New("tutor is already assigned to this project")
	ErrRoleNotAllowed = errors.New("user does not have the required role")
)

type (
	Repository interface {
		CreateProject(p Project) (Project, error)
		// QueryProjects returns archived or public projects.
		QueryProjects(archived bool) ([]Project, error)
		GetProjectByID(id int) (Project, error)
		UpdateProject(p Project) (Project, error)
		DeleteProject(id int) error
	}

	Service struct {
		repo  Repository
		users user.Repository
	}
)

func NewService(repo Repository, users user.Repository) *Service {
	return &Service{repo: repo, users: users}
}

func (svc *Service) client(email string) (user.User, error) {
	usr, err := svc.users.GetUserByEmail(core.CleanString(email, true /* lower */))
	if err != nil {
		return user.User{}, err
	}
	if usr.Role != role.Client {
		return user.User{}, ErrNotClient
	}
	return usr, nil
}

// Create stores a new public project owned by the client named in d.
func (svc *Service) Create(d Draft, coordinatorID int) (Project, error) {
	d.Clean()
	client, err := svc.client(d.ClientEmail)
	if err != nil {
		return Project{}, err
	}
	return svc.repo.CreateProject(Project{
		Title:         d.Title,
		Field:         d.Field,
		Description:   d.Description,
		MaxTeams:      d.MaxTeams,
		ClientID:      client.ID,
		CoordinatorID: coordinatorID,
		Skills:        d.RequiredSkills,
	})
}

func (svc *Service) Modify(id int, d Draft) (Project, error) {
	d.Clean()
	p, err := svc.repo.GetProjectByID(id)
	if err != nil {
		return Project{}, err
	}
	if d.ClientEmail != "" {
		client, err := svc.client(d.ClientEmail)
		if err != nil {
			return Project{}, err
		}
		p.ClientID = client.ID
	}
	if d.Title != "" {
		p.Title = d.Title
	}
	if d.Field != "" {
		p.Field = d.Field
	}
	if d.Description != "" {
		p.Description = d.Description
	}
	if d.MaxTeams > 0 {
		p.MaxTeams = d.MaxTeams
	}
	if len(d.RequiredSkills) > 0 {
		p.Skills = d.RequiredSkills
	}
	return svc.repo.UpdateProject(p)
}

func (svc *Service) GetByID(id int) (Project, error) {
	return svc.repo.GetProjectByID(id)
}

func (svc *Service) Public() ([]Project, error) {
	return svc.repo.QueryProjects(false)
}

func (svc *Service) Archived() ([]Project, error) {
	return svc.repo.QueryProjects(true)
}

// ByRole lists the projects a user is involved in.
func (svc *Service) ByRole(usr user.User) ([]Project, error) {
	all, err := svc.repo.QueryProjects(false)
	if err != nil {
		return nil, err
	}
	mine := make([]Project, 0)
	for _, p := range all {
		switch usr.Role {
		case role.Student:
			for _, id := range p.TeamIDs {
				if id == usr.TeamID && id != 0 {
					mine = append(mine, p)
					break
				}
			}
		case role.Client:
			if p.ClientID == usr.ID {
				mine = append(mine, p)
			}
		case role.Tutor:
			if p.TutorID == usr.ID {
				mine = append(mine, p)
			}
		case role.Coordinator:
			if p.CoordinatorID == usr.ID {
				mine = append(mine, p)
			}
		case role.Administrator:
			mine = append(mine, p)
		default:
			return nil, ErrRoleNotAllowed
		}
	}
	return mine, nil
}

func (svc *Service) Delete(id int) error {
	return svc.repo.DeleteProject(id)
}

func (svc *Service) Archive(id int) (Project, error) {
	p, err := svc.repo.GetProjectByID(id)
	if err != nil {
		return Project{}, err
	}
	p.Archived = true
	return svc.repo.UpdateProject(p)
}

func (svc *Service) AttachSpec(id int, link string) (Project, error) {
	p, err := svc.repo.GetProjectByID(id)
	if err != nil {
		return Project{}, err
	}
	p.SpecLink = link
	return svc.repo.UpdateProject(p)
}

func (svc *Service) ChangeTutor(tc TutorChange) (Project, error) {
	p, err := svc.repo.GetProjectByID(tc.ProjectID)
	if err != nil {
		return Project{}, err
	}
	tutor, err := svc.users.GetUserByID(tc.TutorID)
	if err != nil {
		return Project{}, err
	}
	if tutor.Role != role.Tutor {
		return Project{}, ErrNotTutor
	}
	if p.TutorID == tutor.ID {
		return Project{}, ErrSameTutor
	}
	p.TutorID = tutor.ID
	return svc.repo.UpdateProject(p)
}

func (svc *Service) Statistics() (Statistics, error) {
	users, err := svc.users.QueryAllUsers()
	if err != nil {
		return Statistics{}, err
	}
	projects, err := svc.repo.QueryProjects(false)
	if err != nil {
		return Statistics{}, err
	}
	return ComputeStatistics(users, projects), nil
}

package pages

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/capstone/core"
	"github.com/trezcool/capstone/core/project"
	"github.com/trezcool/capstone/gateway"
	"github.com/trezcool/capstone/listview"
	"github.com/trezcool/capstone/modal"
)

var errNoSpec = errors.New("this project has no specification")

// Projects lists, edits and archives projects.
type Projects struct {
	Public   *listview.Controller[project.Detail]
	Mine     *listview.Controller[project.Detail]
	Archived *listview.Controller[project.Detail]
	Delete   *modal.Workflow[project.Detail, struct{}]
	deps     Deps
}

func projectFields(p project.Detail) []string {
	return []string{p.Title, p.Field, p.ClientName, p.TutorName, strings.Join(p.RequiredSkills, " ")}
}

func NewProjects(d Deps) *Projects {
	endpoint := func(path func() string) listview.Fetcher[project.Detail] {
		return listview.Endpoint[project.Detail](d.API, d.Session, path)
	}
	ps := &Projects{
		deps:     d,
		Public:   listview.New[project.Detail](endpoint(func() string { return "v1/project/get/public_project/list" }), projectFields),
		Archived: listview.New[project.Detail](endpoint(func() string { return "v1/project/get/archived/list" }), projectFields),
		Mine: listview.New[project.Detail](
			endpoint(func() string { return "v1/project/get/list/byRole/" + itoa(d.Session.UserID()) }),
			projectFields,
		),
	}
	ps.Delete = modal.New[project.Detail, struct{}](d.API, ps.reloadActive, modal.Options[project.Detail, struct{}]{
		Build: func(_ context.Context, p project.Detail, _ struct{}) (gateway.Request, error) {
			return d.request(http.MethodDelete, "v1/project/delete/"+itoa(p.ProjectID), nil), nil
		},
		SuccessMessage: "Project deleted successfully",
	})
	return ps
}

func (ps *Projects) reloadActive(ctx context.Context) {
	ps.Public.Reload(ctx)
	ps.Mine.Reload(ctx)
}

func (ps *Projects) Detail(ctx context.Context, id int) (project.Detail, error) {
	var d project.Detail
	if err := ps.deps.get(ctx, "v1/project/detail/"+itoa(id), &d); err != nil {
		return project.Detail{}, err
	}
	return d, nil
}

// Create validates the draft, then posts it with the optional specification file.
func (ps *Projects) Create(ctx context.Context, d project.Draft, spec *gateway.File) (project.Created, error) {
	if err := d.Validate(ps.deps.Validate); err != nil {
		return project.Created{}, err
	}
	payload, err := ps.deps.API.Upload(ctx, ps.deps.request(http.MethodPost, "v1/project/create", nil), d.FormValues(), spec)
	if err != nil {
		return project.Created{}, err
	}
	var created project.Created
	if err := payload.Decode(&created); err != nil {
		return project.Created{}, errors.Wrap(err, "decoding created project")
	}
	ps.reloadActive(ctx)
	return created, nil
}

// Modify posts the changed fields of d. Blank fields are left as they are.
func (ps *Projects) Modify(ctx context.Context, id int, d project.Draft, spec *gateway.File) (project.Detail, error) {
	d.Clean()
	if d.MaxTeams < 0 {
		return project.Detail{}, core.NewValidationError(errors.New("maxTeams cannot be negative"))
	}
	fields := d.FormValues()
	for name, vals := range fields {
		if len(vals) == 0 || (len(vals) == 1 && vals[0] == "") {
			delete(fields, name)
		}
	}
	if d.MaxTeams == 0 {
		delete(fields, "maxTeams")
	}

	payload, err := ps.deps.API.Upload(ctx, ps.deps.request(http.MethodPost, "v1/project/modify/"+itoa(id), nil), fields, spec)
	if err != nil {
		return project.Detail{}, err
	}
	var detail project.Detail
	if err := payload.Decode(&detail); err != nil {
		return project.Detail{}, errors.Wrap(err, "decoding project")
	}
	ps.reloadActive(ctx)
	return detail, nil
}

// Archive moves a project out of the public list and returns the server's message.
func (ps *Projects) Archive(ctx context.Context, id int) (string, error) {
	payload, err := ps.deps.API.Do(ctx, ps.deps.request(http.MethodGet, "v1/project/archive/"+itoa(id), nil))
	if err != nil {
		return "", err
	}
	var res struct {
		Message string `json:"message"`
	}
	_ = payload.Decode(&res)
	ps.reloadActive(ctx)
	ps.Archived.Reload(ctx)
	return res.Message, nil
}

// UploadSpec attaches a specification file to a project and returns its link.
func (ps *Projects) UploadSpec(ctx context.Context, id int, spec *gateway.File) (string, error) {
	if spec == nil {
		return "", core.NewValidationError(errors.New("please choose a file"))
	}
	payload, err := ps.deps.API.Upload(ctx, ps.deps.request(http.MethodPost, "v1/project/upload/spec/"+itoa(id), nil), nil, spec)
	if err != nil {
		return "", err
	}
	var res struct {
		FileURL string `json:"fileURL"`
	}
	if err := payload.Decode(&res); err != nil {
		return "", errors.Wrap(err, "decoding upload")
	}
	return res.FileURL, nil
}

// DownloadSpec fetches the specification linked to p.
func (ps *Projects) DownloadSpec(ctx context.Context, p project.Detail) ([]byte, error) {
	if p.SpecLink == "" {
		return nil, errNoSpec
	}
	return ps.deps.API.Download(ctx, ps.deps.request(http.MethodGet, p.SpecLink, nil))
}

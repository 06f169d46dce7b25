package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/trezcool/capstone/core"
	"github.com/trezcool/capstone/core/role"
	"github.com/trezcool/capstone/core/session"
	"github.com/trezcool/capstone/core/user"
	"github.com/trezcool/capstone/gateway"
	"github.com/trezcool/capstone/pages"
	"github.com/trezcool/capstone/report"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	deps   pages.Deps
	writer *session.Writer
	out    io.Writer
	title  string
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -email EMAIL - log in, the password is prompted next")
	fmt.Fprintln(cli.out, "  logout - forget the current session")
	fmt.Fprintln(cli.out, "  whoami - show the current profile")
	fmt.Fprintln(cli.out, "  users [-search TERM] - list users")
	fmt.Fprintln(cli.out, "  assign-role -user ID -role ROLE - change a user's role")
	fmt.Fprintln(cli.out, "  tutors -project ID [-search TERM] - list the tutors assignable to a project")
	fmt.Fprintln(cli.out, "  assign-tutor -project ID -tutor ID - change a project's tutor")
	fmt.Fprintln(cli.out, "  teams [-course COURSE] [-search TERM] - list teams and unassigned students")
	fmt.Fprintln(cli.out, "  grades -team ID - show a team's sprint grades")
	fmt.Fprintln(cli.out, "  grade -team ID -sprint N -grade GRADE [-comment TEXT] - grade a sprint")
	fmt.Fprintln(cli.out, "  students [-search EMAIL] - list students")
	fmt.Fprintln(cli.out, "  share-card -channel ID -student EMAIL - share a student's card in a channel")
	fmt.Fprintln(cli.out, "  projects [-archived|-mine] [-search TERM] - list projects")
	fmt.Fprintln(cli.out, "  delete-project -project ID - delete a project")
	fmt.Fprintln(cli.out, "  upload-spec -project ID -file PATH - attach a specification to a project")
	fmt.Fprintln(cli.out, "  download-spec -project ID -out PATH - save a project's specification")
	fmt.Fprintln(cli.out, "  notifications [-clear] - list or clear notifications")
	fmt.Fprintln(cli.out, "  report -out PATH [-field F] [-client C] [-tutor T] [-coordinator C] - print the statistics report")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	loginCmd := flag.NewFlagSet("login", flag.ContinueOnError)
	loginEmail := loginCmd.String("email", "", "The user's email. The password will be prompted next.")

	usersCmd := flag.NewFlagSet("users", flag.ContinueOnError)
	usersSearch := usersCmd.String("search", "", "Only show users whose id, name or email contains TERM.")

	assignRoleCmd := flag.NewFlagSet("assign-role", flag.ContinueOnError)
	assignRoleUser := assignRoleCmd.Int("user", 0, "The user's id.")
	assignRoleRole := assignRoleCmd.String("role", "", "The new role, by id or label.")

	tutorsCmd := flag.NewFlagSet("tutors", flag.ContinueOnError)
	tutorsProject := tutorsCmd.Int("project", 0, "The project's id.")
	tutorsSearch := tutorsCmd.String("search", "", "Only show tutors whose name or email contains TERM.")

	assignTutorCmd := flag.NewFlagSet("assign-tutor", flag.ContinueOnError)
	assignTutorProject := assignTutorCmd.Int("project", 0, "The project's id.")
	assignTutorTutor := assignTutorCmd.Int("tutor", 0, "The tutor's user id.")

	teamsCmd := flag.NewFlagSet("teams", flag.ContinueOnError)
	teamsCourse := teamsCmd.String("course", "", "Only show the teams and students of COURSE.")
	teamsSearch := teamsCmd.String("search", "", "Filter both lists by TERM.")

	gradesCmd := flag.NewFlagSet("grades", flag.ContinueOnError)
	gradesTeam := gradesCmd.Int("team", 0, "The team's id.")

	gradeCmd := flag.NewFlagSet("grade", flag.ContinueOnError)
	gradeTeam := gradeCmd.Int("team", 0, "The team's id.")
	gradeSprint := gradeCmd.Int("sprint", 0, "The sprint number.")
	gradeGrade := gradeCmd.String("grade", "", "The grade, between 0 and 100. Empty clears it.")
	gradeComment := gradeCmd.String("comment", "", "A comment for the team.")

	studentsCmd := flag.NewFlagSet("students", flag.ContinueOnError)
	studentsSearch := studentsCmd.String("search", "", "Only show students whose email contains EMAIL.")

	shareCardCmd := flag.NewFlagSet("share-card", flag.ContinueOnError)
	shareCardChannel := shareCardCmd.Int("channel", 0, "The channel's id.")
	shareCardStudent := shareCardCmd.String("student", "", "The email of the student whose card is shared.")

	projectsCmd := flag.NewFlagSet("projects", flag.ContinueOnError)
	projectsArchived := projectsCmd.Bool("archived", false, "Show archived projects.")
	projectsMine := projectsCmd.Bool("mine", false, "Show the projects of the current user.")
	projectsSearch := projectsCmd.String("search", "", "Only show projects whose title, field or people contain TERM.")

	deleteCmd := flag.NewFlagSet("delete-project", flag.ContinueOnError)
	deleteProject := deleteCmd.Int("project", 0, "The project's id.")

	uploadCmd := flag.NewFlagSet("upload-spec", flag.ContinueOnError)
	uploadProject := uploadCmd.Int("project", 0, "The project's id.")
	uploadFile := uploadCmd.String("file", "", "The specification file.")

	downloadCmd := flag.NewFlagSet("download-spec", flag.ContinueOnError)
	downloadProject := downloadCmd.Int("project", 0, "The project's id.")
	downloadOut := downloadCmd.String("out", "", "Where to save the specification.")

	notificationsCmd := flag.NewFlagSet("notifications", flag.ContinueOnError)
	notificationsClear := notificationsCmd.Bool("clear", false, "Delete every notification.")

	reportCmd := flag.NewFlagSet("report", flag.ContinueOnError)
	reportOut := reportCmd.String("out", "", "Where to save the PDF.")
	reportField := reportCmd.String("field", "", "The field of the per-project chart.")
	reportClient := reportCmd.String("client", "", "Only list the projects of this client.")
	reportTutor := reportCmd.String("tutor", "", "Only list the projects of this tutor.")
	reportCoordinator := reportCmd.String("coordinator", "", "Only list the projects of this coordinator.")

	switch args[1] {
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *loginEmail == "" {
			loginCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(ctx, *loginEmail, string(pwd))
	case "logout":
		return cli.writer.Logout()
	case "whoami":
		return cli.whoami(ctx)
	case "users":
		if err := usersCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.users(ctx, *usersSearch)
	case "assign-role":
		if err := assignRoleCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		id, ok := role.Parse(*assignRoleRole)
		if *assignRoleUser == 0 || !ok {
			assignRoleCmd.Usage()
			return errHelp
		}
		return cli.assignRole(ctx, *assignRoleUser, id)
	case "tutors":
		if err := tutorsCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *tutorsProject == 0 {
			tutorsCmd.Usage()
			return errHelp
		}
		return cli.tutors(ctx, *tutorsProject, *tutorsSearch)
	case "assign-tutor":
		if err := assignTutorCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *assignTutorProject == 0 || *assignTutorTutor == 0 {
			assignTutorCmd.Usage()
			return errHelp
		}
		return cli.assignTutor(ctx, *assignTutorProject, *assignTutorTutor)
	case "teams":
		if err := teamsCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.teams(ctx, *teamsCourse, *teamsSearch)
	case "grades":
		if err := gradesCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *gradesTeam == 0 {
			gradesCmd.Usage()
			return errHelp
		}
		return cli.grades(ctx, *gradesTeam)
	case "grade":
		if err := gradeCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *gradeTeam == 0 || *gradeSprint == 0 {
			gradeCmd.Usage()
			return errHelp
		}
		return cli.grade(ctx, *gradeTeam, *gradeSprint, *gradeGrade, *gradeComment)
	case "students":
		if err := studentsCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.students(ctx, *studentsSearch)
	case "share-card":
		if err := shareCardCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *shareCardChannel == 0 || *shareCardStudent == "" {
			shareCardCmd.Usage()
			return errHelp
		}
		return cli.shareCard(ctx, *shareCardChannel, *shareCardStudent)
	case "projects":
		if err := projectsCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *projectsArchived && *projectsMine {
			projectsCmd.Usage()
			return errHelp
		}
		return cli.projects(ctx, *projectsArchived, *projectsMine, *projectsSearch)
	case "delete-project":
		if err := deleteCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *deleteProject == 0 {
			deleteCmd.Usage()
			return errHelp
		}
		return cli.deleteProject(ctx, *deleteProject)
	case "upload-spec":
		if err := uploadCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *uploadProject == 0 || *uploadFile == "" {
			uploadCmd.Usage()
			return errHelp
		}
		return cli.uploadSpec(ctx, *uploadProject, *uploadFile)
	case "download-spec":
		if err := downloadCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *downloadProject == 0 || *downloadOut == "" {
			downloadCmd.Usage()
			return errHelp
		}
		return cli.downloadSpec(ctx, *downloadProject, *downloadOut)
	case "notifications":
		if err := notificationsCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.notifications(ctx, *notificationsClear)
	case "report":
		if err := reportCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *reportOut == "" {
			reportCmd.Usage()
			return errHelp
		}
		filter := report.TableFilter{Client: *reportClient, Tutor: *reportTutor, Coordinator: *reportCoordinator}
		return cli.report(ctx, *reportOut, *reportField, filter)
	default:
		cli.printUsage()
		return errHelp
	}
}

// errorMessage renders err for the terminal.
func (cli *commandLine) errorMessage(err error) string {
	return core.TranslateError(err, cli.deps.Translator)
}

func (cli *commandLine) table() *tabwriter.Writer {
	return tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
}

func (cli *commandLine) row(w io.Writer, cells ...string) {
	fmt.Fprintln(w, strings.Join(cells, "\t"))
}

func roleLabel(id role.ID) string {
	if r, ok := role.Lookup(id); ok {
		return r.Label
	}
	return "-"
}

func (cli *commandLine) login(ctx context.Context, email, pwd string) error {
	sess, err := pages.NewAuth(cli.deps, cli.writer).Login(ctx, user.Credentials{Email: email, Password: pwd})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Logged in as %s (%s)\n", sess.Name, roleLabel(sess.Role))
	return nil
}

func (cli *commandLine) whoami(ctx context.Context) error {
	p, err := pages.Profile(ctx, cli.deps, cli.writer)
	if err != nil {
		return err
	}
	w := cli.table()
	cli.row(w, "Name:", p.Name)
	cli.row(w, "Email:", p.Email)
	cli.row(w, "Role:", roleLabel(p.Role))
	if p.Organization != "" {
		cli.row(w, "Organization:", p.Organization)
	}
	if len(p.Skills) > 0 {
		cli.row(w, "Skills:", strings.Join(p.Skills, ", "))
	}
	return w.Flush()
}

func (cli *commandLine) users(ctx context.Context, search string) error {
	rm := pages.NewRoleManager(cli.deps, cli.writer)
	defer rm.Users.Close()
	if err := rm.Users.Load(ctx); err != nil {
		return err
	}
	w := cli.table()
	cli.row(w, "ID", "NAME", "EMAIL", "ROLE")
	for _, u := range rm.Users.Filter(search) {
		cli.row(w, strconv.Itoa(u.UserID), u.UserName, u.Email, roleLabel(u.Role))
	}
	return w.Flush()
}

func (cli *commandLine) assignRole(ctx context.Context, userID int, id role.ID) error {
	rm := pages.NewRoleManager(cli.deps, cli.writer)
	defer rm.Users.Close()
	if err := rm.Users.Load(ctx); err != nil {
		return err
	}
	var subject *user.ListItem
	for _, u := range rm.Users.Source() {
		if u.UserID == userID {
			u := u
			subject = &u
			break
		}
	}
	if subject == nil {
		return user.ErrNotFound
	}
	if err := rm.Assign.Open(*subject); err != nil {
		return err
	}
	if err := rm.Assign.Edit(func(e *pages.RoleEdit) { e.Role = id }); err != nil {
		return err
	}
	if err := rm.Assign.Submit(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, rm.Assign.Alert().Message)
	return nil
}

func (cli *commandLine) tutors(ctx context.Context, projectID int, search string) error {
	p, err := pages.NewProjects(cli.deps).Detail(ctx, projectID)
	if err != nil {
		return err
	}
	ta := pages.NewTutorAssign(cli.deps, p, nil)
	defer ta.Tutors.Close()
	if err := ta.Tutors.Load(ctx); err != nil {
		return err
	}
	w := cli.table()
	cli.row(w, "ID", "NAME", "EMAIL", "")
	for _, u := range ta.Tutors.Filter(search) {
		current := ""
		if !ta.Assignable(u) {
			current = "(current)"
		}
		cli.row(w, strconv.Itoa(u.UserID), u.UserName, u.Email, current)
	}
	return w.Flush()
}

func (cli *commandLine) assignTutor(ctx context.Context, projectID, tutorID int) error {
	p, err := pages.NewProjects(cli.deps).Detail(ctx, projectID)
	if err != nil {
		return err
	}
	ta := pages.NewTutorAssign(cli.deps, p, nil)
	defer ta.Tutors.Close()
	if err := ta.Tutors.Load(ctx); err != nil {
		return err
	}
	for _, u := range ta.Tutors.Source() {
		if u.UserID != tutorID {
			continue
		}
		if err := ta.Assign.Open(u); err != nil {
			return err
		}
		if err := ta.Assign.Submit(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, ta.Assign.Alert().Message)
		return nil
	}
	return user.ErrNotFound
}

func (cli *commandLine) teams(ctx context.Context, course, search string) error {
	tr := pages.NewTeamRoster(cli.deps)
	defer tr.Teams.Close()
	defer tr.Students.Close()
	if err := tr.SetCourse(ctx, course); err != nil {
		return err
	}
	w := cli.table()
	cli.row(w, "TEAM", "NAME", "SKILLS")
	for _, t := range tr.Teams.Filter(search) {
		cli.row(w, strconv.Itoa(t.TeamID), t.TeamName, strings.Join(t.TeamSkills, ", "))
	}
	cli.row(w)
	cli.row(w, "STUDENT", "NAME", "EMAIL")
	for _, s := range tr.Students.Filter(search) {
		cli.row(w, strconv.Itoa(s.UserID), s.UserName, s.Email)
	}
	return w.Flush()
}

func (cli *commandLine) grades(ctx context.Context, teamID int) error {
	ge := pages.NewGradeEntry(cli.deps, func(context.Context) {})
	if err := ge.Open(ctx, teamID); err != nil {
		return err
	}
	g, _ := ge.Modal.Subject()
	w := cli.table()
	cli.row(w, "SPRINT", "GRADE", "COMMENT")
	for _, s := range g.Sprints {
		grade := "-"
		if s.Grade != nil {
			grade = strconv.Itoa(*s.Grade)
		}
		cli.row(w, strconv.Itoa(s.SprintNum), grade, s.Comment)
	}
	return w.Flush()
}

func (cli *commandLine) grade(ctx context.Context, teamID, sprint int, grade, comment string) error {
	ge := pages.NewGradeEntry(cli.deps, func(context.Context) {})
	if err := ge.Open(ctx, teamID); err != nil {
		return err
	}
	if err := ge.SetGrade(sprint, grade, comment); err != nil {
		return err
	}
	if err := ge.Modal.Submit(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, ge.Modal.Alert().Message)
	return nil
}

func (cli *commandLine) students(ctx context.Context, search string) error {
	cp := pages.NewCardPicker(cli.deps)
	defer cp.Students.Close()
	if err := cp.Students.Load(ctx); err != nil {
		return err
	}
	w := cli.table()
	cli.row(w, "ID", "NAME", "EMAIL", "SKILLS")
	for _, s := range cp.Students.Filter(search) {
		cli.row(w, strconv.Itoa(s.UserID), s.UserName, s.Email, strings.Join(s.Skills, ", "))
	}
	return w.Flush()
}

func (cli *commandLine) shareCard(ctx context.Context, channelID int, email string) error {
	cp := pages.NewCardPicker(cli.deps)
	defer cp.Students.Close()
	if err := cp.Students.Load(ctx); err != nil {
		return err
	}
	for _, s := range cp.Students.Source() {
		if !strings.EqualFold(s.Email, email) {
			continue
		}
		msg, err := cp.Share(ctx, channelID, s)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Shared %s's card (message %d)\n", s.UserName, msg.ID)
		return nil
	}
	return user.ErrNotFound
}

func (cli *commandLine) projects(ctx context.Context, archived, mine bool, search string) error {
	ps := pages.NewProjects(cli.deps)
	list := ps.Public
	switch {
	case archived:
		list = ps.Archived
	case mine:
		list = ps.Mine
	}
	defer list.Close()
	if err := list.Load(ctx); err != nil {
		return err
	}
	w := cli.table()
	cli.row(w, "ID", "TITLE", "FIELD", "CLIENT", "TUTOR", "TEAMS")
	for _, p := range list.Filter(search) {
		maxTeams := "N/A"
		if p.MaxTeams > 0 {
			maxTeams = strconv.Itoa(p.MaxTeams)
		}
		cli.row(w, strconv.Itoa(p.ProjectID), p.Title, p.Field, p.ClientName, p.TutorName,
			strconv.Itoa(len(p.AllocatedTeams))+" / "+maxTeams)
	}
	return w.Flush()
}

func (cli *commandLine) deleteProject(ctx context.Context, projectID int) error {
	ps := pages.NewProjects(cli.deps)
	p, err := ps.Detail(ctx, projectID)
	if err != nil {
		return err
	}
	if err := ps.Delete.Open(p); err != nil {
		return err
	}
	if err := ps.Delete.Submit(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, ps.Delete.Alert().Message)
	return nil
}

func (cli *commandLine) uploadSpec(ctx context.Context, projectID int, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	link, err := pages.NewProjects(cli.deps).UploadSpec(ctx, projectID, &gateway.File{Name: filepath.Base(path), Content: f})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Specification uploaded: %s\n", link)
	return nil
}

func (cli *commandLine) downloadSpec(ctx context.Context, projectID int, path string) error {
	ps := pages.NewProjects(cli.deps)
	p, err := ps.Detail(ctx, projectID)
	if err != nil {
		return err
	}
	content, err := ps.DownloadSpec(ctx, p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Saved %s (%d bytes)\n", path, len(content))
	return nil
}

func (cli *commandLine) notifications(ctx context.Context, clearAll bool) error {
	n := pages.NewNotifications(cli.deps)
	defer n.List.Close()
	if clearAll {
		if err := n.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "Notifications cleared")
		return nil
	}
	if err := n.List.Load(ctx); err != nil {
		return err
	}
	items := n.List.Items()
	if len(items) == 0 {
		fmt.Fprintln(cli.out, "No notifications")
		return nil
	}
	for _, item := range items {
		fmt.Fprintln(cli.out, "- "+item.Content)
	}
	return nil
}

func (cli *commandLine) report(ctx context.Context, path, field string, filter report.TableFilter) error {
	r, _, err := pages.Report(ctx, cli.deps, report.Options{Title: cli.title, SelectedField: field})
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.Render(ctx, r, report.NewChartCapturer(), filter, f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Report saved to %s\n", path)
	return nil
}

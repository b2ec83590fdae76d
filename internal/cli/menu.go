package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/godilite/intra-stats/internal/format"
	"github.com/godilite/intra-stats/internal/service"
	"github.com/godilite/intra-stats/pkg/export"
)

const clearScreen = "\033[H\033[2J"

const (
	welcome = "what would you like to know?"

	goBack      = "Go Back"
	quit        = "Quit"
	fullList    = "Get Full List"
	exportItem  = "Export Report"
	minYear     = 2013
	loginPrompt = "login"
)

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeSkip
	outcomeExit
)

type module struct {
	name string
	run  func(ctx context.Context) (outcome, error)
}

// Menu is the interactive front end.
type Menu struct {
	h      *Handlers
	prompt Prompter
	out    io.Writer
}

func NewMenu(h *Handlers, prompt Prompter, out io.Writer) *Menu {
	return &Menu{h: h, prompt: prompt, out: out}
}

// Run loops over the main menu until the user quits. Cancelling the prompt
// is a regular exit.
func (m *Menu) Run(ctx context.Context) error {
	modules := []module{
		{"Evaluator Score", m.evaluatorScore},
		{"Odds Of Failing", m.failOdds},
		{"Evaluator Network", m.network},
		{"Piscine", m.piscine},
		{"Feature Request", m.featureRequest},
	}
	err := m.loop(ctx, welcome, modules, false)
	if errors.Is(err, ErrAborted) {
		return nil
	}
	return err
}

// loop shows modules until one asks to exit. Sub menus return to their
// parent on "Go Back".
func (m *Menu) loop(ctx context.Context, title string, modules []module, canGoBack bool) error {
	items := make([]string, 0, len(modules)+2)
	for _, mod := range modules {
		items = append(items, mod.name)
	}
	if canGoBack {
		items = append(items, goBack)
	}
	items = append(items, quit)

	cursor := 0
	for {
		m.clear()
		i, err := m.prompt.Select(title, items, cursor)
		if err != nil {
			return err
		}
		cursor = i
		switch items[i] {
		case quit:
			return ErrAborted
		case goBack:
			return nil
		}

		m.clear()
		result, err := modules[i].run(ctx)
		if err != nil {
			var display *DisplayError
			if !errors.As(err, &display) {
				return err
			}
			fmt.Fprintln(m.out, display.Message)
			result = outcomeSuccess
		}

		switch result {
		case outcomeExit:
			return ErrAborted
		case outcomeSkip:
			continue
		}
		if err := m.pause(); err != nil {
			return err
		}
	}
}

// pause waits for the user to go back or quit.
func (m *Menu) pause() error {
	i, err := m.prompt.Select("", []string{goBack, quit}, 0)
	if err != nil {
		return err
	}
	if i == 1 {
		return ErrAborted
	}
	return nil
}

func (m *Menu) clear() {
	io.WriteString(m.out, clearScreen)
}

func (m *Menu) login() (string, error) {
	login, err := m.prompt.Input(loginPrompt, "", nil)
	return strings.TrimSpace(login), err
}

func (m *Menu) evaluatorScore(ctx context.Context) (outcome, error) {
	login, err := m.login()
	if err != nil {
		return outcomeExit, err
	}
	result, err := m.h.EvaluatorScore(ctx, login)
	if err != nil {
		return outcomeSuccess, err
	}
	fmt.Fprintln(m.out, result)
	return outcomeSuccess, nil
}

func (m *Menu) failOdds(ctx context.Context) (outcome, error) {
	login, err := m.login()
	if err != nil {
		return outcomeExit, err
	}
	result, err := m.h.FailOdds(ctx, login)
	if err != nil {
		return outcomeSuccess, err
	}
	fmt.Fprintln(m.out, result)
	return outcomeSuccess, nil
}

func (m *Menu) network(ctx context.Context) (outcome, error) {
	login, err := m.login()
	if err != nil {
		return outcomeExit, err
	}
	network, err := m.h.Network(ctx, login)
	if err != nil {
		return outcomeSuccess, err
	}

	m.clear()
	fmt.Fprint(m.out, format.NetworkTable(login, network, defaultTopCount))
	for {
		i, err := m.prompt.Select("", []string{fullList, exportItem, goBack}, 0)
		if err != nil {
			return outcomeExit, err
		}
		switch i {
		case 0:
			m.clear()
			fmt.Fprint(m.out, format.NetworkTable(login, network, 0))
			return outcomeSuccess, nil
		case 1:
			exts := export.Extensions()
			path, err := m.prompt.Input("file ("+strings.Join(exts, " or ")+")", login+"-network"+exts[0], nil)
			if err != nil {
				return outcomeExit, err
			}
			if err := m.h.ExportNetwork(network, path); err != nil {
				fmt.Fprintln(m.out, "error: "+err.Error())
				continue
			}
			fmt.Fprintln(m.out, "exported to "+path)
		default:
			return outcomeSkip, nil
		}
	}
}

func (m *Menu) featureRequest(context.Context) (outcome, error) {
	fmt.Fprintf(m.out, "for feature requests, please open an issue: %s/\n", issuesURL)
	return outcomeSuccess, nil
}

func (m *Menu) piscine(ctx context.Context) (outcome, error) {
	err := m.loop(ctx, "Analyze Piscine Data", []module{
		{"Accepted Pisciners", m.acceptedPisciners},
		{"Pisciners not correctly subscribed to the Exam", m.examRegistration},
		{"Projects Status", m.projectsStatus},
	}, true)
	if err != nil {
		return outcomeExit, err
	}
	return outcomeSkip, nil
}

func (m *Menu) campus(title string) (int, error) {
	campuses := m.h.campuses.All()
	names := make([]string, len(campuses))
	for i, c := range campuses {
		names[i] = c.Name
	}
	i, err := m.prompt.Select(title+"\n\nSelect your campus", names, 0)
	if err != nil {
		return 0, err
	}
	return campuses[i].ID, nil
}

func (m *Menu) cohort(title string) (service.PiscineQuery, error) {
	campusID, err := m.campus(title)
	if err != nil {
		return service.PiscineQuery{}, err
	}

	now := m.h.now()
	rawYear, err := m.prompt.Input("Year of the Piscine", strconv.Itoa(now.Year()), validateYear)
	if err != nil {
		return service.PiscineQuery{}, err
	}
	year, _ := strconv.Atoi(strings.TrimSpace(rawYear))

	months := make([]string, 12)
	for i := range months {
		months[i] = time.Month(i + 1).String()
	}
	mi, err := m.prompt.Select("Month of the Piscine", months, int(now.Month())-1)
	if err != nil {
		return service.PiscineQuery{}, err
	}

	q := service.PiscineQuery{CampusID: campusID, Year: year, Month: service.PoolMonth(time.Month(mi + 1))}
	fmt.Fprint(m.out, m.h.PiscineHeader(q))
	return q, nil
}

func validateYear(raw string) error {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return errors.New("year must be a number")
	}
	if year < minYear {
		return fmt.Errorf("year must be %d or later", minYear)
	}
	return nil
}

func (m *Menu) acceptedPisciners(ctx context.Context) (outcome, error) {
	q, err := m.cohort("Gets the Pisciners which got accepted to 42.\n" +
		"Note: Only accepted Pisciners who already registered to the Kickoff are shown in this list.")
	if err != nil {
		return outcomeExit, err
	}
	result, err := m.h.AcceptedPisciners(ctx, q)
	if err != nil {
		return outcomeSuccess, err
	}
	fmt.Fprint(m.out, "\n"+result)
	return outcomeSuccess, nil
}

func (m *Menu) examRegistration(ctx context.Context) (outcome, error) {
	campusID, err := m.campus("Compares exam subscriptions with project registrations of the current Piscine.")
	if err != nil {
		return outcomeExit, err
	}
	exams, err := m.h.PiscineExams(ctx, campusID)
	if err != nil {
		return outcomeSuccess, err
	}

	exam := exams[0]
	if len(exams) > 1 {
		names := make([]string, len(exams))
		for i, e := range exams {
			names[i] = e.Name
		}
		i, err := m.prompt.Select("Select an exam", names, 0)
		if err != nil {
			return outcomeExit, err
		}
		exam = exams[i]
	}

	result, err := m.h.ExamRegistration(ctx, exam, campusID)
	if err != nil {
		return outcomeSuccess, err
	}
	fmt.Fprint(m.out, result)
	return outcomeSuccess, nil
}

func (m *Menu) projectsStatus(ctx context.Context) (outcome, error) {
	q, err := m.cohort("Gets the current project status summary of Pisciners.")
	if err != nil {
		return outcomeExit, err
	}
	report, err := m.h.ProjectStatus(ctx, q)
	if err != nil {
		return outcomeSuccess, err
	}

	items := append(ProjectNames(report), goBack, quit)
	cursor := 0
	for {
		m.clear()
		fmt.Fprint(m.out, format.StatusOverview(report))

		i, err := m.prompt.Select("Select a project", items, cursor)
		if err != nil {
			return outcomeExit, err
		}
		switch items[i] {
		case quit:
			return outcomeExit, nil
		case goBack:
			return outcomeSkip, nil
		}
		cursor = i

		m.clear()
		detail, err := m.h.ProjectDetail(report, items[i])
		if err != nil {
			return outcomeSuccess, err
		}
		fmt.Fprint(m.out, detail)
		if err := m.pause(); err != nil {
			if errors.Is(err, ErrAborted) {
				return outcomeExit, nil
			}
			return outcomeExit, err
		}
	}
}

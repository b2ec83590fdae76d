package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/godilite/intra-stats/internal/config"
	"github.com/godilite/intra-stats/internal/format"
	"github.com/godilite/intra-stats/internal/repository"
	"github.com/godilite/intra-stats/internal/repository/models"
	"github.com/godilite/intra-stats/internal/service"
	"github.com/godilite/intra-stats/pkg/export"
	"github.com/godilite/intra-stats/pkg/intra"
	"go.uber.org/zap"
)

const (
	issuesURL       = "https://github.com/42-stats/42-stats/issues"
	loginColumns    = 6
	defaultTopCount = 10
)

// Handlers runs one statistic per call and renders the result as text.
type Handlers struct {
	stats    StatsService
	campuses config.Campuses
	logger   *zap.Logger
	progress func(text string) Progress
	notifier NotifierSetter
	now      func() time.Time
}

type HandlerOption func(*Handlers)

// WithProgress sets the factory used for every blocking fetch.
func WithProgress(newProgress func(text string) Progress) HandlerOption {
	return func(h *Handlers) {
		if newProgress != nil {
			h.progress = newProgress
		}
	}
}

func WithNotifierSetter(n NotifierSetter) HandlerOption {
	return func(h *Handlers) {
		h.notifier = n
	}
}

func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handlers) {
		if now != nil {
			h.now = now
		}
	}
}

// NewHandlers initializes the handlers.
func NewHandlers(stats StatsService, campuses config.Campuses, logger *zap.Logger, opts ...HandlerOption) *Handlers {
	if stats == nil {
		panic("nil StatsService provided to NewHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handlers{
		stats:    stats,
		campuses: campuses,
		logger:   logger.Named("cli"),
		progress: func(string) Progress { return noProgress{} },
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type noProgress struct{}

func (noProgress) Start()        {}
func (noProgress) Stop()         {}
func (noProgress) Status(string) {}

// withProgress shows a progress indicator for the duration of fn.
func (h *Handlers) withProgress(text string, fn func() error) error {
	p := h.progress(text)
	if h.notifier != nil {
		h.notifier.SetNotifier(p)
		defer h.notifier.SetNotifier(nil)
	}
	p.Start()
	defer p.Stop()
	return fn()
}

func (h *Handlers) EvaluatorScore(ctx context.Context, login string) (string, error) {
	var avg float64
	err := h.withProgress(fmt.Sprintf("Fetching evaluations involving %s as a corrector", login), func() (err error) {
		avg, err = h.stats.EvaluatorAverage(ctx, login)
		return err
	})
	if err != nil {
		return "", h.handleError(ctx, "EvaluatorScore", err)
	}
	return format.Percentage(avg), nil
}

func (h *Handlers) FailOdds(ctx context.Context, login string) (string, error) {
	var odds float64
	err := h.withProgress(fmt.Sprintf("Fetching evaluations involving %s as corrected", login), func() (err error) {
		odds, err = h.stats.FailureOdds(ctx, login)
		return err
	})
	if err != nil {
		return "", h.handleError(ctx, "FailOdds", err)
	}
	return format.Percentage(odds), nil
}

func (h *Handlers) Network(ctx context.Context, login string) (service.Network, error) {
	var network service.Network
	err := h.withProgress(fmt.Sprintf("Fetching evaluations involving %s", login), func() (err error) {
		network, err = h.stats.EvaluatorNetwork(ctx, login)
		return err
	})
	if err != nil {
		return service.Network{}, h.handleError(ctx, "Network", err)
	}
	return network, nil
}

// ExportNetwork writes the network to path; the extension picks the format.
func (h *Handlers) ExportNetwork(network service.Network, path string) error {
	exporter, err := export.ForPath(path)
	if err != nil {
		return err
	}
	data, err := exporter.Render(NetworkDataset(network))
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	h.logger.Info("exported network", zap.String("path", path), zap.Int("rows", network.Combined.Len()))
	return nil
}

// NetworkDataset lists every counterpart ranked by combined interactions.
func NetworkDataset(network service.Network) export.Dataset {
	ds := export.Dataset{
		Title: "Evaluation network of " + network.Login,
		Headers: []string{
			"login",
			"evaluated you", "average received",
			"you evaluated", "average given",
			"combined", "combined average",
		},
	}
	for _, c := range network.Combined.Ranked(0) {
		by, _ := network.EvaluatedBy.Get(c.Login)
		ed, _ := network.Evaluated.Get(c.Login)
		ds.Rows = append(ds.Rows, []string{
			c.Login,
			strconv.Itoa(by.Count), averageCell(by),
			strconv.Itoa(ed.Count), averageCell(ed),
			strconv.Itoa(c.Count), averageCell(c),
		})
	}
	return ds
}

func averageCell(i service.Interaction) string {
	if i.Count == 0 {
		return ""
	}
	return strconv.FormatFloat(i.Average, 'f', 2, 64)
}

// PiscineHeader names the selected cohort.
func (h *Handlers) PiscineHeader(q service.PiscineQuery) string {
	return fmt.Sprintf("Campus: %s\nPiscine: %s %d\n", h.campuses.Name(q.CampusID), format.Month(q.Month), q.Year)
}

func (h *Handlers) AcceptedPisciners(ctx context.Context, q service.PiscineQuery) (string, error) {
	var logins []string
	err := h.withProgress("Fetching accepted Pisciners", func() (err error) {
		logins, err = h.stats.AcceptedPisciners(ctx, q)
		return err
	})
	if err != nil {
		return "", h.handleError(ctx, "AcceptedPisciners", err)
	}
	return loginList("Pisciners registered to Kickoff:\n\n", logins), nil
}

func loginList(title string, logins []string) string {
	var b strings.Builder
	b.WriteString(title)
	if len(logins) > 0 {
		b.WriteString(format.Columns(logins, loginColumns))
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "\nTotal: %d\n", len(logins))
	return b.String()
}

// ActiveCampusLogins lists the active users of a campus.
func (h *Handlers) ActiveCampusLogins(ctx context.Context, campusID int) (string, error) {
	var logins []string
	err := h.withProgress(fmt.Sprintf("Fetching users of %s", h.campuses.Name(campusID)), func() (err error) {
		logins, err = h.stats.ActiveCampusLogins(ctx, campusID)
		return err
	})
	if err != nil {
		return "", h.handleError(ctx, "ActiveCampusLogins", err)
	}
	return loginList(fmt.Sprintf("Active users of %s:\n\n", h.campuses.Name(campusID)), logins), nil
}

func (h *Handlers) PiscineExams(ctx context.Context, campusID int) ([]models.Exam, error) {
	var exams []models.Exam
	err := h.withProgress("Fetching Exams", func() (err error) {
		exams, err = h.stats.PiscineExams(ctx, campusID)
		return err
	})
	if err != nil {
		return nil, h.handleError(ctx, "PiscineExams", err)
	}
	return exams, nil
}

func (h *Handlers) ExamRegistration(ctx context.Context, exam models.Exam, campusID int) (string, error) {
	var reg service.ExamRegistration
	err := h.withProgress("Fetching Project Users", func() (err error) {
		reg, err = h.stats.ExamRegistration(ctx, exam, campusID, h.now())
		return err
	})
	if err != nil {
		return "", h.handleError(ctx, "ExamRegistration", err)
	}
	return format.ExamReport(reg), nil
}

// ExamRegistrations reports every upcoming piscine exam of the campus.
func (h *Handlers) ExamRegistrations(ctx context.Context, campusID int) (string, error) {
	var regs []service.ExamRegistration
	err := h.withProgress("Fetching Exams", func() (err error) {
		regs, err = h.stats.ExamRegistrations(ctx, campusID, h.now())
		return err
	})
	if err != nil {
		return "", h.handleError(ctx, "ExamRegistrations", err)
	}

	reports := make([]string, len(regs))
	for i, reg := range regs {
		reports[i] = format.ExamReport(reg)
	}
	return strings.Join(reports, "\n"), nil
}

func (h *Handlers) ProjectStatus(ctx context.Context, q service.PiscineQuery) (service.StatusReport, error) {
	var report service.StatusReport
	err := h.withProgress("Fetching Pisciners and their projects", func() (err error) {
		report, err = h.stats.ProjectStatus(ctx, q)
		return err
	})
	if err != nil {
		return service.StatusReport{}, h.handleError(ctx, "ProjectStatus", err)
	}
	return report, nil
}

// ProjectNames lists the distinct projects of a report, sorted.
func ProjectNames(report service.StatusReport) []string {
	names := make([]string, len(report.Projects))
	for i, p := range report.Projects {
		names[i] = p.Name
	}
	return names
}

func (h *Handlers) ProjectDetail(report service.StatusReport, project string) (string, error) {
	d, err := service.DrillDown(report.CohortSize, report.Enrollments, project)
	if err != nil {
		return "", &DisplayError{Message: "error: " + err.Error(), Err: err}
	}
	return format.ProjectDetail(d), nil
}

// DisplayError is an error whose message is meant for the user.
type DisplayError struct {
	Message string
	Err     error
}

func (e *DisplayError) Error() string { return e.Message }
func (e *DisplayError) Unwrap() error { return e.Err }

func (h *Handlers) handleError(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		h.logger.Warn("operation canceled", zap.String("op", op))
		return &DisplayError{Message: "interrupted", Err: err}
	}

	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrNoMarkedEvaluations),
		errors.Is(err, service.ErrNoPisciners),
		errors.Is(err, service.ErrNoProjects),
		errors.Is(err, service.ErrNoExams):
		h.logger.Info("nothing to report", zap.String("op", op), zap.Error(err))
	case errors.Is(err, intra.ErrRequestExhausted), errors.Is(err, intra.ErrRequestFailed):
		h.logger.Warn("api request failed", zap.String("op", op), zap.Error(err))
	default:
		h.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
	}
	return &DisplayError{Message: describeError(err), Err: err}
}

// describeError turns the error taxonomy into display text.
func describeError(err error) string {
	var reqErr *intra.RequestError
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return "error: " + err.Error()
	case errors.Is(err, service.ErrNoMarkedEvaluations):
		return "no marked evaluations found"
	case errors.Is(err, service.ErrNoPisciners):
		return "this Piscine does not have any pisciners"
	case errors.Is(err, service.ErrNoProjects):
		return "no projects could be found for this Piscine"
	case errors.Is(err, service.ErrNoExams):
		return "No Exam found"
	case errors.Is(err, intra.ErrRequestExhausted) && errors.As(err, &reqErr):
		return fmt.Sprintf("error: still rate limited after %d attempts on %s, try again later", reqErr.Attempts, reqErr.URL)
	case errors.Is(err, intra.ErrRequestFailed) && errors.As(err, &reqErr) && reqErr.Status != 0:
		return fmt.Sprintf("error: %s returned %d", reqErr.URL, reqErr.Status)
	case errors.Is(err, intra.ErrRequestFailed):
		return "error: " + err.Error()
	case errors.Is(err, repository.ErrInvalidRecord):
		return "error: unexpected API response: " + err.Error()
	default:
		return fmt.Sprintf("unhandled error: %v, please open an issue at %s", err, issuesURL)
	}
}

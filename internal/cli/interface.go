package cli

import (
	"context"
	"time"

	"github.com/godilite/intra-stats/internal/repository/models"
	"github.com/godilite/intra-stats/internal/service"
	"github.com/godilite/intra-stats/pkg/intra"
)

type StatsService interface {
	EvaluatorAverage(ctx context.Context, login string) (float64, error)
	FailureOdds(ctx context.Context, login string) (float64, error)
	EvaluatorNetwork(ctx context.Context, login string) (service.Network, error)
	AcceptedPisciners(ctx context.Context, q service.PiscineQuery) ([]string, error)
	PiscineExams(ctx context.Context, campusID int) ([]models.Exam, error)
	ExamRegistration(ctx context.Context, exam models.Exam, campusID int, now time.Time) (service.ExamRegistration, error)
	ExamRegistrations(ctx context.Context, campusID int, now time.Time) ([]service.ExamRegistration, error)
	ProjectStatus(ctx context.Context, q service.PiscineQuery) (service.StatusReport, error)
	ActiveCampusLogins(ctx context.Context, campusID int) ([]string, error)
}

// Progress is shown while a fetch blocks and receives the fetcher's status
// messages.
type Progress interface {
	intra.Notifier
	Start()
	Stop()
}

// NotifierSetter routes fetcher status messages to the current Progress.
type NotifierSetter interface {
	SetNotifier(n intra.Notifier)
}

// Prompter asks the user for input. Implementations return ErrAborted when
// the user cancels.
type Prompter interface {
	Select(label string, items []string, cursor int) (int, error)
	Input(label, defaultValue string, validate func(string) error) (string, error)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/godilite/intra-stats/internal/repository/models"
	"github.com/godilite/intra-stats/pkg/intra"
	"go.uber.org/zap"
)

const (
	minLoginLength = 3
	maxMark        = 100
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrNoMarkedEvaluations = errors.New("no marked evaluations")
)

// StatsService turns intra record sets into statistics.
type StatsService struct {
	storage IntraRepository
	logger  *zap.Logger
}

// NewStatsService creates a new StatsService instance.
func NewStatsService(storage IntraRepository, logger *zap.Logger) *StatsService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{
		storage: storage,
		logger:  logger,
	}
}

// ResolveUserID maps a login to its numeric id.
func (s *StatsService) ResolveUserID(ctx context.Context, login string) (int, error) {
	if len(login) < minLoginLength {
		return 0, fmt.Errorf("%w: %q", ErrUserNotFound, login)
	}

	user, err := s.storage.UserByLogin(ctx, login)
	if err != nil {
		var reqErr *intra.RequestError
		if errors.As(err, &reqErr) && errors.Is(err, intra.ErrRequestFailed) && reqErr.Status != 0 {
			return 0, fmt.Errorf("%w: %q", ErrUserNotFound, login)
		}
		return 0, fmt.Errorf("lookup %q: %w", login, err)
	}
	if user.ID == 0 {
		return 0, fmt.Errorf("%w: %q", ErrUserNotFound, login)
	}

	s.logger.Debug("resolved user", zap.String("login", login), zap.Int("id", user.ID))
	return user.ID, nil
}

// EvaluatorAverage returns the mean mark the user gave as an evaluator.
func (s *StatsService) EvaluatorAverage(ctx context.Context, login string) (float64, error) {
	userID, err := s.ResolveUserID(ctx, login)
	if err != nil {
		return 0, err
	}

	evals, err := s.storage.EvaluationsAsCorrector(ctx, userID)
	if err != nil {
		return 0, err
	}

	avg, err := EvaluatorAverageOf(evals)
	if err != nil {
		return 0, err
	}

	s.logger.Info("computed evaluator average",
		zap.String("login", login),
		zap.Int("evaluations", len(evals)),
		zap.Float64("average", avg))
	return avg, nil
}

// FailureOdds returns 100 minus the user's clipped mean received mark.
func (s *StatsService) FailureOdds(ctx context.Context, login string) (float64, error) {
	userID, err := s.ResolveUserID(ctx, login)
	if err != nil {
		return 0, err
	}

	evals, err := s.storage.EvaluationsAsCorrected(ctx, userID)
	if err != nil {
		return 0, err
	}

	odds, err := FailureOddsOf(evals)
	if err != nil {
		return 0, err
	}

	s.logger.Info("computed failure odds",
		zap.String("login", login),
		zap.Int("evaluations", len(evals)),
		zap.Float64("odds", odds))
	return odds, nil
}

// EvaluatorNetwork fetches both sides of the user's evaluations and groups
// them by counterpart.
func (s *StatsService) EvaluatorNetwork(ctx context.Context, login string) (Network, error) {
	userID, err := s.ResolveUserID(ctx, login)
	if err != nil {
		return Network{}, err
	}

	asCorrected, err := s.storage.EvaluationsAsCorrected(ctx, userID)
	if err != nil {
		return Network{}, err
	}
	asCorrector, err := s.storage.EvaluationsAsCorrector(ctx, userID)
	if err != nil {
		return Network{}, err
	}

	network := BuildNetwork(login, asCorrected, asCorrector)

	s.logger.Info("built evaluator network",
		zap.String("login", login),
		zap.Int("evaluated_by", network.EvaluatedBy.Len()),
		zap.Int("evaluated", network.Evaluated.Len()),
		zap.Int("combined", network.Combined.Len()))
	return network, nil
}

// ActiveCampusLogins lists the sorted logins of a campus' active users.
func (s *StatsService) ActiveCampusLogins(ctx context.Context, campusID int) ([]string, error) {
	users, err := s.storage.CampusUsers(ctx, campusID)
	if err != nil {
		return nil, err
	}

	logins := make([]string, 0, len(users))
	for _, u := range users {
		if u.Active {
			logins = append(logins, u.Login)
		}
	}
	sort.Strings(logins)
	return logins, nil
}

// EvaluatorAverageOf is the mean of all present marks.
func EvaluatorAverageOf(evals []models.Evaluation) (float64, error) {
	return meanMark(evals, func(m int) int { return m })
}

// FailureOddsOf clips every present mark to 100 and returns 100 minus their mean.
func FailureOddsOf(evals []models.Evaluation) (float64, error) {
	avg, err := meanMark(evals, func(m int) int { return min(m, maxMark) })
	if err != nil {
		return 0, err
	}
	return maxMark - avg, nil
}

func meanMark(evals []models.Evaluation, adjust func(int) int) (float64, error) {
	var sum float64
	var n int
	for _, ev := range evals {
		if ev.FinalMark == nil {
			continue
		}
		sum += float64(adjust(*ev.FinalMark))
		n++
	}
	if n == 0 {
		return 0, ErrNoMarkedEvaluations
	}
	return sum / float64(n), nil
}

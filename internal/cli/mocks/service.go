package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/godilite/intra-stats/internal/repository/models"
	"github.com/godilite/intra-stats/internal/service"
)

// MockStatsService is a mock implementation of the StatsService interface
// for testing the cli layer. It uses function-based mocking for flexibility.
type MockStatsService struct {
	EvaluatorAverageFunc   func(ctx context.Context, login string) (float64, error)
	FailureOddsFunc        func(ctx context.Context, login string) (float64, error)
	EvaluatorNetworkFunc   func(ctx context.Context, login string) (service.Network, error)
	AcceptedPiscinersFunc  func(ctx context.Context, q service.PiscineQuery) ([]string, error)
	PiscineExamsFunc       func(ctx context.Context, campusID int) ([]models.Exam, error)
	ExamRegistrationFunc   func(ctx context.Context, exam models.Exam, campusID int, now time.Time) (service.ExamRegistration, error)
	ExamRegistrationsFunc  func(ctx context.Context, campusID int, now time.Time) ([]service.ExamRegistration, error)
	ProjectStatusFunc      func(ctx context.Context, q service.PiscineQuery) (service.StatusReport, error)
	ActiveCampusLoginsFunc func(ctx context.Context, campusID int) ([]string, error)
}

func (m *MockStatsService) EvaluatorAverage(ctx context.Context, login string) (float64, error) {
	if m.EvaluatorAverageFunc != nil {
		return m.EvaluatorAverageFunc(ctx, login)
	}
	return 0, errors.New("EvaluatorAverageFunc not implemented")
}

func (m *MockStatsService) FailureOdds(ctx context.Context, login string) (float64, error) {
	if m.FailureOddsFunc != nil {
		return m.FailureOddsFunc(ctx, login)
	}
	return 0, errors.New("FailureOddsFunc not implemented")
}

func (m *MockStatsService) EvaluatorNetwork(ctx context.Context, login string) (service.Network, error) {
	if m.EvaluatorNetworkFunc != nil {
		return m.EvaluatorNetworkFunc(ctx, login)
	}
	return service.Network{}, errors.New("EvaluatorNetworkFunc not implemented")
}

func (m *MockStatsService) AcceptedPisciners(ctx context.Context, q service.PiscineQuery) ([]string, error) {
	if m.AcceptedPiscinersFunc != nil {
		return m.AcceptedPiscinersFunc(ctx, q)
	}
	return nil, errors.New("AcceptedPiscinersFunc not implemented")
}

func (m *MockStatsService) PiscineExams(ctx context.Context, campusID int) ([]models.Exam, error) {
	if m.PiscineExamsFunc != nil {
		return m.PiscineExamsFunc(ctx, campusID)
	}
	return nil, errors.New("PiscineExamsFunc not implemented")
}

func (m *MockStatsService) ExamRegistration(ctx context.Context, exam models.Exam, campusID int, now time.Time) (service.ExamRegistration, error) {
	if m.ExamRegistrationFunc != nil {
		return m.ExamRegistrationFunc(ctx, exam, campusID, now)
	}
	return service.ExamRegistration{}, errors.New("ExamRegistrationFunc not implemented")
}

func (m *MockStatsService) ExamRegistrations(ctx context.Context, campusID int, now time.Time) ([]service.ExamRegistration, error) {
	if m.ExamRegistrationsFunc != nil {
		return m.ExamRegistrationsFunc(ctx, campusID, now)
	}
	return nil, errors.New("ExamRegistrationsFunc not implemented")
}

func (m *MockStatsService) ProjectStatus(ctx context.Context, q service.PiscineQuery) (service.StatusReport, error) {
	if m.ProjectStatusFunc != nil {
		return m.ProjectStatusFunc(ctx, q)
	}
	return service.StatusReport{}, errors.New("ProjectStatusFunc not implemented")
}

func (m *MockStatsService) ActiveCampusLogins(ctx context.Context, campusID int) ([]string, error) {
	if m.ActiveCampusLoginsFunc != nil {
		return m.ActiveCampusLoginsFunc(ctx, campusID)
	}
	return nil, errors.New("ActiveCampusLoginsFunc not implemented")
}

package mocks

import (
	"context"
	"errors"

	"github.com/godilite/intra-stats/internal/repository"
	"github.com/godilite/intra-stats/internal/repository/models"
)

// MockIntraRepository is a mock implementation of the IntraRepository
// interface for testing the service layer.
type MockIntraRepository struct {
	EvaluationsAsCorrectorFunc func(ctx context.Context, userID int) ([]models.Evaluation, error)
	EvaluationsAsCorrectedFunc func(ctx context.Context, userID int) ([]models.Evaluation, error)
	UserByLoginFunc            func(ctx context.Context, login string) (models.User, error)
	UsersFunc                  func(ctx context.Context, filter repository.UserFilter) ([]models.User, error)
	CampusUsersFunc            func(ctx context.Context, campusID int) ([]models.User, error)
	ProjectsUsersFunc          func(ctx context.Context, filter repository.ProjectUserFilter) ([]models.ProjectUser, error)
	ExamsFunc                  func(ctx context.Context, filter repository.ExamFilter) ([]models.Exam, error)
}

func (m *MockIntraRepository) EvaluationsAsCorrector(ctx context.Context, userID int) ([]models.Evaluation, error) {
	if m.EvaluationsAsCorrectorFunc != nil {
		return m.EvaluationsAsCorrectorFunc(ctx, userID)
	}
	return nil, errors.New("EvaluationsAsCorrectorFunc not implemented")
}

func (m *MockIntraRepository) EvaluationsAsCorrected(ctx context.Context, userID int) ([]models.Evaluation, error) {
	if m.EvaluationsAsCorrectedFunc != nil {
		return m.EvaluationsAsCorrectedFunc(ctx, userID)
	}
	return nil, errors.New("EvaluationsAsCorrectedFunc not implemented")
}

func (m *MockIntraRepository) UserByLogin(ctx context.Context, login string) (models.User, error) {
	if m.UserByLoginFunc != nil {
		return m.UserByLoginFunc(ctx, login)
	}
	return models.User{}, errors.New("UserByLoginFunc not implemented")
}

func (m *MockIntraRepository) Users(ctx context.Context, filter repository.UserFilter) ([]models.User, error) {
	if m.UsersFunc != nil {
		return m.UsersFunc(ctx, filter)
	}
	return nil, errors.New("UsersFunc not implemented")
}

func (m *MockIntraRepository) CampusUsers(ctx context.Context, campusID int) ([]models.User, error) {
	if m.CampusUsersFunc != nil {
		return m.CampusUsersFunc(ctx, campusID)
	}
	return nil, errors.New("CampusUsersFunc not implemented")
}

func (m *MockIntraRepository) ProjectsUsers(ctx context.Context, filter repository.ProjectUserFilter) ([]models.ProjectUser, error) {
	if m.ProjectsUsersFunc != nil {
		return m.ProjectsUsersFunc(ctx, filter)
	}
	return nil, errors.New("ProjectsUsersFunc not implemented")
}

func (m *MockIntraRepository) Exams(ctx context.Context, filter repository.ExamFilter) ([]models.Exam, error) {
	if m.ExamsFunc != nil {
		return m.ExamsFunc(ctx, filter)
	}
	return nil, errors.New("ExamsFunc not implemented")
}

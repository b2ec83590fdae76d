package service

import (
	"context"

	"github.com/godilite/intra-stats/internal/repository"
	"github.com/godilite/intra-stats/internal/repository/models"
)

// IntraRepository defines the record sets the service aggregates.
type IntraRepository interface {
	EvaluationsAsCorrector(ctx context.Context, userID int) ([]models.Evaluation, error)
	EvaluationsAsCorrected(ctx context.Context, userID int) ([]models.Evaluation, error)
	UserByLogin(ctx context.Context, login string) (models.User, error)
	Users(ctx context.Context, filter repository.UserFilter) ([]models.User, error)
	CampusUsers(ctx context.Context, campusID int) ([]models.User, error)
	ProjectsUsers(ctx context.Context, filter repository.ProjectUserFilter) ([]models.ProjectUser, error)
	Exams(ctx context.Context, filter repository.ExamFilter) ([]models.Exam, error)
}

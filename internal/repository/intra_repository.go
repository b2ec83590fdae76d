package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/godilite/intra-stats/internal/repository/models"
	"github.com/godilite/intra-stats/pkg/intra"
)

var ErrInvalidRecord = errors.New("invalid record")

// Fetcher is the subset of intra.Client the repository needs.
type Fetcher interface {
	FetchAll(ctx context.Context, ep intra.Endpoint, filter url.Values) ([]json.RawMessage, error)
	Get(ctx context.Context, name, path string, params url.Values, dest any) error
}

// UserFilter narrows GET /users. Zero values are not sent.
type UserFilter struct {
	CursusID        int
	ProjectID       int
	PoolYear        int
	PoolMonth       string
	PrimaryCampusID int
}

func (f UserFilter) values() url.Values {
	v := url.Values{}
	setInt(v, "cursus_id", f.CursusID)
	setInt(v, "project_id", f.ProjectID)
	setInt(v, "filter[pool_year]", f.PoolYear)
	if f.PoolMonth != "" {
		v.Set("filter[pool_month]", f.PoolMonth)
	}
	setInt(v, "filter[primary_campus_id]", f.PrimaryCampusID)
	return v
}

// ProjectUserFilter narrows GET /projects_users.
type ProjectUserFilter struct {
	ProjectID int
	CampusID  int
	CursusID  int
	UserIDs   []int
}

func (f ProjectUserFilter) values() url.Values {
	v := url.Values{}
	setInt(v, "filter[project_id]", f.ProjectID)
	setInt(v, "filter[campus_id]", f.CampusID)
	setInt(v, "filter[cursus]", f.CursusID)
	if len(f.UserIDs) > 0 {
		ids := make([]string, len(f.UserIDs))
		for i, id := range f.UserIDs {
			ids[i] = strconv.Itoa(id)
		}
		v.Set("filter[user_id]", strings.Join(ids, ","))
	}
	return v
}

// ExamFilter narrows GET /exams.
type ExamFilter struct {
	CampusID int
	Future   bool
	Visible  bool
}

func (f ExamFilter) values() url.Values {
	v := url.Values{}
	setInt(v, "filter[campus_id]", f.CampusID)
	if f.Future {
		v.Set("filter[future]", "true")
	}
	if f.Visible {
		v.Set("filter[visible]", "true")
	}
	return v
}

func setInt(v url.Values, key string, value int) {
	if value != 0 {
		v.Set(key, strconv.Itoa(value))
	}
}

// IntraRepository assembles paged API responses into typed record sets.
type IntraRepository struct {
	api      Fetcher
	validate *validator.Validate
}

func NewIntraRepository(api Fetcher) *IntraRepository {
	return &IntraRepository{
		api:      api,
		validate: validator.New(),
	}
}

// EvaluationsAsCorrector returns every evaluation the user performed.
func (r *IntraRepository) EvaluationsAsCorrector(ctx context.Context, userID int) ([]models.Evaluation, error) {
	return r.evaluations(ctx, userID, models.SideAsCorrector)
}

// EvaluationsAsCorrected returns every evaluation the user received.
func (r *IntraRepository) EvaluationsAsCorrected(ctx context.Context, userID int) ([]models.Evaluation, error) {
	return r.evaluations(ctx, userID, models.SideAsCorrected)
}

func (r *IntraRepository) evaluations(ctx context.Context, userID int, side string) ([]models.Evaluation, error) {
	ep := intra.Endpoint{
		Name: "scale_teams_" + side,
		Path: fmt.Sprintf("/users/%d/scale_teams/%s", userID, side),
	}
	raws, err := r.api.FetchAll(ctx, ep, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch evaluations %s: %w", side, err)
	}
	return decodeAll[models.Evaluation](r.validate, "evaluation", raws)
}

// UserByLogin looks a single user up by handle. A missing id decodes as zero.
func (r *IntraRepository) UserByLogin(ctx context.Context, login string) (models.User, error) {
	var user models.User
	if err := r.api.Get(ctx, "user", "/users/"+url.PathEscape(login), nil, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *IntraRepository) Users(ctx context.Context, filter UserFilter) ([]models.User, error) {
	ep := intra.Endpoint{Name: "users", Path: "/users", Termination: intra.UntilShort}
	raws, err := r.api.FetchAll(ctx, ep, filter.values())
	if err != nil {
		return nil, fmt.Errorf("fetch users: %w", err)
	}
	return decodeAll[models.User](r.validate, "user", raws)
}

// CampusUsers returns every user of a campus, active or not.
func (r *IntraRepository) CampusUsers(ctx context.Context, campusID int) ([]models.User, error) {
	ep := intra.Endpoint{Name: "campus_users", Path: fmt.Sprintf("/campus/%d/users", campusID)}
	raws, err := r.api.FetchAll(ctx, ep, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch campus users: %w", err)
	}
	return decodeAll[models.User](r.validate, "user", raws)
}

func (r *IntraRepository) ProjectsUsers(ctx context.Context, filter ProjectUserFilter) ([]models.ProjectUser, error) {
	ep := intra.Endpoint{Name: "projects_users", Path: "/projects_users", Termination: intra.UntilShort}
	raws, err := r.api.FetchAll(ctx, ep, filter.values())
	if err != nil {
		return nil, fmt.Errorf("fetch projects users: %w", err)
	}
	return decodeAll[models.ProjectUser](r.validate, "project user", raws)
}

func (r *IntraRepository) Exams(ctx context.Context, filter ExamFilter) ([]models.Exam, error) {
	ep := intra.Endpoint{Name: "exams", Path: "/exams", Termination: intra.UntilShort}
	raws, err := r.api.FetchAll(ctx, ep, filter.values())
	if err != nil {
		return nil, fmt.Errorf("fetch exams: %w", err)
	}
	return decodeAll[models.Exam](r.validate, "exam", raws)
}

// decodeAll converts raw records in order and rejects any record that is
// missing a field the aggregations depend on.
func decodeAll[T any](v *validator.Validate, kind string, raws []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(raws))
	for i, raw := range raws {
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("%w: %s #%d: %v", ErrInvalidRecord, kind, i, err)
		}
		if err := v.Struct(rec); err != nil {
			return nil, fmt.Errorf("%w: %s #%d: %v", ErrInvalidRecord, kind, i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

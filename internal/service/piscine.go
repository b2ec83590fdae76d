package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/godilite/intra-stats/internal/repository"
	"github.com/godilite/intra-stats/internal/repository/models"
	"go.uber.org/zap"
)

const (
	PiscineCursusID = 9
	MainCursusID    = 21

	piscineExamMarker = "Piscine"
)

var (
	ErrNoPisciners        = errors.New("no pisciners found")
	ErrNoProjects         = errors.New("no projects found")
	ErrNoExams            = errors.New("no exam found")
	ErrUnknownProject     = errors.New("unknown project")
	ErrExamWithoutProject = errors.New("exam has no project")
)

// AcceptedPisciners returns the sorted logins of a pool's pisciners that
// already joined the main cursus.
func (s *StatsService) AcceptedPisciners(ctx context.Context, q PiscineQuery) ([]string, error) {
	users, err := s.storage.Users(ctx, repository.UserFilter{
		CursusID:        MainCursusID,
		PoolYear:        q.Year,
		PoolMonth:       q.Month,
		PrimaryCampusID: q.CampusID,
	})
	if err != nil {
		return nil, err
	}

	logins := make([]string, len(users))
	for i, u := range users {
		logins[i] = u.Login
	}
	sort.Strings(logins)

	s.logger.Info("fetched accepted pisciners",
		zap.Int("campus_id", q.CampusID),
		zap.Int("year", q.Year),
		zap.String("month", q.Month),
		zap.Int("count", len(logins)))
	return logins, nil
}

// PiscineExams returns the campus' upcoming visible piscine exams.
func (s *StatsService) PiscineExams(ctx context.Context, campusID int) ([]models.Exam, error) {
	exams, err := s.storage.Exams(ctx, repository.ExamFilter{CampusID: campusID, Future: true, Visible: true})
	if err != nil {
		return nil, err
	}

	out := make([]models.Exam, 0, len(exams))
	for _, e := range exams {
		if strings.Contains(e.Name, piscineExamMarker) {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoExams
	}
	return out, nil
}

// ExamRegistration compares an exam's event subscribers with the current
// pool's pisciners registered to the exam project.
func (s *StatsService) ExamRegistration(ctx context.Context, exam models.Exam, campusID int, now time.Time) (ExamRegistration, error) {
	if len(exam.Projects) == 0 {
		return ExamRegistration{}, fmt.Errorf("%w: %s", ErrExamWithoutProject, exam.Name)
	}

	users, err := s.storage.Users(ctx, repository.UserFilter{
		ProjectID:       exam.Projects[0].ID,
		PrimaryCampusID: campusID,
		PoolYear:        now.Year(),
		PoolMonth:       PoolMonth(now.Month()),
	})
	if err != nil {
		return ExamRegistration{}, err
	}

	diff := exam.NbrSubscribers - len(users)
	if diff < 0 {
		diff = -diff
	}
	return ExamRegistration{
		ExamName:             exam.Name,
		BeginAt:              exam.BeginAt,
		EventSubscribers:     exam.NbrSubscribers,
		ProjectRegistrations: len(users),
		Difference:           diff,
	}, nil
}

// ExamRegistrations reports every upcoming piscine exam of the campus.
func (s *StatsService) ExamRegistrations(ctx context.Context, campusID int, now time.Time) ([]ExamRegistration, error) {
	exams, err := s.PiscineExams(ctx, campusID)
	if err != nil {
		return nil, err
	}

	out := make([]ExamRegistration, 0, len(exams))
	for _, exam := range exams {
		reg, err := s.ExamRegistration(ctx, exam, campusID, now)
		if err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, nil
}

// ProjectStatus fetches a pool's pisciners and their piscine enrollments.
func (s *StatsService) ProjectStatus(ctx context.Context, q PiscineQuery) (StatusReport, error) {
	users, err := s.storage.Users(ctx, repository.UserFilter{
		CursusID:        PiscineCursusID,
		PoolYear:        q.Year,
		PoolMonth:       q.Month,
		PrimaryCampusID: q.CampusID,
	})
	if err != nil {
		return StatusReport{}, err
	}
	if len(users) == 0 {
		return StatusReport{}, fmt.Errorf("%w: %s %d", ErrNoPisciners, q.Month, q.Year)
	}

	ids := make([]int, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	all, err := s.storage.ProjectsUsers(ctx, repository.ProjectUserFilter{UserIDs: ids})
	if err != nil {
		return StatusReport{}, err
	}

	enrollments := make([]models.ProjectUser, 0, len(all))
	for _, pu := range all {
		if pu.InCursus(PiscineCursusID) {
			enrollments = append(enrollments, pu)
		}
	}
	if len(enrollments) == 0 {
		return StatusReport{}, fmt.Errorf("%w: %s %d", ErrNoProjects, q.Month, q.Year)
	}

	s.logger.Info("fetched piscine projects",
		zap.Int("pisciners", len(users)),
		zap.Int("enrollments", len(enrollments)))

	return StatusReport{
		CohortSize:  len(users),
		Projects:    SummarizeProjects(len(users), enrollments),
		Enrollments: enrollments,
	}, nil
}

// SummarizeProjects groups enrollments by project name, sorted by name.
func SummarizeProjects(cohortSize int, enrollments []models.ProjectUser) []ProjectSummary {
	byName := make(map[string][]models.ProjectUser)
	for _, pu := range enrollments {
		byName[pu.Project.Name] = append(byName[pu.Project.Name], pu)
	}

	out := make([]ProjectSummary, 0, len(byName))
	for name, group := range byName {
		out = append(out, summarize(name, cohortSize, group))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// DrillDown details one project per student, sorted by login.
func DrillDown(cohortSize int, enrollments []models.ProjectUser, projectName string) (ProjectDrillDown, error) {
	var group []models.ProjectUser
	for _, pu := range enrollments {
		if pu.Project.Name == projectName {
			group = append(group, pu)
		}
	}
	if len(group) == 0 {
		return ProjectDrillDown{}, fmt.Errorf("%w: %s", ErrUnknownProject, projectName)
	}

	sort.SliceStable(group, func(i, j int) bool {
		return group[i].User.Login < group[j].User.Login
	})

	tries := 0
	students := make([]StudentProgress, len(group))
	for i, pu := range group {
		tries += len(pu.Teams)
		if n := len(pu.Teams); n > 0 && pu.Teams[n-1].FinalMark == nil {
			tries--
		}

		attempts := 0
		if len(pu.Teams) > 0 {
			attempts = len(pu.Teams) - 1
		}
		teams := make([]Attempt, len(pu.Teams))
		for j, t := range pu.Teams {
			teams[j] = Attempt{Name: t.Name, FinalMark: t.FinalMark}
		}

		students[i] = StudentProgress{
			Login:     pu.User.Login,
			Attempts:  attempts,
			FinalMark: pu.FinalMark,
			Status:    pu.Status,
			Teams:     teams,
		}
	}

	return ProjectDrillDown{
		Summary:    summarize(projectName, cohortSize, group),
		CohortSize: cohortSize,
		Tries:      tries,
		Students:   students,
	}, nil
}

func summarize(name string, cohortSize int, group []models.ProjectUser) ProjectSummary {
	counts := make(map[string]int)
	var markSum float64
	var marked int
	for _, pu := range group {
		counts[pu.Status]++
		if pu.FinalMark != nil {
			markSum += float64(*pu.FinalMark)
			marked++
		}
	}

	population := len(group)
	statuses := make([]StatusCount, 0, len(counts))
	for status, n := range counts {
		statuses = append(statuses, StatusCount{
			Status:     status,
			Count:      n,
			Percentage: percentage(n, population),
		})
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Status < statuses[j].Status
	})

	var avg float64
	if marked > 0 {
		avg = markSum / float64(marked)
	}

	return ProjectSummary{
		Name:             name,
		Population:       population,
		CohortPercentage: percentage(population, cohortSize),
		AverageMark:      avg,
		Statuses:         statuses,
	}
}

func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// PoolMonth is the lowercase english month name the API filters pools by.
func PoolMonth(m time.Month) string {
	return strings.ToLower(m.String())
}

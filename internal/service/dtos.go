package service

import (
	"time"

	"github.com/godilite/intra-stats/internal/repository/models"
)

// Interaction is how often the user dealt with one counterpart and the
// average mark of those evaluations.
type Interaction struct {
	Login   string
	Count   int
	Average float64
}

// Network holds both directions of a user's evaluation graph and their merge.
type Network struct {
	Login       string
	EvaluatedBy Interactions
	Evaluated   Interactions
	Combined    Interactions
}

type PiscineQuery struct {
	CampusID int
	Year     int
	Month    string
}

type StatusCount struct {
	Status     string
	Count      int
	Percentage float64
}

type ProjectSummary struct {
	Name             string
	Population       int
	CohortPercentage float64
	AverageMark      float64
	Statuses         []StatusCount
}

// StatusReport is the project overview of one piscine cohort.
type StatusReport struct {
	CohortSize  int
	Projects    []ProjectSummary
	Enrollments []models.ProjectUser
}

type Attempt struct {
	Name      string
	FinalMark *int
}

type StudentProgress struct {
	Login     string
	Attempts  int
	FinalMark *int
	Status    string
	Teams     []Attempt
}

type ProjectDrillDown struct {
	Summary    ProjectSummary
	CohortSize int
	Tries      int
	Students   []StudentProgress
}

type ExamRegistration struct {
	ExamName             string
	BeginAt              time.Time
	EventSubscribers     int
	ProjectRegistrations int
	Difference           int
}

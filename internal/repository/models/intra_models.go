package models

import (
	"bytes"
	"encoding/json"
	"slices"
	"time"
)

const (
	SideAsCorrector = "as_corrector"
	SideAsCorrected = "as_corrected"
)

// Subject is a participant of an evaluation. The API sends the string
// "invisible" instead of an object for evaluations that have not happened
// yet; such subjects decode to the zero value.
type Subject struct {
	ID    int    `json:"id"`
	Login string `json:"login"`
}

func (s *Subject) UnmarshalJSON(data []byte) error {
	if isPlaceholder(data) {
		*s = Subject{}
		return nil
	}
	type plain Subject
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Subject(p)
	return nil
}

// Subjects is the ordered list of evaluated parties of one evaluation.
type Subjects []Subject

func (s *Subjects) UnmarshalJSON(data []byte) error {
	if isPlaceholder(data) {
		*s = nil
		return nil
	}
	var list []Subject
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*s = list
	return nil
}

func isPlaceholder(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && (data[0] == '"' || bytes.Equal(data, []byte("null")))
}

// Evaluation is one peer evaluation (a "scale team").
type Evaluation struct {
	ID         int      `json:"id"`
	FinalMark  *int     `json:"final_mark"`
	Corrector  Subject  `json:"corrector"`
	Correcteds Subjects `json:"correcteds"`
	Comment    *string  `json:"comment"`
}

type User struct {
	ID     int    `json:"id" validate:"required"`
	Login  string `json:"login" validate:"required"`
	Active bool   `json:"active?"`
}

type UserRef struct {
	ID    int    `json:"id"`
	Login string `json:"login" validate:"required"`
}

type ProjectRef struct {
	ID   int    `json:"id"`
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug"`
}

// Team is one attempt at a project.
type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	FinalMark *int   `json:"final_mark"`
}

// ProjectUser is a user's enrollment in a project.
type ProjectUser struct {
	ID        int        `json:"id"`
	Status    string     `json:"status" validate:"required"`
	FinalMark *int       `json:"final_mark"`
	User      UserRef    `json:"user"`
	Project   ProjectRef `json:"project"`
	Teams     []Team     `json:"teams" validate:"dive"`
	CursusIDs []int      `json:"cursus_ids"`
}

// InCursus reports whether the enrollment belongs to the given curriculum.
func (p ProjectUser) InCursus(cursusID int) bool {
	return slices.Contains(p.CursusIDs, cursusID)
}

type Exam struct {
	ID             int          `json:"id"`
	Name           string       `json:"name" validate:"required"`
	BeginAt        time.Time    `json:"begin_at"`
	NbrSubscribers int          `json:"nbr_subscribers"`
	Projects       []ProjectRef `json:"projects" validate:"dive"`
}

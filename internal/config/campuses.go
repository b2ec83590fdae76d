package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidCampuses = errors.New("invalid campus table")

type Campus struct {
	ID   int
	Name string
}

// Campuses is the read-only campus reference table, in configured order.
type Campuses struct {
	list []Campus
}

// ParseCampuses reads a comma separated list of id:name pairs.
func ParseCampuses(raw string) (Campuses, error) {
	var list []Campus
	seen := make(map[int]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idStr, name, ok := strings.Cut(part, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return Campuses{}, fmt.Errorf("%w: entry %q is not id:name", ErrInvalidCampuses, part)
		}
		id, err := strconv.Atoi(strings.TrimSpace(idStr))
		if err != nil || id <= 0 {
			return Campuses{}, fmt.Errorf("%w: entry %q has no valid id", ErrInvalidCampuses, part)
		}
		if seen[id] {
			return Campuses{}, fmt.Errorf("%w: campus %d listed twice", ErrInvalidCampuses, id)
		}
		seen[id] = true
		list = append(list, Campus{ID: id, Name: name})
	}
	if len(list) == 0 {
		return Campuses{}, fmt.Errorf("%w: no campus configured", ErrInvalidCampuses)
	}
	return Campuses{list: list}, nil
}

func (c Campuses) All() []Campus {
	return append([]Campus(nil), c.list...)
}

func (c Campuses) Len() int {
	return len(c.list)
}

// Name returns the campus name, or the id itself for unknown campuses.
func (c Campuses) Name(id int) string {
	for _, campus := range c.list {
		if campus.ID == id {
			return campus.Name
		}
	}
	return strconv.Itoa(id)
}

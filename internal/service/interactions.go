package service

import (
	"sort"

	"github.com/godilite/intra-stats/internal/repository/models"
)

// Interactions maps counterpart logins to Interaction values and remembers
// the order in which logins were first seen. The zero value is ready to use.
type Interactions struct {
	entries []Interaction
	index   map[string]int
}

// Add merges count evaluations averaging avg into login's entry using a
// count-weighted mean.
func (a *Interactions) Add(login string, count int, avg float64) {
	if count <= 0 {
		return
	}
	if a.index == nil {
		a.index = make(map[string]int)
	}

	i, ok := a.index[login]
	if !ok {
		a.index[login] = len(a.entries)
		a.entries = append(a.entries, Interaction{Login: login, Count: count, Average: avg})
		return
	}

	e := &a.entries[i]
	total := e.Count + count
	e.Average = (e.Average*float64(e.Count) + avg*float64(count)) / float64(total)
	e.Count = total
}

func (a Interactions) Len() int {
	return len(a.entries)
}

func (a Interactions) Get(login string) (Interaction, bool) {
	i, ok := a.index[login]
	if !ok {
		return Interaction{}, false
	}
	return a.entries[i], true
}

// Entries returns a copy of the entries in first-seen order.
func (a Interactions) Entries() []Interaction {
	return append([]Interaction(nil), a.entries...)
}

// Ranked returns the entries sorted by count, highest first. Ties keep
// first-seen order. top <= 0 returns everything.
func (a Interactions) Ranked(top int) []Interaction {
	out := a.Entries()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if top > 0 && top < len(out) {
		out = out[:top]
	}
	return out
}

// Merge combines two aggregates. Logins present in both get a weighted average.
func Merge(a, b Interactions) Interactions {
	var out Interactions
	for _, e := range a.entries {
		out.Add(e.Login, e.Count, e.Average)
	}
	for _, e := range b.entries {
		out.Add(e.Login, e.Count, e.Average)
	}
	return out
}

// EvaluatedBy groups evaluations the user received by corrector login.
// Unmarked evaluations and hidden correctors are skipped.
func EvaluatedBy(asCorrected []models.Evaluation) Interactions {
	var out Interactions
	for _, ev := range asCorrected {
		if ev.FinalMark == nil || ev.Corrector.Login == "" {
			continue
		}
		out.Add(ev.Corrector.Login, 1, float64(*ev.FinalMark))
	}
	return out
}

// Evaluated groups evaluations the user performed by corrected login. A
// group evaluation counts once for every corrected member.
func Evaluated(asCorrector []models.Evaluation) Interactions {
	var out Interactions
	for _, ev := range asCorrector {
		if ev.FinalMark == nil {
			continue
		}
		for _, corrected := range ev.Correcteds {
			if corrected.Login == "" {
				continue
			}
			out.Add(corrected.Login, 1, float64(*ev.FinalMark))
		}
	}
	return out
}

// BuildNetwork derives both directions and their merge.
func BuildNetwork(login string, asCorrected, asCorrector []models.Evaluation) Network {
	evaluatedBy := EvaluatedBy(asCorrected)
	evaluated := Evaluated(asCorrector)
	return Network{
		Login:       login,
		EvaluatedBy: evaluatedBy,
		Evaluated:   evaluated,
		Combined:    Merge(evaluatedBy, evaluated),
	}
}

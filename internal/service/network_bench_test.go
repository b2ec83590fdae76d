package service

import (
	"fmt"
	"testing"

	"github.com/godilite/intra-stats/internal/repository/models"
)

func syntheticEvaluations(tb testing.TB, n, peers int) []models.Evaluation {
	tb.Helper()

	evals := make([]models.Evaluation, n)
	for i := range evals {
		m := i % 101
		peer := fmt.Sprintf("peer%03d", i%peers)
		evals[i] = models.Evaluation{
			ID:         i,
			FinalMark:  &m,
			Corrector:  models.Subject{Login: peer},
			Correcteds: models.Subjects{{Login: peer}, {Login: fmt.Sprintf("peer%03d", (i+1)%peers)}},
		}
	}
	return evals
}

func BenchmarkBuildNetwork(b *testing.B) {
	evals := syntheticEvaluations(b, 2000, 150)

	b.ReportAllocs()
	for b.Loop() {
		network := BuildNetwork("bench", evals, evals)
		_ = network.Combined.Ranked(10)
	}
}

func BenchmarkFailureOddsOf(b *testing.B) {
	evals := syntheticEvaluations(b, 2000, 150)

	b.ReportAllocs()
	for b.Loop() {
		if _, err := FailureOddsOf(evals); err != nil {
			b.Fatal(err)
		}
	}
}

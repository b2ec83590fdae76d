package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/godilite/intra-stats/internal/cli/mocks"
	"github.com/godilite/intra-stats/internal/repository/models"
	"github.com/godilite/intra-stats/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stats StatsService, args ...string) (string, error) {
	t.Helper()
	h := newTestHandlers(t, stats)
	var out bytes.Buffer
	root := NewRootCommand(h, NewMenu(h, &mocks.ScriptedPrompter{Exhausted: ErrAborted}, &out))
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	t.Run("without subcommand runs the menu", func(t *testing.T) {
		out, err := execute(t, &mocks.MockStatsService{})

		require.NoError(t, err)
		assert.Equal(t, clearScreen, out)
	})

	t.Run("unknown subcommand", func(t *testing.T) {
		_, err := execute(t, &mocks.MockStatsService{}, "leaderboard")

		assert.Error(t, err)
	})
}

func TestScoreCommands(t *testing.T) {
	mockStats := &mocks.MockStatsService{
		EvaluatorAverageFunc: func(_ context.Context, login string) (float64, error) {
			assert.Equal(t, "abied-ch", login)
			return 90, nil
		},
		FailureOddsFunc: func(context.Context, string) (float64, error) {
			return 27, nil
		},
	}

	t.Run("evaluator score", func(t *testing.T) {
		out, err := execute(t, mockStats, "evaluator-score", "abied-ch")

		require.NoError(t, err)
		assert.Equal(t, "result: 90.00%\n", out)
	})

	t.Run("fail odds", func(t *testing.T) {
		out, err := execute(t, mockStats, "fail-odds", "abied-ch")

		require.NoError(t, err)
		assert.Equal(t, "result: 27.00%\n", out)
	})

	t.Run("login is required", func(t *testing.T) {
		_, err := execute(t, mockStats, "fail-odds")

		assert.Error(t, err)
	})

	t.Run("display error", func(t *testing.T) {
		failing := &mocks.MockStatsService{
			EvaluatorAverageFunc: func(context.Context, string) (float64, error) {
				return 0, service.ErrNoMarkedEvaluations
			},
		}

		_, err := execute(t, failing, "evaluator-score", "abied-ch")

		assert.EqualError(t, err, "no marked evaluations found")
	})
}

func TestNetworkCommand(t *testing.T) {
	mockStats := &mocks.MockStatsService{
		EvaluatorNetworkFunc: func(context.Context, string) (service.Network, error) {
			return sampleNetwork(), nil
		},
	}

	t.Run("top rows", func(t *testing.T) {
		out, err := execute(t, mockStats, "network", "mdoe", "--top", "1")

		require.NoError(t, err)
		assert.Contains(t, out, "Evaluation Network Analysis for mdoe")
		assert.Contains(t, out, "alice")
		assert.NotContains(t, out, "bob")
	})

	t.Run("export", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "network.csv")

		out, err := execute(t, mockStats, "network", "mdoe", "--export", path)

		require.NoError(t, err)
		assert.Contains(t, out, "exported to "+path)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "carol,0,,3,90.00,3,90.00")
	})
}

func TestPiscineCommands(t *testing.T) {
	t.Run("accepted with defaults", func(t *testing.T) {
		mockStats := &mocks.MockStatsService{
			AcceptedPiscinersFunc: func(_ context.Context, q service.PiscineQuery) ([]string, error) {
				assert.Equal(t, service.PiscineQuery{CampusID: 44, Year: 2024, Month: "july"}, q)
				return []string{"adam", "zoe"}, nil
			},
		}

		out, err := execute(t, mockStats, "piscine", "accepted", "--campus", "44")

		require.NoError(t, err)
		assert.Equal(t, "Campus: Wolfsburg\nPiscine: July 2024\n\nPisciners registered to Kickoff:\n\nadam    zoe\n\nTotal: 2\n", out)
	})

	t.Run("month is case insensitive", func(t *testing.T) {
		mockStats := &mocks.MockStatsService{
			AcceptedPiscinersFunc: func(_ context.Context, q service.PiscineQuery) ([]string, error) {
				assert.Equal(t, "february", q.Month)
				assert.Equal(t, 2023, q.Year)
				return nil, nil
			},
		}

		_, err := execute(t, mockStats, "piscine", "accepted", "--campus", "51", "--year", "2023", "--month", "February")

		require.NoError(t, err)
	})

	t.Run("unknown month", func(t *testing.T) {
		_, err := execute(t, &mocks.MockStatsService{}, "piscine", "accepted", "--campus", "51", "--month", "smarch")

		assert.EqualError(t, err, `unknown month "smarch"`)
	})

	t.Run("year too early", func(t *testing.T) {
		_, err := execute(t, &mocks.MockStatsService{}, "piscine", "accepted", "--campus", "51", "--year", "2000")

		assert.EqualError(t, err, "year must be 2013 or later")
	})

	t.Run("campus is required", func(t *testing.T) {
		_, err := execute(t, &mocks.MockStatsService{}, "piscine", "accepted")

		assert.Error(t, err)
	})

	t.Run("exams", func(t *testing.T) {
		mockStats := &mocks.MockStatsService{
			ExamRegistrationsFunc: func(_ context.Context, campusID int, now time.Time) ([]service.ExamRegistration, error) {
				assert.Equal(t, 51, campusID)
				assert.Equal(t, fixedNow, now)
				return []service.ExamRegistration{{ExamName: "C Piscine Exam 02", EventSubscribers: 10, ProjectRegistrations: 7, Difference: 3}}, nil
			},
		}

		out, err := execute(t, mockStats, "piscine", "exams", "--campus", "51")

		require.NoError(t, err)
		assert.Equal(t, "Information for C Piscine Exam 02\n\nRegistered to Event: 10\nRegistered to Project: 7\nDifference: 3\n", out)
	})

	t.Run("projects", func(t *testing.T) {
		report := service.StatusReport{
			CohortSize: 1,
			Projects:   []service.ProjectSummary{{Name: "C 00", Population: 1, CohortPercentage: 100}},
			Enrollments: []models.ProjectUser{
				{Status: "in_progress", User: models.UserRef{Login: "adam"}, Project: models.ProjectRef{Name: "C 00"}},
			},
		}
		mockStats := &mocks.MockStatsService{
			ProjectStatusFunc: func(context.Context, service.PiscineQuery) (service.StatusReport, error) {
				return report, nil
			},
		}

		out, err := execute(t, mockStats, "piscine", "projects", "--campus", "44")
		require.NoError(t, err)
		assert.Contains(t, out, "There are a total of 1 Pisciners.")

		out, err = execute(t, mockStats, "piscine", "projects", "--campus", "44", "--project", "C 00")
		require.NoError(t, err)
		assert.Contains(t, out, "Overview of C 00")

		_, err = execute(t, mockStats, "piscine", "projects", "--campus", "44", "--project", "Rush 00")
		assert.ErrorIs(t, err, service.ErrUnknownProject)
	})
}

func TestCampusActiveCommand(t *testing.T) {
	mockStats := &mocks.MockStatsService{
		ActiveCampusLoginsFunc: func(_ context.Context, campusID int) ([]string, error) {
			assert.Equal(t, 51, campusID)
			return []string{"amy", "bob", "carl"}, nil
		},
	}

	out, err := execute(t, mockStats, "campus", "active", "--campus", "51")

	require.NoError(t, err)
	assert.Equal(t, "Active users of Berlin:\n\namy    bob    carl\n\nTotal: 3\n", out)
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/godilite/intra-stats/internal/cli/mocks"
	"github.com/godilite/intra-stats/internal/config"
	"github.com/godilite/intra-stats/internal/repository"
	"github.com/godilite/intra-stats/internal/repository/models"
	"github.com/godilite/intra-stats/internal/service"
	"github.com/godilite/intra-stats/pkg/export"
	"github.com/godilite/intra-stats/pkg/intra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, time.July, 15, 12, 0, 0, 0, time.UTC)

type notifierRecorder struct {
	set []intra.Notifier
}

func (n *notifierRecorder) SetNotifier(notifier intra.Notifier) {
	n.set = append(n.set, notifier)
}

func testCampuses(t *testing.T) config.Campuses {
	t.Helper()
	c, err := config.ParseCampuses("44:Wolfsburg,51:Berlin")
	require.NoError(t, err)
	return c
}

func newTestHandlers(t *testing.T, stats StatsService, opts ...HandlerOption) *Handlers {
	t.Helper()
	opts = append([]HandlerOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewHandlers(stats, testCampuses(t), zap.NewNop(), opts...)
}

func sampleNetwork() service.Network {
	var by, ed service.Interactions
	by.Add("alice", 2, 80)
	by.Add("bob", 1, 100)
	ed.Add("alice", 1, 50)
	ed.Add("carol", 3, 90)
	return service.Network{Login: "mdoe", EvaluatedBy: by, Evaluated: ed, Combined: service.Merge(by, ed)}
}

// TestNewHandlers tests the constructor
func TestNewHandlers(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		mockStats := &mocks.MockStatsService{}

		h := NewHandlers(mockStats, testCampuses(t), zap.NewNop())

		assert.NotNil(t, h)
		assert.Equal(t, mockStats, h.stats)
		assert.NotNil(t, h.logger)
		assert.NotNil(t, h.progress)
		assert.Nil(t, h.notifier)
	})

	t.Run("nil stats service panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewHandlers(nil, testCampuses(t), zap.NewNop())
		})
	})

	t.Run("nil logger gets default", func(t *testing.T) {
		h := NewHandlers(&mocks.MockStatsService{}, testCampuses(t), nil)

		assert.NotNil(t, h.logger)
	})

	t.Run("nil options keep defaults", func(t *testing.T) {
		h := NewHandlers(&mocks.MockStatsService{}, testCampuses(t), nil, WithProgress(nil), WithClock(nil))

		assert.NotNil(t, h.progress)
		assert.NotNil(t, h.now)
	})
}

func TestEvaluatorScore(t *testing.T) {
	t.Run("success with progress", func(t *testing.T) {
		var progress []*mocks.Progress
		notifier := &notifierRecorder{}
		mockStats := &mocks.MockStatsService{
			EvaluatorAverageFunc: func(_ context.Context, login string) (float64, error) {
				assert.Equal(t, "abied-ch", login)
				progress[0].Status("rate limit hit, retrying in 1s")
				return 87.5, nil
			},
		}
		h := newTestHandlers(t, mockStats,
			WithNotifierSetter(notifier),
			WithProgress(func(text string) Progress {
				p := &mocks.Progress{Text: text}
				progress = append(progress, p)
				return p
			}))

		result, err := h.EvaluatorScore(context.Background(), "abied-ch")

		require.NoError(t, err)
		assert.Equal(t, "result: 87.50%", result)
		require.Len(t, progress, 1)
		assert.Equal(t, "Fetching evaluations involving abied-ch as a corrector", progress[0].Text)
		assert.Equal(t, 1, progress[0].Started)
		assert.Equal(t, 1, progress[0].Stopped)
		assert.Equal(t, []string{"rate limit hit, retrying in 1s"}, progress[0].Messages)
		require.Len(t, notifier.set, 2)
		assert.Same(t, progress[0], notifier.set[0])
		assert.Nil(t, notifier.set[1])
	})

	t.Run("progress stops on error", func(t *testing.T) {
		p := &mocks.Progress{}
		mockStats := &mocks.MockStatsService{
			EvaluatorAverageFunc: func(context.Context, string) (float64, error) {
				return 0, service.ErrNoMarkedEvaluations
			},
		}
		h := newTestHandlers(t, mockStats, WithProgress(func(string) Progress { return p }))

		_, err := h.EvaluatorScore(context.Background(), "abied-ch")

		assert.ErrorIs(t, err, service.ErrNoMarkedEvaluations)
		assert.Equal(t, 1, p.Stopped)
	})
}

func TestFailOdds(t *testing.T) {
	mockStats := &mocks.MockStatsService{
		FailureOddsFunc: func(context.Context, string) (float64, error) {
			return 100.0 / 3, nil
		},
	}

	result, err := newTestHandlers(t, mockStats).FailOdds(context.Background(), "abied-ch")

	require.NoError(t, err)
	assert.Equal(t, "result: 33.33%", result)
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "user not found",
			err:  fmt.Errorf("%w: %q", service.ErrUserNotFound, "ab"),
			want: `error: user not found: "ab"`,
		},
		{
			name: "no marked evaluations",
			err:  service.ErrNoMarkedEvaluations,
			want: "no marked evaluations found",
		},
		{
			name: "no exams",
			err:  service.ErrNoExams,
			want: "No Exam found",
		},
		{
			name: "no pisciners",
			err:  fmt.Errorf("%w: july 2024", service.ErrNoPisciners),
			want: "this Piscine does not have any pisciners",
		},
		{
			name: "rate limit exhausted",
			err:  &intra.RequestError{Kind: intra.ErrRequestExhausted, URL: "https://api.intra.42.fr/v2/users", Status: 429, Attempts: 5},
			want: "error: still rate limited after 5 attempts on https://api.intra.42.fr/v2/users, try again later",
		},
		{
			name: "error status",
			err:  fmt.Errorf("lookup: %w", &intra.RequestError{Kind: intra.ErrRequestFailed, URL: "https://api.intra.42.fr/v2/exams", Status: 500}),
			want: "error: https://api.intra.42.fr/v2/exams returned 500",
		},
		{
			name: "transport failure",
			err:  &intra.RequestError{Kind: intra.ErrRequestFailed, URL: "u", Err: errors.New("dial tcp: refused")},
			want: "error: request failed: u: dial tcp: refused",
		},
		{
			name: "invalid record",
			err:  fmt.Errorf("%w: users #3: missing login", repository.ErrInvalidRecord),
			want: "error: unexpected API response: invalid record: users #3: missing login",
		},
		{
			name: "unexpected",
			err:  errors.New("boom"),
			want: "unhandled error: boom, please open an issue at " + issuesURL,
		},
	}

	h := newTestHandlers(t, &mocks.MockStatsService{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.handleError(context.Background(), "op", tt.err)

			var display *DisplayError
			require.ErrorAs(t, err, &display)
			assert.Equal(t, tt.want, display.Message)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := h.handleError(ctx, "op", context.Canceled)

		assert.EqualError(t, err, "interrupted")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNetwork(t *testing.T) {
	mockStats := &mocks.MockStatsService{
		EvaluatorNetworkFunc: func(_ context.Context, login string) (service.Network, error) {
			return sampleNetwork(), nil
		},
	}
	h := newTestHandlers(t, mockStats)

	network, err := h.Network(context.Background(), "mdoe")

	require.NoError(t, err)
	assert.Equal(t, 4, network.Combined.Len())

	t.Run("dataset", func(t *testing.T) {
		ds := NetworkDataset(network)

		assert.Equal(t, "Evaluation network of mdoe", ds.Title)
		require.Len(t, ds.Headers, 7)
		assert.Equal(t, [][]string{
			{"alice", "2", "80.00", "1", "50.00", "3", "70.00"},
			{"carol", "0", "", "3", "90.00", "3", "90.00"},
			{"bob", "1", "100.00", "0", "", "1", "100.00"},
		}, ds.Rows)
	})

	t.Run("export csv", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "network.csv")

		require.NoError(t, h.ExportNetwork(network, path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "login,evaluated you,average received")
		assert.Contains(t, string(data), "alice,2,80.00,1,50.00,3,70.00")
	})

	t.Run("export pdf", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "network.pdf")

		require.NoError(t, h.ExportNetwork(network, path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-", string(data[:5]))
	})

	t.Run("export unknown format", func(t *testing.T) {
		err := h.ExportNetwork(network, filepath.Join(t.TempDir(), "network.txt"))

		assert.ErrorIs(t, err, export.ErrUnknownFormat)
	})
}

func TestAcceptedPisciners(t *testing.T) {
	q := service.PiscineQuery{CampusID: 44, Year: 2024, Month: "july"}

	t.Run("lists logins", func(t *testing.T) {
		mockStats := &mocks.MockStatsService{
			AcceptedPiscinersFunc: func(_ context.Context, got service.PiscineQuery) ([]string, error) {
				assert.Equal(t, q, got)
				return []string{"adam", "zoe"}, nil
			},
		}

		result, err := newTestHandlers(t, mockStats).AcceptedPisciners(context.Background(), q)

		require.NoError(t, err)
		assert.Equal(t, "Pisciners registered to Kickoff:\n\nadam    zoe\n\nTotal: 2\n", result)
	})

	t.Run("empty", func(t *testing.T) {
		mockStats := &mocks.MockStatsService{
			AcceptedPiscinersFunc: func(context.Context, service.PiscineQuery) ([]string, error) {
				return nil, nil
			},
		}

		result, err := newTestHandlers(t, mockStats).AcceptedPisciners(context.Background(), q)

		require.NoError(t, err)
		assert.Equal(t, "Pisciners registered to Kickoff:\n\n\nTotal: 0\n", result)
	})
}

func TestPiscineHeader(t *testing.T) {
	h := newTestHandlers(t, &mocks.MockStatsService{})

	assert.Equal(t, "Campus: Wolfsburg\nPiscine: July 2024\n", h.PiscineHeader(service.PiscineQuery{CampusID: 44, Year: 2024, Month: "july"}))
	assert.Equal(t, "Campus: 7\nPiscine: March 2023\n", h.PiscineHeader(service.PiscineQuery{CampusID: 7, Year: 2023, Month: "march"}))
}

func TestExamRegistrations(t *testing.T) {
	t.Run("uses the clock", func(t *testing.T) {
		mockStats := &mocks.MockStatsService{
			ExamRegistrationFunc: func(_ context.Context, exam models.Exam, campusID int, now time.Time) (service.ExamRegistration, error) {
				assert.Equal(t, 44, campusID)
				assert.Equal(t, fixedNow, now)
				return service.ExamRegistration{ExamName: exam.Name, EventSubscribers: 3, ProjectRegistrations: 1, Difference: 2}, nil
			},
		}

		result, err := newTestHandlers(t, mockStats).ExamRegistration(context.Background(), models.Exam{Name: "C Piscine Exam 00"}, 44)

		require.NoError(t, err)
		assert.Contains(t, result, "Information for C Piscine Exam 00")
		assert.Contains(t, result, "Difference: 2")
	})

	t.Run("all exams", func(t *testing.T) {
		mockStats := &mocks.MockStatsService{
			ExamRegistrationsFunc: func(context.Context, int, time.Time) ([]service.ExamRegistration, error) {
				return []service.ExamRegistration{
					{ExamName: "C Piscine Exam 00"},
					{ExamName: "C Piscine Final Exam"},
				}, nil
			},
		}

		result, err := newTestHandlers(t, mockStats).ExamRegistrations(context.Background(), 44)

		require.NoError(t, err)
		assert.Contains(t, result, "Difference: 0\n\nInformation for C Piscine Final Exam")
	})

	t.Run("no exam", func(t *testing.T) {
		mockStats := &mocks.MockStatsService{
			ExamRegistrationsFunc: func(context.Context, int, time.Time) ([]service.ExamRegistration, error) {
				return nil, service.ErrNoExams
			},
		}

		_, err := newTestHandlers(t, mockStats).ExamRegistrations(context.Background(), 44)

		assert.EqualError(t, err, "No Exam found")
	})
}

func TestProjectDetail(t *testing.T) {
	report := service.StatusReport{
		CohortSize: 2,
		Enrollments: []models.ProjectUser{
			{Status: "finished", User: models.UserRef{Login: "adam"}, Project: models.ProjectRef{Name: "C 00"}},
		},
	}
	h := newTestHandlers(t, &mocks.MockStatsService{})

	t.Run("known project", func(t *testing.T) {
		out, err := h.ProjectDetail(report, "C 00")

		require.NoError(t, err)
		assert.Contains(t, out, "Overview of C 00")
		assert.Contains(t, out, "adam 0 tries Final Mark None:")
	})

	t.Run("unknown project", func(t *testing.T) {
		_, err := h.ProjectDetail(report, "Rush 00")

		assert.ErrorIs(t, err, service.ErrUnknownProject)
	})
}

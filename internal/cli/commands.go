package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/godilite/intra-stats/internal/format"
	"github.com/godilite/intra-stats/internal/service"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the command tree. Without a subcommand the
// interactive menu runs.
func NewRootCommand(h *Handlers, menu *Menu) *cobra.Command {
	root := &cobra.Command{
		Use:           "intra-stats",
		Short:         "Statistics about evaluations and piscines on the 42 intranet",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return menu.Run(cmd.Context())
		},
	}

	root.AddCommand(
		evaluatorScoreCommand(h),
		failOddsCommand(h),
		networkCommand(h),
		piscineCommand(h),
		campusCommand(h),
	)
	return root
}

func evaluatorScoreCommand(h *Handlers) *cobra.Command {
	return &cobra.Command{
		Use:   "evaluator-score LOGIN",
		Short: "Average mark LOGIN gives as an evaluator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := h.EvaluatorScore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func failOddsCommand(h *Handlers) *cobra.Command {
	return &cobra.Command{
		Use:   "fail-odds LOGIN",
		Short: "Odds that LOGIN fails the next project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := h.FailOdds(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func networkCommand(h *Handlers) *cobra.Command {
	var (
		top        int
		exportPath string
	)
	cmd := &cobra.Command{
		Use:   "network LOGIN",
		Short: "Who LOGIN evaluates and gets evaluated by the most",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			network, err := h.Network(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), format.NetworkTable(args[0], network, top))
			if exportPath == "" {
				return nil
			}
			if err := h.ExportNetwork(network, exportPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "exported to "+exportPath)
			return nil
		},
	}
	cmd.Flags().IntVar(&top, "top", defaultTopCount, "rows per column, 0 for all")
	cmd.Flags().StringVar(&exportPath, "export", "", "also write the full network to a .csv or .pdf file")
	return cmd
}

type cohortFlags struct {
	campus int
	year   int
	month  string
}

func (f *cohortFlags) register(cmd *cobra.Command, h *Handlers, withPool bool) {
	cmd.Flags().IntVar(&f.campus, "campus", 0, "campus id")
	_ = cmd.MarkFlagRequired("campus")
	if !withPool {
		return
	}
	now := h.now()
	cmd.Flags().IntVar(&f.year, "year", now.Year(), "year of the piscine")
	cmd.Flags().StringVar(&f.month, "month", service.PoolMonth(now.Month()), "month of the piscine")
}

func (f *cohortFlags) query() (service.PiscineQuery, error) {
	if err := validateYear(fmt.Sprint(f.year)); err != nil {
		return service.PiscineQuery{}, err
	}
	month := strings.ToLower(strings.TrimSpace(f.month))
	for m := 1; m <= 12; m++ {
		if service.PoolMonth(time.Month(m)) == month {
			return service.PiscineQuery{CampusID: f.campus, Year: f.year, Month: month}, nil
		}
	}
	return service.PiscineQuery{}, fmt.Errorf("unknown month %q", f.month)
}

func piscineCommand(h *Handlers) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "piscine",
		Short: "Analyze Piscine data",
	}

	var accepted cohortFlags
	acceptedCmd := &cobra.Command{
		Use:   "accepted",
		Short: "Pisciners who got accepted and registered to the Kickoff",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := accepted.query()
			if err != nil {
				return err
			}
			result, err := h.AcceptedPisciners(cmd.Context(), q)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), h.PiscineHeader(q)+"\n"+result)
			return nil
		},
	}
	accepted.register(acceptedCmd, h, true)

	var exams cohortFlags
	examsCmd := &cobra.Command{
		Use:   "exams",
		Short: "Pisciners not correctly subscribed to upcoming exams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := h.ExamRegistrations(cmd.Context(), exams.campus)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), result)
			return nil
		},
	}
	exams.register(examsCmd, h, false)

	var projects cohortFlags
	var project string
	projectsCmd := &cobra.Command{
		Use:   "projects",
		Short: "Project status summary of a Piscine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := projects.query()
			if err != nil {
				return err
			}
			report, err := h.ProjectStatus(cmd.Context(), q)
			if err != nil {
				return err
			}
			out := format.StatusOverview(report)
			if project != "" {
				if out, err = h.ProjectDetail(report, project); err != nil {
					return err
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), h.PiscineHeader(q)+"\n"+out)
			return nil
		},
	}
	projects.register(projectsCmd, h, true)
	projectsCmd.Flags().StringVar(&project, "project", "", "show the details of one project")

	cmd.AddCommand(acceptedCmd, examsCmd, projectsCmd)
	return cmd
}

func campusCommand(h *Handlers) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campus",
		Short: "Campus wide listings",
	}

	var active cohortFlags
	activeCmd := &cobra.Command{
		Use:   "active",
		Short: "Active users of a campus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := h.ActiveCampusLogins(cmd.Context(), active.campus)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), result)
			return nil
		},
	}
	active.register(activeCmd, h, false)

	cmd.AddCommand(activeCmd)
	return cmd
}

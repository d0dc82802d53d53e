// Command driftline is a terminal front end for the Driftline journaling
// service, built on the SDK in the repository root.
package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	driftline "github.com/driftline/driftline-go"
	"github.com/driftline/driftline-go/internal/tokenstore"
)

var (
	serviceURL string
	debug      bool
	noPersist  bool
)

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "driftline",
		Short: "Capture notes and explore the moments Driftline finds in them",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
			log.Logger = log.Output(zerolog.ConsoleWriter{
				Out:        os.Stderr,
				TimeFormat: "2006-01-02 15:04:05",
				NoColor:    true,
			})
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
				_ = os.Setenv("DRIFTLINE_DEBUG", "true")
				log.Debug().Msg("debug logging enabled")
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}

	defaultURL := getEnv("DRIFTLINE_API_URL", "http://localhost:8000")
	rootCmd.PersistentFlags().StringVar(&serviceURL, "service-url", defaultURL, "Base URL of the Driftline backend")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable verbose debug output")
	rootCmd.PersistentFlags().BoolVar(&noPersist, "no-persist", false, "Keep the session in memory only; nothing is written to disk")

	rootCmd.AddCommand(
		newLoginCmd(),
		newRegisterCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newNotesCmd(),
		newAnalyzeCmd(),
		newMomentsCmd(),
		newInsightsCmd(),
		newDemoCmd(),
	)
	return rootCmd
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newApp wires a client and session controller for one command invocation
// and restores any persisted session.
func newApp(cmd *cobra.Command) (*driftline.Client, *driftline.SessionController) {
	opts := []driftline.Option{driftline.WithNavigator(consoleNavigator{})}
	if noPersist {
		opts = append(opts, driftline.WithTokenStore(&tokenstore.Memory{}))
	}
	c := driftline.New(serviceURL, opts...)
	sc := driftline.NewSessionController(c)
	sc.Init(cmd.Context())
	return c, sc
}

// consoleNavigator maps the SDK's navigation side effects onto terminal
// messages; there is no page to move in a CLI.
type consoleNavigator struct{}

func (consoleNavigator) NavigateToLogin() {
	fmt.Fprintln(os.Stderr, "session expired; run `driftline login` to sign in again")
}

func (consoleNavigator) NavigateToMoments() {
	fmt.Fprintln(os.Stderr, "demo account ready; run `driftline moments` to explore")
}

func newLoginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sc := newApp(cmd)
			creds := driftline.Credentials{Email: email, Password: password}
			if err := sc.Login(cmd.Context(), creds); err != nil {
				if driftline.IsAuthError(err) {
					return fmt.Errorf("email or password rejected")
				}
				return err
			}
			fmt.Printf("signed in as %s\n", sc.Snapshot().Identity.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sc := newApp(cmd)
			creds := driftline.Credentials{Email: email, Password: password}
			if err := sc.Register(cmd.Context(), creds); err != nil {
				return err
			}
			fmt.Printf("registered %s\n", sc.Snapshot().Identity.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (min 6 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sc := newApp(cmd)
			sc.Logout()
			fmt.Println("logged out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sc := newApp(cmd)
			snap := sc.Snapshot()
			if !snap.Authenticated() {
				fmt.Println("not signed in")
				return nil
			}
			fmt.Printf("%s (id %d)\n", snap.Identity.Email, snap.Identity.ID)
			return nil
		},
	}
}

func newNotesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Work with captured notes",
	}
	cmd.AddCommand(newNotesListCmd(), newNotesAddCmd(), newNotesRmCmd())
	return cmd
}

func newNotesListCmd() *cobra.Command {
	var search, mood string
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, sc := newApp(cmd)
			if !sc.Snapshot().Authenticated() {
				return fmt.Errorf("sign in first")
			}
			lib := driftline.NewLibrary(c)
			defer lib.Close()
			if err := lib.Query(cmd.Context(), driftline.ListNotesQuery{Search: search, Mood: mood, Limit: limit}); err != nil {
				return err
			}
			notes := lib.State().Data
			if len(notes) == 0 {
				fmt.Println("no notes")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tMOOD\tENERGY\tTITLE\tCAPTURED")
			for _, n := range notes {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", n.ID, n.Mood, n.EnergyLevel, n.Title, n.CreatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Server-side free-text search")
	cmd.Flags().StringVar(&mood, "mood", "", "Filter by mood")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum notes to fetch")
	return cmd
}

func newNotesAddCmd() *cobra.Command {
	var title, content, mood string
	var energy int
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Capture a new note",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, sc := newApp(cmd)
			if !sc.Snapshot().Authenticated() {
				return fmt.Errorf("sign in first")
			}
			note, err := c.CreateNote(cmd.Context(), driftline.CreateNoteRequest{
				Title:       title,
				Content:     content,
				Mood:        mood,
				EnergyLevel: energy,
			})
			if err != nil {
				return err
			}
			fmt.Printf("captured note %d\n", note.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Note title")
	cmd.Flags().StringVar(&content, "content", "", "Note body")
	cmd.Flags().StringVar(&mood, "mood", "", "Mood tag")
	cmd.Flags().IntVar(&energy, "energy", 0, "Energy level 1-10")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func newNotesRmCmd() *cobra.Command {
	var id int
	cmd := &cobra.Command{
		Use:   "rm",
		Short: "Delete a note",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, sc := newApp(cmd)
			if !sc.Snapshot().Authenticated() {
				return fmt.Errorf("sign in first")
			}
			if err := c.DeleteNote(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("deleted note %d\n", id)
			return nil
		},
	}
	cmd.Flags().IntVar(&id, "id", 0, "Note ID")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var minClusterSize int
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Cluster notes into moments",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, sc := newApp(cmd)
			if !sc.Snapshot().Authenticated() {
				return fmt.Errorf("sign in first")
			}
			m := driftline.NewMoments(c)
			defer m.Close()
			if err := m.Analyze(cmd.Context(), driftline.AnalyzeRequest{MinClusterSize: minClusterSize}); err != nil {
				return err
			}
			run := m.LastRun()
			fmt.Printf("analyzed %d notes in %.2fs, found %d moments\n",
				run.TotalNotesAnalyzed, run.AnalysisTime, len(m.State().Data))
			printMoments(m.State().Data)
			return nil
		},
	}
	cmd.Flags().IntVar(&minClusterSize, "min-cluster-size", 2, "Minimum notes per moment")
	return cmd
}

func newMomentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "moments",
		Short: "Show previously computed moments",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, sc := newApp(cmd)
			if !sc.Snapshot().Authenticated() {
				return fmt.Errorf("sign in first")
			}
			m := driftline.NewMoments(c)
			defer m.Close()
			if err := m.Refresh(cmd.Context()); err != nil {
				return err
			}
			printMoments(m.State().Data)
			return nil
		},
	}
}

func printMoments(moments []driftline.Moment) {
	if len(moments) == 0 {
		fmt.Println("no moments yet; run `driftline analyze`")
		return
	}
	for _, mo := range moments {
		fmt.Printf("\n%s  [%s %.2f]\n", mo.Title, mo.EmotionalTone, mo.EmotionalScore)
		fmt.Printf("  %s\n", mo.Summary)
		if len(mo.Keywords) > 0 {
			fmt.Printf("  keywords: %s\n", strings.Join(mo.Keywords, ", "))
		}
		fmt.Printf("  %s - %s, %d notes\n",
			mo.StartDate.Format("Jan 2"), mo.EndDate.Format("Jan 2 2006"), mo.NoteCount)
	}
}

func newInsightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Show aggregate statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, sc := newApp(cmd)
			if !sc.Snapshot().Authenticated() {
				return fmt.Errorf("sign in first")
			}
			ins := driftline.NewInsights(c)
			defer ins.Close()
			if err := ins.Refresh(cmd.Context()); err != nil {
				return err
			}
			stats := ins.State().Data
			fmt.Printf("notes: %d  moments: %d  active in last week: %d\n",
				stats.TotalNotes, stats.TotalMoments, stats.RecentActivity)
			if len(stats.MoodDistribution) > 0 {
				fmt.Println("moods:")
				for mood, n := range stats.MoodDistribution {
					fmt.Printf("  %s\t%d\n", mood, n)
				}
			}
			for _, tr := range stats.EnergyTrends {
				fmt.Printf("  %s  avg energy %.1f over %d notes\n", tr.Date, tr.AverageEnergy, tr.NoteCount)
			}
			return nil
		},
	}
}

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Bootstrap the guided demo account",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, sc := newApp(cmd)
			if err := c.Health(cmd.Context()); err != nil {
				return fmt.Errorf("backend unreachable: %w", err)
			}
			seq := driftline.NewDemoSequencer(c, driftline.WithSession(sc))
			unsub := seq.Subscribe(func(s driftline.DemoState) {
				if s.Phase == driftline.DemoRunning {
					fmt.Printf("  %s\n", s.Step)
				}
			})
			defer unsub()
			if err := seq.Run(cmd.Context()); err != nil {
				return fmt.Errorf("demo bootstrap failed (try again): %w", err)
			}
			return nil
		},
	}
}

package main

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kass/go-land-area/pkg/area"
	"github.com/kass/go-land-area/pkg/config"
	"github.com/kass/go-land-area/pkg/geo"
	"github.com/kass/go-land-area/pkg/models"
	"github.com/kass/go-land-area/pkg/session"
	"github.com/kass/go-land-area/pkg/track"
)

var walkInterval time.Duration

var walkCmd = &cobra.Command{
	Use:   "walk [file]",
	Short: "Replay a walk around a plot",
	Long: `Replay recorded fixes into a tracking session one by one, then estimate the area.
Without a file a rectangle from the walk config section is walked.

Keys: p pause/resume, s stop and measure, q quit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWalk,
}

func init() {
	walkCmd.Flags().DurationVarP(&walkInterval, "interval", "i", 0, "Delay between fixes (overrides walk.step_interval)")
}

func runWalk(cmd *cobra.Command, args []string) error {
	var (
		fixes []models.GeoPoint
		err   error
	)
	if len(args) == 1 {
		fixes, err = track.Load(args[0])
		if err != nil {
			return err
		}
	} else {
		fixes = syntheticPlot(cfg.Walk)
	}

	interval := cfg.Walk.StepInterval
	if walkInterval > 0 {
		interval = walkInterval
	}

	out := cmd.OutOrStdout()
	if !isTerminal(out) {
		return replay(out, session.New(session.WithLogger(logger)), fixes)
	}

	// Session logs would tear the TUI, so it stays quiet here
	m := newWalkModel(session.New(), fixes, interval)
	if err := m.sess.Start(); err != nil {
		return err
	}

	final, err := tea.NewProgram(m, tea.WithOutput(out)).Run()
	if err != nil {
		return fmt.Errorf("failed to run walk: %w", err)
	}

	if wm, ok := final.(walkModel); ok && wm.result != nil {
		fmt.Fprintln(out, wm.result.String())
	}
	return nil
}

// replay feeds every fix without a UI
func replay(out io.Writer, sess *session.Session, fixes []models.GeoPoint) error {
	if err := sess.Start(); err != nil {
		return err
	}
	for _, fix := range fixes {
		if err := sess.Record(fix); err != nil {
			return err
		}
	}

	result, err := sess.Stop()
	if err != nil {
		return err
	}
	logger.Info("walk replayed", zap.Int("fixes", len(fixes)), zap.String("area", result.Summary()))
	fmt.Fprintln(out, result.String())
	return nil
}

// syntheticPlot walks a w x h meter rectangle counter-clockwise from its
// south-west corner, StepsPerSide fixes per side
func syntheticPlot(w config.Walk) []models.GeoPoint {
	dLat := w.Height / geo.MetersPerDegreeLat
	dLon := w.Width / (geo.MetersPerDegreeLon * math.Cos(w.Lat*math.Pi/180))

	corners := []models.GeoPoint{
		{Lat: w.Lat, Lon: w.Lon},
		{Lat: w.Lat, Lon: w.Lon + dLon},
		{Lat: w.Lat + dLat, Lon: w.Lon + dLon},
		{Lat: w.Lat + dLat, Lon: w.Lon},
	}

	steps := max(w.StepsPerSide, 1)
	fixes := make([]models.GeoPoint, 0, 4*steps)
	for i, from := range corners {
		to := corners[(i+1)%len(corners)]
		for k := 0; k < steps; k++ {
			f := float64(k) / float64(steps)
			fixes = append(fixes, models.GeoPoint{
				Lat: from.Lat + (to.Lat-from.Lat)*f,
				Lon: from.Lon + (to.Lon-from.Lon)*f,
			})
		}
	}
	return fixes
}

type stepMsg struct {
	gen int
}

type walkModel struct {
	sess     *session.Session
	fixes    []models.GeoPoint
	next     int
	interval time.Duration

	// gen invalidates step ticks scheduled before a pause
	gen int

	spinner  spinner.Model
	progress progress.Model
	result   *area.Result
	err      error
}

func newWalkModel(sess *session.Session, fixes []models.GeoPoint, interval time.Duration) walkModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))

	return walkModel{
		sess:     sess,
		fixes:    fixes,
		interval: interval,
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

func (m walkModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.step())
}

func (m walkModel) step() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return stepMsg{gen: gen}
	})
}

func (m walkModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = max(msg.Width-10, 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "p", " ":
			return m.togglePause()
		case "s":
			return m.stop(), nil
		}

	case stepMsg:
		if msg.gen != m.gen || m.sess.State() != session.StateTracking {
			return m, nil
		}
		if m.next < len(m.fixes) {
			if err := m.sess.Record(m.fixes[m.next]); err != nil {
				m.err = err
				return m, nil
			}
			m.next++
		}
		if m.next >= len(m.fixes) {
			return m.stop(), nil
		}
		return m, m.step()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m walkModel) togglePause() (tea.Model, tea.Cmd) {
	switch m.sess.State() {
	case session.StateTracking:
		if err := m.sess.Pause(); err != nil {
			m.err = err
		}
		return m, nil
	case session.StatePaused:
		if err := m.sess.Resume(); err != nil {
			m.err = err
			return m, nil
		}
		m.gen++
		return m, m.step()
	}
	return m, nil
}

func (m walkModel) stop() walkModel {
	if m.sess.State() == session.StateStopped {
		return m
	}
	result, err := m.sess.Stop()
	if err != nil {
		m.err = err
		return m
	}
	m.result = &result
	return m
}

func (m walkModel) percent() float64 {
	if len(m.fixes) == 0 {
		return 1
	}
	return float64(m.next) / float64(len(m.fixes))
}

func (m walkModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Walking the boundary"))
	b.WriteString("\n\n")

	switch m.sess.State() {
	case session.StateTracking:
		fmt.Fprintf(&b, "%s Recording fix %d of %d\n\n", m.spinner.View(), m.next, len(m.fixes))
		b.WriteString(m.progress.ViewAs(m.percent()))
	case session.StatePaused:
		fmt.Fprintf(&b, "%s %d of %d fixes recorded\n\n", infoStyle.Render("Paused"), m.next, len(m.fixes))
		b.WriteString(m.progress.ViewAs(m.percent()))
	case session.StateStopped:
		if m.result != nil {
			content := resultStyle.Render(m.result.String()) + "\n\n" +
				fmt.Sprintf("%s %s\n", dimStyle.Render("Fixes:"), statStyle.Render(fmt.Sprintf("%d", m.next))) +
				fmt.Sprintf("%s %s", dimStyle.Render("Perimeter:"), statStyle.Render(fmt.Sprintf("%.1f m", m.result.Perimeter)))
			b.WriteString(boxStyle.Render(content))
		}
	}

	if m.err != nil {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	}

	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("p pause/resume • s stop • q quit"))
	return b.String()
}

package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harbourgate/identity-go/pkg/identity"
)

// statsRefreshInterval is how often the dashboard re-fetches while open.
const statsRefreshInterval = 30 * time.Second

// StatsRequestedMsg asks the root model to fetch fresh statistics.
type StatsRequestedMsg struct{}

// StatsLoadedMsg delivers fetched statistics to the dashboard.
type StatsLoadedMsg struct {
	Stats *identity.UserStats
	Err   error
}

// StatsClosedMsg is sent when the dashboard is dismissed.
type StatsClosedMsg struct{}

// statsTickMsg drives periodic refresh while the dashboard is open.
type statsTickMsg time.Time

// Stats is the aggregate statistics dashboard. It refreshes itself on an
// interval while open; the ticker stops when the model is closed.
type Stats struct {
	stats     *identity.UserStats
	errText   string
	loading   bool
	closed    bool
	lastFetch time.Time
}

// NewStats creates the dashboard; the first fetch happens via Init.
func NewStats() *Stats {
	return &Stats{loading: true}
}

// Init implements tea.Model.
func (s *Stats) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return StatsRequestedMsg{} },
		s.tick(),
	)
}

func (s *Stats) tick() tea.Cmd {
	return tea.Tick(statsRefreshInterval, func(t time.Time) tea.Msg {
		return statsTickMsg(t)
	})
}

// Update implements tea.Model.
func (s *Stats) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StatsLoadedMsg:
		s.loading = false
		if msg.Err != nil {
			s.errText = msg.Err.Error()
			return s, nil
		}
		s.errText = ""
		s.stats = msg.Stats
		s.lastFetch = time.Now()
		return s, nil

	case statsTickMsg:
		if s.closed {
			return s, nil
		}
		return s, tea.Batch(
			func() tea.Msg { return StatsRequestedMsg{} },
			s.tick(),
		)

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			s.loading = true
			return s, func() tea.Msg { return StatsRequestedMsg{} }
		case "esc", "q":
			s.closed = true
			return s, func() tea.Msg { return StatsClosedMsg{} }
		}
	}
	return s, nil
}

// View implements tea.Model.
func (s *Stats) View() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("User statistics") + "\n")

	switch {
	case s.errText != "":
		b.WriteString(styleError.Render(s.errText) + "\n")
	case s.loading && s.stats == nil:
		b.WriteString(styleSubtitle.Render("Loading...") + "\n")
	case s.stats != nil:
		b.WriteString(fmt.Sprintf("%-18s %s\n", "Total users", styleValue.Render(fmt.Sprint(s.stats.TotalUsers))))
		b.WriteString(fmt.Sprintf("%-18s %s\n", "Active", styleOK.Render(fmt.Sprint(s.stats.ActiveUsers))))
		b.WriteString(fmt.Sprintf("%-18s %s\n", "Inactive", styleWarn.Render(fmt.Sprint(s.stats.InactiveUsers))))
		b.WriteString(fmt.Sprintf("%-18s %s\n", "Verified", styleValue.Render(fmt.Sprint(s.stats.VerifiedUsers))))
		b.WriteString(fmt.Sprintf("%-18s %s\n", "New today", styleValue.Render(fmt.Sprint(s.stats.NewUsersToday))))
		b.WriteString(fmt.Sprintf("%-18s %s\n", "New this week", styleValue.Render(fmt.Sprint(s.stats.NewUsersThisWeek))))

		if len(s.stats.ByRole) > 0 {
			b.WriteString("\n" + styleSubtitle.Render("By role") + "\n")
			roles := make([]string, 0, len(s.stats.ByRole))
			for role := range s.stats.ByRole {
				roles = append(roles, role)
			}
			sort.Strings(roles)
			for _, role := range roles {
				b.WriteString(fmt.Sprintf("  %-16s %d\n", role, s.stats.ByRole[role]))
			}
		}

		if !s.lastFetch.IsZero() {
			b.WriteString("\n" + styleSubtitle.Render("updated "+s.lastFetch.Format("15:04:05")) + "\n")
		}
	}

	b.WriteString(helpLine("r", "Refresh", "esc", "Back"))
	return stylePanel.Render(b.String())
}

package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harbourgate/identity-go/pkg/identity"
	"github.com/harbourgate/identity-go/pkg/session"
)

// Screen identifies the active screen of the root model.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenRegister
	ScreenHome
	ScreenProfile
	ScreenUsers
	ScreenStats
)

// sessionInitMsg carries the result of restoring the stored session.
type sessionInitMsg struct{}

// authDoneMsg carries the outcome of a login or register attempt.
type authDoneMsg struct {
	err error
}

// profileSaveDoneMsg carries the outcome of a profile update.
type profileSaveDoneMsg struct {
	err error
}

// adminActionDoneMsg carries the outcome of a role change or deletion; on
// success the user list is re-fetched.
type adminActionDoneMsg struct {
	err error
}

// App is the root model. It owns the session manager, routes messages to
// the active screen and executes the commands child screens request.
type App struct {
	mgr    *session.Manager
	client *identity.Client
	screen Screen

	login    *Login
	register *Register
	profile  *Profile
	users    *Users
	stats    *Stats

	adminGate Gate
	statsGate Gate

	width  int
	height int
}

// NewApp wires the root model around a session manager.
func NewApp(mgr *session.Manager, client *identity.Client) *App {
	return &App{
		mgr:       mgr,
		client:    client,
		screen:    ScreenLogin,
		login:     NewLogin(""),
		adminGate: Gate{RequiredRole: identity.RoleAdmin},
		statsGate: Gate{
			RequiredRole:        identity.RoleAdmin,
			RequiredPermissions: []identity.Permission{identity.PermViewStats},
		},
	}
}

// Init implements tea.Model. It restores the stored session before
// showing anything interactive.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			a.mgr.Initialize(context.Background())
			return sessionInitMsg{}
		},
		a.login.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.mgr.Close()
			return a, tea.Quit
		}

	case sessionInitMsg:
		if a.mgr.Store().State().IsAuthenticated() {
			a.screen = ScreenHome
		}
		return a, nil

	case LoginSubmittedMsg:
		return a, func() tea.Msg {
			return authDoneMsg{err: a.mgr.Login(context.Background(), msg.Email, msg.Password)}
		}

	case RegisterSubmittedMsg:
		return a, func() tea.Msg {
			return authDoneMsg{err: a.mgr.Register(context.Background(), msg.Data)}
		}

	case SwitchToRegisterMsg:
		a.screen = ScreenRegister
		a.register = NewRegister("")
		return a, a.register.Init()

	case RegisterCancelledMsg, LoginCancelledMsg:
		a.screen = ScreenLogin
		a.login = NewLogin("")
		return a, a.login.Init()

	case authDoneMsg:
		if msg.err != nil {
			if a.screen == ScreenRegister {
				a.register = NewRegister(msg.err.Error())
				return a, a.register.Init()
			}
			a.login = NewLogin(msg.err.Error())
			return a, a.login.Init()
		}
		a.screen = ScreenHome
		return a, nil

	case ProfileSavedMsg:
		return a, func() tea.Msg {
			return profileSaveDoneMsg{err: a.mgr.UpdateProfile(context.Background(), msg.Update)}
		}

	case profileSaveDoneMsg:
		if a.profile != nil && msg.err == nil {
			a.profile.SetUser(a.mgr.Store().State().User)
		}
		return a, nil

	case ProfileClosedMsg, UsersClosedMsg, StatsClosedMsg:
		a.screen = ScreenHome
		a.profile, a.users, a.stats = nil, nil, nil
		return a, nil

	case UsersRequestedMsg:
		return a, a.fetchUsers(msg.Page, msg.Search)

	case RoleChangeRequestedMsg:
		return a, func() tea.Msg {
			_, err := a.client.ChangeUserRole(context.Background(), msg.UserID, msg.Role)
			return adminActionDoneMsg{err: err}
		}

	case UserDeleteRequestedMsg:
		return a, func() tea.Msg {
			return adminActionDoneMsg{err: a.client.DeleteUser(context.Background(), msg.UserID)}
		}

	case adminActionDoneMsg:
		if a.users == nil {
			return a, nil
		}
		if msg.err != nil {
			return a, a.routeCmd(UsersLoadedMsg{Err: msg.err})
		}
		return a, a.users.request()

	case StatsRequestedMsg:
		return a, func() tea.Msg {
			stats, err := a.client.GetUserStats(context.Background())
			return StatsLoadedMsg{Stats: stats, Err: err}
		}
	}

	return a, a.routeCmd(msg)
}

// routeCmd forwards msg to the active child model.
func (a *App) routeCmd(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.screen {
	case ScreenLogin:
		if a.login != nil {
			var model tea.Model
			model, cmd = a.login.Update(msg)
			a.login = model.(*Login)
		}
	case ScreenRegister:
		if a.register != nil {
			var model tea.Model
			model, cmd = a.register.Update(msg)
			a.register = model.(*Register)
		}
	case ScreenHome:
		cmd = a.updateHome(msg)
	case ScreenProfile:
		if a.profile != nil {
			var model tea.Model
			model, cmd = a.profile.Update(msg)
			a.profile = model.(*Profile)
		}
	case ScreenUsers:
		if a.users != nil {
			var model tea.Model
			model, cmd = a.users.Update(msg)
			a.users = model.(*Users)
		}
	case ScreenStats:
		if a.stats != nil {
			var model tea.Model
			model, cmd = a.stats.Update(msg)
			a.stats = model.(*Stats)
		}
	}
	return cmd
}

func (a *App) updateHome(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	state := a.mgr.Store().State()
	switch key.String() {
	case "p":
		if state.User != nil {
			a.profile = NewProfile(state.User)
			a.screen = ScreenProfile
		}
	case "u":
		if a.adminGate.Allows(state.User) {
			a.users = NewUsers()
			a.screen = ScreenUsers
			return a.users.Init()
		}
	case "s":
		if a.statsGate.Allows(state.User) {
			a.stats = NewStats()
			a.screen = ScreenStats
			return a.stats.Init()
		}
	case "q":
		a.mgr.Close()
		return tea.Quit
	case "x":
		a.mgr.Logout(context.Background())
		a.screen = ScreenLogin
		a.login = NewLogin("")
		return a.login.Init()
	}
	return nil
}

// fetchUsers builds the command behind UsersRequestedMsg. A search query
// routes to the search endpoint; browsing uses the paged list.
func (a *App) fetchUsers(page int, search string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if search != "" {
			items, err := a.client.SearchUsers(ctx, search, usersPageSize)
			if err != nil {
				return UsersLoadedMsg{Err: err}
			}
			return UsersLoadedMsg{List: &identity.UserList{
				Items: items, Page: 1, Limit: usersPageSize, Total: len(items), TotalPages: 1,
			}}
		}

		list, err := a.client.GetUsers(ctx, page, usersPageSize, nil)
		return UsersLoadedMsg{List: list, Err: err}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	switch a.screen {
	case ScreenLogin:
		if a.login != nil {
			return a.login.View()
		}
	case ScreenRegister:
		if a.register != nil {
			return a.register.View()
		}
	case ScreenProfile:
		if a.profile != nil {
			return a.profile.View()
		}
	case ScreenUsers:
		if a.users != nil {
			return a.adminGate.Render(a.mgr.Store().State().User, a.users.View())
		}
	case ScreenStats:
		if a.stats != nil {
			return a.statsGate.Render(a.mgr.Store().State().User, a.stats.View())
		}
	}
	return a.viewHome()
}

func (a *App) viewHome() string {
	state := a.mgr.Store().State()
	if state.Loading {
		return styleSubtitle.Render("Restoring session...")
	}

	var b strings.Builder
	b.WriteString(styleTitle.Render("Identity") + "\n")
	if state.User != nil {
		name := state.User.DisplayName
		if name == "" {
			name = state.User.Email
		}
		b.WriteString(fmt.Sprintf("Signed in as %s (%s)\n",
			styleValue.Render(name), state.User.Role))
	}
	if state.Err != "" {
		b.WriteString(styleError.Render(state.Err) + "\n")
	}

	pairs := []string{"p", "Profile"}
	if a.adminGate.Allows(state.User) {
		pairs = append(pairs, "u", "Users")
	}
	if a.statsGate.Allows(state.User) {
		pairs = append(pairs, "s", "Stats")
	}
	pairs = append(pairs, "x", "Sign out", "q", "Quit")
	b.WriteString(helpLine(pairs...))
	return b.String()
}

// Run starts the TUI over an initialized manager and blocks until quit.
func Run(mgr *session.Manager, client *identity.Client) error {
	app := NewApp(mgr, client)
	program := tea.NewProgram(app, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

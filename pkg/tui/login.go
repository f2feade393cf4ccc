package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// LoginSubmittedMsg is sent when the sign-in form completes.
type LoginSubmittedMsg struct {
	Email    string
	Password string
}

// LoginCancelledMsg is sent when the sign-in form is aborted.
type LoginCancelledMsg struct{}

// SwitchToRegisterMsg asks the root model to show the registration form.
type SwitchToRegisterMsg struct{}

// Login is the sign-in form model.
type Login struct {
	form     *huh.Form
	email    string
	password string
	errText  string
}

// NewLogin creates a fresh sign-in form. errText, when non-empty, is shown
// above the form; it carries the failure of a previous attempt.
func NewLogin(errText string) *Login {
	l := &Login{errText: errText}
	l.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("Email").
				Placeholder("you@example.com").
				Value(&l.email),
			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&l.password),
		),
	).WithShowHelp(false)
	return l
}

// Init implements tea.Model.
func (l *Login) Init() tea.Cmd {
	return l.form.Init()
}

// Update implements tea.Model.
func (l *Login) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return l, func() tea.Msg { return LoginCancelledMsg{} }
		case "ctrl+r":
			return l, func() tea.Msg { return SwitchToRegisterMsg{} }
		}
	}

	model, cmd := l.form.Update(msg)
	if form, ok := model.(*huh.Form); ok {
		l.form = form
	}

	if l.form.State == huh.StateCompleted {
		email, password := l.email, l.password
		return l, func() tea.Msg {
			return LoginSubmittedMsg{Email: email, Password: password}
		}
	}
	return l, cmd
}

// View implements tea.Model.
func (l *Login) View() string {
	out := styleTitle.Render("Sign in") + "\n"
	if l.errText != "" {
		out += styleError.Render(l.errText) + "\n\n"
	}
	out += l.form.View()
	out += helpLine("enter", "Submit", "ctrl+r", "Register", "esc", "Cancel")
	return out
}

package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/harbourgate/identity-go/pkg/identity"
)

// RegisterSubmittedMsg is sent when the registration form completes.
type RegisterSubmittedMsg struct {
	Data identity.RegisterData
}

// RegisterCancelledMsg is sent when registration is aborted.
type RegisterCancelledMsg struct{}

// Register is the account-creation form model.
type Register struct {
	form        *huh.Form
	email       string
	password    string
	displayName string
	errText     string
}

// NewRegister creates a fresh registration form.
func NewRegister(errText string) *Register {
	r := &Register{errText: errText}
	r.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("Email").
				Placeholder("you@example.com").
				Value(&r.email),
			huh.NewInput().
				Key("password").
				Title("Password").
				Description("At least 8 characters with upper case, lower case and a digit").
				EchoMode(huh.EchoModePassword).
				Value(&r.password),
			huh.NewInput().
				Key("displayName").
				Title("Display name").
				Value(&r.displayName),
		),
	).WithShowHelp(false)
	return r
}

// Init implements tea.Model.
func (r *Register) Init() tea.Cmd {
	return r.form.Init()
}

// Update implements tea.Model.
func (r *Register) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		return r, func() tea.Msg { return RegisterCancelledMsg{} }
	}

	model, cmd := r.form.Update(msg)
	if form, ok := model.(*huh.Form); ok {
		r.form = form
	}

	if r.form.State == huh.StateCompleted {
		data := identity.RegisterData{
			Email:       r.email,
			Password:    r.password,
			DisplayName: r.displayName,
		}
		return r, func() tea.Msg { return RegisterSubmittedMsg{Data: data} }
	}
	return r, cmd
}

// View implements tea.Model.
func (r *Register) View() string {
	out := styleTitle.Render("Create account") + "\n"
	if r.errText != "" {
		out += styleError.Render(r.errText) + "\n\n"
	}
	out += r.form.View()
	out += helpLine("enter", "Submit", "esc", "Back to sign in")
	return out
}

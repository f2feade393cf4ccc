package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/harbourgate/identity-go/pkg/identity"
)

// ProfileSavedMsg is sent when the edit form completes with changes.
type ProfileSavedMsg struct {
	Update identity.ProfileUpdate
}

// ProfileClosedMsg is sent when the profile screen is dismissed.
type ProfileClosedMsg struct{}

// Profile shows the signed-in user's record and an inline edit form.
type Profile struct {
	user    *identity.User
	editing bool
	form    *huh.Form

	displayName string
	phone       string
	photoURL    string
}

// NewProfile creates the profile screen for user.
func NewProfile(user *identity.User) *Profile {
	return &Profile{user: user}
}

// SetUser replaces the displayed record, typically after a save returned
// the server's canonical copy.
func (p *Profile) SetUser(user *identity.User) {
	p.user = user
}

// Init implements tea.Model.
func (p *Profile) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p *Profile) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.editing {
		return p.updateEditing(msg)
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "e":
			return p, p.startEditing()
		case "esc", "q":
			return p, func() tea.Msg { return ProfileClosedMsg{} }
		}
	}
	return p, nil
}

func (p *Profile) startEditing() tea.Cmd {
	p.displayName = p.user.DisplayName
	p.phone = p.user.Phone
	p.photoURL = p.user.PhotoURL

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Key("displayName").Title("Display name").Value(&p.displayName),
			huh.NewInput().Key("phone").Title("Phone").Value(&p.phone),
			huh.NewInput().Key("photoURL").Title("Photo URL").Value(&p.photoURL),
		),
	).WithShowHelp(false)
	p.editing = true
	return p.form.Init()
}

func (p *Profile) updateEditing(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		p.editing = false
		return p, nil
	}

	model, cmd := p.form.Update(msg)
	if form, ok := model.(*huh.Form); ok {
		p.form = form
	}

	if p.form.State == huh.StateCompleted {
		p.editing = false
		update := p.collectChanges()
		if update.DisplayName == nil && update.PhotoURL == nil && update.Phone == nil &&
			update.Preferences == nil && update.CustomData == nil {
			return p, nil
		}
		return p, func() tea.Msg { return ProfileSavedMsg{Update: update} }
	}
	return p, cmd
}

// collectChanges builds a partial update carrying only edited fields.
func (p *Profile) collectChanges() identity.ProfileUpdate {
	var update identity.ProfileUpdate
	if p.displayName != p.user.DisplayName {
		v := p.displayName
		update.DisplayName = &v
	}
	if p.phone != p.user.Phone {
		v := p.phone
		update.Phone = &v
	}
	if p.photoURL != p.user.PhotoURL {
		v := p.photoURL
		update.PhotoURL = &v
	}
	return update
}

// View implements tea.Model.
func (p *Profile) View() string {
	if p.editing {
		return styleTitle.Render("Edit profile") + "\n" + p.form.View() +
			helpLine("enter", "Save", "esc", "Discard")
	}

	var b strings.Builder
	b.WriteString(styleTitle.Render("Profile") + "\n")

	rows := []struct{ label, value string }{
		{"Email", p.user.Email},
		{"Display name", p.user.DisplayName},
		{"Phone", p.user.Phone},
		{"Role", string(p.user.Role)},
	}
	for _, row := range rows {
		value := row.value
		if value == "" {
			value = styleSubtitle.Render("not set")
		} else {
			value = styleValue.Render(value)
		}
		b.WriteString(fmt.Sprintf("%-14s %s\n", row.label, value))
	}

	if p.user.Metadata.EmailVerified {
		b.WriteString(styleOK.Render("email verified") + "\n")
	} else {
		b.WriteString(styleWarn.Render("email not verified") + "\n")
	}
	if len(p.user.Permissions) > 0 {
		perms := make([]string, len(p.user.Permissions))
		for i, perm := range p.user.Permissions {
			perms[i] = string(perm)
		}
		b.WriteString(fmt.Sprintf("%-14s %s\n", "Permissions", strings.Join(perms, ", ")))
	}

	b.WriteString(helpLine("e", "Edit", "esc", "Back"))
	return stylePanel.Render(b.String())
}

package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/harbourgate/identity-go/pkg/identity"
)

const usersPageSize = 15

// UsersRequestedMsg asks the root model to fetch a page of users.
type UsersRequestedMsg struct {
	Page   int
	Search string
}

// UsersLoadedMsg delivers a fetched page to the browser.
type UsersLoadedMsg struct {
	List *identity.UserList
	Err  error
}

// RoleChangeRequestedMsg asks the root model to change a user's role.
type RoleChangeRequestedMsg struct {
	UserID string
	Role   identity.Role
}

// UserDeleteRequestedMsg asks the root model to delete a user.
type UserDeleteRequestedMsg struct {
	UserID string
}

// UsersClosedMsg is sent when the browser is dismissed.
type UsersClosedMsg struct{}

type usersMode int

const (
	usersBrowsing usersMode = iota
	usersSearching
	usersEditingRole
	usersConfirmingDelete
)

// Users is the admin user browser: a paged table with search, role
// reassignment and deletion.
type Users struct {
	table  table.Model
	search textinput.Model
	mode   usersMode

	list    *identity.UserList
	page    int
	query   string
	errText string
	loading bool

	roleForm    *huh.Form
	pendingRole identity.Role
	confirmForm *huh.Form
	confirmed   bool
	targetID    string
}

// NewUsers creates the browser. The first page must be requested through
// Init's UsersRequestedMsg.
func NewUsers() *Users {
	cols := []table.Column{
		{Title: "Email", Width: 30},
		{Title: "Name", Width: 20},
		{Title: "Role", Width: 12},
		{Title: "Active", Width: 6},
	}
	tbl := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(usersPageSize),
	)

	search := textinput.New()
	search.Placeholder = "search users"

	return &Users{table: tbl, search: search, page: 1, loading: true}
}

// Init implements tea.Model.
func (u *Users) Init() tea.Cmd {
	return u.request()
}

func (u *Users) request() tea.Cmd {
	page, query := u.page, u.query
	u.loading = true
	return func() tea.Msg { return UsersRequestedMsg{Page: page, Search: query} }
}

// Update implements tea.Model.
func (u *Users) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if loaded, ok := msg.(UsersLoadedMsg); ok {
		u.loading = false
		if loaded.Err != nil {
			u.errText = loaded.Err.Error()
			return u, nil
		}
		u.errText = ""
		u.list = loaded.List
		u.page = loaded.List.Page
		u.fillTable()
		return u, nil
	}

	switch u.mode {
	case usersSearching:
		return u.updateSearching(msg)
	case usersEditingRole:
		return u.updateRoleForm(msg)
	case usersConfirmingDelete:
		return u.updateConfirm(msg)
	}
	return u.updateBrowsing(msg)
}

func (u *Users) updateBrowsing(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		u.table, cmd = u.table.Update(msg)
		return u, cmd
	}

	switch key.String() {
	case "esc", "q":
		return u, func() tea.Msg { return UsersClosedMsg{} }
	case "/":
		u.mode = usersSearching
		u.search.SetValue(u.query)
		u.search.Focus()
		return u, textinput.Blink
	case "n", "right":
		if u.list != nil && u.page < u.list.TotalPages {
			u.page++
			return u, u.request()
		}
		return u, nil
	case "p", "left":
		if u.page > 1 {
			u.page--
			return u, u.request()
		}
		return u, nil
	case "r":
		if sel := u.selectedUser(); sel != nil {
			return u, u.startRoleEdit(sel)
		}
		return u, nil
	case "d":
		if sel := u.selectedUser(); sel != nil {
			return u, u.startDeleteConfirm(sel)
		}
		return u, nil
	}

	var cmd tea.Cmd
	u.table, cmd = u.table.Update(msg)
	return u, cmd
}

func (u *Users) updateSearching(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			u.mode = usersBrowsing
			u.query = u.search.Value()
			u.page = 1
			u.search.Blur()
			return u, u.request()
		case "esc":
			u.mode = usersBrowsing
			u.search.Blur()
			return u, nil
		}
	}

	var cmd tea.Cmd
	u.search, cmd = u.search.Update(msg)
	return u, cmd
}

func (u *Users) startRoleEdit(target *identity.User) tea.Cmd {
	u.targetID = target.ID
	u.pendingRole = target.Role

	options := make([]huh.Option[identity.Role], 0, len(identity.AllRoles()))
	for _, role := range identity.AllRoles() {
		options = append(options, huh.NewOption(string(role), role))
	}

	u.roleForm = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[identity.Role]().
				Key("role").
				Title("Role for " + target.Email).
				Options(options...).
				Value(&u.pendingRole),
		),
	).WithShowHelp(false)
	u.mode = usersEditingRole
	return u.roleForm.Init()
}

func (u *Users) updateRoleForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		u.mode = usersBrowsing
		return u, nil
	}

	model, cmd := u.roleForm.Update(msg)
	if form, ok := model.(*huh.Form); ok {
		u.roleForm = form
	}

	if u.roleForm.State == huh.StateCompleted {
		u.mode = usersBrowsing
		id, role := u.targetID, u.pendingRole
		return u, func() tea.Msg { return RoleChangeRequestedMsg{UserID: id, Role: role} }
	}
	return u, cmd
}

func (u *Users) startDeleteConfirm(target *identity.User) tea.Cmd {
	u.targetID = target.ID
	u.confirmed = false
	u.confirmForm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title("Delete " + target.Email + "?").
				Affirmative("Delete").
				Negative("Keep").
				Value(&u.confirmed),
		),
	).WithShowHelp(false)
	u.mode = usersConfirmingDelete
	return u.confirmForm.Init()
}

func (u *Users) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		u.mode = usersBrowsing
		return u, nil
	}

	model, cmd := u.confirmForm.Update(msg)
	if form, ok := model.(*huh.Form); ok {
		u.confirmForm = form
	}

	if u.confirmForm.State == huh.StateCompleted {
		u.mode = usersBrowsing
		if !u.confirmed {
			return u, nil
		}
		id := u.targetID
		return u, func() tea.Msg { return UserDeleteRequestedMsg{UserID: id} }
	}
	return u, cmd
}

func (u *Users) selectedUser() *identity.User {
	if u.list == nil {
		return nil
	}
	idx := u.table.Cursor()
	if idx < 0 || idx >= len(u.list.Items) {
		return nil
	}
	return &u.list.Items[idx]
}

func (u *Users) fillTable() {
	rows := make([]table.Row, 0, len(u.list.Items))
	for _, item := range u.list.Items {
		active := "yes"
		if !item.IsActive {
			active = "no"
		}
		rows = append(rows, table.Row{item.Email, item.DisplayName, string(item.Role), active})
	}
	u.table.SetRows(rows)
}

// View implements tea.Model.
func (u *Users) View() string {
	switch u.mode {
	case usersEditingRole:
		return styleTitle.Render("Change role") + "\n" + u.roleForm.View()
	case usersConfirmingDelete:
		return styleTitle.Render("Confirm deletion") + "\n" + u.confirmForm.View()
	}

	out := styleTitle.Render("Users") + "\n"
	if u.mode == usersSearching {
		out += u.search.View() + "\n"
	} else if u.query != "" {
		out += styleSubtitle.Render("filter: "+u.query) + "\n"
	}

	switch {
	case u.errText != "":
		out += styleError.Render(u.errText) + "\n"
	case u.loading:
		out += styleSubtitle.Render("Loading...") + "\n"
	default:
		out += u.table.View() + "\n"
		if u.list != nil {
			out += styleSubtitle.Render(fmt.Sprintf(
				"page %s of %s (%d users)",
				strconv.Itoa(u.list.Page), strconv.Itoa(u.list.TotalPages), u.list.Total,
			)) + "\n"
		}
	}

	out += helpLine(
		"/", "Search", "←/→", "Page", "r", "Role", "d", "Delete", "esc", "Back",
	)
	return out
}

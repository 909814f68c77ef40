package ui

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// authScreen holds the login and registration form shown while logged out.
type authScreen struct {
	usernameEntry  *widget.Entry
	passwordEntry  *widget.Entry
	loginButton    *widget.Button
	registerButton *widget.Button
	content        fyne.CanvasObject
}

func (ui *TaskWindowUI) newAuthScreen() *authScreen {
	s := &authScreen{}

	s.usernameEntry = widget.NewEntry()
	s.usernameEntry.SetPlaceHolder("Username")

	s.passwordEntry = widget.NewPasswordEntry()
	s.passwordEntry.SetPlaceHolder("Password")
	s.passwordEntry.OnSubmitted = func(string) { ui.login() }

	s.loginButton = widget.NewButton("Login", ui.login)
	s.loginButton.Importance = widget.HighImportance
	s.registerButton = widget.NewButton("Register", ui.register)

	form := container.NewVBox(
		widget.NewLabel("Please log in or create an account"),
		s.usernameEntry,
		s.passwordEntry,
		container.NewGridWithColumns(2, s.loginButton, s.registerButton),
	)
	card := widget.NewCard("To-Do Manager", "", form)
	s.content = container.NewCenter(container.NewGridWrap(fyne.NewSize(340, 240), card))
	return s
}

// credentials returns the trimmed username and the raw password, or false
// when either is empty.
func (ui *TaskWindowUI) credentials() (string, string, bool) {
	username := strings.TrimSpace(ui.auth.usernameEntry.Text)
	password := ui.auth.passwordEntry.Text
	if username == "" || password == "" {
		ui.ShowError("Username and password are required.")
		return "", "", false
	}
	return username, password, true
}

func (ui *TaskWindowUI) login() {
	username, password, ok := ui.credentials()
	if !ok {
		return
	}
	ui.run(func() { _ = ui.client.Login(ui.ctx, username, password) })
}

func (ui *TaskWindowUI) register() {
	username, password, ok := ui.credentials()
	if !ok {
		return
	}
	ui.run(func() { _ = ui.client.Register(ui.ctx, username, password) })
}

func (ui *TaskWindowUI) ClearAuthForms() {
	fyne.Do(func() {
		ui.auth.usernameEntry.SetText("")
		ui.auth.passwordEntry.SetText("")
	})
}

package ui

import (
	"context"
	"errors"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	log "github.com/sirupsen/logrus"

	"github.com/todo-manager/v2/core"
	"github.com/todo-manager/v2/internal/types"
)

// TaskWindowUI is the single application window. It implements core.View;
// every View method may be called from any goroutine and hops onto the
// UI thread with fyne.Do.
type TaskWindowUI struct {
	App fyne.App
	Win fyne.Window

	client *core.SessionClient
	ctx    context.Context
	// run executes a user action off the UI thread.
	run func(func())

	auth        *authScreen
	main        fyne.CanvasObject
	statusLabel *widget.Label

	categoryList        *fyne.Container
	categoryName        *widget.Entry
	categoryDescription *widget.Entry

	// categoryNames backs the category choices of both task forms.
	categoryNames []string

	taskList        *fyne.Container
	taskTitle       *widget.Entry
	taskDescription *widget.Entry
	taskCategory    *widget.SelectEntry
	taskDueDate     *widget.Entry
	taskHours       *widget.Entry
	taskPriority    *widget.Select

	editor *taskEditor
}

var _ core.View = (*TaskWindowUI)(nil)

// NewTaskWindow builds the window. Bind must be called before it is shown.
func NewTaskWindow(a fyne.App, icon fyne.Resource) *TaskWindowUI {
	ctx, cancel := context.WithCancel(context.Background())
	ui := &TaskWindowUI{
		App: a,
		ctx: ctx,
		run: func(f func()) { go f() },
	}
	a.Lifecycle().SetOnStopped(cancel)

	ui.Win = a.NewWindow("To-Do Manager")
	ui.Win.Resize(fyne.NewSize(960, 640))
	if icon != nil {
		ui.Win.SetIcon(icon)
	}

	ui.setupUI()
	ui.setupSystemTray(icon)
	return ui
}

// Bind connects the window to the client that drives it.
func (ui *TaskWindowUI) Bind(client *core.SessionClient) {
	ui.client = client
}

func (ui *TaskWindowUI) setupUI() {
	ui.auth = ui.newAuthScreen()
	ui.statusLabel = widget.NewLabel("")
	ui.statusLabel.Wrapping = fyne.TextWrapWord

	logoutButton := widget.NewButtonWithIcon("Logout", theme.LogoutIcon(), func() {
		ui.run(ui.client.Logout)
	})
	title := widget.NewLabelWithStyle("My Tasks", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	header := container.NewBorder(nil, nil, title, logoutButton)

	split := container.NewHSplit(ui.categoryPane(), ui.taskPane())
	split.Offset = 0.35
	ui.main = container.NewBorder(header, nil, nil, nil, split)

	ui.main.Hide()
	ui.Win.SetContent(container.NewBorder(nil, ui.statusLabel, nil, nil, ui.auth.content, ui.main))
}

func (ui *TaskWindowUI) categoryPane() fyne.CanvasObject {
	ui.categoryName = widget.NewEntry()
	ui.categoryName.SetPlaceHolder("Category name")
	ui.categoryDescription = widget.NewEntry()
	ui.categoryDescription.SetPlaceHolder("Description (optional)")

	addButton := widget.NewButtonWithIcon("Add Category", theme.ContentAddIcon(), ui.createCategory)
	form := container.NewVBox(ui.categoryName, ui.categoryDescription, addButton)

	ui.categoryList = container.NewVBox()
	return widget.NewCard("Categories", "", container.NewBorder(form, nil, nil, nil, container.NewVScroll(ui.categoryList)))
}

func (ui *TaskWindowUI) taskPane() fyne.CanvasObject {
	ui.taskTitle = widget.NewEntry()
	ui.taskTitle.SetPlaceHolder("Task title")
	ui.taskDescription = widget.NewMultiLineEntry()
	ui.taskDescription.SetPlaceHolder("Description")
	ui.taskDescription.SetMinRowsVisible(2)
	ui.taskCategory = widget.NewSelectEntry(nil)
	ui.taskCategory.SetPlaceHolder("Category")
	ui.taskDueDate = widget.NewEntry()
	ui.taskDueDate.SetPlaceHolder("Due date (YYYY-MM-DD)")
	ui.taskHours = widget.NewEntry()
	ui.taskHours.SetPlaceHolder("Estimated hours")
	ui.taskPriority = widget.NewSelect(types.Priorities, nil)
	ui.taskPriority.PlaceHolder = "Priority"

	addButton := widget.NewButtonWithIcon("Add Task", theme.ContentAddIcon(), ui.createTask)
	addButton.Importance = widget.HighImportance

	form := container.NewVBox(
		ui.taskTitle,
		ui.taskDescription,
		container.NewGridWithColumns(2, ui.taskCategory, ui.taskDueDate),
		container.NewGridWithColumns(2, ui.taskHours, ui.taskPriority),
		addButton,
	)

	ui.taskList = container.NewVBox()
	return widget.NewCard("Tasks", "", container.NewBorder(form, nil, nil, nil, container.NewVScroll(ui.taskList)))
}

func (ui *TaskWindowUI) createCategory() {
	name, description := ui.categoryName.Text, ui.categoryDescription.Text
	ui.run(func() { _ = ui.client.CreateCategory(ui.ctx, name, description) })
}

func (ui *TaskWindowUI) createTask() {
	form := core.TaskForm{
		Title:          ui.taskTitle.Text,
		Description:    ui.taskDescription.Text,
		CategoryName:   ui.taskCategory.Text,
		DueDate:        ui.taskDueDate.Text,
		EstimatedHours: ui.taskHours.Text,
		Priority:       ui.taskPriority.Selected,
	}
	ui.run(func() { _ = ui.client.CreateTask(ui.ctx, form) })
}

func (ui *TaskWindowUI) ShowAuth() {
	fyne.Do(func() {
		ui.main.Hide()
		ui.auth.content.Show()
		ui.Win.Canvas().Focus(ui.auth.usernameEntry)
	})
}

func (ui *TaskWindowUI) ShowMain() {
	fyne.Do(func() {
		ui.auth.content.Hide()
		ui.main.Show()
		ui.statusLabel.SetText("")
	})
}

func (ui *TaskWindowUI) ShowMessage(msg string) {
	fyne.Do(func() {
		ui.statusLabel.SetText(msg)
		dialog.ShowInformation("To-Do Manager", msg, ui.Win)
	})
}

func (ui *TaskWindowUI) ShowError(msg string) {
	fyne.Do(func() {
		ui.statusLabel.SetText(msg)
		dialog.ShowError(errors.New(msg), ui.Win)
	})
}

// Confirm runs onResult off the UI thread since it may issue requests.
func (ui *TaskWindowUI) Confirm(title, message string, onResult func(confirmed bool)) {
	fyne.Do(func() {
		dialog.ShowConfirm(title, message, func(ok bool) {
			ui.run(func() { onResult(ok) })
		}, ui.Win)
	})
}

func (ui *TaskWindowUI) RenderCategories(rows []core.CategoryRow) {
	fyne.Do(func() {
		ui.categoryList.RemoveAll()
		names := make([]string, 0, len(rows))
		if len(rows) == 0 {
			ui.categoryList.Add(placeholder(core.NoCategoriesPlaceholder))
		}
		for _, row := range rows {
			names = append(names, row.Name)
			ui.categoryList.Add(categoryItem(row))
		}
		ui.categoryNames = names
		ui.taskCategory.SetOptions(names)
		ui.categoryList.Refresh()
	})
}

func (ui *TaskWindowUI) RenderTasks(rows []core.TaskRow) {
	fyne.Do(func() {
		ui.taskList.RemoveAll()
		if len(rows) == 0 {
			ui.taskList.Add(placeholder(core.NoTasksPlaceholder))
		}
		for _, row := range rows {
			ui.taskList.Add(ui.taskItem(row))
		}
		ui.taskList.Refresh()
	})
}

func placeholder(text string) fyne.CanvasObject {
	label := widget.NewLabel(text)
	label.Importance = widget.LowImportance
	label.Alignment = fyne.TextAlignCenter
	return label
}

func categoryItem(row core.CategoryRow) fyne.CanvasObject {
	name := widget.NewLabelWithStyle(row.Name, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	if row.Description == "" {
		return name
	}
	description := widget.NewLabel(row.Description)
	description.Importance = widget.LowImportance
	description.Wrapping = fyne.TextWrapWord
	return container.NewVBox(name, description)
}

func (ui *TaskWindowUI) taskItem(row core.TaskRow) fyne.CanvasObject {
	task := row.Task
	body := container.NewVBox()
	for _, detail := range row.Details {
		label := widget.NewLabel(detail)
		label.Wrapping = fyne.TextWrapWord
		body.Add(label)
	}

	actions := container.NewHBox()
	if row.CanComplete {
		actions.Add(widget.NewButtonWithIcon("Complete", theme.ConfirmIcon(), func() {
			ui.run(func() { _ = ui.client.MarkTaskComplete(ui.ctx, task.ID) })
		}))
	}
	actions.Add(widget.NewButtonWithIcon("Edit", theme.DocumentCreateIcon(), func() {
		ui.client.OpenEditModal(task)
	}))
	deleteButton := widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), func() {
		ui.run(func() { ui.client.DeleteTask(ui.ctx, task.ID) })
	})
	deleteButton.Importance = widget.DangerImportance
	actions.Add(deleteButton)
	body.Add(actions)

	subtitle := strings.Join([]string{row.Category, row.Status}, " · ")
	return widget.NewCard(row.Title, subtitle, body)
}

func (ui *TaskWindowUI) ClearCategoryForm() {
	fyne.Do(func() {
		ui.categoryName.SetText("")
		ui.categoryDescription.SetText("")
	})
}

func (ui *TaskWindowUI) ClearTaskForm() {
	fyne.Do(func() {
		ui.taskTitle.SetText("")
		ui.taskDescription.SetText("")
		ui.taskCategory.SetText("")
		ui.taskDueDate.SetText("")
		ui.taskHours.SetText("")
		ui.taskPriority.ClearSelected()
	})
}

func (ui *TaskWindowUI) setupSystemTray(icon fyne.Resource) {
	desk, ok := ui.App.(desktop.App)
	if !ok {
		log.Debug("System tray not supported on this platform.")
		return
	}
	showMenuItem := fyne.NewMenuItem("Show", func() {
		ui.Win.Show()
		ui.Win.RequestFocus()
	})
	desk.SetSystemTrayMenu(fyne.NewMenu("To-Do Manager", showMenuItem))
	if icon != nil {
		desk.SetSystemTrayIcon(icon)
	}
	ui.Win.SetCloseIntercept(ui.Win.Hide)
}

// Run shows the window and blocks in the Fyne event loop.
func (ui *TaskWindowUI) Run() {
	ui.Win.Show()
	ui.App.Run()
	log.Info("Application finished.")
}

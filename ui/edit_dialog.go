package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/todo-manager/v2/core"
	"github.com/todo-manager/v2/internal/types"
)

// taskEditor is the modal edit form. It stays open until the client closes
// it, so a failed save can be corrected in place.
type taskEditor struct {
	dialog      dialog.Dialog
	title       *widget.Entry
	description *widget.Entry
	category    *widget.SelectEntry
	dueDate     *widget.Entry
	hours       *widget.Entry
	priority    *widget.Select
	status      *widget.Select
}

func statusOptions() []string {
	out := make([]string, len(types.Statuses))
	for i, s := range types.Statuses {
		out[i] = string(s)
	}
	return out
}

func (ui *TaskWindowUI) OpenEditor(form core.TaskForm) {
	fyne.Do(func() {
		if ui.editor != nil {
			ui.editor.dialog.Hide()
		}
		e := &taskEditor{
			title:       widget.NewEntry(),
			description: widget.NewMultiLineEntry(),
			category:    widget.NewSelectEntry(ui.categoryNames),
			dueDate:     widget.NewEntry(),
			hours:       widget.NewEntry(),
			priority:    widget.NewSelect(types.Priorities, nil),
			status:      widget.NewSelect(statusOptions(), nil),
		}
		e.title.SetText(form.Title)
		e.description.SetText(form.Description)
		e.category.SetText(form.CategoryName)
		e.dueDate.SetText(form.DueDate)
		e.dueDate.SetPlaceHolder("YYYY-MM-DD")
		e.hours.SetText(form.EstimatedHours)
		if form.Priority != "" {
			e.priority.SetSelected(form.Priority)
		}
		if form.Status != "" {
			e.status.SetSelected(form.Status)
		}

		items := widget.NewForm(
			widget.NewFormItem("Title", e.title),
			widget.NewFormItem("Description", e.description),
			widget.NewFormItem("Category", e.category),
			widget.NewFormItem("Due date", e.dueDate),
			widget.NewFormItem("Estimated hours", e.hours),
			widget.NewFormItem("Priority", e.priority),
			widget.NewFormItem("Status", e.status),
		)
		save := widget.NewButton("Save", func() {
			edited := e.form()
			ui.run(func() { _ = ui.client.SaveTask(ui.ctx, edited) })
		})
		save.Importance = widget.HighImportance
		cancel := widget.NewButton("Cancel", ui.client.CloseEditModal)

		content := container.NewVBox(items, container.NewGridWithColumns(2, cancel, save))
		e.dialog = dialog.NewCustomWithoutButtons("Edit Task", content, ui.Win)
		e.dialog.Resize(fyne.NewSize(480, 0))
		ui.editor = e
		e.dialog.Show()
	})
}

func (ui *TaskWindowUI) CloseEditor() {
	fyne.Do(func() {
		if ui.editor == nil {
			return
		}
		ui.editor.dialog.Hide()
		ui.editor = nil
	})
}

func (e *taskEditor) form() core.TaskForm {
	return core.TaskForm{
		Title:          e.title.Text,
		Description:    e.description.Text,
		CategoryName:   e.category.Text,
		DueDate:        e.dueDate.Text,
		EstimatedHours: e.hours.Text,
		Priority:       e.priority.Selected,
		Status:         e.status.Selected,
	}
}

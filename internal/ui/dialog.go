package ui

import "fmt"

// DialogResult is how a dialog was dismissed.
type DialogResult string

const (
	// DialogClose confirms the dialog's action.
	DialogClose DialogResult = "close"
	// DialogCancel dismisses the dialog without acting.
	DialogCancel DialogResult = "cancel"
)

// ParseDialogResult reads the result submitted by a dialog form.
func ParseDialogResult(s string) (DialogResult, error) {
	switch DialogResult(s) {
	case DialogClose:
		return DialogClose, nil
	case DialogCancel:
		return DialogCancel, nil
	default:
		return "", fmt.Errorf("unknown dialog result %q", s)
	}
}

// Confirmed reports whether the action should run.
func (r DialogResult) Confirmed() bool {
	return r == DialogClose
}

// DialogParams renders a modal confirmation dialog. Submitting posts
// result=close or result=cancel to Action.
type DialogParams struct {
	ID           string
	Title        string
	Message      string
	ConfirmLabel string
	CancelLabel  string
	Action       string
	Danger       bool
}

// ConfirmDelete builds the standard delete confirmation.
func ConfirmDelete(id, what, name, action string) *DialogParams {
	return &DialogParams{
		ID:           id,
		Title:        "Delete " + what,
		Message:      fmt.Sprintf("Are you sure you want to delete %s %q? This cannot be undone.", what, name),
		ConfirmLabel: "Delete",
		CancelLabel:  "Cancel",
		Action:       action,
		Danger:       true,
	}
}

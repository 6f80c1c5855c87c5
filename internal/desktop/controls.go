// File: internal/desktop/controls.go
package desktop

// ControlKind mirrors the UI Automation control type of a native element.
type ControlKind string

const (
	KindButton ControlKind = "Button"
	KindEdit   ControlKind = "Edit"
)

// Control addresses one native UI element by its automation identifier,
// optional visible title, and control type.
type Control struct {
	AutomationID string
	Title        string
	Kind         ControlKind
}

// Name returns the best human-readable handle for log and step text.
func (c Control) Name() string {
	if c.Title != "" {
		return c.Title
	}
	return c.AutomationID
}

// The fixed control table for the target application. The signup form lives
// in an embedded account window whose fields carry web-style automation IDs.
var (
	ManageAccountButton = Control{AutomationID: "HpcSignedOutIcon", Title: "Manage HP Account", Kind: KindButton}
	CreateAccountButton = Control{AutomationID: "HpcSignOutFlyout_CreateBtn", Kind: KindButton}

	FirstNameField = Control{AutomationID: "firstName", Kind: KindEdit}
	LastNameField  = Control{AutomationID: "lastName", Kind: KindEdit}
	EmailField     = Control{AutomationID: "email", Kind: KindEdit}
	PasswordField  = Control{AutomationID: "password", Kind: KindEdit}
	SignUpButton   = Control{AutomationID: "sign-up-submit", Kind: KindButton}

	OTPInput        = Control{AutomationID: "code", Kind: KindEdit}
	OTPSubmitButton = Control{AutomationID: "submit-code", Kind: KindButton}
)

package api

import "runtime"

// Preferences are the user-facing switches of the interception policy.
// They are replaced as a whole; nothing mutates a published value.
type Preferences struct {
	InterceptEdit           bool `json:"intercept_edit"`
	InterceptDelete         bool `json:"intercept_delete"`
	InterceptAdd            bool `json:"intercept_add"`
	ConfirmEdit             bool `json:"confirm_edit"`
	CaseSensitiveWorkspaces bool `json:"case_sensitive_workspaces"`
	PrintOutput             bool `json:"print_output"`
}

// DefaultPreferences is used when nothing is stored or the stored value
// cannot be decoded.
func DefaultPreferences() Preferences {
	return Preferences{
		InterceptEdit:           true,
		InterceptDelete:         true,
		InterceptAdd:            true,
		ConfirmEdit:             true,
		CaseSensitiveWorkspaces: runtime.GOOS != "windows",
		PrintOutput:             true,
	}
}

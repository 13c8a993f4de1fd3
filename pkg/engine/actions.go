package engine

// Action is one entry of the host's Perforce menu. A separator has no
// label or template.
type Action struct {
	Label     string
	Template  string
	Separator bool
}

var actions = []Action{
	{Label: "Edit", Template: "edit"},
	{Label: "Sync", Template: "sync"},
	{Label: "Sync Force", Template: "sync -f"},
	{Label: "Revert", Template: "revert"},
	{Separator: true},
	{Label: "Add", Template: "add"},
	{Label: "Delete", Template: "delete"},
}

// Actions lists the menu actions in display order.
func Actions() []Action {
	return append([]Action(nil), actions...)
}

// LookupAction finds a menu action by its template, e.g. "sync -f".
func LookupAction(template string) (Action, bool) {
	for _, a := range actions {
		if !a.Separator && a.Template == template {
			return a, true
		}
	}
	return Action{}, false
}

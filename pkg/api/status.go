package api

// Action is the pending Perforce operation a file is opened for.
type Action int

const (
	ActionNone Action = iota
	ActionAdd
	ActionEdit
	ActionDelete
	ActionBranch
	ActionIntegrate
	ActionMoveAdd
	ActionMoveDelete
	ActionImport
	ActionArchive
	ActionPurge
	ActionUnknown
)

var actionNames = map[Action]string{
	ActionNone:       "none",
	ActionAdd:        "add",
	ActionEdit:       "edit",
	ActionDelete:     "delete",
	ActionBranch:     "branch",
	ActionIntegrate:  "integrate",
	ActionMoveAdd:    "move/add",
	ActionMoveDelete: "move/delete",
	ActionImport:     "import",
	ActionArchive:    "archive",
	ActionPurge:      "purge",
	ActionUnknown:    "unknown",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseAction maps a p4 action keyword. An empty keyword is ActionNone.
func ParseAction(s string) Action {
	if s == "" {
		return ActionNone
	}
	for a, name := range actionNames {
		if a != ActionUnknown && name == s {
			return a
		}
	}
	return ActionUnknown
}

// FileStatus is what Perforce knows about one local file. A nil
// *FileStatus means the file is not known to Perforce.
type FileStatus struct {
	Path         string `json:"path"`
	DepotFile    string `json:"depot_file,omitempty"`
	ClientFile   string `json:"client_file,omitempty"`
	Action       Action `json:"action"`
	HeadAction   string `json:"head_action,omitempty"`
	HeadRevision int    `json:"head_rev,omitempty"`
	HaveRevision int    `json:"have_rev,omitempty"`
	Type         string `json:"type,omitempty"`
}

// Opened reports whether the file is opened for any pending action.
func (s *FileStatus) Opened() bool {
	return s != nil && s.Action != ActionNone
}

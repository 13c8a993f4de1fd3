package status

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/jingkaihe/p4gate/pkg/api"
)

// notKnownMarkers are the p4 fstat messages meaning the file has no
// Perforce identity in the owning workspace.
var notKnownMarkers = []string{
	"no such file(s)",
	"not in client view",
	"not under client's root",
	"not on client",
}

// IsNotKnown reports whether p4 output says the file is not known.
func IsNotKnown(output string) bool {
	lower := strings.ToLower(output)
	for _, m := range notKnownMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// ParseFstat parses the first record of tagged "p4 fstat" output:
//
//	... depotFile //depot/main/a.c
//	... clientFile /ws/main/a.c
//	... headRev 3
//	... action edit
//
// It returns nil when the output has no depotFile or clientFile field.
// Nested fields ("... ... otherOpen0 bob@ws") are ignored.
func ParseFstat(output string) *api.FileStatus {
	var st api.FileStatus
	seen := false

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			if seen {
				break
			}
			continue
		}
		rest, ok := strings.CutPrefix(line, "... ")
		if !ok || strings.HasPrefix(rest, "... ") {
			continue
		}
		key, value, _ := strings.Cut(rest, " ")
		switch key {
		case "depotFile":
			st.DepotFile = value
			seen = true
		case "clientFile":
			st.ClientFile = value
			seen = true
		case "action":
			st.Action = api.ParseAction(value)
		case "headAction":
			st.HeadAction = value
		case "headRev":
			st.HeadRevision, _ = strconv.Atoi(value)
		case "haveRev":
			st.HaveRevision, _ = strconv.Atoi(value)
		case "type":
			st.Type = value
		case "headType":
			if st.Type == "" {
				st.Type = value
			}
		}
	}
	if !seen {
		return nil
	}
	return &st
}

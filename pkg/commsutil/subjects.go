package commsutil

import "fmt"

// Default COMMS subjects for the manager's channels.
const (
	SubjectControl = "rem.manager.control"
	SubjectConsole = "rem.manager.console"
)

// BuildControlSubject builds a control subject for a named manager instance.
func BuildControlSubject(manager string) string {
	if manager == "" {
		return SubjectControl
	}
	return fmt.Sprintf("rem.%s.control", manager)
}

// BuildConsoleSubject builds a console stream subject for a named manager
// instance.
func BuildConsoleSubject(manager string) string {
	if manager == "" {
		return SubjectConsole
	}
	return fmt.Sprintf("rem.%s.console", manager)
}

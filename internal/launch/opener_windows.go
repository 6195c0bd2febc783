//go:build windows

package launch

// The empty string is the window title argument expected by start.
func openerCommand(path string) (name string, args []string, direct bool) {
	return "cmd.exe", []string{"/c", "start", "", path}, false
}

//go:build !darwin && !linux && !windows

package launch

func openerCommand(path string) (name string, args []string, direct bool) {
	return "xdg-open", []string{path}, false
}

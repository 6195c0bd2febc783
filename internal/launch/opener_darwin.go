//go:build darwin

package launch

func openerCommand(path string) (name string, args []string, direct bool) {
	return "open", []string{path}, false
}

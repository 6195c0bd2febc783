//go:build linux

package launch

import (
	"os"

	"golang.org/x/sys/unix"
)

// openerCommand execs executables directly and hands everything else
// (.desktop files, documents, directories) to xdg-open.
func openerCommand(path string) (name string, args []string, direct bool) {
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() && unix.Access(path, unix.X_OK) == nil {
		return path, nil, true
	}
	return "xdg-open", []string{path}, false
}

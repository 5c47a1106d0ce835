//go:build unix

package walker

import "syscall"

// deviceOf returns the filesystem device number for path, used to
// implement one_file_system.
func deviceOf(path string) (uint64, bool) {
	var st syscall.Stat_t
	if err := syscall.Stat(path, &st); err != nil {
		return 0, false
	}
	return uint64(st.Dev), true
}

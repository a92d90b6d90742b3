//go:build darwin

package fsops

import (
	"io/fs"
	"syscall"
	"time"
)

// birthTime returns the file's birth time. Available on APFS and HFS+.
func birthTime(info fs.FileInfo) (time.Time, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(stat.Birthtimespec.Sec, stat.Birthtimespec.Nsec), true
}

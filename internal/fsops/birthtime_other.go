//go:build !darwin

package fsops

import (
	"io/fs"
	"time"
)

// birthTime reports no birth time. Most Unix filesystems do not expose
// one through stat, and ctime is an inode-change time, not a creation
// time.
func birthTime(info fs.FileInfo) (time.Time, bool) {
	return time.Time{}, false
}

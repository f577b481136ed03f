package library

import (
	"golang.org/x/sys/unix"

	"github.com/keep-on-walking/headless-mpv/internal/models"
)

// DiskSpace reports usage of the filesystem holding the media directory.
func (l *Library) DiskSpace() (models.DiskSpace, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(l.dir, &st); err != nil {
		return models.DiskSpace{}, err
	}

	total := st.Blocks * uint64(st.Bsize)
	free := st.Bavail * uint64(st.Bsize)
	used := total - free

	ds := models.DiskSpace{Total: total, Used: used, Free: free}
	if total > 0 {
		ds.PercentUsed = float64(used) / float64(total) * 100
	}
	return ds, nil
}

package media

import "os"

// DirStats reports the clip population of a directory for scrape-time
// gauges. Every call rescans; clip stores are small enough that nothing
// needs caching.
type DirStats struct {
	Dir string
}

func (s DirStats) ClipCount() int {
	n, _ := s.scan()
	return n
}

func (s DirStats) ClipBytes() int64 {
	_, b := s.scan()
	return b
}

func (s DirStats) scan() (files int, bytes int64) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return 0, 0
	}
	for _, e := range entries {
		info, err := e.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files++
		bytes += info.Size()
	}
	return files, bytes
}

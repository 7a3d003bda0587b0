package conf

import (
	"log"
	"os"
	"path/filepath"
	"time"
)

// SweepOldOutput removes generated files under root whose modification
// time is older than maxAge relative to now, then drops client directories
// left empty. Unreadable entries are logged and skipped so one bad file
// cannot stall the sweep.
func SweepOldOutput(root string, maxAge time.Duration, now time.Time) error {
	clientDirs, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // nothing generated yet
		}
		return err
	}
	cutoff := now.Add(-maxAge)
	removed := 0
	for _, dir := range clientDirs {
		if !dir.IsDir() {
			continue
		}
		dirPath := filepath.Join(root, dir.Name())
		entries, err := os.ReadDir(dirPath)
		if err != nil {
			log.Printf("[ERROR][Retention] reading %s: %v", dirPath, err)
			continue
		}
		remaining := 0
		for _, entry := range entries {
			info, err := entry.Info()
			if err != nil {
				log.Printf("[ERROR][Retention] stat %s: %v", entry.Name(), err)
				remaining++
				continue
			}
			if info.ModTime().After(cutoff) {
				remaining++
				continue
			}
			filePath := filepath.Join(dirPath, entry.Name())
			if err = os.Remove(filePath); err != nil {
				log.Printf("[ERROR][Retention] removing %s: %v", filePath, err)
				remaining++
				continue
			}
			removed++
		}
		if remaining == 0 {
			// best effort; the directory returns on the next batch
			_ = os.Remove(dirPath)
		}
	}
	if removed > 0 {
		log.Printf("[INFO][Retention] removed %d expired output files", removed)
	}
	return nil
}

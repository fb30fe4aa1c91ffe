package drive

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// SyncResult summarizes one folder sync.
type SyncResult struct {
	Downloaded int
	Skipped    int
}

// SyncFolder downloads every spreadsheet export from the named Drive folder
// path into destDir. Files that already exist locally with the same name
// are skipped; the shared folder is treated as append-only by convention.
func (s *Service) SyncFolder(folderPath, destDir string) (*SyncResult, error) {
	folderID, err := s.FindFolderByPath(folderPath)
	if err != nil {
		return nil, err
	}

	files, err := s.ListSpreadsheets(folderID)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", destDir, err)
	}

	result := &SyncResult{}
	for _, f := range files {
		dest := filepath.Join(destDir, f.Name)
		if _, err := os.Stat(dest); err == nil {
			result.Skipped++
			continue
		}

		if err := s.downloadTo(f, dest); err != nil {
			return result, err
		}
		log.Info().Str("file", f.Name).Str("dest", dest).Msg("downloaded spreadsheet export")
		result.Downloaded++
	}

	return result, nil
}

func (s *Service) downloadTo(f *File, dest string) error {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	if err := s.Download(f.ID, out); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}

	return out.Close()
}

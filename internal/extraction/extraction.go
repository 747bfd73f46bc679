package extraction

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"
)

// IsArchiveFile checks if an upload is an archive that should be extracted
// before looking for track files.
func IsArchiveFile(ext string) bool {
	archiveExts := map[string]bool{
		".zip": true, ".rar": true, ".7z": true, ".tar": true, ".gz": true,
	}
	return archiveExts[strings.ToLower(ext)]
}

// IsTrackFile checks if a file carries track data the pipeline can ingest.
func IsTrackFile(ext string) bool {
	return strings.EqualFold(ext, ".gpx")
}

// shouldIgnoreFile filters system and hidden files out of extracted archives.
func shouldIgnoreFile(filename string) bool {
	if strings.HasPrefix(filename, "._") || strings.HasPrefix(filename, ".") {
		return true
	}
	if strings.ToLower(filename) == "thumbs.db" {
		return true
	}
	if filename == "" || strings.HasSuffix(filename, "/") {
		return true
	}
	return false
}

// ExtractArchive extracts the contents of an uploaded archive to a temporary
// directory and returns the track files found inside. The caller removes the
// returned directory when done.
func ExtractArchive(archivePath string) ([]string, string, error) {
	destDir, err := os.MkdirTemp("", "extract-*")
	if err != nil {
		return nil, "", err
	}

	ctx := context.Background()
	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		os.RemoveAll(destDir)
		return nil, "", err
	}

	var files []string
	err = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || shouldIgnoreFile(d.Name()) {
			return nil
		}
		if !IsTrackFile(filepath.Ext(path)) {
			return nil
		}
		reader, err := fsys.Open(path)
		if err != nil {
			return err
		}
		defer reader.Close()

		destPath := filepath.Join(destDir, path)
		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return err
		}

		outFile, err := os.Create(destPath)
		if err != nil {
			return err
		}
		defer outFile.Close()

		if _, err := io.Copy(outFile, reader); err != nil {
			return err
		}

		files = append(files, destPath)
		return nil
	})
	if err != nil {
		os.RemoveAll(destDir)
		return nil, "", err
	}

	return files, destDir, nil
}

package integrations

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// MemberName is the archive entry name of the page at index. Readers order
// pages by entry name only.
func MemberName(index int, page string) string {
	return fmt.Sprintf("img%06d%s", index, filepath.Ext(page))
}

// BuildArchive packs pages into a zip at dest, in the given order, and
// removes the page files. Pages are stored uncompressed. On failure dest is
// removed; the pages are removed either way.
func BuildArchive(dest string, pages []string) (err error) {
	defer func() {
		for _, page := range pages {
			os.Remove(page)
		}
	}()

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("error creating archive: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(dest)
		}
	}()

	zw := zip.NewWriter(f)
	now := time.Now()
	for i, page := range pages {
		header := &zip.FileHeader{
			Name:     MemberName(i, page),
			Method:   zip.Store,
			Modified: now,
		}
		w, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("error creating entry %s: %w", header.Name, err)
		}
		if err := copyFile(w, page); err != nil {
			return fmt.Errorf("error writing page %d: %w", i, err)
		}
	}
	return zw.Close()
}

func copyFile(w io.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = io.Copy(w, src)
	return err
}

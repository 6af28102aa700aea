package main

import (
	"archive/zip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode"
)

// ImageRef identifies one image in the session. Immutable once created.
// Path is the unique key used by every cache in the engine; for archive
// entries it has the archive:entry form.
type ImageRef struct {
	Path        string
	ArchivePath string // empty for regular files
	EntryPath   string // empty for regular files
	ModTime     time.Time
	Format      string // lower-case extension without the dot
}

func isSupportedExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".bmp", ".gif", ".tiff", ".tif", ".ico", ".webp":
		return true
	default:
		return false
	}
}

func isArchiveExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip", ".rar", ".7z":
		return true
	default:
		return false
	}
}

func formatTag(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

func newFileRef(path string, modTime time.Time) ImageRef {
	return ImageRef{Path: path, ModTime: modTime, Format: formatTag(path)}
}

func newArchiveRef(archivePath, entryPath string, modTime time.Time) ImageRef {
	return ImageRef{
		Path:        archivePath + ":" + entryPath,
		ArchivePath: archivePath,
		EntryPath:   entryPath,
		ModTime:     modTime,
		Format:      formatTag(entryPath),
	}
}

// readImageBytes fetches the raw encoded bytes for a ref. Decoding happens
// in the loader workers, not here.
func readImageBytes(ref ImageRef) ([]byte, error) {
	if ref.ArchivePath == "" {
		data, err := os.ReadFile(ref.Path)
		if err != nil {
			return nil, err
		}
		return data, nil
	}

	switch strings.ToLower(filepath.Ext(ref.ArchivePath)) {
	case ".zip":
		return readBytesFromZip(ref.ArchivePath, ref.EntryPath)
	case ".rar":
		return readBytesFromRar(ref.ArchivePath, ref.EntryPath)
	case ".7z":
		return readBytesFrom7z(ref.ArchivePath, ref.EntryPath)
	default:
		return nil, fmt.Errorf("unsupported archive format: %s", ref.ArchivePath)
	}
}

func readBytesFromZip(archivePath, entryPath string) ([]byte, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name == entryPath {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("entry %s not found in %s", entryPath, archivePath)
}

func readBytesFromRar(archivePath, entryPath string) ([]byte, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := rardecode.NewReader(f, "")
	if err != nil {
		return nil, err
	}

	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if header.Name == entryPath {
			return io.ReadAll(r)
		}
	}
	return nil, fmt.Errorf("entry %s not found in %s", entryPath, archivePath)
}

func readBytesFrom7z(archivePath, entryPath string) ([]byte, error) {
	r, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name == entryPath {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("entry %s not found in %s", entryPath, archivePath)
}

// Archive expansion

func extractImagesFromZip(archivePath string, modTime time.Time) ([]ImageRef, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var refs []ImageRef
	for _, f := range r.File {
		if !f.FileInfo().IsDir() && isSupportedExt(f.Name) {
			refs = append(refs, newArchiveRef(archivePath, f.Name, modTime))
		}
	}
	return refs, nil
}

func extractImagesFromRar(archivePath string, modTime time.Time) ([]ImageRef, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := rardecode.NewReader(f, "")
	if err != nil {
		return nil, err
	}

	var refs []ImageRef
	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if !header.IsDir && isSupportedExt(header.Name) {
			refs = append(refs, newArchiveRef(archivePath, header.Name, modTime))
		}
	}
	return refs, nil
}

func extractImagesFrom7z(archivePath string, modTime time.Time) ([]ImageRef, error) {
	r, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var refs []ImageRef
	for _, f := range r.File {
		if !f.FileInfo().IsDir() && isSupportedExt(f.Name) {
			refs = append(refs, newArchiveRef(archivePath, f.Name, modTime))
		}
	}
	return refs, nil
}

func processArchive(archivePath string) ([]ImageRef, error) {
	info, err := os.Stat(archivePath)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(archivePath)) {
	case ".zip":
		return extractImagesFromZip(archivePath, info.ModTime())
	case ".rar":
		return extractImagesFromRar(archivePath, info.ModTime())
	case ".7z":
		return extractImagesFrom7z(archivePath, info.ModTime())
	default:
		return nil, fmt.Errorf("unsupported archive format: %s", archivePath)
	}
}

// collectImages walks the given arguments (files, directories, archives) and
// builds the deduplicated ImageRef list handed to the session.
func collectImages(args []string) ([]ImageRef, error) {
	var list []ImageRef
	for _, p := range args {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			err := filepath.Walk(p, func(path string, fi os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if fi.IsDir() {
					return nil
				}
				if isSupportedExt(path) {
					list = append(list, newFileRef(path, fi.ModTime()))
				} else if isArchiveExt(path) {
					refs, err := processArchive(path)
					if err != nil {
						log.Printf("Warning: Skipping problematic archive %s: %v", path, err)
						return nil
					}
					list = append(list, refs...)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if isSupportedExt(p) {
			list = append(list, newFileRef(p, info.ModTime()))
		} else if isArchiveExt(p) {
			refs, err := processArchive(p)
			if err != nil {
				log.Printf("Warning: Skipping problematic archive %s: %v", p, err)
				continue
			}
			list = append(list, refs...)
		}
	}
	return dedupeRefs(list), nil
}

// collectImagesFromSameDirectory collects the image files that live next to
// the given file. Archives and subdirectories are not followed.
func collectImagesFromSameDirectory(filePath string) ([]ImageRef, error) {
	dir := filepath.Dir(filePath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %v", dir, err)
	}

	var refs []ImageRef
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fullPath := filepath.Join(dir, entry.Name())
		if !isSupportedExt(fullPath) {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		refs = append(refs, newFileRef(fullPath, fi.ModTime()))
	}
	return dedupeRefs(refs), nil
}

func dedupeRefs(refs []ImageRef) []ImageRef {
	seen := make(map[string]bool, len(refs))
	out := refs[:0]
	for _, ref := range refs {
		if seen[ref.Path] {
			continue
		}
		seen[ref.Path] = true
		out = append(out, ref)
	}
	return out
}

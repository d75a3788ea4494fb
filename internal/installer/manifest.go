package installer

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"lukechampine.com/blake3"
)

// writeManifest records every entry of the assembled tree under
// lib/rustlib/manifest: directories with a trailing slash, symlinks with a
// placeholder checksum, regular files with their BLAKE3 sum. Two runs over
// identical archives produce byte-identical manifests.
func writeManifest(root string) error {
	var dirs, symlinks []string
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return err
		}
		switch {
		case d.IsDir():
			dirs = append(dirs, "/"+rel+"/")
		case d.Type()&os.ModeSymlink != 0:
			symlinks = append(symlinks, "/"+rel)
		default:
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return err
	}

	sort.Strings(dirs)
	sort.Strings(symlinks)
	sort.Strings(files)

	var sb strings.Builder
	for _, d := range dirs {
		fmt.Fprintln(&sb, d)
	}
	for _, l := range symlinks {
		fmt.Fprintf(&sb, "%s 000000\n", l)
	}
	for _, f := range files {
		sum, err := hashFile(filepath.Join(root, f))
		if err != nil {
			return fmt.Errorf("failed to checksum %s: %w", f, err)
		}
		fmt.Fprintf(&sb, "/%s  %s\n", f, sum)
	}

	manifestDir := filepath.Join(root, "lib", "rustlib")
	if err := os.MkdirAll(manifestDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(manifestDir, "manifest"), []byte(sb.String()), 0o644)
}

// hashFile returns the hex BLAKE3 sum (32-byte output, no key) of a file.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New(32, nil)
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

package installer

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/ulikunitz/xz"
	"golang.org/x/sys/unix"
)

// extractArchive unpacks a compressed tarball into destDir, dropping the
// archive's single top-level wrapper directory so contents land directly under
// destDir. destDir must already exist. The system tar is tried first; if it is
// missing or fails, the built-in reader takes over. Partial contents are left
// in place on failure for inspection.
func extractArchive(archivePath, destDir string) error {
	if _, err := exec.LookPath("tar"); err == nil {
		cmd := exec.Command("tar", "xf", archivePath, "-C", destDir, "--strip-components=1")
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		if err := cmd.Run(); err == nil {
			debugf("Extracted %s with system tar\n", archivePath)
			return nil
		}
		debugf("system tar failed for %s (%s), falling back to built-in extraction\n",
			archivePath, strings.TrimSpace(stderr.String()))
	} else {
		debugf("system tar not found, using built-in extraction\n")
	}

	if err := extractTarFallback(archivePath, destDir); err != nil {
		return &ExtractError{Archive: archivePath, Err: err}
	}
	return nil
}

// extractTarFallback is the pure-Go path: decompress by file extension, then
// walk the tar stream stripping the first path component from every entry.
func extractTarFallback(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	switch {
	case strings.HasSuffix(archivePath, ".tar.xz"):
		xzr, err := xz.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to create xz reader: %w", err)
		}
		r = xzr
	case strings.HasSuffix(archivePath, ".tar.gz") || strings.HasSuffix(archivePath, ".tgz"):
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	case strings.HasSuffix(archivePath, ".tar.zst"):
		zst, err := zstd.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer zst.Close()
		r = zst
	case strings.HasSuffix(archivePath, ".tar"):
		// no compression
	default:
		return fmt.Errorf("unsupported archive format: %s", archivePath)
	}

	tr := tar.NewReader(r)

	// Wrapper directory prefix, e.g. "rust-1.89.0-x86_64-unknown-linux-gnu/".
	var prefix string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("error reading tar header: %w", err)
		}

		if hdr.Typeflag == tar.TypeXHeader || hdr.Typeflag == tar.TypeXGlobalHeader {
			if _, err := io.Copy(io.Discard, tr); err != nil {
				return fmt.Errorf("error skipping extended header data: %w", err)
			}
			continue
		}

		if prefix == "" && (hdr.Typeflag == tar.TypeDir || hdr.Typeflag == tar.TypeReg) {
			if idx := strings.Index(hdr.Name, "/"); idx != -1 {
				prefix = hdr.Name[:idx+1]
				debugf("Detected tar prefix for stripping: %s\n", prefix)
			}
		}

		targetName := hdr.Name
		if prefix != "" && strings.HasPrefix(targetName, prefix) {
			targetName = strings.TrimPrefix(targetName, prefix)
		}
		if targetName == "" {
			// the wrapper directory itself
			continue
		}

		targetPath := filepath.Join(destDir, targetName)
		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return fmt.Errorf("failed to create parent dir for %s: %w", targetPath, err)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(targetPath, os.FileMode(hdr.Mode)); err != nil {
				return fmt.Errorf("failed to create dir %s: %w", targetPath, err)
			}
		case tar.TypeReg:
			outFile, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return fmt.Errorf("failed to create file %s: %w", targetPath, err)
			}
			if _, err := io.Copy(outFile, tr); err != nil {
				outFile.Close()
				return fmt.Errorf("failed to write file %s: %w", targetPath, err)
			}
			outFile.Close()
		case tar.TypeSymlink:
			_ = os.Remove(targetPath)
			if err := os.Symlink(hdr.Linkname, targetPath); err != nil && !os.IsExist(err) {
				return fmt.Errorf("failed to create symlink %s -> %s: %w", targetPath, hdr.Linkname, err)
			}
			if os.Geteuid() == 0 {
				_ = unix.Lchown(targetPath, hdr.Uid, hdr.Gid)
			}
		default:
			debugf("Skipping unsupported tar entry type %c: %s\n", hdr.Typeflag, hdr.Name)
		}
	}

	if prefix == "" {
		debugf("No top-level directory prefix found in %s; extracted without stripping\n", archivePath)
	}

	return nil
}

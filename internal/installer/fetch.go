package installer

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// fetchChunkSize bounds how much of a response body is held in memory at a
// time. Toolchain archives run to hundreds of MB, so the body is streamed.
const fetchChunkSize = 256 * 1024

// ProgressFunc receives the cumulative bytes written so far and the total the
// server advertised, or -1 when the length is unknown.
type ProgressFunc func(received, total int64)

// fetchFile streams url into dest. Parent directories are created, an
// existing file at dest is overwritten, and on any failure after the file has
// been created the partial file is removed before the error propagates. On
// success the file is flushed to storage and closed before returning.
//
// An exclusive flock on dest+".lock" keeps overlapping installer invocations
// from writing the same archive at once.
func fetchFile(url, dest string, progress ProgressFunc) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", dest, err)
	}

	lockPath := dest + ".lock"
	lf, err := os.Create(lockPath)
	if err != nil {
		return fmt.Errorf("failed to create download lock: %w", err)
	}
	defer lf.Close()
	if err := unix.Flock(int(lf.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("failed to acquire download lock: %w", err)
	}
	defer unix.Flock(int(lf.Fd()), unix.LOCK_UN)
	defer os.Remove(lockPath)

	debugf("Downloading %s -> %s\n", url, dest)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &HTTPError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", dest, err)
	}

	fail := func(err error) error {
		out.Close()
		os.Remove(dest)
		return err
	}

	total := resp.ContentLength
	var received int64
	buf := make([]byte, fetchChunkSize)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return fail(fmt.Errorf("failed to write %s: %w", dest, werr))
			}
			received += int64(n)
			if progress != nil {
				progress(received, total)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return fail(fmt.Errorf("failed to read response body for %s: %w", url, rerr))
		}
	}

	if received == 0 {
		return fail(fmt.Errorf("%s: %w", url, ErrEmptyDownload))
	}
	if err := out.Sync(); err != nil {
		return fail(fmt.Errorf("failed to flush %s: %w", dest, err))
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return fmt.Errorf("failed to close %s: %w", dest, err)
	}
	return nil
}

// newDownloadProgress returns the default console progress sink for one
// archive and a function to finish it. On a terminal it renders a byte
// progress bar; otherwise it logs a status line roughly every 64 MB so piped
// output stays readable.
func newDownloadProgress(name string) (ProgressFunc, func()) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		var last int64
		return func(received, total int64) {
			if received-last < 64<<20 {
				return
			}
			last = received
			if total > 0 {
				fmt.Printf("   %s: %d%% (%.1f MB)\n", name,
					received*100/total, float64(received)/1e6)
			} else {
				fmt.Printf("   %s: %.1f MB\n", name, float64(received)/1e6)
			}
		}, func() {}
	}

	var bar *progressbar.ProgressBar
	update := func(received, total int64) {
		if bar == nil {
			bar = progressbar.NewOptions64(total,
				progressbar.OptionSetDescription(name),
				progressbar.OptionShowBytes(true),
				progressbar.OptionSetWidth(30),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set64(received)
	}
	finish := func() {
		if bar != nil {
			_ = bar.Finish()
		}
	}
	return update, finish
}

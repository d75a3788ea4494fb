package installer

import (
	"errors"
	"fmt"
)

// ErrEmptyDownload marks a download that succeeded at the protocol level but
// produced zero bytes.
var ErrEmptyDownload = errors.New("download produced zero bytes")

// UnsupportedPlatformError is returned when the running host's OS/architecture
// pair is not in the supported platform table.
type UnsupportedPlatformError struct {
	Key string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform %q", e.Key)
}

// HTTPError is a download request that came back with a non-success status.
type HTTPError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("download %s failed: %s", e.URL, e.Status)
}

// ExtractError is an archive that could not be unpacked, by the system tar or
// by the built-in fallback.
type ExtractError struct {
	Archive string
	Err     error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Archive, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

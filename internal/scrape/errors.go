package scrape

import "fmt"

// InvalidIDError signals a malformed identifier supplied to a public entry
// point. It is never retried.
type InvalidIDError struct {
	Kind  string // "channel", "video", or "playlist"
	Value string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid %s id %q", e.Kind, e.Value)
}

// NoVideoIDError signals that no video id could be parsed from a URL.
type NoVideoIDError struct {
	URL string
}

func (e *NoVideoIDError) Error() string {
	return fmt.Sprintf("could not parse video id from %q", e.URL)
}

// UnavailableVideoError signals a video whose playability status is
// reported as an error by the server. Retrying will not change it.
type UnavailableVideoError struct {
	VideoID string
}

func (e *UnavailableVideoError) Error() string {
	return fmt.Sprintf("video %s is unavailable", e.VideoID)
}

// StatusError is an HTTP-level error body. It is not retried.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

package scrape

import (
	"regexp"
	"strings"
)

var (
	idCharRegex = regexp.MustCompile(`[^0-9a-zA-Z_\-]`)

	watchURLRegex = regexp.MustCompile(`youtube\..+?/watch.*?v=(.*?)(?:&|/|$)`)
	shortURLRegex = regexp.MustCompile(`youtu\.be/(.*?)(?:\?|&|/|$)`)
	embedURLRegex = regexp.MustCompile(`youtube\..+?/embed/(.*?)(?:\?|&|/|$)`)
)

// Playlist id prefixes recognized besides the special system ids.
var playlistIDPrefixes = []string{"PL", "RD", "UL", "UU", "PU", "OL", "LL", "FL"}

// ValidateChannelID reports whether the string is syntactically a valid
// channel id: "UC" followed by 22 id characters.
func ValidateChannelID(channelID string) bool {
	if strings.TrimSpace(channelID) == "" {
		return false
	}
	if !strings.HasPrefix(channelID, "UC") {
		return false
	}
	// Channel ids are always 24 characters.
	if len(channelID) != 24 {
		return false
	}
	return !idCharRegex.MatchString(channelID)
}

// ValidateVideoID reports whether the string is syntactically a valid
// video id: exactly 11 id characters.
func ValidateVideoID(videoID string) bool {
	if strings.TrimSpace(videoID) == "" {
		return false
	}
	if len(videoID) != 11 {
		return false
	}
	return !idCharRegex.MatchString(videoID)
}

// ValidatePlaylistID reports whether the string is syntactically a valid
// playlist id.
func ValidatePlaylistID(playlistID string) bool {
	if strings.TrimSpace(playlistID) == "" {
		return false
	}

	// Watch-later and My Mix are special system playlists.
	if playlistID == "WL" || playlistID == "RDMM" {
		return true
	}

	prefixed := false
	for _, p := range playlistIDPrefixes {
		if strings.HasPrefix(playlistID, p) {
			prefixed = true
			break
		}
	}
	if !prefixed {
		return false
	}

	// Playlist ids vary a lot in length, so just compare with the extremes.
	if len(playlistID) < 13 || len(playlistID) > 42 {
		return false
	}
	return !idCharRegex.MatchString(playlistID)
}

// ParseVideoID extracts a video id from a video URL. It recognizes the
// watch, youtu.be, and embed URL shapes, in that order.
func ParseVideoID(videoURL string) (string, error) {
	if id, ok := TryParseVideoID(videoURL); ok {
		return id, nil
	}
	return "", &NoVideoIDError{URL: videoURL}
}

// TryParseVideoID is like ParseVideoID but reports failure with a bool
// instead of an error.
func TryParseVideoID(videoURL string) (string, bool) {
	if strings.TrimSpace(videoURL) == "" {
		return "", false
	}

	for _, re := range []*regexp.Regexp{watchURLRegex, shortURLRegex, embedURLRegex} {
		m := re.FindStringSubmatch(videoURL)
		if m == nil {
			continue
		}
		if id := m[1]; ValidateVideoID(id) {
			return id, true
		}
	}
	return "", false
}

// UploadsPlaylistID derives the id of the implicit playlist holding all of
// a channel's uploads by replacing the "UC" prefix with "UU".
func UploadsPlaylistID(channelID string) string {
	return "UU" + strings.TrimPrefix(channelID, "UC")
}

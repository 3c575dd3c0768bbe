// Package scrape implements the channel/video extraction pipeline.
package scrape

import (
	"fmt"
	"time"
)

// Statistics aggregates engagement counters. Any counter absent from a
// source is zero.
type Statistics struct {
	ViewCount    int64
	LikeCount    int64
	DislikeCount int64
}

// ThumbnailSet holds the thumbnail URLs derived from a video id. No
// network fetch is involved; the URLs are deterministic.
type ThumbnailSet struct {
	LowResURL    string
	MediumResURL string
	HighResURL   string
	StandardURL  string
	MaxResURL    string
}

// NewThumbnailSet derives the thumbnail URLs for a video id.
func NewThumbnailSet(videoID string) ThumbnailSet {
	base := fmt.Sprintf("https://img.youtube.com/vi/%s", videoID)
	return ThumbnailSet{
		LowResURL:    base + "/default.jpg",
		MediumResURL: base + "/mqdefault.jpg",
		HighResURL:   base + "/hqdefault.jpg",
		StandardURL:  base + "/sddefault.jpg",
		MaxResURL:    base + "/maxresdefault.jpg",
	}
}

// VideoItem is the summary record produced during playlist pagination.
type VideoItem struct {
	ID          string
	Author      string
	UploadDate  time.Time
	Title       string
	Description string
	Thumbnails  ThumbnailSet
	Duration    time.Duration
	Keywords    []string
	Statistics  Statistics
}

// Video is the full record produced by the video extractor.
type Video struct {
	VideoItem
	CaptionTracks   []ClosedCaptionTrackInfo
	Recommendations []Rec
}

// Playlist holds playlist-level metadata plus the pager over its videos.
// Author and statistics may be empty for system playlists.
type Playlist struct {
	ID          string
	Author      string
	Title       string
	Description string
	Statistics  Statistics
	Videos      *UploadPager
}

// Language identifies a caption track language.
type Language struct {
	Code string
	Name string
}

// ClosedCaptionTrackInfo describes one caption track of a video.
type ClosedCaptionTrackInfo struct {
	URL             string
	Language        Language
	IsAutoGenerated bool
}

// ClosedCaption is a single timed cue.
type ClosedCaption struct {
	Text     string
	Offset   time.Duration
	Duration time.Duration
}

// ClosedCaptionTrack is a track's info plus its ordered cues.
type ClosedCaptionTrack struct {
	Info     ClosedCaptionTrackInfo
	Captions []ClosedCaption
}

// ChannelExtended is the channel extractor's result. When StatusMessage is
// set the channel is suspended or restricted and every other optional
// field is absent.
type ChannelExtended struct {
	ID            string
	Title         string
	LogoURL       string
	Subs          *int64
	StatusMessage string
}

// Rec is one "related video" recommendation scraped from the watch page.
type Rec struct {
	ToVideoID      string
	ToVideoTitle   string
	ToChannelTitle string
}

package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	keywordRegex  = regexp.MustCompile(`"[^"]+"|\S+`)
	nonDigitRegex = regexp.MustCompile(`[^0-9]`)
)

// playlistJSON mirrors one page of the playlist list endpoint. Fields may
// be absent; system playlists carry no author or counters.
type playlistJSON struct {
	Author      string              `json:"author"`
	Title       *string             `json:"title"`
	Description string              `json:"description"`
	Views       int64               `json:"views"`
	Likes       int64               `json:"likes"`
	Dislikes    int64               `json:"dislikes"`
	Video       []playlistVideoJSON `json:"video"`
}

type playlistVideoJSON struct {
	EncryptedID   string  `json:"encrypted_id"`
	Author        string  `json:"author"`
	TimeCreated   int64   `json:"time_created"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	LengthSeconds float64 `json:"length_seconds"`
	Views         string  `json:"views"`
	Likes         int64   `json:"likes"`
	Dislikes      int64   `json:"dislikes"`
	Keywords      string  `json:"keywords"`
}

func playlistURL(playlistID string, index int) string {
	return fmt.Sprintf(
		"https://youtube.com/list_ajax?style=json&action_get_list=1&list=%s&index=%d&hl=en",
		playlistID, index,
	)
}

func (s *Scraper) playlistPage(ctx context.Context, playlistID string, index int) (*playlistJSON, error) {
	raw, err := s.fetcher.FetchText(ctx, playlistURL(playlistID, index), "playlist")
	if err != nil {
		return nil, err
	}
	var page playlistJSON
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		return nil, fmt.Errorf("decode playlist %s page %d: %w", playlistID, index, err)
	}
	return &page, nil
}

// GetPlaylist fetches playlist-level metadata and returns a Playlist whose
// Videos pager lazily walks the playlist's pages.
func (s *Scraper) GetPlaylist(ctx context.Context, playlistID string) (*Playlist, error) {
	if !ValidatePlaylistID(playlistID) {
		return nil, &InvalidIDError{Kind: "playlist", Value: playlistID}
	}

	page, err := s.playlistPage(ctx, playlistID, 1)
	if err != nil {
		return nil, err
	}
	if page.Title == nil {
		return nil, fmt.Errorf("playlist %s: response has no title", playlistID)
	}

	return &Playlist{
		ID:          playlistID,
		Author:      page.Author,
		Title:       *page.Title,
		Description: page.Description,
		Statistics: Statistics{
			ViewCount:    page.Views,
			LikeCount:    page.Likes,
			DislikeCount: page.Dislikes,
		},
		Videos: newUploadPager(s, playlistID, page),
	}, nil
}

// GetChannelUploads returns a pager over the channel's full upload
// history, newest pages first, derived from its implicit uploads playlist.
func (s *Scraper) GetChannelUploads(ctx context.Context, channelID string) (*UploadPager, error) {
	if !ValidateChannelID(channelID) {
		return nil, &InvalidIDError{Kind: "channel", Value: channelID}
	}
	playlist, err := s.GetPlaylist(ctx, UploadsPlaylistID(channelID))
	if err != nil {
		return nil, err
	}
	return playlist.Videos, nil
}

// ForEachUpload walks every upload of a channel, invoking fn per video.
// Iteration stays lazy: a page is fetched only after the previous page's
// videos have all been consumed. A non-nil error from fn stops the walk.
func (s *Scraper) ForEachUpload(ctx context.Context, channelID string, fn func(VideoItem) error) error {
	pager, err := s.GetChannelUploads(ctx, channelID)
	if err != nil {
		return err
	}
	for pager.Next(ctx) {
		for _, item := range pager.Batch() {
			if err := fn(item); err != nil {
				return err
			}
		}
	}
	return pager.Err()
}

// UploadPager walks a playlist's pages one batch at a time. It is single
// pass: once exhausted it cannot be restarted. A video id seen on an
// earlier page is silently dropped; a page yielding nothing new ends the
// sequence.
type UploadPager struct {
	scraper    *Scraper
	playlistID string
	index      int
	seen       map[string]struct{}
	current    *playlistJSON
	batch      []VideoItem
	err        error
	done       bool
}

func newUploadPager(s *Scraper, playlistID string, firstPage *playlistJSON) *UploadPager {
	// PL playlists paginate from 101; everything else from 0.
	index := 0
	if strings.HasPrefix(strings.ToUpper(playlistID), "PL") {
		index = 101
	}
	return &UploadPager{
		scraper:    s,
		playlistID: playlistID,
		index:      index,
		seen:       make(map[string]struct{}),
		current:    firstPage,
	}
}

// Next advances to the next batch. It returns false when the sequence has
// terminated; check Err afterwards.
func (p *UploadPager) Next(ctx context.Context) bool {
	if p.done {
		return false
	}

	page := p.current
	p.current = nil
	if page == nil {
		fetched, err := p.scraper.playlistPage(ctx, p.playlistID, p.index)
		if err != nil {
			p.err = err
			p.done = true
			return false
		}
		page = fetched
	}

	batch := make([]VideoItem, 0, len(page.Video))
	for _, entry := range page.Video {
		if _, ok := p.seen[entry.EncryptedID]; ok {
			continue
		}
		p.seen[entry.EncryptedID] = struct{}{}
		batch = append(batch, videoItemFromEntry(entry))
	}

	// No distinct videos on this page means the playlist is exhausted.
	if len(batch) == 0 {
		p.done = true
		return false
	}

	p.batch = batch
	p.index += 100
	return true
}

// Batch returns the batch produced by the last successful Next call.
func (p *UploadPager) Batch() []VideoItem {
	return p.batch
}

// Err returns the error that terminated the sequence, if any.
func (p *UploadPager) Err() error {
	return p.err
}

func videoItemFromEntry(entry playlistVideoJSON) VideoItem {
	return VideoItem{
		ID:          entry.EncryptedID,
		Author:      entry.Author,
		UploadDate:  time.Unix(entry.TimeCreated, 0).UTC(),
		Title:       entry.Title,
		Description: entry.Description,
		Thumbnails:  NewThumbnailSet(entry.EncryptedID),
		Duration:    time.Duration(entry.LengthSeconds * float64(time.Second)),
		Keywords:    ParseKeywords(entry.Keywords),
		Statistics: Statistics{
			ViewCount:    parseLongOrZero(entry.Views),
			LikeCount:    entry.Likes,
			DislikeCount: entry.Dislikes,
		},
	}
}

// ParseKeywords tokenizes the raw keyword string into quoted phrases and
// whitespace-delimited tokens, stripping surrounding quotes and dropping
// blanks.
func ParseKeywords(raw string) []string {
	matches := keywordRegex.FindAllString(raw, -1)
	keywords := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.Trim(m, `"`)
		if strings.TrimSpace(m) == "" {
			continue
		}
		keywords = append(keywords, m)
	}
	return keywords
}

// parseFloatOrZero parses a decimal string, defaulting to zero.
func parseFloatOrZero(raw string) float64 {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return f
}

// parseLongOrZero strips every non-digit rune ("1,234,567" style counts)
// and parses the remainder, defaulting to zero.
func parseLongOrZero(raw string) int64 {
	digits := nonDigitRegex.ReplaceAllString(raw, "")
	if digits == "" {
		return 0
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

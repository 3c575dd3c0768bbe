package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
)

// GetClosedCaptionTrack fetches a caption track and parses its cues. Each
// non-blank <p> node yields one cue; its t/d attributes are offsets and
// durations in milliseconds. Blank nodes are dropped.
func (s *Scraper) GetClosedCaptionTrack(ctx context.Context, info ClosedCaptionTrackInfo) (*ClosedCaptionTrack, error) {
	raw, err := s.fetcher.FetchText(ctx, info.URL, "caption")
	if err != nil {
		return nil, err
	}

	doc, err := xmlquery.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse caption track: %w", err)
	}

	var captions []ClosedCaption
	// Elements are matched by local name, so the document's namespace
	// does not matter here.
	for _, node := range xmlquery.Find(doc, "//p") {
		text := node.InnerText()
		if strings.TrimSpace(text) == "" {
			continue
		}
		captions = append(captions, ClosedCaption{
			Text:     text,
			Offset:   millisAttr(node, "t"),
			Duration: millisAttr(node, "d"),
		})
	}

	return &ClosedCaptionTrack{Info: info, Captions: captions}, nil
}

func millisAttr(node *xmlquery.Node, name string) time.Duration {
	ms := parseFloatOrZero(node.SelectAttr(name))
	return time.Duration(ms * float64(time.Millisecond))
}

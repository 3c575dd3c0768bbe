package scrape

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var abbreviatedCountRegex = regexp.MustCompile(`(\d+\.?\d*)([BMK]?)`)

func channelPageURL(channelID string) string {
	return fmt.Sprintf("https://www.youtube.com/channel/%s?hl=en", channelID)
}

// GetChannel fetches the channel page and extracts title, logo, and
// subscriber count. A suspended or restricted channel yields only the id
// and the alert banner's message.
func (s *Scraper) GetChannel(ctx context.Context, channelID string) (*ChannelExtended, error) {
	if !ValidateChannelID(channelID) {
		return nil, &InvalidIDError{Kind: "channel", Value: channelID}
	}

	raw, err := s.fetcher.FetchText(ctx, channelPageURL(channelID), "channel page")
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse channel page %s: %w", channelID, err)
	}

	if alert := strings.TrimSpace(doc.Find("div.yt-alert-message").First().Text()); alert != "" {
		return &ChannelExtended{ID: channelID, StatusMessage: alert}, nil
	}

	title, _ := doc.Find(`meta[property="og:title"]`).First().Attr("content")
	logoURL, _ := doc.Find(`meta[property="og:image"]`).First().Attr("content")

	subText := doc.Find("span.yt-subscription-button-subscriber-count-branded-horizontal.subscribed").
		First().Text()

	return &ChannelExtended{
		ID:      channelID,
		Title:   title,
		LogoURL: logoURL,
		Subs:    ParseAbbreviatedCount(subText),
	}, nil
}

// ParseAbbreviatedCount expands a human-readable magnitude string like
// "12.3K subscribers" into an integer, rounding to the nearest whole
// count. It returns nil when no leading number is present.
func ParseAbbreviatedCount(raw string) *int64 {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	m := abbreviatedCountRegex.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	multiplier := 1.0
	switch m[2] {
	case "K":
		multiplier = 1e3
	case "M":
		multiplier = 1e6
	case "B":
		multiplier = 1e9
	}
	count := int64(math.Round(num * multiplier))
	return &count
}

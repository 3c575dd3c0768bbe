package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
)

// playerResponseJSON is the tolerant decode of the JSON blob embedded in
// the legacy video-info response. Absent fields default per the data
// model; only load-bearing ones are checked by the extractor.
type playerResponseJSON struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
	} `json:"playabilityStatus"`
	VideoDetails struct {
		Author           string   `json:"author"`
		Title            string   `json:"title"`
		LengthSeconds    string   `json:"lengthSeconds"`
		Keywords         []string `json:"keywords"`
		ShortDescription string   `json:"shortDescription"`
		ViewCount        string   `json:"viewCount"`
	} `json:"videoDetails"`
	Captions struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrackJSON `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type captionTrackJSON struct {
	BaseURL string `json:"baseUrl"`
	Name    struct {
		SimpleText string `json:"simpleText"`
	} `json:"name"`
	LanguageCode string `json:"languageCode"`
	VssID        string `json:"vssId"`
}

func watchPageURL(videoID string) string {
	return fmt.Sprintf("https://youtube.com/watch?v=%s&disable_polymer=true&bpctr=9999999999&hl=en", videoID)
}

func videoInfoURL(videoID string) string {
	// The eurl parameter does magic and a lot of videos don't work
	// without it.
	eurl := url.QueryEscape(fmt.Sprintf("https://youtube.googleapis.com/v/%s", videoID))
	return fmt.Sprintf("https://youtube.com/get_video_info?video_id=%s&el=embedded&eurl=%s&hl=en", videoID, eurl)
}

// GetVideo assembles a full video record from the legacy info blob and the
// watch page. The two fetches run in parallel. A video whose playability
// status is an error yields UnavailableVideoError and no partial record.
func (s *Scraper) GetVideo(ctx context.Context, videoID string) (*Video, error) {
	if !ValidateVideoID(videoID) {
		return nil, &InvalidIDError{Kind: "video", Value: videoID}
	}

	var infoRaw, watchRaw string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := s.fetcher.FetchText(gctx, videoInfoURL(videoID), "video dictionary")
		infoRaw = raw
		return err
	})
	g.Go(func() error {
		raw, err := s.fetcher.FetchText(gctx, watchPageURL(videoID), "video watch")
		watchRaw = raw
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	infoDic := splitQuery(infoRaw)
	playerRaw, ok := infoDic["player_response"]
	if !ok {
		return nil, fmt.Errorf("video %s: info response has no player_response", videoID)
	}
	var player playerResponseJSON
	if err := json.Unmarshal([]byte(playerRaw), &player); err != nil {
		return nil, fmt.Errorf("video %s: decode player response: %w", videoID, err)
	}
	if strings.EqualFold(player.PlayabilityStatus.Status, "error") {
		return nil, &UnavailableVideoError{VideoID: videoID}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(watchRaw))
	if err != nil {
		return nil, fmt.Errorf("video %s: parse watch page: %w", videoID, err)
	}

	dateRaw, ok := doc.Find(`meta[itemprop="datePublished"]`).First().Attr("content")
	if !ok {
		return nil, fmt.Errorf("video %s: watch page has no publish date", videoID)
	}
	uploadDate, err := time.Parse("2006-01-02", dateRaw)
	if err != nil {
		return nil, fmt.Errorf("video %s: parse publish date %q: %w", videoID, dateRaw, err)
	}

	lengthSeconds := parseFloatOrZero(player.VideoDetails.LengthSeconds)
	statistics := Statistics{
		ViewCount:    parseLongOrZero(player.VideoDetails.ViewCount),
		LikeCount:    scrapeButtonCount(doc, "like-button-renderer-like-button"),
		DislikeCount: scrapeButtonCount(doc, "like-button-renderer-dislike-button"),
	}

	return &Video{
		VideoItem: VideoItem{
			ID:          videoID,
			Author:      player.VideoDetails.Author,
			UploadDate:  uploadDate,
			Title:       player.VideoDetails.Title,
			Description: player.VideoDetails.ShortDescription,
			Thumbnails:  NewThumbnailSet(videoID),
			Duration:    time.Duration(lengthSeconds * float64(time.Second)),
			Keywords:    player.VideoDetails.Keywords,
			Statistics:  statistics,
		},
		CaptionTracks:   captionTracks(player),
		Recommendations: scrapeRecommendations(doc),
	}, nil
}

// scrapeButtonCount reads a like/dislike UI element's text, defaulting to
// zero when the element is absent or its text carries no digits. The class
// names are third-party markup and may drift; drift degrades to zero
// rather than failing extraction.
func scrapeButtonCount(doc *goquery.Document, class string) int64 {
	text := doc.Find("." + class).First().Text()
	return parseLongOrZero(text)
}

func captionTracks(player playerResponseJSON) []ClosedCaptionTrackInfo {
	raw := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	tracks := make([]ClosedCaptionTrackInfo, 0, len(raw))
	for _, t := range raw {
		trackURL, err := withFormatParam(t.BaseURL)
		if err != nil {
			continue
		}
		tracks = append(tracks, ClosedCaptionTrackInfo{
			URL: trackURL,
			Language: Language{
				Code: t.LanguageCode,
				Name: t.Name.SimpleText,
			},
			// The "a." vssId prefix marks auto-generated tracks. The
			// field is undocumented upstream; treat this as best effort.
			IsAutoGenerated: strings.HasPrefix(strings.ToLower(t.VssID), "a."),
		})
	}
	return tracks
}

func withFormatParam(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("format", "3")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// scrapeRecommendations collects "related video" items from the watch
// page. It is best effort: items without a resolvable link are skipped and
// a drifted page yields an empty list, never an error.
func scrapeRecommendations(doc *goquery.Document) []Rec {
	var recs []Rec
	doc.Find("li.video-list-item.related-list-item").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Find("a.content-link").First().Attr("href")
		if !ok {
			return
		}
		toVideoID, ok := TryParseVideoID("https://youtube.com" + href)
		if !ok {
			return
		}
		recs = append(recs, Rec{
			ToVideoID:      toVideoID,
			ToVideoTitle:   strings.TrimSpace(sel.Find("span.title").First().Text()),
			ToChannelTitle: strings.TrimSpace(sel.Find("span.stat.attribution span").First().Text()),
		})
	})
	return recs
}

// splitQuery decodes the legacy URL-encoded key/value blob. Keys are
// lowercased so lookups are case insensitive; pairs without an equals
// sign are dropped and later keys win.
func splitQuery(query string) map[string]string {
	dic := make(map[string]string)
	for _, pair := range strings.Split(strings.TrimPrefix(query, "?"), "&") {
		decoded, err := url.QueryUnescape(pair)
		if err != nil {
			decoded = pair
		}
		eq := strings.Index(decoded, "=")
		if eq <= 0 {
			continue
		}
		key := decoded[:eq]
		value := ""
		if eq+1 <= len(decoded) {
			value = decoded[eq+1:]
		}
		dic[strings.ToLower(key)] = value
	}
	return dic
}

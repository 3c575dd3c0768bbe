package scrape

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testVideoID = "yIVRs6YSbOM"

const testPlayerResponse = `{
	"playabilityStatus": {"status": "OK"},
	"videoDetails": {
		"author": "Some Channel",
		"title": "A Video",
		"lengthSeconds": "212",
		"keywords": ["one", "two"],
		"shortDescription": "the description",
		"viewCount": "1234567"
	},
	"captions": {
		"playerCaptionsTracklistRenderer": {
			"captionTracks": [
				{
					"baseUrl": "https://www.youtube.com/api/timedtext?v=yIVRs6YSbOM&lang=en",
					"name": {"simpleText": "English"},
					"languageCode": "en",
					"vssId": ".en"
				},
				{
					"baseUrl": "https://www.youtube.com/api/timedtext?v=yIVRs6YSbOM&lang=de",
					"name": {"simpleText": "German (auto-generated)"},
					"languageCode": "de",
					"vssId": "a.de"
				}
			]
		}
	}
}`

const testWatchPage = `<!DOCTYPE html>
<html>
<head><meta itemprop="datePublished" content="2019-01-01"></head>
<body>
<button class="like-button-renderer-like-button">1,024</button>
<button class="like-button-renderer-dislike-button">56</button>
<ul>
<li class="video-list-item related-list-item">
  <a class="content-link" href="/watch?v=dQw4w9WgXcQ">
    <span class="title">Related One</span>
    <span class="stat attribution"><span>Other Channel</span></span>
  </a>
</li>
<li class="video-list-item related-list-item">
  <span class="title">No link, skipped</span>
</li>
</ul>
</body>
</html>`

func videoInfoBlob(playerResponse string) string {
	v := url.Values{}
	v.Set("status", "ok")
	v.Set("player_response", playerResponse)
	return v.Encode()
}

func newVideoScraper(playerResponse, watchPage string) (*Scraper, *stubFetcher) {
	return newStubScraper(map[string]string{
		videoInfoURL(testVideoID): videoInfoBlob(playerResponse),
		watchPageURL(testVideoID): watchPage,
	})
}

func TestGetVideo(t *testing.T) {
	s, _ := newVideoScraper(testPlayerResponse, testWatchPage)

	video, err := s.GetVideo(context.Background(), testVideoID)
	require.NoError(t, err)

	require.Equal(t, testVideoID, video.ID)
	require.Equal(t, "Some Channel", video.Author)
	require.Equal(t, "A Video", video.Title)
	require.Equal(t, "the description", video.Description)
	require.Equal(t, 212*time.Second, video.Duration)
	require.Equal(t, []string{"one", "two"}, video.Keywords)
	require.Equal(t, time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), video.UploadDate)
	require.EqualValues(t, 1234567, video.Statistics.ViewCount)
	require.EqualValues(t, 1024, video.Statistics.LikeCount)
	require.EqualValues(t, 56, video.Statistics.DislikeCount)
}

func TestGetVideoCaptionTracks(t *testing.T) {
	s, _ := newVideoScraper(testPlayerResponse, testWatchPage)

	video, err := s.GetVideo(context.Background(), testVideoID)
	require.NoError(t, err)
	require.Len(t, video.CaptionTracks, 2)

	english := video.CaptionTracks[0]
	require.Equal(t, Language{Code: "en", Name: "English"}, english.Language)
	require.False(t, english.IsAutoGenerated)
	parsed, err := url.Parse(english.URL)
	require.NoError(t, err)
	require.Equal(t, "3", parsed.Query().Get("format"))
	require.Equal(t, "en", parsed.Query().Get("lang"))

	german := video.CaptionTracks[1]
	require.True(t, german.IsAutoGenerated, "vssId prefix a. marks auto-generated tracks")
}

func TestGetVideoRecommendations(t *testing.T) {
	s, _ := newVideoScraper(testPlayerResponse, testWatchPage)

	video, err := s.GetVideo(context.Background(), testVideoID)
	require.NoError(t, err)

	// The item without a content link is skipped, never an error.
	require.Equal(t, []Rec{{
		ToVideoID:      "dQw4w9WgXcQ",
		ToVideoTitle:   "Related One",
		ToChannelTitle: "Other Channel",
	}}, video.Recommendations)
}

func TestGetVideoUnavailable(t *testing.T) {
	s, _ := newVideoScraper(`{"playabilityStatus": {"status": "ERROR"}}`, testWatchPage)

	_, err := s.GetVideo(context.Background(), testVideoID)
	var unavailable *UnavailableVideoError
	require.ErrorAs(t, err, &unavailable)
	require.Equal(t, testVideoID, unavailable.VideoID)
}

func TestGetVideoMissingLikeElementsDefaultToZero(t *testing.T) {
	watch := `<html><head><meta itemprop="datePublished" content="2020-06-15"></head><body></body></html>`
	s, _ := newVideoScraper(testPlayerResponse, watch)

	video, err := s.GetVideo(context.Background(), testVideoID)
	require.NoError(t, err)
	require.EqualValues(t, 0, video.Statistics.LikeCount)
	require.EqualValues(t, 0, video.Statistics.DislikeCount)
	require.Empty(t, video.Recommendations)
}

func TestGetVideoRejectsInvalidID(t *testing.T) {
	s, stub := newStubScraper(nil)
	_, err := s.GetVideo(context.Background(), "nope")
	var invalid *InvalidIDError
	require.ErrorAs(t, err, &invalid)
	require.Empty(t, stub.calls)
}

func TestSplitQuery(t *testing.T) {
	dic := splitQuery("a=1&b=two%20words&malformed&=empty&c=")
	require.Equal(t, "1", dic["a"])
	require.Equal(t, "two words", dic["b"])
	require.Equal(t, "", dic["c"])
	_, hasMalformed := dic["malformed"]
	require.False(t, hasMalformed)
}

func TestSplitQueryKeysAreCaseInsensitive(t *testing.T) {
	dic := splitQuery("Player_Response=%7B%7D&STATUS=ok")
	require.Equal(t, "{}", dic["player_response"])
	require.Equal(t, "ok", dic["status"])
}

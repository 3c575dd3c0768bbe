package update

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ytfleet/internal/metrics"
	"ytfleet/internal/scrape"
)

const (
	testChannelID = "UC-lHJZR3Gqxm24_Vd_AJ5Yw"
	testVideoID   = "dQw4w9WgXcQ"
)

type route struct {
	contains string
	body     string
}

// routeFetcher serves the first route whose marker appears in the URL.
type routeFetcher struct {
	mu     sync.Mutex
	routes []route
	calls  []string
}

func (f *routeFetcher) FetchText(_ context.Context, u, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, u)
	for _, r := range f.routes {
		if strings.Contains(u, r.contains) {
			return r.body, nil
		}
	}
	return "", fmt.Errorf("unexpected fetch %s", u)
}

func (f *routeFetcher) called(marker string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.Contains(c, marker) {
			n++
		}
	}
	return n
}

// collectSink records every result it receives.
type collectSink struct {
	mu      sync.Mutex
	results []Result
}

func (s *collectSink) Write(_ context.Context, result Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
	return nil
}

const channelHTML = `<html><head>
<meta property="og:title" content="Some Channel">
<meta property="og:image" content="https://yt3.example.com/logo.jpg">
</head><body></body></html>`

const suspendedHTML = `<html><body><div class="yt-alert-message">Account terminated.</div></body></html>`

var uploadsPage = fmt.Sprintf(`{
	"author": "Some Channel",
	"title": "Uploads",
	"video": [{
		"encrypted_id": %q,
		"author": "Some Channel",
		"time_created": 1546300800,
		"title": "A Video",
		"length_seconds": 60.0,
		"views": "100",
		"keywords": ""
	}]
}`, testVideoID)

const emptyUploadsPage = `{"author": "Some Channel", "title": "Uploads", "video": []}`

const playerResponse = `{
	"playabilityStatus": {"status": "OK"},
	"videoDetails": {
		"author": "Some Channel",
		"title": "A Video",
		"lengthSeconds": "60",
		"viewCount": "100"
	},
	"captions": {"playerCaptionsTracklistRenderer": {"captionTracks": [{
		"baseUrl": "https://www.youtube.com/api/timedtext?v=dQw4w9WgXcQ&lang=en",
		"name": {"simpleText": "English"},
		"languageCode": "en",
		"vssId": ".en"
	}]}}
}`

const watchHTML = `<html><head><meta itemprop="datePublished" content="2019-01-01"></head><body></body></html>`

const captionXML = `<timedtext><body><p t="0" d="1000">hello</p></body></timedtext>`

func videoInfoBody() string {
	v := url.Values{}
	v.Set("player_response", playerResponse)
	return v.Encode()
}

func newTestUpdater(fetcher *routeFetcher) (*Updater, *collectSink) {
	metrics.Init()
	sink := &collectSink{}
	scraper := scrape.NewScraper(fetcher, zap.NewNop())
	return New(scraper, sink, 2, zap.NewNop()), sink
}

func fullCrawlFetcher() *routeFetcher {
	return &routeFetcher{routes: []route{
		{contains: "/channel/", body: channelHTML},
		{contains: "index=1&", body: uploadsPage},
		{contains: "index=100", body: emptyUploadsPage},
		{contains: "get_video_info", body: videoInfoBody()},
		{contains: "/watch?v=", body: watchHTML},
		{contains: "timedtext", body: captionXML},
	}}
}

func TestParseType(t *testing.T) {
	for _, raw := range []string{"All", "Channels", "Videos"} {
		parsed, err := ParseType(raw)
		require.NoError(t, err)
		require.Equal(t, Type(raw), parsed)
	}
	_, err := ParseType("Everything")
	require.Error(t, err)
}

func TestRunFullUpdate(t *testing.T) {
	fetcher := fullCrawlFetcher()
	updater, sink := newTestUpdater(fetcher)

	err := updater.Run(context.Background(), TypeAll, []string{testChannelID})
	require.NoError(t, err)
	require.Len(t, sink.results, 1)

	result := sink.results[0]
	require.Equal(t, testChannelID, result.ChannelID)
	require.Equal(t, "Some Channel", result.Channel.Title)
	require.Len(t, result.Videos, 1)
	require.Equal(t, testVideoID, result.Videos[0].ID)
	require.Len(t, result.Captions, 1)
	require.Equal(t, "hello", result.Captions[0].Captions[0].Text)
}

func TestRunChannelsOnlySkipsUploads(t *testing.T) {
	fetcher := fullCrawlFetcher()
	updater, sink := newTestUpdater(fetcher)

	err := updater.Run(context.Background(), TypeChannels, []string{testChannelID})
	require.NoError(t, err)
	require.Len(t, sink.results, 1)
	require.Empty(t, sink.results[0].Videos)
	require.Zero(t, fetcher.called("list_ajax"), "Channels update must not paginate uploads")
	require.Zero(t, fetcher.called("get_video_info"))
}

func TestRunVideosTypeSkipsCaptions(t *testing.T) {
	fetcher := fullCrawlFetcher()
	updater, sink := newTestUpdater(fetcher)

	err := updater.Run(context.Background(), TypeVideos, []string{testChannelID})
	require.NoError(t, err)
	require.Len(t, sink.results[0].Videos, 1)
	require.Empty(t, sink.results[0].Captions)
	require.Zero(t, fetcher.called("timedtext"))
}

func TestRunSuspendedChannelShortCircuits(t *testing.T) {
	fetcher := &routeFetcher{routes: []route{
		{contains: "/channel/", body: suspendedHTML},
	}}
	updater, sink := newTestUpdater(fetcher)

	err := updater.Run(context.Background(), TypeAll, []string{testChannelID})
	require.NoError(t, err)
	require.Len(t, sink.results, 1)
	require.Equal(t, "Account terminated.", sink.results[0].Channel.StatusMessage)
	require.Empty(t, sink.results[0].Videos)
	require.Zero(t, fetcher.called("list_ajax"))
}

func TestRunIsolatesFailingChannel(t *testing.T) {
	badChannel := "UCsXVk37bltHxD1rDPwtNM8Q"
	fetcher := fullCrawlFetcher()
	// Only testChannelID's pages resolve; the other channel's page fetch
	// fails and must not take the run down with it.
	fetcher.routes[0].contains = "/channel/" + testChannelID

	updater, sink := newTestUpdater(fetcher)
	err := updater.Run(context.Background(), TypeChannels, []string{testChannelID, badChannel})

	require.Error(t, err)
	require.Contains(t, err.Error(), badChannel)
	require.Len(t, sink.results, 1, "healthy channel still produced a result")
}

func TestRunRejectsInvalidChannelID(t *testing.T) {
	updater, _ := newTestUpdater(&routeFetcher{})
	err := updater.Run(context.Background(), TypeAll, []string{"nope"})
	require.Error(t, err)
}

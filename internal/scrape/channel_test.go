package scrape

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

const channelPageHTML = `<!DOCTYPE html>
<html>
<head>
<meta property="og:title" content="Some Channel">
<meta property="og:image" content="https://yt3.example.com/logo.jpg">
</head>
<body>
<span class="yt-subscription-button-subscriber-count-branded-horizontal subscribed">12.3K subscribers</span>
</body>
</html>`

const suspendedChannelHTML = `<!DOCTYPE html>
<html>
<body>
<div class="yt-alert-message">This account has been suspended.</div>
<meta property="og:title" content="should not be read">
</body>
</html>`

func TestGetChannel(t *testing.T) {
	s, _ := newStubScraper(map[string]string{
		channelPageURL(testChannelID): channelPageHTML,
	})

	channel, err := s.GetChannel(context.Background(), testChannelID)
	require.NoError(t, err)
	require.Equal(t, testChannelID, channel.ID)
	require.Equal(t, "Some Channel", channel.Title)
	require.Equal(t, "https://yt3.example.com/logo.jpg", channel.LogoURL)
	require.NotNil(t, channel.Subs)
	require.EqualValues(t, 12300, *channel.Subs)
	require.Empty(t, channel.StatusMessage)
}

func TestGetChannelSuspended(t *testing.T) {
	s, _ := newStubScraper(map[string]string{
		channelPageURL(testChannelID): suspendedChannelHTML,
	})

	channel, err := s.GetChannel(context.Background(), testChannelID)
	require.NoError(t, err)
	require.Equal(t, testChannelID, channel.ID)
	require.Equal(t, "This account has been suspended.", channel.StatusMessage)
	// Terminal variant: every other optional field stays absent.
	require.Empty(t, channel.Title)
	require.Empty(t, channel.LogoURL)
	require.Nil(t, channel.Subs)
}

func TestGetChannelMissingSubscriberElement(t *testing.T) {
	s, _ := newStubScraper(map[string]string{
		channelPageURL(testChannelID): `<html><head><meta property="og:title" content="T"></head><body></body></html>`,
	})

	channel, err := s.GetChannel(context.Background(), testChannelID)
	require.NoError(t, err)
	require.Nil(t, channel.Subs, "missing subscriber element is not an error")
}

func TestGetChannelRejectsInvalidID(t *testing.T) {
	s, stub := newStubScraper(nil)
	_, err := s.GetChannel(context.Background(), "nope")
	var invalid *InvalidIDError
	require.ErrorAs(t, err, &invalid)
	require.Empty(t, stub.calls)
}

func TestParseAbbreviatedCount(t *testing.T) {
	ptr := func(n int64) *int64 { return &n }
	cases := []struct {
		raw  string
		want *int64
	}{
		{"12.3K subscribers", ptr(12300)},
		{"1.5M subscribers", ptr(1500000)},
		{"2B", ptr(2000000000)},
		{"987 subscribers", ptr(987)},
		{"1.26K", ptr(1260)},
		{"", nil},
		{"   ", nil},
		{"no digits here", nil},
	}
	for _, tc := range cases {
		got := ParseAbbreviatedCount(tc.raw)
		if tc.want == nil {
			require.Nil(t, got, "raw=%q", tc.raw)
			continue
		}
		require.NotNil(t, got, "raw=%q", tc.raw)
		require.Equal(t, *tc.want, *got, "raw=%q", tc.raw)
	}
}

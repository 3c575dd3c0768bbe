package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStaticSource(t *testing.T) {
	src, err := NewStaticSource([]string{
		"UC-lHJZR3Gqxm24_Vd_AJ5Yw",
		"UCsXVk37bltHxD1rDPwtNM8Q",
	})
	require.NoError(t, err)

	channels, err := src.Channels(context.Background())
	require.NoError(t, err)
	require.Len(t, channels, 2)
	require.Equal(t, "UC-lHJZR3Gqxm24_Vd_AJ5Yw", channels[0].ID)
}

func TestStaticSourceRejectsInvalidID(t *testing.T) {
	_, err := NewStaticSource([]string{"bogus"})
	require.Error(t, err)
}

func TestCSVSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.csv")
	content := "Channel Id,Title\n" +
		"UC-lHJZR3Gqxm24_Vd_AJ5Yw,First Channel\n" +
		"UCsXVk37bltHxD1rDPwtNM8Q,Second Channel\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	src := &CSVSource{Path: path}
	channels, err := src.Channels(context.Background())
	require.NoError(t, err)
	require.Equal(t, []Channel{
		{ID: "UC-lHJZR3Gqxm24_Vd_AJ5Yw", Title: "First Channel"},
		{ID: "UCsXVk37bltHxD1rDPwtNM8Q", Title: "Second Channel"},
	}, channels)
}

func TestCSVSourceRejectsInvalidRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.csv")
	content := "UC-lHJZR3Gqxm24_Vd_AJ5Yw,ok\nnot-an-id,bad\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	src := &CSVSource{Path: path}
	_, err := src.Channels(context.Background())
	require.Error(t, err)
}

func TestCSVSourceMissingFile(t *testing.T) {
	src := &CSVSource{Path: filepath.Join(t.TempDir(), "nope.csv")}
	_, err := src.Channels(context.Background())
	require.Error(t, err)
}

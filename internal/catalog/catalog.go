// Package catalog supplies the set of channels to crawl.
package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"ytfleet/internal/scrape"
)

// Channel is one catalog entry.
type Channel struct {
	ID    string
	Title string
}

// Source returns the ordered set of channels to crawl.
type Source interface {
	Channels(ctx context.Context) ([]Channel, error)
}

// StaticSource serves a fixed channel list, typically from configuration.
type StaticSource struct {
	channels []Channel
}

// NewStaticSource validates the given ids and builds a StaticSource.
func NewStaticSource(channelIDs []string) (*StaticSource, error) {
	channels := make([]Channel, 0, len(channelIDs))
	for _, id := range channelIDs {
		if !scrape.ValidateChannelID(id) {
			return nil, fmt.Errorf("catalog: invalid channel id %q", id)
		}
		channels = append(channels, Channel{ID: id})
	}
	return &StaticSource{channels: channels}, nil
}

// Channels implements Source.
func (s *StaticSource) Channels(_ context.Context) ([]Channel, error) {
	out := make([]Channel, len(s.channels))
	copy(out, s.channels)
	return out, nil
}

// CSVSource reads channels from a local CSV export of the catalog
// spreadsheet. The first column is the channel id, the optional second
// column a display title. A header row is skipped when its first cell is
// not a valid channel id.
type CSVSource struct {
	Path string
}

// Channels implements Source.
func (s *CSVSource) Channels(_ context.Context) ([]Channel, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", s.Path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", s.Path, err)
	}

	var channels []Channel
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		id := row[0]
		if !scrape.ValidateChannelID(id) {
			if i == 0 {
				continue // header row
			}
			return nil, fmt.Errorf("catalog: invalid channel id %q on row %d", id, i+1)
		}
		ch := Channel{ID: id}
		if len(row) > 1 {
			ch.Title = row[1]
		}
		channels = append(channels, ch)
	}
	return channels, nil
}

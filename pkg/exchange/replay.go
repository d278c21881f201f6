package exchange

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/kaviraj-dev/strikebot/pkg/core"
	"github.com/schollz/progressbar/v3"
)

// ReplayFeed plays a recorded tick session from a CSV file with
// `timestamp,price` rows. It doubles as the quote source while the
// replay is running: IndexLTP always returns the last replayed price.
type ReplayFeed struct {
	index   string
	ticks   []core.Tick
	pos     int
	current float64
	bar     *progressbar.ProgressBar
}

// NewReplayFeed loads the recorded session. Timestamps may be RFC3339 or
// epoch seconds; a header row is skipped automatically.
func NewReplayFeed(path, index string) (*ReplayFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var ticks []core.Tick
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read replay file: %w", err)
		}
		if len(record) < 2 {
			continue
		}

		ts, err := parseTimestamp(record[0])
		if err != nil {
			// Header row or junk line.
			continue
		}
		price, err := strconv.ParseFloat(record[1], 64)
		if err != nil || price <= 0 {
			continue
		}

		ticks = append(ticks, core.Tick{Index: index, Price: price, Time: ts})
	}

	if len(ticks) == 0 {
		return nil, fmt.Errorf("replay file %s contains no usable ticks", path)
	}

	return &ReplayFeed{
		index: index,
		ticks: ticks,
		bar:   progressbar.Default(int64(len(ticks)), "replaying "+index),
	}, nil
}

// Len returns the number of loaded ticks.
func (r *ReplayFeed) Len() int { return len(r.ticks) }

// Next returns the next recorded tick, advancing the progress bar.
func (r *ReplayFeed) Next() (core.Tick, bool) {
	if r.pos >= len(r.ticks) {
		return core.Tick{}, false
	}
	tick := r.ticks[r.pos]
	r.pos++
	r.current = tick.Price
	_ = r.bar.Add(1)
	return tick, true
}

// IndexLTP implements core.Feeder with the last replayed price.
func (r *ReplayFeed) IndexLTP(_ context.Context, index string) (float64, error) {
	if index != r.index || r.current <= 0 {
		return 0, core.ErrNoQuote
	}
	return r.current, nil
}

// OptionLTP is not recorded; premiums come from synthetic pricing.
func (r *ReplayFeed) OptionLTP(context.Context, string) (float64, error) {
	return 0, core.ErrNoQuote
}

func parseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if epoch, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(epoch, 0), nil
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

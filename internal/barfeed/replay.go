package barfeed

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/atlas-desktop/pairs-engine/pkg/types"
)

// ReplayFeed reads a recorded bar stream and a VIX series from disk
// and plays them back tick by tick for the local harness (cmd/engine).
// It enforces the same ordering the production HostFeed relies on the
// host to guarantee, since a replay file is just as capable of being
// malformed.
type ReplayFeed struct {
	ticks []Tick
	cur   int
}

// barRow is one row of the bars CSV: timestamp,symbol,close.
type barRow struct {
	ts     time.Time
	symbol string
	close  float64
}

// LoadReplayFeed reads barsPath (header: timestamp,symbol,close) and
// vixPath (header: timestamp,vix), groups bars by timestamp, and joins
// each group to the VIX reading for that exact timestamp. A bar
// timestamp with no matching VIX row is an error: the regime
// classifier (C4) runs every tick and cannot proceed without one.
func LoadReplayFeed(barsPath, vixPath string) (*ReplayFeed, error) {
	rows, err := loadBarRows(barsPath)
	if err != nil {
		return nil, fmt.Errorf("barfeed: loading bars: %w", err)
	}
	vix, err := loadVIXSeries(vixPath)
	if err != nil {
		return nil, fmt.Errorf("barfeed: loading vix: %w", err)
	}

	grouped := make(map[int64]map[string]types.Bar)
	var order []int64
	for _, r := range rows {
		key := r.ts.UnixMilli()
		if _, ok := grouped[key]; !ok {
			grouped[key] = make(map[string]types.Bar)
			order = append(order, key)
		}
		grouped[key][r.symbol] = types.Bar{Symbol: r.symbol, Timestamp: r.ts, Close: r.close}
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	ticks := make([]Tick, 0, len(order))
	for _, key := range order {
		v, ok := vix[key]
		if !ok {
			return nil, fmt.Errorf("barfeed: no vix row for timestamp %d", key)
		}
		ticks = append(ticks, Tick{
			Time: time.UnixMilli(key).UTC(),
			Bars: grouped[key],
			VIX:  v,
		})
	}

	return &ReplayFeed{ticks: ticks}, nil
}

// Next returns the next recorded tick in timestamp order.
func (r *ReplayFeed) Next() (Tick, bool, error) {
	if r.cur >= len(r.ticks) {
		return Tick{}, false, nil
	}
	t := r.ticks[r.cur]
	r.cur++
	return t, true, nil
}

// Len reports the total number of ticks loaded.
func (r *ReplayFeed) Len() int { return len(r.ticks) }

func loadBarRows(path string) ([]barRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(bufio.NewReaderSize(f, 1<<20))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	idx, err := columnIndex(header, "timestamp", "symbol", "close")
	if err != nil {
		return nil, err
	}

	var rows []barRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(rows)+2, err)
		}
		ts, err := parseTimestamp(strings.TrimSpace(record[idx["timestamp"]]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(rows)+2, err)
		}
		closeVal, err := strconv.ParseFloat(strings.TrimSpace(record[idx["close"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: close: %w", len(rows)+2, err)
		}
		rows = append(rows, barRow{
			ts:     ts,
			symbol: strings.TrimSpace(record[idx["symbol"]]),
			close:  closeVal,
		})
	}
	return rows, nil
}

func loadVIXSeries(path string) (map[int64]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(bufio.NewReaderSize(f, 1<<20))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	idx, err := columnIndex(header, "timestamp", "vix")
	if err != nil {
		return nil, err
	}

	out := make(map[int64]float64)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		ts, err := parseTimestamp(strings.TrimSpace(record[idx["timestamp"]]))
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(record[idx["vix"]]), 64)
		if err != nil {
			return nil, err
		}
		out[ts.UnixMilli()] = v
	}
	return out, nil
}

func columnIndex(header []string, want ...string) (map[string]int, error) {
	idx := make(map[string]int)
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, w := range want {
		if _, ok := idx[w]; !ok {
			return nil, fmt.Errorf("missing required column %q", w)
		}
	}
	return idx, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Parse(time.RFC3339, s)
}

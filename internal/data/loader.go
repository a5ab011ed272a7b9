// Package data ingests load series files and normalizes them onto a
// 15-minute grid for the engine.
package data

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"storage-cycles/internal/model"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04",
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ParseCSV reads a two-column load series (timestamp, load_kw). A header
// row is detected by a non-numeric second column and skipped.
func ParseCSV(r io.Reader) ([]model.LoadSample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []model.LoadSample
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line++
		if len(rec) < 2 {
			return nil, fmt.Errorf("line %d: need timestamp and load columns", line)
		}
		load, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			if line == 1 {
				continue // header
			}
			return nil, fmt.Errorf("line %d: bad load value %q", line, rec[1])
		}
		ts, err := parseTimestamp(rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, model.LoadSample{Timestamp: ts, LoadKW: load})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no samples in csv")
	}
	model.SortSamples(out)
	return out, nil
}

type jsonSample struct {
	Timestamp string  `json:"timestamp"`
	LoadKW    float64 `json:"load_kw"`
}

// ParseJSON reads a load series as an array of {timestamp, load_kw}.
func ParseJSON(r io.Reader) ([]model.LoadSample, error) {
	var rows []jsonSample
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no samples in json")
	}
	out := make([]model.LoadSample, 0, len(rows))
	for i, row := range rows {
		ts, err := parseTimestamp(row.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		out = append(out, model.LoadSample{Timestamp: ts, LoadKW: row.LoadKW})
	}
	model.SortSamples(out)
	return out, nil
}

// LoadFile reads a load series from a .csv or .json file.
func LoadFile(path string) ([]model.LoadSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ParseCSV(f)
	case ".json":
		return ParseJSON(f)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

// Resample15m averages samples into 15-minute buckets anchored on the
// quarter hour, returning a sorted series.
func Resample15m(samples []model.LoadSample) []model.LoadSample {
	type acc struct {
		sum float64
		n   int
	}
	buckets := map[time.Time]*acc{}
	for _, s := range samples {
		b := s.Timestamp.Truncate(15 * time.Minute)
		a, ok := buckets[b]
		if !ok {
			a = &acc{}
			buckets[b] = a
		}
		a.sum += s.LoadKW
		a.n++
	}
	out := make([]model.LoadSample, 0, len(buckets))
	for ts, a := range buckets {
		out = append(out, model.LoadSample{Timestamp: ts, LoadKW: a.sum / float64(a.n)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

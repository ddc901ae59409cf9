package twitter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// CSVHeader is the export column order; names match the record fields.
var CSVHeader = []string{
	"id",
	"username",
	"name",
	"description",
	"website",
	"emails",
	"verified",
	"followers_count",
	"following_count",
	"tweet_count",
	"created_at",
}

const emailSeparator = ", "

// ExportFilename returns the download name for an export taken at t.
func ExportFilename(t time.Time) string {
	return "x_followers_" + t.Format("20060102_150405") + ".csv"
}

// WriteCSV writes the header row followed by one row per record.
func WriteCSV(w io.Writer, records []FollowerRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, r := range records {
		row := []string{
			r.ID,
			r.Username,
			r.Name,
			r.Description,
			r.Website,
			strings.Join(r.Emails, emailSeparator),
			strconv.FormatBool(r.Verified),
			strconv.Itoa(r.FollowersCount),
			strconv.Itoa(r.FollowingCount),
			strconv.Itoa(r.TweetCount),
			r.CreatedAt,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses an export written by WriteCSV.
func ReadCSV(r io.Reader) ([]FollowerRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(CSVHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, name := range CSVHeader {
		if header[i] != name {
			return nil, fmt.Errorf("csv column %d: got %q, want %q", i+1, header[i], name)
		}
	}

	var records []FollowerRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rec, err := parseCSVRow(row)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseCSVRow(row []string) (FollowerRecord, error) {
	verified, err := strconv.ParseBool(row[6])
	if err != nil {
		return FollowerRecord{}, fmt.Errorf("verified: %w", err)
	}
	counts := make([]int, 3)
	for i := range counts {
		n, err := strconv.Atoi(row[7+i])
		if err != nil {
			return FollowerRecord{}, fmt.Errorf("%s: %w", CSVHeader[7+i], err)
		}
		counts[i] = n
	}
	var emails []string
	if row[5] != "" {
		emails = strings.Split(row[5], emailSeparator)
	}
	return FollowerRecord{
		ID:             row[0],
		Username:       row[1],
		Name:           row[2],
		Description:    row[3],
		Website:        row[4],
		Emails:         emails,
		Verified:       verified,
		FollowersCount: counts[0],
		FollowingCount: counts[1],
		TweetCount:     counts[2],
		CreatedAt:      row[10],
	}, nil
}

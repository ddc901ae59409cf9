package twitter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func sampleRecords() []FollowerRecord {
	return []FollowerRecord{
		{
			ID:             "1",
			Username:       "a",
			Name:           "Alpha, \"the first\"",
			Description:    "line one\nline two",
			Website:        "http://a.com",
			Emails:         []string{"contact@a.com", "info@a.com"},
			Verified:       true,
			FollowersCount: 10,
			FollowingCount: 20,
			TweetCount:     30,
			CreatedAt:      "2020-01-02T15:04:05Z",
		},
		{ID: "2", Username: "b"},
	}
}

func TestCSVRoundTrip(t *testing.T) {
	records := sampleRecords()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	firstLine, _, _ := strings.Cut(buf.String(), "\n")
	assert.Equal(t, strings.Join(CSVHeader, ","), firstLine)

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestCSVRoundTrip_CRLFBio(t *testing.T) {
	raw := gjson.Parse(`{"id":"3","username":"c","name":"Two\r\nLines","description":"line one\r\nline two\r\n"}`)
	records := []FollowerRecord{ShapeFollower(raw)}
	assert.Equal(t, "line one\nline two\n", records[0].Description)
	assert.Equal(t, "Two\nLines", records[0].Name)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))
	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestWriteCSV_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("id,user\n"))
	assert.Error(t, err)

	header := strings.Join(CSVHeader, ",")
	_, err = ReadCSV(strings.NewReader(header + "\n1,a,,,,,maybe,0,0,0,\n"))
	assert.ErrorContains(t, err, "verified")

	_, err = ReadCSV(strings.NewReader(header + "\n1,a,,,,,false,x,0,0,\n"))
	assert.ErrorContains(t, err, "followers_count")
}

func TestExportFilename(t *testing.T) {
	ts := time.Date(2024, 3, 9, 7, 5, 1, 0, time.UTC)
	assert.Equal(t, "x_followers_20240309_070501.csv", ExportFilename(ts))
}

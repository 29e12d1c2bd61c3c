package models

import (
	"crypto/md5"
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// VideoDetails is the metadata fetched for a source video.
type VideoDetails struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Duration     int    `json:"duration"`
	Uploader     string `json:"uploader"`
	ViewCount    int64  `json:"view_count"`
	ThumbnailURL string `json:"thumbnail"`
	SourceID     string `json:"video_id"`
}

// WatchURL returns the public watch link, or "" when the source id is unknown.
func (d VideoDetails) WatchURL() string {
	if d.SourceID == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + d.SourceID
}

// Value stores the details as a JSON column.
func (d VideoDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan reads the details from a JSON column.
func (d *VideoDetails) Scan(src interface{}) error {
	return scanJSON(src, d)
}

// Summaries maps a platform name to the summary tuned for it.
type Summaries map[string]string

// Value stores the summaries as a JSON object; nil becomes {}.
func (s Summaries) Value() (driver.Value, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]string(s))
}

// Scan reads the summaries from a JSON column.
func (s *Summaries) Scan(src interface{}) error {
	return scanJSON(src, s)
}

func scanJSON(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported json column type %T", src)
	}
}

// VideoRecord is the durable artifact produced by the transcription pipeline.
type VideoRecord struct {
	VideoID              string       `db:"video_id" json:"video_id"`
	Transcript           string       `db:"transcript" json:"transcript"`
	SummarizedTranscript string       `db:"summarized_transcript" json:"summarized_transcript"`
	Details              VideoDetails `db:"details" json:"details"`
	Summaries            Summaries    `db:"summaries" json:"summaries"`
	CreatedAt            time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time    `db:"updated_at" json:"updated_at"`
}

// VideoIDFromURL derives the record key from the source URL.
func VideoIDFromURL(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

package store

import (
	"encoding/json"

	"github.com/offplay/offplay/constant"
)

// Record is one stored video. Blob is persisted under its own key and never
// travels through the metadata encoding.
type Record struct {
	Name          string  `json:"name" jsonschema:"description=Unique name of the video, derived from the uploaded file name"`
	Blob          []byte  `json:"-"`
	MIME          string  `json:"mime,omitempty" jsonschema:"description=MIME type reported at intake"`
	Size          int64   `json:"size" jsonschema:"description=Payload size in bytes"`
	Created       int64   `json:"created" jsonschema:"description=Logical creation time in unix milliseconds"`
	LastPosition  float64 `json:"lastPosition" jsonschema:"minimum=0,description=Last observed playback position in seconds"`
	PlaybackState string  `json:"playbackState" jsonschema:"enum=paused,enum=playing"`
	LastUpdated   int64   `json:"lastUpdated" jsonschema:"description=Time of the last metadata write in unix milliseconds"`
}

// Metadata is the mutable part of a record written by the synchronizer.
type Metadata struct {
	LastPosition  float64
	PlaybackState string
}

// Playing reports whether the record was last observed playing.
func (r *Record) Playing() bool {
	return r.PlaybackState == constant.StatePlaying
}

// legacyRecord is the schema v1 layout, which kept the payload inline.
type legacyRecord struct {
	Record
	Blob []byte `json:"blob,omitempty"`
}

func encodeMeta(r *Record) ([]byte, error) {
	return json.Marshal(r)
}

func decodeMeta(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func normalizeState(state string) string {
	if state == constant.StatePlaying {
		return constant.StatePlaying
	}
	return constant.StatePaused
}

package models

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// FlexibleTime handles the mixed timestamp representations found in plant
// documents: older app versions wrote last_watered_at as a plain string,
// newer ones as a native BSON date. Everything is normalized into a single
// time.Time here so nothing downstream ever branches on representation.
type FlexibleTime struct {
	time.Time
}

// referenceLocation loads the Asia/Bangkok zone used to interpret naive
// date strings. Falls back to a fixed UTC+7 zone if the tz database is
// missing from the runtime image.
func referenceLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Bangkok")
	if err != nil {
		return time.FixedZone("ICT", 7*3600)
	}
	return loc
}

// timeFormats are tried in order when decoding a string timestamp.
var timeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseFlexible(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	loc := referenceLocation()
	for _, layout := range timeFormats {
		if parsed, err := time.ParseInLocation(layout, s, loc); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %s", s)
}

// UnmarshalJSON accepts the formats clients have historically sent.
func (ft *FlexibleTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), "\"")
	if s == "null" || s == "" {
		ft.Time = time.Time{}
		return nil
	}

	parsed, err := parseFlexible(s)
	if err != nil {
		return err
	}
	ft.Time = parsed
	return nil
}

// MarshalJSON renders RFC3339, or null when unset.
func (ft FlexibleTime) MarshalJSON() ([]byte, error) {
	if ft.Time.IsZero() {
		return []byte("null"), nil
	}
	return []byte("\"" + ft.Time.Format(time.RFC3339) + "\""), nil
}

// MarshalBSONValue stores FlexibleTime as a native BSON date (or null when
// unset) so newly written documents are always in the canonical shape.
func (ft *FlexibleTime) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if ft == nil || ft.Time.IsZero() {
		return bsontype.Null, nil, nil
	}

	// BSON dates are int64 milliseconds since Unix epoch, little-endian
	timestampMs := ft.Time.UnixMilli()
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(timestampMs))

	return bsontype.DateTime, buf, nil
}

// UnmarshalBSONValue decodes a native date, a legacy string, or null.
func (ft *FlexibleTime) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.DateTime:
		if len(data) < 8 {
			return fmt.Errorf("invalid DateTime data: need 8 bytes, got %d", len(data))
		}
		timestampMs := int64(binary.LittleEndian.Uint64(data[:8]))
		seconds := timestampMs / 1000
		nanos := (timestampMs % 1000) * 1000000
		ft.Time = time.Unix(seconds, nanos)
		return nil

	case bsontype.String:
		// BSON string: int32 length prefix, bytes, trailing NUL
		if len(data) < 5 {
			return fmt.Errorf("invalid String data: need at least 5 bytes, got %d", len(data))
		}
		length := int32(binary.LittleEndian.Uint32(data[:4]))
		if length < 1 || int(4+length) > len(data) {
			return fmt.Errorf("invalid String data: declared length %d", length)
		}
		s := string(data[4 : 4+length-1])
		parsed, err := parseFlexible(s)
		if err != nil {
			return err
		}
		ft.Time = parsed
		return nil

	case bsontype.Null:
		ft.Time = time.Time{}
		return nil
	}

	return fmt.Errorf("cannot decode %v into FlexibleTime (expected DateTime, String or Null)", t)
}

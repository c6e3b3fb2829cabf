package models

import (
	"encoding/binary"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/bsontype"
)

func bsonString(s string) []byte {
	buf := make([]byte, 4+len(s)+1)
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(s)+1))
	copy(buf[4:], s)
	return buf
}

func bsonDateTime(t time.Time) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(t.UnixMilli()))
	return buf
}

func TestFlexibleTimeUnmarshalJSON(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string // YYYY-MM-DD in the reference zone, "" for zero
	}{
		{"RFC3339", `"2025-03-10T08:30:00Z"`, "2025-03-10"},
		{"naive datetime", `"2025-03-10T08:30:00"`, "2025-03-10"},
		{"date only", `"2025-03-10"`, "2025-03-10"},
		{"null", `null`, ""},
		{"empty", `""`, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var ft FlexibleTime
			if err := ft.UnmarshalJSON([]byte(tc.input)); err != nil {
				t.Fatalf("UnmarshalJSON(%s) error = %v", tc.input, err)
			}
			if tc.want == "" {
				if !ft.IsZero() {
					t.Errorf("expected zero time, got %v", ft.Time)
				}
				return
			}
			got := ft.In(referenceLocation()).Format("2006-01-02")
			if got != tc.want {
				t.Errorf("date = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestFlexibleTimeUnmarshalJSONInvalid(t *testing.T) {
	var ft FlexibleTime
	if err := ft.UnmarshalJSON([]byte(`"not a date"`)); err == nil {
		t.Error("UnmarshalJSON should fail on an unparseable string")
	}
}

func TestFlexibleTimeUnmarshalBSONDateTime(t *testing.T) {
	want := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)

	var ft FlexibleTime
	if err := ft.UnmarshalBSONValue(bsontype.DateTime, bsonDateTime(want)); err != nil {
		t.Fatalf("UnmarshalBSONValue error = %v", err)
	}
	if !ft.Time.Equal(want) {
		t.Errorf("time = %v, want %v", ft.Time, want)
	}
}

func TestFlexibleTimeUnmarshalBSONString(t *testing.T) {
	var ft FlexibleTime
	if err := ft.UnmarshalBSONValue(bsontype.String, bsonString("2025-03-10T08:30:00Z")); err != nil {
		t.Fatalf("UnmarshalBSONValue error = %v", err)
	}
	want := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	if !ft.Time.Equal(want) {
		t.Errorf("time = %v, want %v", ft.Time, want)
	}
}

func TestFlexibleTimeUnmarshalBSONNull(t *testing.T) {
	ft := FlexibleTime{Time: time.Now()}
	if err := ft.UnmarshalBSONValue(bsontype.Null, nil); err != nil {
		t.Fatalf("UnmarshalBSONValue error = %v", err)
	}
	if !ft.IsZero() {
		t.Errorf("expected zero time after null, got %v", ft.Time)
	}
}

func TestFlexibleTimeBSONRoundTrip(t *testing.T) {
	orig := FlexibleTime{Time: time.Date(2025, 6, 1, 19, 59, 59, 0, time.UTC)}

	typ, data, err := orig.MarshalBSONValue()
	if err != nil {
		t.Fatalf("MarshalBSONValue error = %v", err)
	}
	if typ != bsontype.DateTime {
		t.Fatalf("type = %v, want DateTime", typ)
	}

	var decoded FlexibleTime
	if err := decoded.UnmarshalBSONValue(typ, data); err != nil {
		t.Fatalf("UnmarshalBSONValue error = %v", err)
	}
	if !decoded.Time.Equal(orig.Time) {
		t.Errorf("round trip = %v, want %v", decoded.Time, orig.Time)
	}
}

func TestEffectiveTokens(t *testing.T) {
	t.Run("token list wins", func(t *testing.T) {
		u := User{Tokens: []string{"a", "b"}, FCMToken: "legacy"}
		got := u.EffectiveTokens()
		if len(got) != 2 || got[0] != "a" || got[1] != "b" {
			t.Errorf("EffectiveTokens() = %v", got)
		}
	})

	t.Run("legacy fallback", func(t *testing.T) {
		u := User{FCMToken: "legacy"}
		got := u.EffectiveTokens()
		if len(got) != 1 || got[0] != "legacy" {
			t.Errorf("EffectiveTokens() = %v", got)
		}
	})

	t.Run("empty", func(t *testing.T) {
		u := User{}
		if got := u.EffectiveTokens(); len(got) != 0 {
			t.Errorf("EffectiveTokens() = %v, want empty", got)
		}
	})
}

func TestMakeNameKey(t *testing.T) {
	if got := MakeNameKey("  Strawberry   01 "); got != "strawberry 01" {
		t.Errorf("MakeNameKey() = %q", got)
	}
}

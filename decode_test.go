package snowflake

import (
	"strconv"
	"testing"
	"time"
)

func ptr(s string) *string { return &s }

func TestDecodeBool(t *testing.T) {
	ct := ColumnType{Type: "boolean"}
	for _, tc := range []struct {
		in   string
		want bool
	}{
		{"1", true}, {"TRUE", true}, {"True", true},
		{"0", false}, {"FALSE", false}, {"false", false},
	} {
		got, err := decodeValue[bool](ptr(tc.in), ct)
		if err != nil {
			t.Fatalf("decode(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("decode(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDecodeDateTimeNTZ(t *testing.T) {
	ct := ColumnType{Type: "timestamp_ntz", Scale: 9}
	got, err := decodeValue[time.Time](ptr("1700746374.123456789"), ct)
	if err != nil {
		t.Fatal(err)
	}
	if got.Unix() != 1700746374 || got.Nanosecond() != 123456789 {
		t.Fatalf("got %v", got)
	}
	if got.Location() != time.UTC {
		t.Fatalf("expected UTC location")
	}
}

func TestDecodeTimestampTZPairForm(t *testing.T) {
	// "<epoch-seconds> <tz>" where offsetMinutes = 1440 - tz.
	// tz=1380 -> offset = 60 minutes = +01:00.
	ct := ColumnType{Type: "timestamp_tz", Scale: 9}
	got, err := decodeValue[time.Time](ptr("1700746374.000000000 1380"), ct)
	if err != nil {
		t.Fatal(err)
	}
	_, offset := got.Zone()
	if offset != 3600 {
		t.Fatalf("offset = %d, want 3600", offset)
	}
	if got.Unix() != 1700746374 {
		t.Fatalf("unix = %d", got.Unix())
	}
}

func TestDecodeTimestampTZSingleValueForm(t *testing.T) {
	// single decimal: offsetMinutes = raw % 16384, epochScaled = raw / 16384.
	scale := int64(0)
	offsetMinutes := int64(60)
	epochSeconds := int64(1700746374)
	raw := epochSeconds*16384 + offsetMinutes
	ct := ColumnType{Type: "timestamp_tz", Scale: scale}
	got, err := decodeValue[time.Time](ptr(strconv.FormatInt(raw, 10)), ct)
	if err != nil {
		t.Fatal(err)
	}
	_, offset := got.Zone()
	if offset != 3600 {
		t.Fatalf("offset = %d, want 3600", offset)
	}
	if got.Unix() != epochSeconds {
		t.Fatalf("unix = %d, want %d", got.Unix(), epochSeconds)
	}
}

func TestDecodeTimestampTZSingleValueFormWithScaleZeroDecimal(t *testing.T) {
	// scale=0, raw with a trailing ".0" must parse the same as the
	// bare-integer form.
	ct := ColumnType{Type: "timestamp_tz", Scale: 0}
	got, err := decodeValue[time.Time](ptr("1700000000.0"), ct)
	if err != nil {
		t.Fatal(err)
	}
	want, err := decodeValue[time.Time](ptr("1700000000"), ct)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDecodeTimestampTZPairFormEpochZero(t *testing.T) {
	// scale=0, raw "0 1440" decodes to the Unix epoch in UTC
	// (offsetMinutes = 1440 - 1440 = 0).
	ct := ColumnType{Type: "timestamp_tz", Scale: 0}
	got, err := decodeValue[time.Time](ptr("0 1440"), ct)
	if err != nil {
		t.Fatal(err)
	}
	if got.Unix() != 0 {
		t.Fatalf("unix = %d, want 0", got.Unix())
	}
	if _, offset := got.Zone(); offset != 0 {
		t.Fatalf("offset = %d, want 0", offset)
	}
}

func TestDecodeDate(t *testing.T) {
	ct := ColumnType{Type: "date"}
	got, err := decodeValue[time.Time](ptr("19723"), ct) // 2024-01-01
	if err != nil {
		t.Fatal(err)
	}
	if got.Unix() != 19723*86400 {
		t.Fatalf("unix = %d", got.Unix())
	}
}

func TestDecodeDateBoundary(t *testing.T) {
	ct := ColumnType{Type: "date"}
	for _, tc := range []struct {
		in   string
		want string
	}{
		{"0", "1970-01-01"},
		{"-1", "1969-12-31"},
		{"19358", "2023-01-01"},
	} {
		got, err := decodeValue[time.Time](ptr(tc.in), ct)
		if err != nil {
			t.Fatalf("decode(%q): %v", tc.in, err)
		}
		if got.Format("2006-01-02") != tc.want {
			t.Errorf("decode(%q) = %s, want %s", tc.in, got.Format("2006-01-02"), tc.want)
		}
	}
}

func TestDecodeNullValue(t *testing.T) {
	ct := ColumnType{Type: "fixed"}
	_, err := decodeValue[int64](nil, ct)
	if err == nil {
		t.Fatal("expected error for null value")
	}
}

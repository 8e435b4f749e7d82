package snowflake

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// decodeValue dispatches on T via a type switch over an empty interface,
// the common Go workaround for the lack of specialization in generics.
// Supported T: string, bool, int64, int32, int8, uint64, float64,
// time.Time, time.Duration, json.RawMessage.
func decodeValue[T any](raw *string, ct ColumnType) (T, error) {
	var zero T
	if raw == nil {
		return zero, newErr(KindDecode, "value is null", nil)
	}
	s := *raw

	var result any
	var err error
	switch any(zero).(type) {
	case string:
		result = s
	case bool:
		result, err = decodeBool(s)
	case int64:
		result, err = strconv.ParseInt(s, 10, 64)
	case int32:
		var v int64
		v, err = strconv.ParseInt(s, 10, 32)
		result = int32(v)
	case int8:
		var v int64
		v, err = strconv.ParseInt(s, 10, 8)
		result = int8(v)
	case uint64:
		result, err = strconv.ParseUint(s, 10, 64)
	case float64:
		result, err = strconv.ParseFloat(s, 64)
	case time.Time:
		result, err = decodeDateTime(s, ct)
	case time.Duration:
		result, err = decodeTimeOfDay(s, ct)
	case json.RawMessage:
		if json.Valid([]byte(s)) {
			result = json.RawMessage(s)
		} else {
			err = newErr(KindDecode, "value is not valid JSON", nil)
		}
	default:
		return zero, newErr(KindDecode, "unsupported decode target type", nil)
	}
	if err != nil {
		if sfErr, ok := err.(*Error); ok {
			return zero, sfErr
		}
		return zero, newErr(KindDecode, "failed to decode value", err)
	}
	return result.(T), nil
}

func decodeBool(s string) (bool, error) {
	switch strings.ToUpper(s) {
	case "1", "TRUE":
		return true, nil
	case "0", "FALSE":
		return false, nil
	default:
		return false, newErr(KindDecode, "invalid boolean value: "+s, nil)
	}
}

// decodeDateTime dispatches DATE/TIMESTAMP_* columns to their wire decoder.
func decodeDateTime(s string, ct ColumnType) (time.Time, error) {
	switch strings.ToLower(ct.Type) {
	case "date":
		days, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, newErr(KindDecode, "invalid date value: "+s, err)
		}
		return time.Unix(days*86400, 0).UTC(), nil
	case "timestamp_ntz":
		sec, nsec, err := parseScaledSeconds(s)
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(sec, nsec).UTC(), nil
	case "timestamp_ltz":
		sec, nsec, err := parseScaledSeconds(s)
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(sec, nsec), nil
	case "timestamp_tz":
		return decodeTimestampTZ(s, ct.Scale)
	default:
		// text/variant columns occasionally land here via a generic
		// DateTime request; fall back to NTZ-style parsing.
		sec, nsec, err := parseScaledSeconds(s)
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(sec, nsec).UTC(), nil
	}
}

// decodeTimestampTZ handles both TIMESTAMP_TZ wire encodings: a single
// decimal whose low 14 bits (mod 16384) carry the minute offset, or a
// "<decimal> <tz>" pair where tz maps to an offset via (1440 - tz) minutes.
func decodeTimestampTZ(s string, scale int64) (time.Time, error) {
	parts := strings.Fields(s)
	switch len(parts) {
	case 1:
		raw, err := parseDecimalScaled(parts[0], scale)
		if err != nil {
			return time.Time{}, newErr(KindDecode, "invalid TIMESTAMP_TZ value: "+s, err)
		}
		offsetMinutes := raw % 16384
		if offsetMinutes < 0 {
			offsetMinutes += 16384
		}
		// Floor division, consistent with the normalized mod above so
		// pre-epoch values decode correctly.
		epochScaled := (raw - offsetMinutes) / 16384
		sec, nsec, err := splitScaled(epochScaled, scale)
		if err != nil {
			return time.Time{}, err
		}
		loc := time.FixedZone("", int(offsetMinutes)*60)
		return time.Unix(sec, nsec).In(loc), nil
	case 2:
		sec, nsec, err := parseScaledSeconds(parts[0])
		if err != nil {
			return time.Time{}, err
		}
		tz, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return time.Time{}, newErr(KindDecode, "invalid TIMESTAMP_TZ offset: "+s, err)
		}
		offsetMinutes := 1440 - tz
		loc := time.FixedZone("", int(offsetMinutes)*60)
		return time.Unix(sec, nsec).In(loc), nil
	default:
		return time.Time{}, newErr(KindDecode, "invalid TIMESTAMP_TZ data; expected one or two numeric fields: "+s, nil)
	}
}

// decodeTimeOfDay decodes a Snowflake TIME column (scaled seconds since
// midnight) into a time.Duration.
func decodeTimeOfDay(s string, ct ColumnType) (time.Duration, error) {
	sec, nsec, err := parseScaledSeconds(s)
	if err != nil {
		return 0, err
	}
	return time.Duration(sec)*time.Second + time.Duration(nsec), nil
}

// parseScaledSeconds parses a "<seconds>[.<fraction>]" decimal string,
// scanning for the decimal point directly rather than round-tripping
// through strconv.ParseFloat, to avoid precision loss on large epoch
// values.
func parseScaledSeconds(s string) (sec int64, nsec int64, err error) {
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		sec, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, newErr(KindDecode, "invalid scaled-seconds value: "+s, err)
		}
		return sec, 0, nil
	}
	sec, err = strconv.ParseInt(s[:dot], 10, 64)
	if err != nil {
		return 0, 0, newErr(KindDecode, "invalid scaled-seconds value: "+s, err)
	}
	frac := s[dot+1:]
	for len(frac) < 9 {
		frac += "0"
	}
	frac = frac[:9]
	nsecVal, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, 0, newErr(KindDecode, "invalid scaled-seconds fraction: "+s, err)
	}
	return sec, nsecVal, nil
}

// parseDecimalScaled parses a "<int>[.<fraction>]" decimal string as an
// integer scaled by 10^scale, i.e. the value the wire would have sent had
// it encoded exactly scale fractional digits. Used for the TIMESTAMP_TZ
// single-value encoding, where the combined (epoch-seconds*16384 +
// minute-offset) integer is transmitted as a decimal with scale fractional
// digits (commonly "0" digits, hence scale 0 and a trailing ".0").
func parseDecimalScaled(s string, scale int64) (int64, error) {
	dot := strings.IndexByte(s, '.')
	intPart := s
	frac := ""
	if dot >= 0 {
		intPart = s[:dot]
		frac = s[dot+1:]
	}
	if scale <= 0 {
		return strconv.ParseInt(intPart, 10, 64)
	}
	for int64(len(frac)) < scale {
		frac += "0"
	}
	frac = frac[:scale]
	neg := strings.HasPrefix(intPart, "-")
	digits := strings.TrimPrefix(intPart, "-") + frac
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, err
	}
	if neg {
		v = -v
	}
	return v, nil
}

// splitScaled converts an integer value scaled by 10^scale fractional
// digits already folded into it (the TIMESTAMP_TZ single-value encoding) to
// whole seconds + nanoseconds.
func splitScaled(value int64, scale int64) (sec int64, nsec int64, err error) {
	if scale <= 0 {
		return value, 0, nil
	}
	div := int64(1)
	for i := int64(0); i < scale; i++ {
		div *= 10
	}
	sec = value / div
	frac := value % div
	nsec = frac * (1000000000 / div)
	return sec, nsec, nil
}

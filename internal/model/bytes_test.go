package model

import (
	"math"
	"strconv"
	"strings"
	"testing"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{-1, ""},
		{0, ""},
		{1, "1 B"},
		{512, "512 B"},
		{1023, "1023 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1048576, "1.00 MB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{1 << 30, "1.00 GB"},
		{1 << 40, "1.00 TB"},
		{1 << 50, "1024.00 TB"},
	}

	for _, test := range tests {
		result := FormatBytes(test.bytes)
		if result != test.expected {
			t.Errorf("FormatBytes(%d) = %q, expected %q", test.bytes, result, test.expected)
		}
	}
}

func TestFormatBytesFloat_NonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -0.5, 0} {
		if result := FormatBytesFloat(v); result != "" {
			t.Errorf("FormatBytesFloat(%v) = %q, expected empty string", v, result)
		}
	}
}

func TestFormatBytes_MonotonicWithinUnit(t *testing.T) {
	parse := func(s string) (float64, string) {
		parts := strings.Fields(s)
		if len(parts) != 2 {
			t.Fatalf("unexpected format %q", s)
		}
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			t.Fatalf("unexpected number in %q: %v", s, err)
		}
		return v, parts[1]
	}

	prevValue, prevUnit := parse(FormatBytes(1))
	for b := int64(2); b < 4*1024*1024; b = b*3/2 + 1 {
		value, unit := parse(FormatBytes(b))
		if unit == prevUnit && value < prevValue {
			t.Errorf("FormatBytes(%d) = %v %s is smaller than previous %v %s", b, value, unit, prevValue, prevUnit)
		}
		prevValue, prevUnit = value, unit
	}
}

/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package size provides a byte-count type with human-readable formatting,
// parsing and viper/JSON decode integration.
package size

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// Size is a byte count. It is stored as a float64 so fractional units
// ("1.5MB") survive a parse/format round-trip without truncation.
type Size float64

const (
	SizeNul  Size = 0
	SizeUnit Size = 1
	SizeKilo Size = SizeUnit * 1024
	SizeMega Size = SizeKilo * 1024
	SizeGiga Size = SizeMega * 1024
	SizeTera Size = SizeGiga * 1024
	SizePeta Size = SizeTera * 1024
	SizeExa  Size = SizePeta * 1024
)

var units = []struct {
	suffix string
	size   Size
}{
	{"EB", SizeExa},
	{"PB", SizePeta},
	{"TB", SizeTera},
	{"GB", SizeGiga},
	{"MB", SizeMega},
	{"KB", SizeKilo},
}

// String formats the size using the largest unit under which the value is >= 1,
// falling back to plain bytes ("B").
func (s Size) String() string {
	for _, u := range units {
		if s >= u.size {
			return fmt.Sprintf("%.2f%s", float64(s)/float64(u.size), u.suffix)
		}
	}
	return fmt.Sprintf("%.0fB", float64(s))
}

// Int returns the size truncated to an int.
func (s Size) Int() int {
	return int(s)
}

// Int64 returns the size truncated to an int64.
func (s Size) Int64() int64 {
	return int64(s)
}

// Float64 returns the size as a float64.
func (s Size) Float64() float64 {
	return float64(s)
}

// MarshalJSON encodes the size as its human-readable string form.
func (s Size) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a human-readable size string, or a bare number of bytes.
func (s *Size) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		v, perr := Parse(str)
		if perr != nil {
			return perr
		}
		*s = v
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*s = Size(f)
	return nil
}

var parseExpr = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([A-Z]{0,2})\s*$`)

// Parse decodes a human-readable size string ("100MB", "1.5 GB", "512", "1B", ...)
// into a Size. An empty unit is interpreted as bytes.
func Parse(s string) (Size, error) {
	m := parseExpr.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("size: invalid value %q", s)
	}

	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("size: invalid numeric value %q: %w", m[1], err)
	}

	unit := strings.ToUpper(m[2])
	switch unit {
	case "", "B":
		return Size(v), nil
	case "K", "KB":
		return Size(v) * SizeKilo, nil
	case "M", "MB":
		return Size(v) * SizeMega, nil
	case "G", "GB":
		return Size(v) * SizeGiga, nil
	case "T", "TB":
		return Size(v) * SizeTera, nil
	case "P", "PB":
		return Size(v) * SizePeta, nil
	case "E", "EB":
		return Size(v) * SizeExa, nil
	default:
		return 0, fmt.Errorf("size: unknown unit %q", unit)
	}
}

// ParseInt64 converts a byte count to a Size, taking the absolute value of negative input.
func ParseInt64(i int64) Size {
	if i < 0 {
		i = -i
	}
	return Size(i)
}

// SizeFromInt64 is an alias of ParseInt64, kept for call-site readability.
func SizeFromInt64(i int64) Size {
	return ParseInt64(i)
}

// ViperDecoderHook returns a mapstructure-compatible decode hook that converts
// a string field into a Size, for use with viper.Unmarshal(..., viper.DecodeHook(...)).
func ViperDecoderHook() func(reflect.Type, reflect.Type, interface{}) (interface{}, error) {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(Size(0)) {
			return data, nil
		}
		if from.Kind() != reflect.String {
			return data, nil
		}

		return Parse(data.(string))
	}
}

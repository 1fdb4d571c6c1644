// Copyright (c) 2024-2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"log/slog"
	"strings"
	"time"
)

// Duration is a specialization of the time.Duration which can be
// decoded from and encoded to the human-readable time.ParseDuration
// representation in YAML documents.
type Duration time.Duration

// UnmarshalText reifies the encoding.TextUnmarshaler interface, so
// a byte slice (e.g., read from a YAML file) can be decoded as a
// time duration. The format of the `data` argument should conform
// to the time.ParseDuration expected format. In absence of errors,
// a nil error will be returned and only then, `d` receiver will be
// updated to contain the decoded duration.
func (d *Duration) UnmarshalText(data []byte) error {
	dd, err := time.ParseDuration(string(data))
	if err != nil {
		return err
	}
	*d = Duration(dd)
	return nil
}

// MarshalText implements the encoding.TextMarshaler interface and
// serializes `d` according to the time.Duration string format, with
// this difference that zero trailing values will be dropped, e.g.,
// producing 2h instead of 2h0m0s, for sake of more readability.
func (d Duration) MarshalText() ([]byte, error) {
	s := time.Duration(d).String()
	if strings.HasSuffix(s, "m0s") {
		s = s[:len(s)-2]
	}
	if strings.HasSuffix(s, "h0m") {
		s = s[:len(s)-2]
	}
	return []byte(s), nil
}

// LogValue implements slog.LogValuer, reporting this duration as a
// standard slog.DurationValue.
func (d Duration) LogValue() slog.Value {
	return slog.DurationValue(time.Duration(d))
}

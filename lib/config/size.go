// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ByteSize is a byte count that unmarshals from strings like "512M"
// or "1G" in YAML and environment values. A bare number is bytes.
type ByteSize int64

// ParseSize parses a size string with an optional K/M/G/T suffix
// (powers of 1024).
func ParseSize(s string) (ByteSize, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}

	var multiplier int64 = 1
	numeric := s
	switch s[len(s)-1] {
	case 'K', 'k':
		multiplier = 1 << 10
		numeric = s[:len(s)-1]
	case 'M', 'm':
		multiplier = 1 << 20
		numeric = s[:len(s)-1]
	case 'G', 'g':
		multiplier = 1 << 30
		numeric = s[:len(s)-1]
	case 'T', 't':
		multiplier = 1 << 40
		numeric = s[:len(s)-1]
	}

	value, err := strconv.ParseInt(strings.TrimSpace(numeric), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("negative size %q", s)
	}
	return ByteSize(value * multiplier), nil
}

// String renders the size with the largest exact suffix.
func (b ByteSize) String() string {
	value := int64(b)
	for _, unit := range []struct {
		suffix string
		size   int64
	}{
		{"T", 1 << 40},
		{"G", 1 << 30},
		{"M", 1 << 20},
		{"K", 1 << 10},
	} {
		if value >= unit.size && value%unit.size == 0 {
			return fmt.Sprintf("%d%s", value/unit.size, unit.suffix)
		}
	}
	return strconv.FormatInt(value, 10)
}

// UnmarshalYAML accepts either a number (bytes) or a suffixed string.
func (b *ByteSize) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch value := raw.(type) {
	case int:
		*b = ByteSize(value)
		return nil
	case int64:
		*b = ByteSize(value)
		return nil
	case string:
		parsed, err := ParseSize(value)
		if err != nil {
			return err
		}
		*b = parsed
		return nil
	default:
		return fmt.Errorf("size must be a number or suffixed string, got %T", raw)
	}
}

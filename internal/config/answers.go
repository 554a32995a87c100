package config

import (
	"fmt"
	"strconv"
	"strings"
)

// SamplingAnswers holds the raw replies collected by the interactive prompt.
// Length is a whole number of metres or R for a random length between
// MinLength and MaxLength. Orientation is whole degrees in [0, 180) or R.
type SamplingAnswers struct {
	Trials      string
	Length      string
	MinLength   string
	MaxLength   string
	Orientation string
}

// RandomLength reports whether the length answer asks for a random length,
// in which case MinLength and MaxLength are needed.
func (a SamplingAnswers) RandomLength() bool {
	return isRandom(a.Length)
}

// BuildSampling turns prompt answers into sampling settings layered on base.
// It performs no I/O; the caller decides how to re-prompt on error.
func BuildSampling(a SamplingAnswers, base SamplingConfig) (SamplingConfig, error) {
	s := base

	trials, err := parsePositive("number of trials", a.Trials)
	if err != nil {
		return base, err
	}
	s.Trials = trials

	if isRandom(a.Length) {
		min, err := parsePositive("minimum length", a.MinLength)
		if err != nil {
			return base, err
		}
		max, err := parsePositive("maximum length", a.MaxLength)
		if err != nil {
			return base, err
		}
		if max <= min {
			return base, fmt.Errorf("%w: maximum length %d must exceed minimum %d", ErrInvalid, max, min)
		}
		s.RandomLength = true
		s.MinLengthM, s.MaxLengthM = min, max
	} else {
		length, err := parsePositive("chain length", a.Length)
		if err != nil {
			return base, err
		}
		s.RandomLength = false
		s.LengthM = float64(length)
	}

	if isRandom(a.Orientation) {
		s.RandomOrientation = true
	} else {
		deg, err := strconv.Atoi(strings.TrimSpace(a.Orientation))
		if err != nil || deg < 0 || deg > 179 {
			return base, fmt.Errorf("%w: orientation must be 0-179 or R, got %q", ErrInvalid, a.Orientation)
		}
		s.RandomOrientation = false
		s.OrientationDeg = float64(deg)
	}

	return s, nil
}

func isRandom(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "r")
}

func parsePositive(what, v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive whole number, got %q", ErrInvalid, what, v)
	}
	return n, nil
}

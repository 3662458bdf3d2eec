package domain

import (
	"errors"
	"strings"
)

var (
	ErrUnknownFeature = errors.New("unknown feature (must be tips or quizzes)")
)

// Feature discriminates independent trackers. Tips and quizzes never share state.
type Feature string

const (
	FeatureTips    Feature = "tips"
	FeatureQuizzes Feature = "quizzes"
)

func AllFeatures() []Feature {
	return []Feature{FeatureTips, FeatureQuizzes}
}

func ParseFeature(raw string) (Feature, error) {
	switch f := Feature(strings.ToLower(strings.TrimSpace(raw))); f {
	case FeatureTips, FeatureQuizzes:
		return f, nil
	default:
		return "", ErrUnknownFeature
	}
}

func (f Feature) String() string {
	return string(f)
}

package gamification

import "errors"

var (
	ErrInvalidThresholds = errors.New("level thresholds must start at 0 and be strictly increasing")
	ErrUnknownPolicy     = errors.New("unknown streak policy")
	ErrMalformedCriteria = errors.New("malformed badge criteria")
)

package scoring

import "errors"

var (
	// ErrMalformedProviderOutput means one channel's raw payload lacked its
	// minimum required field. It aborts aggregation for that channel only;
	// the caller substitutes a fallback instead of failing the assessment.
	ErrMalformedProviderOutput = errors.New("malformed provider output")

	// ErrNoModalityData means combine was called with zero channels.
	ErrNoModalityData = errors.New("no modality data to aggregate")
)

package experiment

import "errors"

// Errors reported while loading benchmark data. Callers match them with errors.Is.
var (
	// ErrMalformedDescriptor: a directory name does not decompose into five fields.
	ErrMalformedDescriptor = errors.New("malformed experiment descriptor")
	// ErrMalformedRecord: a log line has the wrong column count or a non numeric value.
	ErrMalformedRecord = errors.New("malformed log record")
	// ErrMissingExperiment: an existing experiment directory lacks the requested log.
	ErrMissingExperiment = errors.New("missing experiment")
	// ErrEmptySeries: a log holds no finite samples.
	ErrEmptySeries = errors.New("empty series")
)

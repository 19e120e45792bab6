package cluster

import "errors"

var (
	// ErrEmptyBatch indicates a discover call with no vectors.
	// Caller-correctable; never retried.
	ErrEmptyBatch = errors.New("no vectors provided for clustering")

	// ErrInvalidConfig indicates out-of-range clustering parameters.
	ErrInvalidConfig = errors.New("invalid clustering configuration")

	// ErrRaggedMatrix indicates input rows of differing dimension.
	ErrRaggedMatrix = errors.New("vectors have inconsistent dimensions")

	// ErrClustering wraps internal clustering failures (numerical
	// degeneracy and the like). There is no safe automatic recovery for a
	// failed unsupervised run; callers surface it as "pattern discovery
	// failed".
	ErrClustering = errors.New("pattern discovery failed")
)

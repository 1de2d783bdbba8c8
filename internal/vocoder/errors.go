package vocoder

import "errors"

// ErrInvalidInput is returned by Analyze when the PCM is empty, the sample
// rate is non-positive, or the kernel produced non-finite output it could
// not recover from.
var ErrInvalidInput = errors.New("vocoder: invalid input")

// ErrInvalidParams is returned by Synthesize when Params fails its shape
// invariants, has a non-finite frame period, or has zero-length f0.
var ErrInvalidParams = errors.New("vocoder: invalid params")

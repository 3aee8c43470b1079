package analysis

import (
	"errors"
	"fmt"

	"github.com/couchcryptid/harbinger/internal/imaging"
)

var (
	// ErrMalformedImage covers nil images, wrong buffer sizes and undecodable data.
	ErrMalformedImage = errors.New("malformed image")
	// ErrEmptyImage is returned for zero-area images.
	ErrEmptyImage = errors.New("empty image")
	// ErrInternal wraps recovered panics from the numeric passes.
	ErrInternal = errors.New("internal analysis failure")
)

// FeatureError records which extraction stage failed.
type FeatureError struct {
	Stage string
	Err   error
}

func (e *FeatureError) Error() string {
	return fmt.Sprintf("extract features (%s): %v", e.Stage, e.Err)
}

func (e *FeatureError) Unwrap() error { return e.Err }

// validate checks the image and maps imaging errors onto this package's
// sentinels so callers need only one set of errors.
func validate(img *imaging.RGB) error {
	if img == nil {
		return &FeatureError{Stage: "validate", Err: ErrMalformedImage}
	}
	err := img.Validate()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, imaging.ErrEmpty):
		return &FeatureError{Stage: "validate", Err: ErrEmptyImage}
	default:
		return &FeatureError{Stage: "validate", Err: fmt.Errorf("%w: %v", ErrMalformedImage, err)}
	}
}

// recoverInto converts a panic from a numeric pass into a FeatureError.
func recoverInto(stage string, err *error) {
	if r := recover(); r != nil {
		*err = &FeatureError{Stage: stage, Err: fmt.Errorf("%w: %v", ErrInternal, r)}
	}
}

package outcome

import (
	"context"
	"errors"
)

type tee []Recorder

// Tee returns a Recorder that forwards every outcome to each non-nil recorder.
// All recorders are called even when one fails; the errors are joined.
func Tee(recorders ...Recorder) Recorder {
	t := make(tee, 0, len(recorders))
	for _, r := range recorders {
		if r != nil {
			t = append(t, r)
		}
	}
	return t
}

func (t tee) Record(ctx context.Context, o Outcome) error {
	var errs []error
	for _, r := range t {
		if err := r.Record(ctx, o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package resolver

import (
	"fmt"

	apperrors "github.com/fantasytools/fpl-agent/internal/errors"
)

// NoMatchError reports that no candidate scored above the acceptance
// threshold. Alternates carries best-effort suggestions for the caller
// to present; it may be empty.
type NoMatchError struct {
	Kind       Kind
	Query      string
	Alternates []Candidate
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no %s matches %q", e.Kind, e.Query)
}

func (e *NoMatchError) Unwrap() error { return apperrors.ErrNoMatch }

// AmbiguousMatchError reports multiple equally-ranked candidates. The
// resolver never silently picks one; the caller must disambiguate.
type AmbiguousMatchError struct {
	Kind       Kind
	Query      string
	Candidates []Candidate
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("%q matches %d %ss equally well", e.Query, len(e.Candidates), e.Kind)
}

func (e *AmbiguousMatchError) Unwrap() error { return apperrors.ErrAmbiguousMatch }

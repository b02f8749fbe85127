// Package scrape defines the closed failure taxonomy shared by providers
// and extractors. Every error that crosses a package boundary in the engine
// is an *Error so callers can branch on Kind without string matching.
package scrape

import (
	"errors"
	"fmt"
)

// Kind identifies one failure class.
type Kind int

const (
	// KindInvalidURL means a malformed input URL.
	KindInvalidURL Kind = iota
	// KindParsingFailed means an expected markup/JSON shape was absent,
	// including decode failures and pattern-not-found cases.
	KindParsingFailed
	// KindContentNotFound means a detail page loaded but carried no
	// recognizable title or content.
	KindContentNotFound
	// KindExtractionFailed means no playable link could be produced after
	// exhausting every known strategy for the call.
	KindExtractionFailed
	// KindNetworkError is a transport-level failure, wrapped with cause.
	KindNetworkError
	// KindMissingEpisodeInfo means episode-scoped extraction was requested
	// without the routing token the episode id is expected to carry.
	KindMissingEpisodeInfo
	// KindInvalidConfiguration means the caller supplied a content type the
	// provider cannot service.
	KindInvalidConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid URL"
	case KindParsingFailed:
		return "parsing failed"
	case KindContentNotFound:
		return "content not found"
	case KindExtractionFailed:
		return "extraction failed"
	case KindNetworkError:
		return "network error"
	case KindMissingEpisodeInfo:
		return "missing episode info"
	case KindInvalidConfiguration:
		return "invalid configuration"
	default:
		return "unknown"
	}
}

// Error is the propagation vehicle for all engine failures.
type Error struct {
	Kind   Kind
	Reason string // human detail, may be empty
	Err    error  // wrapped cause, may be nil
}

func (e *Error) Error() string {
	switch {
	case e.Reason != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	case e.Reason != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two *Error values by Kind alone, so sentinel-style
// comparisons like errors.Is(err, &Error{Kind: KindContentNotFound}) work.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// IsKind reports whether err carries the given failure kind.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// KindOf returns the failure kind of err, or ok=false for foreign errors.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func InvalidURL(raw string, cause error) error {
	return &Error{Kind: KindInvalidURL, Reason: raw, Err: cause}
}

func ParsingFailed(reason string) error {
	return &Error{Kind: KindParsingFailed, Reason: reason}
}

func ParsingFailedErr(reason string, cause error) error {
	return &Error{Kind: KindParsingFailed, Reason: reason, Err: cause}
}

func ContentNotFound(id string) error {
	return &Error{Kind: KindContentNotFound, Reason: id}
}

func ExtractionFailed(reason string) error {
	return &Error{Kind: KindExtractionFailed, Reason: reason}
}

func NetworkError(cause error) error {
	return &Error{Kind: KindNetworkError, Err: cause}
}

func MissingEpisodeInfo(reason string) error {
	return &Error{Kind: KindMissingEpisodeInfo, Reason: reason}
}

func InvalidConfiguration(reason string) error {
	return &Error{Kind: KindInvalidConfiguration, Reason: reason}
}

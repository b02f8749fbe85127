package scrape

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsKind(t *testing.T) {
	err := ExtractionFailed("all servers failed")
	if !IsKind(err, KindExtractionFailed) {
		t.Error("IsKind(ExtractionFailed) = false, want true")
	}
	if IsKind(err, KindNetworkError) {
		t.Error("IsKind(NetworkError) = true for extraction failure")
	}
	if IsKind(errors.New("plain"), KindExtractionFailed) {
		t.Error("IsKind matched a foreign error")
	}
}

func TestIsKindWrapped(t *testing.T) {
	inner := NetworkError(errors.New("connection refused"))
	wrapped := fmt.Errorf("fetching servers: %w", inner)

	if !IsKind(wrapped, KindNetworkError) {
		t.Error("IsKind did not see through fmt.Errorf wrapping")
	}

	kind, ok := KindOf(wrapped)
	if !ok || kind != KindNetworkError {
		t.Errorf("KindOf = (%v, %v), want (KindNetworkError, true)", kind, ok)
	}
}

func TestErrorsIsByKind(t *testing.T) {
	err := fmt.Errorf("details: %w", ContentNotFound("movie/whatever-123"))
	if !errors.Is(err, &Error{Kind: KindContentNotFound}) {
		t.Error("errors.Is by kind sentinel failed")
	}
	if errors.Is(err, &Error{Kind: KindInvalidURL}) {
		t.Error("errors.Is matched wrong kind")
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"reason only", ParsingFailed("title selector empty"), "parsing failed: title selector empty"},
		{"cause only", NetworkError(errors.New("timeout")), "network error: timeout"},
		{"bare", &Error{Kind: KindExtractionFailed}, "extraction failed"},
		{"both", ParsingFailedErr("decode", errors.New("bad json")), "parsing failed: decode: bad json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("eof")
	err := ParsingFailedErr("servers json", cause)
	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
}

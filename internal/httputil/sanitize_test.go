package httputil

import "testing"

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid https", "https://flixhq.to/home", false},
		{"valid http", "http://127.0.0.1:8080/page", false},
		{"no scheme", "flixhq.to/home", true},
		{"ftp scheme", "ftp://example.com/file", true},
		{"no host", "https:///path", true},
		{"garbage", "://not a url", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"content path", "movie/free-the-exorcist-hd-75043", false},
		{"numeric", "75043", false},
		{"routing token", "12345::ep=4", false},
		{"base64 routing token", "4242::aGVsbG8>d29ybGQ=", true},
		{"base64 token chars", "4242::aGVsbG8rd29ybGQ=", false},
		{"empty", "", true},
		{"traversal", "movie/../../etc/passwd", true},
		{"shell chars", "movie/$(whoami)", true},
		{"spaces", "movie/free the exorcist", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidateNumericID(t *testing.T) {
	if err := ValidateNumericID("12345"); err != nil {
		t.Errorf("ValidateNumericID(12345) = %v", err)
	}
	if err := ValidateNumericID("123a5"); err == nil {
		t.Error("ValidateNumericID accepted non-numeric input")
	}
	if err := ValidateNumericID(""); err == nil {
		t.Error("ValidateNumericID accepted empty input")
	}
}

func TestEncodeQuery(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"star wars", "star-wars"},
		{"  breaking   bad  ", "breaking-bad"},
		{"the matrix", "the-matrix"},
		{"solo", "solo"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := EncodeQuery(tt.input); got != tt.expected {
				t.Errorf("EncodeQuery(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestBuildURL(t *testing.T) {
	got := BuildURL("https://flixhq.to/", "ajax", "v2", "tv/seasons")
	want := "https://flixhq.to/ajax/v2/tv%2Fseasons"
	if got != want {
		t.Errorf("BuildURL = %q, want %q", got, want)
	}
}

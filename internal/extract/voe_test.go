package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"remora/internal/media"
	"remora/internal/scrape"
)

func TestVOEDeobfuscateRoundTrip(t *testing.T) {
	v := NewVOE(http.DefaultClient)

	link := "https://delivery.voe-cdn.net/engine/hls/master.m3u8?sig=abc123"
	blob := v.Obfuscate(link)
	if blob == link {
		t.Fatal("obfuscation changed nothing")
	}

	got, err := v.deobfuscate(blob)
	if err != nil {
		t.Fatalf("deobfuscate: %v", err)
	}
	if got != link {
		t.Errorf("round trip = %q, want %q", got, link)
	}
}

func TestVOEExtract(t *testing.T) {
	v := NewVOE(nil)
	blob := v.Obfuscate("https://delivery.voe-cdn.net/engine/hls/master.m3u8")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><script>var sources = {'hls': '%s'};</script></html>`, blob)
	}))
	defer srv.Close()

	v = NewVOE(srv.Client())
	links, err := v.Extract(context.Background(), srv.URL+"/e/xyz789")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("got %d links, want 1", len(links))
	}

	link := links[0]
	if link.URL != "https://delivery.voe-cdn.net/engine/hls/master.m3u8" {
		t.Errorf("URL = %q", link.URL)
	}
	if link.Type != media.LinkHLS {
		t.Errorf("type = %v, want HLS", link.Type)
	}
	if link.Quality != "Auto" {
		t.Errorf("quality = %q, want Auto", link.Quality)
	}
	if !link.RequiresReferer || link.Headers["Referer"] == "" {
		t.Error("referer handling incomplete")
	}
}

func TestVOEExtractMissingSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><script>var sources = {};</script></html>")
	}))
	defer srv.Close()

	v := NewVOE(srv.Client())
	_, err := v.Extract(context.Background(), srv.URL+"/e/xyz789")
	if !scrape.IsKind(err, scrape.KindParsingFailed) {
		t.Errorf("expected parsing-failed kind, got %v", err)
	}
}

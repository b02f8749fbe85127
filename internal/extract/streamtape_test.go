package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"remora/internal/media"
	"remora/internal/scrape"
)

func TestStreamtapeExtract(t *testing.T) {
	// the page splices '//host/get_video?id=..' + ('xcdbtoken=value').substring(4)
	page := `<html><script>
document.getElementById('robotlink').innerHTML = '//streamtape.com/get_video?id=Abc123&expires=99' + ('xcdb&token=sEcReT').substring(4);
</script></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	s := NewStreamtape(srv.Client())
	links, err := s.Extract(context.Background(), srv.URL+"/e/Abc123")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("got %d links, want 1", len(links))
	}

	link := links[0]
	want := "https://streamtape.com/get_video?id=Abc123&expires=99&token=sEcReT&stream=1"
	if link.URL != want {
		t.Errorf("URL = %q, want %q", link.URL, want)
	}
	if link.Type != media.LinkDirect {
		t.Errorf("type = %v, want direct", link.Type)
	}
	if link.RequiresReferer {
		t.Error("streamtape links do not need a referer")
	}
	if link.Headers["User-Agent"] == "" {
		t.Error("User-Agent header missing")
	}
}

func TestStreamtapeExtractNoFragments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>markup changed upstream</html>")
	}))
	defer srv.Close()

	s := NewStreamtape(srv.Client())
	_, err := s.Extract(context.Background(), srv.URL+"/e/Abc123")
	if !scrape.IsKind(err, scrape.KindParsingFailed) {
		t.Errorf("expected parsing-failed kind, got %v", err)
	}
}

func TestStreamtapeBadOffset(t *testing.T) {
	page := `document.getElementById('robotlink').innerHTML = '//streamtape.com/get_video?id=1' + ('xy').substring(99);`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	s := NewStreamtape(srv.Client())
	_, err := s.Extract(context.Background(), srv.URL+"/e/1")
	if err == nil || !strings.Contains(err.Error(), "offset") {
		t.Errorf("expected offset error, got %v", err)
	}
}

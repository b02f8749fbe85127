package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"remora/internal/pipeline"
	"remora/internal/scrape"
)

const primewireTestToken = "tok_4fz9Qm2x"

func testPrimewirePipe(t *testing.T) pipeline.Pipeline {
	t.Helper()
	alphabet, err := pipeline.NewAlphabet(primewireAlphabet)
	if err != nil {
		t.Fatalf("alphabet: %v", err)
	}
	return pipeline.Pipeline{
		Key:       primewireKey,
		IV:        primewireIV,
		Keystream: primewireKeystream,
		Strategy:  pipeline.XORHexStrategy,
		Alphabet:  alphabet,
	}
}

// newPrimewireServer mirrors the site's cipher handshake: it decodes every
// incoming blob with the shared pipeline and answers with encoded payloads.
func newPrimewireServer(t *testing.T, brokenServers map[string]bool) *httptest.Server {
	t.Helper()
	pipe := testPrimewirePipe(t)

	encode := func(plain string) string {
		blob, err := pipe.Encode(plain)
		if err != nil {
			t.Fatalf("encoding payload: %v", err)
		}
		return blob
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/movie/v-19946", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<html><body><script>var player = {"data":"%s","autoplay":true};</script></body></html>`, primewireTestToken)
	})
	mux.HandleFunc("/ajax/v2/embeds/", func(w http.ResponseWriter, r *http.Request) {
		blob := strings.TrimPrefix(r.URL.Path, "/ajax/v2/embeds/")
		plain, err := pipe.Decode(blob)
		if err != nil || plain != primewireTestToken {
			http.Error(w, "bad token", http.StatusForbidden)
			return
		}
		servers := `[{"id":"pw1","name":"Alpha"},{"id":"pw2","name":"Beta"},{"id":"pw3","name":"Gamma"}]`
		fmt.Fprintf(w, `{"data":"%s"}`, encode(servers))
	})
	mux.HandleFunc("/ajax/v2/source/", func(w http.ResponseWriter, r *http.Request) {
		blob := strings.TrimPrefix(r.URL.Path, "/ajax/v2/source/")
		plain, err := pipe.Decode(blob)
		if err != nil {
			http.Error(w, "bad token", http.StatusForbidden)
			return
		}
		token, serverID, ok := strings.Cut(plain, "|")
		if !ok || token != primewireTestToken {
			http.Error(w, "bad token", http.StatusForbidden)
			return
		}
		if brokenServers[serverID] {
			http.Error(w, "upstream gone", http.StatusInternalServerError)
			return
		}
		quality := map[string]string{"pw1": "1080p", "pw2": "Auto", "pw3": "720p"}[serverID]
		source := fmt.Sprintf(
			`{"file":"https://cdn.pw.test/%s/index.m3u8","type":"hls","label":%q,"tracks":[{"file":"https://cdn.pw.test/%s/en.vtt","label":"English"}]}`,
			serverID, quality, serverID)
		fmt.Fprintf(w, `{"data":"%s"}`, encode(source))
	})

	return httptest.NewServer(mux)
}

func TestPrimeWireExtract(t *testing.T) {
	srv := newPrimewireServer(t, nil)
	defer srv.Close()

	p := NewPrimeWire(srv.URL, srv.Client())

	links, err := p.ExtractStreamingLinks(context.Background(), "movie/v-19946", "", "")
	if err != nil {
		t.Fatalf("ExtractStreamingLinks: %v", err)
	}
	if len(links) != 3 {
		t.Fatalf("got %d links, want 3", len(links))
	}

	wantOrder := []string{"Auto", "1080p", "720p"}
	for i, want := range wantOrder {
		if links[i].Quality != want {
			t.Errorf("links[%d].Quality = %q, want %q", i, links[i].Quality, want)
		}
	}
	best := links[0]
	if best.Server != "PrimeWire - Beta" {
		t.Errorf("Server = %q", best.Server)
	}
	if !best.RequiresReferer || best.Headers["Referer"] == "" {
		t.Errorf("referer headers missing: %+v", best.Headers)
	}
	if len(best.Subtitles) != 1 || best.Subtitles[0].Name != "English" {
		t.Errorf("subtitles = %+v", best.Subtitles)
	}
}

func TestPrimeWireExtractPartialFailure(t *testing.T) {
	srv := newPrimewireServer(t, map[string]bool{"pw2": true})
	defer srv.Close()

	p := NewPrimeWire(srv.URL, srv.Client())

	links, err := p.ExtractStreamingLinks(context.Background(), "movie/v-19946", "", "")
	if err != nil {
		t.Fatalf("ExtractStreamingLinks: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("got %d links, want 2 survivors of 3", len(links))
	}
	if links[0].Quality != "1080p" || links[1].Quality != "720p" {
		t.Errorf("order = %q, %q", links[0].Quality, links[1].Quality)
	}
}

func TestPrimeWireExtractAllFail(t *testing.T) {
	srv := newPrimewireServer(t, map[string]bool{"pw1": true, "pw2": true, "pw3": true})
	defer srv.Close()

	p := NewPrimeWire(srv.URL, srv.Client())

	_, err := p.ExtractStreamingLinks(context.Background(), "movie/v-19946", "", "")
	if !scrape.IsKind(err, scrape.KindExtractionFailed) {
		t.Errorf("got %v, want extraction failure", err)
	}
}

func TestPrimeWireExtractNoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html><body>no player here</body></html>")
	}))
	defer srv.Close()

	p := NewPrimeWire(srv.URL, srv.Client())

	_, err := p.ExtractStreamingLinks(context.Background(), "movie/v-19946", "", "")
	if !scrape.IsKind(err, scrape.KindParsingFailed) {
		t.Errorf("got %v, want parsing failure", err)
	}
}

func TestPrimeWireSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/filter" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, loadFixture(t, "primewire_search.html"))
	}))
	defer srv.Close()

	p := NewPrimeWire(srv.URL, srv.Client())

	page, err := p.Search(context.Background(), "matrix", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(page.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(page.Items))
	}
	if page.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", page.TotalPages)
	}

	first := page.Items[0]
	if first.Title != "The Matrix" || first.Year != "1999" {
		t.Errorf("item = %+v, want title/year split from the link title", first)
	}
	if page.Items[2].ID != "tv/v-33201" {
		t.Errorf("Items[2].ID = %q", page.Items[2].ID)
	}
}

func TestPrimeWireHandshakeRoundTrip(t *testing.T) {
	pipe := testPrimewirePipe(t)

	blob, err := pipe.Encode(primewireTestToken + "|pw1")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// blobs ride in URL paths, so they must be path-safe
	if strings.ContainsAny(blob, "/+=?&") {
		t.Errorf("blob %q is not URL-safe", blob)
	}

	plain, err := pipe.Decode(blob)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if plain != primewireTestToken+"|pw1" {
		t.Errorf("round trip = %q", plain)
	}
}

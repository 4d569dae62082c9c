package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchCodePlainPre(t *testing.T) {
	page := `<html><body>
	<pre id="submission-code" class="prettyprint">package main

func main() {
	println(&quot;hello&quot;)
}
</pre>
	</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/contests/abc100/submissions/1001" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	s := NewScraper(WithBaseURL(server.URL), WithTimeout(5*time.Second))

	code, err := s.FetchCode(context.Background(), "abc100", 1001)
	if err != nil {
		t.Fatalf("FetchCode failed: %v", err)
	}

	want := "package main\n\nfunc main() {\n\tprintln(\"hello\")\n}\n"
	if code != want {
		t.Errorf("code = %q, want %q", code, want)
	}
}

func TestFetchCodeHighlightedLines(t *testing.T) {
	// Syntax-highlighted pages wrap each line in an <li> with span
	// markup and non-breaking spaces.
	page := `<html><body>
	<pre id="submission-code"><ol class="linenums"><li class="L0"><span class="kwd">import</span>&nbsp;<span class="pln">sys</span></li><li class="L1"><span class="pln">print(1 &lt; 2)</span></li></ol></pre>
	</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	s := NewScraper(WithBaseURL(server.URL))

	code, err := s.FetchCode(context.Background(), "abc100", 1001)
	if err != nil {
		t.Fatalf("FetchCode failed: %v", err)
	}

	want := "importsys\nprint(1 < 2)\n"
	if code != want {
		t.Errorf("code = %q, want %q", code, want)
	}
}

func TestFetchCodeMissingElement(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>Sign in required</p></body></html>`)
	}))
	defer server.Close()

	s := NewScraper(WithBaseURL(server.URL))

	_, err := s.FetchCode(context.Background(), "abc100", 1001)
	if err == nil {
		t.Fatal("expected error for page without submission code element")
	}
}

func TestFetchCodeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	s := NewScraper(WithBaseURL(server.URL))

	_, err := s.FetchCode(context.Background(), "abc100", 9999)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestFetchCodeSetsUserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected User-Agent header to be set")
		}
		fmt.Fprint(w, `<pre id="submission-code">x</pre>`)
	}))
	defer server.Close()

	s := NewScraper(WithBaseURL(server.URL))

	if _, err := s.FetchCode(context.Background(), "abc100", 1001); err != nil {
		t.Fatalf("FetchCode failed: %v", err)
	}
}

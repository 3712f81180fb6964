package exec

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"coderoom/internal/models"
)

func TestNormalizeLanguage(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Java", "java"},
		{"Python", "python"},
		{"Javascript", "javascript"},
		{"cpp", "cpp"},
		{"Go", "go"},
		{"RUBY", "ruby"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeLanguage(tc.in); got != tc.want {
			t.Errorf("NormalizeLanguage(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSupportedLanguagesSorted(t *testing.T) {
	langs := SupportedLanguages()
	if len(langs) != 4 {
		t.Fatalf("expected 4 languages, got %#v", langs)
	}
	for i := 1; i < len(langs); i++ {
		if langs[i-1].Name >= langs[i].Name {
			t.Fatalf("languages not sorted: %#v", langs)
		}
	}
	for _, l := range langs {
		if l.ID != NormalizeLanguage(l.Name) {
			t.Fatalf("id mismatch for %#v", l)
		}
	}
}

func TestExecuteSuccess(t *testing.T) {
	var gotReq models.ExecRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(models.ExecResponse{
			Language: "java",
			Version:  "15.0.2",
			Run:      &models.ExecRun{Stdout: "Hello\n", Output: "Hello\n"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.Execute(context.Background(), models.ExecRequest{
		Language: "java",
		Files:    []models.ExecFile{{Content: "class Main {}"}},
		Stdin:    "42",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if resp.Run == nil || resp.Run.Output != "Hello\n" {
		t.Fatalf("unexpected response: %#v", resp)
	}

	if gotReq.Version != "*" {
		t.Fatalf("expected wildcard version default, got %q", gotReq.Version)
	}
	if len(gotReq.Files) != 1 || gotReq.Files[0].Content != "class Main {}" {
		t.Fatalf("unexpected files payload: %#v", gotReq.Files)
	}
	if gotReq.Stdin != "42" {
		t.Fatalf("unexpected stdin: %q", gotReq.Stdin)
	}
}

func TestExecuteKeepsExplicitVersion(t *testing.T) {
	var gotVersion string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.ExecRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotVersion = req.Version
		_ = json.NewEncoder(w).Encode(models.ExecResponse{Run: &models.ExecRun{}})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.Execute(context.Background(), models.ExecRequest{Version: "3.10.0"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if gotVersion != "3.10.0" {
		t.Fatalf("explicit version overwritten: %q", gotVersion)
	}
}

func TestExecuteNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad language", http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.Execute(context.Background(), models.ExecRequest{}); err == nil {
		t.Fatalf("expected error for non-2xx status")
	}
}

func TestExecuteMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.Execute(context.Background(), models.ExecRequest{}); err == nil {
		t.Fatalf("expected error for malformed body")
	}
}

func TestExecuteMissingRunResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"language":"java","version":"15.0.2"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Execute(context.Background(), models.ExecRequest{})
	if err == nil || !strings.Contains(err.Error(), "missing run result") {
		t.Fatalf("expected missing run error, got %v", err)
	}
}

func TestExecuteNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client := NewClient(server.URL)
	if _, err := client.Execute(context.Background(), models.ExecRequest{}); err == nil {
		t.Fatalf("expected network error")
	}
}

func TestNewClientDefaultsURL(t *testing.T) {
	client := NewClient("")
	if client.url != DefaultURL {
		t.Fatalf("expected default url, got %q", client.url)
	}
}

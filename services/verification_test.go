// services/verification_test.go
package services

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMatchesIdentity(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		displayName string
		want        bool
	}{
		{
			name:        "institution marker and full name",
			text:        "PALAWAN STATE UNIVERSITY\nStudent ID\nMaria Santos",
			displayName: "Maria Santos",
			want:        true,
		},
		{
			name:        "short marker and partial name",
			text:        "PSU Student Card - SANTOS, M.",
			displayName: "Maria Santos",
			want:        true,
		},
		{
			name:        "name present but no institution marker",
			text:        "Some Other University\nMaria Santos",
			displayName: "Maria Santos",
			want:        false,
		},
		{
			name:        "institution marker but wrong name",
			text:        "Palawan State University\nJuan Dela Cruz",
			displayName: "Maria Santos",
			want:        false,
		},
		{
			name:        "matching is case-insensitive",
			text:        "palawan state university\nmaria santos",
			displayName: "MARIA SANTOS",
			want:        true,
		},
		{
			name:        "single-letter name tokens are ignored",
			text:        "PSU card for someone",
			displayName: "A B",
			want:        false,
		},
		{
			name:        "empty extracted text",
			text:        "",
			displayName: "Maria Santos",
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesIdentity(tt.text, tt.displayName); got != tt.want {
				t.Fatalf("MatchesIdentity(%q, %q) = %v, want %v", tt.text, tt.displayName, got, tt.want)
			}
		})
	}
}

func newTestOCRClient(endpoint string) *OCRSpaceClient {
	return &OCRSpaceClient{
		apiKey:   "test-key",
		endpoint: endpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

func TestOCRSpaceClientExtractText(t *testing.T) {
	t.Run("returns the parsed text", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseMultipartForm(10 << 20); err != nil {
				t.Fatalf("expected multipart request: %v", err)
			}
			if r.FormValue("apikey") != "test-key" {
				t.Fatalf("expected api key field, got %q", r.FormValue("apikey"))
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"ParsedResults":[{"ParsedText":"Palawan State University\nMaria Santos"}],"IsErroredOnProcessing":false,"OCRExitCode":1}`))
		}))
		defer server.Close()

		text, err := newTestOCRClient(server.URL).ExtractText("id.jpg", "image/jpeg", []byte("fake-image"))
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if text != "Palawan State University\nMaria Santos" {
			t.Fatalf("unexpected parsed text: %q", text)
		}
	})

	t.Run("processing error surfaces as an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"ParsedResults":[],"IsErroredOnProcessing":true,"ErrorMessage":["Unable to recognize the file type"],"OCRExitCode":99}`))
		}))
		defer server.Close()

		if _, err := newTestOCRClient(server.URL).ExtractText("id.bin", "application/octet-stream", []byte{0x00}); err == nil {
			t.Fatal("expected processing error")
		}
	})

	t.Run("non-200 status surfaces as an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "service down", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		if _, err := newTestOCRClient(server.URL).ExtractText("id.jpg", "image/jpeg", []byte("x")); err == nil {
			t.Fatal("expected error on 503")
		}
	})

	t.Run("empty result set yields empty text", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"ParsedResults":[],"IsErroredOnProcessing":false}`))
		}))
		defer server.Close()

		text, err := newTestOCRClient(server.URL).ExtractText("id.jpg", "image/jpeg", []byte("x"))
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if text != "" {
			t.Fatalf("expected empty text, got %q", text)
		}
	})

	t.Run("unreachable endpoint surfaces as an error", func(t *testing.T) {
		if _, err := newTestOCRClient("http://127.0.0.1:1/parse").ExtractText("id.jpg", "image/jpeg", []byte("x")); err == nil {
			t.Fatal("expected connection error")
		}
	})
}

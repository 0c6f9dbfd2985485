package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkhault/calsync/internal/models"
	"github.com/mkhault/calsync/internal/shared"
)

func TestClient(t *testing.T) {
	t.Run("GetRecord parses the record", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || r.URL.Path != "/record" {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(Record{
				Tasks:       []models.Task{{ID: "t1", Title: "remote"}},
				LastUpdated: "2026-03-01T00:00:00Z",
			})
		}))
		defer srv.Close()

		client := NewClient(srv.URL, srv.Client(), 0)
		rec, err := client.GetRecord(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rec.Tasks) != 1 || rec.Tasks[0].ID != "t1" {
			t.Errorf("unexpected record: %+v", rec)
		}
		if rec.LastUpdated != "2026-03-01T00:00:00Z" {
			t.Errorf("unexpected stamp: %s", rec.LastUpdated)
		}
	})

	t.Run("404 means no record yet", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no record", http.StatusNotFound)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, srv.Client(), 0)
		if _, err := client.GetRecord(context.Background()); !errors.Is(err, shared.ErrRecordMissing) {
			t.Errorf("expected ErrRecordMissing, got %v", err)
		}
	})

	t.Run("server errors wrap ErrRemoteUnavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, srv.Client(), 0)
		if _, err := client.GetRecord(context.Background()); !errors.Is(err, shared.ErrRemoteUnavailable) {
			t.Errorf("expected ErrRemoteUnavailable on GET, got %v", err)
		}
		if err := client.PutRecord(context.Background(), &Record{}); !errors.Is(err, shared.ErrRemoteUnavailable) {
			t.Errorf("expected ErrRemoteUnavailable on PUT, got %v", err)
		}
	})

	t.Run("malformed payload wraps ErrRemoteUnavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "not json")
		}))
		defer srv.Close()

		client := NewClient(srv.URL, srv.Client(), 0)
		if _, err := client.GetRecord(context.Background()); !errors.Is(err, shared.ErrRemoteUnavailable) {
			t.Errorf("expected ErrRemoteUnavailable, got %v", err)
		}
	})

	t.Run("PutRecord sends the record as JSON", func(t *testing.T) {
		var got Record
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut {
				t.Errorf("expected PUT, got %s", r.Method)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected JSON content type, got %s", ct)
			}
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Errorf("failed to decode body: %v", err)
			}
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, srv.Client(), 0)
		err := client.PutRecord(context.Background(), &Record{
			Tasks:       []models.Task{{ID: "t1", Title: "outbound"}},
			LastUpdated: "2026-03-01T00:00:00Z",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got.Tasks) != 1 || got.LastUpdated == "" {
			t.Errorf("unexpected payload: %+v", got)
		}
	})

	t.Run("connection failure wraps ErrRemoteUnavailable", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1", &http.Client{}, 0)
		if _, err := client.GetRecord(context.Background()); !errors.Is(err, shared.ErrRemoteUnavailable) {
			t.Errorf("expected ErrRemoteUnavailable, got %v", err)
		}
	})
}

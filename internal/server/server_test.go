package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecordServer(t *testing.T) {
	srv := httptest.NewServer(New(nil).Handler())
	defer srv.Close()

	t.Run("health probe", func(t *testing.T) {
		resp, err := srv.Client().Get(srv.URL + "/health")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
	})

	t.Run("GET before any PUT is 404", func(t *testing.T) {
		resp, err := srv.Client().Get(srv.URL + "/record")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("PUT then GET round-trips the record", func(t *testing.T) {
		record := `{"events":[],"tasks":[{"id":"t1","title":"remote"}],"sources":[],"ignoredEventIds":[],"lastUpdated":"2026-03-01T00:00:00Z"}`

		req, _ := http.NewRequest(http.MethodPut, srv.URL+"/record", strings.NewReader(record))
		req.Header.Set("Content-Type", "application/json")
		resp, err := srv.Client().Do(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", resp.StatusCode)
		}

		getResp, err := srv.Client().Get(srv.URL + "/record")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer getResp.Body.Close()
		if getResp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", getResp.StatusCode)
		}
		body, _ := io.ReadAll(getResp.Body)
		if string(body) != record {
			t.Errorf("record did not round-trip:\n put %s\n got %s", record, body)
		}
	})

	t.Run("PUT rejects invalid JSON", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPut, srv.URL+"/record", strings.NewReader("not json"))
		resp, err := srv.Client().Do(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("other methods are rejected", func(t *testing.T) {
		resp, err := srv.Client().Post(srv.URL+"/record", "application/json", strings.NewReader("{}"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", resp.StatusCode)
		}
	})
}

package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientCurrent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/2.5/weather" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("appid") != "key-test" {
			t.Errorf("missing api key, got %q", r.URL.Query().Get("appid"))
		}
		if r.URL.Query().Get("units") != "metric" {
			t.Errorf("expected metric units, got %q", r.URL.Query().Get("units"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"dt":1767265200,"main":{"temp":4.5,"humidity":81}}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "key-test", 48.78, 9.18)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	obs, err := client.Current(context.Background())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if obs.Temperature != 4.5 || obs.Humidity != 81 {
		t.Fatalf("unexpected observation: %+v", obs)
	}
	if !obs.TS.Equal(time.Unix(1767265200, 0).UTC()) {
		t.Fatalf("unexpected observation time: %v", obs.TS)
	}
}

func TestClientHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/history/city" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("start") == "" || r.URL.Query().Get("end") == "" {
			t.Error("missing start/end query")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"list":[
			{"dt":1767265200,"main":{"temp":3.0,"humidity":85}},
			{"dt":1767268800,"main":{"temp":4.0,"humidity":83}},
			{"dt":0,"main":{"temp":99.0,"humidity":0}}
		]}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "key-test", 48.78, 9.18)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	from := time.Unix(1767265200, 0).UTC()
	observations, err := client.History(context.Background(), from, from.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	// The zero-dt entry is malformed and dropped.
	if len(observations) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(observations))
	}
	if observations[0].Temperature != 3.0 || observations[1].Temperature != 4.0 {
		t.Fatalf("unexpected observations: %+v", observations)
	}
}

func TestClientHistory_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"cod":401,"message":"Invalid API key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "bad-key", 48.78, 9.18)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	from := time.Now().Add(-time.Hour)
	if _, err := client.History(context.Background(), from, time.Now()); err == nil {
		t.Fatal("expected error for 401 response")
	}
}

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient("", "key", 0, 0); err == nil {
		t.Fatal("expected error for empty base url")
	}
	if _, err := NewClient("http://example.com", "", 0, 0); err == nil {
		t.Fatal("expected error for empty api key")
	}
}

package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAPIClientDevices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/devices" {
			t.Errorf("Path = %q, expected /devices", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q, expected bearer token", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"devices":[{"id":"dev-1","code":"PC-1","name":"Basil","connected":true}],"total":1,"connected":1,"active":1,"offline":0}`))
	}))
	defer srv.Close()

	client := NewAPIClient(srv.URL, "secret", 5*time.Second)
	list, err := client.Devices(context.Background())
	if err != nil {
		t.Fatalf("Devices failed: %v", err)
	}
	if len(list.Devices) != 1 || list.Devices[0].Code != "PC-1" {
		t.Errorf("Devices = %+v", list.Devices)
	}
	if list.Total != 1 || list.Connected != 1 {
		t.Errorf("Counters = total %d connected %d", list.Total, list.Connected)
	}
}

func TestAPIClientReadings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/devices/PC-1/readings" {
			t.Errorf("Path = %q, expected /devices/PC-1/readings", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "200" {
			t.Errorf("limit = %q, expected 200", got)
		}
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, expected none without a token", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"r2","value":42.5,"timestamp":"2024-03-15T11:00:00Z","temperature":21.5,"pressure":null,"altitude":null,"deviceId":"dev-1"},
			{"id":"r1","value":40,"timestamp":"2024-03-15T10:00:00Z","temperature":null,"pressure":null,"altitude":null,"deviceId":"dev-1"}
		]`))
	}))
	defer srv.Close()

	// A trailing slash on the base URL must not produce a double slash
	client := NewAPIClient(srv.URL+"/", "", time.Second)
	readings, err := client.Readings(context.Background(), "PC-1", 200)
	if err != nil {
		t.Fatalf("Readings failed: %v", err)
	}
	if len(readings) != 2 {
		t.Fatalf("Readings = %d, expected 2", len(readings))
	}
	if readings[0].ID != "r2" || readings[0].Temperature == nil || *readings[0].Temperature != 21.5 {
		t.Errorf("First reading = %+v", readings[0])
	}
	if readings[1].Temperature != nil {
		t.Errorf("Expected nil temperature, got %v", *readings[1].Temperature)
	}
}

func TestAPIClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewAPIClient(srv.URL, "", time.Second)
	if _, err := client.Devices(context.Background()); err == nil {
		t.Error("Expected an error for a 502 devices response")
	}
	if _, err := client.Readings(context.Background(), "PC-1", 10); err == nil {
		t.Error("Expected an error for a 502 readings response")
	}
}

func TestAPIClientBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"devices": [truncated`))
	}))
	defer srv.Close()

	client := NewAPIClient(srv.URL, "", time.Second)
	if _, err := client.Devices(context.Background()); err == nil {
		t.Error("Expected a decode error for a malformed body")
	}
}

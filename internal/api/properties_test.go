package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/taskflow/client-go/internal/models"
)

func TestPropertyEndpoints(t *testing.T) {
	type call struct {
		method string
		path   string
		body   map[string]any
	}
	var got call

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = call{method: r.Method, path: r.URL.Path}
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&got.body)
		}
		if r.Method == http.MethodGet {
			w.Write(envelope(true, []models.PropertyDef{{ID: 7, BoardID: 1, Name: "Stage"}}, ""))
			return
		}
		w.Write(envelope(true, models.PropertyDef{ID: 7, BoardID: 1, Name: "Stage"}, ""))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	ctx := context.Background()

	tests := []struct {
		name   string
		run    func() error
		method string
		path   string
		check  func(body map[string]any) bool
	}{
		{"list", func() error {
			_, err := client.ListProperties(ctx, 1)
			return err
		}, http.MethodGet, "/boards/1/properties", nil},
		{"create", func() error {
			_, err := client.CreateProperty(ctx, 1, PropertyCreate{Name: "Stage", Type: models.PropertySelect, Visible: true})
			return err
		}, http.MethodPost, "/boards/1/properties", func(body map[string]any) bool {
			return body["propertyName"] == "Stage" && body["propertyType"] == "SELECT"
		}},
		{"update", func() error {
			name := "Phase"
			_, err := client.UpdateProperty(ctx, 7, PropertyUpdate{Name: &name})
			return err
		}, http.MethodPut, "/properties/7", func(body map[string]any) bool {
			_, hasType := body["propertyType"]
			return body["propertyName"] == "Phase" && !hasType
		}},
		{"delete", func() error {
			_, err := client.DeleteProperty(ctx, 7)
			return err
		}, http.MethodDelete, "/properties/7", nil},
	}

	for _, tt := range tests {
		got = call{}
		if err := tt.run(); err != nil {
			t.Errorf("%s: call failed: %v", tt.name, err)
			continue
		}
		if got.method != tt.method || got.path != tt.path {
			t.Errorf("%s: Expected %s %s, got %s %s", tt.name, tt.method, tt.path, got.method, got.path)
		}
		if tt.check != nil && !tt.check(got.body) {
			t.Errorf("%s: unexpected request body %v", tt.name, got.body)
		}
	}
}

func TestOptionEndpoints(t *testing.T) {
	var method, path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		if r.Method == http.MethodGet {
			w.Write(envelope(true, []models.PropertyOption{{ID: 3, PropertyID: 7, Name: "Build"}}, ""))
			return
		}
		w.Write(envelope(true, models.PropertyOption{ID: 3, PropertyID: 7, Name: "Build"}, ""))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	ctx := context.Background()

	if _, err := client.ListOptions(ctx, 7); err != nil {
		t.Fatalf("ListOptions failed: %v", err)
	}
	if method != http.MethodGet || path != "/properties/7/options" {
		t.Errorf("Expected GET /properties/7/options, got %s %s", method, path)
	}

	resp, err := client.CreateOption(ctx, 7, OptionCreate{Name: "Build"})
	if err != nil {
		t.Fatalf("CreateOption failed: %v", err)
	}
	if method != http.MethodPost || path != "/properties/7/options" {
		t.Errorf("Expected POST /properties/7/options, got %s %s", method, path)
	}
	if resp.Data == nil || resp.Data.Name != "Build" {
		t.Errorf("Expected option decoded, got %+v", resp.Data)
	}

	name := "Review"
	if _, err := client.UpdateOption(ctx, 3, OptionUpdate{Name: &name}); err != nil {
		t.Fatalf("UpdateOption failed: %v", err)
	}
	if method != http.MethodPut || path != "/options/3" {
		t.Errorf("Expected PUT /options/3, got %s %s", method, path)
	}

	if _, err := client.DeleteOption(ctx, 3); err != nil {
		t.Fatalf("DeleteOption failed: %v", err)
	}
	if method != http.MethodDelete || path != "/options/3" {
		t.Errorf("Expected DELETE /options/3, got %s %s", method, path)
	}
}

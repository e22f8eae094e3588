package responseformat

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

type payload struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

func TestWriteResponseJSON(t *testing.T) {
	f := NewFormatter()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()

	if err := f.WriteResponse(rec, req, payload{Name: "a", Values: []float64{1, 2}}, map[string]string{"X-Run": "1"}); err != nil {
		t.Fatalf("WriteResponse error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, expected 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != ContentTypeJSON {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Header().Get("X-Run") != "1" || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("headers = %v", rec.Header())
	}
	if strings.TrimSpace(rec.Body.String()) != `{"name":"a","values":[1,2]}` {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestWriteResponseMsgPack(t *testing.T) {
	f := NewFormatter()
	req := httptest.NewRequest(http.MethodGet, "/x?format=msgpack", nil)
	rec := httptest.NewRecorder()

	if err := f.WriteStatus(rec, req, http.StatusCreated, payload{Name: "b", Values: []float64{3}}, nil); err != nil {
		t.Fatalf("WriteStatus error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, expected 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != ContentTypeMsgPack {
		t.Errorf("Content-Type = %q", ct)
	}

	var got map[string]any
	if err := msgpack.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("msgpack.Unmarshal error: %v", err)
	}
	if got["name"] != "b" {
		t.Errorf("decoded = %v, expected json field names", got)
	}
}

func TestWriteError(t *testing.T) {
	f := NewFormatter()
	rec := httptest.NewRecorder()
	f.WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusBadRequest, errors.New("bad window"))

	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if rec.Code != http.StatusBadRequest || body.Error != "bad window" {
		t.Errorf("WriteError = %d %+v", rec.Code, body)
	}
}

func TestDecodeRequest(t *testing.T) {
	f := NewFormatter()

	t.Run("json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"c","values":[4]}`))
		var got payload
		if err := f.DecodeRequest(req, &got); err != nil {
			t.Fatalf("DecodeRequest error: %v", err)
		}
		if got.Name != "c" || len(got.Values) != 1 {
			t.Errorf("decoded = %+v", got)
		}
	})

	t.Run("unknown json field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nam":"c"}`))
		var got payload
		if err := f.DecodeRequest(req, &got); err == nil {
			t.Error("expected error for unknown field")
		}
	})

	t.Run("msgpack", func(t *testing.T) {
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		if err := enc.Encode(payload{Name: "d", Values: []float64{5, 6}}); err != nil {
			t.Fatal(err)
		}

		req := httptest.NewRequest(http.MethodPost, "/", &buf)
		req.Header.Set("Content-Type", ContentTypeMsgPack)
		var got payload
		if err := f.DecodeRequest(req, &got); err != nil {
			t.Fatalf("DecodeRequest error: %v", err)
		}
		if got.Name != "d" || len(got.Values) != 2 {
			t.Errorf("decoded = %+v", got)
		}
	})
}

package restserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/chrissnell/pcfseg/internal/storage"
	"github.com/chrissnell/pcfseg/internal/storage/sqlite"
	"github.com/chrissnell/pcfseg/internal/types"
	"github.com/chrissnell/pcfseg/pkg/config"
	"github.com/chrissnell/pcfseg/pkg/responseformat"
)

func newTestServer(t *testing.T, withStore bool) *httptest.Server {
	t.Helper()
	return newTestServerWithConfig(t, config.DefaultConfig(), withStore)
}

func newTestServerWithConfig(t *testing.T, cfg *config.ConfigData, withStore bool) *httptest.Server {
	t.Helper()

	var store storage.Store
	if withStore {
		s, err := sqlite.Open(":memory:")
		if err != nil {
			t.Fatalf("sqlite.Open error: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		store = s
	}

	ctrl, err := NewController(context.Background(), &sync.WaitGroup{}, cfg, store, nil, nil)
	if err != nil {
		t.Fatalf("NewController error: %v", err)
	}

	server := httptest.NewServer(ctrl.Handler())
	t.Cleanup(server.Close)
	return server
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, responseformat.ContentTypeJSON, strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s error: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s error: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func TestPostSegment(t *testing.T) {
	server := newTestServer(t, false)

	tests := []struct {
		name    string
		body    string
		penalty float64
		cost    float64
		lengths []int
		means   []float64
	}{
		{
			name:    "gamma",
			body:    `{"values":[2,3,1,12,13,11],"gamma":50,"normalise":false}`,
			penalty: 50,
			cost:    104,
			lengths: []int{3, 3},
			means:   []float64{2, 12},
		},
		{
			name:    "fixed penalty",
			body:    `{"values":[2,3,1,12,13,11],"penalty":1000}`,
			penalty: 1000,
			cost:    1000 + 154,
			lengths: []int{6},
			means:   []float64{7},
		},
		{
			name:    "empty series",
			body:    `{"values":[]}`,
			penalty: 0,
			cost:    0,
			lengths: []int{},
			means:   []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, server.URL+"/api/v1/segment", tt.body)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, expected 200", resp.StatusCode)
			}

			var got types.SegmentResponse
			decode(t, resp, &got)
			if got.Penalty != tt.penalty || got.Cost != tt.cost {
				t.Errorf("penalty, cost = %v, %v, expected %v, %v", got.Penalty, got.Cost, tt.penalty, tt.cost)
			}
			if !reflect.DeepEqual(got.Fit.Lengths, tt.lengths) || !reflect.DeepEqual(got.Fit.Means, tt.means) {
				t.Errorf("fit = %+v, expected lengths %v means %v", got.Fit, tt.lengths, tt.means)
			}
		})
	}
}

func TestPostSegmentBadRequest(t *testing.T) {
	server := newTestServer(t, false)

	for _, body := range []string{
		`{"values":[1,2`,
		`{"values":[1,2],"gamma":-1}`,
		`{"values":[1,2],"penalty":-5}`,
		`{"series":[1,2]}`,
	} {
		resp := post(t, server.URL+"/api/v1/segment", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, expected 400", body, resp.StatusCode)
		}
		var e responseformat.ErrorResponse
		decode(t, resp, &e)
		if e.Error == "" {
			t.Errorf("body %s: empty error message", body)
		}
	}

	if resp := get(t, server.URL+"/api/v1/segment"); resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /segment status = %d, expected 405", resp.StatusCode)
	}
}

func TestRequestLengthLimit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.REST.MaxSeriesLength = 4
	server := newTestServerWithConfig(t, cfg, false)

	tests := []struct {
		name     string
		path     string
		body     string
		expected int
	}{
		{name: "segment at limit", path: "/api/v1/segment", body: `{"values":[1,2,3,4]}`, expected: http.StatusOK},
		{name: "segment over limit", path: "/api/v1/segment", body: `{"values":[1,2,3,4,5]}`, expected: http.StatusRequestEntityTooLarge},
		{
			name: "arms over limit",
			path: "/api/v1/arms",
			body: `{"points":[
				{"chromosome":"1","position":1,"value":0},
				{"chromosome":"1","position":2,"value":0},
				{"chromosome":"1","position":3,"value":0},
				{"chromosome":"1","position":4,"value":0},
				{"chromosome":"1","position":5,"value":0}]}`,
			expected: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, server.URL+tt.path, tt.body)
			if resp.StatusCode != tt.expected {
				t.Errorf("status = %d, expected %d", resp.StatusCode, tt.expected)
			}
		})
	}
}

func TestRoutingErrors(t *testing.T) {
	server := newTestServer(t, false)

	tests := []struct {
		name     string
		path     string
		expected int
	}{
		{name: "GET on POST route", path: "/api/v1/arms", expected: http.StatusMethodNotAllowed},
		{name: "unknown API path", path: "/api/v1/nothing", expected: http.StatusNotFound},
		{name: "outside API prefix", path: "/nothing", expected: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, server.URL+tt.path)
			if resp.StatusCode != tt.expected {
				t.Errorf("status = %d, expected %d", resp.StatusCode, tt.expected)
			}
			var e responseformat.ErrorResponse
			decode(t, resp, &e)
			if e.Error == "" {
				t.Error("empty error message")
			}
		})
	}
}

func TestPostSegmentMsgPack(t *testing.T) {
	server := newTestServer(t, false)

	resp := post(t, server.URL+"/api/v1/segment?format=msgpack", `{"values":[1,1,1]}`)
	if ct := resp.Header.Get("Content-Type"); ct != responseformat.ContentTypeMsgPack {
		t.Errorf("Content-Type = %q, expected msgpack", ct)
	}
}

const armsBody = `{
	"gamma": 1,
	"normalise": false,
	"points": [
		{"chromosome":"1","position":1000,"value":0},
		{"chromosome":"1","position":1001,"value":0},
		{"chromosome":"1","position":1002,"value":0},
		{"chromosome":"1","position":1003,"value":8},
		{"chromosome":"1","position":1004,"value":8},
		{"chromosome":"1","position":1005,"value":8},
		{"chromosome":"1","position":200000000,"value":3},
		{"chromosome":"1","position":200000001,"value":3},
		{"chromosome":"chrUn","position":5,"value":1}
	]
}`

func TestPostArmsAndGetRun(t *testing.T) {
	server := newTestServer(t, true)

	resp := post(t, server.URL+"/api/v1/arms", armsBody)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, expected 200", resp.StatusCode)
	}

	var arms types.ArmsResponse
	decode(t, resp, &arms)

	if arms.RunID == "" || !storage.ValidID(arms.RunID) {
		t.Errorf("run_id = %q, expected a stored run", arms.RunID)
	}
	if arms.Build != "GRCh38" {
		t.Errorf("build = %q", arms.Build)
	}

	expected := []types.ArmSummary{
		{Chromosome: "1", Arm: "P", Points: 6, Penalty: 1, Segments: 2},
		{Chromosome: "1", Arm: "Q", Points: 2, Penalty: 1, Segments: 1},
	}
	if !reflect.DeepEqual(arms.Arms, expected) {
		t.Errorf("arms = %+v, expected %+v", arms.Arms, expected)
	}
	if len(arms.Segments) != 3 || arms.Segments[1].Start != 1003 || arms.Segments[1].Mean != 8 {
		t.Errorf("segments = %+v", arms.Segments)
	}

	runResp := get(t, server.URL+"/api/v1/runs/"+arms.RunID)
	if runResp.StatusCode != http.StatusOK {
		t.Fatalf("GET run status = %d, expected 200", runResp.StatusCode)
	}
	var run storage.Run
	decode(t, runResp, &run)
	if run.ID != arms.RunID || run.Gamma != 1 || run.Normalise || len(run.Segments) != 3 {
		t.Errorf("run = %+v", run)
	}
}

func TestPostArmsUnknownBuild(t *testing.T) {
	server := newTestServer(t, false)

	resp := post(t, server.URL+"/api/v1/arms", `{"build":"hg18","points":[]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", resp.StatusCode)
	}
}

func TestPostArmsWithoutStore(t *testing.T) {
	server := newTestServer(t, false)

	resp := post(t, server.URL+"/api/v1/arms", armsBody)
	var arms types.ArmsResponse
	decode(t, resp, &arms)
	if arms.RunID != "" {
		t.Errorf("run_id = %q, expected none without storage", arms.RunID)
	}

	if resp := get(t, server.URL+"/api/v1/runs/"+storage.NewRun("", 0, false, 0, false, nil).ID); resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET run status = %d, expected 404", resp.StatusCode)
	}
}

func TestGetRunErrors(t *testing.T) {
	server := newTestServer(t, true)

	tests := []struct {
		id     string
		status int
	}{
		{"not-a-uuid", http.StatusBadRequest},
		{"9b2f7c1e-3d4a-4f5b-8c6d-7e8f9a0b1c2d", http.StatusNotFound},
	}
	for _, tt := range tests {
		if resp := get(t, server.URL+"/api/v1/runs/"+tt.id); resp.StatusCode != tt.status {
			t.Errorf("GET run %s status = %d, expected %d", tt.id, resp.StatusCode, tt.status)
		}
	}
}

func TestGetStatus(t *testing.T) {
	server := newTestServer(t, true)

	resp := get(t, server.URL+"/api/v1/status")
	var status types.StatusResponse
	decode(t, resp, &status)

	if status.Status != "ok" || !status.Storage || status.Build != "GRCh38" || status.Version == "" {
		t.Errorf("status = %+v", status)
	}
	if status.Executor != "pool" || status.BusyWorkers != 0 {
		t.Errorf("executor = %q with %d busy workers, expected idle pool", status.Executor, status.BusyWorkers)
	}
}

package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/mealyetf/pkg/cache"
	"github.com/matzehuels/mealyetf/pkg/observability"
	"github.com/matzehuels/mealyetf/pkg/pipeline"
)

const toggleJSON = `{
  "type": "mealy",
  "states": ["off", "on"],
  "alphabet": ["press"],
  "initial": "off",
  "transitions": [
    {"from": "off", "input": "press", "output": "light", "to": "on"},
    {"from": "on", "input": "press", "output": "dark", "to": "off"}
  ]
}`

const toggleYAML = `type: mealy
states: ["off", "on"]
alphabet: [press]
initial: "off"
transitions:
  - {from: "off", input: press, output: light, to: "on"}
  - {from: "on", input: press, output: dark, to: "off"}
`

const toggleBody = `begin init
0
end init
begin trans
2/1 1
0/2 0
3/0 2
1/3 0
end trans
begin sort id
"off"
"on"
"(light,on)"
"(dark,off)"
end sort
begin sort letter
"press"
"light"
"dark"
end sort
`

func newTestServer(t *testing.T, c cache.Cache, metrics *Metrics) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	s := New(pipeline.NewRunner(c, nil, logger), metrics, logger)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, contentType, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, contentType, strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func decodeError(t *testing.T, resp *http.Response) errorBody {
	t.Helper()
	var e errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	return e
}

func TestConvert_ETFBody(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	resp := post(t, ts.URL+"/v1/convert?format=etf-body", "application/json", toggleJSON)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get("X-Machine-Hash"))
	assert.Equal(t, toggleBody, readBody(t, resp))
}

func TestConvert_DefaultsToFullDocument(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	resp := post(t, ts.URL+"/v1/convert", "", toggleJSON)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.True(t, strings.HasPrefix(body, "begin state\nid:id\nend state\nbegin edge\nletter:letter\nend edge\n"))
	assert.True(t, strings.HasSuffix(body, toggleBody))
}

func TestConvert_YAMLBody(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	resp := post(t, ts.URL+"/v1/convert?format=etf-body", "application/yaml", toggleYAML)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, toggleBody, readBody(t, resp))
}

func TestConvert_DOT(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	resp := post(t, ts.URL+"/v1/convert?format=lts-dot", "application/json", toggleJSON)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/vnd.graphviz")
	body := readBody(t, resp)
	assert.Contains(t, body, "digraph")
	assert.Contains(t, body, "style=dashed")
}

func TestConvert_CacheHeader(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	ts := newTestServer(t, fc, nil)

	first := post(t, ts.URL+"/v1/convert?format=etf", "application/json", toggleJSON)
	require.Equal(t, http.StatusOK, first.StatusCode)
	assert.Equal(t, "miss", first.Header.Get("X-Cache"))

	second := post(t, ts.URL+"/v1/convert?format=etf", "application/json", toggleJSON)
	require.Equal(t, http.StatusOK, second.StatusCode)
	assert.Equal(t, "hit", second.Header.Get("X-Cache"))
	assert.Equal(t, first.Header.Get("X-Machine-Hash"), second.Header.Get("X-Machine-Hash"))

	refreshed := post(t, ts.URL+"/v1/convert?format=etf&refresh=true", "application/json", toggleJSON)
	require.Equal(t, http.StatusOK, refreshed.StatusCode)
	assert.Equal(t, "miss", refreshed.Header.Get("X-Cache"))
}

func TestConvert_Errors(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	tests := []struct {
		name        string
		query       string
		contentType string
		body        string
		status      int
		code        string
	}{
		{"unknown format", "?format=png", "application/json", toggleJSON, http.StatusBadRequest, "INVALID_FORMAT"},
		{"unknown content type", "", "application/xml", toggleJSON, http.StatusBadRequest, "INVALID_FORMAT"},
		{"malformed json", "", "application/json", `{"states":`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown field", "", "application/json", `{"states":["a"],"bogus":1}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"no states", "", "application/json", `{"type":"mealy","states":[]}`, http.StatusBadRequest, "INVALID_MACHINE"},
		{"no initial state", "?format=etf", "application/json", `{"states":["a"],"alphabet":["x"]}`, http.StatusBadRequest, "INVALID_MACHINE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/v1/convert"+tt.query, tt.contentType, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
			e := decodeError(t, resp)
			assert.Equal(t, tt.code, string(e.Code))
			assert.NotEmpty(t, e.Message)
		})
	}
}

func TestConvert_BodyTooLarge(t *testing.T) {
	logger := log.New(io.Discard)
	s := New(pipeline.NewRunner(nil, nil, logger), nil, logger)
	s.MaxBodyBytes = 16
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp := post(t, ts.URL+"/v1/convert", "application/json", toggleJSON)

	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "INVALID_INPUT", string(decodeError(t, resp).Code))
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["version"])
}

func TestFormats(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	resp, err := http.Get(ts.URL + "/v1/formats")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, pipeline.ValidFormats, body["formats"])
}

func TestRequestID(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	t.Run("generated", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/healthz")
		require.NoError(t, err)
		defer resp.Body.Close()

		_, err = uuid.Parse(resp.Header.Get(RequestIDHeader))
		assert.NoError(t, err)
	})

	t.Run("propagated", func(t *testing.T) {
		id := uuid.NewString()
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
		require.NoError(t, err)
		req.Header.Set(RequestIDHeader, id)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, id, resp.Header.Get(RequestIDHeader))
	})

	t.Run("invalid replaced", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
		require.NoError(t, err)
		req.Header.Set(RequestIDHeader, "not-a-uuid")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.NotEqual(t, "not-a-uuid", resp.Header.Get(RequestIDHeader))
	})
}

func TestMetricsEndpoint(t *testing.T) {
	defer observability.Reset()

	m := NewMetrics()
	m.Install()
	ts := newTestServer(t, nil, m)

	resp := post(t, ts.URL+"/v1/convert?format=etf", "application/json", toggleJSON)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = post(t, ts.URL+"/v1/convert", "application/json", `{"states":`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	mresp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer mresp.Body.Close()
	require.Equal(t, http.StatusOK, mresp.StatusCode)
	body := readBody(t, mresp)

	assert.Contains(t, body, `mealyetf_machines_loaded_total{result="ok"} 1`)
	assert.Contains(t, body, `mealyetf_machines_loaded_total{result="error"} 1`)
	assert.Contains(t, body, `mealyetf_conversions_total{result="ok"} 1`)
	assert.Contains(t, body, `mealyetf_cache_events_total{event="miss",format="etf"} 1`)
	assert.Contains(t, body, `mealyetf_http_requests_total{method="POST",route="/v1/convert",status="200"} 1`)
	assert.Contains(t, body, `mealyetf_http_requests_total{method="POST",route="/v1/convert",status="400"} 1`)
}

func TestMetricsUnmatchedRoutesShareSeries(t *testing.T) {
	defer observability.Reset()

	m := NewMetrics()
	m.Install()
	ts := newTestServer(t, nil, m)

	for _, path := range []string{"/junk-0", "/junk-1/deeper"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	}

	mresp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer mresp.Body.Close()
	body := readBody(t, mresp)

	assert.Contains(t, body, `mealyetf_http_requests_total{method="GET",route="unmatched",status="404"} 2`)
	assert.NotContains(t, body, "junk")
}

func TestMetricsNotMounted(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

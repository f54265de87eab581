package plassb

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenloop/dumpster-coordination/internal/ledger"
	"github.com/greenloop/dumpster-coordination/internal/model"
)

func newTestServer(t *testing.T, base float64) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer("PLASSB-01", ledger.New(base, ledger.DefaultUnitsPerTon), nil)
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return s, ts
}

func getCapacity(t *testing.T, ts *httptest.Server, date string) model.RemotePlantCapacity {
	t.Helper()
	url := ts.URL + "/api/plants/capacity"
	if date != "" {
		url += "?date=" + date
	}
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body model.RemotePlantCapacity
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func postNotification(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/plants/notify", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestCapacityWithoutDate(t *testing.T) {
	_, ts := newTestServer(t, 85.0)

	body := getCapacity(t, ts, "")
	assert.Equal(t, "PLASSB-01", body.ID)
	assert.Equal(t, 85.0, body.Capacity)
}

func TestCapacityInvalidDateIsRejected(t *testing.T) {
	_, ts := newTestServer(t, 85.0)

	resp, err := http.Get(ts.URL + "/api/plants/capacity?date=05-11-2025")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNotifyDebitsOnlyThatDate(t *testing.T) {
	s, ts := newTestServer(t, 85.0)

	resp := postNotification(t, ts,
		`{"plantId":"PLASSB-01","dumpsterIds":["D-123","D-456"],"totalContainers":5000,"arrivalDate":"2025-11-05"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ack map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ack))
	assert.Contains(t, ack["message"], "2 dumpsters")

	assert.InDelta(t, 80.0, getCapacity(t, ts, "2025-11-05").Capacity, 1e-9)
	assert.Equal(t, 85.0, getCapacity(t, ts, "2025-11-06").Capacity)

	day, _ := time.Parse(model.DateLayout, "2025-11-05")
	assert.Equal(t, 5000, s.Ledger().Reserved(day))
}

func TestNotifyNullArrivalDateUsesToday(t *testing.T) {
	s, ts := newTestServer(t, 85.0)

	resp := postNotification(t, ts,
		`{"plantId":"PLASSB-01","dumpsterIds":["D-123"],"totalContainers":3000,"arrivalDate":null}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, 3000, s.Ledger().Reserved(time.Now()))
}

func TestNotifyInvalidDateIsRejected(t *testing.T) {
	_, ts := newTestServer(t, 85.0)

	resp := postNotification(t, ts,
		`{"plantId":"PLASSB-01","dumpsterIds":["D-123"],"totalContainers":3000,"arrivalDate":"whenever"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNotifyMalformedBodyIsRejected(t *testing.T) {
	_, ts := newTestServer(t, 85.0)

	resp := postNotification(t, ts, `{"plantId":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCapacityNeverNegative(t *testing.T) {
	_, ts := newTestServer(t, 85.0)

	resp := postNotification(t, ts,
		`{"plantId":"PLASSB-01","dumpsterIds":["D-123"],"totalContainers":1000000,"arrivalDate":"2025-11-05"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, 0.0, getCapacity(t, ts, "2025-11-05").Capacity)
}

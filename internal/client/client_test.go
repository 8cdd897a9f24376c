package client

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/quietlotus/hadane/internal/dateutil"
)

// Shared fixtures: a scripted Doer standing in for the record service, a
// frozen clock and JSON builders for the wire payloads. Today is always
// 2024-03-15.

var testClock = func() time.Time {
	return time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
}

type scriptedCall struct {
	status int
	body   string
	err    error
}

type recordedRequest struct {
	method string
	path   string
	query  string
	body   string
}

// scriptedDoer answers requests from a fixed queue and records everything
// it saw. Unscripted requests fail loudly. onRequest, when set, runs after
// recording and before answering, so tests can change view state while a
// fetch is in flight.
type scriptedDoer struct {
	mu        sync.Mutex
	queue     []scriptedCall
	requests  []recordedRequest
	onRequest func(request *http.Request)
}

func (doer *scriptedDoer) enqueue(status int, body string) {
	doer.mu.Lock()
	defer doer.mu.Unlock()
	doer.queue = append(doer.queue, scriptedCall{status: status, body: body})
}

func (doer *scriptedDoer) enqueueError(err error) {
	doer.mu.Lock()
	defer doer.mu.Unlock()
	doer.queue = append(doer.queue, scriptedCall{err: err})
}

func (doer *scriptedDoer) calls() []recordedRequest {
	doer.mu.Lock()
	defer doer.mu.Unlock()
	snapshot := make([]recordedRequest, len(doer.requests))
	copy(snapshot, doer.requests)
	return snapshot
}

func (doer *scriptedDoer) Do(request *http.Request) (*http.Response, error) {
	doer.mu.Lock()
	call := scriptedCall{status: http.StatusInternalServerError, body: `{"detail":"unscripted request"}`}
	if len(doer.queue) > 0 {
		call = doer.queue[0]
		doer.queue = doer.queue[1:]
	}
	var body string
	if request.Body != nil {
		data, _ := io.ReadAll(request.Body)
		body = string(data)
	}
	doer.requests = append(doer.requests, recordedRequest{
		method: request.Method,
		path:   request.URL.Path,
		query:  request.URL.RawQuery,
		body:   body,
	})
	hook := doer.onRequest
	doer.mu.Unlock()

	if hook != nil {
		hook(request)
	}
	if call.err != nil {
		return nil, call.err
	}
	return &http.Response{
		StatusCode: call.status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(call.body)),
	}, nil
}

func newTestClient(doer Doer) *Client {
	return New("http://record-service.test", "opaque-token",
		WithDoer(doer),
		WithLocation(time.UTC),
		WithClock(testClock))
}

func mustDay(t *testing.T, value string) time.Time {
	t.Helper()
	day, err := dateutil.ParseDay(value, time.UTC)
	if err != nil {
		t.Fatalf("bad day %q: %v", value, err)
	}
	return day
}

func openCycleJSON(id, start string) string {
	return fmt.Sprintf(`{"cycle_id":%q,"start_date":%q,"end_date":null}`, id, start)
}

func closedCycleJSON(id, start, end string) string {
	return fmt.Sprintf(`{"cycle_id":%q,"start_date":%q,"end_date":%q}`, id, start, end)
}

func cycleListJSON(cycles ...string) string {
	return `{"cycles":[` + strings.Join(cycles, ",") + `],"total":` + strconv.Itoa(len(cycles)) + `}`
}

func recordJSON(id, date string, sleep int) string {
	return fmt.Sprintf(`{"record_id":%q,"date":%q,"skin_condition":4,"sleep":%d,"stress":2,"skincare_effort":3,"menstruation_status":false,"water_intake":null,"memo":"slept well","env_pref_code":"13"}`, id, date, sleep)
}

func recordListJSON(records ...string) string {
	return `{"records":[` + strings.Join(records, ",") + `],"total":` + strconv.Itoa(len(records)) + `}`
}

func detailJSON(detail string) string {
	return fmt.Sprintf(`{"detail":%q}`, detail)
}

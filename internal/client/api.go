package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/quietlotus/hadane/internal/dateutil"
	"github.com/quietlotus/hadane/internal/models"
)

// Service-side list limits, from the record/cycle contract.
const (
	maxCycleListLimit  = 50
	maxRecordListLimit = 100
)

// Doer issues one HTTP request. Tests satisfy it with an in-process Fiber
// app; production uses *http.Client. Timeouts belong to the Doer, not to
// this core.
type Doer interface {
	Do(request *http.Request) (*http.Response, error)
}

// Client speaks the record/cycle service contract. It owns no state beyond
// connection details; the stores cache its results.
type Client struct {
	baseURL  string
	token    string
	doer     Doer
	location *time.Location
	now      func() time.Time
}

type Option func(*Client)

func WithDoer(doer Doer) Option {
	return func(client *Client) { client.doer = doer }
}

func WithLocation(location *time.Location) Option {
	return func(client *Client) { client.location = location }
}

func WithClock(now func() time.Time) Option {
	return func(client *Client) { client.now = now }
}

func New(baseURL, token string, options ...Option) *Client {
	client := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		doer:     &http.Client{},
		location: time.Local,
		now:      time.Now,
	}
	for _, option := range options {
		option(client)
	}
	return client
}

func (client *Client) Location() *time.Location {
	return client.location
}

func (client *Client) ListCycles(ctx context.Context, limit int) ([]models.CycleLog, error) {
	if limit <= 0 || limit > maxCycleListLimit {
		limit = maxCycleListLimit
	}
	query := url.Values{"limit": {strconv.Itoa(limit)}}

	payload := cycleListDTO{}
	if err := client.call(ctx, http.MethodGet, "/cycles", query, nil, &payload); err != nil {
		return nil, err
	}

	cycles := make([]models.CycleLog, 0, len(payload.Cycles))
	for _, dto := range payload.Cycles {
		cycle, err := cycleFromDTO(dto, client.location)
		if err != nil {
			return nil, &FetchError{Op: "GET /cycles", Err: err}
		}
		cycles = append(cycles, cycle)
	}
	return cycles, nil
}

func (client *Client) CreateCycle(ctx context.Context, startDate time.Time) (models.CycleLog, error) {
	body := cycleCreateDTO{StartDate: dateutil.FormatDay(startDate)}
	payload := cycleDTO{}
	if err := client.call(ctx, http.MethodPost, "/cycles", nil, body, &payload); err != nil {
		return models.CycleLog{}, err
	}
	cycle, err := cycleFromDTO(payload, client.location)
	if err != nil {
		return models.CycleLog{}, &FetchError{Op: "POST /cycles", Err: err}
	}
	return cycle, nil
}

// CloseCycle ends the currently open cycle without needing its id.
func (client *Client) CloseCycle(ctx context.Context, endDate time.Time) (models.CycleLog, error) {
	body := cycleEndDTO{EndDate: dateutil.FormatDay(endDate)}
	payload := cycleDTO{}
	if err := client.call(ctx, http.MethodPatch, "/cycles/end", nil, body, &payload); err != nil {
		return models.CycleLog{}, err
	}
	cycle, err := cycleFromDTO(payload, client.location)
	if err != nil {
		return models.CycleLog{}, &FetchError{Op: "PATCH /cycles/end", Err: err}
	}
	return cycle, nil
}

func (client *Client) UpdateCycle(ctx context.Context, cycleID string, startDate, endDate *time.Time) (models.CycleLog, error) {
	body := cycleUpdateDTO{}
	if startDate != nil {
		formatted := dateutil.FormatDay(*startDate)
		body.StartDate = &formatted
	}
	if endDate != nil {
		formatted := dateutil.FormatDay(*endDate)
		body.EndDate = &formatted
	}

	path := "/cycles/" + url.PathEscape(cycleID)
	payload := cycleDTO{}
	if err := client.call(ctx, http.MethodPatch, path, nil, body, &payload); err != nil {
		return models.CycleLog{}, err
	}
	cycle, err := cycleFromDTO(payload, client.location)
	if err != nil {
		return models.CycleLog{}, &FetchError{Op: "PATCH " + path, Err: err}
	}
	return cycle, nil
}

// ListRecords fetches the inclusive date range. The limit is sized to the
// range so a full month never truncates to the service default.
func (client *Client) ListRecords(ctx context.Context, startDate, endDate time.Time) ([]Record, error) {
	limit := dateutil.DaysBetween(startDate, endDate) + 1
	if limit <= 0 || limit > maxRecordListLimit {
		limit = maxRecordListLimit
	}
	query := url.Values{
		"start_date": {dateutil.FormatDay(startDate)},
		"end_date":   {dateutil.FormatDay(endDate)},
		"limit":      {strconv.Itoa(limit)},
	}

	payload := recordListDTO{}
	if err := client.call(ctx, http.MethodGet, "/records", query, nil, &payload); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(payload.Records))
	for _, dto := range payload.Records {
		record, err := recordFromDTO(dto, client.location)
		if err != nil {
			return nil, &FetchError{Op: "GET /records", Err: err}
		}
		records = append(records, record)
	}
	return records, nil
}

// GetRecord returns (nil, nil) when no record exists for the day.
func (client *Client) GetRecord(ctx context.Context, day time.Time) (*Record, error) {
	path := "/records/" + dateutil.FormatDay(day)
	payload := recordDTO{}
	err := client.call(ctx, http.MethodGet, path, nil, nil, &payload)
	if err != nil {
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) && fetchErr.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	record, err := recordFromDTO(payload, client.location)
	if err != nil {
		return nil, &FetchError{Op: "GET " + path, Err: err}
	}
	return &record, nil
}

func (client *Client) CreateRecord(ctx context.Context, input RecordInput) (*Record, error) {
	body := recordCreateDTO{
		Date:               dateutil.FormatDay(input.Date),
		SkinCondition:      input.SkinCondition,
		Sleep:              input.Sleep,
		Stress:             input.Stress,
		SkincareEffort:     input.SkincareEffort,
		MenstruationStatus: input.MenstruationStatus,
		WaterIntake:        input.WaterIntake,
		EnvPrefCode:        input.EnvPrefCode,
	}
	if input.Memo != "" {
		memo := input.Memo
		body.Memo = &memo
	}

	payload := recordDTO{}
	if err := client.call(ctx, http.MethodPost, "/records", nil, body, &payload); err != nil {
		return nil, err
	}
	record, err := recordFromDTO(payload, client.location)
	if err != nil {
		return nil, &FetchError{Op: "POST /records", Err: err}
	}
	return &record, nil
}

func (client *Client) UpdateRecord(ctx context.Context, day time.Time, input RecordInput) (*Record, error) {
	memo := input.Memo
	body := recordPatchDTO{
		SkinCondition:      &input.SkinCondition,
		Sleep:              &input.Sleep,
		Stress:             &input.Stress,
		SkincareEffort:     &input.SkincareEffort,
		MenstruationStatus: &input.MenstruationStatus,
		WaterIntake:        input.WaterIntake,
		Memo:               &memo,
	}
	if input.EnvPrefCode != "" {
		code := input.EnvPrefCode
		body.EnvPrefCode = &code
	}

	path := "/records/" + dateutil.FormatDay(day)
	payload := recordDTO{}
	if err := client.call(ctx, http.MethodPatch, path, nil, body, &payload); err != nil {
		return nil, err
	}
	record, err := recordFromDTO(payload, client.location)
	if err != nil {
		return nil, &FetchError{Op: "PATCH " + path, Err: err}
	}
	return &record, nil
}

func (client *Client) DeleteRecord(ctx context.Context, day time.Time) error {
	path := "/records/" + dateutil.FormatDay(day)
	return client.call(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (client *Client) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	op := method + " " + path

	if err := client.checkToken(); err != nil {
		return &FetchError{Op: op, Err: err}
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return &FetchError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(encoded)
	}

	endpoint := client.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	request, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if client.token != "" {
		request.Header.Set("Authorization", "Bearer "+client.token)
	}

	response, err := client.doer.Do(request)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	defer response.Body.Close()

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		if out == nil {
			_, _ = io.Copy(io.Discard, response.Body)
			return nil
		}
		if err := json.NewDecoder(response.Body).Decode(out); err != nil {
			return &FetchError{Op: op, Status: response.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		}
		return nil
	}

	detail := decodeErrorDetail(response.Body)
	switch response.StatusCode {
	case http.StatusBadRequest, http.StatusConflict:
		// The service answers 400 for the open-cycle race and 409 for
		// duplicates; both are rejections of a well-formed request.
		return &ConflictError{Detail: detail}
	default:
		return &FetchError{Op: op, Status: response.StatusCode, Err: errors.New(detail)}
	}
}

func decodeErrorDetail(body io.Reader) string {
	payload := errorDTO{}
	if err := json.NewDecoder(body).Decode(&payload); err != nil || payload.Detail == "" {
		return "request failed"
	}
	return payload.Detail
}

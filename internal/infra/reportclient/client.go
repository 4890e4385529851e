// internal/infra/reportclient/client.go
package reportclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"

	"attendance_dashboard/internal/domain/attendance"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

const maxBodyBytes = 1 << 20

// ErrUnexpectedStatus is wrapped for any non-2xx response.
var ErrUnexpectedStatus = errors.New("unexpected status from report service")

// Client calls the external report service.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *logrus.Entry
}

// NewClient builds a client for the report endpoint at url. A nil httpClient
// uses http.DefaultClient; deadlines come from the request context.
func NewClient(url string, httpClient *http.Client, logger *logrus.Entry) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		url:        url,
		httpClient: httpClient,
		logger:     logger.WithField("component", "report_client"),
	}
}

type reportRequest struct {
	Query string `json:"query"`
}

// reportPayload is the response schema. Pointer fields distinguish missing
// values, which are coerced to zero.
type reportPayload struct {
	Name    *string  `json:"name"`
	Present *float64 `json:"present"`
	Absent  *float64 `json:"absent"`
	Late    *float64 `json:"late"`
}

// FetchReport posts q to the report service. found is false when the service
// returned no record (204, empty body, null, {}, or an empty array).
func (c *Client) FetchReport(ctx context.Context, q string) (attendance.Record, bool, error) {
	body, err := json.Marshal(reportRequest{Query: q})
	if err != nil {
		return attendance.Record{}, false, fmt.Errorf("failed to encode report request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return attendance.Record{}, false, fmt.Errorf("failed to build report request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	logCtx := c.logger.WithFields(logrus.Fields{"request_id": requestID, "query": q})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logCtx.WithError(err).Warn("Report request failed")
		return attendance.Record{}, false, fmt.Errorf("report request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logCtx.WithField("status", resp.StatusCode).Warn("Report service returned non-success status")
		return attendance.Record{}, false, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return attendance.Record{}, false, fmt.Errorf("failed to read report response: %w", err)
	}

	rec, found, err := decodeReport(raw)
	if err != nil {
		logCtx.WithError(err).Warn("Report response did not match schema")
		return attendance.Record{}, false, err
	}
	logCtx.WithField("found", found).Debug("Report response decoded")
	return rec, found, nil
}

// decodeReport parses an object or an array of objects (first element wins).
func decodeReport(raw []byte) (attendance.Record, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return attendance.Record{}, false, nil
	}

	var p reportPayload
	if trimmed[0] == '[' {
		var list []*reportPayload
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return attendance.Record{}, false, fmt.Errorf("failed to decode report list: %w", err)
		}
		if len(list) == 0 || list[0] == nil {
			return attendance.Record{}, false, nil
		}
		p = *list[0]
	} else if err := json.Unmarshal(trimmed, &p); err != nil {
		return attendance.Record{}, false, fmt.Errorf("failed to decode report: %w", err)
	}

	if p.empty() {
		// {} carries no report, same as null.
		return attendance.Record{}, false, nil
	}
	return p.record(), true, nil
}

func (p reportPayload) empty() bool {
	return p.Name == nil && p.Present == nil && p.Absent == nil && p.Late == nil
}

func (p reportPayload) record() attendance.Record {
	var name string
	if p.Name != nil {
		name = *p.Name
	}
	return attendance.Record{
		Name:    name,
		Present: count(p.Present),
		Absent:  count(p.Absent),
		Late:    count(p.Late),
	}
}

// count coerces a missing, negative, or non-finite number to zero and clamps
// values beyond the int range.
func count(v *float64) int {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
		return 0
	}
	if *v >= float64(math.MaxInt) {
		return math.MaxInt
	}
	return int(*v)
}

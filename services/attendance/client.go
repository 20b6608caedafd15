package attendance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rhazelina/qr-absence-sub000/core"
	"github.com/rhazelina/qr-absence-sub000/core/checkin"
)

const scanPath = "/attendance/scan"

type scanRequest struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

type errorBody struct {
	Message string `json:"message"`
}

// Client submits check-in tokens to the attendance service.
type Client struct {
	baseURL  string
	apiToken string
	http     *http.Client
}

var _ checkin.Submitter = (*Client)(nil) // interface compliance check

func NewClient(conf core.AttendanceConfig) *Client {
	return &Client{
		baseURL:  strings.TrimRight(conf.BaseURL, "/"),
		apiToken: conf.APIToken,
		http: &http.Client{
			Timeout:   conf.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Submit makes one attempt; failures of any kind come back as an Outcome.
func (c *Client) Submit(ctx context.Context, token checkin.Token, role checkin.Role) checkin.Outcome {
	body, err := json.Marshal(scanRequest{Token: string(token), Role: role.String()})
	if err != nil {
		return checkin.TransportFailure(err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+scanPath, bytes.NewReader(body))
	if err != nil {
		return checkin.TransportFailure(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return checkin.TransportFailure(err.Error())
	}
	defer func() { _ = res.Body.Close() }()

	out := outcomeOf(res)
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("checkin.role", role.String()),
		attribute.String("checkin.outcome", out.String()),
	)
	return out
}

func outcomeOf(res *http.Response) checkin.Outcome {
	switch code := res.StatusCode; {
	case code >= 200 && code < 300:
		return checkin.Accept()
	case code == http.StatusForbidden:
		return checkin.Reject(checkin.Forbidden)
	case code == http.StatusConflict:
		return checkin.Reject(checkin.AlreadyRecorded)
	case code == http.StatusUnprocessableEntity:
		return checkin.Reject(checkin.Expired)
	default:
		return checkin.TransportFailure(remoteMessage(res))
	}
}

// remoteMessage is the service's own error message when it sent one, the HTTP status otherwise.
func remoteMessage(res *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		return fmt.Sprintf("%s: %s", res.Status, body.Message)
	}
	return res.Status
}

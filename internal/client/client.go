package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dormhub/dormdash/pkg/model"
	"github.com/dormhub/dormdash/pkg/request"
)

// TransportError wraps any failure talking to the coordination server.
// Callers render an empty list and surface the error to the user.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}

	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type Client struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
}

func New(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		logger:  logger.With(slog.String("logger", "api_client")),
		client:  &http.Client{Timeout: time.Second * 10},
		baseURL: baseURL,
	}
}

func fetchList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	body, err := request.New(c.client, c.logger).URL(c.baseURL + path).Do(ctx)
	if err != nil {
		return []T{}, &TransportError{Op: "GET " + path, Err: err}
	}

	res, err := request.DecodeJSON[[]T](body)
	if err != nil {
		return []T{}, &TransportError{Op: "GET " + path, Err: err}
	}

	return res, nil
}

func (c *Client) FetchRooms(ctx context.Context) ([]*model.Room, error) {
	return fetchList[*model.Room](ctx, c, "/api/room")
}

func (c *Client) FetchInvites(ctx context.Context) ([]*model.WebInvite, error) {
	return fetchList[*model.WebInvite](ctx, c, "/api/invite")
}

func (c *Client) FetchWorkOrders(ctx context.Context) ([]*model.WebWorkOrder, error) {
	return fetchList[*model.WebWorkOrder](ctx, c, "/api/workorder")
}

func (c *Client) submit(ctx context.Context, req *request.Request, op string) error {
	res, err := req.DoRes(ctx)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return &TransportError{Op: op, Status: res.StatusCode}
	}

	return nil
}

func (c *Client) SubmitInviteResponse(ctx context.Context, id string, decision model.InviteStatus) error {
	b, err := json.Marshal(map[string]string{"decision": string(decision)})
	if err != nil {
		return err
	}

	path := "/api/invite/" + id + "/respond"
	req := request.New(c.client, c.logger).
		URL(c.baseURL + path).
		Post().
		Headers(map[string]string{"Content-Type": "application/json"}).
		Body(bytes.NewReader(b))

	return c.submit(ctx, req, "POST "+path)
}

func (c *Client) SubmitWorkOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	b, err := json.Marshal(map[string]string{"status": string(status)})
	if err != nil {
		return err
	}

	path := "/api/workorder/" + id + "/status"
	req := request.New(c.client, c.logger).
		URL(c.baseURL + path).
		Put().
		Headers(map[string]string{"Content-Type": "application/json"}).
		Body(bytes.NewReader(b))

	return c.submit(ctx, req, "PUT "+path)
}

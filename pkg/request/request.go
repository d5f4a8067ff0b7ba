package request

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

type Request struct {
	client  *http.Client
	url     string
	method  string
	body    io.Reader
	headers map[string]string
	args    map[string]string
	logger  *slog.Logger
}

func New(c *http.Client, logger *slog.Logger) *Request {
	return &Request{client: c, method: http.MethodGet, logger: logger}
}

func (r *Request) URL(url string) *Request {
	r.url = url

	return r
}

func (r *Request) Post() *Request {
	r.method = http.MethodPost

	return r
}

func (r *Request) Put() *Request {
	r.method = http.MethodPut

	return r
}

func (r *Request) Headers(headers map[string]string) *Request {
	r.headers = headers

	return r
}

func (r *Request) Args(args map[string]string) *Request {
	r.args = args

	return r
}

func (r *Request) Body(body io.Reader) *Request {
	r.body = body

	return r
}

func (r *Request) DoRes(ctx context.Context) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, r.method, r.url, r.body)
	if err != nil {
		return nil, err
	}

	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	if len(r.args) > 0 {
		q := url.Values{}
		for k, v := range r.args {
			q.Add(k, v)
		}

		req.URL.RawQuery = q.Encode()
	}

	if r.logger != nil {
		r.logger.Debug(fmt.Sprintf("%s %s", r.method, req.URL.String()))
	}

	return r.client.Do(req)
}

func (r *Request) Do(ctx context.Context) (io.ReadCloser, error) {
	res, err := r.DoRes(ctx)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		if res.Body != nil {
			_ = res.Body.Close()
		}

		return nil, fmt.Errorf("status is %s", res.Status)
	}

	return res.Body, nil
}

func DecodeJSON[T any](body io.ReadCloser) (T, error) {
	var res T

	defer body.Close()

	err := json.NewDecoder(body).Decode(&res)

	return res, err
}

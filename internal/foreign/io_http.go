package foreign

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"tails/internal/ast"
	"tails/internal/evaluator"
	"tails/internal/object"
	"time"
)

var supportedMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodDelete:  true,
	http.MethodPatch:   true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// httpRequest is a request assembled from a method, a URL and an options
// object.
type httpRequest struct {
	method  string
	url     string
	headers map[string]string
	body    []byte
	timeout time.Duration
}

// fnHttpMethod builds `get url [options]` and its siblings.
func (r *Registry) fnHttpMethod(method string) evaluator.Builtin {
	name := strings.ToLower(method)
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("%s requires at least a URL argument", name)
		}
		if err := checkArity(name, len(args), 1, 2, "url, optional options"); err != nil {
			return nil, err
		}
		values, err := ev.EvalArguments(args)
		if err != nil {
			return nil, err
		}
		u, ok := values[0].(*object.String)
		if !ok {
			return nil, fmt.Errorf("%s URL must be a string", name)
		}
		opts, err := optionsArg(name, values, 1)
		if err != nil {
			return nil, err
		}
		return r.doRequest(method, u.Value, opts)
	}
}

// fnHttpRequest is the generic form: `http "HEAD" url [options]`.
func (r *Registry) fnHttpRequest() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("http requires method and URL arguments")
		}
		if err := checkArity("http", len(args), 2, 3, "method, url, optional options"); err != nil {
			return nil, err
		}
		values, err := ev.EvalArguments(args)
		if err != nil {
			return nil, err
		}
		method, ok := values[0].(*object.String)
		if !ok {
			return nil, fmt.Errorf("http method must be a string")
		}
		u, ok := values[1].(*object.String)
		if !ok {
			return nil, fmt.Errorf("http URL must be a string")
		}
		opts, err := optionsArg("http", values, 2)
		if err != nil {
			return nil, err
		}
		return r.doRequest(strings.ToUpper(method.Value), u.Value, opts)
	}
}

func (r *Registry) doRequest(method, rawURL string, opts *object.Map) (object.Object, error) {
	if !supportedMethods[method] {
		return nil, evaluator.Raise(&object.Error{
			Message: fmt.Sprintf("Unsupported HTTP method: %s", method),
			Code:    "unsupported_method",
			Source:  rawURL,
		})
	}
	req, err := r.buildRequest(method, rawURL, opts)
	if err != nil {
		return nil, err
	}
	return r.execute(req)
}

// buildRequest applies the options object: headers, body, timeout (ms),
// query, bearer_token and basic_auth.
func (r *Registry) buildRequest(method, rawURL string, opts *object.Map) (*httpRequest, error) {
	req := &httpRequest{
		method:  method,
		url:     rawURL,
		headers: map[string]string{},
		timeout: r.config.HTTPTimeout,
	}

	if v, ok := opts.Get("headers"); ok {
		headers, ok := v.(*object.Map)
		if !ok {
			return nil, fmt.Errorf("headers option must be an object")
		}
		for _, k := range headers.Keys() {
			hv, _ := headers.Get(k)
			s, ok := hv.(*object.String)
			if !ok {
				return nil, fmt.Errorf("Header '%s' must be a string", k)
			}
			req.headers[strings.ToLower(k)] = s.Value
		}
	}

	if v, ok := opts.Get("body"); ok {
		if s, ok := v.(*object.String); ok {
			req.body = []byte(s.Value)
		} else {
			var buf bytes.Buffer
			if err := writeJSON(&buf, v); err != nil {
				return nil, fmt.Errorf("Failed to serialize to JSON: %w", err)
			}
			req.body = buf.Bytes()
			req.headers["content-type"] = "application/json"
		}
	}

	if v, ok := opts.Get("timeout"); ok {
		n, ok := v.(*object.Number)
		if !ok || n.Value <= 0 {
			return nil, fmt.Errorf("timeout option must be a positive number of milliseconds")
		}
		req.timeout = time.Duration(n.Value * float64(time.Millisecond))
	}

	if v, ok := opts.Get("bearer_token"); ok {
		if s, ok := v.(*object.String); ok {
			req.headers["authorization"] = "Bearer " + s.Value
		}
	}

	if v, ok := opts.Get("basic_auth"); ok {
		if auth, ok := v.(*object.Map); ok {
			user, uok := auth.Get("username")
			pass, pok := auth.Get("password")
			us, usok := user.(*object.String)
			ps, psok := pass.(*object.String)
			if uok && pok && usok && psok {
				credentials := base64.StdEncoding.EncodeToString([]byte(us.Value + ":" + ps.Value))
				req.headers["authorization"] = "Basic " + credentials
			}
		}
	}

	if v, ok := opts.Get("query"); ok {
		query, ok := v.(*object.Map)
		if !ok {
			return nil, fmt.Errorf("query option must be an object")
		}
		u, err := withQuery(rawURL, query)
		if err != nil {
			return nil, err
		}
		req.url = u
	}
	return req, nil
}

func withQuery(rawURL string, query *object.Map) (string, error) {
	if query.Len() == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL '%s': %w", rawURL, err)
	}
	q := u.Query()
	for _, k := range query.Keys() {
		v, _ := query.Get(k)
		if s, ok := v.(*object.String); ok {
			q.Add(k, s.Value)
		} else {
			q.Add(k, v.Inspect())
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (r *Registry) execute(req *httpRequest) (object.Object, error) {
	ctx, cancel := context.WithTimeout(context.Background(), req.timeout)
	defer cancel()

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, body)
	if err != nil {
		return nil, evaluator.Raise(&object.Error{
			Message: err.Error(),
			Code:    "network_error",
			Source:  req.url,
			Context: object.NewMap().Put("error_details", str(err.Error())),
		})
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := r.client.Do(httpReq)
	elapsed := float64(time.Since(start).Milliseconds())
	if err != nil {
		slog.Debug("http request failed",
			slog.String("method", req.method),
			slog.String("url", req.url),
			slog.Any("error", err),
		)
		return nil, evaluator.Raise(&object.Error{
			Message: err.Error(),
			Code:    networkErrorCode(err),
			Source:  req.url,
			Context: object.NewMap().
				Put("response_time_ms", number(elapsed)).
				Put("timeout_ms", number(float64(req.timeout.Milliseconds()))).
				Put("error_details", str(err.Error())),
		})
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, evaluator.Raise(&object.Error{
			Message: fmt.Sprintf("Failed to read response body: %v", err),
			Code:    "body_read_error",
			Source:  req.url,
			Context: object.NewMap().Put("response_time_ms", number(elapsed)),
		})
	}
	elapsed = float64(time.Since(start).Milliseconds())
	slog.Debug("http request",
		slog.String("method", req.method),
		slog.String("url", req.url),
		slog.Int("status", resp.StatusCode),
		slog.Float64("response_time_ms", elapsed),
	)

	statusText := http.StatusText(resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, evaluator.Raise(&object.Error{
			Message: fmt.Sprintf("HTTP %d %s", resp.StatusCode, statusText),
			Code:    fmt.Sprint(resp.StatusCode),
			Source:  req.url,
			Context: object.NewMap().
				Put("response_time_ms", number(elapsed)).
				Put("timeout_ms", number(float64(req.timeout.Milliseconds()))).
				Put("status", number(float64(resp.StatusCode))).
				Put("status_text", str(statusText)).
				Put("response_body", str(string(data))),
		})
	}

	headers := object.NewMap()
	for k, v := range resp.Header {
		headers.Put(strings.ToLower(k), str(strings.Join(v, ", ")))
	}
	text := string(data)
	var parsed object.Object = str(text)
	if v, err := parseJSON(text); err == nil {
		parsed = v
	}
	ok := boolean(true)
	return object.NewMap().
		Put("status", number(float64(resp.StatusCode))).
		Put("status_text", str(statusText)).
		Put("url", str(req.url)).
		Put("response_time_ms", number(elapsed)).
		Put("headers", headers).
		Put("body", parsed).
		Put("body_text", str(text)).
		Put("ok", ok).
		Put("success", ok), nil
}

func networkErrorCode(err error) string {
	var dnsErr *net.DNSError
	var opErr *net.OpError
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.As(err, &dnsErr):
		return "dns_error"
	case errors.As(err, &opErr) && opErr.Op == "dial":
		return "connection_failed"
	}
	return "network_error"
}

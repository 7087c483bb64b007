package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

const maxErrorBody = 64 << 10

type requester struct {
	baseURL    string
	httpClient *http.Client
}

func newRequester(baseURL string, httpClient *http.Client) requester {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return requester{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// do sends a JSON request and decodes a JSON response into out (when non-nil).
// Bodies are bytes.Readers so http.NewRequest sets GetBody and the request can be replayed.
func (r requester) do(ctx context.Context, method, path string, in, out any, header http.Header) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrapf(err, "[api.do] encode %s %s", method, path)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return errors.Wrapf(err, "[api.do] build %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "[api.do] %s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "[api.do] decode %s %s", method, path)
	}
	return nil
}

func statusError(resp *http.Response) *StatusError {
	se := &StatusError{StatusCode: resp.StatusCode}
	var payload struct {
		Message string `json:"message"`
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if json.Unmarshal(b, &payload) == nil {
		se.Message = payload.Message
	}
	return se
}

func bearer(tok string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+tok)
	return h
}

package transport

import (
	"context"
	"io"
	"net/http"
)

const drainLimit = 1 << 16

// TokenSource supplies the access token to attach and the rotation to run
// after a rejection. *authsess.Controller satisfies it.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
}

// Transport defines a public type used by authsess APIs.
//
// Transport instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Transport struct {
	source TokenSource
	base   http.RoundTripper
}

// New wraps base with Bearer injection from source. A nil base falls back to
// http.DefaultTransport.
func New(source TokenSource, base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{
		source: source,
		base:   base,
	}
}

// Client returns an http.Client using this transport.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}

// RoundTrip sends req with the current access token attached. Requests
// without a stored session pass through untouched. A 401 triggers one
// rotation and one retry when the body is replayable.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	access, err := t.source.AccessToken(req.Context())
	if err != nil {
		return t.base.RoundTrip(req)
	}

	authed := req.Clone(req.Context())
	authed.Header.Set("Authorization", "Bearer "+access)

	resp, err := t.base.RoundTrip(authed)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	fresh, err := t.source.RefreshToken(req.Context())
	if err != nil {
		return resp, nil
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))
	_ = resp.Body.Close()

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}
	retry.Header.Set("Authorization", "Bearer "+fresh)

	return t.base.RoundTrip(retry)
}

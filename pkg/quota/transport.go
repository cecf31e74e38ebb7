package quota

import (
	"context"
	"errors"

	"github.com/milind-kulkarni-velotio/airbyte/pkg/stream"
)

// ErrQuotaExceeded is returned when the shared budget is critically low and
// the request was not sent.
var ErrQuotaExceeded = errors.New("request blocked: api quota critical")

// Transport decorates a stream.Transport with quota gating: before each
// send the shared budget is consulted, after each response the quota
// headers are folded back into Redis.
type Transport struct {
	next    stream.Transport
	tracker *Tracker
}

// NewTransport wraps next with quota gating through tracker.
func NewTransport(next stream.Transport, tracker *Tracker) *Transport {
	return &Transport{next: next, tracker: tracker}
}

// Send implements stream.Transport.
func (t *Transport) Send(ctx context.Context, req *stream.Request) (*stream.Response, error) {
	allowed, err := t.tracker.ShouldAllowRequest(ctx)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrQuotaExceeded
	}

	resp, err := t.next.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := t.tracker.UpdateFromHeaders(ctx, resp.Header); err != nil {
		t.tracker.logger.Warn().Err(err).Msg("Failed to update quota from headers")
	}

	return resp, nil
}

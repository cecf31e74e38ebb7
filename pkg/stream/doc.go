// Package stream implements the request/paginate/retry/parse loop that
// extracts record sequences from a paginated HTTP API.
//
// A connector implements the Source interface (at minimum Name, URLBase,
// Path and ParseResponse; the rest is defaulted by embedding BaseSource).
// A Reader drives the pagination loop against that source:
//
//	src := &OrdersSource{}
//	reader := stream.NewReader(src, stream.ReaderConfig{})
//	it := reader.Read(ctx, state, nil)
//	for it.Next() {
//	    record := it.Record()
//	    // ...
//	}
//	if err := it.Err(); err != nil {
//	    return err
//	}
//
// For every page the reader:
//   - composes the request from the current page token (path, query params,
//     headers, body - every hook sees the same token/slice/state triple)
//   - sends it through the Transport, retrying retryable statuses with
//     backoff until the retry budget is exhausted
//   - decodes the full page via ParseResponse before yielding any record
//   - asks NextPageToken for the next cursor; a nil token ends the run
//
// The record sequence is pull-based: abandoning the iterator stops the run
// and no further requests are issued. The reader imposes no bound on the
// number of pages; a source whose NextPageToken never returns nil will
// paginate indefinitely.
//
// Failures surface as typed errors: ConflictingBodyError (both body sources
// populated), TransportError (network-level failure, never retried),
// BackoffExhaustedError (retry budget spent on a retryable status) and
// DecodeError (unparseable page). All of them abort the run; records
// already yielded remain valid.
package stream

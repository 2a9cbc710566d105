package ctxutil

import "context"

type traceKey struct{}

// Trace ties a gateway request to its span and to the caller's request id.
type Trace struct {
	TraceID   string
	SpanID    string
	RequestID string
}

func WithTrace(ctx context.Context, tr Trace) context.Context {
	return context.WithValue(ctx, traceKey{}, tr)
}

func TraceFrom(ctx context.Context) (Trace, bool) {
	tr, ok := ctx.Value(traceKey{}).(Trace)
	return tr, ok
}

// LogFields returns the non-empty ids as logger key/value pairs.
func (tr Trace) LogFields() []any {
	var out []any
	if tr.TraceID != "" {
		out = append(out, "trace_id", tr.TraceID)
	}
	if tr.SpanID != "" {
		out = append(out, "span_id", tr.SpanID)
	}
	if tr.RequestID != "" {
		out = append(out, "request_id", tr.RequestID)
	}
	return out
}

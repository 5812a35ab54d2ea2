package observability

import (
	"context"
	"net/http"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Tracer provides X-Ray tracing. A nil or disabled Tracer runs functions
// untraced.
type Tracer struct {
	serviceName string
	enabled     bool
}

// NewTracer creates a new tracer instance
func NewTracer(serviceName string, enabled bool) *Tracer {
	return &Tracer{
		serviceName: serviceName,
		enabled:     enabled,
	}
}

func (t *Tracer) active() bool {
	return t != nil && t.enabled
}

// Trace wraps fn in a subsegment of the segment carried by ctx. Without
// a parent segment fn runs untraced.
func (t *Tracer) Trace(ctx context.Context, name string, fn func(context.Context) error) error {
	if !t.active() {
		return fn(ctx)
	}
	subCtx, seg := xray.BeginSubsegment(ctx, name)
	if seg == nil {
		return fn(ctx)
	}

	err := fn(subCtx)
	seg.Close(err)
	return err
}

// Annotate adds an indexed annotation to the current segment
func (t *Tracer) Annotate(ctx context.Context, key, value string) {
	if !t.active() {
		return
	}
	if seg := xray.GetSegment(ctx); seg != nil {
		_ = seg.AddAnnotation(key, value)
	}
}

// Middleware opens one segment per HTTP request.
func (t *Tracer) Middleware(next http.Handler) http.Handler {
	if !t.active() {
		return next
	}
	return xray.Handler(xray.NewFixedSegmentNamer(t.serviceName), next)
}

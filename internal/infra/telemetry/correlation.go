package telemetry

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// JobIDHeader carries the correlation identifier on admin API requests.
const JobIDHeader = "x-job-id"

type jobContextKey struct{}

// JobMeta is the correlation identity of one piece of work: the job id the
// tool contract requires plus the active trace/span when a tracer is
// installed.
type JobMeta struct {
	JobID   string
	TraceID string
	SpanID  string
}

func (m JobMeta) IsZero() bool {
	return m.JobID == "" && m.TraceID == "" && m.SpanID == ""
}

func WithJobMeta(ctx context.Context, meta JobMeta) context.Context {
	if meta.IsZero() {
		return ctx
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, jobContextKey{}, meta)
}

func JobMetaFromContext(ctx context.Context) (JobMeta, bool) {
	if ctx == nil {
		return JobMeta{}, false
	}
	meta, ok := ctx.Value(jobContextKey{}).(JobMeta)
	return meta, ok && !meta.IsZero()
}

func JobIDFromContext(ctx context.Context) (string, bool) {
	meta, ok := JobMetaFromContext(ctx)
	if !ok || meta.JobID == "" {
		return "", false
	}
	return meta.JobID, true
}

func NewJobID() string {
	return uuid.NewString()
}

func traceSpanFromContext(ctx context.Context) (string, string) {
	if ctx == nil {
		return "", ""
	}
	spanCtx := trace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return "", ""
	}
	return spanCtx.TraceID().String(), spanCtx.SpanID().String()
}

// EnsureJobMeta attaches correlation to ctx, minting a job id when neither
// the caller nor the context carries one.
func EnsureJobMeta(ctx context.Context, jobID string) (context.Context, JobMeta) {
	if existing, ok := JobMetaFromContext(ctx); ok && jobID == "" {
		jobID = existing.JobID
	}
	if jobID == "" {
		jobID = NewJobID()
	}
	traceID, spanID := traceSpanFromContext(ctx)
	meta := JobMeta{JobID: jobID, TraceID: traceID, SpanID: spanID}
	return WithJobMeta(ctx, meta), meta
}

func JobFields(meta JobMeta) []zap.Field {
	if meta.IsZero() {
		return nil
	}
	fields := make([]zap.Field, 0, 3)
	if meta.JobID != "" {
		fields = append(fields, zap.String("job_id", meta.JobID))
	}
	if meta.TraceID != "" {
		fields = append(fields, zap.String("trace_id", meta.TraceID))
	}
	if meta.SpanID != "" {
		fields = append(fields, zap.String("span_id", meta.SpanID))
	}
	return fields
}

// LoggerWithJob returns base annotated with the context's correlation
// fields.
func LoggerWithJob(ctx context.Context, base *zap.Logger) *zap.Logger {
	logger := base
	if logger == nil {
		logger = zap.NewNop()
	}
	meta, ok := JobMetaFromContext(ctx)
	if !ok {
		return logger
	}
	return logger.With(JobFields(meta)...)
}

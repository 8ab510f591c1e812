package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// initTestTracer 初始化测试用Tracer
// 导出器是批量异步的，测试无需真实Collector也能通过
func initTestTracer(t *testing.T) {
	t.Helper()

	shutdown, err := InitTracer("stock-service-test", "localhost:4317")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = shutdown(context.Background())
	})
}

// TestStartSpan 测试Span创建与父子关系
func TestStartSpan(t *testing.T) {
	initTestTracer(t)

	t.Run("创建根Span", func(t *testing.T) {
		_, span := StartSpan(context.Background(), "stock-service", "IssueStock")
		defer span.End()

		require.True(t, span.SpanContext().IsValid())
		assert.NotEqual(t, "00000000000000000000000000000000",
			span.SpanContext().TraceID().String())
	})

	t.Run("子Span继承TraceID", func(t *testing.T) {
		ctx, rootSpan := StartSpan(context.Background(), "stock-service", "IssueStock")
		defer rootSpan.End()

		_, childSpan := StartSpan(ctx, "stock-service", "EvalScript")
		defer childSpan.End()

		assert.Equal(t,
			rootSpan.SpanContext().TraceID(),
			childSpan.SpanContext().TraceID())
		assert.NotEqual(t,
			rootSpan.SpanContext().SpanID(),
			childSpan.SpanContext().SpanID())
	})

	t.Run("Span属性与状态", func(t *testing.T) {
		_, span := StartSpan(context.Background(), "stock-service", "IssueStock")
		defer span.End()

		span.SetAttributes(
			attribute.String("stock.platform", "web"),
			attribute.String("stock.sku", "sku-1"),
			attribute.String("stock.channel", "purchase"),
		)
		span.SetStatus(codes.Ok, "发放成功")
	})
}

// TestExtractTraceID 测试从上下文提取TraceID/SpanID
func TestExtractTraceID(t *testing.T) {
	initTestTracer(t)

	t.Run("有效Span", func(t *testing.T) {
		ctx, span := StartSpan(context.Background(), "stock-service", "GetStock")
		defer span.End()

		assert.Len(t, ExtractTraceID(ctx), 32)
		assert.Len(t, ExtractSpanID(ctx), 16)
	})

	t.Run("无Span的上下文返回空", func(t *testing.T) {
		assert.Empty(t, ExtractTraceID(context.Background()))
		assert.Empty(t, ExtractSpanID(context.Background()))
	})
}

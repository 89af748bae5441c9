package fitlinkgin_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	fitlinkgin "github.com/pilab-dev/fitlink/api/gin"
	"github.com/pilab-dev/fitlink/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestUserAuthMiddleware_RequestContextCarriesSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	var (
		handlerSpan trace.SpanContext
		userID      string
	)
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/whoami", fitlinkgin.UserAuthMiddleware(testSecret), func(c *gin.Context) {
		handlerSpan = trace.SpanContextFromContext(c.Request.Context())
		userID, _ = domain.UserIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", bearer(t, "42"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "42", userID)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "UserAuthMiddleware", spans[0].Name())
	require.True(t, handlerSpan.IsValid())
	assert.Equal(t, spans[0].SpanContext().SpanID(), handlerSpan.SpanID())
	assert.Equal(t, spans[0].SpanContext().TraceID(), handlerSpan.TraceID())
}

// internal/resource/handler.go
//
// View → http.Handler adapter.
//
// Context
// -------
// Handler is the only place the pipeline meets net/http.  Per request it:
//
//  1. starts an OpenTelemetry span named "<resource>.<view>"
//  2. builds the extraction Context from the request and chi URL params
//  3. hands the view a State whose logger carries resource, view, and
//     request id fields
//  4. renders a returned error through resterr (status + JSON body)
//  5. records Prometheus count and latency by resource, view, and status
//
// Notes
// -----
//   - 4xx outcomes log at debug, 5xx at error.  Client mistakes are not
//     operator problems.
package resource

import (
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/yanizio/adept-rest/internal/extract"
	"github.com/yanizio/adept-rest/internal/metrics"
	"github.com/yanizio/adept-rest/internal/middleware"
	"github.com/yanizio/adept-rest/internal/resterr"
)

var tracer = otel.Tracer("github.com/yanizio/adept-rest/internal/resource")

// Handler adapts v to net/http under the given resource name.
func Handler(resourceName string, v View, st extract.State) http.Handler {
	name := viewName(v)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx, span := tracer.Start(r.Context(), resourceName+"."+name,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.RequestURI()),
				attribute.String("rest.resource", resourceName),
				attribute.String("rest.view", name),
			))
		defer span.End()

		log := st.Log().With(
			zap.String("resource", resourceName),
			zap.String("view", name),
			zap.String("request_id", middleware.RequestIDFrom(ctx)),
		)
		vst := st
		vst.Logger = log

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		rc := extract.FromRequest(r.WithContext(ctx))

		if err := v.Serve(ww, rc, vst); err != nil {
			status := resterr.Status(err)
			if status >= http.StatusInternalServerError {
				log.Error("view failed", zap.Int("status", status), zap.Error(err))
				span.RecordError(err)
				span.SetStatus(codes.Error, http.StatusText(status))
			} else {
				log.Debug("view rejected request", zap.Int("status", status), zap.Error(err))
			}
			if ww.Status() == 0 {
				resterr.Write(ww, err)
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		metrics.ViewRequestsTotal.WithLabelValues(resourceName, name, strconv.Itoa(status)).Inc()
		metrics.ViewDuration.WithLabelValues(resourceName, name).Observe(time.Since(start).Seconds())
	})
}

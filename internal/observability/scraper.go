package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/duksosleepy/scraper/internal/scrape"
)

// InstrumentedScraper wraps a scrape.ServiceInterface with OpenTelemetry
// tracing and cache hit/miss metrics.
type InstrumentedScraper struct {
	inner    scrape.ServiceInterface
	tracer   trace.Tracer
	duration metric.Float64Histogram
	requests metric.Int64Counter
}

// NewInstrumentedScraper creates a scrape service wrapper that records a trace
// span, a latency histogram, and a request counter labelled by cache outcome
// for every GetOrFetch call.
func NewInstrumentedScraper(inner scrape.ServiceInterface) (*InstrumentedScraper, error) {
	tracer := otel.Tracer("scraper/scrape")
	meter := otel.Meter("scraper/scrape")

	duration, err := meter.Float64Histogram(
		"scrape.request.duration",
		metric.WithDescription("Duration of scrape requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requests, err := meter.Int64Counter(
		"scrape.requests",
		metric.WithDescription("Number of scrape requests by cache outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &InstrumentedScraper{
		inner:    inner,
		tracer:   tracer,
		duration: duration,
		requests: requests,
	}, nil
}

func (s *InstrumentedScraper) GetOrFetch(ctx context.Context, url string) (string, bool, error) {
	ctx, span := s.tracer.Start(ctx, "scrape.GetOrFetch",
		trace.WithAttributes(attribute.String("page.url", url)),
	)
	start := time.Now()

	content, cached, err := s.inner.GetOrFetch(ctx, url)

	outcome := "miss"
	if cached {
		outcome = "hit"
	}
	if err != nil {
		outcome = "error"
	}

	attrs := metric.WithAttributes(attribute.String("cache", outcome))
	s.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	s.requests.Add(ctx, 1, attrs)

	span.SetAttributes(attribute.Bool("page.cached", cached))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	return content, cached, err
}

package repositories

import (
	"context"
	"fmt"
	"time"

	"libris/internal/config"
	"libris/internal/core/domain"
	"libris/internal/pkg/logger"
	"libris/internal/pkg/metrics"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"gorm.io/gorm"
)

// ConnectionBroker hands out a fresh database connection authenticated as
// one role principal for the duration of a single call.
type ConnectionBroker interface {
	WithConnection(ctx context.Context, cred domain.DatabaseCredential, fn func(ctx context.Context, db *gorm.DB) error) error
}

// Opener opens an unpooled gorm handle for cred
type Opener func(cred domain.DatabaseCredential) (*gorm.DB, error)

// BrokerOptions configures a connection broker
type BrokerOptions struct {
	ConnectTimeout time.Duration
	Tracer         trace.Tracer
	Metrics        *metrics.Metrics
	Logger         logger.Logger
}

type connectionBroker struct {
	open    Opener
	timeout time.Duration
	tracer  trace.Tracer
	metrics *metrics.Metrics
	log     logger.Logger
}

// NewConnectionBroker creates a broker dialing the configured database
func NewConnectionBroker(d config.DatabaseConfig, opts BrokerOptions) ConnectionBroker {
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = d.ConnectTimeout
	}
	return NewConnectionBrokerWithOpener(func(cred domain.DatabaseCredential) (*gorm.DB, error) {
		return config.OpenDatabase(d, cred, false)
	}, opts)
}

// NewConnectionBrokerWithOpener creates a broker using open to dial
func NewConnectionBrokerWithOpener(open Opener, opts BrokerOptions) ConnectionBroker {
	if opts.Tracer == nil {
		opts.Tracer = noop.NewTracerProvider().Tracer("")
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	return &connectionBroker{
		open:    open,
		timeout: opts.ConnectTimeout,
		tracer:  opts.Tracer,
		metrics: opts.Metrics,
		log:     opts.Logger,
	}
}

// WithConnection opens a connection as cred, runs fn on it and closes it
// whatever fn returns, panics included. Caller cancellation is not
// propagated: a procedure that has started runs to completion.
func (b *connectionBroker) WithConnection(ctx context.Context, cred domain.DatabaseCredential, fn func(ctx context.Context, db *gorm.DB) error) (err error) {
	ctx = context.WithoutCancel(ctx)

	ctx, span := b.tracer.Start(ctx, "db.connect",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "mysql"),
			attribute.String("db.principal", cred.Principal),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, Outcome(err))
		}
		span.End()
	}()

	db, err := b.open(cred)
	if err != nil {
		b.metrics.ConnectionOpened(cred.Principal, false)
		return &domain.ConnectivityError{Op: "open", Err: err}
	}

	sqlDB, err := db.DB()
	if err != nil {
		b.metrics.ConnectionOpened(cred.Principal, false)
		return &domain.ConnectivityError{Op: "open", Err: err}
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	opened := false
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			b.log.Warn("Failed to close role connection",
				logger.String("principal", cred.Principal),
				logger.Err(cerr),
			)
		}
		if opened {
			b.metrics.ConnectionClosed()
		}
	}()

	pingCtx, cancel := context.WithTimeout(ctx, b.timeout)
	err = sqlDB.PingContext(pingCtx)
	cancel()
	if err != nil {
		b.metrics.ConnectionOpened(cred.Principal, false)
		b.log.Warn("Role connection refused",
			logger.String("principal", cred.Principal),
			logger.Err(err),
		)
		return connectError(err)
	}
	b.metrics.ConnectionOpened(cred.Principal, true)
	opened = true

	return fn(ctx, db.WithContext(ctx))
}

// connectError keeps privilege errors distinct and reports everything
// else as a failed connect
func connectError(err error) error {
	translated := TranslateError(err)
	if translated != err {
		return translated
	}
	return &domain.ConnectivityError{Op: "connect", Err: fmt.Errorf("ping: %w", err)}
}

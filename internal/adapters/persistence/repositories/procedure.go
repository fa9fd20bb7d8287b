package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"libris/internal/core/domain"
	"libris/internal/pkg/metrics"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"gorm.io/gorm"
)

// OutKind says how an OUT parameter is cast when read back
type OutKind int

const (
	OutInt OutKind = iota
	OutDecimal
	OutDateTime
	OutString
)

// Out is one OUT parameter of a procedure
type Out struct {
	Name string
	Kind OutKind
}

// Call describes a stored procedure invocation: positional IN arguments
// followed by OUT parameters bound to session variables.
type Call struct {
	Procedure string
	Args      []interface{}
	Outs      []Out
}

// Statements renders the CALL and the SELECT that reads the OUT values
func (c Call) Statements() (callSQL, selectSQL string) {
	params := make([]string, 0, len(c.Args)+len(c.Outs))
	for range c.Args {
		params = append(params, "?")
	}
	for _, o := range c.Outs {
		params = append(params, "@o_"+o.Name)
	}
	callSQL = fmt.Sprintf("CALL %s(%s)", c.Procedure, strings.Join(params, ", "))

	if len(c.Outs) == 0 {
		return callSQL, ""
	}

	cols := make([]string, len(c.Outs))
	for i, o := range c.Outs {
		cols[i] = fmt.Sprintf("%s AS %s", castOut(o), o.Name)
	}
	selectSQL = "SELECT " + strings.Join(cols, ", ")
	return callSQL, selectSQL
}

func castOut(o Out) string {
	v := "@o_" + o.Name
	switch o.Kind {
	case OutInt:
		return "CAST(" + v + " AS SIGNED)"
	case OutDecimal:
		return "CAST(" + v + " AS DECIMAL(12,2))"
	case OutDateTime:
		return "CAST(" + v + " AS DATETIME)"
	}
	return v
}

// Procedures runs stored procedures with tracing, metrics and error
// translation. One instance is shared by every repository.
type Procedures struct {
	tracer  trace.Tracer
	metrics *metrics.Metrics
}

// NewProcedures creates a procedure runner. A nil tracer disables spans.
func NewProcedures(tracer trace.Tracer, m *metrics.Metrics) *Procedures {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	return &Procedures{tracer: tracer, metrics: m}
}

// Run executes call on db and scans the OUT values into dest. The CALL
// and the SELECT share one pinned connection so the session variables
// survive between them. Errors come back translated.
func (p *Procedures) Run(ctx context.Context, db *gorm.DB, call Call, dest interface{}) error {
	callSQL, selectSQL := call.Statements()

	return p.observe(ctx, "db.procedure", call.Procedure, len(call.Outs), func(ctx context.Context) error {
		return db.WithContext(ctx).Connection(func(tx *gorm.DB) error {
			if err := tx.Exec(callSQL, call.Args...).Error; err != nil {
				return err
			}
			if selectSQL == "" || dest == nil {
				return nil
			}
			return tx.Raw(selectSQL).Scan(dest).Error
		})
	})
}

// Func is a stored function read back as a single "value" column
type Func struct {
	Name string
	Args []interface{}
}

// Statement renders the SELECT that evaluates the function
func (f Func) Statement() string {
	params := make([]string, len(f.Args))
	for i := range f.Args {
		params[i] = "?"
	}
	return fmt.Sprintf("SELECT %s(%s) AS value", f.Name, strings.Join(params, ", "))
}

// Eval evaluates fn on db and scans the result into dest
func (p *Procedures) Eval(ctx context.Context, db *gorm.DB, fn Func, dest interface{}) error {
	return p.observe(ctx, "db.function", fn.Name, 1, func(ctx context.Context) error {
		return db.WithContext(ctx).Raw(fn.Statement(), fn.Args...).Scan(dest).Error
	})
}

// observe wraps one database routine in a span and records its outcome
func (p *Procedures) observe(ctx context.Context, kind, name string, outs int, run func(ctx context.Context) error) error {
	ctx, span := p.tracer.Start(ctx, kind+" "+name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "mysql"),
			attribute.String("db.procedure", name),
			attribute.Int("db.procedure.outs", outs),
		),
	)
	defer span.End()

	start := time.Now()
	err := TranslateError(run(ctx))

	outcome := Outcome(err)
	p.metrics.ObserveProcedure(name, outcome, time.Since(start))
	span.SetAttributes(attribute.String("db.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	return err
}

// Outcome labels an error for metrics and spans
func Outcome(err error) string {
	var (
		domainErr    *domain.DomainError
		integrityErr *domain.IntegrityError
		connErr      *domain.ConnectivityError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &domainErr):
		return "domain_" + domainErr.Band().String()
	case errors.As(err, &integrityErr):
		return "integrity"
	case errors.As(err, &connErr):
		return "connectivity"
	case errors.Is(err, domain.ErrInsufficientPrivilege):
		return "privilege"
	}
	return "error"
}

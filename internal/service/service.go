// Package service implements the activity signup business operations on top
// of a registry backend.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/activities-signup/internal/metrics"
	"github.com/Shivanand-hulikatti/activities-signup/internal/model"
	"github.com/Shivanand-hulikatti/activities-signup/internal/repository"
)

// ErrInvalidInput is returned when the activity name or email is empty.
var ErrInvalidInput = errors.New("invalid input")

// ActivityService orchestrates listing, enrollment and withdrawal.
type ActivityService struct {
	store  repository.ActivityStore
	log    *zap.Logger
	tracer trace.Tracer
}

// NewActivityService constructs an ActivityService. A nil logger or tracer
// is replaced by a no-op one.
func NewActivityService(store repository.ActivityStore, log *zap.Logger, tracer trace.Tracer) *ActivityService {
	if log == nil {
		log = zap.NewNop()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("activities")
	}
	return &ActivityService{store: store, log: log, tracer: tracer}
}

// ListActivities returns every activity keyed by name.
func (s *ActivityService) ListActivities(ctx context.Context) (map[string]model.Activity, error) {
	ctx, span := s.tracer.Start(ctx, "ActivityService.ListActivities")
	defer span.End()

	activities, err := s.store.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return nil, fmt.Errorf("list activities: %w", err)
	}

	out := make(map[string]model.Activity, len(activities))
	open := 0
	for _, a := range activities {
		if a.Participants == nil {
			a.Participants = []string{}
		}
		if a.SpotsLeft() > 0 {
			open++
		}
		out[a.Name] = a
	}
	span.SetAttributes(
		attribute.Int("activities.count", len(out)),
		attribute.Int("activities.open", open),
	)
	return out, nil
}

// Enroll signs email up for activity and returns the confirmation message.
func (s *ActivityService) Enroll(ctx context.Context, activity, email string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "ActivityService.Enroll", trace.WithAttributes(
		attribute.String("activity.name", activity),
	))
	defer span.End()

	if err := validate(activity, email); err != nil {
		s.finish(span, metrics.EnrollmentsTotal, "signup", activity, email, err)
		return "", err
	}

	err := s.store.Enroll(ctx, activity, email)
	s.finish(span, metrics.EnrollmentsTotal, "signup", activity, email, err)
	if err != nil {
		if isDomainError(err) {
			return "", err
		}
		return "", fmt.Errorf("enroll: %w", err)
	}
	return fmt.Sprintf("%s signed up for %s", email, activity), nil
}

// Withdraw removes email from activity and returns the confirmation message.
func (s *ActivityService) Withdraw(ctx context.Context, activity, email string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "ActivityService.Withdraw", trace.WithAttributes(
		attribute.String("activity.name", activity),
	))
	defer span.End()

	if err := validate(activity, email); err != nil {
		s.finish(span, metrics.WithdrawalsTotal, "withdraw", activity, email, err)
		return "", err
	}

	err := s.store.Withdraw(ctx, activity, email)
	s.finish(span, metrics.WithdrawalsTotal, "withdraw", activity, email, err)
	if err != nil {
		if isDomainError(err) {
			return "", err
		}
		return "", fmt.Errorf("withdraw: %w", err)
	}
	return fmt.Sprintf("%s removed from %s", email, activity), nil
}

// finish records the outcome of a mutation on the span, the counter and the log.
func (s *ActivityService) finish(span trace.Span, counter *prometheus.CounterVec, op, activity, email string, err error) {
	outcome := outcomeOf(err)
	counter.WithLabelValues(outcome).Inc()
	span.SetAttributes(attribute.String("outcome", outcome))

	fields := []zap.Field{
		zap.String("op", op),
		zap.String("activity", activity),
		zap.String("email", email),
		zap.String("outcome", outcome),
	}
	switch {
	case err == nil:
		s.log.Info("registry updated", fields...)
	case outcome == metrics.OutcomeError:
		span.RecordError(err)
		span.SetStatus(codes.Error, op+" failed")
		s.log.Error("registry update failed", append(fields, zap.Error(err))...)
	default:
		s.log.Debug("registry update rejected", append(fields, zap.Error(err))...)
	}
}

func validate(activity, email string) error {
	if activity == "" {
		return fmt.Errorf("%w: activity name is required", ErrInvalidInput)
	}
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	return nil
}

func isDomainError(err error) bool {
	return errors.Is(err, repository.ErrNotFound) ||
		errors.Is(err, repository.ErrAlreadyRegistered) ||
		errors.Is(err, repository.ErrNotRegistered) ||
		errors.Is(err, repository.ErrActivityFull)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrInvalidInput):
		return metrics.OutcomeInvalid
	case errors.Is(err, repository.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, repository.ErrAlreadyRegistered):
		return metrics.OutcomeAlreadyRegistered
	case errors.Is(err, repository.ErrNotRegistered):
		return metrics.OutcomeNotRegistered
	case errors.Is(err, repository.ErrActivityFull):
		return metrics.OutcomeActivityFull
	default:
		return metrics.OutcomeError
	}
}

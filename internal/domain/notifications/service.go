package notifications

import (
	"context"

	"go.uber.org/zap"

	"avd/internal/domain/errs"
	"avd/internal/platform/logger"
)

// Mailer delivers one HTML email. Implementations own the transport.
type Mailer interface {
	Send(ctx context.Context, from, to, subject, htmlBody string) error
}

var (
	ErrNotificationNotFound = errs.NotFound("notification_not_found", "notificação não encontrada")
	ErrMissingRecipient     = errs.Validation("missing_recipient", "destinatário obrigatório")
	ErrMissingEmail         = errs.Validation("missing_email", "colaborador sem email cadastrado")
)

type Service struct {
	store  StoreAPI
	mailer Mailer
	from   string
	log    *zap.Logger
}

func New(store StoreAPI, mailer Mailer, from string, log *zap.Logger) *Service {
	return &Service{store: store, mailer: mailer, from: from, log: logger.OrNop(log)}
}

// Notify stores the in-app notification and hands the email to the mailer.
// Only the in-app write can fail the call; email problems are logged.
func (s *Service) Notify(ctx context.Context, intent Intent) error {
	if intent.EmployeeID == "" {
		return ErrMissingRecipient
	}
	if err := s.store.CreateNotification(ctx, intent.EmployeeID, intent.Type, intent.Title, intent.Body); err != nil {
		return errs.Internal("notification_store_failed", err)
	}
	s.email(ctx, intent)
	return nil
}

// NotifyEmail delivers the email first and records the in-app
// notification only once it went out, so a retried job does not pile up
// duplicates. Delivery failures are returned to the caller.
func (s *Service) NotifyEmail(ctx context.Context, intent Intent) error {
	if intent.EmployeeID == "" {
		return ErrMissingRecipient
	}
	if s.mailer != nil {
		to, err := s.store.EmployeeEmail(ctx, intent.EmployeeID)
		if err != nil {
			return err
		}
		if to == "" {
			return ErrMissingEmail
		}
		if err := s.mailer.Send(ctx, s.from, to, intent.Title, intent.Body); err != nil {
			return err
		}
	}
	if err := s.store.CreateNotification(ctx, intent.EmployeeID, intent.Type, intent.Title, intent.Body); err != nil {
		return errs.Internal("notification_store_failed", err)
	}
	return nil
}

func (s *Service) email(ctx context.Context, intent Intent) {
	if s.mailer == nil {
		return
	}
	to, err := s.store.EmployeeEmail(ctx, intent.EmployeeID)
	if err != nil {
		s.log.Warn("notification email lookup failed", zap.String("employeeId", intent.EmployeeID), zap.Error(err))
		return
	}
	if to == "" {
		return
	}
	if err := s.mailer.Send(ctx, s.from, to, intent.Title, intent.Body); err != nil {
		s.log.Warn("notification email send failed",
			zap.String("employeeId", intent.EmployeeID),
			zap.String("type", intent.Type),
			zap.Error(err))
	}
}

func (s *Service) List(ctx context.Context, employeeID string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, employeeID, limit, offset)
}

func (s *Service) CountUnread(ctx context.Context, employeeID string) (int, error) {
	return s.store.CountUnread(ctx, employeeID)
}

func (s *Service) MarkRead(ctx context.Context, employeeID, notificationID string) error {
	ok, err := s.store.MarkRead(ctx, employeeID, notificationID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

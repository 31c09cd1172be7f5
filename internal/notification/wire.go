package notification

import (
	"database/sql"

	"go.uber.org/zap"

	accountrepo "bloom/internal/account/repository"
	"bloom/internal/config"
	"bloom/internal/notification/repository"
	"bloom/internal/notification/service"
)

type Module struct {
	Dispatcher *service.Dispatcher
	Notifier   *service.Notifier
}

func NewModule(db *sql.DB, cfg *config.Config, publisher service.Publisher, settings service.SettingsReader, logger *zap.Logger) *Module {
	return &Module{
		Dispatcher: service.NewDispatcher(
			repository.NewMySQLOutboxRepository(db),
			publisher,
			cfg.Outbox.Interval,
			cfg.Outbox.BatchSize,
			logger.Named("outbox"),
		),
		Notifier: service.NewNotifier(
			accountrepo.NewMySQLUserRepository(db),
			settings,
			service.SMTPMailer{Timeout: service.DefaultSMTPTimeout},
			logger.Named("notifier"),
		),
	}
}

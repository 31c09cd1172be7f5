package settings

import (
	"database/sql"

	"go.uber.org/zap"

	"bloom/internal/infrastructure/cache"
	"bloom/internal/settings/controller"
	"bloom/internal/settings/repository"
	"bloom/internal/settings/service"
)

type Module struct {
	Service    *service.SettingsService
	Controller *controller.Controller
}

func NewModule(db *sql.DB, c cache.Cache, logger *zap.Logger) *Module {
	svc := service.NewSettingsService(repository.NewMySQLSettingsRepository(db), c, logger)
	return &Module{Service: svc, Controller: controller.NewController(svc, logger)}
}

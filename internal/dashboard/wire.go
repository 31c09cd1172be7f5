package dashboard

import (
	"database/sql"

	"go.uber.org/zap"

	"bloom/internal/config"
	"bloom/internal/dashboard/controller"
	"bloom/internal/dashboard/repository"
	"bloom/internal/dashboard/service"
	orderrepo "bloom/internal/order/repository"
)

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) *controller.Controller {
	svc := service.NewDashboardService(
		repository.NewMySQLDashboardRepository(db),
		orderrepo.NewMySQLOrderRepository(db),
		cfg.Dashboard.LowStockThreshold,
		logger,
	)
	return controller.NewController(svc, logger)
}

package order

import (
	"database/sql"

	"go.uber.org/zap"

	accountrepo "bloom/internal/account/repository"
	"bloom/internal/config"
	couponrepo "bloom/internal/coupon/repository"
	"bloom/internal/infrastructure/mysql"
	outboxrepo "bloom/internal/notification/repository"
	"bloom/internal/order/controller"
	"bloom/internal/order/realtime"
	orderrepo "bloom/internal/order/repository"
	"bloom/internal/order/service"
	"bloom/internal/order/usecase"
	productrepo "bloom/internal/product/repository"
)

type Module struct {
	UseCase    *usecase.OrderUseCase
	Controller *controller.Controller
}

func NewModule(
	db *sql.DB,
	cfg *config.Config,
	settings usecase.SettingsReader,
	cart usecase.Cart,
	hub *realtime.Hub,
	logger *zap.Logger,
) *Module {
	orderRepo := orderrepo.NewMySQLOrderRepository(db)
	orderItemRepo := orderrepo.NewMySQLOrderItemRepository(db)

	orderSvc := service.NewOrderService(
		mysql.NewTxManager(db),
		productrepo.NewMySQLRepository(db),
		couponrepo.NewMySQLRepository(db),
		orderRepo,
		orderItemRepo,
		outboxFor(db, cfg),
		logger,
		cfg.Order.TxTimeout,
	)

	uc := usecase.NewOrderUseCase(
		orderSvc,
		orderRepo,
		orderItemRepo,
		accountrepo.NewMySQLAddressRepository(db),
		settings,
		cart,
		hub,
		logger,
		cfg.Order.MaxRetryAttempts,
	)

	return &Module{UseCase: uc, Controller: controller.NewController(uc, hub, logger)}
}

// outboxFor records order events only when notifications consume them.
func outboxFor(db *sql.DB, cfg *config.Config) service.Outbox {
	if !cfg.Rabbit.Enabled {
		return service.DiscardOutbox{}
	}
	return outboxrepo.NewMySQLOutboxRepository(db)
}

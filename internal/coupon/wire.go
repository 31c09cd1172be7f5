package coupon

import (
	"database/sql"

	"go.uber.org/zap"

	"bloom/internal/coupon/controller"
	"bloom/internal/coupon/repository"
	"bloom/internal/coupon/service"
)

type Module struct {
	Repository *repository.MySQLRepository
	Service    *service.CouponService
	Controller *controller.Controller
}

func NewModule(db *sql.DB, logger *zap.Logger) *Module {
	repo := repository.NewMySQLRepository(db)
	svc := service.NewCouponService(repo, logger)
	return &Module{Repository: repo, Service: svc, Controller: controller.NewController(svc, logger)}
}

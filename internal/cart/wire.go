package cart

import (
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"bloom/internal/cart/controller"
	"bloom/internal/cart/repository"
	"bloom/internal/cart/service"
	productrepo "bloom/internal/product/repository"
)

type Module struct {
	Repository *repository.RedisCartRepository
	Controller *controller.Controller
}

func NewModule(db *sql.DB, client *redis.Client, coupons service.CouponValidator, settings service.SettingsReader, logger *zap.Logger) *Module {
	repo := repository.NewRedisCartRepository(client, repository.DefaultTTL)
	svc := service.NewCartService(repo, productrepo.NewMySQLRepository(db), coupons, settings, logger)
	return &Module{Repository: repo, Controller: controller.NewController(svc, logger)}
}

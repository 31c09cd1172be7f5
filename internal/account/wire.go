package account

import (
	"database/sql"

	"go.uber.org/zap"

	"bloom/internal/account/controller"
	"bloom/internal/account/repository"
	"bloom/internal/account/service"
	"bloom/internal/auth"
	"bloom/internal/infrastructure/mysql"
)

type Module struct {
	Auth      *controller.AuthController
	Addresses *controller.AddressController
}

func NewModule(db *sql.DB, sessions *auth.RedisSessionStore, logger *zap.Logger) *Module {
	authSvc := service.NewAuthService(repository.NewMySQLUserRepository(db), sessions, logger)
	addressSvc := service.NewAddressService(
		mysql.NewTxManager(db),
		repository.NewMySQLAddressRepository(db),
		logger,
	)

	return &Module{
		Auth:      controller.NewAuthController(authSvc, logger),
		Addresses: controller.NewAddressController(addressSvc, logger),
	}
}

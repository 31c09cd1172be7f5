package favorite

import (
	"database/sql"

	"go.uber.org/zap"

	"bloom/internal/favorite/controller"
	"bloom/internal/favorite/repository"
	"bloom/internal/favorite/service"
	productrepo "bloom/internal/product/repository"
)

func NewModule(db *sql.DB, logger *zap.Logger) *controller.Controller {
	svc := service.NewFavoriteService(
		repository.NewMySQLRepository(db),
		productrepo.NewMySQLRepository(db),
		logger,
	)
	return controller.NewController(svc, logger)
}

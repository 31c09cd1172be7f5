package review

import (
	"database/sql"

	"go.uber.org/zap"

	productrepo "bloom/internal/product/repository"
	"bloom/internal/review/controller"
	"bloom/internal/review/repository"
	"bloom/internal/review/service"
)

func NewModule(db *sql.DB, logger *zap.Logger) *controller.Controller {
	svc := service.NewReviewService(
		repository.NewMySQLRepository(db),
		productrepo.NewMySQLRepository(db),
		logger,
	)
	return controller.NewController(svc, logger)
}

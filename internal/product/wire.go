package product

import (
	"database/sql"

	"go.uber.org/zap"

	"bloom/internal/product/controller"
	"bloom/internal/product/repository"
	"bloom/internal/product/service"
	"bloom/internal/product/usecase"
	reviewrepo "bloom/internal/review/repository"
)

type Module struct {
	Catalog *controller.CatalogController
	Admin   *controller.AdminController
}

func NewModule(db *sql.DB, logger *zap.Logger) *Module {
	productRepo := repository.NewMySQLRepository(db)
	categoryRepo := repository.NewMySQLCategoryRepository(db)
	reviewRepo := reviewrepo.NewMySQLRepository(db)

	svc := service.NewCatalogService(productRepo, categoryRepo, logger)
	uc := usecase.NewCatalogUseCase(svc, reviewRepo)

	return &Module{
		Catalog: controller.NewCatalogController(uc, logger),
		Admin:   controller.NewAdminController(uc, logger),
	}
}

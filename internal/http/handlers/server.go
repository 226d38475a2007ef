package handlers

import (
	"github.com/rogerio-castellano/order-tracker/internal/auth"
	"github.com/rogerio-castellano/order-tracker/internal/ledger"
	"github.com/rogerio-castellano/order-tracker/internal/orders"
	repo "github.com/rogerio-castellano/order-tracker/internal/repo"
	"go.uber.org/zap"
)

var (
	productRepo  repo.ProductRepository
	movementRepo repo.MovementRepository
	metricsRepo  repo.MetricsRepository
	userRepo     repo.UserRepository
	storeRepo    repo.StoreRepository
	personRepo   repo.PersonRepository

	orderService *orders.Service
	stockLedger  *ledger.Ledger
	refreshStore auth.RefreshStore

	logger = zap.NewNop()
)

func SetProductRepo(r repo.ProductRepository) {
	productRepo = r
}

func SetMovementRepo(r repo.MovementRepository) {
	movementRepo = r
}

func SetMetricsRepo(r repo.MetricsRepository) {
	metricsRepo = r
}

func SetUserRepo(r repo.UserRepository) {
	userRepo = r
}

func SetStoreRepo(r repo.StoreRepository) {
	storeRepo = r
}

func SetPersonRepo(r repo.PersonRepository) {
	personRepo = r
}

func SetOrderService(s *orders.Service) {
	orderService = s
}

func SetLedger(l *ledger.Ledger) {
	stockLedger = l
}

func SetRefreshStore(s auth.RefreshStore) {
	refreshStore = s
}

func SetLogger(l *zap.Logger) {
	logger = l
}

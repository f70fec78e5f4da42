package api

import (
	"context"
	"net/http"

	"github.com/example/storefront/pkg/checkout"
	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/models"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// ProductCatalog is the product admin surface the handlers need.
type ProductCatalog interface {
	List(ctx context.Context) ([]models.Product, error)
	Insert(ctx context.Context, p *models.NewProduct) (*models.Product, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

// OrderArchive is the order admin surface.
type OrderArchive interface {
	List(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error
	Delete(ctx context.Context, id string) error
}

// CheckoutService runs the customer-facing order flow.
type CheckoutService interface {
	PlaceOrder(ctx context.Context, req *checkout.CheckoutRequest) (*checkout.Confirmation, error)
	CheckAvailability(ctx context.Context, lines []checkout.CartLine) (map[string]checkout.Availability, error)
}

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	products ProductCatalog
	orders   OrderArchive
	checkout CheckoutService
	router   *gin.Engine
}

func NewServer(cfg *config.Config, logger *zap.Logger, products ProductCatalog, orders OrderArchive, checkoutSvc CheckoutService) *Server {
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(loggerMiddleware(logger))
	router.Use(rateLimitMiddleware())

	s := &Server{
		config:   cfg,
		logger:   logger,
		products: products,
		orders:   orders,
		checkout: checkoutSvc,
		router:   router,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.router.GET("/products", s.listProducts)
	s.router.POST("/products", s.createProduct)
	s.router.PUT("/products", s.updateProduct)
	s.router.DELETE("/products", s.deleteProduct)

	s.router.POST("/orders", s.createOrder)
	s.router.GET("/orders", s.listOrders)
	s.router.PUT("/orders", s.updateOrder)
	s.router.DELETE("/orders", s.deleteOrder)

	s.router.POST("/availability", s.checkAvailability)

	// Swagger
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func (s *Server) Start() error {
	addr := s.config.Server.Addr()
	s.logger.Info("HTTP server starting", zap.String("address", addr))
	return s.router.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

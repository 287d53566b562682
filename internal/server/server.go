package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/birracraft/internal/auth"
	authdomain "github.com/smallbiznis/birracraft/internal/auth/domain"
	"github.com/smallbiznis/birracraft/internal/authorization"
	"github.com/smallbiznis/birracraft/internal/config"
	"github.com/smallbiznis/birracraft/internal/container"
	containerdomain "github.com/smallbiznis/birracraft/internal/container/domain"
	"github.com/smallbiznis/birracraft/internal/customer"
	customerdomain "github.com/smallbiznis/birracraft/internal/customer/domain"
	"github.com/smallbiznis/birracraft/internal/flavour"
	flavourdomain "github.com/smallbiznis/birracraft/internal/flavour/domain"
	"github.com/smallbiznis/birracraft/internal/observability"
	obslogger "github.com/smallbiznis/birracraft/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/birracraft/internal/observability/metrics"
	obstracing "github.com/smallbiznis/birracraft/internal/observability/tracing"
	"github.com/smallbiznis/birracraft/internal/order"
	orderdomain "github.com/smallbiznis/birracraft/internal/order/domain"
	"github.com/smallbiznis/birracraft/internal/payment"
	paymentdomain "github.com/smallbiznis/birracraft/internal/payment/domain"
	"github.com/smallbiznis/birracraft/internal/product"
	productdomain "github.com/smallbiznis/birracraft/internal/product/domain"
	"github.com/smallbiznis/birracraft/internal/quota"
	quotadomain "github.com/smallbiznis/birracraft/internal/quota/domain"
	"github.com/smallbiznis/birracraft/internal/ratelimit"
	reportdomain "github.com/smallbiznis/birracraft/internal/report/domain"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	authorization.Module,
	auth.Module,
	customer.Module,
	container.Module,
	flavour.Module,
	product.Module,
	order.Module,
	payment.Module,
	quota.Module,
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, reg *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.Middleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(obsmetrics.Handler(reg)))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, s *Server, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	log          *zap.Logger
	authsvc      authdomain.Service
	authzSvc     authorization.Service
	authLimiter  *ratelimit.AuthLimiter
	customerSvc  customerdomain.Service
	containerSvc containerdomain.Service
	flavourSvc   flavourdomain.Service
	productSvc   productdomain.Service
	orderSvc     orderdomain.Service
	paymentSvc   paymentdomain.Service
	quotaSvc     quotadomain.Service
	reportSvc    reportdomain.Service
	obsMetrics   *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Log          *zap.Logger
	Authsvc      authdomain.Service
	AuthzSvc     authorization.Service
	AuthLimiter  *ratelimit.AuthLimiter `optional:"true"`
	CustomerSvc  customerdomain.Service
	ContainerSvc containerdomain.Service
	FlavourSvc   flavourdomain.Service
	ProductSvc   productdomain.Service
	OrderSvc     orderdomain.Service
	PaymentSvc   paymentdomain.Service
	QuotaSvc     quotadomain.Service
	ReportSvc    reportdomain.Service
	ObsMetrics   *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		log:          p.Log.Named("http.server"),
		authsvc:      p.Authsvc,
		authzSvc:     p.AuthzSvc,
		authLimiter:  p.AuthLimiter,
		customerSvc:  p.CustomerSvc,
		containerSvc: p.ContainerSvc,
		flavourSvc:   p.FlavourSvc,
		productSvc:   p.ProductSvc,
		orderSvc:     p.OrderSvc,
		paymentSvc:   p.PaymentSvc,
		quotaSvc:     p.QuotaSvc,
		reportSvc:    p.ReportSvc,
		obsMetrics:   p.ObsMetrics,
	}

	svc.registerAuthRoutes()
	svc.registerUserRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/api/auth")

	auth.POST("/token", s.RateLimit("token"), s.ObtainToken)
	auth.POST("/token/refresh", s.RateLimit("refresh"), s.RefreshToken)
}

func (s *Server) registerUserRoutes() {
	user := s.engine.Group("/api/user")

	// -------- Open --------
	user.POST("", s.RegisterUser)
	user.GET("/activate/:uid/:token", s.ActivateUser)
	user.POST("/reset_pass", s.RateLimit("reset"), s.RequestPasswordReset)
	user.GET("/reset_password/:uid/:token", s.CheckResetLink)
	user.POST("/set_new_pass", s.RateLimit("reset"), s.SetNewPassword)

	// -------- Authenticated --------
	authed := user.Group("", s.AuthRequired())
	authed.GET("", s.RequirePermission(authorization.ObjectUser, authorization.ActionRead), s.ListUsers)
	authed.GET("/:username", s.RequirePermission(authorization.ObjectUser, authorization.ActionRead), s.GetUser)
	authed.GET("/:username/get_user_by_username", s.RequirePermission(authorization.ObjectUser, authorization.ActionRead), s.GetUser)
	authed.PUT("/:username", s.RequirePermission(authorization.ObjectUser, authorization.ActionWrite), s.ReplaceUser)
	authed.PATCH("/:username", s.RequirePermission(authorization.ObjectUser, authorization.ActionWrite), s.UpdateUser)
	authed.DELETE("/:username", s.RequirePermission(authorization.ObjectUser, authorization.ActionDelete), s.DeleteUser)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	// -------- Customers --------
	s.resource(api, "/customer", authorization.ObjectCustomer, resourceHandlers{
		list:    s.ListCustomers,
		create:  s.CreateCustomer,
		get:     s.GetCustomer,
		replace: s.ReplaceCustomer,
		update:  s.UpdateCustomer,
		delete:  s.DeleteCustomer,
	})

	// -------- Catalog --------
	s.resource(api, "/container", authorization.ObjectContainer, resourceHandlers{
		list:    s.ListContainers,
		create:  s.CreateContainer,
		get:     s.GetContainer,
		replace: s.ReplaceContainer,
		update:  s.UpdateContainer,
		delete:  s.DeleteContainer,
	})
	api.GET("/container/:id/select_lts", s.RequirePermission(authorization.ObjectContainer, authorization.ActionRead), s.SelectLiters)

	s.resource(api, "/flavour", authorization.ObjectFlavour, resourceHandlers{
		list:    s.ListFlavours,
		create:  s.CreateFlavour,
		get:     s.GetFlavour,
		replace: s.ReplaceFlavour,
		update:  s.UpdateFlavour,
		delete:  s.DeleteFlavour,
	})

	s.resource(api, "/product", authorization.ObjectProduct, resourceHandlers{
		list:    s.ListProducts,
		create:  s.CreateProduct,
		get:     s.GetProduct,
		replace: s.ReplaceProduct,
		update:  s.UpdateProduct,
		delete:  s.DeleteProduct,
	})

	// -------- Orders & payments --------
	s.resource(api, "/order", authorization.ObjectOrder, resourceHandlers{
		list:    s.ListOrders,
		create:  s.CreateOrder,
		get:     s.GetOrder,
		replace: s.ReplaceOrder,
		update:  s.UpdateOrder,
		delete:  s.DeleteOrder,
	})

	s.resource(api, "/payment", authorization.ObjectPayment, resourceHandlers{
		list:    s.ListPayments,
		create:  s.CreatePayment,
		get:     s.GetPayment,
		replace: s.ReplacePayment,
		update:  s.UpdatePayment,
		delete:  s.DeletePayment,
	})

	// list_by_payment is registered before the quota resource so it never
	// matches the :id route.
	api.POST("/quota/list_by_payment", s.RequirePermission(authorization.ObjectQuota, authorization.ActionRead), s.ListQuotasByPayment)
	s.resource(api, "/quota", authorization.ObjectQuota, resourceHandlers{
		list:    s.ListQuotas,
		create:  s.CreateQuota,
		get:     s.GetQuota,
		replace: s.ReplaceQuota,
		update:  s.UpdateQuota,
		delete:  s.DeleteQuota,
	})

	// -------- Reports --------
	api.POST("/report/report", s.RequirePermission(authorization.ObjectReport, authorization.ActionWrite), s.RequestReport)
}

type resourceHandlers struct {
	list, create, get, replace, update, delete gin.HandlerFunc
}

func (s *Server) resource(g *gin.RouterGroup, path, object string, h resourceHandlers) {
	read := s.RequirePermission(object, authorization.ActionRead)
	write := s.RequirePermission(object, authorization.ActionWrite)
	del := s.RequirePermission(object, authorization.ActionDelete)

	g.GET(path, read, h.list)
	g.POST(path, write, h.create)
	g.GET(path+"/:id", read, h.get)
	g.PUT(path+"/:id", write, h.replace)
	g.PATCH(path+"/:id", write, h.update)
	g.DELETE(path+"/:id", del, h.delete)
}

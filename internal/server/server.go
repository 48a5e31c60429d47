package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/printhaus/portal/internal/auth"
	authdomain "github.com/printhaus/portal/internal/auth/domain"
	"github.com/printhaus/portal/internal/auth/session"
	"github.com/printhaus/portal/internal/config"
	"github.com/printhaus/portal/internal/dashboard"
	"github.com/printhaus/portal/internal/invoice"
	invoicedomain "github.com/printhaus/portal/internal/invoice/domain"
	"github.com/printhaus/portal/internal/observability"
	obsmiddleware "github.com/printhaus/portal/internal/observability/logger"
	obsmetrics "github.com/printhaus/portal/internal/observability/metrics"
	obstracing "github.com/printhaus/portal/internal/observability/tracing"
	"github.com/printhaus/portal/internal/order"
	orderdomain "github.com/printhaus/portal/internal/order/domain"
	"github.com/printhaus/portal/internal/orderstatus"
	statusdomain "github.com/printhaus/portal/internal/orderstatus/domain"
	"github.com/printhaus/portal/internal/profile"
	profiledomain "github.com/printhaus/portal/internal/profile/domain"
	"github.com/printhaus/portal/internal/providers/email"
	"github.com/printhaus/portal/internal/ratelimit"
	"github.com/printhaus/portal/internal/seed"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	session.Module,
	email.Module,
	ratelimit.Module,
	auth.Module,
	profile.Module,
	orderstatus.Module,
	order.Module,
	invoice.Module,
	dashboard.Module,
	fx.Invoke(NewServer),
	fx.Invoke(seedDemoData),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
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

func seedDemoData(lc fx.Lifecycle, cfg config.Config, deps seed.Deps) {
	if !cfg.SeedDemoData {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return seed.EnsureDemoData(ctx, deps)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	authsvc      authdomain.Service
	sessions     *session.Manager
	profilesvc   profiledomain.Service
	ordersvc     orderdomain.Service
	statussvc    statusdomain.Service
	invoicesvc   invoicedomain.Service
	dashboardsvc dashboard.Service
	loginLimiter *ratelimit.LoginLimiter
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Authsvc      authdomain.Service
	Sessions     *session.Manager
	Profilesvc   profiledomain.Service
	Ordersvc     orderdomain.Service
	Statussvc    statusdomain.Service
	Invoicesvc   invoicedomain.Service
	Dashboardsvc dashboard.Service
	LoginLimiter *ratelimit.LoginLimiter
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		authsvc:      p.Authsvc,
		sessions:     p.Sessions,
		profilesvc:   p.Profilesvc,
		ordersvc:     p.Ordersvc,
		statussvc:    p.Statussvc,
		invoicesvc:   p.Invoicesvc,
		dashboardsvc: p.Dashboardsvc,
		loginLimiter: p.LoginLimiter,
	}

	svc.registerAuthRoutes()
	svc.registerPortalRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/signup", s.Signup)
	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.POST("/forgot", s.Forgot)
	auth.POST("/reset", s.Reset)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerPortalRoutes() {
	portal := s.engine.Group("/portal")
	portal.Use(s.AuthRequired())

	portal.GET("/dashboard", s.GetDashboard)

	portal.GET("/profile", s.GetProfile)
	portal.PATCH("/profile", s.UpdateProfile)

	portal.GET("/orders", s.ListOrders)
	portal.POST("/orders", s.CreateOrder)
	portal.GET("/orders/:id", s.GetOrderByID)
	portal.PATCH("/orders/:id", s.UpdateOrder)
	portal.DELETE("/orders/:id", s.DeleteOrder)
	portal.GET("/orders/:id/status", s.GetOrderStatus)
	portal.GET("/orders/:id/status/history", s.GetOrderStatusHistory)
	portal.POST("/orders/:id/status", s.AppendOrderStatus)

	portal.GET("/invoices", s.ListInvoices)
	portal.POST("/invoices", s.CreateInvoice)
	portal.GET("/invoices/:id", s.GetInvoiceByID)
	portal.PATCH("/invoices/:id", s.UpdateInvoice)
	portal.POST("/invoices/:id/pay", s.PayInvoice)
	portal.GET("/invoices/:id/pdf", s.RenderInvoicePDF)
}

// Package server exposes the tax engine over HTTP: invoice entry and
// recompute, line field-change events, reference-data upserts and
// payment-entry withholding.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spotledger/taxcore/internal/config"
	invoicedomain "github.com/spotledger/taxcore/internal/invoice/domain"
	refdomain "github.com/spotledger/taxcore/internal/refdata/domain"
	whtdomain "github.com/spotledger/taxcore/internal/withholding/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func registerGin() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
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

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	invoiceSvc invoicedomain.Service
	refRepo    refdomain.Repository
	whtSvc     whtdomain.Service
	whtRepo    whtdomain.Repository
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	InvoiceSvc invoicedomain.Service
	RefRepo    refdomain.Repository
	WHTSvc     whtdomain.Service
	WHTRepo    whtdomain.Repository
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		invoiceSvc: p.InvoiceSvc,
		refRepo:    p.RefRepo,
		whtSvc:     p.WHTSvc,
		whtRepo:    p.WHTRepo,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/invoices", s.CreateInvoice)
	v1.GET("/invoices/:id", s.GetInvoice)
	v1.POST("/invoices/:id/recompute", s.RecomputeInvoice)
	v1.POST("/invoices/:id/lines/:line_id/events", s.ApplyLineEvent)

	v1.PUT("/refdata/items/:code", s.UpsertItem)
	v1.PUT("/refdata/templates/:id", s.UpsertTemplate)
	v1.PUT("/refdata/companies/:id", s.UpsertCompany)
	v1.PUT("/refdata/transaction-types/:name", s.UpsertTransactionType)

	v1.POST("/payments", s.CreatePaymentEntry)
	v1.GET("/payments/:id", s.GetPaymentEntry)
	v1.POST("/payments/:id/recompute", s.RecomputePaymentEntry)

	v1.PUT("/withholding/sections/:name", s.UpsertWHTSection)
	v1.PUT("/withholding/suppliers/:id", s.UpsertSupplier)
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appbilling "github.com/gmartins-dev/portal-faturamento/internal/application/billing"
	domainbilling "github.com/gmartins-dev/portal-faturamento/internal/domain/billing"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/report"
	"github.com/gmartins-dev/portal-faturamento/internal/infrastructure/mail"
	infrapdf "github.com/gmartins-dev/portal-faturamento/internal/infrastructure/pdf"
	"github.com/gmartins-dev/portal-faturamento/internal/infrastructure/postgres"
	redisinfra "github.com/gmartins-dev/portal-faturamento/internal/infrastructure/redis"
	httpRouter "github.com/gmartins-dev/portal-faturamento/internal/interfaces/http"
	"github.com/gmartins-dev/portal-faturamento/internal/worker"
	"github.com/gmartins-dev/portal-faturamento/pkg/config"
	"github.com/gmartins-dev/portal-faturamento/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicação")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão ao PostgreSQL")
	}
	defer pool.Close()

	clientRepo := postgres.NewClientRepository(pool)
	priceItemRepo := postgres.NewPriceItemRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Redis é opcional: sem REDIS_URL a aplicação sobe sem cache e sem fila
	// de e-mail.
	var priceTableCache appbilling.PriceTableCache
	var emailQueue appbilling.EmailQueue
	var rdbClose func()
	if cfg.Redis.URL != "" {
		rdb, err := redisinfra.NewClient(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexão ao Redis")
		}
		rdbClose = func() { _ = rdb.Close() }
		priceTableCache = redisinfra.NewPriceTableCache(rdb, time.Duration(cfg.Redis.PriceTableTTL)*time.Second)
		emailQueue = redisinfra.NewEmailQueue(rdb)

		pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.App.Name)
		pdfUC := appbilling.NewPDFUseCase(invoiceRepo, clientRepo, priceItemRepo, pdfGenerator)
		mailer := mail.NewMailer(cfg.SMTP)
		emailWorker := worker.NewEmailWorker(pdfUC, mailer, log)
		worker.NewPool(rdb, emailWorker, cfg.Redis.Workers, log).Start(ctx)
	}
	if rdbClose != nil {
		defer rdbClose()
	}

	layout := report.Layout{
		TotalShipping: cfg.Billing.TotalShippingColumn,
		PostalCode:    cfg.Billing.PostalCodeColumn,
		State:         cfg.Billing.StateColumn,
		ItemCount:     cfg.Billing.ItemCountColumn,
		BasePicking:   cfg.Billing.BasePickingColumn,
	}
	engine := domainbilling.NewEngine(layout, cfg.Billing.StrictCosts, log)

	clientUC := appbilling.NewClientUseCase(clientRepo)
	priceTableUC := appbilling.NewPriceTableUseCase(priceItemRepo, txRunner, priceTableCache, log)
	generateUC := appbilling.NewGenerateInvoiceUseCase(engine, txRunner, clientRepo, priceTableUC, log)
	invoiceUC := appbilling.NewInvoiceUseCase(invoiceRepo, clientRepo, priceItemRepo, emailQueue, log)
	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.App.Name)
	invoicePDFUC := appbilling.NewPDFUseCase(invoiceRepo, clientRepo, priceItemRepo, pdfGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    32 * 1024 * 1024, // uploads de relatórios mensais
	})
	app.Use(recover.New())

	// Swagger UI em local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Portal de Faturamento API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ClientUC:   clientUC,
		PriceTable: priceTableUC,
		GenerateUC: generateUC,
		InvoiceUC:  invoiceUC,
		InvoicePDF: invoicePDFUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("sinal de desligamento recebido, encerrando servidor...")
	cancel() // encerra os workers

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("desligamento do servidor")
	}

	log.Info().Msg("aplicação encerrada")
}

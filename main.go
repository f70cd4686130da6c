package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/halalan/cliparse"
	"github.com/danielhkuo/halalan/clock"
	"github.com/danielhkuo/halalan/db"
	"github.com/danielhkuo/halalan/election"
	"github.com/danielhkuo/halalan/notify"
	"github.com/danielhkuo/halalan/receipt"
	"github.com/danielhkuo/halalan/router"
	"github.com/danielhkuo/halalan/schedule"
)

func main() {
	var err error

	// Load .env if present; real env vars win
	_ = godotenv.Load()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database (sqlite by default, postgres in production)
	driver := "sqlite"
	if cfg.DatabaseType == "postgres" {
		driver = "postgres"
	}
	dbConn, err := sql.Open(driver, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready")

	// Canonical campus timezone
	clk, err := clock.System(cfg.TimeZone)
	if err != nil {
		slog.Error("invalid timezone", "error", err, "tz", cfg.TimeZone)
		os.Exit(1)
	}

	// Notification queue: SMTP when configured, log-only otherwise
	var sender notify.Sender
	if cfg.SMTPHost != "" {
		mailer, err := notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
		if err != nil {
			slog.Error("smtp setup failed", "error", err)
			os.Exit(1)
		}
		sender = mailer
	} else {
		slog.Info("SMTP not configured; notifications log only")
		sender = notify.LogSender{}
	}
	queue := notify.NewQueue(sender, 2, 256)
	queue.Start()
	defer queue.Stop()

	// Durable resolution scheduler; jobs survive restarts in bbolt
	resolve := func(electionID string, now time.Time) error {
		_, err := election.ResolveWinners(dbConn, queue, electionID, now)
		return err
	}
	sched, err := schedule.Open(cfg.JobStore, resolve, clk)
	if err != nil {
		slog.Error("job store open failed", "error", err, "path", cfg.JobStore)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	// Receipt service writing plain-text artifacts to disk
	receipts := &receipt.Service{
		Renderer: receipt.TextRenderer{},
		Store:    receipt.DiskStore{Dir: cfg.ReceiptDir},
	}

	// Create router
	mux := router.NewRouter(dbConn, cfg, clk, queue, sched, receipts)

	// Create server
	server := http.Server{
		Handler: mux,
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "tz", cfg.TimeZone)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/commonsfund/quadfund/src/QFApi/config"
	"github.com/commonsfund/quadfund/src/QFApi/data"
	"github.com/commonsfund/quadfund/src/QFApi/engine"
	"github.com/commonsfund/quadfund/src/QFApi/treasury"
	"github.com/commonsfund/quadfund/src/QFApi/types"
	"github.com/commonsfund/quadfund/src/QFApi/webserver"
)

func main() {
	cfg := config.Load()

	db := data.MustMySQL(cfg.MySQLDSN)

	if err := data.LoadSettings(db); err != nil {
		log.Printf("Failed to load settings: %v", err)
	}

	rdb := data.MustRedis(cfg.RedisURL)

	// unit_scale in the settings table overrides the env default so the
	// whale thresholds can track mint-rate changes without a restart.
	unitScale := data.GetUintSetting(data.SettingUnitScale, cfg.UnitScale)
	ledger := treasury.NewLedger(db, unitScale)

	eng := engine.New(db, ledger, engine.Policy{StrikeLimit: cfg.StrikeLimit})
	eng.SetPublisher(func(ctx context.Context, ev types.AuditEvent) error {
		return data.PublishAudit(ctx, rdb, ev)
	})

	router := webserver.New(cfg, db, rdb, eng, ledger)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	log.Printf("QuadFund API listening on %s (strike limit %d, unit scale %d)",
		cfg.Port, cfg.StrikeLimit, unitScale)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}

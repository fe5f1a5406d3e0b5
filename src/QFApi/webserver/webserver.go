package webserver

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/commonsfund/quadfund/src/QFApi/config"
	"github.com/commonsfund/quadfund/src/QFApi/engine"
	"github.com/commonsfund/quadfund/src/QFApi/treasury"
)

func New(cfg config.Config, db *gorm.DB, rdb *redis.Client, eng *engine.Engine, ledger *treasury.Ledger) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, cfg, db, rdb, eng, ledger)
	return g
}

package webserver

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/commonsfund/quadfund/src/QFApi/config"
	"github.com/commonsfund/quadfund/src/QFApi/engine"
	"github.com/commonsfund/quadfund/src/QFApi/treasury"
)

func attachRoutes(r *gin.Engine, cfg config.Config, db *gorm.DB, rdb *redis.Client, eng *engine.Engine, ledger *treasury.Ledger) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	authH := NewAuth(rdb, []byte(cfg.JWTSecret))
	proposalH := NewProposals(eng)
	voteH := NewVotes(eng)
	proofH := NewProofs(eng)
	repH := NewReputation(eng)

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/challenge", authH.Challenge)
		v1.POST("/auth/verify", authH.Verify)

		secured := v1.Use(JWTMiddleware([]byte(cfg.JWTSecret)))
		secured.POST("/proposals", proposalH.Create)
		secured.GET("/proposals/:id", proposalH.Status)
		secured.POST("/votes", voteH.Cast)
		secured.GET("/votes/quote", voteH.Quote)
		secured.POST("/proofs", proofH.Submit)
		secured.GET("/reputation/:addr", repH.Get)
		secured.GET("/orgs/:addr", proposalH.OrgStatus)
	}

	admin := v1.Group("/admin")
	admin.Use(JWTMiddleware([]byte(cfg.JWTSecret)), AdminOnly(db))
	{
		adminH := NewAdmin(eng, ledger)
		admin.POST("/proofs/:id/verify", adminH.VerifyProof)
		admin.POST("/suspend", adminH.Suspend)
		admin.POST("/credit", adminH.Credit)
		admin.POST("/orgs", adminH.RegisterOrg)
		admin.GET("/audit", adminH.Audit)
	}
}

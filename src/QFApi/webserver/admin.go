package webserver

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"

	"github.com/commonsfund/quadfund/src/QFApi/engine"
	"github.com/commonsfund/quadfund/src/QFApi/treasury"
	"github.com/commonsfund/quadfund/src/QFApi/types"
)

type Admin struct {
	eng       *engine.Engine
	ledger    *treasury.Ledger
	sanitizer *bluemonday.Policy
}

func NewAdmin(eng *engine.Engine, ledger *treasury.Ledger) Admin {
	return Admin{eng: eng, ledger: ledger, sanitizer: bluemonday.StrictPolicy()}
}

func (a Admin) VerifyProof(c *gin.Context) {
	submissionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad submission id"})
		return
	}

	var req struct {
		Approve bool   `json:"approve"`
		Reason  string `json:"reason" binding:"max=1024"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if !req.Approve && req.Reason == "" {
		c.JSON(http.StatusBadRequest, gin.H{"err": "rejection requires a reason"})
		return
	}

	reviewer := c.GetString("addr")
	log.Printf("admin %s verifying submission %d approve=%v", reviewer, submissionID, req.Approve)

	err = a.eng.VerifyProof(c, submissionID, req.Approve, a.sanitizer.Sanitize(req.Reason), reviewer)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (a Admin) Suspend(c *gin.Context) {
	var req struct {
		Org    string `json:"org" binding:"required,min=8,max=128"`
		Reason string `json:"reason" binding:"required,min=1,max=512"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	admin := c.GetString("addr")
	log.Printf("admin %s emergency-suspending org %s", admin, req.Org)

	if err := a.eng.EmergencySuspend(c, req.Org, a.sanitizer.Sanitize(req.Reason), admin); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (a Admin) Credit(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required,min=8,max=128"`
		Units   uint64 `json:"units" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	if err := a.ledger.Credit(req.Address, req.Units); err != nil {
		respondError(c, err)
		return
	}

	balance, err := a.ledger.BalanceOf(req.Address)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// RegisterOrg whitelists an organization so it can submit proposals.
func (a Admin) RegisterOrg(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required,min=8,max=128"`
		Name    string `json:"name" binding:"max=128"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	if err := a.eng.RegisterOrg(c, req.Address, a.sanitizer.Sanitize(req.Name), c.GetString("addr")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

func (a Admin) Audit(c *gin.Context) {
	after, _ := strconv.ParseUint(c.DefaultQuery("after", "0"), 10, 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	events, err := a.eng.AuditLog(c, after, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if events == nil {
		events = []types.AuditEvent{}
	}

	c.JSON(http.StatusOK, events)
}

package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/commonsfund/quadfund/src/QFApi/engine"
)

type Votes struct{ eng *engine.Engine }

func NewVotes(eng *engine.Engine) Votes { return Votes{eng: eng} }

func (v Votes) Cast(c *gin.Context) {
	var req struct {
		ProposalID uint64 `json:"proposalId" binding:"required"`
		Units      uint64 `json:"units" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	receipt, err := v.eng.CastVote(c, c.GetString("addr"), req.ProposalID, req.Units)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, receipt)
}

func (v Votes) Quote(c *gin.Context) {
	proposalID, err := strconv.ParseUint(c.Query("proposalId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad proposalId"})
		return
	}
	units, err := strconv.ParseUint(c.Query("units"), 10, 64)
	if err != nil || units == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad units"})
		return
	}

	cost, err := v.eng.QuoteVoteCost(c, c.GetString("addr"), proposalID, units)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cost": cost})
}

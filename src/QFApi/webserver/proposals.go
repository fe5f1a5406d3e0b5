package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"

	"github.com/commonsfund/quadfund/src/QFApi/engine"
)

type Proposals struct {
	eng       *engine.Engine
	sanitizer *bluemonday.Policy
}

func NewProposals(eng *engine.Engine) Proposals {
	return Proposals{eng: eng, sanitizer: bluemonday.StrictPolicy()}
}

func (p Proposals) Create(c *gin.Context) {
	var req struct {
		Title      string `json:"title" binding:"required,min=1,max=255"`
		Milestones []struct {
			Description string `json:"description" binding:"max=512"`
			Threshold   uint64 `json:"threshold" binding:"required,min=1"`
		} `json:"milestones" binding:"required,min=1,max=32,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	specs := make([]engine.MilestoneSpec, 0, len(req.Milestones))
	for _, m := range req.Milestones {
		specs = append(specs, engine.MilestoneSpec{
			Description: p.sanitizer.Sanitize(m.Description),
			Threshold:   m.Threshold,
		})
	}

	id, err := p.eng.CreateProposal(c, c.GetString("addr"), p.sanitizer.Sanitize(req.Title), specs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (p Proposals) Status(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad proposal id"})
		return
	}

	status, err := p.eng.ProposalStatus(c, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (p Proposals) OrgStatus(c *gin.Context) {
	status, err := p.eng.OrganizationStatus(c, c.Param("addr"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"

	"github.com/commonsfund/quadfund/src/QFApi/engine"
)

type Proofs struct {
	eng       *engine.Engine
	sanitizer *bluemonday.Policy
}

func NewProofs(eng *engine.Engine) Proofs {
	return Proofs{eng: eng, sanitizer: bluemonday.StrictPolicy()}
}

func (p Proofs) Submit(c *gin.Context) {
	var req struct {
		ProposalID uint64 `json:"proposalId" binding:"required"`
		Milestone  uint32 `json:"milestone"`
		Evidence   string `json:"evidence" binding:"required,min=1,max=512"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	// Evidence is an opaque content reference; strip anything that could
	// render in a UI.
	id, err := p.eng.SubmitProof(c, req.ProposalID, req.Milestone,
		p.sanitizer.Sanitize(req.Evidence), c.GetString("addr"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"submissionId": id})
}

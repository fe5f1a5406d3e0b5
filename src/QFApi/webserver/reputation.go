package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/commonsfund/quadfund/src/QFApi/engine"
)

type Reputation struct{ eng *engine.Engine }

func NewReputation(eng *engine.Engine) Reputation { return Reputation{eng: eng} }

func (r Reputation) Get(c *gin.Context) {
	view, err := r.eng.GetReputation(c, c.Param("addr"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

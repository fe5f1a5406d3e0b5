package webserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/commonsfund/quadfund/src/QFApi/data"
	"github.com/commonsfund/quadfund/src/QFApi/engine"
	"github.com/commonsfund/quadfund/src/QFApi/treasury"
	"github.com/commonsfund/quadfund/src/QFApi/types"
	"github.com/commonsfund/quadfund/src/QFApi/webserver"
)

const (
	orgAddr   = "org-goodworks-foundation"
	voterAddr = "voter-alice-000000000001"
)

// identify stands in for the JWT middleware so handlers see a caller
// address without a redis-backed auth flow.
func identify(addr string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("addr", addr)
		c.Next()
	}
}

func newTestRouter(t *testing.T, addr string) (*gin.Engine, *engine.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, data.Migrate(db))

	ledger := treasury.NewLedger(db, 1000)
	eng := engine.New(db, ledger, engine.Policy{StrikeLimit: 1})
	require.NoError(t, db.Create(&types.Org{Address: orgAddr, Name: "GoodWorks", Approved: true}).Error)
	require.NoError(t, ledger.Credit(voterAddr, 100000))

	r := gin.New()
	r.Use(identify(addr))
	proposalH := webserver.NewProposals(eng)
	voteH := webserver.NewVotes(eng)
	proofH := webserver.NewProofs(eng)
	repH := webserver.NewReputation(eng)
	r.POST("/v1/proposals", proposalH.Create)
	r.GET("/v1/proposals/:id", proposalH.Status)
	r.POST("/v1/votes", voteH.Cast)
	r.GET("/v1/votes/quote", voteH.Quote)
	r.POST("/v1/proofs", proofH.Submit)
	r.GET("/v1/reputation/:addr", repH.Get)
	r.GET("/v1/orgs/:addr", proposalH.OrgStatus)

	return r, eng, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateProposalEndpoint(t *testing.T) {
	r, _, _ := newTestRouter(t, orgAddr)

	w := doJSON(t, r, http.MethodPost, "/v1/proposals", gin.H{
		"title": "clean water",
		"milestones": []gin.H{
			{"description": "drill wells", "threshold": 100},
			{"description": "install pumps", "threshold": 250},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotZero(t, resp.ID)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/v1/proposals/%d", resp.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var status engine.ProposalStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, orgAddr, status.Owner)
	assert.Len(t, status.Milestones, 2)
	assert.False(t, status.Blocked)
}

func TestCreateProposalByUnknownOrg(t *testing.T) {
	r, _, _ := newTestRouter(t, voterAddr)

	w := doJSON(t, r, http.MethodPost, "/v1/proposals", gin.H{
		"title":      "not an org",
		"milestones": []gin.H{{"threshold": 10}},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVoteEndpointFlow(t *testing.T) {
	r, eng, _ := newTestRouter(t, voterAddr)
	pid, err := eng.CreateProposal(context.Background(), orgAddr, "clean water", []engine.MilestoneSpec{{Threshold: 1000}})
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/v1/votes/quote?proposalId=%d&units=3", pid), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var quote struct {
		Cost uint64 `json:"cost"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
	assert.Equal(t, uint64(9), quote.Cost)

	w = doJSON(t, r, http.MethodPost, "/v1/votes", gin.H{"proposalId": pid, "units": 3})
	require.Equal(t, http.StatusCreated, w.Code)

	var receipt engine.VoteReceipt
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &receipt))
	assert.Equal(t, uint64(9), receipt.Cost)
	assert.Equal(t, uint64(3), receipt.UnitsHeld)

	w = doJSON(t, r, http.MethodGet, "/v1/reputation/"+voterAddr, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view engine.ReputationView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, uint64(1), view.TotalSessions)
}

func TestVoteEndpointBlockedIs409(t *testing.T) {
	r, eng, _ := newTestRouter(t, voterAddr)
	pid, err := eng.CreateProposal(context.Background(), orgAddr, "clean water", []engine.MilestoneSpec{{Threshold: 5}})
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPost, "/v1/votes", gin.H{"proposalId": pid, "units": 5})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/v1/votes", gin.H{"proposalId": pid, "units": 1})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestVoteEndpointInsufficientBalanceIs402(t *testing.T) {
	r, eng, _ := newTestRouter(t, "voter-broke-000000000001")
	pid, err := eng.CreateProposal(context.Background(), orgAddr, "clean water", []engine.MilestoneSpec{{Threshold: 1000}})
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPost, "/v1/votes", gin.H{"proposalId": pid, "units": 3})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestProofEndpointPermissions(t *testing.T) {
	r, eng, _ := newTestRouter(t, voterAddr)
	pid, err := eng.CreateProposal(context.Background(), orgAddr, "clean water", []engine.MilestoneSpec{{Threshold: 5}})
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPost, "/v1/votes", gin.H{"proposalId": pid, "units": 5})
	require.Equal(t, http.StatusCreated, w.Code)

	// The voter is not the proposal owner.
	w = doJSON(t, r, http.MethodPost, "/v1/proofs", gin.H{
		"proposalId": pid, "milestone": 0, "evidence": "ipfs://QmReport",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOrgStatusEndpoint(t *testing.T) {
	r, _, db := newTestRouter(t, voterAddr)
	require.NoError(t, db.Model(&types.Org{}).Where("address = ?", orgAddr).
		Updates(map[string]interface{}{"strike_count": 2, "suspended": true}).Error)

	w := doJSON(t, r, http.MethodGet, "/v1/orgs/"+orgAddr, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var status engine.OrgStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, uint32(2), status.StrikeCount)
	assert.True(t, status.Suspended)
}

package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnsondatabase/tender-sub001/internal/middleware"
	"github.com/johnsondatabase/tender-sub001/internal/tender/notify"
	"github.com/johnsondatabase/tender-sub001/internal/tender/repository"
	"github.com/johnsondatabase/tender-sub001/internal/tender/service"
	"github.com/johnsondatabase/tender-sub001/internal/tender/sse"
	"github.com/johnsondatabase/tender-sub001/internal/tender/store"
	"github.com/johnsondatabase/tender-sub001/internal/tender/testutil"
)

func setupAPI(t *testing.T) *gin.Engine {
	t.Helper()

	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	st := store.New(repos, testutil.Logger())
	hub := sse.NewHub()
	notifier := notify.New("", testutil.Logger())
	svc := service.NewServices(repos, st, hub, notifier, testutil.NewMemKV(), testutil.Logger())
	h := NewHandlers(svc, hub, NewUploadHandler(nil, ""))

	r := testutil.SetupRouter()
	api := testutil.AuthGroup(r, "/api/v1")

	api.GET("/board", h.Board.GetBoard)
	api.POST("/board/refresh", h.Board.Refresh)

	api.GET("/tenders/code-preview", h.Listing.PreviewCode)
	api.POST("/tenders", h.Listing.SaveListing)
	api.GET("/tenders/:code", h.Listing.GetListing)
	api.GET("/tenders/:code/history", h.Listing.History)
	api.DELETE("/tenders/:code", middleware.RequireRole("manager"), h.Listing.DeleteListing)
	api.POST("/tenders/:code/win", h.Transition.MarkWin)
	api.POST("/tenders/:code/fail", h.Transition.MarkFail)
	api.POST("/tenders/:code/waiting", h.Transition.MarkWaiting)

	api.POST("/grid/query", h.Grid.Query)
	api.POST("/grid/selection-stats", h.Grid.SelectionStats)
	api.GET("/grid/settings/:view", h.Settings.GetSettings)
	api.PUT("/grid/settings/:view", h.Settings.SaveSettings)
	api.DELETE("/grid/settings/:view", h.Settings.ResetSettings)

	return r
}

func saveBody(code string) map[string]interface{} {
	return map[string]interface{}{
		"code":          code,
		"year":          2026,
		"hospital_name": "Bệnh viện Chợ Rẫy",
		"region":        "South",
		"created_date":  time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		"line_items": []map[string]interface{}{
			{"material_code": "M1", "material_name": "Syringe", "quota": 100},
			{"material_code": "M2", "material_name": "Catheter", "quota": 40},
		},
	}
}

func TestAPIRequiresToken(t *testing.T) {
	r := setupAPI(t)
	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/board", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSaveAndGetTender(t *testing.T) {
	r := setupAPI(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/tenders", saveBody("T1"), token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/tenders/T1", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	listing := data["listing"].(map[string]interface{})
	assert.Equal(t, "waiting", listing["status"])
	assert.Len(t, data["line_items"], 2)

	// The open-time snapshot rides along for the unsaved-changes check: it
	// is stable while nothing changes and flips after a save.
	opened := data["snapshot"].(string)
	require.NotEmpty(t, opened)

	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/tenders/T1", nil, token)
	again := testutil.ParseResponse(w)["data"].(map[string]interface{})
	assert.Equal(t, opened, again["snapshot"])

	changed := saveBody("T1")
	changed["region"] = "North"
	testutil.DoRequest(r, http.MethodPost, "/api/v1/tenders", changed, token)

	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/tenders/T1", nil, token)
	after := testutil.ParseResponse(w)["data"].(map[string]interface{})
	assert.NotEqual(t, opened, after["snapshot"])
}

func TestSaveValidation(t *testing.T) {
	r := setupAPI(t)
	body := saveBody("T1")
	delete(body, "hospital_name")

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/tenders", body, testutil.DefaultTestToken())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTenderNotFound(t *testing.T) {
	r := setupAPI(t)
	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/tenders/nope", nil, testutil.DefaultTestToken())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBoardEndpoint(t *testing.T) {
	r := setupAPI(t)
	token := testutil.DefaultTestToken()
	testutil.DoRequest(r, http.MethodPost, "/api/v1/tenders", saveBody("T1"), token)

	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/board?region=South", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	boardView := data["board"].(map[string]interface{})
	assert.EqualValues(t, 1, boardView["total"])

	options := data["options"].(map[string]interface{})
	assert.Contains(t, options["regions"], "South")
}

func TestTransitionEndpoints(t *testing.T) {
	r := setupAPI(t)
	token := testutil.DefaultTestToken()
	testutil.DoRequest(r, http.MethodPost, "/api/v1/tenders", saveBody("T1"), token)

	winBody := map[string]interface{}{
		"signed_date": time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		"end_date":    time.Date(2027, 8, 10, 0, 0, 0, 0, time.UTC),
		"mode":        "full",
	}
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/tenders/T1/win", winBody, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// A second win is an illegal edge and must roll the card back.
	w = testutil.DoRequest(r, http.MethodPost, "/api/v1/tenders/T1/win", winBody, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = testutil.DoRequest(r, http.MethodPost, "/api/v1/tenders/T1/fail", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.DoRequest(r, http.MethodPost, "/api/v1/tenders/nope/fail", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteRequiresManagerRole(t *testing.T) {
	r := setupAPI(t)
	admin := testutil.DefaultTestToken()
	testutil.DoRequest(r, http.MethodPost, "/api/v1/tenders", saveBody("T1"), admin)
	testutil.DoRequest(r, http.MethodPost, "/api/v1/tenders/T1/fail", nil, admin)

	sales := testutil.GenerateTestToken("u2", "Sales Rep", []string{"sales"})
	w := testutil.DoRequest(r, http.MethodDelete, "/api/v1/tenders/T1", nil, sales)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admin bypasses the role check.
	w = testutil.DoRequest(r, http.MethodDelete, "/api/v1/tenders/T1", nil, admin)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestHistoryEndpoint(t *testing.T) {
	r := setupAPI(t)
	token := testutil.DefaultTestToken()
	testutil.DoRequest(r, http.MethodPost, "/api/v1/tenders", saveBody("T1"), token)
	testutil.DoRequest(r, http.MethodPost, "/api/v1/tenders/T1/fail", nil, token)

	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/tenders/T1/history?page=1&page_size=10", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	assert.Len(t, data["items"], 2)

	pagination := data["pagination"].(map[string]interface{})
	assert.EqualValues(t, 2, pagination["total"])
}

func TestCodePreviewEndpoint(t *testing.T) {
	r := setupAPI(t)
	token := testutil.DefaultTestToken()

	path := "/api/v1/tenders/code-preview?created_date=2026-08-31&hospital=" +
		"B%E1%BB%87nh%20vi%E1%BB%87n%20Ch%E1%BB%A3%20R%E1%BA%ABy"
	w := testutil.DoRequest(r, http.MethodGet, path, nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "20260831-BVCR", data["code"])

	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/tenders/code-preview?hospital=X", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGridQueryEndpoint(t *testing.T) {
	r := setupAPI(t)
	token := testutil.DefaultTestToken()
	testutil.DoRequest(r, http.MethodPost, "/api/v1/tenders", saveBody("T1"), token)

	body := map[string]interface{}{"search": "syringe"}
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/grid/query", body, token)
	require.Equal(t, http.StatusOK, w.Code)

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	assert.Len(t, data["items"], 1)

	totals := data["totals"].(map[string]interface{})
	assert.EqualValues(t, 100, totals["total_quota"])
}

func TestSelectionStatsEndpoint(t *testing.T) {
	r := setupAPI(t)
	body := map[string]interface{}{"values": []float64{3, 7, 5}}
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/grid/selection-stats", body, testutil.DefaultTestToken())
	require.Equal(t, http.StatusOK, w.Code)

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	assert.EqualValues(t, 3, data["count"])
	assert.EqualValues(t, 15, data["sum"])
	assert.EqualValues(t, 3, data["min"])
	assert.EqualValues(t, 7, data["max"])
}

func TestSettingsEndpoints(t *testing.T) {
	r := setupAPI(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/grid/settings/line_items", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	defaults := testutil.ParseResponse(w)["data"]

	// Hide one column and save.
	raw, err := json.Marshal(defaults)
	require.NoError(t, err)
	var st map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &st))
	cols := st["columns"].([]interface{})
	first := cols[0].(map[string]interface{})
	first["visible"] = false

	w = testutil.DoRequest(r, http.MethodPut, "/api/v1/grid/settings/line_items", st, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/grid/settings/line_items", nil, token)
	got := testutil.ParseResponse(w)["data"].(map[string]interface{})
	gotCols := got["columns"].([]interface{})
	assert.False(t, gotCols[0].(map[string]interface{})["visible"].(bool))

	// Another user still sees defaults.
	other := testutil.GenerateTestToken("u2", "Other", nil)
	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/grid/settings/line_items", nil, other)
	otherCols := testutil.ParseResponse(w)["data"].(map[string]interface{})["columns"].([]interface{})
	assert.True(t, otherCols[0].(map[string]interface{})["visible"].(bool))

	// Reset restores defaults.
	w = testutil.DoRequest(r, http.MethodDelete, "/api/v1/grid/settings/line_items", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/grid/settings/line_items", nil, token)
	resetCols := testutil.ParseResponse(w)["data"].(map[string]interface{})["columns"].([]interface{})
	assert.True(t, resetCols[0].(map[string]interface{})["visible"].(bool))
}

func TestResponseEnvelope(t *testing.T) {
	r := setupAPI(t)
	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/tenders/nope", nil, testutil.DefaultTestToken())

	resp := testutil.ParseResponse(w)
	assert.EqualValues(t, 40400, resp["code"])
	assert.NotEmpty(t, resp["message"])
}

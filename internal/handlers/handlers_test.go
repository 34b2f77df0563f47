package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rewind-backend/internal/gallery"
	"rewind-backend/internal/handlers"
	"rewind-backend/internal/media"
	"rewind-backend/internal/metrics"
	"rewind-backend/internal/models"
	"rewind-backend/internal/records"
	"rewind-backend/internal/resolver"
	"rewind-backend/internal/services"
	"rewind-backend/internal/solana"
	"rewind-backend/internal/testutil"
	"rewind-backend/internal/workflow"
)

const testSecret = "test-secret-key-for-jwt-signing-must-be-long-enough"

type server struct {
	router   *gin.Engine
	log      *testutil.CallLog
	pinner   *testutil.Pinner
	deployer *testutil.Deployer
	resolver *testutil.Resolver
	store    *records.FileStore
	gallery  *gallery.Gallery
	holders  *testutil.HolderLister
}

func newServer(t *testing.T, secret string) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := &testutil.CallLog{}
	s := &server{
		log:      log,
		pinner:   &testutil.Pinner{Log: log},
		deployer: &testutil.Deployer{Log: log},
		resolver: &testutil.Resolver{Log: log, Post: &resolver.Post{
			Title:       "Ada (@ada)",
			Description: "view from the ridge",
			ImageURL:    "https://pbs.example/media/ridge.jpg",
		}},
		store:   records.NewFileStore(filepath.Join(t.TempDir(), "db.json")),
		holders: &testutil.HolderLister{},
	}
	require.NoError(t, s.store.Init(context.Background()))

	downloader := &testutil.Downloader{Log: log, DataURI: media.EncodeDataURI("image/png", testutil.PNG)}
	publisher := services.NewPublishService(downloader, s.pinner, s.deployer, s.store, nil)
	capturer := workflow.NewCapturer(&testutil.Generator{Log: log}, s.resolver)
	s.gallery = gallery.New(s.store, "https://rewind.example", time.Hour)
	t.Cleanup(s.gallery.Close)

	s.router = handlers.NewRouter(handlers.Deps{
		Capturer:        capturer,
		Publisher:       publisher,
		Store:           s.store,
		Registry:        workflow.NewRegistry(capturer, publisher, time.Hour),
		Gallery:         s.gallery,
		Holders:         s.holders,
		Metrics:         metrics.NewCollector("test"),
		BaseURL:         "https://rewind.example",
		WalletJWTSecret: secret,
	})
	return s
}

func (s *server) do(t *testing.T, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *server) seed(t *testing.T, recs ...models.MemoryRecord) {
	t.Helper()
	for _, rec := range recs {
		_, err := s.store.Append(context.Background(), rec)
		require.NoError(t, err)
	}
}

func TestHealthHandler(t *testing.T) {
	s := newServer(t, "")

	w := s.do(t, "GET", "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[models.HealthResponse](t, w).Status)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t, "")
	s.do(t, "GET", "/health", nil)

	w := s.do(t, "GET", "/metrics", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_http_requests_total")
}

func TestGenerateImage(t *testing.T) {
	s := newServer(t, "")

	w := s.do(t, "POST", "/api/v1/image-generation", models.GenerateImageRequest{Prompt: "sunset"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.GenerateImageResponse](t, w)
	assert.Equal(t, "image/png", resp.MIMEType)
	assert.NotEmpty(t, resp.Image)

	w = s.do(t, "POST", "/api/v1/image-generation", map[string]string{"prompt": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ValidationError", decode[models.ErrorResponse](t, w).Error)
}

func TestResolveLink_CollaboratorFailure(t *testing.T) {
	s := newServer(t, "")
	s.resolver.Err = errors.New("fxtwitter returned 503")

	w := s.do(t, "POST", "/api/v1/social-link-resolution", models.ResolveLinkRequest{MemoryInput: "https://x.com/ada/status/1"})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, decode[models.ErrorResponse](t, w).Message, "503")
}

func TestContentUploadAndDeploy(t *testing.T) {
	s := newServer(t, "")

	w := s.do(t, "POST", "/api/v1/content-upload", models.ContentUploadRequest{
		Name:        "Sunset",
		Description: "over the bay",
		Symbol:      "SUN",
		Image:       media.EncodeDataURI("image/png", testutil.PNG),
		Properties:  map[string]string{"mood": "calm"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	uploaded := decode[models.ContentUploadResponse](t, w)
	assert.Equal(t, "ipfs://bafymeta", uploaded.CID)
	assert.Equal(t, "calm", s.pinner.Last.Properties["mood"])

	recipient := types.NewAccount().PublicKey.ToBase58()
	w = s.do(t, "POST", "/api/v1/coin-deploy", models.CoinDeployRequest{
		Name: "Sunset", Symbol: "SUN", CID: uploaded.CID, PayoutRecipient: recipient,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	deployed := decode[models.CoinDeployResponse](t, w)
	assert.True(t, deployed.Success)
	assert.NotEmpty(t, deployed.Address)
	assert.Equal(t, recipient, s.deployer.Last.PayoutRecipient)
	assert.Equal(t, "ipfs://bafymeta", s.deployer.Last.URI)
}

func TestContentUpload_RejectsNonImage(t *testing.T) {
	s := newServer(t, "")

	w := s.do(t, "POST", "/api/v1/content-upload", models.ContentUploadRequest{
		Name: "Sunset", Description: "d", Symbol: "SUN", Image: "https://example.com/a.png",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, s.log.Calls())
}

func TestCoinDeploy_InvalidRecipient(t *testing.T) {
	s := newServer(t, "")

	w := s.do(t, "POST", "/api/v1/coin-deploy", models.CoinDeployRequest{
		Name: "Sunset", Symbol: "SUN", CID: "bafymeta", PayoutRecipient: "not-an-address",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, s.log.Calls())
}

func TestRecords(t *testing.T) {
	s := newServer(t, "")
	owner := types.NewAccount().PublicKey.ToBase58()

	w := s.do(t, "POST", "/api/v1/records", models.CreateRecordRequest{
		Image: "https://img.example/a.png", Title: "Sunset", Owner: owner,
		CoinAddress: "CoinA", ExplorerURL: "https://explorer.example/CoinA",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.CreateRecordResponse](t, w)
	assert.NotEmpty(t, created.Record.ID)
	assert.NotZero(t, created.Record.Timestamp)

	w = s.do(t, "POST", "/api/v1/records", map[string]string{"title": "missing fields"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, "GET", "/api/v1/records?owner="+owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[models.RecordsResponse](t, w).Records, 1)

	w = s.do(t, "GET", "/api/v1/records?owner=someone-else", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[models.RecordsResponse](t, w).Records)

	w = s.do(t, "GET", "/api/v1/records/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[models.RecordStats](t, w)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.UniqueOwners)

	w = s.do(t, "GET", "/api/v1/records/CoinA", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.RecordResponse](t, w)
	assert.Equal(t, "Sunset", got.Record.Title)
	assert.Contains(t, got.ShareURL, "frames%2FCoinA")

	w = s.do(t, "GET", "/api/v1/records/CoinZ", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NotFound", decode[models.ErrorResponse](t, w).Error)
}

func TestSession_PromptToSuccessAndDismiss(t *testing.T) {
	s := newServer(t, "")

	w := s.do(t, "POST", "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[workflow.Snapshot](t, w).ID
	base := "/api/v1/sessions/" + id

	w = s.do(t, "POST", base+"/capture", models.CaptureRequest{Kind: "prompt", Input: "sunset"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, workflow.StagePreview, decode[workflow.Snapshot](t, w).Stage)

	w = s.do(t, "POST", base+"/accept", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode[workflow.Snapshot](t, w)
	require.NotNil(t, snap.Form)
	assert.Equal(t, "sunset", snap.Form.Name)

	form := *snap.Form
	form.Name = "Sunset"
	form.Symbol = "SUN"
	w = s.do(t, "PUT", base+"/form", form)
	require.Equal(t, http.StatusOK, w.Code)

	owner := types.NewAccount().PublicKey.ToBase58()
	w = s.do(t, "POST", base+"/submit", models.SubmitRequest{Owner: owner})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	snap = decode[workflow.Snapshot](t, w)
	assert.Equal(t, models.PublishSuccess, snap.Status.State)
	require.NotNil(t, snap.Status.Result)
	assert.Equal(t, []string{"generate", "upload", "mint"}, s.log.Calls())

	recs, err := s.store.List(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Sunset", recs[0].Title)

	w = s.do(t, "POST", base+"/submit", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, "POST", base+"/dismiss", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap = decode[workflow.Snapshot](t, w)
	assert.Equal(t, workflow.StageCapture, snap.Stage)
	assert.Equal(t, models.PublishIdle, snap.Status.State)
}

func TestSession_UploadFailureReportedInStatus(t *testing.T) {
	s := newServer(t, "")
	s.pinner.Err = errors.New("pinata returned 500")

	id := decode[workflow.Snapshot](t, s.do(t, "POST", "/api/v1/sessions", nil)).ID
	base := "/api/v1/sessions/" + id
	require.Equal(t, http.StatusOK, s.do(t, "POST", base+"/capture", models.CaptureRequest{Kind: "url", Input: "https://x.com/ada/status/1"}).Code)
	snap := decode[workflow.Snapshot](t, s.do(t, "POST", base+"/accept", nil))
	form := *snap.Form
	form.Symbol = "RDG"
	require.Equal(t, http.StatusOK, s.do(t, "PUT", base+"/form", form).Code)

	w := s.do(t, "POST", base+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	snap = decode[workflow.Snapshot](t, w)
	assert.Equal(t, models.PublishError, snap.Status.State)
	assert.Contains(t, snap.Status.Message, "pinata returned 500")
	assert.NotContains(t, s.log.Calls(), "mint")

	w = s.do(t, "POST", base+"/dismiss", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap = decode[workflow.Snapshot](t, w)
	assert.Equal(t, workflow.StagePreview, snap.Stage)
	require.NotNil(t, snap.Draft)
	assert.Nil(t, snap.Form)
}

func TestSession_SubmitIncompleteForm(t *testing.T) {
	s := newServer(t, "")
	id := decode[workflow.Snapshot](t, s.do(t, "POST", "/api/v1/sessions", nil)).ID
	base := "/api/v1/sessions/" + id
	s.do(t, "POST", base+"/capture", models.CaptureRequest{Kind: "prompt", Input: "sunset"})
	s.do(t, "POST", base+"/accept", nil)

	w := s.do(t, "POST", base+"/submit", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[models.ErrorResponse](t, w).Message, "symbol")
	snap := decode[workflow.Snapshot](t, s.do(t, "GET", base, nil))
	assert.Equal(t, models.PublishIdle, snap.Status.State)
}

func TestSession_FileCapture(t *testing.T) {
	s := newServer(t, "")
	id := decode[workflow.Snapshot](t, s.do(t, "POST", "/api/v1/sessions", nil)).ID

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "beach day.png")
	require.NoError(t, err)
	_, err = part.Write(testutil.PNG)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest("POST", "/api/v1/sessions/"+id+"/capture", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	snap := decode[workflow.Snapshot](t, w)
	require.NotNil(t, snap.Draft)
	assert.Equal(t, "beach day", snap.Draft.Title)
	assert.Equal(t, workflow.SourceFile, snap.Draft.SourceKind)
}

func TestSession_NotFound(t *testing.T) {
	s := newServer(t, "")

	w := s.do(t, "GET", "/api/v1/sessions/nope", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSession_WalletTokenOverridesOwner(t *testing.T) {
	s := newServer(t, testSecret)
	wallet := types.NewAccount().PublicKey.ToBase58()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": wallet}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	id := decode[workflow.Snapshot](t, s.do(t, "POST", "/api/v1/sessions", nil)).ID
	base := "/api/v1/sessions/" + id
	s.do(t, "POST", base+"/capture", models.CaptureRequest{Kind: "prompt", Input: "sunset"})
	snap := decode[workflow.Snapshot](t, s.do(t, "POST", base+"/accept", nil))
	form := *snap.Form
	form.Symbol = "SUN"
	s.do(t, "PUT", base+"/form", form)

	w := s.do(t, "POST", base+"/submit", models.SubmitRequest{Owner: "ignored"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, "POST", base+"/submit", models.SubmitRequest{Owner: "ignored"}, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.PublishSuccess, decode[workflow.Snapshot](t, w).Status.State)

	recs, err := s.store.List(context.Background(), wallet)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Equal(t, wallet, s.deployer.Last.PayoutRecipient)
}

func TestGallery_TipsBattlesAndComments(t *testing.T) {
	s := newServer(t, "")
	s.seed(t,
		models.MemoryRecord{Title: "Sunset", CoinAddress: "CoinA", Image: media.EncodeDataURI("image/png", testutil.PNG)},
		models.MemoryRecord{Title: "Ridge", CoinAddress: "CoinB", Image: "https://img.example/ridge.png"},
	)

	w := s.do(t, "POST", "/api/v1/gallery/tips", models.TipRequest{Address: "alice", Amount: 0.5, CoinAddress: "CoinA"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	tip := decode[models.TipResponse](t, w)
	assert.InDelta(t, 0.5, tip.Total, 1e-9)
	assert.Contains(t, tip.ShareURL, "warpcast.com")

	w = s.do(t, "POST", "/api/v1/gallery/tips", models.TipRequest{Address: "alice", Amount: 0.00001, CoinAddress: "CoinA"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, "POST", "/api/v1/gallery/battles", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	battle := decode[gallery.Battle](t, w)

	w = s.do(t, "POST", "/api/v1/gallery/battles/"+battle.ID+"/votes", models.VoteRequest{CoinAddress: "CoinB"})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, "POST", "/api/v1/gallery/battles/"+battle.ID+"/end", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CoinB", decode[gallery.Battle](t, w).Winner)

	w = s.do(t, "POST", "/api/v1/gallery/battles/"+battle.ID+"/votes", models.VoteRequest{CoinAddress: "CoinB"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, "GET", "/api/v1/gallery/leaderboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	board := decode[models.LeaderboardResponse](t, w)
	require.Len(t, board.Tippers, 1)
	assert.Equal(t, "alice", board.Tippers[0].Address)
	assert.Equal(t, "Sunset", board.Activity[0].Memory)
	assert.Equal(t, []string{"CoinB"}, board.Badges)

	w = s.do(t, "POST", "/api/v1/gallery/comments/CoinA", models.CommentRequest{Text: "lovely"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = s.do(t, "POST", "/api/v1/gallery/comments/CoinZ", models.CommentRequest{Text: "lovely"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, "GET", "/api/v1/gallery/comments/CoinA", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"lovely"}, decode[models.CommentsResponse](t, w).Comments)

	w = s.do(t, "GET", "/api/v1/gallery/surprise", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, []string{"CoinA", "CoinB"}, decode[models.RecordResponse](t, w).Record.CoinAddress)
}

func TestFrames(t *testing.T) {
	s := newServer(t, "")
	s.seed(t,
		models.MemoryRecord{Title: `Sunset "gold"`, CoinAddress: "CoinA", Image: media.EncodeDataURI("image/png", testutil.PNG), ExplorerURL: "https://explorer.example/CoinA"},
		models.MemoryRecord{Title: "Ridge", CoinAddress: "CoinB", Image: "https://img.example/ridge.png"},
	)

	w := s.do(t, "GET", "/frames/CoinA", nil)
	require.Equal(t, http.StatusOK, w.Code)
	html := w.Body.String()
	assert.Contains(t, html, `content="vNext"`)
	assert.Contains(t, html, "https://rewind.example/frames/CoinA/image")
	assert.Contains(t, html, "Sunset &#34;gold&#34;")

	w = s.do(t, "GET", "/frames/CoinA/image", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, testutil.PNG, w.Body.Bytes())

	w = s.do(t, "GET", "/frames/CoinB/image", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://img.example/ridge.png", w.Header().Get("Location"))

	w = s.do(t, "GET", "/frames/CoinZ", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGallery_TopHolders(t *testing.T) {
	s := newServer(t, "")
	coin := types.NewAccount().PublicKey.ToBase58()
	whale := types.NewAccount().PublicKey.ToBase58()
	minnow := types.NewAccount().PublicKey.ToBase58()
	s.holders.Holders = []solana.Holder{
		{Owner: whale, Amount: 900_000_000},
		{Owner: minnow, Amount: 100_000_000},
	}

	w := s.do(t, "GET", "/api/v1/gallery/holders/"+coin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[models.HoldersResponse](t, w)
	assert.Equal(t, coin, got.CoinAddress)
	assert.Equal(t, uint64(1_000_000_000), got.Supply)
	assert.Equal(t, uint8(6), got.Decimals)
	assert.Equal(t, []models.HolderEntry{
		{Address: whale, Balance: 900_000_000},
		{Address: minnow, Balance: 100_000_000},
	}, got.Holders)
	assert.Equal(t, solana.DefaultHolderLimit, s.holders.Limit)

	w = s.do(t, "GET", "/api/v1/gallery/holders/"+coin+"?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[models.HoldersResponse](t, w).Holders, 1)

	w = s.do(t, "GET", "/api/v1/gallery/holders/"+coin+"?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, "GET", "/api/v1/gallery/holders/not-a-coin", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.holders.Err = errors.New("rpc unavailable")
	w = s.do(t, "GET", "/api/v1/gallery/holders/"+coin, nil)
	require.Equal(t, http.StatusBadGateway, w.Code)
	resp := decode[models.ErrorResponse](t, w)
	assert.Equal(t, "HoldersFailed", resp.Code)
	assert.Equal(t, "rpc unavailable", resp.Message)
}

package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomloop-backend/middleware"
	"roomloop-backend/repository"
	"roomloop-backend/services"
	"roomloop-backend/ws"
)

const testSecret = "handler-test-secret"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	roomRepo := repository.NewInMemoryRoomRepo()
	userRepo := repository.NewInMemoryUserRepo()
	messageRepo := repository.NewInMemoryMessageRepo()
	reactionRepo := repository.NewInMemoryReactionRepo()

	hub := ws.NewHub()
	go hub.Run()

	mirror := services.NewMirrorWriter(userRepo, nil)
	life := services.NewLifecycle(roomRepo, hub)
	access := services.NewAccessEvaluator(roomRepo, mirror)
	codes := services.NewCodeAllocator(roomRepo)

	authSvc := services.NewAuthService(userRepo, testSecret, 1)
	roomSvc := services.NewRoomService(roomRepo, userRepo, codes, access, life, mirror)
	inviteSvc := services.NewInviteService(roomRepo, userRepo, life, mirror, hub)
	msgSvc := services.NewMessageService(messageRepo, userRepo, life, access, hub, 1000)
	reactSvc := services.NewReactionService(reactionRepo, userRepo, life, access, hub, nil)

	authH := NewAuthHandler(authSvc)
	roomH := NewRoomHandler(roomSvc, inviteSvc)
	msgH := NewMessageHandler(msgSvc)
	reactH := NewReactionHandler(reactSvc)

	router := gin.New()
	api := router.Group("/api")
	api.POST("/auth/register", authH.Register)
	api.POST("/auth/login", authH.Login)

	authed := api.Group("", middleware.Auth(testSecret))
	authed.GET("/auth/me", authH.Me)
	authed.POST("/rooms", roomH.Create)
	authed.GET("/rooms/public", roomH.ListPublic)
	authed.GET("/rooms/user", roomH.ListMine)
	authed.GET("/rooms/:id", roomH.Get)
	authed.POST("/rooms/:id/join", roomH.Join)
	authed.POST("/rooms/:id/invite", roomH.Invite)
	authed.GET("/rooms/:id/messages", msgH.List)
	authed.POST("/rooms/:id/messages", msgH.Post)
	authed.GET("/rooms/:id/reactions", reactH.List)
	authed.POST("/rooms/:id/reactions", reactH.Post)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, router *gin.Engine, username string) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"login":    username,
		"password": "hunter22",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func createRoom(t *testing.T, router *gin.Engine, token string, body gin.H) uint {
	t.Helper()
	if _, ok := body["startTime"]; !ok {
		body["startTime"] = time.Now().Add(-time.Minute).Format(time.RFC3339)
		body["endTime"] = time.Now().Add(time.Hour).Format(time.RFC3339)
	}
	w := doJSON(t, router, http.MethodPost, "/api/rooms", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Room struct {
			ID uint `json:"id"`
		} `json:"room"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Room.ID
}

func TestAuthEndpoints(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "alice")

	w := doJSON(t, router, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")

	w = doJSON(t, router, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice", "email": "dup@example.com", "password": "hunter22",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"login": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoomLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	host := registerAndLogin(t, router, "host")
	guest := registerAndLogin(t, router, "guest")

	roomID := createRoom(t, router, host, gin.H{"title": "demo", "visibility": "private"})
	path := fmt.Sprintf("/api/rooms/%d", roomID)

	// Private room is invisible to outsiders until invited.
	w := doJSON(t, router, http.MethodGet, path, guest, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodPost, path+"/invite", host, gin.H{"usernames": []string{"guest"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, path, guest, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, path+"/join", guest, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, path+"/join", guest, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "double join rejected")

	w = doJSON(t, router, http.MethodPost, path+"/invite", host, gin.H{"usernames": []string{"nobody"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "nobody")

	w = doJSON(t, router, http.MethodGet, "/api/rooms/999", host, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMessagesAndReactionsOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	host := registerAndLogin(t, router, "host")
	stranger := registerAndLogin(t, router, "stranger")

	roomID := createRoom(t, router, host, gin.H{"title": "open mic"})
	path := fmt.Sprintf("/api/rooms/%d", roomID)

	w := doJSON(t, router, http.MethodPost, path+"/messages", host, gin.H{"content": "hello"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, path+"/messages", stranger, gin.H{"content": "hi"})
	assert.Equal(t, http.StatusForbidden, w.Code, "public rooms accept reads, not writes")

	w = doJSON(t, router, http.MethodGet, path+"/messages", stranger, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hello")

	w = doJSON(t, router, http.MethodPost, path+"/reactions", host, gin.H{"emoji": "🎉"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, path+"/reactions", host, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "🎉")
}

func TestClosedRoomRejectsWrites(t *testing.T) {
	router := newTestRouter(t)
	host := registerAndLogin(t, router, "host")

	roomID := createRoom(t, router, host, gin.H{
		"title":     "over",
		"startTime": time.Now().Add(-2 * time.Hour).Format(time.RFC3339),
		"endTime":   time.Now().Add(-time.Hour).Format(time.RFC3339),
	})

	w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/rooms/%d/messages", roomID), host, gin.H{"content": "late"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "not live")
}

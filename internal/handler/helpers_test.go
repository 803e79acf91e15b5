package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"leaf-care-go/internal/config"
	"leaf-care-go/internal/middleware"
	"leaf-care-go/internal/model"
	"leaf-care-go/internal/repository"
	"leaf-care-go/internal/service"
	"leaf-care-go/pkg/llm"
	"leaf-care-go/pkg/token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeLLM struct {
	mu     sync.Mutex
	reply  string
	chunks []string
	err    error
}

func (f *fakeLLM) Chat(_ context.Context, _ []llm.Message, _ *llm.GenerationParams) (*llm.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Completion{Content: f.reply, Usage: llm.Usage{PromptTokens: 10, CompletionTokens: 4, TotalTokens: 14}}, nil
}

func (f *fakeLLM) StreamChatMessages(_ context.Context, _ []llm.Message, _ *llm.GenerationParams, w llm.MessageWriter) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	var sent []string
	for _, c := range f.chunks {
		if err := w.WriteMessage(1, []byte(c)); err != nil {
			return strings.Join(sent, ""), fmt.Errorf("write chunk: %w", err)
		}
		sent = append(sent, c)
	}
	return strings.Join(sent, ""), nil
}

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memoryStore) Put(_ context.Context, name string, r io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[name] = b
	return nil
}

func (m *memoryStore) URL(_ context.Context, name string) (string, error) {
	return "http://minio.local/" + name, nil
}

// testEnv 按生产路由装配一套使用 SQLite、miniredis 和假上游的服务。
type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	llm      *fakeLLM
	store    *memoryStore
	digests  repository.DigestRepository
	jwt      *token.JWTManager
	userRepo repository.UserRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Plant{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	clock := fixedClock{t: time.Date(2024, time.May, 20, 9, 0, 0, 0, time.UTC)}
	jwt := token.NewJWTManager("handler-test", 1, 1)
	userRepo := repository.NewUserRepository(db)
	plantRepo := repository.NewPlantRepository(db)
	blacklist := repository.NewTokenBlacklist(rdb)
	digests := repository.NewDigestRepository(rdb)
	convRepo := repository.NewMemoryConversationRepository()
	fake := &fakeLLM{reply: "保持土壤微湿即可", chunks: []string{"保持", "土壤", "微湿"}}
	store := &memoryStore{objects: map[string][]byte{}}

	userService := service.NewUserService(userRepo, blacklist, jwt)
	llmCfg := config.LLMConfig{APIKey: "sk-test", Model: "deepseek-chat", HistoryLimit: 6}

	authH := NewAuthHandler(userService)
	userH := NewUserHandler(userService)
	adminH := NewAdminHandler(service.NewAdminService(userRepo, plantRepo))
	plantH := NewPlantHandler(service.NewPlantService(plantRepo, clock))
	reminderH := NewReminderHandler(service.NewReminderService(plantRepo, digests, clock))
	chatH := NewChatHandler(service.NewChatService(fake, convRepo, llmCfg), []string{"http://localhost:3000"})
	convH := NewConversationHandler(service.NewConversationService(convRepo))
	knowledgeH := NewKnowledgeHandler(service.NewKnowledgeService(repository.NewBuiltinKnowledgeRepository(), nil))
	imageH := NewImageHandler(service.NewImageService(store))

	r := gin.New()
	auth := middleware.AuthMiddleware(jwt, userService, blacklist)
	api := r.Group("/api/v1")
	{
		api.POST("/auth/register", authH.Register)
		api.POST("/auth/login", authH.Login)
		api.POST("/auth/refreshToken", authH.RefreshToken)

		api.GET("/users/me", auth, userH.GetProfile)
		api.POST("/users/logout", auth, userH.Logout)
		api.GET("/admin/users/list", auth, middleware.AdminAuthMiddleware(), adminH.ListUsers)

		plant := api.Group("/plant")
		plant.GET("/health", Health)
		plant.POST("/chat", auth, chatH.Chat)
		plant.GET("/chat/ws", auth, chatH.Handle)
		plant.GET("/conversations", auth, convH.List)
		plant.GET("/conversations/:id", auth, convH.Get)
		plant.GET("/knowledge", knowledgeH.List)
		plant.GET("/knowledge/search", knowledgeH.Search)
		plant.GET("/knowledge/:id", knowledgeH.Get)
		plant.POST("/analyze-image", auth, imageH.Analyze)

		api.GET("/get_plants", auth, plantH.List)
		api.POST("/plants", auth, plantH.Create)
		api.GET("/plants/:id", auth, plantH.Get)
		api.PUT("/plants/:id", auth, plantH.Update)
		api.DELETE("/plants/:id", auth, plantH.Delete)
		api.POST("/plants/:id/water", auth, plantH.Water)
		api.POST("/plants/:id/fertilize", auth, plantH.Fertilize)
		api.GET("/reminders", auth, reminderH.List)
		api.GET("/reminders/digest", auth, reminderH.Digest)
	}

	return &testEnv{router: r, db: db, llm: fake, store: store, digests: digests, jwt: jwt, userRepo: userRepo}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, target, bearer string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return e.serve(t, req)
}

func (e *testEnv) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

// login 注册并登录一个用户，返回 access token。
func (e *testEnv) login(t *testing.T, username string) string {
	t.Helper()
	w, _ := e.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": username, "email": username + "@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env := e.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"account": username, "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var data struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.AccessToken
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v))
}

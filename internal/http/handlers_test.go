package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"charchat/internal/domain"
	"charchat/internal/llm"
	"charchat/internal/repository"
	"charchat/internal/service"
	"charchat/internal/storage"
)

type stubUserRepo struct {
	users map[string]domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]domain.User)}
}

func (m *stubUserRepo) Create(_ context.Context, user domain.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *stubUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *stubUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

type stubCharacterRepo struct {
	characters map[string]domain.Character
}

func newStubCharacterRepo(chars ...domain.Character) *stubCharacterRepo {
	repo := &stubCharacterRepo{characters: make(map[string]domain.Character)}
	for _, c := range chars {
		repo.characters[c.ID] = c
	}
	return repo
}

func (m *stubCharacterRepo) Create(_ context.Context, character domain.Character) error {
	m.characters[character.ID] = character
	return nil
}

func (m *stubCharacterRepo) Update(_ context.Context, character domain.Character) error {
	if _, ok := m.characters[character.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.characters[character.ID] = character
	return nil
}

func (m *stubCharacterRepo) Delete(_ context.Context, id string) error {
	delete(m.characters, id)
	return nil
}

func (m *stubCharacterRepo) GetByID(_ context.Context, id string) (domain.Character, error) {
	c, ok := m.characters[id]
	if !ok {
		return domain.Character{}, pgx.ErrNoRows
	}
	return c, nil
}

func (m *stubCharacterRepo) ListVisible(_ context.Context, userID string) ([]domain.Character, error) {
	var out []domain.Character
	for _, c := range m.characters {
		if c.IsDefault || c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *stubCharacterRepo) ListDefaults(_ context.Context) ([]domain.Character, error) {
	var out []domain.Character
	for _, c := range m.characters {
		if c.IsDefault {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *stubCharacterRepo) ListByOwner(_ context.Context, userID string) ([]domain.Character, error) {
	var out []domain.Character
	for _, c := range m.characters {
		if !c.IsDefault && c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *stubCharacterRepo) NameExists(_ context.Context, userID, name, excludeID string) (bool, error) {
	for _, c := range m.characters {
		if c.IsDefault || c.UserID != userID || c.Name != name {
			continue
		}
		if excludeID != "" && c.ID == excludeID {
			continue
		}
		return true, nil
	}
	return false, nil
}

type stubMessageRepo struct {
	messages []domain.Message
}

func (m *stubMessageRepo) Create(_ context.Context, message domain.Message) error {
	m.messages = append(m.messages, message)
	return nil
}

func (m *stubMessageRepo) GetByID(_ context.Context, id string) (domain.Message, error) {
	for _, msg := range m.messages {
		if msg.ID == id {
			return msg, nil
		}
	}
	return domain.Message{}, pgx.ErrNoRows
}

func (m *stubMessageRepo) Delete(_ context.Context, id string) error {
	for i, msg := range m.messages {
		if msg.ID == id {
			m.messages = append(m.messages[:i], m.messages[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *stubMessageRepo) conversation(userID, characterID string) []domain.Message {
	var out []domain.Message
	for _, msg := range m.messages {
		if msg.UserID == userID && msg.CharacterID == characterID {
			out = append(out, msg)
		}
	}
	return out
}

func (m *stubMessageRepo) ListRecent(_ context.Context, userID, characterID string, limit int) ([]domain.Message, error) {
	conv := m.conversation(userID, characterID)
	var out []domain.Message
	for i := len(conv) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, conv[i])
	}
	return out, nil
}

func (m *stubMessageRepo) ListPage(_ context.Context, userID, characterID string, limit, offset int) ([]domain.Message, error) {
	conv := m.conversation(userID, characterID)
	var out []domain.Message
	for i := len(conv) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, conv[i])
	}
	return out, nil
}

func (m *stubMessageRepo) CountByConversation(_ context.Context, userID, characterID string) (int, error) {
	return len(m.conversation(userID, characterID)), nil
}

func (m *stubMessageRepo) ListConversationSummaries(_ context.Context, userID string) ([]repository.ConversationSummary, error) {
	counts := map[string]int{}
	var order []string
	for _, msg := range m.messages {
		if msg.UserID != userID {
			continue
		}
		if _, seen := counts[msg.CharacterID]; !seen {
			order = append(order, msg.CharacterID)
		}
		counts[msg.CharacterID]++
	}
	var out []repository.ConversationSummary
	for _, id := range order {
		out = append(out, repository.ConversationSummary{CharacterID: id, CharacterName: "character", TotalMessages: counts[id]})
	}
	return out, nil
}

func (m *stubMessageRepo) DeleteByConversation(_ context.Context, userID, characterID string) error {
	var kept []domain.Message
	for _, msg := range m.messages {
		if msg.UserID == userID && msg.CharacterID == characterID {
			continue
		}
		kept = append(kept, msg)
	}
	m.messages = kept
	return nil
}

// testServer arma el router completo sobre repos en memoria.
type testServer struct {
	router     *gin.Engine
	users      *stubUserRepo
	characters *stubCharacterRepo
	messages   *stubMessageRepo
	jwtServ    *service.JWTService
	authServ   *service.AuthService
}

func newTestServer(t *testing.T, client llm.Client, chars ...domain.Character) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	users := newStubUserRepo()
	characters := newStubCharacterRepo(chars...)
	messages := &stubMessageRepo{}

	jwtServ := service.NewJWTService("secret", time.Hour)
	authServ := service.NewAuthService(logger, users)
	characterServ := service.NewCharacterService(characters)
	messageServ := service.NewMessageService(logger, messages, characters, client, nil)

	store, err := storage.NewFileStore(logger, t.TempDir(), "")
	if err != nil {
		t.Fatalf("file store: %v", err)
	}

	router := NewRouter(
		logger,
		AuthRequired(jwtServ, authServ),
		AuthOptional(jwtServ, authServ),
		NewAuthHandler(logger, authServ, jwtServ),
		NewCharacterHandler(logger, characterServ),
		NewMessageHandler(logger, messageServ),
		NewUploadHandler(logger, store),
		"",
		t.TempDir(),
	)

	return &testServer{
		router:     router,
		users:      users,
		characters: characters,
		messages:   messages,
		jwtServ:    jwtServ,
		authServ:   authServ,
	}
}

// registerUser crea un usuario y devuelve su token.
func (ts *testServer) registerUser(t *testing.T, email string) (domain.User, string) {
	t.Helper()
	user, err := ts.authServ.Register(context.Background(), service.RegisterInput{
		Email:    email,
		Password: "secret123",
		Name:     "테스트 사용자",
	})
	if err != nil {
		t.Fatalf("register user: %v", err)
	}
	token, err := ts.jwtServ.GenerateToken(user)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return user, token
}

func defaultTestCharacter() domain.Character {
	now := time.Now().UTC()
	return domain.Character{
		ID:        "c1",
		Name:      "친근한 AI 어시스턴트",
		Prompt:    "당신은 친근하고 도움이 되는 AI 어시스턴트입니다.",
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return resp
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return string(raw)
}

func longContent(n int) string {
	out := make([]rune, n)
	for i := range out {
		out[i] = '가'
	}
	return string(out)
}


package http

import (
	"net/http"
	"net/url"
	"testing"

	"charchat/internal/llm"
)

func TestListCharactersEndpoint(t *testing.T) {
	ts := newTestServer(t, &llm.MockClient{}, defaultTestCharacter())
	_, token := ts.registerUser(t, "user@example.com")

	// Crear un personaje propio.
	body := `{"name":"내 캐릭터","prompt":"사용자가 만든 캐릭터입니다."}`
	rec := doJSON(t, ts.router, http.MethodPost, "/api/characters", token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	// Sin token solo se ven los base.
	rec = doJSON(t, ts.router, http.MethodGet, "/api/characters", "", "")
	resp := decodeEnvelope(t, rec)
	list, _ := resp.Data.([]interface{})
	if len(list) != 1 {
		t.Fatalf("expected only default characters without auth, got %d", len(list))
	}

	// Con token se ven base y propios.
	rec = doJSON(t, ts.router, http.MethodGet, "/api/characters", token, "")
	resp = decodeEnvelope(t, rec)
	list, _ = resp.Data.([]interface{})
	if len(list) != 2 {
		t.Fatalf("expected defaults plus own characters, got %d", len(list))
	}
}

func TestCreateCharacterEndpoint_DuplicateName(t *testing.T) {
	ts := newTestServer(t, &llm.MockClient{})
	_, token := ts.registerUser(t, "user@example.com")

	body := `{"name":"내 캐릭터","prompt":"사용자가 만든 캐릭터입니다."}`
	if rec := doJSON(t, ts.router, http.MethodPost, "/api/characters", token, body); rec.Code != http.StatusCreated {
		t.Fatalf("first create failed: %d", rec.Code)
	}
	rec := doJSON(t, ts.router, http.MethodPost, "/api/characters", token, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on duplicate name, got %d", rec.Code)
	}
}

func TestCreateCharacterEndpoint_FieldBounds(t *testing.T) {
	ts := newTestServer(t, &llm.MockClient{})
	_, token := ts.registerUser(t, "user@example.com")

	cases := []string{
		`{"name":"a","prompt":"사용자가 만든 캐릭터입니다."}`,
		`{"name":"내 캐릭터","prompt":"short"}`,
		`{"name":"내 캐릭터"}`,
	}
	for _, body := range cases {
		rec := doJSON(t, ts.router, http.MethodPost, "/api/characters", token, body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rec.Code)
		}
	}
	if len(ts.characters.characters) != 0 {
		t.Fatalf("nothing must be persisted, got %d", len(ts.characters.characters))
	}

	// Un nombre de un carácter también se rechaza al editar.
	rec := doJSON(t, ts.router, http.MethodPut, "/api/characters/any", token, `{"name":"a"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for one-char name on update, got %d", rec.Code)
	}
}

func TestUpdateCharacterEndpoint_Guards(t *testing.T) {
	ts := newTestServer(t, &llm.MockClient{}, defaultTestCharacter())
	_, token := ts.registerUser(t, "user@example.com")
	_, otherToken := ts.registerUser(t, "other@example.com")

	// Los personajes base son inmutables.
	rec := doJSON(t, ts.router, http.MethodPut, "/api/characters/c1", token, `{"name":"새 이름"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for default character, got %d", rec.Code)
	}

	// Crear uno propio y tocarlo con otro usuario.
	rec = doJSON(t, ts.router, http.MethodPost, "/api/characters", token, `{"name":"내 캐릭터","prompt":"사용자가 만든 캐릭터입니다."}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d", rec.Code)
	}
	var createdID string
	for id, c := range ts.characters.characters {
		if !c.IsDefault {
			createdID = id
		}
	}

	rec = doJSON(t, ts.router, http.MethodPut, "/api/characters/"+createdID, otherToken, `{"name":"다른 이름"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign owner, got %d", rec.Code)
	}
	rec = doJSON(t, ts.router, http.MethodDelete, "/api/characters/"+createdID, otherToken, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign delete, got %d", rec.Code)
	}

	rec = doJSON(t, ts.router, http.MethodPut, "/api/characters/"+createdID, token, `{"name":"바뀐 이름"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner update, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestGetCharacterEndpoint_NotFound(t *testing.T) {
	ts := newTestServer(t, &llm.MockClient{})

	rec := doJSON(t, ts.router, http.MethodGet, "/api/characters/missing", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCheckNameEndpoint(t *testing.T) {
	ts := newTestServer(t, &llm.MockClient{})
	_, token := ts.registerUser(t, "user@example.com")

	if rec := doJSON(t, ts.router, http.MethodPost, "/api/characters", token, `{"name":"내캐릭터","prompt":"사용자가 만든 캐릭터입니다."}`); rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d", rec.Code)
	}

	rec := doJSON(t, ts.router, http.MethodGet, "/api/characters/check-name?name="+url.QueryEscape("내캐릭터"), token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	data, _ := resp.Data.(map[string]interface{})
	if available, _ := data["available"].(bool); available {
		t.Fatalf("expected name unavailable")
	}

	rec = doJSON(t, ts.router, http.MethodGet, "/api/characters/check-name", token, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without name, got %d", rec.Code)
	}
}

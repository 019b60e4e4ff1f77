package chat

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"twinchat/pkg/api"
	"twinchat/pkg/api/apitest"
	"twinchat/pkg/auth"
	"twinchat/pkg/config"
	"twinchat/pkg/forms"
)

type serviceFixture struct {
	srv     *apitest.Server
	auth    *auth.Session
	service *Service
	userID  string
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()
	srv := apitest.New(t)
	userID := srv.AddUser("Ada", "ada@example.com", "Secret123")

	client, err := api.NewClient(config.APIConfig{BaseURL: srv.URL, TimeoutSeconds: 5})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	session := auth.NewSession(auth.NewTokenStore(filepath.Join(t.TempDir(), "auth.json")))
	return serviceFixture{
		srv:     srv,
		auth:    session,
		service: NewService(session, client),
		userID:  userID,
	}
}

func (f serviceFixture) login(t *testing.T) {
	t.Helper()
	if err := f.service.Login(context.Background(), forms.Login{Email: "ada@example.com", Password: "Secret123"}); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
}

func TestService_LoginStoresToken(t *testing.T) {
	f := newServiceFixture(t)
	if f.service.LoggedIn() {
		t.Fatal("Expected logged out before login")
	}
	f.login(t)
	if !f.service.LoggedIn() {
		t.Fatal("Expected token stored after login")
	}
	if f.auth.Email() != "ada@example.com" {
		t.Fatalf("Expected email recorded, got %q", f.auth.Email())
	}
}

func TestService_LoginInvalid(t *testing.T) {
	f := newServiceFixture(t)
	err := f.service.Login(context.Background(), forms.Login{Email: "ada@example.com", Password: "nope"})
	if api.StatusCode(err) != http.StatusNotFound {
		t.Fatalf("Expected 404, got %v", err)
	}
	if f.service.LoggedIn() {
		t.Fatal("Failed login must not store a token")
	}
}

func TestService_Register(t *testing.T) {
	f := newServiceFixture(t)
	err := f.service.Register(context.Background(), forms.Register{
		Name:      "Grace",
		Email:     " grace@example.com ",
		Password:  "Secret123",
		Birthdate: "1906-12-09",
	})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if !f.srv.HasUser("grace@example.com") {
		t.Fatal("Expected trimmed email to be registered")
	}
	if f.service.LoggedIn() {
		t.Fatal("Register must not log in")
	}
}

func TestService_ProfileWithoutToken(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.service.Profile(context.Background())
	if !errors.Is(err, ErrLoggedOut) {
		t.Fatalf("Expected ErrLoggedOut, got %v", err)
	}
	if n := len(f.srv.Requests()); n != 0 {
		t.Fatalf("Expected no requests without a token, got %d", n)
	}
}

func TestService_ProfileUnauthorizedClearsToken(t *testing.T) {
	f := newServiceFixture(t)
	f.login(t)
	f.srv.RevokeTokens()

	_, err := f.service.Profile(context.Background())
	if !api.IsUnauthorized(err) {
		t.Fatalf("Expected unauthorized, got %v", err)
	}
	if f.service.LoggedIn() {
		t.Fatal("Expected token cleared after 401")
	}
}

func TestService_ProfileServerErrorKeepsToken(t *testing.T) {
	f := newServiceFixture(t)
	f.login(t)
	f.srv.Fail(http.MethodGet, "/users/profile", http.StatusInternalServerError)

	if _, err := f.service.Profile(context.Background()); err == nil {
		t.Fatal("Expected error")
	}
	if !f.service.LoggedIn() {
		t.Fatal("Non-401 failure must keep the token")
	}
}

func TestService_FullFlow(t *testing.T) {
	f := newServiceFixture(t)
	f.login(t)
	ctx := context.Background()
	f.srv.SetHistory(f.userID, "1", [2]string{"User", "hi"}, [2]string{"Assistant", "hello"})

	user, err := f.service.Profile(ctx)
	if err != nil {
		t.Fatalf("Profile() error: %v", err)
	}
	personas, err := f.service.Personas(ctx)
	if err != nil {
		t.Fatalf("Personas() error: %v", err)
	}

	s := NewSession()
	s.SetUser(user)
	s.SetPersonas(personas)
	if len(s.Personas()) != 3 {
		t.Fatalf("Expected supervisor plus 2 personas, got %+v", s.Personas())
	}

	f.srv.Reset()
	req, ok := s.Select("1")
	if !ok {
		t.Fatal("Expected history request")
	}
	msgs, err := f.service.History(req)
	s.ApplyHistory(req.Generation, msgs, err)
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}
	if got := f.srv.Count(http.MethodGet, "/api/v1/users/"+f.userID+"/chats/1"); got != 1 {
		t.Fatalf("Expected exactly one history fetch, got %d", got)
	}
	history := s.Messages()
	if len(history) != 2 || history[0].Role != RoleUser || history[1].Content != "hello" {
		t.Fatalf("Unexpected history %+v", history)
	}

	send, _ := s.BeginSend("how are you?")
	reply, err := f.service.Send(send)
	s.ApplyReply(send, reply, err)
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if got := s.Messages(); len(got) != 4 || got[3].Content != "echo: how are you?" {
		t.Fatalf("Unexpected transcript %+v", got)
	}
}

func TestService_SupervisorSend(t *testing.T) {
	f := newServiceFixture(t)
	f.login(t)

	s := NewSession()
	s.SetUser(User{ID: f.userID})
	f.srv.Reset()
	if _, ok := s.Select(SupervisorID); ok {
		t.Fatal("Supervisor must not fetch history")
	}

	req, _ := s.BeginSend("who should answer?")
	reply, err := f.service.Send(req)
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if reply.Role != RoleAssistant || reply.Content != "Ana: who should answer?" {
		t.Fatalf("Unexpected supervisor reply %+v", reply)
	}

	for _, r := range f.srv.Requests() {
		if r.Method == http.MethodGet {
			t.Fatalf("Unexpected GET %s", r.Path)
		}
	}
	if got := f.srv.Count(http.MethodPost, "/api/v1/users/"+f.userID+"/multi-agent"); got != 1 {
		t.Fatalf("Expected one multi-agent call, got %d", got)
	}
}

func TestService_SendFailureProducesSynthetic(t *testing.T) {
	f := newServiceFixture(t)
	f.login(t)
	f.srv.Fail(http.MethodPost, "/users/{userID}/chats/{personaID}", http.StatusInternalServerError)

	s := NewSession()
	s.SetUser(User{ID: f.userID})
	req, _ := s.Select("1")
	s.ApplyHistory(req.Generation, nil, nil)

	send, _ := s.BeginSend("hello")
	reply, err := f.service.Send(send)
	if err == nil {
		t.Fatal("Expected send error")
	}
	s.ApplyReply(send, reply, err)

	msgs := s.Messages()
	if len(msgs) != 2 || msgs[1].Content != FailureReply {
		t.Fatalf("Expected synthetic failure, got %+v", msgs)
	}
}

func TestService_TokenReadFreshEachCall(t *testing.T) {
	f := newServiceFixture(t)
	f.login(t)
	if err := f.service.Logout(); err != nil {
		t.Fatalf("Logout() error: %v", err)
	}

	_, err := f.service.History(HistoryRequest{Ctx: context.Background(), UserID: f.userID, PersonaID: "1"})
	if !errors.Is(err, ErrLoggedOut) {
		t.Fatalf("Expected ErrLoggedOut after logout, got %v", err)
	}
}

func TestService_PersonasFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.srv.Fail(http.MethodGet, "/personas/", http.StatusBadGateway)

	personas, err := f.service.Personas(context.Background())
	if err == nil || personas != nil {
		t.Fatalf("Expected failure with no personas, got %v %v", personas, err)
	}
}

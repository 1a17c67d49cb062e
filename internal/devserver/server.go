// Package devserver is an in-memory stand-in for the TaskFlow backend. It
// speaks the same REST envelope and SSE event stream, which makes it good
// enough for local development and end-to-end exercises without a real
// server.
package devserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/taskflow/client-go/internal/logging"
	"github.com/taskflow/client-go/internal/models"
)

type account struct {
	user     models.User
	password string
}

// Server holds the in-memory board state and the SSE hub.
type Server struct {
	mu       sync.Mutex
	accounts map[string]*account
	access   map[string]int64
	refresh  map[string]int64
	boards   []models.Board
	items    map[int64]*models.Item
	order    []int64
	props    map[int64]*models.PropertyDef
	comments map[int64][]models.Comment
	nextID   int64

	hub *hub
}

// New creates a server seeded with two accounts, one board and a handful of
// items.
func New() *Server {
	s := &Server{
		accounts: make(map[string]*account),
		access:   make(map[string]int64),
		refresh:  make(map[string]int64),
		items:    make(map[int64]*models.Item),
		props:    make(map[int64]*models.PropertyDef),
		comments: make(map[int64][]models.Comment),
		nextID:   1000,
		hub:      newHub(),
	}
	s.seed()
	return s
}

// Handler returns the HTTP handler rooted at /api.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/refresh", s.handleRefresh)
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/sse/subscribe", s.handleSubscribe)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/users/me", s.handleMe)
			r.Get("/boards", s.handleBoards)
			r.Get("/boards/{boardID}", s.handleBoard)
			r.Get("/boards/{boardID}/properties", s.handleProperties)
			r.Get("/boards/{boardID}/items", s.handleListItems)
			r.Post("/boards/{boardID}/items", s.handleCreateItem)
			r.Get("/boards/{boardID}/items/{itemID}", s.handleGetItem)
			r.Put("/boards/{boardID}/items/{itemID}", s.handleUpdateItem)
			r.Delete("/boards/{boardID}/items/{itemID}", s.handleDeleteItem)
			r.Put("/boards/{boardID}/items/{itemID}/complete", s.handleCompleteItem)
			r.Put("/boards/{boardID}/items/{itemID}/restore", s.handleRestoreItem)
			r.Get("/boards/{boardID}/items/{itemID}/comments", s.handleListComments)
			r.Post("/boards/{boardID}/items/{itemID}/comments", s.handleCreateComment)
		})
	})
	return r
}

// ListenAndServe runs the server until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	logging.Info("dev server listening", map[string]any{"addr": addr})
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) seed() {
	s.accounts["alice"] = &account{
		user:     models.User{ID: 1, Username: "alice", Name: "Alice Kim"},
		password: "password",
	}
	s.accounts["bob"] = &account{
		user:     models.User{ID: 2, Username: "bob", Name: "Bob Lee"},
		password: "password",
	}

	now := time.Now()
	s.boards = []models.Board{{
		ID: 1, Name: "Team Tasks", OwnerID: 1, OwnerName: "Alice Kim",
		DefaultView: models.ViewTable, CreatedAt: &now,
	}}

	s.props[1] = &models.PropertyDef{
		ID: 1, BoardID: 1, Name: "Estimate", Type: models.PropertyNumber, Visible: true, SortOrder: 1,
	}
	s.props[2] = &models.PropertyDef{
		ID: 2, BoardID: 1, Name: "Stage", Type: models.PropertySelect, Visible: true, SortOrder: 2,
		Options: []models.PropertyOption{
			{ID: 1, PropertyID: 2, Name: "Design"},
			{ID: 2, PropertyID: 2, Name: "Build"},
			{ID: 3, PropertyID: 2, Name: "Review"},
		},
	}

	titles := []string{"Draft project plan", "Review API design", "Fix login timeout"}
	for i, title := range titles {
		id := int64(i + 1)
		s.items[id] = &models.Item{
			ID: id, BoardID: 1, Title: title,
			Status: models.StatusNotStarted, Priority: models.PriorityNormal,
			CreatedAt: &now, CreatedBy: 1, CreatedByName: "Alice Kim",
		}
		s.order = append(s.order, id)
	}
}

func (s *Server) nextItemID() int64 {
	s.nextID++
	return s.nextID
}

// requireAuth resolves the bearer token to a user and stashes it in the
// request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		user, ok := s.userForToken(token)
		if !ok {
			writeEnvelope(w, http.StatusUnauthorized, false, nil, "authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

func (s *Server) userForToken(token string) (models.User, bool) {
	if token == "" {
		return models.User{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.access[token]
	if !ok {
		return models.User{}, false
	}
	for _, acct := range s.accounts {
		if acct.user.ID == id {
			return acct.user, true
		}
	}
	return models.User{}, false
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeEnvelope(w, http.StatusBadRequest, false, nil, "malformed request")
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[body.Username]
	if !ok || acct.password != body.Password {
		s.mu.Unlock()
		writeEnvelope(w, http.StatusUnauthorized, false, nil, "invalid credentials")
		return
	}
	access := uuid.NewString()
	refresh := uuid.NewString()
	s.access[access] = acct.user.ID
	s.refresh[refresh] = acct.user.ID
	s.mu.Unlock()

	writeEnvelope(w, http.StatusOK, true, map[string]any{
		"accessToken":  access,
		"refreshToken": refresh,
		"user":         acct.user,
	}, "")
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeEnvelope(w, http.StatusBadRequest, false, nil, "malformed request")
		return
	}

	s.mu.Lock()
	userID, ok := s.refresh[body.RefreshToken]
	if !ok {
		s.mu.Unlock()
		writeEnvelope(w, http.StatusUnauthorized, false, nil, "refresh token rejected")
		return
	}
	access := uuid.NewString()
	s.access[access] = userID
	s.mu.Unlock()

	writeEnvelope(w, http.StatusOK, true, map[string]any{"accessToken": access}, "")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	s.mu.Lock()
	delete(s.access, token)
	s.mu.Unlock()
	writeEnvelope(w, http.StatusOK, true, nil, "")
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, http.StatusOK, true, userFrom(r.Context()), "")
}

func (s *Server) handleBoards(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	boards := append([]models.Board(nil), s.boards...)
	s.mu.Unlock()
	writeEnvelope(w, http.StatusOK, true, boards, "")
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	boardID := pathID(r, "boardID")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.boards {
		if b.ID == boardID {
			writeEnvelope(w, http.StatusOK, true, b, "")
			return
		}
	}
	writeEnvelope(w, http.StatusNotFound, false, nil, "board not found")
}

func (s *Server) handleProperties(w http.ResponseWriter, r *http.Request) {
	boardID := pathID(r, "boardID")
	s.mu.Lock()
	var defs []models.PropertyDef
	for _, def := range s.props {
		if def.BoardID == boardID && !def.Deleted {
			defs = append(defs, *def)
		}
	}
	s.mu.Unlock()
	writeEnvelope(w, http.StatusOK, true, defs, "")
}

func writeEnvelope(w http.ResponseWriter, status int, success bool, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := map[string]any{"success": success, "data": data}
	if message != "" {
		resp["message"] = message
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error("failed to write response", err, nil)
	}
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return r.URL.Query().Get("token")
}

func pathID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id
}

package devserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/taskflow/client-go/internal/logging"
	"github.com/taskflow/client-go/internal/models"
)

type ctxKey int

const userKey ctxKey = 0

func withUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func userFrom(ctx context.Context) models.User {
	user, _ := ctx.Value(userKey).(models.User)
	return user
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	boardID := pathID(r, "boardID")
	includeCompleted := r.URL.Query().Get("includeCompleted") == "true"
	includeDeleted := r.URL.Query().Get("includeDeleted") == "true"

	s.mu.Lock()
	var content []models.Item
	for _, id := range s.order {
		item := s.items[id]
		if item == nil || item.BoardID != boardID {
			continue
		}
		if item.IsCompleted() && !includeCompleted {
			continue
		}
		if item.IsDeleted() && !includeDeleted {
			continue
		}
		content = append(content, item.Clone())
	}
	s.mu.Unlock()

	writeEnvelope(w, http.StatusOK, true, models.Page[models.Item]{
		Content:       content,
		TotalElements: len(content),
		TotalPages:    1,
		Size:          len(content),
	}, "")
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	itemID := pathID(r, "itemID")
	s.mu.Lock()
	item, ok := s.items[itemID]
	var out models.Item
	if ok {
		out = item.Clone()
	}
	s.mu.Unlock()
	if !ok {
		writeEnvelope(w, http.StatusNotFound, false, nil, "item not found")
		return
	}
	writeEnvelope(w, http.StatusOK, true, out, "")
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	boardID := pathID(r, "boardID")
	user := userFrom(r.Context())

	var body struct {
		Title       string            `json:"title"`
		Description string            `json:"description"`
		Status      models.ItemStatus `json:"status"`
		Priority    models.Priority   `json:"priority"`
		GroupID     int64             `json:"groupId"`
		DueDate     *time.Time        `json:"dueDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Title == "" {
		writeEnvelope(w, http.StatusBadRequest, false, nil, "title is required")
		return
	}
	if body.Status == "" {
		body.Status = models.StatusNotStarted
	}
	if body.Priority == "" {
		body.Priority = models.PriorityNormal
	}

	now := time.Now()
	s.mu.Lock()
	item := &models.Item{
		ID: s.nextItemID(), BoardID: boardID,
		Title: body.Title, Description: body.Description,
		Status: body.Status, Priority: body.Priority,
		GroupID: body.GroupID, DueDate: body.DueDate,
		CreatedAt: &now, CreatedBy: user.ID, CreatedByName: user.Name,
	}
	s.items[item.ID] = item
	s.order = append([]int64{item.ID}, s.order...)
	out := item.Clone()
	s.mu.Unlock()

	s.hub.broadcast(string(models.EventItemCreated), boardID, out, user)
	writeEnvelope(w, http.StatusOK, true, out, "")
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	boardID := pathID(r, "boardID")
	itemID := pathID(r, "itemID")
	user := userFrom(r.Context())

	var patch models.ItemPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeEnvelope(w, http.StatusBadRequest, false, nil, "malformed request")
		return
	}

	out, ok := s.mutateItem(itemID, user, func(item *models.Item) {
		*item = patch.Apply(*item)
	})
	if !ok {
		writeEnvelope(w, http.StatusNotFound, false, nil, "item not found")
		return
	}

	s.hub.broadcast(string(models.EventItemUpdated), boardID, out, user)
	writeEnvelope(w, http.StatusOK, true, out, "")
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	boardID := pathID(r, "boardID")
	itemID := pathID(r, "itemID")
	user := userFrom(r.Context())

	now := time.Now()
	out, ok := s.mutateItem(itemID, user, func(item *models.Item) {
		item.Status = models.StatusDeleted
		item.DeletedAt = &now
	})
	if !ok {
		writeEnvelope(w, http.StatusNotFound, false, nil, "item not found")
		return
	}

	s.hub.broadcast(string(models.EventItemDeleted), boardID, out, user)
	writeEnvelope(w, http.StatusOK, true, nil, "")
}

func (s *Server) handleCompleteItem(w http.ResponseWriter, r *http.Request) {
	boardID := pathID(r, "boardID")
	itemID := pathID(r, "itemID")
	user := userFrom(r.Context())

	now := time.Now()
	out, ok := s.mutateItem(itemID, user, func(item *models.Item) {
		item.Status = models.StatusCompleted
		item.CompletedAt = &now
	})
	if !ok {
		writeEnvelope(w, http.StatusNotFound, false, nil, "item not found")
		return
	}

	s.hub.broadcast(string(models.EventItemUpdated), boardID, out, user)
	writeEnvelope(w, http.StatusOK, true, out, "")
}

func (s *Server) handleRestoreItem(w http.ResponseWriter, r *http.Request) {
	boardID := pathID(r, "boardID")
	itemID := pathID(r, "itemID")
	user := userFrom(r.Context())

	out, ok := s.mutateItem(itemID, user, func(item *models.Item) {
		item.Status = models.StatusNotStarted
		item.CompletedAt = nil
		item.DeletedAt = nil
	})
	if !ok {
		writeEnvelope(w, http.StatusNotFound, false, nil, "item not found")
		return
	}

	s.hub.broadcast(string(models.EventItemUpdated), boardID, out, user)
	writeEnvelope(w, http.StatusOK, true, out, "")
}

// mutateItem applies fn to the stored record, stamps the audit fields, and
// returns a copy.
func (s *Server) mutateItem(itemID int64, user models.User, fn func(*models.Item)) (models.Item, bool) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[itemID]
	if !ok {
		return models.Item{}, false
	}
	fn(item)
	item.UpdatedAt = &now
	item.UpdatedBy = user.ID
	item.UpdatedByName = user.Name
	return item.Clone(), true
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	itemID := pathID(r, "itemID")
	s.mu.Lock()
	comments := append([]models.Comment(nil), s.comments[itemID]...)
	s.mu.Unlock()
	writeEnvelope(w, http.StatusOK, true, comments, "")
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	boardID := pathID(r, "boardID")
	itemID := pathID(r, "itemID")
	user := userFrom(r.Context())

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Content == "" {
		writeEnvelope(w, http.StatusBadRequest, false, nil, "content is required")
		return
	}

	now := time.Now()
	s.mu.Lock()
	item, ok := s.items[itemID]
	if !ok {
		s.mu.Unlock()
		writeEnvelope(w, http.StatusNotFound, false, nil, "item not found")
		return
	}
	comment := models.Comment{
		ID: s.nextItemID(), ItemID: itemID, Content: body.Content,
		CreatedAt: &now, CreatedBy: user.ID, CreatedByName: user.Name,
	}
	s.comments[itemID] = append(s.comments[itemID], comment)
	item.CommentCount++
	s.mu.Unlock()

	s.hub.broadcast(string(models.EventCommentCreated), boardID, comment, user)
	writeEnvelope(w, http.StatusOK, true, comment, "")
}

// handleSubscribe serves the SSE stream. Authentication rides on the token
// query parameter because EventSource-style clients cannot set headers.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	user, ok := s.userForToken(r.URL.Query().Get("token"))
	if !ok {
		writeEnvelope(w, http.StatusUnauthorized, false, nil, "authentication required")
		return
	}
	boardID := pathQueryID(r, "boardId")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeEnvelope(w, http.StatusInternalServerError, false, nil, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	client := s.hub.subscribe(boardID)
	defer s.hub.unsubscribe(client)
	logging.Debug("stream subscribed", map[string]any{"user": user.Username, "board": boardID})

	hello, _ := json.Marshal(map[string]any{
		"type":      string(models.EventConnection),
		"boardId":   boardID,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	writeFrame(w, string(models.EventConnection), hello)
	flusher.Flush()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			hb, _ := json.Marshal(map[string]any{
				"type":      string(models.EventHeartbeat),
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			writeFrame(w, string(models.EventHeartbeat), hb)
			flusher.Flush()
		case ev := <-client.ch:
			writeFrame(w, ev.name, ev.payload)
			flusher.Flush()
		}
	}
}

func writeFrame(w http.ResponseWriter, name string, payload []byte) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, payload)
}

func pathQueryID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	return id
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/wersching/riddlegate/internal/chat"
	"go.uber.org/zap"
)

type Handler struct {
	svc    *chat.Service
	logger *zap.Logger
}

func NewHandler(svc *chat.Service, logger *zap.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger,
	}
}

type deleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Routes wires the three room operations plus a liveness probe onto a
// mux and wraps it with request logging and CORS handling. Anything not
// matched by the API patterns is served from staticDir, where the
// frontend lives.
func (h *Handler) Routes(staticDir string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /{roomId}/chat", h.HandleChat)
	mux.HandleFunc("GET /rooms", h.ListRooms)
	mux.HandleFunc("DELETE /rooms/{roomId}", h.DeleteRoom)
	mux.HandleFunc("GET /healthz", h.Health)
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	return h.withRequestLog(withCORS(mux))
}

// HandleChat runs one chat turn. The prompt arrives as a query or form
// parameter and the reply goes back as plain text, mirroring the
// browser client this service was built for.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	roomID, err := strconv.ParseInt(r.PathValue("roomId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid room ID", http.StatusBadRequest)
		return
	}

	userPrompt := r.FormValue("userPrompt")
	if userPrompt == "" {
		http.Error(w, "Parameter 'userPrompt' is required", http.StatusBadRequest)
		return
	}

	reply, err := h.svc.Chat(r.Context(), roomID, userPrompt)
	if err != nil {
		h.logger.Error("Chat turn failed",
			zap.Int64("roomId", roomID),
			zap.Error(err))
		if errors.Is(err, chat.ErrInference) {
			http.Error(w, "Inference backend failed", http.StatusBadGateway)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to process message: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(reply)); err != nil {
		h.logger.Error("Failed to write reply", zap.Error(err))
	}
}

func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms := h.svc.ListRooms()

	h.logger.Debug("Retrieved rooms", zap.Int("count", len(rooms)))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rooms); err != nil {
		h.logger.Error("Failed to encode rooms", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
}

func (h *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := strconv.ParseInt(r.PathValue("roomId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid room ID", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if !h.svc.DeleteRoom(roomID) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(deleteResponse{Success: false, Message: "room not found"})
		return
	}
	json.NewEncoder(w).Encode(deleteResponse{Success: true})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// withRequestLog tags every request with an id and logs it on the way in.
func (h *Handler) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		h.logger.Info("Handling request",
			zap.String("requestId", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path))
		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r)
	})
}

// withCORS lets the separately served frontend call this API from
// another origin and answers its preflight requests.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

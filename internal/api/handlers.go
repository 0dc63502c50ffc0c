package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/catouberos/transit-forecast/internal/gtfsrt"
	"github.com/catouberos/transit-forecast/internal/handler"
	"github.com/catouberos/transit-forecast/internal/models"
	"github.com/catouberos/transit-forecast/internal/queues"
)

type APIResponse[T any] struct {
	Data T `json:"data"`
}

type healthResponse struct {
	Status string `json:"status"`
	Stops  int    `json:"stops"`
	Routes int    `json:"routes"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Cannot encode response", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status: "ok",
		Stops:  len(s.store.Stops()),
		Routes: len(s.store.Routes()),
	}
	if resp.Stops == 0 || resp.Routes == 0 {
		resp.Status = "loading"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStops(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Error(w, "Missing query parameter q", http.StatusBadRequest)
		return
	}

	if !s.store.EnsureLoaded(r.Context()) {
		http.Error(w, "Data not available", http.StatusServiceUnavailable)
		return
	}

	stops := s.store.SearchStops(query)
	if stops == nil {
		stops = []models.Stop{}
	}
	writeJSON(w, http.StatusOK, APIResponse[[]models.Stop]{Data: stops})
}

func (s *Server) findStop(w http.ResponseWriter, r *http.Request) (models.Stop, bool) {
	if !s.store.EnsureLoaded(r.Context()) {
		http.Error(w, "Data not available", http.StatusServiceUnavailable)
		return models.Stop{}, false
	}

	stop, ok := s.store.FindStopByID(models.ID(mux.Vars(r)["id"]))
	if !ok {
		http.Error(w, "Stop not found", http.StatusNotFound)
		return models.Stop{}, false
	}
	return stop, true
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	stop, ok := s.findStop(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, APIResponse[models.Stop]{Data: stop})
}

func (s *Server) handleStopForecast(w http.ResponseWriter, r *http.Request) {
	stop, ok := s.findStop(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(s.forecaster.StopForecast(r.Context(), stop)))
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	if !s.store.EnsureLoaded(r.Context()) {
		http.Error(w, "Data not available", http.StatusServiceUnavailable)
		return
	}

	var routes []models.Route
	if title := strings.TrimSpace(r.URL.Query().Get("title")); title != "" {
		routes = s.store.FindRoutesByTitle(title)
	} else {
		routes = s.store.Routes()
	}
	if routes == nil {
		routes = []models.Route{}
	}
	writeJSON(w, http.StatusOK, APIResponse[[]models.Route]{Data: routes})
}

func (s *Server) handlePlatformFeed(w http.ResponseWriter, r *http.Request) {
	platformID := models.ID(mux.Vars(r)["id"])

	entries, err := s.provider.FetchForecast(r.Context(), platformID)
	if err != nil {
		slog.Error("Error fetching platform forecast", "platform", platformID, "error", err)
		http.Error(w, "Upstream error", http.StatusBadGateway)
		return
	}

	humanReadable := r.URL.Query().Get("format") == "text"
	if humanReadable {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "application/x-protobuf")
	}

	if err := gtfsrt.Dump(w, gtfsrt.Feed(platformID, entries, s.now()), humanReadable); err != nil {
		slog.Error("Cannot write feed", "platform", platformID, "error", err)
	}
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var msg queues.QueryMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "Invalid query", http.StatusBadRequest)
		return
	}

	// user_id is not trusted over HTTP; admin commands only run from the
	// message queue.
	reply := s.queries.Handle(r.Context(), handler.Query{
		ChatID: msg.ChatID,
		Text:   msg.Text,
	})

	writeJSON(w, http.StatusOK, queues.ReplyMessage{
		ChatID:   reply.ChatID,
		Messages: reply.Messages,
	})
}

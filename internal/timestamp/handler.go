package timestamp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vidmark/vidmark/internal/httputil"
	"github.com/vidmark/vidmark/internal/message"
	"github.com/vidmark/vidmark/internal/validate"
	"github.com/vidmark/vidmark/internal/videokey"
)

// Observer is told about every message the handler answers.
type Observer interface {
	ObserveMessage(msgType, result string)
}

// Handler serves the service over HTTP: the message endpoint plus a REST
// mirror of the same operations.
type Handler struct {
	svc      *Service
	mux      *message.Mux
	observer Observer
}

func NewHandler(svc *Service) *Handler {
	mux := message.NewMux()
	svc.Register(mux)
	return &Handler{svc: svc, mux: mux}
}

func (h *Handler) SetObserver(o Observer) {
	h.observer = o
}

// Messages answers one message envelope. The status follows the failure kind.
// Bodies that do not decode still get an envelope, echoing the requestId
// when one can be read.
func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	body, err := httputil.ReadBody(w, r)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, httputil.ErrBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		httputil.WriteJSON(w, status, message.Fail(message.KindInvalidRequest, err.Error()))
		return
	}

	var req message.Request
	if err := json.Unmarshal(body, &req); err != nil {
		resp := message.Fail(message.KindInvalidRequest, "invalid message")
		resp.RequestID = requestIDOf(body)
		httputil.WriteJSON(w, http.StatusBadRequest, resp)
		return
	}

	resp := h.mux.Handle(r.Context(), req)
	h.observe(req.Type, resp)
	httputil.WriteJSON(w, resp.Status(), resp)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	key, ok := requireKey(w, r)
	if !ok {
		return
	}
	records, err := h.svc.Get(r.Context(), key)
	if err != nil {
		writeFailure(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	key, ok := requireKey(w, r)
	if !ok {
		return
	}
	var rec Record
	if err := httputil.DecodeJSON(w, r, &rec); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid timestamp data")
		return
	}
	saved, err := h.svc.Save(r.Context(), key, rec)
	h.observeErr(message.TypeSaveTimestamp, err)
	if err != nil {
		writeFailure(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, saved)
}

func (h *Handler) DeleteAt(w http.ResponseWriter, r *http.Request) {
	key, ok := requireKey(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "index must be an integer")
		return
	}
	err = h.svc.Delete(r.Context(), key, index)
	h.observeErr(message.TypeDeleteTimestamp, err)
	if err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	key, ok := requireKey(w, r)
	if !ok {
		return
	}
	err := h.svc.DeleteByID(r.Context(), key, chi.URLParam(r, "id"))
	h.observeErr(message.TypeDeleteTimestampByID, err)
	if err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Keys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.svc.Keys(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]string{"keys": keys})
}

// VideoKey derives the storage key for a page URL.
func (h *Handler) VideoKey(w http.ResponseWriter, r *http.Request) {
	pageURL := r.URL.Query().Get("url")
	if pageURL == "" {
		httputil.WriteError(w, http.StatusBadRequest, "url is required")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"url":       pageURL,
		"key":       videokey.Derive(pageURL),
		"watchPage": videokey.IsWatchPage(pageURL),
	})
}

func (h *Handler) Limits(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, validate.FieldLimits())
}

func (h *Handler) observe(t message.Type, resp message.Response) {
	if h.observer == nil {
		return
	}
	result := "ok"
	if !resp.Success {
		result = string(resp.Kind)
	}
	h.observer.ObserveMessage(string(t), result)
}

func (h *Handler) observeErr(t message.Type, err error) {
	if err == nil {
		h.observe(t, message.Response{Success: true})
		return
	}
	h.observe(t, failure(err))
}

func requireKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := r.URL.Query().Get("url")
	if key == "" {
		httputil.WriteError(w, http.StatusBadRequest, "url is required")
		return "", false
	}
	return key, true
}

func writeFailure(w http.ResponseWriter, err error) {
	resp := failure(err)
	httputil.WriteError(w, resp.Status(), resp.Error)
}

func requestIDOf(body []byte) string {
	var envelope struct {
		RequestID string `json:"requestId"`
	}
	if json.Unmarshal(body, &envelope) != nil {
		return ""
	}
	return envelope.RequestID
}

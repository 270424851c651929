package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/yuin/goldmark"

	"trip_itinerary_planner/config"
	"trip_itinerary_planner/depart"
	"trip_itinerary_planner/generator"
	"trip_itinerary_planner/itinerary"
	"trip_itinerary_planner/ogp"
	"trip_itinerary_planner/planner"
	"trip_itinerary_planner/share"
)

const llmCallTimeout = 60 * time.Second

type Server struct {
	agent      *generator.Agent
	cfg        config.Config
	requireKey bool
	store      *sessionStore
	fetcher    *ogp.Fetcher
	departIdx  *depart.Index
}

// session owns one background fill run over an outlined itinerary.
type session struct {
	id        string
	createdAt time.Time
	input     generator.OutlineRequest

	mu     sync.Mutex
	orch   *planner.Orchestrator
	cancel context.CancelFunc
}

func (s *session) orchestrator() *planner.Orchestrator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orch
}

// swap replaces the running orchestrator, stopping the previous one.
func (s *session) swap(orch *planner.Orchestrator, cancel context.CancelFunc) {
	s.mu.Lock()
	old, oldCancel := s.orch, s.cancel
	s.orch, s.cancel = orch, cancel
	s.mu.Unlock()
	if old != nil {
		old.Stop()
	}
	if oldCancel != nil {
		oldCancel()
	}
}

func (s *session) stop() {
	s.mu.Lock()
	orch, cancel := s.orch, s.cancel
	s.mu.Unlock()
	if orch != nil {
		orch.Stop()
	}
	if cancel != nil {
		cancel()
	}
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func newStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*session)}
}

func (s *sessionStore) set(id string, sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sess
}

func (s *sessionStore) get(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *sessionStore) delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// New wires the HTTP layer. requireKey should be false only when the agent
// runs against a mock model.
func New(agent *generator.Agent, cfg config.Config, requireKey bool) (*Server, error) {
	if agent == nil {
		return nil, errors.New("generator agent required")
	}
	idx, err := depart.Load()
	if err != nil {
		return nil, err
	}
	return &Server{
		agent:      agent,
		cfg:        cfg,
		requireKey: requireKey,
		store:      newStore(),
		fetcher:    ogp.NewFetcher(),
		departIdx:  idx,
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", s.handleGenerate)
	mux.HandleFunc("/api/fill", s.handleFill)
	mux.HandleFunc("/api/ogp", s.handleOGP)
	mux.HandleFunc("/api/depart", s.handleDepart)
	mux.HandleFunc("/api/share/decode", s.handleShareDecode)
	mux.HandleFunc("/api/sessions", s.handleSessionCreate)
	mux.HandleFunc("/api/sessions/", s.handleSessionByID)
	return logMiddleware(mux)
}

// --- Handlers ---

type errorResp struct {
	Error string `json:"error"`
}

// validateOutlineRequest mirrors the form's required fields. The messages
// are user-facing and shown verbatim in the UI.
func validateOutlineRequest(req generator.OutlineRequest) string {
	if strings.TrimSpace(req.Depart.Type) == "" || strings.TrimSpace(req.Depart.Value) == "" {
		return "depart.type と depart.value は必須です"
	}
	if strings.TrimSpace(req.StartDate) == "" {
		return "startDate は必須です"
	}
	if req.Destination.IsEmpty() {
		return "destination は必須です（テキスト or OGP配列）"
	}
	return ""
}

func (s *Server) missingKey() bool {
	return s.requireKey && (s.cfg.LLM == nil || s.cfg.LLM.APIKey == "")
}

const missingKeyMsg = "OPENAI_API_KEY が未設定です（環境変数または設定ファイルに設定してください）"

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req generator.OutlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, errorResp{Error: "Invalid JSON in request body"})
		return
	}
	if msg := validateOutlineRequest(req); msg != "" {
		writeJSONStatus(w, http.StatusBadRequest, errorResp{Error: msg})
		return
	}
	if s.missingKey() {
		writeJSONStatus(w, http.StatusInternalServerError, errorResp{Error: missingKeyMsg})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), llmCallTimeout)
	defer cancel()
	it, err := s.agent.Outline(ctx, req)
	if err != nil {
		logMalformed("generate", err)
		writeJSONStatus(w, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	writeJSON(w, map[string]*itinerary.Itinerary{"itinerary": it})
}

var fillKinds = map[itinerary.ItemKind]bool{
	itinerary.KindVisit: true,
	itinerary.KindFood:  true,
	itinerary.KindHotel: true,
	itinerary.KindMove:  true,
}

func (s *Server) handleFill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req generator.FillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, errorResp{Error: "Invalid JSON"})
		return
	}
	if !fillKinds[req.Kind] {
		writeJSONStatus(w, http.StatusBadRequest, errorResp{Error: "kind must be one of visit|food|hotel|move"})
		return
	}
	if strings.TrimSpace(req.AreaTitle) == "" {
		writeJSONStatus(w, http.StatusBadRequest, errorResp{Error: "areaTitle is required (phase1 day/title etc.)"})
		return
	}
	if s.missingKey() {
		writeJSONStatus(w, http.StatusInternalServerError, errorResp{Error: missingKeyMsg})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), llmCallTimeout)
	defer cancel()
	item, err := s.agent.Fill(ctx, req)
	if err != nil {
		logMalformed("fill", err)
		writeJSONStatus(w, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	// Empty results are kept renderable rather than rejected.
	if strings.TrimSpace(item.Title) == "" {
		item.Title = req.OutlineTitle
		if item.Title == "" {
			item.Title = "未設定"
		}
	}
	writeJSON(w, map[string]itinerary.Item{"item": item})
}

type ogpReq struct {
	URLs []string `json:"urls"`
}

func (s *Server) handleOGP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req ogpReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, errorResp{Error: "Invalid JSON"})
		return
	}
	cards := s.fetcher.Resolve(r.Context(), req.URLs)
	if cards == nil {
		cards = []ogp.Card{}
	}
	writeJSON(w, map[string][]ogp.Card{"results": cards})
}

func (s *Server) handleDepart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "station"
	}
	candidates := s.departIdx.Search(mode, r.URL.Query().Get("q"))
	if candidates == nil {
		candidates = []string{}
	}
	writeJSON(w, map[string][]string{"candidates": candidates})
}

type shareDecodeReq struct {
	Token string `json:"token"`
}

func (s *Server) handleShareDecode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req shareDecodeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, errorResp{Error: "Invalid JSON"})
		return
	}
	it, err := share.Decode(req.Token)
	if err != nil {
		writeJSONStatus(w, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}
	writeJSON(w, map[string]*itinerary.Itinerary{"itinerary": it})
}

// --- Sessions ---

type sessionStateResp struct {
	SessionID string               `json:"session_id"`
	Itinerary *itinerary.Itinerary `json:"itinerary"`
	Warnings  []string             `json:"warnings"`
	Progress  planner.Progress     `json:"progress"`
}

func sessionState(sess *session) sessionStateResp {
	orch := sess.orchestrator()
	warnings := orch.Warnings()
	if warnings == nil {
		warnings = []string{}
	}
	return sessionStateResp{
		SessionID: sess.id,
		Itinerary: orch.Snapshot(),
		Warnings:  warnings,
		Progress:  orch.Progress(),
	}
}

// outlineAndStart runs Phase 1 synchronously, then kicks off the Phase 2
// fills in the background.
func (s *Server) outlineAndStart(ctx context.Context, req generator.OutlineRequest) (*planner.Orchestrator, context.CancelFunc, error) {
	outlineCtx, cancel := context.WithTimeout(ctx, llmCallTimeout)
	defer cancel()
	it, err := s.agent.Outline(outlineCtx, req)
	if err != nil {
		return nil, nil, err
	}

	orch := planner.New(s.agent, it, planner.HintsFromRequest(req))
	runCtx, runCancel := context.WithCancel(context.Background())
	orch.Start(runCtx)
	return orch, runCancel, nil
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req generator.OutlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, errorResp{Error: "Invalid JSON in request body"})
		return
	}
	if msg := validateOutlineRequest(req); msg != "" {
		writeJSONStatus(w, http.StatusBadRequest, errorResp{Error: msg})
		return
	}
	if s.missingKey() {
		writeJSONStatus(w, http.StatusInternalServerError, errorResp{Error: missingKeyMsg})
		return
	}

	orch, cancel, err := s.outlineAndStart(r.Context(), req)
	if err != nil {
		logMalformed("sessions", err)
		writeJSONStatus(w, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}

	sess := &session{
		id:        newSessionID(),
		createdAt: time.Now(),
		input:     req,
		orch:      orch,
		cancel:    cancel,
	}
	s.store.set(sess.id, sess)
	writeJSON(w, sessionState(sess))
}

type renameReq struct {
	TripName string `json:"tripName"`
}

func (s *Server) handleSessionByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		http.NotFound(w, r)
		return
	}
	sess, ok := s.store.get(id)
	if !ok {
		writeJSONStatus(w, http.StatusNotFound, errorResp{Error: "session not found"})
		return
	}

	switch action {
	case "":
		s.handleSessionRoot(w, r, sess)
	case "share":
		s.handleSessionShare(w, r, sess)
	case "export":
		s.handleSessionExport(w, r, sess)
	case "regenerate":
		s.handleSessionRegenerate(w, r, sess)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleSessionRoot(w http.ResponseWriter, r *http.Request, sess *session) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, sessionState(sess))
	case http.MethodPatch:
		var req renameReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONStatus(w, http.StatusBadRequest, errorResp{Error: "Invalid JSON"})
			return
		}
		if strings.TrimSpace(req.TripName) == "" {
			writeJSONStatus(w, http.StatusBadRequest, errorResp{Error: "tripName is required"})
			return
		}
		sess.orchestrator().RenameTrip(req.TripName)
		writeJSON(w, sessionState(sess))
	case http.MethodDelete:
		sess.stop()
		s.store.delete(sess.id)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSessionShare(w http.ResponseWriter, r *http.Request, sess *session) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	token, err := share.Encode(sess.orchestrator().Snapshot())
	if err != nil {
		writeJSONStatus(w, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	writeJSON(w, map[string]string{"token": token})
}

func (s *Server) handleSessionExport(w http.ResponseWriter, r *http.Request, sess *session) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	md := sess.orchestrator().Snapshot().ToMarkdown()
	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		fmt.Fprint(w, md)
		return
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		writeJSONStatus(w, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleSessionRegenerate reruns the whole pipeline from the stored form
// input, replacing the session's itinerary.
func (s *Server) handleSessionRegenerate(w http.ResponseWriter, r *http.Request, sess *session) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.missingKey() {
		writeJSONStatus(w, http.StatusInternalServerError, errorResp{Error: missingKeyMsg})
		return
	}
	orch, cancel, err := s.outlineAndStart(r.Context(), sess.input)
	if err != nil {
		logMalformed("regenerate", err)
		writeJSONStatus(w, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	sess.swap(orch, cancel)
	writeJSON(w, sessionState(sess))
}

// --- Helpers ---

func newSessionID() string {
	return strings.ReplaceAll(time.Now().Format("20060102T150405.000000000"), ".", "")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// logMalformed dumps the head of the raw model output for parse failures.
func logMalformed(route string, err error) {
	var malformed *generator.MalformedResponseError
	if errors.As(err, &malformed) {
		log.Printf("[%s] model output not parseable, raw head: %s", route, malformed.RawHead(300))
		return
	}
	log.Printf("[%s] %v", route, err)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}

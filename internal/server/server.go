package server

import (
	"net/http"
	"strings"

	"nano-banana/internal/config"
	"nano-banana/internal/game"
)

type Server struct {
	engine *game.Engine
	blobs  BlobStore
	cfg    config.Config
	ws     *wsHub
}

func New(engine *game.Engine, blobs BlobStore, cfg config.Config) *Server {
	s := &Server{
		engine: engine,
		blobs:  blobs,
		cfg:    cfg,
	}
	s.ws = newWSHub(engine)
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{code}", s.handleGetSession)
	mux.HandleFunc("POST /api/sessions/{code}/join", s.handleJoin)
	mux.HandleFunc("POST /api/sessions/{code}/claim-admin", s.handleClaimAdmin)
	mux.HandleFunc("POST /api/sessions/{code}/transfer-captain", s.handleTransferCaptain)
	mux.HandleFunc("POST /api/sessions/{code}/kick", s.handleKick)
	mux.HandleFunc("POST /api/sessions/{code}/rounds", s.handleStartRound)
	mux.HandleFunc("POST /api/sessions/{code}/timer", s.handleStartTimer)
	mux.HandleFunc("POST /api/sessions/{code}/submissions", s.handleSubmission)
	mux.HandleFunc("POST /api/sessions/{code}/votes", s.handleVote)
	mux.HandleFunc("POST /api/sessions/{code}/end-voting", s.handleEndVoting)
	mux.HandleFunc("POST /api/sessions/{code}/next-round", s.handleNextRound)
	mux.HandleFunc("POST /api/sessions/{code}/reset", s.handleReset)
	mux.HandleFunc("POST /api/sessions/{code}/end", s.handleEndGame)
	mux.HandleFunc("POST /api/sessions/{code}/complete-reset", s.handleCompleteReset)
	mux.HandleFunc("POST /api/sessions/{code}/categories", s.handleImportCategories)
	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("GET /ws/sessions/{code}", s.handleWebsocket)
	if dir, ok := s.blobs.(*DiskStore); ok {
		prefix := strings.TrimSuffix(dir.BaseURL(), "/") + "/"
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(dir.Dir()))))
	}
	return mux
}

func sessionCode(r *http.Request) string {
	return strings.ToUpper(strings.TrimSpace(r.PathValue("code")))
}

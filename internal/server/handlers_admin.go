package server

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"nano-banana/internal/game"
)

func (s *Server) handleEndVoting(w http.ResponseWriter, r *http.Request) {
	code := sessionCode(r)
	var req adminActionRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.engine.RequireAdmin(code, req.PlayerID); err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	if err := s.engine.EndVotingEarly(code); err != nil {
		if errors.Is(err, game.ErrNoVotes) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to end voting")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"phase": game.PhaseResults})
}

func (s *Server) handleNextRound(w http.ResponseWriter, r *http.Request) {
	code := sessionCode(r)
	var req adminActionRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.engine.RequireAdmin(code, req.PlayerID); err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	if err := s.engine.NextRound(code); err != nil {
		if errors.Is(err, game.ErrInsufficientPlayers) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to advance round")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	code := sessionCode(r)
	var req adminActionRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.engine.RequireAdmin(code, req.PlayerID); err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	if err := s.engine.ResetGame(code); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reset game")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"phase": game.PhaseLobby})
}

func (s *Server) handleEndGame(w http.ResponseWriter, r *http.Request) {
	code := sessionCode(r)
	var req adminActionRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.engine.RequireAdmin(code, req.PlayerID); err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	if err := s.engine.EndGame(code); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to end game")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"phase": game.PhaseGameOver})
}

func (s *Server) handleCompleteReset(w http.ResponseWriter, r *http.Request) {
	code := sessionCode(r)
	var req adminActionRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.engine.CompleteReset(code, req.PlayerID); err != nil {
		if errors.Is(err, game.ErrNotAuthorized) {
			writeError(w, http.StatusForbidden, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to reset session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleImportCategories(w http.ResponseWriter, r *http.Request) {
	code := sessionCode(r)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	playerID := r.FormValue("player_id")
	file, _, err := r.FormFile("file")
	if err != nil || playerID == "" {
		writeError(w, http.StatusBadRequest, "missing file or player_id")
		return
	}
	defer file.Close()

	rows, err := game.ParseCategoriesCSV(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	inserted, err := s.engine.ImportCategories(code, playerID, rows)
	if err != nil {
		if errors.Is(err, game.ErrNotAuthorized) {
			writeError(w, http.StatusForbidden, err.Error())
			return
		}
		// A failed batch can still leave earlier batches imported.
		log.Printf("category import failed session_code=%s inserted=%d error=%v", code, inserted, err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":    "import failed partway through",
			"inserted": inserted,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"inserted": inserted,
		"parsed":   len(rows),
	})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	tier := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("tier")))
	if tier != "" && tier != game.TierEasy && tier != game.TierMedium && tier != game.TierHard {
		writeError(w, http.StatusBadRequest, "tier must be easy, medium or hard")
		return
	}
	rows, err := s.engine.Categories(tier)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		out = append(out, map[string]any{
			"round_tier":  row.RoundTier,
			"image_descr": row.ImageDescr,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}

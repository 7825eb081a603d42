package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"nano-banana/internal/game"

	"github.com/google/uuid"
)

type createSessionRequest struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Icon     string `json:"icon"`
}

type joinRequest struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Icon     string `json:"icon"`
}

type claimAdminRequest struct {
	PlayerID string `json:"player_id"`
}

type transferRequest struct {
	PlayerID string `json:"player_id"`
	TargetID string `json:"target_id"`
}

type kickRequest struct {
	PlayerID string `json:"player_id"`
	TargetID string `json:"target_id"`
}

type startRoundRequest struct {
	PlayerID string `json:"player_id"`
	Tier     string `json:"tier"`
}

type adminActionRequest struct {
	PlayerID string `json:"player_id"`
}

type voteRequest struct {
	PlayerID     string `json:"player_id"`
	SubmissionID string `json:"submission_id"`
}

// newPlayerID matches the original client's time-plus-random id shape.
func newPlayerID() string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("p-%d-%s", time.Now().UnixMilli(), suffix)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	playerID := req.PlayerID
	if playerID == "" {
		playerID = newPlayerID()
	}
	code, err := s.engine.CreateSession(playerID)
	if err != nil {
		if errors.Is(err, game.ErrSessionCodesExhausted) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	icon := req.Icon
	if icon == "" {
		icon = game.Icons[0]
	}
	player := game.PlayerRow{
		ID:          playerID,
		SessionCode: code,
		Name:        strings.TrimSpace(req.Name),
		Icon:        icon,
	}
	if err := s.engine.AddPlayer(player); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to add captain")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"session_code": code,
		"player_id":    playerID,
		"icon":         icon,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	code := sessionCode(r)
	exists, err := s.engine.VerifySession(code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	state, err := s.engine.State(code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	writeJSON(w, http.StatusOK, snapshot(state))
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	code := sessionCode(r)
	var req joinRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	exists, err := s.engine.VerifySession(code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	playerID := req.PlayerID
	if playerID == "" {
		playerID = newPlayerID()
	}
	state, err := s.engine.State(code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	icon := req.Icon
	if icon == "" {
		icon = game.Icons[len(state.Players)%len(game.Icons)]
	}
	player := game.PlayerRow{
		ID:          playerID,
		SessionCode: code,
		Name:        name,
		Icon:        icon,
	}
	if err := s.engine.AddPlayer(player); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to join session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"session_code": code,
		"player_id":    playerID,
		"icon":         icon,
	})
}

func (s *Server) handleClaimAdmin(w http.ResponseWriter, r *http.Request) {
	code := sessionCode(r)
	var req claimAdminRequest
	if err := readJSON(r.Body, &req); err != nil || req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "player_id is required")
		return
	}
	claimed, err := s.engine.ClaimAdmin(req.PlayerID, code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to claim captain")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"claimed": claimed})
}

func (s *Server) handleTransferCaptain(w http.ResponseWriter, r *http.Request) {
	code := sessionCode(r)
	var req transferRequest
	if err := readJSON(r.Body, &req); err != nil || req.TargetID == "" {
		writeError(w, http.StatusBadRequest, "target_id is required")
		return
	}
	if err := s.engine.RequireAdmin(code, req.PlayerID); err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	if err := s.engine.TransferCaptain(req.TargetID, code); err != nil {
		if errors.Is(err, game.ErrPlayerNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to transfer captain")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"admin_id": req.TargetID})
}

func (s *Server) handleKick(w http.ResponseWriter, r *http.Request) {
	code := sessionCode(r)
	var req kickRequest
	if err := readJSON(r.Body, &req); err != nil || req.TargetID == "" {
		writeError(w, http.StatusBadRequest, "target_id is required")
		return
	}
	if err := s.engine.RequireAdmin(code, req.PlayerID); err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	if err := s.engine.DeletePlayer(req.TargetID, code); err != nil {
		if errors.Is(err, game.ErrCannotDeleteAdmin) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to remove player")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"removed": req.TargetID})
}

func (s *Server) handleStartRound(w http.ResponseWriter, r *http.Request) {
	code := sessionCode(r)
	var req startRoundRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tier := strings.ToLower(strings.TrimSpace(req.Tier))
	if tier != game.TierEasy && tier != game.TierMedium && tier != game.TierHard {
		writeError(w, http.StatusBadRequest, "tier must be easy, medium or hard")
		return
	}
	if err := s.engine.RequireAdmin(code, req.PlayerID); err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	if err := s.engine.StartRound(tier, code); err != nil {
		if errors.Is(err, game.ErrInsufficientPlayers) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to start round")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"tier": tier})
}

func (s *Server) handleStartTimer(w http.ResponseWriter, r *http.Request) {
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
	if err := s.engine.StartTimer(code); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to start timer")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"phase": game.PhaseCreating})
}

func (s *Server) handleSubmission(w http.ResponseWriter, r *http.Request) {
	code := sessionCode(r)
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	playerID := r.FormValue("player_id")
	file, header, err := r.FormFile("file")
	if err != nil || playerID == "" {
		writeError(w, http.StatusBadRequest, "missing file or player_id")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	name := submissionBlobName(playerID, contentType)
	imageURL, err := s.blobs.Save(name, contentType, file)
	if err != nil {
		log.Printf("blob save failed session_code=%s player_id=%s error=%v", code, playerID, err)
		writeError(w, http.StatusInternalServerError, "failed to store image")
		return
	}
	if err := s.engine.RecordSubmission(playerID, imageURL, code); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to record submission")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"image_url": imageURL,
	})
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	code := sessionCode(r)
	var req voteRequest
	if err := readJSON(r.Body, &req); err != nil || req.PlayerID == "" || req.SubmissionID == "" {
		writeError(w, http.StatusBadRequest, "player_id and submission_id are required")
		return
	}
	if err := s.engine.SubmitVote(req.PlayerID, req.SubmissionID, code); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to record vote")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

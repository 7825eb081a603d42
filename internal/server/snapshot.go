package server

import (
	"sort"

	"nano-banana/internal/game"
)

// snapshot flattens a composed session state into the JSON view every
// subscribed client re-renders from.
func snapshot(state *game.State) map[string]any {
	players := make([]map[string]any, 0, len(state.Players))
	for _, id := range state.PlayerIDs() {
		p := state.Players[id]
		players = append(players, map[string]any{
			"id":        p.ID,
			"name":      p.Name,
			"icon":      p.Icon,
			"score":     p.Score,
			"joined_at": p.JoinedAt.UnixMilli(),
		})
	}

	submissions := make([]map[string]any, 0, len(state.Submissions))
	for _, sub := range state.Submissions {
		submissions = append(submissions, map[string]any{
			"id":          sub.ID,
			"player_id":   sub.PlayerID,
			"image_url":   sub.ImageURL,
			"uploaded_at": sub.UploadedAt.UnixMilli(),
			"votes":       append([]string{}, sub.Votes...),
		})
	}
	sort.Slice(submissions, func(i, j int) bool {
		return submissions[i]["player_id"].(string) < submissions[j]["player_id"].(string)
	})

	view := map[string]any{
		"session_code":       state.Code,
		"admin_id":           state.AdminID,
		"phase":              state.Phase,
		"current_round":      state.CurrentRound,
		"round_number":       state.RoundNumber,
		"selected_players":   append([]string{}, state.SelectedPlayers...),
		"timer_duration":     state.TimerDuration,
		"round_winners":      append([]string{}, state.RoundWinners...),
		"easy_round_players": append([]string{}, state.EasyRoundPlayers...),
		"category_descr":     state.CategoryDescr,
		"players":            players,
		"submissions":        submissions,
	}
	if state.TimerRunning() {
		view["timer_started_at"] = state.TimerStartedAt.UnixMilli()
	} else {
		view["timer_started_at"] = nil
	}
	return view
}

package server

import (
	"net/http"

	"nano-banana/internal/web"

	"github.com/a-h/templ"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	templ.Handler(web.Home()).ServeHTTP(w, r)
}

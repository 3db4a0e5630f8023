package server

import (
	_ "embed"
	"net/http"
)

// The thin client is embedded so a deployed binary is self-contained.
//
//go:embed live.js
var liveJS []byte

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.Write(liveJS)
}

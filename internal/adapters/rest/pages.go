package rest

import (
	_ "embed"
	"net/http"
)

//go:embed web/index.html
var indexHTML []byte

// IndexPage страница чата
func IndexPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(indexHTML)
}

func Health(w http.ResponseWriter, _ *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

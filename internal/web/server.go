package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"net/http"

	"hostdeps/internal/emit"
	"hostdeps/internal/graph"
	"hostdeps/internal/model"
)

//go:embed static/*
var staticFS embed.FS

type server struct {
	snap  *emit.Snapshot
	bins  []*model.Binary
	store *graph.Store
}

// StartServer serves the finished dependency graph on the given port.
func StartServer(snap *emit.Snapshot, bins []*model.Binary, store *graph.Store, port string) {
	s := &server{snap: snap, bins: bins, store: store}

	mux := http.NewServeMux()

	subFS, _ := fs.Sub(staticFS, "static")
	mux.Handle("/", http.FileServer(http.FS(subFS)))

	mux.HandleFunc("/api/graph", s.handleGraph)
	mux.HandleFunc("/api/tree", s.handleTree)

	fmt.Printf("Serving dependency graph at http://localhost:%s\n", port)

	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatal(err)
	}
}

func (s *server) handleGraph(w http.ResponseWriter, r *http.Request) {
	response := struct {
		*emit.Snapshot
		Version string `json:"version"`
	}{
		Snapshot: s.snap,
		Version:  model.Version,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleTree renders one binary's dependency tree as plain text.
func (s *server) handleTree(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "path is required", 400)
		return
	}

	for _, bin := range s.bins {
		if bin.Path == path {
			w.Header().Set("Content-Type", "text/plain")
			emit.Tree(w, bin, s.store)
			return
		}
	}
	http.Error(w, "unknown binary", 404)
}

package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"

	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/df07/go-scene-raytracer/pkg/loaders"
	"github.com/df07/go-scene-raytracer/pkg/scene"
)

// Server handles web requests for the raytracer
type Server struct {
	port      int
	scenesDir string
	logger    *slog.Logger
}

// NewServer creates a new web server serving built-in scenes and the JSON scenes in scenesDir
func NewServer(port int, scenesDir string, logger *slog.Logger) *Server {
	return &Server{port: port, scenesDir: scenesDir, logger: core.LoggerOrNop(logger)}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene   string `json:"scene"`   // Scene ID from /api/scenes
	Width   int    `json:"width"`   // Image width; height follows the scene aspect ratio
	Samples int    `json:"samples"` // Rays per pixel
	Bounces int    `json:"bounces"` // Maximum bounces per ray
	Seed    int64  `json:"seed"`
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("Starting web server", "url", "http://localhost"+addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the scenes that can be rendered
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := scene.ListAllScenes(s.scenesDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, scenes)
}

// handleSceneConfig returns the description of one scene as scene-file JSON
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	desc, err := s.loadDescription(r.URL.Query().Get("scene"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := desc.Encode(w); err != nil {
		s.logger.Warn("Failed to write scene config", "error", err)
	}
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: query.Get("scene")}
	if req.Scene == "" {
		req.Scene = "cornell"
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 400, 1, 2000); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(query, "samples", 50, 1, 10000); err != nil {
		return nil, err
	}
	if req.Bounces, err = parseIntParam(query, "bounces", 50, 1, 1000); err != nil {
		return nil, err
	}
	seed, err := parseIntParam(query, "seed", 0, 0, 1<<30)
	if err != nil {
		return nil, err
	}
	req.Seed = int64(seed)
	return req, nil
}

// parseIntParam parses an integer query parameter with a default and bounds
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	raw := values.Get(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	if value < min || value > max {
		return 0, fmt.Errorf("%s must be between %d and %d", key, min, max)
	}
	return value, nil
}

// loadDescription resolves a scene ID from /api/scenes. File scenes are only served
// from the scenes directory.
func (s *Server) loadDescription(id string) (*loaders.SceneFile, error) {
	scenes, err := scene.ListAllScenes(s.scenesDir)
	if err != nil {
		return nil, err
	}
	for _, info := range scenes {
		if info.ID == id {
			return scene.Load(info.ID)
		}
	}
	return nil, fmt.Errorf("unknown scene: %q", id)
}

// buildScene loads and builds a scene with a BVH seeded from seed
func (s *Server) buildScene(id string, seed int64, logger *slog.Logger) (*scene.Scene, error) {
	desc, err := s.loadDescription(id)
	if err != nil {
		return nil, err
	}
	return scene.Build(desc, scene.BuildOptions{
		Random: rand.New(rand.NewSource(seed)),
		Logger: logger,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

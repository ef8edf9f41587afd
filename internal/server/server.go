// Package server implements the bestiary preview server: a small chi service
// that renders registered creatures as HTML or JSON statblocks, with a
// pluggable cache in front of the render pipeline.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pellig/statblock/pkg/cache"
	"github.com/pellig/statblock/pkg/engine"
	"github.com/pellig/statblock/pkg/errors"
	"github.com/pellig/statblock/pkg/linkify"
	"github.com/pellig/statblock/pkg/monster"
	"github.com/pellig/statblock/pkg/render/htmlsink"
	"github.com/pellig/statblock/pkg/render/jsonsink"
	"github.com/pellig/statblock/pkg/statblock"
)

// Config wires a Server.
type Config struct {
	Bestiary *Bestiary
	Layouts  *statblock.Registry

	// Cache fronts rendered artifacts. Defaults to the null cache.
	Cache cache.Cache

	Logger *log.Logger
}

// Server renders bestiary creatures over HTTP.
type Server struct {
	bestiary *Bestiary
	layouts  *statblock.Registry
	cache    cache.Cache
	logger   *log.Logger
}

// New creates a server. A nil bestiary starts empty.
func New(cfg Config) *Server {
	if cfg.Bestiary == nil {
		cfg.Bestiary = NewBestiary()
	}
	if cfg.Layouts == nil {
		cfg.Layouts = statblock.NewRegistry()
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewNullCache()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Server{
		bestiary: cfg.Bestiary,
		layouts:  cfg.Layouts,
		cache:    cfg.Cache,
		logger:   cfg.Logger,
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Get("/creatures", s.handleList)
	r.Get("/creatures/{name}", s.handleCreature)
	r.Get("/layouts", s.handleLayouts)
	return r
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	s.logger.Info("preview server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "creatures": s.bestiary.Len()})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	names := s.bestiary.Names()
	out := make([]map[string]string, 0, len(names))
	for _, name := range names {
		out = append(out, map[string]string{"name": name, "slug": Slug(name)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"creatures": out})
}

func (s *Server) handleLayouts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"layouts": s.layouts.Names()})
}

func (s *Server) handleCreature(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	m, ok := s.bestiary.Get(name)
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeMonsterNotFound, "creature %q is not in the bestiary", name))
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "html"
	}
	opts := engine.Options{
		Layout:      r.URL.Query().Get("layout"),
		ColumnWidth: r.URL.Query().Get("width"),
	}
	if cols := r.URL.Query().Get("columns"); cols != "" {
		n, err := strconv.Atoi(cols)
		if err != nil || n < 1 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "columns must be a positive integer"))
			return
		}
		opts.Columns = n
	}

	recordData, err := json.Marshal(m)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "serialize record"))
		return
	}
	key := cache.RenderKey(cache.Hash(recordData), cache.RenderKeyOpts{
		Format:      format,
		Layout:      opts.Layout,
		Columns:     opts.Columns,
		ColumnWidth: opts.ColumnWidth,
	})
	if data, hit, err := s.cache.Get(r.Context(), key); err == nil && hit {
		writeArtifact(w, format, data)
		return
	}

	data, err := s.render(r.Context(), m, format, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.cache.Set(r.Context(), key, data, cache.TTLRender); err != nil {
		s.logger.Warn("cache write failed", "key", key, "err", err)
	}
	writeArtifact(w, format, data)
}

// render runs the pipeline for one request. HTML measures against the
// resolved column width; JSON uses nominal heights.
func (s *Server) render(ctx context.Context, m monster.Monster, format string, opts engine.Options) ([]byte, error) {
	switch format {
	case "html":
		width := htmlsink.ParseWidth(firstNonEmpty(m.ColumnWidth(""), opts.ColumnWidth), 400)
		eng, err := engine.New(engine.Config{
			Producer: htmlsink.NewProducer(),
			Measurer: htmlsink.NewMeasurer(width),
			Layouts:  s.layouts,
			Linkify:  linkify.Wiki{},
			Logger:   s.logger,
		})
		if err != nil {
			return nil, err
		}
		result, err := eng.Build(ctx, m, opts)
		if err != nil {
			return nil, err
		}
		return htmlsink.Page(m.Name(), result.Columns, result.ColumnWidth)

	case "json":
		eng, err := engine.New(engine.Config{
			Producer: jsonsink.NewProducer(),
			Measurer: jsonsink.Measurer{},
			Layouts:  s.layouts,
			Logger:   s.logger,
		})
		if err != nil {
			return nil, err
		}
		result, err := eng.Build(ctx, m, opts)
		if err != nil {
			return nil, err
		}
		return jsonsink.Marshal(result.PassID, result.Layout, result.ColumnWidth, result.SplitHeight, result.Columns)

	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "format %q (must be html or json)", format)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeMonsterNotFound, errors.ErrCodeLayoutNotFound, errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidLayout, errors.ErrCodeInvalidMonster:
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(errors.GetCode(err)),
	})
}

func writeArtifact(w http.ResponseWriter, format string, data []byte) {
	if format == "json" {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

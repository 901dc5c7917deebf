package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"

	"orgreport/internal/config"
	apierrors "orgreport/internal/errors"
	"orgreport/internal/infrastructure"
	"orgreport/internal/services"
)

// uploadRequest triggers a full report run for one scan folder. ShareWith
// overrides the stored extra recipients for this run; the browser extension
// sends it camel-cased.
type uploadRequest struct {
	Folder           string   `json:"folder"`
	NoUpload         bool     `json:"no_upload,omitempty"`
	UpdateLoginsOnly bool     `json:"update_logins_only,omitempty"`
	ShareWith        []string `json:"shareWith,omitempty"`
}

// Bind implements render.Binder.
func (u *uploadRequest) Bind(r *http.Request) error {
	u.Folder = strings.TrimSpace(u.Folder)
	if u.Folder == "" {
		return apierrors.ErrMissingParameter
	}
	return nil
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	req := &uploadRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Server.UploadTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.runner.Run(ctx, services.Options{
		Folder:           req.Folder,
		NoUpload:         req.NoUpload,
		UpdateLoginsOnly: req.UpdateLoginsOnly,
		ShareExtras:      req.ShareWith,
	})
	s.metrics.UploadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.UploadsTotal.WithLabelValues("error").Inc()
		s.logger.ErrorContext(ctx, "upload failed",
			slog.String("folder", req.Folder),
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.UploadFailedError(err))
		return
	}

	s.metrics.UploadsTotal.WithLabelValues("ok").Inc()
	render.Status(r, http.StatusOK)
	render.JSON(w, r, result)
}

// loginAnalysisRequest triggers a deferred login analysis run.
type loginAnalysisRequest struct {
	Folder string `json:"folder"`
}

// Bind implements render.Binder.
func (l *loginAnalysisRequest) Bind(r *http.Request) error {
	l.Folder = strings.TrimSpace(l.Folder)
	if l.Folder == "" {
		return apierrors.ErrMissingParameter
	}
	return nil
}

// handleRunLoginAnalysis accepts immediately and runs the analysis in the
// background after the configured delay, giving the user time to finish the
// LoginHistory download the analysis will pick up.
func (s *Server) handleRunLoginAnalysis(w http.ResponseWriter, r *http.Request) {
	req := &loginAnalysisRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	traceID := infrastructure.GetTraceID(r.Context())
	delay := s.cfg.Server.LoginAnalysisDelay
	go func() {
		ctx := infrastructure.WithTraceID(context.Background(), traceID)
		time.Sleep(delay)
		if err := s.runner.RunLoginAnalysis(ctx, req.Folder); err != nil {
			s.metrics.LoginAnalysesTotal.WithLabelValues("error").Inc()
			s.logger.ErrorContext(ctx, "login analysis failed",
				slog.String("folder", req.Folder),
				slog.String("error", err.Error()))
			return
		}
		s.metrics.LoginAnalysesTotal.WithLabelValues("ok").Inc()
		s.logger.InfoContext(ctx, "login analysis completed",
			slog.String("folder", req.Folder))
	}()

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]any{
		"status":   "scheduled",
		"folder":   req.Folder,
		"delay":    delay.String(),
		"trace_id": traceID,
	})
}

// sharePrefsRequest saves the share recipient preferences.
type sharePrefsRequest struct {
	Primary     string   `json:"primary"`
	PrimaryName string   `json:"primary_name,omitempty"`
	Extra       []string `json:"extra,omitempty"`
	ExtraNames  []string `json:"extra_names,omitempty"`
}

// Bind implements render.Binder.
func (p *sharePrefsRequest) Bind(r *http.Request) error {
	p.Primary = strings.TrimSpace(p.Primary)
	if p.Primary == "" && len(p.Extra) == 0 {
		return apierrors.ErrMissingParameter
	}
	return nil
}

func (s *Server) handleSaveSharePrefs(w http.ResponseWriter, r *http.Request) {
	req := &sharePrefsRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	prefs := config.SharePrefs{
		Primary:     req.Primary,
		PrimaryName: req.PrimaryName,
		Extra:       req.Extra,
		ExtraNames:  req.ExtraNames,
	}
	if err := config.SaveSharePrefs(s.cfg.Google.SharePrefsPath, prefs); err != nil {
		render.Render(w, r, apierrors.NewWithDetails(
			http.StatusInternalServerError, "SAVE_FAILED", "could not save share preferences", err.Error()))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]string{"status": "saved"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

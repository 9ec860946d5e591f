package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/fantasytools/fpl-agent/internal/errors"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	RequestID string
	Error     string
}

// ResultPageData contains data for rendering the post-submit page
type ResultPageData struct {
	Success bool
	Message string
}

// LoginPageHandler displays the credential hand-off form
// (GET /login/{requestID})
func (s *Server) LoginPageHandler() (http.HandlerFunc, error) {
	loginTmpl, err := ParseTemplate("login.html")
	if err != nil {
		return nil, err
	}

	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.PathValue("requestID")
		if _, err := s.sessions.Get(requestID); err != nil {
			log.Warn().Str("request_id", requestID).Err(err).Msg("login page for unknown request")
			http.Error(w, "Unknown or expired login link", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		data := LoginPageData{RequestID: requestID, Error: r.URL.Query().Get("error")}
		if err := loginTmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render login template")
			http.Error(w, "Failed to render login page", http.StatusInternalServerError)
		}
	}, nil
}

// SubmitHandler receives the credential artifact from the browser and
// hands it to the session store (POST /auth/submit/{requestID}). The
// artifact flows one way: in.
func (s *Server) SubmitHandler() (http.HandlerFunc, error) {
	resultTmpl, err := ParseTemplate("result.html")
	if err != nil {
		return nil, err
	}

	render := func(w http.ResponseWriter, status int, data ResultPageData) {
		w.Header().Set("Content-Type", contentTypeHTML)
		w.WriteHeader(status)
		if err := resultTmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render result template")
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.PathValue("requestID")
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		artifact := r.PostFormValue("token")

		err := s.sessions.CompleteLogin(requestID, artifact)
		switch {
		case err == nil:
			render(w, http.StatusOK, ResultPageData{
				Success: true,
				Message: "Connected! You can now close this tab and tell the assistant you are done.",
			})
		case apperrors.Is(err, apperrors.ErrInvalidArtifact):
			log.Warn().Str("request_id", requestID).Msg("rejected malformed credential artifact")
			render(w, http.StatusBadRequest, ResultPageData{
				Message: "That does not look like a valid FPL access token. Please copy it again.",
			})
		case apperrors.Is(err, apperrors.ErrSessionExpired), apperrors.Is(err, apperrors.ErrSessionNotFound):
			render(w, http.StatusGone, ResultPageData{
				Message: "This login link has expired. Ask the assistant for a new one.",
			})
		default:
			log.Err(err).Str("request_id", requestID).Msg("login completion failed")
			render(w, http.StatusConflict, ResultPageData{
				Message: "Login could not be completed. Ask the assistant for a new link.",
			})
		}
	}, nil
}

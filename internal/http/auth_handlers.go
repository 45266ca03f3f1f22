package httpx

import (
	"mime"
	"net/http"
	"strings"

	"github.com/splax/shiftwatch/internal/apperr"
)

type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// readCredentials accepts a JSON body or an OAuth2 password form (username, password).
func (r *Router) readCredentials(w http.ResponseWriter, req *http.Request) (credentials, error) {
	var creds credentials
	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		req.Body = http.MaxBytesReader(w, req.Body, maxBodyBytes)
		if err := req.ParseForm(); err != nil {
			return creds, apperr.Validation("body", "invalid form body")
		}
		creds.Email = strings.TrimSpace(req.PostForm.Get("username"))
		creds.Password = req.PostForm.Get("password")
		if creds.Email == "" {
			return creds, apperr.Validation("username", "field is required")
		}
		if creds.Password == "" {
			return creds, apperr.Validation("password", "field is required")
		}
		return creds, nil
	default:
		err := r.decodeJSON(w, req, &creds)
		return creds, err
	}
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	creds, err := r.readCredentials(w, req)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	token, err := r.auth.Login(req.Context(), creds.Email, creds.Password)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, token)
}

func (r *Router) handleAdminLogin(w http.ResponseWriter, req *http.Request) {
	creds, err := r.readCredentials(w, req)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	token, err := r.auth.AdminLogin(req.Context(), creds.Email, creds.Password)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, token)
}

func (r *Router) handleAdminAPIKey(w http.ResponseWriter, req *http.Request) {
	creds, err := r.readCredentials(w, req)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	issued, err := r.auth.IssueAPIKey(req.Context(), creds.Email, creds.Password)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, issued)
}

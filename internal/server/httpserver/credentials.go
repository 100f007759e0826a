package httpserver

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/server/models"
	"github.com/go-chi/chi/v5"
)

type credentialRequest struct {
	Title       string `json:"title"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

type credentialPatchRequest struct {
	ID          string  `json:"id"`
	Title       *string `json:"title"`
	Username    *string `json:"username"`
	Password    *string `json:"password"`
	URL         *string `json:"url"`
	Description *string `json:"description"`
}

type deleteRequest struct {
	ID string `json:"id"`
}

type credentialResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Username    string    `json:"username"`
	Password    string    `json:"password"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type dashboardResponse struct {
	TotalPasswords int                  `json:"totalPasswords"`
	Passwords      []credentialResponse `json:"passwords"`
}

type exportRequest struct {
	Passphrase string `json:"passphrase"`
}

type exportResponse struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
	Count     int       `json:"count"`
}

func toCredentialResponse(c *models.Credential) credentialResponse {
	return credentialResponse{
		ID:          c.ID,
		Title:       c.Title,
		Username:    c.Username,
		Password:    c.Secret,
		URL:         c.URL,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toCredentialResponses(list []*models.Credential) []credentialResponse {
	out := make([]credentialResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCredentialResponse(c))
	}
	return out
}

func (s *Server) listCredentials(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	list, err := s.credentials.List(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCredentialResponses(list))
}

func (s *Server) createCredential(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	var req credentialRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	c, err := s.credentials.Create(r.Context(), id, models.CredentialInput{
		Title:       req.Title,
		Username:    req.Username,
		Secret:      req.Password,
		URL:         req.URL,
		Description: req.Description,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Credential created", "credential_id", c.ID)
	writeJSON(w, http.StatusCreated, toCredentialResponse(c))
}

// updateCredential takes the record id from the path or, failing that, from
// the body. Both present and different is rejected.
func (s *Server) updateCredential(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	var req credentialPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	recordID := chi.URLParam(r, "id")
	switch {
	case recordID == "":
		recordID = req.ID
	case req.ID != "" && req.ID != recordID:
		s.writeError(w, r, common.NewValidationError("id in body does not match path", "id"))
		return
	}

	c, err := s.credentials.Update(r.Context(), id, recordID, models.CredentialPatch{
		Title:       req.Title,
		Username:    req.Username,
		Secret:      req.Password,
		URL:         req.URL,
		Description: req.Description,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCredentialResponse(c))
}

func (s *Server) deleteCredential(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	recordID := chi.URLParam(r, "id")
	if recordID == "" {
		var req deleteRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		recordID = req.ID
	}

	if err := s.credentials.Delete(r.Context(), id, recordID); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Credential deleted", "credential_id", recordID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "credential deleted"})
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	sum, err := s.credentials.Summary(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		TotalPasswords: sum.Total,
		Passwords:      toCredentialResponses(sum.Recent),
	})
}

func (s *Server) exportCredentials(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	var req exportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	exp, err := s.exports.Export(r.Context(), id, req.Passphrase)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Vault exported", "key", exp.Key, "count", exp.Count)
	writeJSON(w, http.StatusOK, exportResponse{URL: exp.URL, Key: exp.Key, ExpiresAt: exp.ExpiresAt, Count: exp.Count})
}

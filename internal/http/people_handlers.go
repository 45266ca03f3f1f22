package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splax/shiftwatch/internal/service/admin"
	"github.com/splax/shiftwatch/internal/service/employee"
	"github.com/splax/shiftwatch/internal/service/team"
)

func (r *Router) handleAdminCreate(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	var in admin.CreateInput
	if err := r.decodeJSON(w, req, &in); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	created, err := r.admins.Create(req.Context(), p, in)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (r *Router) handleAdminList(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	page, err := queryPage(req)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	admins, err := r.admins.List(req.Context(), p, page)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, admins)
}

func (r *Router) handleAdminGet(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	found, err := r.admins.Get(req.Context(), p, chi.URLParam(req, "id"))
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (r *Router) handleAdminUpdate(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	var in admin.UpdateInput
	if err := r.decodeJSON(w, req, &in); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	updated, err := r.admins.Update(req.Context(), p, chi.URLParam(req, "id"), in)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleAdminDelete echoes the removed record.
func (r *Router) handleAdminDelete(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	id := chi.URLParam(req, "id")
	found, err := r.admins.Get(req.Context(), p, id)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	if err := r.admins.Delete(req.Context(), p, id); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (r *Router) handleEmployeeCreate(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	var in employee.CreateInput
	if err := r.decodeJSON(w, req, &in); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	created, err := r.employees.Create(req.Context(), p, in)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (r *Router) handleEmployeeList(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	page, err := queryPage(req)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	employees, err := r.employees.List(req.Context(), p, page)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, employees)
}

func (r *Router) handleEmployeeGet(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	found, err := r.employees.Get(req.Context(), p, chi.URLParam(req, "id"))
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (r *Router) handleEmployeeUpdate(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	var in employee.UpdateInput
	if err := r.decodeJSON(w, req, &in); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	updated, err := r.employees.Update(req.Context(), p, chi.URLParam(req, "id"), in)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (r *Router) handleEmployeeSetPassword(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	var in struct {
		Password string `json:"password" validate:"required,min=6"`
	}
	if err := r.decodeJSON(w, req, &in); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	id := chi.URLParam(req, "id")
	if err := r.employees.SetPassword(req.Context(), p, id, in.Password); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	found, err := r.employees.Get(req.Context(), p, id)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (r *Router) handleEmployeeDeactivate(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	deactivated, err := r.employees.Deactivate(req.Context(), p, chi.URLParam(req, "id"))
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, deactivated)
}

func (r *Router) handleTeamCreate(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	var in team.CreateInput
	if err := r.decodeJSON(w, req, &in); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	created, err := r.teams.Create(req.Context(), p, in)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (r *Router) handleTeamList(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	page, err := queryPage(req)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	teams, err := r.teams.List(req.Context(), p, page)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

func (r *Router) handleTeamGet(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	found, err := r.teams.Get(req.Context(), p, chi.URLParam(req, "id"))
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

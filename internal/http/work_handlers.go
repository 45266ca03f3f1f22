package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splax/shiftwatch/internal/service/project"
	"github.com/splax/shiftwatch/internal/service/task"
)

func (r *Router) handleProjectCreate(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	var in project.CreateInput
	if err := r.decodeJSON(w, req, &in); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	created, err := r.projects.Create(req.Context(), p, in)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (r *Router) handleProjectList(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	page, err := queryPage(req)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	projects, err := r.projects.List(req.Context(), p, page)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (r *Router) handleProjectGet(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	found, err := r.projects.Get(req.Context(), p, chi.URLParam(req, "id"))
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (r *Router) handleProjectUpdate(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	var in project.UpdateInput
	if err := r.decodeJSON(w, req, &in); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	updated, err := r.projects.Update(req.Context(), p, chi.URLParam(req, "id"), in)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (r *Router) handleProjectDelete(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	deleted, err := r.projects.Delete(req.Context(), p, chi.URLParam(req, "id"))
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, deleted)
}

func (r *Router) handleTaskCreate(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	var in task.CreateInput
	if err := r.decodeJSON(w, req, &in); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	created, err := r.tasks.Create(req.Context(), p, in)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (r *Router) handleTaskList(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	page, err := queryPage(req)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	tasks, err := r.tasks.List(req.Context(), p, task.ListQuery{
		ProjectID: queryString(req, "project_id"),
		Page:      page,
	})
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (r *Router) handleTaskGet(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	found, err := r.tasks.Get(req.Context(), p, chi.URLParam(req, "id"))
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (r *Router) handleTaskUpdate(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	var in task.UpdateInput
	if err := r.decodeJSON(w, req, &in); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	updated, err := r.tasks.Update(req.Context(), p, chi.URLParam(req, "id"), in)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (r *Router) handleTaskDelete(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	deleted, err := r.tasks.Delete(req.Context(), p, chi.URLParam(req, "id"))
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, deleted)
}

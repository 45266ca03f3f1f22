package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splax/shiftwatch/internal/service/analytics"
	"github.com/splax/shiftwatch/internal/service/screenshot"
	"github.com/splax/shiftwatch/internal/service/shift"
)

func (r *Router) handleShiftCreate(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	var in shift.CreateInput
	if err := r.decodeJSON(w, req, &in); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	created, err := r.shifts.Create(req.Context(), p, in)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (r *Router) handleShiftList(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	page, err := queryPage(req)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	shifts, err := r.shifts.List(req.Context(), p, shift.ListQuery{
		EmployeeID: queryString(req, "employee_id"),
		ProjectID:  queryString(req, "project_id"),
		TaskID:     queryString(req, "task_id"),
		Page:       page,
	})
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, shifts)
}

func (r *Router) handleShiftGet(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	found, err := r.shifts.Get(req.Context(), p, chi.URLParam(req, "id"))
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (r *Router) handleShiftUpdate(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	var in shift.UpdateInput
	if err := r.decodeJSON(w, req, &in); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	updated, err := r.shifts.Update(req.Context(), p, chi.URLParam(req, "id"), in)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleShiftDelete echoes the removed shift; its screenshots go with it.
func (r *Router) handleShiftDelete(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	id := chi.URLParam(req, "id")
	found, err := r.shifts.Get(req.Context(), p, id)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	if err := r.shifts.Delete(req.Context(), p, id); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (r *Router) handleProjectTime(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	start, err := queryInt64(req, "start", true, 0)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	end, err := queryInt64(req, "end", true, 0)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	rows, err := r.analytics.ProjectTime(req.Context(), p, analytics.ProjectTimeQuery{
		Begin:      start,
		End:        end,
		EmployeeID: queryString(req, "employee_id"),
		TeamID:     queryString(req, "team_id"),
		ProjectID:  queryString(req, "project_id"),
		TaskID:     queryString(req, "task_id"),
		ShiftID:    queryString(req, "shift_id"),
	})
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (r *Router) handleScreenshotCreate(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	var in screenshot.CreateInput
	if err := r.decodeJSON(w, req, &in); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	created, err := r.shots.Create(req.Context(), p, in)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (r *Router) handleScreenshotList(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	start, err := queryInt64(req, "start", true, 0)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	end, err := queryInt64(req, "end", true, 0)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	limit, err := queryInt64(req, "limit", false, screenshot.DefaultListLimit)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	shots, err := r.shots.List(req.Context(), p, screenshot.ListQuery{Start: start, End: end, Limit: int(limit)})
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, shots)
}

func (r *Router) handleScreenshotPaginate(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	start, err := queryInt64(req, "start", true, 0)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	end, err := queryInt64(req, "end", true, 0)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	limit, err := queryInt64(req, "limit", false, screenshot.DefaultPageLimit)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	page, err := r.shots.Paginate(req.Context(), p, screenshot.PageQuery{
		Start:      start,
		End:        end,
		TaskIDs:    queryString(req, "task_id"),
		ShiftIDs:   queryString(req, "shift_id"),
		ProjectIDs: queryString(req, "project_id"),
		SortBy:     queryString(req, "sort_by"),
		Limit:      int(limit),
		Next:       queryString(req, "next"),
	})
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (r *Router) handleScreenshotDelete(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	if err := r.shots.Delete(req.Context(), p, chi.URLParam(req, "id")); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package api

import "net/http"

// searchTeachers serves the public directory. No session required.
func (rt *Router) searchTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := rt.engine.SearchTeachers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{"teachers": toTeacherPayloads(teachers)})
}

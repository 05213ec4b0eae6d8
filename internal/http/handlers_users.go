package http

import (
	"net/http"

	"fintrack/internal/core"
)

type userList struct {
	CurrentUser string      `json:"currentUser"`
	Users       []core.User `json:"users"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	doc, _ := s.ctrl.Snapshot()
	writeJSON(w, http.StatusOK, userList{CurrentUser: doc.CurrentUser, Users: doc.Users})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var u core.User
	if err := decodeJSON(w, r, &u); err != nil {
		writeError(w, r, err)
		return
	}
	u.Name = sanitizeInput(u.Name)
	u.Email = sanitizeInput(u.Email)
	created, err := s.ctrl.AddUser(r.Context(), u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type renameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleRenameCurrentUser(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := s.ctrl.RenameCurrentUser(r.Context(), sanitizeInput(req.Name))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.DeleteUser(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package api

import (
	"net/http"

	"github.com/tgienger/todo/internal/models"
)

// listInput is the POST and PUT /api/lists body.
type listInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// tagInput is the POST /api/tags body.
type tagInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Server) handleListLists(w http.ResponseWriter, r *http.Request) {
	lists, err := s.store.ListLists(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, lists)
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var in listInput
	if err := decode(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	list, err := s.store.CreateList(r.Context(), models.List{Name: in.Name, Color: in.Color, Icon: in.Icon})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleUpdateList(w http.ResponseWriter, r *http.Request) {
	var in listInput
	if err := decode(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	list, err := s.store.UpdateList(r.Context(), models.List{
		ID:    r.PathValue("id"),
		Name:  in.Name,
		Color: in.Color,
		Icon:  in.Icon,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

// handleDeleteList removes the list only; its tasks stay with no list.
func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteList(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "لیست با موفقیت حذف شد"})
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.store.ListTags(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tags)
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var in tagInput
	if err := decode(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	tag, err := s.store.CreateTag(r.Context(), models.Tag{Name: in.Name, Color: in.Color})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tag)
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTag(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "برچسب با موفقیت حذف شد"})
}

package http

import (
	"context"
	"net/http"

	"carteira/internal/core"
	"carteira/internal/ledger"
)

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.repo.ListTags(r.Context(), includeInactive(r.URL.Query()))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	out := make([]tagResponse, len(tags))
	for i, t := range tags {
		out[i] = tagToResponse(t)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	tag := req.toCore()
	if err := tag.Validate(); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	// A dangling parent would break budget grouping.
	if tag.ParentID != nil {
		if _, err := s.repo.GetTag(r.Context(), *tag.ParentID); err != nil {
			writeError(r.Context(), w, err)
			return
		}
	}
	created, err := s.repo.CreateTag(r.Context(), tag)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, tagToResponse(created))
}

func (s *Server) handleGetTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	tag, err := s.repo.GetTag(r.Context(), id)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, tagToResponse(tag))
}

func (s *Server) handleUpdateTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	var req tagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	existing, err := s.repo.GetTag(r.Context(), id)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	tag := req.toCore()
	tag.ID = id
	tag.Active = existing.Active
	if err := tag.Validate(); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if tag.ParentID != nil {
		if _, err := s.repo.GetTag(r.Context(), *tag.ParentID); err != nil {
			writeError(r.Context(), w, err)
			return
		}
		if err := s.checkTagCycle(r.Context(), id, *tag.ParentID); err != nil {
			writeError(r.Context(), w, err)
			return
		}
	}
	if err := s.repo.UpdateTag(r.Context(), tag); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusOK, tagToResponse(tag))
}

// checkTagCycle rejects re-parenting a tag under its own subtree. The
// walk is over the persisted forest, so it also catches multi-hop
// loops, not just self-parenting.
func (s *Server) checkTagCycle(ctx context.Context, id, parentID int64) error {
	tags, err := s.repo.ListTags(ctx, true)
	if err != nil {
		return err
	}
	idx := ledger.NewTagIndex(tags)
	for _, d := range idx.Descendants(id) {
		if d == parentID {
			return core.ErrTagCycle
		}
	}
	return nil
}

func (s *Server) handleArchiveTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := s.repo.ArchiveTag(r.Context(), id); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}

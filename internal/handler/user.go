package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/screenpatron/screen-patron/internal/auth"
	"github.com/screenpatron/screen-patron/internal/model"
	"github.com/screenpatron/screen-patron/internal/service"
	"github.com/screenpatron/screen-patron/internal/storage"
)

// maxPhotoSize caps uploaded images at 10 MB.
const maxPhotoSize = 10 << 20

// UserHandler owns the /api/users/* endpoints.
type UserHandler struct {
	users  *service.UserService
	photos *storage.LocalStore
}

func NewUserHandler(users *service.UserService, photos *storage.LocalStore) *UserHandler {
	return &UserHandler{users: users, photos: photos}
}

// HandleGet returns a public user profile.
//
//	GET /api/users/{id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleUpdate patches the caller's own profile. Fields absent from the JSON
// body are left unchanged; fields present but empty are cleared.
//
//	PATCH /api/users/{id}
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())

	var patch model.UserPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.Update(r.Context(), chi.URLParam(r, "id"), actorID, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleSetPhoto accepts a multipart upload under the "photo" field and
// stores it as the caller's profile photo. The previous photo file, if any,
// is removed after the new path is committed.
//
//	PUT /api/users/{id}/photo
func (h *UserHandler) HandleSetPhoto(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	prev := ""
	if current, err := h.users.Get(r.Context(), id); err == nil {
		prev = current.Photo
	}

	path, err := savePhoto(r, h.photos)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.SetPhoto(r.Context(), id, actorID, path)
	if err != nil {
		// The DB write failed; don't strand the file we just saved.
		h.photos.Delete(path)
		writeError(w, err)
		return
	}

	if prev != "" && prev != path {
		h.photos.Delete(prev)
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleDelete removes the caller's own account. If they are the only host
// of any event, the request fails with sole_host unless
// ?deleteSoloHostedEvents=true is passed, in which case those events are
// deleted along with the account.
//
//	DELETE /api/users/{id}?deleteSoloHostedEvents=true
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())
	deleteSolo := r.URL.Query().Get("deleteSoloHostedEvents") == "true"

	if err := h.users.Delete(r.Context(), chi.URLParam(r, "id"), actorID, deleteSolo); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

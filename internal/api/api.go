// Package api is the REST shim over the Store. It does no business logic of
// its own: handlers decode the request, call one Store operation and translate
// the outcome to a transport response.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warblehq/warble/store"
)

// feedSize is the fixed size of the recent-posts feed.
const feedSize = 20

// Handler holds the Store and logger shared by all endpoints.
type Handler struct {
	store  store.Store
	logger *slog.Logger
}

// NewRouter builds the /api route tree over the given Store.
func NewRouter(st store.Store, logger *slog.Logger) chi.Router {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{store: st, logger: logger}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/", h.root)
		r.Get("/feed", h.feed)
		r.Get("/posts/{postID}", h.getPost)
		r.Get("/posts/{postID}/comments", h.postComments)
		r.Get("/posts/{postID}/likes", h.postLikes)
		r.Get("/users/{username}", h.getUser)
		r.Get("/users/{username}/posts", h.userPosts)

		r.Post("/create/user", h.createUser)
		r.Post("/create/post", h.createPost)
		r.Post("/create/comment", h.createComment)

		r.Put("/update/user", h.updateUser)
		r.Put("/update/post", h.updatePost)
		r.Put("/update/comment", h.updateComment)

		r.Post("/delete/user/{username}", h.deleteUser)
		r.Post("/delete/post/{postID}", h.deletePost)
		r.Post("/delete/comment/{commentID}", h.deleteComment)
	})
	return r
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "warble api"})
}

func (h *Handler) feed(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.RecentPosts(r.Context(), feedSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, posts)
}

func (h *Handler) getPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.store.GetPost(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, post)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUser(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

func (h *Handler) userPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.PostsOfUser(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, posts)
}

func (h *Handler) postComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.store.CommentsOfPost(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, comments)
}

// postLikes reads the post, then each liked user. Usernames that no longer
// resolve are dropped rather than failing the whole response; likes are not
// cleaned up when a user is deleted.
func (h *Handler) postLikes(w http.ResponseWriter, r *http.Request) {
	post, err := h.store.GetPost(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	users := make([]store.User, 0, len(post.Likes))
	for _, username := range post.Likes {
		u, err := h.store.GetUser(r.Context(), username)
		if errors.Is(err, store.ErrUserNotFound) {
			continue
		}
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		users = append(users, u)
	}
	h.writeJSON(w, http.StatusOK, users)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var u store.User
	if !h.decode(w, r, &u) {
		return
	}
	if err := h.store.CreateUser(r.Context(), u); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, u)
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	var p store.Post
	if !h.decode(w, r, &p) {
		return
	}
	if err := h.store.CreatePost(r.Context(), p); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) createComment(w http.ResponseWriter, r *http.Request) {
	var c store.Comment
	if !h.decode(w, r, &c) {
		return
	}
	if err := h.store.CreateComment(r.Context(), c); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var u store.User
	if !h.decode(w, r, &u) {
		return
	}
	if err := h.store.UpdateUser(r.Context(), u); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}

func (h *Handler) updatePost(w http.ResponseWriter, r *http.Request) {
	var p store.Post
	if !h.decode(w, r, &p) {
		return
	}
	if err := h.store.UpdatePost(r.Context(), p); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *Handler) updateComment(w http.ResponseWriter, r *http.Request) {
	var c store.Comment
	if !h.decode(w, r, &c) {
		return
	}
	if err := h.store.UpdateComment(r.Context(), c); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, c)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteUser(r.Context(), chi.URLParam(r, "username")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNonAuthoritativeInfo)
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeletePost(r.Context(), chi.URLParam(r, "postID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNonAuthoritativeInfo)
}

func (h *Handler) deleteComment(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteComment(r.Context(), chi.URLParam(r, "commentID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNonAuthoritativeInfo)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", "error", err)
	}
}

// writeError maps store errors to transport responses: absent records to 404,
// key collisions to 409, oversized content to 422, anything else to 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrPostNotFound),
		errors.Is(err, store.ErrCommentNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, store.ErrDuplicateKey):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, store.ErrContentTooLong):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		h.logger.Error("storage failure",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

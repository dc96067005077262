package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/devsync/internal/common"
	"github.com/dmitrijs2005/devsync/internal/server/models"
	"github.com/gorilla/mux"
)

// sniffLen is how much of an upload http.DetectContentType looks at.
const sniffLen = 512

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenBody struct {
	Token string `json:"token"`
}

type userBody struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body", common.ErrorValidation)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id", common.ErrorValidation)
	}
	return id, nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	u, err := s.users.Register(r.Context(), in.Username, in.Password)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "username", u.UserName)
	writeJSON(w, http.StatusCreated, userBody{ID: u.ID, Username: u.UserName})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	token, err := s.users.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenBody{Token: token})
}

// parseListQuery reads page, size, name and fullStack from the query string.
func parseListQuery(r *http.Request) (models.ListQuery, error) {
	values := r.URL.Query()
	q := models.ListQuery{Name: strings.TrimSpace(values.Get("name"))}

	for key, dst := range map[string]*int{"page": &q.Page, "size": &q.Size} {
		raw := values.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, fmt.Errorf("%w: %s must be a number", common.ErrorValidation, key)
		}
		*dst = n
	}

	if raw := values.Get("fullStack"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return q, fmt.Errorf("%w: fullStack must be true or false", common.ErrorValidation)
		}
		q.FullStack = &b
	}
	return q, nil
}

func (s *Server) listDevelopers(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	page, err := s.developers.List(r.Context(), q)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) createDeveloper(w http.ResponseWriter, r *http.Request) {
	var d models.Developer
	if err := decodeJSON(w, r, &d); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	d.ID = 0

	out, err := s.developers.Create(r.Context(), &d)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) updateDeveloper(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	var d models.Developer
	if err := decodeJSON(w, r, &d); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	d.ID = id

	out, err := s.developers.Update(r.Context(), &d)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteDeveloper(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	if err := s.developers.Delete(r.Context(), id); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// uploadAvatar accepts one image in the multipart field "avatar".
func (s *Server) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	// room for the multipart envelope
	r.Body = http.MaxBytesReader(w, r.Body, s.maxAvatarSize+maxJSONBody)
	file, header, err := r.FormFile("avatar")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "avatar is too large")
			return
		}
		writeMessage(w, http.StatusBadRequest, "avatar file is required")
		return
	}
	defer file.Close()

	if header.Size > s.maxAvatarSize {
		writeMessage(w, http.StatusRequestEntityTooLarge, "avatar is too large")
		return
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		s.writeError(r.Context(), w, err)
		return
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		writeMessage(w, http.StatusBadRequest, "avatar must be an image")
		return
	}

	body := io.MultiReader(bytes.NewReader(head), file)
	out, err := s.developers.UploadAvatar(r.Context(), id, header.Filename, contentType, body, header.Size)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// publicFile redirects to a short-lived signed URL of the stored object.
func (s *Server) publicFile(w http.ResponseWriter, r *http.Request) {
	url, err := s.developers.AvatarURL(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

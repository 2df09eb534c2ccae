package fakebackend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"kohchanghospital.go.th/admin/src/models"
	"kohchanghospital.go.th/admin/src/utils"
)

const maxUploadBytes = 10 * 1024 * 1024

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.record, s.inject, s.withSession)

	r.Get("/sanctum/csrf-cookie", s.handleCSRFCookie)
	r.With(s.verifyCSRF).Post("/login", s.handleLogin)
	r.With(s.verifyCSRF).Post("/logout", s.handleLogout)
	r.Get("/storage/*", s.handleStorage)

	r.With(s.verifyCSRF, s.authenticated).Post("/announcements/{id}", s.handleUpdateAnnouncement)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.verifyCSRF, s.authenticated)

		r.Get("/me", s.handleMe)

		r.Get("/news", s.handleListNews)
		r.Post("/news", s.handleCreateNews)
		r.Delete("/news/{id}", s.handleDeleteNews)

		r.Get("/announcement-types", s.handleListTypes)
		r.Get("/announcements", s.handleListAnnouncements)
		r.Post("/announcements", s.handleCreateAnnouncement)
		r.Get("/announcements/{id}", s.handleGetAnnouncement)
		r.Delete("/announcements/{id}", s.handleDeleteAnnouncement)

		r.Get("/knowledges", s.handleListKnowledges)
		r.Post("/knowledges", s.handleCreateKnowledge)
		r.Post("/knowledges/{id}", s.handleUpdateKnowledge)
		r.Delete("/knowledges/{id}", s.handleDeleteKnowledge)

		r.Get("/contents/type/{page}", s.handleGetContents)
		r.Put("/contents/type/{page}", s.handleSaveContents)
	})

	return r
}

/*
Middleware
*/

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)

		s.mu.Lock()
		defer s.mu.Unlock()
		s.requests = append(s.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Form:   r.PostForm,
		})
	})
}

func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		delay := s.delays[routeKey(r)]
		fail, failing := s.failures[routeKey(r)]
		s.mu.Unlock()

		if delay > 0 {
			if err := utils.SleepContext(r.Context(), delay); err != nil {
				return
			}
		}
		if failing {
			writeMessage(w, fail.status, fail.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type sessionKey struct{}

func sessionFrom(ctx context.Context) *session {
	sess, _ := ctx.Value(sessionKey{}).(*session)
	return sess
}

func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		var sess *session
		if cookie, err := r.Cookie(SessionCookieName); err == nil {
			sess = s.sessions[cookie.Value]
		}
		if sess == nil {
			id := randomToken(20)
			sess = &session{XSRFToken: randomToken(20) + "="}
			s.sessions[id] = sess
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		s.mu.Unlock()

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

func (s *Server) verifyCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}

		sess := sessionFrom(r.Context())
		s.mu.Lock()
		want := sess.XSRFToken
		s.mu.Unlock()
		if r.Header.Get("X-XSRF-TOKEN") != want {
			writeMessage(w, 419, "CSRF token mismatch.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r.Context())
		s.mu.Lock()
		userID := sess.UserID
		s.mu.Unlock()
		if userID == 0 {
			writeMessage(w, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

/*
Auth
*/

func (s *Server) handleCSRFCookie(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	s.mu.Lock()
	token := sess.XSRFToken
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     XSRFCookieName,
		Value:    url.QueryEscape(token),
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed request.")
		return
	}
	if creds.Email == "" {
		writeValidation(w, "email", "The email field is required.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acct := range s.accounts {
		if strings.EqualFold(acct.User.Email, creds.Email) && acct.Password == creds.Password {
			sessionFrom(r.Context()).UserID = acct.User.ID
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeValidation(w, "email", "These credentials do not match our records.")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	sessionFrom(r.Context()).UserID = 0
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	userID := sessionFrom(r.Context()).UserID
	var user models.User
	for _, acct := range s.accounts {
		if acct.User.ID == userID {
			user = acct.User
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleStorage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	f, ok := s.files[chi.URLParam(r, "*")]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", f.ContentType)
	_, _ = w.Write(f.Data)
}

/*
News
*/

func (s *Server) handleListNews(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	news := newestFirst(s.news)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, news)
}

func (s *Server) handleCreateNews(w http.ResponseWriter, r *http.Request) {
	upload, ok := s.parseUpload(w, r, true)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	item := models.News{
		ID:        s.newID(),
		Title:     upload.title,
		FilePath:  s.storeFile("news", upload.data),
		CreatedAt: models.Timestamp{Time: time.Now()},
	}
	s.news = append(s.news, item)
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleDeleteNews(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var found bool
	s.news, found = without(s.news, id)
	if !found {
		writeMessage(w, http.StatusNotFound, "Not found.")
		return
	}
	writeMessage(w, http.StatusOK, "Deleted.")
}

/*
Announcements
*/

func (s *Server) handleListTypes(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	types := append([]models.AnnouncementType(nil), s.types...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"data": types})
}

func (s *Server) handleListAnnouncements(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	typeID, _ := strconv.Atoi(query.Get("type_id"))
	keyword := strings.ToLower(strings.TrimSpace(query.Get("q")))

	s.mu.Lock()
	var matching []models.Announcement
	for _, item := range newestFirst(s.announcements) {
		if typeID != 0 && item.TypeID != typeID {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(item.Title), keyword) {
			continue
		}
		matching = append(matching, item)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, paginate(matching, query))
}

func (s *Server) handleGetAnnouncement(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.announcements {
		if item.ID == id {
			writeJSON(w, http.StatusOK, map[string]any{"data": item})
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "Not found.")
}

func (s *Server) handleCreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	upload, ok := s.parseUpload(w, r, true)
	if !ok {
		return
	}
	typeID, ok := s.parseTypeID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	item := models.Announcement{
		ID:        s.newID(),
		Title:     upload.title,
		TypeID:    typeID,
		Type:      s.typeByID(typeID),
		FilePath:  s.storeFile("announcements", upload.data),
		CreatedAt: models.Timestamp{Time: time.Now()},
	}
	s.announcements = append(s.announcements, item)
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	if !spoofedPut(w, r) {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	upload, ok := s.parseUpload(w, r, false)
	if !ok {
		return
	}
	typeID, ok := s.parseTypeID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.announcements {
		item := &s.announcements[i]
		if item.ID != id {
			continue
		}
		item.Title = upload.title
		item.TypeID = typeID
		item.Type = s.typeByID(typeID)
		if upload.data != nil {
			item.FilePath = s.storeFile("announcements", upload.data)
		}
		writeJSON(w, http.StatusOK, item)
		return
	}
	writeMessage(w, http.StatusNotFound, "Not found.")
}

func (s *Server) handleDeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var found bool
	s.announcements, found = without(s.announcements, id)
	if !found {
		writeMessage(w, http.StatusNotFound, "Not found.")
		return
	}
	writeMessage(w, http.StatusOK, "Deleted.")
}

/*
Knowledge
*/

func (s *Server) handleListKnowledges(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	keyword := strings.ToLower(strings.TrimSpace(query.Get("q")))

	s.mu.Lock()
	var matching []models.Knowledge
	for _, item := range newestFirst(s.knowledges) {
		if keyword != "" && !strings.Contains(strings.ToLower(item.Title), keyword) {
			continue
		}
		matching = append(matching, item)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, paginate(matching, query))
}

func (s *Server) handleCreateKnowledge(w http.ResponseWriter, r *http.Request) {
	upload, ok := s.parseUpload(w, r, true)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	item := models.Knowledge{
		ID:        s.newID(),
		Title:     upload.title,
		FilePath:  s.storeFile("knowledges", upload.data),
		CreatedAt: models.Timestamp{Time: time.Now()},
	}
	s.knowledges = append(s.knowledges, item)
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdateKnowledge(w http.ResponseWriter, r *http.Request) {
	if !spoofedPut(w, r) {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	upload, ok := s.parseUpload(w, r, false)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.knowledges {
		item := &s.knowledges[i]
		if item.ID != id {
			continue
		}
		item.Title = upload.title
		if upload.data != nil {
			item.FilePath = s.storeFile("knowledges", upload.data)
		}
		writeJSON(w, http.StatusOK, item)
		return
	}
	writeMessage(w, http.StatusNotFound, "Not found.")
}

func (s *Server) handleDeleteKnowledge(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var found bool
	s.knowledges, found = without(s.knowledges, id)
	if !found {
		writeMessage(w, http.StatusNotFound, "Not found.")
		return
	}
	writeMessage(w, http.StatusOK, "Deleted.")
}

/*
Contents
*/

func (s *Server) handleGetContents(w http.ResponseWriter, r *http.Request) {
	page := models.ContentPage(chi.URLParam(r, "page"))
	if !page.Valid() {
		writeMessage(w, http.StatusNotFound, "Not found.")
		return
	}
	s.mu.Lock()
	blocks := append([]models.ContentBlock{}, s.contents[page]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, blocks)
}

func (s *Server) handleSaveContents(w http.ResponseWriter, r *http.Request) {
	page := models.ContentPage(chi.URLParam(r, "page"))
	if !page.Valid() {
		writeMessage(w, http.StatusNotFound, "Not found.")
		return
	}

	var req struct {
		Lang     string                `json:"lang"`
		Contents []models.ContentBlock `json:"contents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed request.")
		return
	}
	if req.Lang == "" {
		writeValidation(w, "lang", "The lang field is required.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	blocks := s.contents[page]
	for _, incoming := range req.Contents {
		for i := range blocks {
			if blocks[i].ContentID == incoming.ContentID {
				blocks[i].Body = incoming.Body
			}
		}
	}
	writeMessage(w, http.StatusOK, "Saved.")
}

/*
Helpers
*/

type upload struct {
	title string
	data  []byte
}

func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request, fileRequired bool) (upload, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes + 1024*1024); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed request.")
		return upload{}, false
	}

	res := upload{title: strings.TrimSpace(r.PostForm.Get("title"))}
	if res.title == "" {
		writeValidation(w, "title", "The title field is required.")
		return upload{}, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if fileRequired {
			writeValidation(w, "file", "The file field is required.")
			return upload{}, false
		}
		return res, true
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		writeValidation(w, "file", "The file field must not be greater than 10240 kilobytes.")
		return upload{}, false
	}
	if header.Header.Get("Content-Type") != "application/pdf" {
		writeValidation(w, "file", "The file field must be a file of type: pdf.")
		return upload{}, false
	}

	res.data, err = io.ReadAll(file)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed request.")
		return upload{}, false
	}
	return res, true
}

func (s *Server) parseTypeID(w http.ResponseWriter, r *http.Request) (int, bool) {
	typeID, err := strconv.Atoi(r.PostForm.Get("type_id"))
	if err != nil || typeID <= 0 {
		writeValidation(w, "type_id", "The type id field is required.")
		return 0, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.types {
		if t.ID == typeID {
			return typeID, true
		}
	}
	writeValidation(w, "type_id", "The selected type id is invalid.")
	return 0, false
}

func spoofedPut(w http.ResponseWriter, r *http.Request) bool {
	if !strings.EqualFold(r.URL.Query().Get("_method"), http.MethodPut) {
		writeMessage(w, http.StatusMethodNotAllowed, "The POST method is not supported for this route.")
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Not found.")
		return 0, false
	}
	return id, true
}

func without[T models.Identified](items []T, id int) ([]T, bool) {
	for i, item := range items {
		if item.ItemID() == id {
			return append(items[:i:i], items[i+1:]...), true
		}
	}
	return items, false
}

func newestFirst[T models.Identified](items []T) []T {
	res := append([]T{}, items...)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].ItemID() > res[j].ItemID()
	})
	return res
}

func paginate[T any](items []T, query url.Values) models.Page[T] {
	perPage, err := strconv.Atoi(query.Get("per_page"))
	if err != nil || perPage <= 0 {
		perPage = 10
	}
	lastPage := utils.NumPages(len(items), perPage)
	page, err := strconv.Atoi(query.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	start := utils.IntMin((page-1)*perPage, len(items))
	end := utils.IntMin(start+perPage, len(items))
	return models.Page[T]{
		Items:       append([]T{}, items[start:end]...),
		CurrentPage: page,
		LastPage:    lastPage,
		Total:       len(items),
	}
}

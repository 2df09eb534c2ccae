package fakebackend

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"kohchanghospital.go.th/admin/src/models"
	"kohchanghospital.go.th/admin/src/utils"
)

/*
An in-memory stand-in for the hospital's Laravel backend. It speaks the same
routes, cookies and JSON shapes closely enough to develop the admin site
without a PHP stack, and it backs the package tests.
*/

const (
	SessionCookieName = "laravel_session"
	XSRFCookieName    = "XSRF-TOKEN"

	DefaultEmail    = "admin@kohchanghospital.go.th"
	DefaultPassword = "password"
)

type storedFile struct {
	ContentType string
	Data        []byte
}

type session struct {
	XSRFToken string
	UserID    int
}

type account struct {
	User     models.User
	Password string
}

type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Form   url.Values
}

type failure struct {
	status  int
	message string
}

type Server struct {
	mu sync.Mutex

	accounts      []account
	sessions      map[string]*session
	news          []models.News
	announcements []models.Announcement
	types         []models.AnnouncementType
	knowledges    []models.Knowledge
	contents      map[models.ContentPage][]models.ContentBlock
	files         map[string]storedFile
	nextID        int

	requests []RecordedRequest
	failures map[string]failure
	delays   map[string]time.Duration

	router chi.Router
}

func New() *Server {
	s := &Server{
		accounts: []account{{
			User:     models.User{ID: 1, Name: "ผู้ดูแลระบบ", Email: DefaultEmail},
			Password: DefaultPassword,
		}},
		sessions: make(map[string]*session),
		types: []models.AnnouncementType{
			{ID: 1, Name: "ประกาศทั่วไป"},
			{ID: 2, Name: "ประกาศจัดซื้อจัดจ้าง"},
			{ID: 3, Name: "ประกาศรับสมัครงาน"},
		},
		contents: map[models.ContentPage][]models.ContentBlock{
			models.ContentPageHistory: {
				{ContentID: 1, Title: "ความเป็นมา", Body: "<p>โรงพยาบาลเกาะช้าง</p>"},
				{ContentID: 2, Title: "ทำเนียบผู้อำนวยการ", Body: ""},
			},
			models.ContentPageVision: {
				{ContentID: 3, Title: "วิสัยทัศน์", Body: ""},
				{ContentID: 4, Title: "พันธกิจ", Body: ""},
				{ContentID: 5, Title: "ค่านิยม", Body: ""},
			},
		},
		files:    make(map[string]storedFile),
		nextID:   1,
		failures: make(map[string]failure),
		delays:   make(map[string]time.Duration),
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Fail makes every request matching "METHOD /path" answer with status and
// message until Recover is called.
func (s *Server) Fail(route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status, message}
}

func (s *Server) Recover(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, route)
}

// Delay holds requests matching "METHOD /path" for d before answering.
func (s *Server) Delay(route string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[route] = d
}

func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

func (s *Server) RequestsTo(method, path string) []RecordedRequest {
	var res []RecordedRequest
	for _, req := range s.Requests() {
		if req.Method == method && req.Path == path {
			res = append(res, req)
		}
	}
	return res
}

func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func (s *Server) AddUser(user models.User, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = append(s.accounts, account{User: user, Password: password})
}

func (s *Server) AddNews(title string, createdAt time.Time) models.News {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := models.News{
		ID:        s.newID(),
		Title:     title,
		FilePath:  s.storeFile("news", pdfStub(title)),
		CreatedAt: models.Timestamp{Time: createdAt},
	}
	s.news = append(s.news, item)
	return item
}

func (s *Server) AddAnnouncement(title string, typeID int, createdAt time.Time) models.Announcement {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := models.Announcement{
		ID:        s.newID(),
		Title:     title,
		TypeID:    typeID,
		Type:      s.typeByID(typeID),
		FilePath:  s.storeFile("announcements", pdfStub(title)),
		CreatedAt: models.Timestamp{Time: createdAt},
	}
	s.announcements = append(s.announcements, item)
	return item
}

func (s *Server) AddKnowledge(title string, createdAt time.Time) models.Knowledge {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := models.Knowledge{
		ID:        s.newID(),
		Title:     title,
		FilePath:  s.storeFile("knowledges", pdfStub(title)),
		CreatedAt: models.Timestamp{Time: createdAt},
	}
	s.knowledges = append(s.knowledges, item)
	return item
}

func (s *Server) News() []models.News {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.News(nil), s.news...)
}

func (s *Server) Announcements() []models.Announcement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Announcement(nil), s.announcements...)
}

func (s *Server) Knowledges() []models.Knowledge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Knowledge(nil), s.knowledges...)
}

func (s *Server) Contents(page models.ContentPage) []models.ContentBlock {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ContentBlock(nil), s.contents[page]...)
}

// File returns a stored upload by its storage path.
func (s *Server) File(filePath string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[filePath]
	return f.Data, ok
}

func (s *Server) newID() int {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Server) typeByID(id int) models.AnnouncementType {
	for _, t := range s.types {
		if t.ID == id {
			return t
		}
	}
	return models.AnnouncementType{ID: id}
}

func (s *Server) storeFile(dir string, data []byte) string {
	filePath := dir + "/" + strconv.Itoa(s.nextID) + "-" + randomToken(4) + ".pdf"
	s.files[filePath] = storedFile{ContentType: "application/pdf", Data: data}
	return filePath
}

func pdfStub(title string) []byte {
	return []byte("%PDF-1.4\n% " + title + "\n%%EOF\n")
}

func randomToken(n int) string {
	buf := make([]byte, n)
	utils.Must1(rand.Read(buf))
	return hex.EncodeToString(buf)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeValidation(w http.ResponseWriter, field, message string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"message": message,
		"errors":  map[string][]string{field: {message}},
	})
}

func routeKey(r *http.Request) string {
	return r.Method + " " + strings.TrimSuffix(r.URL.Path, "/")
}

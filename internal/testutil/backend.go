// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/artspace-console/internal/model"
)

// BackendCookie is the name of the auth cookie issued by FakeBackend.
const BackendCookie = "jwtToken"

// Account is a user known to FakeBackend.
type Account struct {
	Password string
	Profile  model.UserProfile
}

// RecordedRequest is a request received by FakeBackend.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
}

type failure struct {
	status int
	body   string
}

type gate struct {
	reached chan struct{}
	release chan struct{}
	once    sync.Once
}

// FakeBackend is an in-memory stand-in for the ArtSpace REST API.
// Resources are kept as decoded JSON objects so every entity type is
// handled the same way.
type FakeBackend struct {
	Server *httptest.Server

	mu       sync.Mutex
	accounts map[string]*Account
	sessions map[string]string
	data     map[string]map[int64]map[string]any
	tickets  []model.Ticket
	nextID   int64
	requests []RecordedRequest
	failures map[string]failure
	gates    map[string]*gate
	allGates []*gate
}

// NewFakeBackend starts a fake backend that is closed when t ends.
func NewFakeBackend(t testing.TB) *FakeBackend {
	t.Helper()

	b := &FakeBackend{
		accounts: make(map[string]*Account),
		sessions: make(map[string]string),
		data:     make(map[string]map[int64]map[string]any),
		nextID:   100,
		failures: make(map[string]failure),
		gates:    make(map[string]*gate),
	}

	r := chi.NewRouter()
	r.Use(b.record)

	r.Post("/auth/login", b.login)
	r.Post("/auth/register", b.register)
	r.Post("/auth/logout", b.logout)
	r.Get("/users/profile", b.profile)
	r.Put("/users/profile", b.updateProfile)
	r.Get("/exhibitions/current", b.currentExhibitions)
	r.Post("/tickets/purchase", b.purchase)
	r.Get("/tickets/my", b.myTickets)

	r.Get("/{res}", b.list)
	r.Post("/{res}/search", b.search)
	r.Get("/{res}/getAll", b.getAll)
	r.Get("/{res}/getOneById", b.getOne)
	r.Post("/{res}/add", b.requireAdmin(b.add))
	r.Put("/{res}/update", b.requireAdmin(b.update))
	r.Delete("/{res}/delete/{id}", b.requireAdmin(b.remove))

	b.Server = httptest.NewServer(r)
	t.Cleanup(func() {
		b.releaseAll()
		b.Server.Close()
	})
	return b
}

// URL returns the base URL of the fake backend.
func (b *FakeBackend) URL() string {
	return b.Server.URL
}

// AddAccount registers a user that can log in.
func (b *FakeBackend) AddAccount(password string, p model.UserProfile) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[p.Login] = &Account{Password: password, Profile: p}
}

// Session issues a backend session for login, as a successful login would.
func (b *FakeBackend) Session(login string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	token := fmt.Sprintf("tok-%s-%d", login, len(b.sessions)+1)
	b.sessions[token] = login
	return token
}

// Seed stores v under resource and returns its id. A zero id in v is
// replaced by a fresh one.
func (b *FakeBackend) Seed(resource string, v any) int64 {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		panic(err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.putLocked(resource, obj)
}

// Has reports whether resource contains id.
func (b *FakeBackend) Has(resource string, id int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.data[resource][id]
	return ok
}

// Count returns the number of stored entities of resource.
func (b *FakeBackend) Count(resource string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data[resource])
}

// Get decodes the stored entity into out.
func (b *FakeBackend) Get(resource string, id int64, out any) bool {
	b.mu.Lock()
	obj, ok := b.data[resource][id]
	var data []byte
	if ok {
		data, _ = json.Marshal(obj)
	}
	b.mu.Unlock()
	if !ok {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

// Tickets returns the purchased tickets.
func (b *FakeBackend) Tickets() []model.Ticket {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.tickets)
}

// Fail makes every method+path request answer with status and body.
func (b *FakeBackend) Fail(method, path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = failure{status: status, body: body}
}

// ClearFailures removes every injected failure.
func (b *FakeBackend) ClearFailures() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = make(map[string]failure)
}

// Block holds the next method+path request until release is called.
// reached is closed when the request arrives.
func (b *FakeBackend) Block(method, path string) (reached <-chan struct{}, release func()) {
	g := &gate{reached: make(chan struct{}), release: make(chan struct{})}
	b.mu.Lock()
	b.gates[method+" "+path] = g
	b.allGates = append(b.allGates, g)
	b.mu.Unlock()
	return g.reached, func() { g.once.Do(func() { close(g.release) }) }
}

// Requests returns every request received so far.
func (b *FakeBackend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.requests)
}

// LastRequest returns the latest method+path request.
func (b *FakeBackend) LastRequest(method, path string) (RecordedRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.requests) - 1; i >= 0; i-- {
		if b.requests[i].Method == method && b.requests[i].Path == path {
			return b.requests[i], true
		}
	}
	return RecordedRequest{}, false
}

// CountRequests returns how many method+path requests were received.
func (b *FakeBackend) CountRequests(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (b *FakeBackend) releaseAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, g := range b.allGates {
		g.once.Do(func() { close(g.release) })
	}
}

func (b *FakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		key := r.Method + " " + r.URL.Path
		b.mu.Lock()
		b.requests = append(b.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Body:   body,
		})
		f, failing := b.failures[key]
		g := b.gates[key]
		delete(b.gates, key)
		b.mu.Unlock()

		if g != nil {
			close(g.reached)
			select {
			case <-g.release:
			case <-r.Context().Done():
				return
			}
		}

		if failing {
			w.WriteHeader(f.status)
			_, _ = io.WriteString(w, f.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// account returns the account behind the request cookie.
func (b *FakeBackend) account(r *http.Request) *Account {
	ck, err := r.Cookie(BackendCookie)
	if err != nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	login, ok := b.sessions[ck.Value]
	if !ok {
		return nil
	}
	return b.accounts[login]
}

func (b *FakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed request")
		return
	}

	b.mu.Lock()
	acc, ok := b.accounts[creds.Login]
	b.mu.Unlock()
	if !ok || acc.Password != creds.Password {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, "Invalid login or password")
		return
	}

	token := b.Session(creds.Login)
	http.SetCookie(w, &http.Cookie{Name: BackendCookie, Value: token, Path: "/", HttpOnly: true})
	_, _ = io.WriteString(w, "Authentication successful")
}

func (b *FakeBackend) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		model.RegisterRequest
		ConfirmPassword *string `json:"confirmPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed request")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.accounts[req.Login]; exists {
		writeMessage(w, http.StatusBadRequest, "User with this login already exists")
		return
	}
	b.nextID++
	p := model.UserProfile{
		ID:        b.nextID,
		Login:     req.Login,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
		RoleName:  model.RoleUser,
	}
	b.accounts[req.Login] = &Account{Password: req.Password, Profile: p}
	writeJSON(w, http.StatusOK, p)
}

func (b *FakeBackend) logout(w http.ResponseWriter, r *http.Request) {
	if ck, err := r.Cookie(BackendCookie); err == nil {
		b.mu.Lock()
		delete(b.sessions, ck.Value)
		b.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: BackendCookie, Value: "", Path: "/", MaxAge: -1})
	_, _ = io.WriteString(w, "Logged out")
}

func (b *FakeBackend) profile(w http.ResponseWriter, r *http.Request) {
	acc := b.account(r)
	if acc == nil {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, "Not authenticated")
		return
	}
	b.mu.Lock()
	p := acc.Profile
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, p)
}

func (b *FakeBackend) updateProfile(w http.ResponseWriter, r *http.Request) {
	acc := b.account(r)
	if acc == nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	var in model.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed request")
		return
	}

	b.mu.Lock()
	p := &acc.Profile
	p.Email = in.Email
	p.FirstName = in.FirstName
	p.LastName = in.LastName
	p.Phone = in.Phone
	p.Address = in.Address
	p.BirthDate = in.BirthDate
	out := *p
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (b *FakeBackend) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acc := b.account(r)
		if acc == nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if acc.Profile.RoleName != model.RoleAdmin {
			writeMessage(w, http.StatusForbidden, "Access denied")
			return
		}
		next(w, r)
	}
}

func (b *FakeBackend) putLocked(resource string, obj map[string]any) int64 {
	id := int64(0)
	if v, ok := obj["id"].(float64); ok {
		id = int64(v)
	}
	if id == 0 {
		b.nextID++
		id = b.nextID
	}
	obj["id"] = id
	if b.data[resource] == nil {
		b.data[resource] = make(map[int64]map[string]any)
	}
	b.data[resource][id] = obj
	return id
}

// sortedLocked returns the entities of resource ordered by id.
func (b *FakeBackend) sortedLocked(resource string) []map[string]any {
	ids := make([]int64, 0, len(b.data[resource]))
	for id := range b.data[resource] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, b.data[resource][id])
	}
	return out
}

func pageOf(items []map[string]any, q url.Values) map[string]any {
	page, _ := strconv.Atoi(q.Get("page"))
	size, err := strconv.Atoi(q.Get("size"))
	if err != nil || size <= 0 {
		size = 20
	}
	total := len(items)
	start := min(page*size, total)
	end := min(start+size, total)
	return map[string]any{
		"content":       items[start:end],
		"totalElements": total,
		"totalPages":    (total + size - 1) / size,
		"number":        page,
		"size":          size,
	}
}

func matches(obj map[string]any, criteria map[string]string) bool {
	for k, want := range criteria {
		switch k {
		case "createdAfter":
			if fmt.Sprint(obj["creationDate"]) < want {
				return false
			}
		case "startDate":
			if fmt.Sprint(obj["startDate"]) < want {
				return false
			}
		case "endDate":
			if v, ok := obj["endDate"].(string); !ok || v > want {
				return false
			}
		default:
			got, ok := obj[k]
			if !ok || !strings.Contains(strings.ToLower(fmt.Sprint(got)), strings.ToLower(want)) {
				return false
			}
		}
	}
	return true
}

func (b *FakeBackend) list(w http.ResponseWriter, r *http.Request) {
	res := chi.URLParam(r, "res")
	b.mu.Lock()
	items := b.sortedLocked(res)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, pageOf(items, r.URL.Query()))
}

func (b *FakeBackend) search(w http.ResponseWriter, r *http.Request) {
	res := chi.URLParam(r, "res")
	var criteria map[string]string
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed criteria")
		return
	}

	b.mu.Lock()
	var items []map[string]any
	for _, obj := range b.sortedLocked(res) {
		if matches(obj, criteria) {
			items = append(items, obj)
		}
	}
	b.mu.Unlock()

	if items == nil {
		items = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, pageOf(items, r.URL.Query()))
}

func (b *FakeBackend) getAll(w http.ResponseWriter, r *http.Request) {
	res := chi.URLParam(r, "res")
	b.mu.Lock()
	items := b.sortedLocked(res)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, items)
}

func (b *FakeBackend) getOne(w http.ResponseWriter, r *http.Request) {
	res := chi.URLParam(r, "res")
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return
	}
	b.mu.Lock()
	obj, ok := b.data[res][id]
	b.mu.Unlock()
	if !ok {
		writeMessage(w, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, obj)
}

func (b *FakeBackend) add(w http.ResponseWriter, r *http.Request) {
	res := chi.URLParam(r, "res")
	var obj map[string]any
	if err := json.NewDecoder(r.Body).Decode(&obj); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed request")
		return
	}
	delete(obj, "id")
	b.mu.Lock()
	b.putLocked(res, obj)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, obj)
}

func (b *FakeBackend) update(w http.ResponseWriter, r *http.Request) {
	res := chi.URLParam(r, "res")
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return
	}
	var obj map[string]any
	if err := json.NewDecoder(r.Body).Decode(&obj); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed request")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.data[res][id]; !ok {
		writeMessage(w, http.StatusNotFound, "Not found")
		return
	}
	obj["id"] = float64(id)
	b.putLocked(res, obj)
	writeJSON(w, http.StatusOK, obj)
}

func (b *FakeBackend) remove(w http.ResponseWriter, r *http.Request) {
	res := chi.URLParam(r, "res")
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.data[res][id]; !ok {
		writeMessage(w, http.StatusNotFound, "Not found")
		return
	}
	delete(b.data[res], id)
	w.WriteHeader(http.StatusOK)
}

func (b *FakeBackend) currentExhibitions(w http.ResponseWriter, r *http.Request) {
	today := time.Now().Format(model.DateLayout)
	b.mu.Lock()
	var items []map[string]any
	for _, obj := range b.sortedLocked("exhibitions") {
		start, _ := obj["startDate"].(string)
		end, _ := obj["endDate"].(string)
		if (start == "" || start <= today) && (end == "" || end >= today) {
			items = append(items, obj)
		}
	}
	b.mu.Unlock()
	if items == nil {
		items = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, pageOf(items, r.URL.Query()))
}

func (b *FakeBackend) purchase(w http.ResponseWriter, r *http.Request) {
	acc := b.account(r)
	if acc == nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	var t model.Ticket
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed request")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	ex, ok := b.data["exhibitions"][t.ExhibitionID]
	if !ok {
		writeMessage(w, http.StatusNotFound, "Exhibition not found")
		return
	}
	b.nextID++
	uid := acc.Profile.ID
	t.ID = b.nextID
	t.UserID = &uid
	t.UserName = acc.Profile.Login
	t.ExhibitionTitle, _ = ex["title"].(string)
	t.Status = model.TicketPurchased
	t.TicketCode = fmt.Sprintf("TCK-%06d", t.ID)
	t.PurchaseDate = &model.DateTime{Time: time.Now().Truncate(time.Second)}
	b.tickets = append(b.tickets, t)
	writeJSON(w, http.StatusOK, t)
}

func (b *FakeBackend) myTickets(w http.ResponseWriter, r *http.Request) {
	acc := b.account(r)
	out := []model.Ticket{}
	if acc != nil {
		b.mu.Lock()
		for _, t := range b.tickets {
			if t.UserID != nil && *t.UserID == acc.Profile.ID {
				out = append(out, t)
			}
		}
		b.mu.Unlock()
	}
	writeJSON(w, http.StatusOK, out)
}

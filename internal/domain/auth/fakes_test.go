package auth

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
)

type fakeDirectory struct {
	mu        sync.Mutex
	seq       int
	byID      map[string]fakeUser
	emailToID map[string]string
}

type fakeUser struct {
	principal Principal
	password  string
	phone     string
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{byID: map[string]fakeUser{}, emailToID: map[string]string{}}
}

func (d *fakeDirectory) FindByEmail(_ context.Context, email string) (Principal, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, ok := d.emailToID[strings.ToLower(email)]
	if !ok {
		return Principal{}, false, nil
	}
	return d.byID[id].principal, true, nil
}

func (d *fakeDirectory) FindByID(_ context.Context, id string) (Principal, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.byID[id]
	return u.principal, ok, nil
}

func (d *fakeDirectory) CreateUser(_ context.Context, user NewUser) (Principal, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.emailToID[user.Email]; exists {
		return Principal{}, Reject(FailureConflict, "Email '"+user.Email+"' is already taken.")
	}
	for _, u := range d.byID {
		if u.phone == user.PhoneNumber {
			return Principal{}, Reject(FailureConflict, "Phone number '"+user.PhoneNumber+"' is already taken.")
		}
	}
	d.seq++
	p := Principal{ID: "user-" + strconv.Itoa(d.seq), Email: user.Email}
	d.byID[p.ID] = fakeUser{principal: p, password: user.Password, phone: user.PhoneNumber}
	d.emailToID[user.Email] = p.ID
	return p, nil
}

func (d *fakeDirectory) VerifyPassword(_ context.Context, principal Principal, password string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.byID[principal.ID].password == password, nil
}

func (d *fakeDirectory) ChangePassword(_ context.Context, principal Principal, current, next string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	u := d.byID[principal.ID]
	if u.password != current {
		return Reject(FailureValidation, "Incorrect password.")
	}
	u.password = next
	d.byID[principal.ID] = u
	return nil
}

type fakeTokenStore struct {
	mu      sync.Mutex
	records map[string]RefreshTokenRecord
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{records: map[string]RefreshTokenRecord{}}
}

func (s *fakeTokenStore) Replace(_ context.Context, ownerID, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[ownerID] = RefreshTokenRecord{OwnerID: ownerID, Value: value, IssuedAt: time.Now()}
	return nil
}

func (s *fakeTokenStore) Validate(_ context.Context, ownerID, presented string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[ownerID]
	return ok && rec.Value == presented, nil
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]SessionTicket
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]SessionTicket{}}
}

func (s *fakeSessionStore) Save(_ context.Context, ticket SessionTicket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[ticket.ID] = ticket
	return nil
}

func (s *fakeSessionStore) Get(_ context.Context, id string) (SessionTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.sessions[id]
	if !ok {
		return SessionTicket{}, ErrSessionNotFound
	}
	return ticket, nil
}

func (s *fakeSessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *fakeSessionStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

type fakeRecorder struct {
	mu     sync.Mutex
	counts map[[2]string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{counts: map[[2]string]int{}}
}

func (r *fakeRecorder) Observe(operation, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[[2]string{operation, outcome}]++
}

func (r *fakeRecorder) count(operation, outcome string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[[2]string{operation, outcome}]
}

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/OmPrakash-X/Konnekt-sub001/models"
)

// Memory is an in-process Store with the same conditional-update semantics
// as the mongo implementation. It backs the test suite; one mutex covers
// everything, which keeps debits and status transitions serializable.
type Memory struct {
	mu       sync.Mutex
	users    map[primitive.ObjectID]*models.User
	skills   map[primitive.ObjectID]*models.Skill
	sessions map[primitive.ObjectID]*models.Session
	txs      map[primitive.ObjectID]*models.Transaction
	reviews  map[primitive.ObjectID]*models.Review
}

func NewMemory() *Memory {
	return &Memory{
		users:    map[primitive.ObjectID]*models.User{},
		skills:   map[primitive.ObjectID]*models.Skill{},
		sessions: map[primitive.ObjectID]*models.Session{},
		txs:      map[primitive.ObjectID]*models.Transaction{},
		reviews:  map[primitive.ObjectID]*models.Review{},
	}
}

func (m *Memory) Users() UserRepository               { return &memUsers{m} }
func (m *Memory) Skills() SkillRepository             { return &memSkills{m} }
func (m *Memory) Sessions() SessionRepository         { return &memSessions{m} }
func (m *Memory) Transactions() TransactionRepository { return &memTxs{m} }
func (m *Memory) Reviews() ReviewRepository           { return &memReviews{m} }

func copyUser(u *models.User) *models.User {
	cp := *u
	if u.VerifyOTP != nil {
		s := *u.VerifyOTP
		cp.VerifyOTP = &s
	}
	if u.ResetOTP != nil {
		s := *u.ResetOTP
		cp.ResetOTP = &s
	}
	if u.ReferredBy != nil {
		id := *u.ReferredBy
		cp.ReferredBy = &id
	}
	if u.Location != nil {
		l := *u.Location
		cp.Location = &l
	}
	return &cp
}

type memUsers struct{ m *Memory }

func (r *memUsers) Create(ctx context.Context, u *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.users {
		if existing.Email == u.Email || (u.ReferralCode != "" && existing.ReferralCode == u.ReferralCode) {
			return ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.m.users[u.ID] = copyUser(u)
	return nil
}

func (r *memUsers) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(u), nil
}

func (r *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memUsers) GetByReferralCode(ctx context.Context, code string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.ReferralCode == code {
			return copyUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memUsers) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.m.users, id)
	return nil
}

func (r *memUsers) mutate(id primitive.ObjectID, fn func(u *models.User) error) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return ErrNotFound
	}
	return fn(u)
}

func (r *memUsers) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, bio string, loc *models.GeoPoint) error {
	return r.mutate(id, func(u *models.User) error {
		if name != "" {
			u.Name = name
		}
		if bio != "" {
			u.Bio = bio
		}
		if loc != nil {
			l := *loc
			u.Location = &l
		}
		u.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (r *memUsers) SetAccountStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	return r.mutate(id, func(u *models.User) error {
		u.AccountStatus = status
		return nil
	})
}

func (r *memUsers) SetVerifyOTP(ctx context.Context, id primitive.ObjectID, slot *models.OTPSlot) error {
	return r.mutate(id, func(u *models.User) error {
		s := *slot
		u.VerifyOTP = &s
		return nil
	})
}

func (r *memUsers) ClearVerifyOTP(ctx context.Context, id primitive.ObjectID, markVerified bool) error {
	return r.mutate(id, func(u *models.User) error {
		if u.VerifyOTP == nil {
			return ErrStaleTransition
		}
		u.VerifyOTP = nil
		if markVerified {
			u.IsVerified = true
		}
		return nil
	})
}

func (r *memUsers) SetResetOTP(ctx context.Context, id primitive.ObjectID, slot *models.OTPSlot) error {
	return r.mutate(id, func(u *models.User) error {
		s := *slot
		u.ResetOTP = &s
		u.IsOTPVerified = false
		return nil
	})
}

func (r *memUsers) MarkResetOTPVerified(ctx context.Context, id primitive.ObjectID) error {
	return r.mutate(id, func(u *models.User) error {
		if u.ResetOTP == nil {
			return ErrStaleTransition
		}
		u.IsOTPVerified = true
		return nil
	})
}

func (r *memUsers) ResetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	return r.mutate(id, func(u *models.User) error {
		u.Password = passwordHash
		u.IsOTPVerified = false
		u.ResetOTP = nil
		return nil
	})
}

func (r *memUsers) Debit(ctx context.Context, id primitive.ObjectID, amount int64) (int64, error) {
	var after int64
	err := r.mutate(id, func(u *models.User) error {
		if u.WalletBalance < amount {
			return ErrInsufficientFunds
		}
		u.WalletBalance -= amount
		after = u.WalletBalance
		return nil
	})
	return after, err
}

func (r *memUsers) Credit(ctx context.Context, id primitive.ObjectID, amount int64) (int64, error) {
	var after int64
	err := r.mutate(id, func(u *models.User) error {
		u.WalletBalance += amount
		after = u.WalletBalance
		return nil
	})
	return after, err
}

type memSkills struct{ m *Memory }

func copySkill(s *models.Skill) *models.Skill {
	cp := *s
	cp.Endorsements = append([]primitive.ObjectID(nil), s.Endorsements...)
	return &cp
}

func (r *memSkills) Create(ctx context.Context, s *models.Skill) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	r.m.skills[s.ID] = copySkill(s)
	return nil
}

func (r *memSkills) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Skill, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.skills[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copySkill(s), nil
}

func (r *memSkills) List(ctx context.Context, category string) ([]models.Skill, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []models.Skill{}
	for _, s := range r.m.skills {
		if category == "" || s.Category == category {
			out = append(out, *copySkill(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memSkills) Update(ctx context.Context, id primitive.ObjectID, upd SkillUpdate) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.skills[id]
	if !ok {
		return ErrNotFound
	}
	if upd.Title != nil {
		s.Title = *upd.Title
	}
	if upd.Description != nil {
		s.Description = *upd.Description
	}
	if upd.Category != nil {
		s.Category = *upd.Category
	}
	if upd.CreditsPerHour != nil {
		s.CreditsPerHour = *upd.CreditsPerHour
	}
	return nil
}

func (r *memSkills) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.skills[id]; !ok {
		return ErrNotFound
	}
	delete(r.m.skills, id)
	return nil
}

func (r *memSkills) Endorse(ctx context.Context, id, endorser primitive.ObjectID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.skills[id]
	if !ok {
		return ErrNotFound
	}
	for _, e := range s.Endorsements {
		if e == endorser {
			return nil
		}
	}
	s.Endorsements = append(s.Endorsements, endorser)
	return nil
}

type memSessions struct{ m *Memory }

func copySession(s *models.Session) *models.Session {
	cp := *s
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		cp.CompletedAt = &t
	}
	if s.CancelledBy != nil {
		id := *s.CancelledBy
		cp.CancelledBy = &id
	}
	if s.CancelledAt != nil {
		t := *s.CancelledAt
		cp.CancelledAt = &t
	}
	return &cp
}

func (r *memSessions) Create(ctx context.Context, s *models.Session) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	r.m.sessions[s.ID] = copySession(s)
	return nil
}

func (r *memSessions) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Session, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copySession(s), nil
}

func (r *memSessions) ListByParticipant(ctx context.Context, userID primitive.ObjectID) ([]models.Session, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []models.Session{}
	for _, s := range r.m.sessions {
		if s.Provider == userID || s.Learner == userID {
			out = append(out, *copySession(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memSessions) transition(id primitive.ObjectID, from []string, apply func(s *models.Session)) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.sessions[id]
	if !ok {
		return ErrStaleTransition
	}
	for _, f := range from {
		if s.Status == f {
			apply(s)
			return nil
		}
	}
	return ErrStaleTransition
}

func (r *memSessions) Confirm(ctx context.Context, id primitive.ObjectID) error {
	return r.transition(id, []string{models.SessionPending}, func(s *models.Session) {
		s.Status = models.SessionConfirmed
	})
}

func (r *memSessions) Complete(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return r.transition(id, []string{models.SessionConfirmed}, func(s *models.Session) {
		s.Status = models.SessionCompleted
		t := at
		s.CompletedAt = &t
	})
}

func (r *memSessions) RevertComplete(ctx context.Context, id primitive.ObjectID) error {
	return r.transition(id, []string{models.SessionCompleted}, func(s *models.Session) {
		s.Status = models.SessionConfirmed
		s.CompletedAt = nil
	})
}

func (r *memSessions) MarkPaid(ctx context.Context, id primitive.ObjectID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.IsPaid = true
	return nil
}

func (r *memSessions) Cancel(ctx context.Context, id, by primitive.ObjectID, reason string, at time.Time) error {
	return r.transition(id, []string{models.SessionPending, models.SessionConfirmed}, func(s *models.Session) {
		s.Status = models.SessionCancelled
		byID := by
		t := at
		s.CancelledBy = &byID
		s.CancelledAt = &t
		s.CancellationReason = reason
	})
}

type memTxs struct{ m *Memory }

func copyTx(t *models.Transaction) *models.Transaction {
	cp := *t
	if t.From != nil {
		id := *t.From
		cp.From = &id
	}
	if t.FromBalance != nil {
		b := *t.FromBalance
		cp.FromBalance = &b
	}
	if t.Session != nil {
		id := *t.Session
		cp.Session = &id
	}
	return &cp
}

func (r *memTxs) Create(ctx context.Context, t *models.Transaction) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	r.m.txs[t.ID] = copyTx(t)
	return nil
}

func (r *memTxs) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.txs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyTx(t), nil
}

func (r *memTxs) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Transaction, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []models.Transaction{}
	for _, t := range r.m.txs {
		if t.To == userID || (t.From != nil && *t.From == userID) {
			out = append(out, *copyTx(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memTxs) SetStatus(ctx context.Context, id primitive.ObjectID, from, to string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.txs[id]
	if !ok || t.Status != from {
		return ErrStaleTransition
	}
	t.Status = to
	return nil
}

type memReviews struct{ m *Memory }

func (r *memReviews) Create(ctx context.Context, rev *models.Review) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.reviews {
		if existing.Session == rev.Session {
			return ErrDuplicate
		}
	}
	if rev.ID.IsZero() {
		rev.ID = primitive.NewObjectID()
	}
	cp := *rev
	r.m.reviews[rev.ID] = &cp
	return nil
}

func (r *memReviews) ListBySkill(ctx context.Context, skillID primitive.ObjectID) ([]models.Review, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []models.Review{}
	for _, rev := range r.m.reviews {
		if rev.Skill == skillID {
			out = append(out, *rev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

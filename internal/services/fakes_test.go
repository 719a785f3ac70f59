package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"parley/internal/domain/conversation"
	"parley/internal/domain/message"
	"parley/internal/domain/user"
	parley_errors "parley/pkg/errors"

	"github.com/google/uuid"
)

// In-memory repositories mirroring the Postgres ones closely enough for
// service-level tests, including the membership re-check on append and the
// pair-key uniqueness of private conversations.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]user.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email || existing.Phone == u.Phone {
			return parley_errors.ErrConflict
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.User{}, parley_errors.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmailOrPhone(_ context.Context, email, phone string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if (email != "" && u.Email == email) || (phone != "" && u.Phone == phone) {
			return u, nil
		}
	}
	return user.User{}, parley_errors.ErrNotFound
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) ExistsByPhone(_ context.Context, phone string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return parley_errors.ErrNotFound
	}
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return parley_errors.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) Search(_ context.Context, query string, limit int) ([]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	results := []user.User{}
	q := strings.ToLower(query)
	for _, u := range r.users {
		if len(results) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(u.Username), q) ||
			strings.Contains(strings.ToLower(u.Email), q) ||
			strings.Contains(u.Phone, query) {
			results = append(results, u)
		}
	}
	return results, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]user.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]user.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *user.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id uuid.UUID) (user.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return user.Session{}, parley_errors.ErrNotFound
	}
	return s, nil
}

func (r *fakeSessionRepo) Revoke(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return parley_errors.ErrNotFound
	}
	s.IsRevoked = true
	r.sessions[id] = s
	return nil
}

type fakeStore struct {
	mu            sync.Mutex
	conversations map[uuid.UUID]conversation.Conversation
	participants  map[uuid.UUID]map[uuid.UUID]conversation.Participant
	pairKeys      map[string]uuid.UUID
	messages      map[uuid.UUID]message.Message
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		conversations: make(map[uuid.UUID]conversation.Conversation),
		participants:  make(map[uuid.UUID]map[uuid.UUID]conversation.Participant),
		pairKeys:      make(map[string]uuid.UUID),
		messages:      make(map[uuid.UUID]message.Message),
	}
}

type fakeConversationRepo struct {
	store *fakeStore
}

func (r *fakeConversationRepo) Create(_ context.Context, c *conversation.Conversation, participants []conversation.Participant) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if c.PairKey != nil {
		if _, taken := r.store.pairKeys[*c.PairKey]; taken {
			return parley_errors.ErrConflict
		}
		r.store.pairKeys[*c.PairKey] = c.ID
	}
	r.store.conversations[c.ID] = *c
	members := make(map[uuid.UUID]conversation.Participant, len(participants))
	for _, p := range participants {
		members[p.UserID] = p
	}
	r.store.participants[c.ID] = members
	return nil
}

func (r *fakeConversationRepo) GetByID(_ context.Context, id uuid.UUID) (conversation.Conversation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.conversations[id]
	if !ok {
		return conversation.Conversation{}, parley_errors.ErrNotFound
	}
	for _, p := range r.store.participants[id] {
		c.Participants = append(c.Participants, p)
	}
	return c, nil
}

func (r *fakeConversationRepo) GetPrivateBetween(_ context.Context, userID1, userID2 uuid.UUID) (conversation.Conversation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	id, ok := r.store.pairKeys[conversation.PairKeyFor(userID1, userID2)]
	if !ok {
		return conversation.Conversation{}, parley_errors.ErrNotFound
	}
	return r.store.conversations[id], nil
}

func (r *fakeConversationRepo) memberOf(userID uuid.UUID) []conversation.Conversation {
	var out []conversation.Conversation
	for id, members := range r.store.participants {
		if _, ok := members[userID]; ok {
			out = append(out, r.store.conversations[id])
		}
	}
	return out
}

func (r *fakeConversationRepo) hasMessages(conversationID uuid.UUID) bool {
	for _, m := range r.store.messages {
		if m.ConversationID == conversationID {
			return true
		}
	}
	return false
}

func (r *fakeConversationRepo) GetUserConversations(_ context.Context, userID uuid.UUID) ([]conversation.Conversation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.memberOf(userID), nil
}

func (r *fakeConversationRepo) GetUserChats(_ context.Context, userID uuid.UUID) ([]conversation.Conversation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	chats := []conversation.Conversation{}
	for _, c := range r.memberOf(userID) {
		if r.hasMessages(c.ID) {
			chats = append(chats, c)
		}
	}
	return chats, nil
}

func (r *fakeConversationRepo) GetUserContacts(_ context.Context, userID uuid.UUID) ([]conversation.Conversation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	contacts := []conversation.Conversation{}
	for _, c := range r.memberOf(userID) {
		if !r.hasMessages(c.ID) {
			contacts = append(contacts, c)
		}
	}
	return contacts, nil
}

func (r *fakeConversationRepo) SearchGroups(_ context.Context, query string, limit int) ([]conversation.Conversation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	results := []conversation.Conversation{}
	q := strings.ToLower(query)
	for _, c := range r.store.conversations {
		if len(results) >= limit {
			break
		}
		if c.Type == conversation.TypeGroup && c.Name != nil && strings.Contains(strings.ToLower(*c.Name), q) {
			results = append(results, c)
		}
	}
	return results, nil
}

func (r *fakeConversationRepo) UpdateName(_ context.Context, id uuid.UUID, name string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.conversations[id]
	if !ok {
		return parley_errors.ErrNotFound
	}
	c.Name = &name
	r.store.conversations[id] = c
	return nil
}

func (r *fakeConversationRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.conversations[id]
	if !ok {
		return parley_errors.ErrNotFound
	}
	for msgID, m := range r.store.messages {
		if m.ConversationID == id {
			delete(r.store.messages, msgID)
		}
	}
	if c.PairKey != nil {
		delete(r.store.pairKeys, *c.PairKey)
	}
	delete(r.store.conversations, id)
	delete(r.store.participants, id)
	return nil
}

func (r *fakeConversationRepo) AddParticipant(_ context.Context, p *conversation.Participant) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	members, ok := r.store.participants[p.ConversationID]
	if !ok {
		return parley_errors.ErrNotFound
	}
	if _, exists := members[p.UserID]; exists {
		return parley_errors.ErrConflict
	}
	members[p.UserID] = *p
	return nil
}

func (r *fakeConversationRepo) RemoveParticipant(_ context.Context, conversationID, userID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	members, ok := r.store.participants[conversationID]
	if !ok {
		return parley_errors.ErrNotFound
	}
	if _, exists := members[userID]; !exists {
		return parley_errors.ErrNotFound
	}
	delete(members, userID)
	return nil
}

func (r *fakeConversationRepo) GetParticipant(_ context.Context, conversationID, userID uuid.UUID) (conversation.Participant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.participants[conversationID][userID]
	if !ok {
		return conversation.Participant{}, parley_errors.ErrNotFound
	}
	return p, nil
}

func (r *fakeConversationRepo) GetParticipants(_ context.Context, conversationID uuid.UUID) ([]conversation.Participant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	members, ok := r.store.participants[conversationID]
	if !ok {
		return nil, parley_errors.ErrNotFound
	}
	out := make([]conversation.Participant, 0, len(members))
	for _, p := range members {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeConversationRepo) UpdateParticipantStatus(_ context.Context, conversationID, userID uuid.UUID, status string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.participants[conversationID][userID]
	if !ok {
		return parley_errors.ErrNotFound
	}
	p.Status = status
	r.store.participants[conversationID][userID] = p
	return nil
}

func (r *fakeConversationRepo) UpdateParticipantRole(_ context.Context, conversationID, userID uuid.UUID, role string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.participants[conversationID][userID]
	if !ok {
		return parley_errors.ErrNotFound
	}
	p.Role = role
	r.store.participants[conversationID][userID] = p
	return nil
}

type fakeMessageRepo struct {
	store *fakeStore
}

func (r *fakeMessageRepo) Append(_ context.Context, m *message.Message, sentAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.conversations[m.ConversationID]
	if !ok {
		return parley_errors.ErrNotFound
	}
	if _, member := r.store.participants[m.ConversationID][m.SenderID]; !member {
		return parley_errors.ErrForbidden
	}
	r.store.messages[m.ID] = *m
	c.LastMessageAt = &sentAt
	r.store.conversations[m.ConversationID] = c
	return nil
}

func (r *fakeMessageRepo) GetByID(_ context.Context, id uuid.UUID) (message.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m, ok := r.store.messages[id]
	if !ok {
		return message.Message{}, parley_errors.ErrNotFound
	}
	return m, nil
}

func (r *fakeMessageRepo) ListByConversation(_ context.Context, conversationID uuid.UUID) ([]message.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := []message.Message{}
	for _, m := range r.store.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.messages[id]; !ok {
		return parley_errors.ErrNotFound
	}
	delete(r.store.messages, id)
	return nil
}

type fixture struct {
	users         *fakeUserRepo
	sessions      *fakeSessionRepo
	conversations *fakeConversationRepo
	messages      *fakeMessageRepo
	service       *ConversationService
}

func newFixture() *fixture {
	store := newFakeStore()
	users := newFakeUserRepo()
	conversations := &fakeConversationRepo{store: store}
	messages := &fakeMessageRepo{store: store}
	return &fixture{
		users:         users,
		sessions:      newFakeSessionRepo(),
		conversations: conversations,
		messages:      messages,
		service:       NewConversationService(conversations, messages, users),
	}
}

var fakeUserCounter int

func (f *fixture) addUser(username string) user.User {
	fakeUserCounter++
	u := user.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@example.com",
		Phone:    "+1415555" + fmt.Sprintf("%04d", fakeUserCounter),
	}
	f.users.users[u.ID] = u
	return u
}

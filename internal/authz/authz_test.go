package authz

import (
	"errors"
	"testing"

	"parley/internal/domain/conversation"
	parley_errors "parley/pkg/errors"

	"github.com/google/uuid"
)

func member(id uuid.UUID) *conversation.Participant {
	return &conversation.Participant{UserID: id, Role: conversation.RoleMember, Status: conversation.StatusActive}
}

func admin(id uuid.UUID) *conversation.Participant {
	return &conversation.Participant{UserID: id, Role: conversation.RoleAdmin, Status: conversation.StatusActive}
}

func blocked(id uuid.UUID) *conversation.Participant {
	return &conversation.Participant{UserID: id, Role: conversation.RoleMember, Status: conversation.StatusBlocked}
}

func TestCanAddParticipant(t *testing.T) {
	actorID, targetID := uuid.New(), uuid.New()

	if err := CanAddParticipant(admin(actorID), nil); err != nil {
		t.Errorf("admin adding a non-member: unexpected error %v", err)
	}
	if err := CanAddParticipant(member(actorID), nil); !errors.Is(err, parley_errors.ErrForbidden) {
		t.Errorf("non-admin add: want ErrForbidden, got %v", err)
	}
	if err := CanAddParticipant(nil, nil); !errors.Is(err, parley_errors.ErrNotFound) {
		t.Errorf("non-member actor: want ErrNotFound, got %v", err)
	}
	if err := CanAddParticipant(admin(actorID), member(targetID)); !errors.Is(err, parley_errors.ErrConflict) {
		t.Errorf("adding an existing member: want ErrConflict, got %v", err)
	}
}

func TestCanRemoveParticipant(t *testing.T) {
	actorID, targetID := uuid.New(), uuid.New()

	self := member(actorID)
	if err := CanRemoveParticipant(self, self); err != nil {
		t.Errorf("self-removal by a member: unexpected error %v", err)
	}
	selfAdmin := admin(actorID)
	if err := CanRemoveParticipant(selfAdmin, selfAdmin); err != nil {
		t.Errorf("self-removal by an admin: unexpected error %v", err)
	}
	if err := CanRemoveParticipant(admin(actorID), member(targetID)); err != nil {
		t.Errorf("admin removing a member: unexpected error %v", err)
	}
	if err := CanRemoveParticipant(member(actorID), member(targetID)); !errors.Is(err, parley_errors.ErrForbidden) {
		t.Errorf("member removing another member: want ErrForbidden, got %v", err)
	}
	if err := CanRemoveParticipant(admin(actorID), admin(targetID)); !errors.Is(err, parley_errors.ErrForbidden) {
		t.Errorf("admin removing another admin: want ErrForbidden, got %v", err)
	}
	if err := CanRemoveParticipant(member(actorID), nil); !errors.Is(err, parley_errors.ErrNotFound) {
		t.Errorf("removing a non-member: want ErrNotFound, got %v", err)
	}
}

func TestCanBlock(t *testing.T) {
	actorID, targetID := uuid.New(), uuid.New()

	if err := CanBlock(admin(actorID), member(targetID)); err != nil {
		t.Errorf("admin blocking a member: unexpected error %v", err)
	}
	if err := CanBlock(member(actorID), member(targetID)); !errors.Is(err, parley_errors.ErrForbidden) {
		t.Errorf("member blocking: want ErrForbidden, got %v", err)
	}
	if err := CanBlock(admin(actorID), blocked(targetID)); !errors.Is(err, parley_errors.ErrConflict) {
		t.Errorf("blocking twice: want ErrConflict, got %v", err)
	}
	if err := CanBlock(admin(actorID), nil); !errors.Is(err, parley_errors.ErrNotFound) {
		t.Errorf("blocking a non-member: want ErrNotFound, got %v", err)
	}
}

func TestCanUnblock(t *testing.T) {
	actorID, targetID := uuid.New(), uuid.New()

	if err := CanUnblock(admin(actorID), blocked(targetID)); err != nil {
		t.Errorf("admin unblocking: unexpected error %v", err)
	}
	// Active target is allowed; the service treats it as a no-op.
	if err := CanUnblock(admin(actorID), member(targetID)); err != nil {
		t.Errorf("unblocking an active member: unexpected error %v", err)
	}
	if err := CanUnblock(member(actorID), blocked(targetID)); !errors.Is(err, parley_errors.ErrForbidden) {
		t.Errorf("member unblocking: want ErrForbidden, got %v", err)
	}
}

func TestCanPromote(t *testing.T) {
	actorID, targetID := uuid.New(), uuid.New()

	if err := CanPromote(admin(actorID), member(targetID)); err != nil {
		t.Errorf("admin promoting: unexpected error %v", err)
	}
	if err := CanPromote(member(actorID), member(targetID)); !errors.Is(err, parley_errors.ErrForbidden) {
		t.Errorf("member promoting: want ErrForbidden, got %v", err)
	}
	if err := CanPromote(admin(actorID), nil); !errors.Is(err, parley_errors.ErrNotFound) {
		t.Errorf("promoting a non-member: want ErrNotFound, got %v", err)
	}
}

func TestCanRename(t *testing.T) {
	if err := CanRename(member(uuid.New())); err != nil {
		t.Errorf("member renaming: unexpected error %v", err)
	}
	if err := CanRename(nil); !errors.Is(err, parley_errors.ErrNotFound) {
		t.Errorf("non-member renaming: want ErrNotFound, got %v", err)
	}
}

func TestCanSend(t *testing.T) {
	if err := CanSend(member(uuid.New())); err != nil {
		t.Errorf("member sending: unexpected error %v", err)
	}
	// Blocking does not silence a participant.
	if err := CanSend(blocked(uuid.New())); err != nil {
		t.Errorf("blocked member sending: unexpected error %v", err)
	}
	if err := CanSend(nil); !errors.Is(err, parley_errors.ErrNotFound) {
		t.Errorf("non-member sending: want ErrNotFound, got %v", err)
	}
}

func TestCanDeleteConversation(t *testing.T) {
	actorID := uuid.New()

	if err := CanDeleteConversation(conversation.TypePrivate, member(actorID)); err != nil {
		t.Errorf("participant deleting private: unexpected error %v", err)
	}
	if err := CanDeleteConversation(conversation.TypePrivate, nil); !errors.Is(err, parley_errors.ErrNotFound) {
		t.Errorf("outsider deleting private: want ErrNotFound, got %v", err)
	}
	if err := CanDeleteConversation(conversation.TypeGroup, admin(actorID)); err != nil {
		t.Errorf("admin deleting group: unexpected error %v", err)
	}
	if err := CanDeleteConversation(conversation.TypeGroup, member(actorID)); !errors.Is(err, parley_errors.ErrForbidden) {
		t.Errorf("member deleting group: want ErrForbidden, got %v", err)
	}
}

func TestCanDeleteMessage(t *testing.T) {
	senderID, otherID := uuid.New(), uuid.New()

	if err := CanDeleteMessage(senderID, senderID); err != nil {
		t.Errorf("sender deleting own message: unexpected error %v", err)
	}
	if err := CanDeleteMessage(otherID, senderID); !errors.Is(err, parley_errors.ErrForbidden) {
		t.Errorf("deleting someone else's message: want ErrForbidden, got %v", err)
	}
}

func TestCanDeleteMessageAsAdmin(t *testing.T) {
	if err := CanDeleteMessageAsAdmin(admin(uuid.New())); err != nil {
		t.Errorf("admin deleting: unexpected error %v", err)
	}
	if err := CanDeleteMessageAsAdmin(member(uuid.New())); !errors.Is(err, parley_errors.ErrForbidden) {
		t.Errorf("member deleting as admin: want ErrForbidden, got %v", err)
	}
	if err := CanDeleteMessageAsAdmin(nil); !errors.Is(err, parley_errors.ErrNotFound) {
		t.Errorf("non-member deleting as admin: want ErrNotFound, got %v", err)
	}
}

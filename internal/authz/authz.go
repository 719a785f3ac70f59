package authz

import (
	"parley/internal/domain/conversation"
	parley_errors "parley/pkg/errors"

	"github.com/google/uuid"
)

// Pure decision functions over participant records. Callers load the records;
// nothing here touches the store. A nil participant means "not a member at
// all", which is reported as ErrNotFound so it stays distinguishable from a
// role failure (ErrForbidden) and a state failure (ErrConflict).

func requireParticipant(p *conversation.Participant) error {
	if p == nil {
		return parley_errors.ErrNotFound
	}
	return nil
}

func requireAdmin(p *conversation.Participant) error {
	if err := requireParticipant(p); err != nil {
		return err
	}
	if !p.IsAdmin() {
		return parley_errors.ErrForbidden
	}
	return nil
}

// CanAddParticipant: only an Admin may add, and the target must not already
// be a member.
func CanAddParticipant(actor, target *conversation.Participant) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if target != nil {
		return parley_errors.ErrConflict
	}
	return nil
}

// CanRemoveParticipant: self-removal is always allowed. Removing another
// participant requires an Admin actor, and Admins cannot be removed by peers.
func CanRemoveParticipant(actor, target *conversation.Participant) error {
	if err := requireParticipant(actor); err != nil {
		return err
	}
	if err := requireParticipant(target); err != nil {
		return err
	}
	if actor.UserID == target.UserID {
		return nil
	}
	if !actor.IsAdmin() {
		return parley_errors.ErrForbidden
	}
	if target.IsAdmin() {
		return parley_errors.ErrForbidden
	}
	return nil
}

// CanBlock: Admin only, and blocking an already-blocked participant is a
// conflict, not a no-op.
func CanBlock(actor, target *conversation.Participant) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := requireParticipant(target); err != nil {
		return err
	}
	if target.IsBlocked() {
		return parley_errors.ErrConflict
	}
	return nil
}

// CanUnblock: Admin only. Unblocking an active participant is permitted and
// the caller treats it as a no-op.
func CanUnblock(actor, target *conversation.Participant) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return requireParticipant(target)
}

// CanPromote: Admin only.
func CanPromote(actor, target *conversation.Participant) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return requireParticipant(target)
}

// CanRename: any current participant may rename the conversation. No role
// check; see the authorization notes in DESIGN.md.
func CanRename(actor *conversation.Participant) error {
	return requireParticipant(actor)
}

// CanSend: the sender must be a current participant. A BLOCKED participant
// may still send; blocking governs admin-managed state only.
func CanSend(actor *conversation.Participant) error {
	return requireParticipant(actor)
}

// CanDeleteConversation: either side may delete a private conversation; a
// group can only be deleted by an Admin.
func CanDeleteConversation(conversationType string, actor *conversation.Participant) error {
	if conversationType == conversation.TypePrivate {
		return requireParticipant(actor)
	}
	return requireAdmin(actor)
}

// CanDeleteMessage: only the sender may delete their own message.
func CanDeleteMessage(actorID, senderID uuid.UUID) error {
	if actorID != senderID {
		return parley_errors.ErrForbidden
	}
	return nil
}

// CanDeleteMessageAsAdmin: an Admin of the message's conversation may delete
// any message in it.
func CanDeleteMessageAsAdmin(actor *conversation.Participant) error {
	return requireAdmin(actor)
}

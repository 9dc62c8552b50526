package domain

// AccessDecision is the result of evaluating a requester against a document.
// It is an explicit value threaded through the call chain; nothing caches it
// across requests because grants can change between calls.
type AccessDecision struct {
	CanRead  bool `json:"can_read"`
	CanWrite bool `json:"can_write"`
	CanAdmin bool `json:"can_admin"`
	IsOwner  bool `json:"is_owner"`
}

// EvaluateAccess is a pure function over a document, an optional requester
// identity (empty string means anonymous), and the requester's grant on the
// document (nil if none). Rules, in order:
//
//  1. A public document is readable by everyone.
//  2. The owner holds every capability.
//  3. A grant maps to capabilities through the read < write < admin ordering.
//  4. Anything else is denied.
func EvaluateAccess(doc *Document, requesterID string, grant *PermissionGrant) AccessDecision {
	var d AccessDecision

	if doc == nil || doc.IsDeleted() {
		return d
	}

	if doc.IsPublic {
		d.CanRead = true
	}

	if requesterID == "" {
		return d
	}

	if doc.OwnerID == requesterID {
		return AccessDecision{CanRead: true, CanWrite: true, CanAdmin: true, IsOwner: true}
	}

	if grant != nil && grant.DocumentID == doc.ID && grant.GranteeID == requesterID {
		d.CanRead = d.CanRead || grant.Level.CanRead()
		d.CanWrite = grant.Level.CanWrite()
		d.CanAdmin = grant.Level.CanAdmin()
	}

	return d
}

package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/bramblewiki/bramble/pkg/principal"
	"github.com/bramblewiki/bramble/pkg/user"
)

// State is a session's authentication state, supplied by the external
// authenticator. The engine never verifies credentials; it only consumes
// the resulting state.
type State int

const (
	// StateAnonymous is the initial state: no identity claimed.
	StateAnonymous State = iota
	// StateAsserted means an identity was claimed (e.g. via cookie) but not
	// verified. Asserted sessions deliberately get no group or custom-role
	// grants.
	StateAsserted
	// StateAuthenticated means the identity was verified upstream.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAsserted:
		return "asserted"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// CustomRoleGrant attaches a container-supplied custom role to a session.
// PreAuth marks roles available before full authentication; only those
// appear in an asserted session's effective roles.
type CustomRoleGrant struct {
	Role    principal.CustomRole
	PreAuth bool
}

// Session is one user's authentication lifecycle. Transitions are monotonic:
// anonymous → asserted → authenticated, with Logout as the only way back.
// Every transition bumps the session's version, which invalidates any cached
// effective-role computation for it.
type Session struct {
	mu          sync.Mutex
	id          string
	state       State
	asserted    string
	profile     *user.Profile
	customRoles []CustomRoleGrant
	version     uint64
}

// NewAnonymous creates a fresh anonymous session.
func NewAnonymous() *Session {
	return &Session{id: uuid.NewString(), state: StateAnonymous}
}

// ID returns the session's stable identifier.
func (s *Session) ID() string { return s.id }

// State returns the current authentication state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Version returns a counter that increments on every state transition.
// Role caches key on (ID, Version) so a stale entry can never serve a
// session that has since transitioned.
func (s *Session) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// IsAnonymous reports whether the session is anonymous.
func (s *Session) IsAnonymous() bool { return s.State() == StateAnonymous }

// IsAsserted reports whether the session has a claimed, unverified identity.
func (s *Session) IsAsserted() bool { return s.State() == StateAsserted }

// IsAuthenticated reports whether the session's identity was verified.
// Also satisfies group.Subject.
func (s *Session) IsAuthenticated() bool { return s.State() == StateAuthenticated }

// Assert records a claimed identity on an anonymous session. On any other
// state it is a no-op: transitions are monotonic and asserting cannot
// downgrade an authenticated session.
func (s *Session) Assert(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAnonymous {
		return
	}
	s.state = StateAsserted
	s.asserted = name
	s.version++
}

// Authenticate upgrades the session with a verified profile. Allowed from
// any state; authenticating an already-authenticated session replaces its
// profile (re-login).
func (s *Session) Authenticate(p *user.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateAuthenticated
	s.profile = p
	s.asserted = ""
	s.version++
}

// Logout resets the session to anonymous, dropping identity and custom
// roles. The session ID is retained.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateAnonymous
	s.profile = nil
	s.asserted = ""
	s.customRoles = nil
	s.version++
}

// GrantCustomRole attaches a container-supplied role to the session.
func (s *Session) GrantCustomRole(g CustomRoleGrant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customRoles = append(s.customRoles, g)
	s.version++
}

// CustomRoles returns the session's custom role grants.
func (s *Session) CustomRoles() []CustomRoleGrant {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CustomRoleGrant, len(s.customRoles))
	copy(out, s.customRoles)
	return out
}

// Profile returns the authenticated profile, or nil.
func (s *Session) Profile() *user.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Principals returns the session's base identity principals: all three name
// forms when authenticated, the claimed name when asserted, nothing when
// anonymous. Also satisfies group.Subject.
func (s *Session) Principals() []principal.Principal {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateAuthenticated:
		if s.profile == nil {
			return nil
		}
		return s.profile.Principals()
	case StateAsserted:
		if s.asserted == "" {
			return nil
		}
		return []principal.Principal{principal.NewUser(s.asserted, principal.KindLogin)}
	}
	return nil
}

// DisplayName returns a human-readable identity for logs and audit records.
func (s *Session) DisplayName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateAuthenticated:
		if s.profile != nil {
			return s.profile.LoginName
		}
	case StateAsserted:
		return s.asserted
	}
	return "anonymous"
}

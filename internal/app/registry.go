package app

import "sync"

// Conn is one live transport channel. Implementations must make WriteJSON
// safe for concurrent use; the websocket adapter wraps the raw connection in
// a single-writer guard.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Role identifies what a connection is allowed to do within its session.
type Role string

const (
	RoleHost        Role = "host"
	RoleParticipant Role = "participant"
)

// ConnContext binds a connection to a session and role. A connection has at
// most one context at a time; re-registering replaces it.
type ConnContext struct {
	SessionID     string
	Role          Role
	ParticipantID string
	HostUserID    string
}

// Registry owns the connection-to-context and session-to-connections maps.
// Sessions persist in the registry until explicitly dropped; the last
// connection leaving does not tear anything down.
type Registry struct {
	mu       sync.RWMutex
	contexts map[Conn]ConnContext
	sessions map[string]map[Conn]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		contexts: make(map[Conn]ConnContext),
		sessions: make(map[string]map[Conn]struct{}),
	}
}

// Register attaches a context to conn and adds it to the session's set. If
// conn already had a context it is moved out of its previous session first.
func (r *Registry) Register(conn Conn, ctx ConnContext) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.contexts[conn]; ok && prev.SessionID != ctx.SessionID {
		r.removeFromSessionLocked(prev.SessionID, conn)
	}
	r.contexts[conn] = ctx
	set, ok := r.sessions[ctx.SessionID]
	if !ok {
		set = make(map[Conn]struct{})
		r.sessions[ctx.SessionID] = set
	}
	set[conn] = struct{}{}
}

// Unregister drops conn's context and removes it from its session's set.
// No-op for an unregistered connection.
func (r *Registry) Unregister(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, ok := r.contexts[conn]
	if !ok {
		return
	}
	delete(r.contexts, conn)
	r.removeFromSessionLocked(ctx.SessionID, conn)
}

// ConnectionsOf returns a snapshot of the live connections for a session.
func (r *Registry) ConnectionsOf(sessionID string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.sessions[sessionID]
	conns := make([]Conn, 0, len(set))
	for conn := range set {
		conns = append(conns, conn)
	}
	return conns
}

// ContextOf returns the context attached to conn, if any.
func (r *Registry) ContextOf(conn Conn) (ConnContext, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ctx, ok := r.contexts[conn]
	return ctx, ok
}

// DropSession removes every connection of a session from the registry and
// returns them so the caller can close the underlying channels.
func (r *Registry) DropSession(sessionID string) []Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.sessions[sessionID]
	conns := make([]Conn, 0, len(set))
	for conn := range set {
		conns = append(conns, conn)
		delete(r.contexts, conn)
	}
	delete(r.sessions, sessionID)
	return conns
}

func (r *Registry) removeFromSessionLocked(sessionID string, conn Conn) {
	set, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(r.sessions, sessionID)
	}
}

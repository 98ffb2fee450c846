package app

import "log"

// Message is the outbound envelope shared by every event the coordinator
// emits.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Broadcaster fans messages out to the live connections of a session. Sends
// are best-effort: a broken connection is logged and skipped, never aborting
// delivery to the rest; the disconnect path reaps it.
type Broadcaster struct {
	registry *Registry
}

func NewBroadcaster(registry *Registry) *Broadcaster {
	return &Broadcaster{registry: registry}
}

// ToSession delivers msg to every connection registered for the session at
// call time.
func (b *Broadcaster) ToSession(sessionID string, msg Message) {
	for _, conn := range b.registry.ConnectionsOf(sessionID) {
		b.SendTo(conn, msg)
	}
}

// ToHosts delivers msg to the host-role connections of the session only.
func (b *Broadcaster) ToHosts(sessionID string, msg Message) {
	for _, conn := range b.registry.ConnectionsOf(sessionID) {
		if ctx, ok := b.registry.ContextOf(conn); ok && ctx.Role == RoleHost {
			b.SendTo(conn, msg)
		}
	}
}

// SendTo writes msg to a single connection, swallowing failures.
func (b *Broadcaster) SendTo(conn Conn, msg Message) {
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("send %s failed: %v", msg.Type, err)
	}
}

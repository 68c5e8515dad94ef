package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, names ...string) (*Router, *Registry, map[string]*Session) {
	t.Helper()
	registry := NewRegistry()
	sessions := make(map[string]*Session, len(names))
	for _, name := range names {
		s := newTestSession("")
		require.True(t, registry.Register(name, s))
		sessions[name] = s
	}
	return NewRouter(registry, testLogger(), fixedClock), registry, sessions
}

func TestRouter_Broadcast_Excludes_Sender(t *testing.T) {
	req := require.New(t)
	router, _, sessions := newTestRouter(t, "alice", "bob", "carol")

	// When alice broadcasts
	delivered := router.Broadcast(sessions["alice"], "hi")

	// Then bob and carol receive exactly one stamped line each
	req.Equal(2, delivered)
	req.Equal([]string{"[15:04:05] alice: hi"}, queued(sessions["bob"]))
	req.Equal([]string{"[15:04:05] alice: hi"}, queued(sessions["carol"]))
	// And alice receives nothing
	req.Empty(queued(sessions["alice"]))
}

func TestRouter_Broadcast_Uses_Current_Name(t *testing.T) {
	req := require.New(t)
	router, registry, sessions := newTestRouter(t, "alice", "bob")

	// Given alice renamed herself before speaking
	req.True(registry.Rename("alice", "dave"))

	router.Broadcast(sessions["alice"], "hello")

	req.Equal([]string{"[15:04:05] dave: hello"}, queued(sessions["bob"]))
	req.Empty(queued(sessions["alice"]))
}

func TestRouter_Broadcast_Survives_Failing_Recipient(t *testing.T) {
	req := require.New(t)
	router, registry, sessions := newTestRouter(t, "alice", "carol")

	// Given bob's outbox is full and will stay full
	bob := newSession("", 1, 5*time.Millisecond, fixedClock())
	req.True(registry.Register("bob", bob))
	req.NoError(bob.Deliver("backlog"))
	// And dave's session is already closing
	dave := newTestSession("")
	req.True(registry.Register("dave", dave))
	dave.close()

	delivered := router.Broadcast(sessions["alice"], "still here")

	// Then carol still gets the line
	req.Equal(1, delivered)
	req.Equal([]string{"[15:04:05] alice: still here"}, queued(sessions["carol"]))
	req.Equal([]string{"backlog"}, queued(bob))
}

func TestRouter_Announce_Reaches_Everyone(t *testing.T) {
	req := require.New(t)
	router, _, sessions := newTestRouter(t, "alice", "bob")

	req.Equal(2, router.Announce("alice joined the chat!"))

	for _, s := range sessions {
		req.Equal([]string{"[15:04:05] alice joined the chat!"}, queued(s))
	}
}

func TestRouter_Whisper_Unknown_Recipient(t *testing.T) {
	req := require.New(t)
	router, _, sessions := newTestRouter(t, "alice", "bob")

	req.False(router.Whisper(sessions["alice"], "ghost", "boo"))

	// Then nobody receives anything
	for _, s := range sessions {
		req.Empty(queued(s))
	}
}

func TestRouter_Whisper_Delivers_Once_And_Confirms(t *testing.T) {
	req := require.New(t)
	router, _, sessions := newTestRouter(t, "alice", "bob", "carol")

	req.True(router.Whisper(sessions["bob"], "carol", "secret"))

	req.Equal([]string{"[15:04:05] bob whispered: secret"}, queued(sessions["carol"]))
	req.Equal([]string{"[15:04:05] Whispered to carol: secret"}, queued(sessions["bob"]))
	req.Empty(queued(sessions["alice"]))
}

func TestRouter_Whisper_Skips_Confirmation_For_Unregistered_Sender(t *testing.T) {
	req := require.New(t)
	router, registry, sessions := newTestRouter(t, "bob", "carol")

	// Given bob's entry vanished concurrently
	registry.Unregister("bob")

	req.True(router.Whisper(sessions["bob"], "carol", "late"))

	req.Len(queued(sessions["carol"]), 1)
	req.Empty(queued(sessions["bob"]))
}

func TestRouter_UserListing(t *testing.T) {
	t.Run("empty registry has a sentinel", func(t *testing.T) {
		router, _, _ := newTestRouter(t)
		require.Equal(t, "No users currently connected", router.UserListing())
	})

	t.Run("names are listed in order", func(t *testing.T) {
		router, _, _ := newTestRouter(t, "carol", "alice", "bob")
		require.Equal(t,
			"Connected Users (3):\n  ~ alice\n  ~ bob\n  ~ carol",
			router.UserListing())
	})
}

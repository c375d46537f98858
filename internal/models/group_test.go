package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInviteCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := NewInviteCode()
		require.NoError(t, err)
		require.Len(t, code, InviteCodeLength)
		for _, c := range code {
			assert.True(t, strings.ContainsRune(InviteCodeAlphabet, c), "unexpected character %q in %s", c, code)
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 90, "codes should be effectively unique")
}

func TestGroupOwner(t *testing.T) {
	g := Group{}
	assert.Equal(t, "", g.Owner())

	g.Members = []string{"alice", "bob"}
	assert.Equal(t, "alice", g.Owner())
}

func TestGroupHasMember(t *testing.T) {
	g := Group{Members: []string{"alice", "bob"}}
	assert.True(t, g.HasMember("bob"))
	assert.False(t, g.HasMember("carol"))
}

func TestGroupRemoveMember(t *testing.T) {
	g := Group{Members: []string{"alice", "bob", "carol"}}

	g.RemoveMember("bob")
	assert.Equal(t, []string{"alice", "carol"}, []string(g.Members))

	g.RemoveMember("missing")
	assert.Equal(t, []string{"alice", "carol"}, []string(g.Members))

	g.RemoveMember("alice")
	g.RemoveMember("carol")
	assert.Empty(t, g.Members)
}

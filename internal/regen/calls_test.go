package regen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func callNode(kind, field, name string) *fakeNode {
	return &fakeNode{
		kind:   kind,
		fields: map[string]*fakeNode{field: {kind: "identifier", text: name}},
	}
}

func TestExtractCalls(t *testing.T) {
	root := tree("block",
		callNode("method_invocation", "name", "findById"),
		tree("expression_statement",
			callNode("call", "function", "repo.save")),
		callNode("method_invocation", "name", "findById"),
	)

	calls := extractCalls(root)

	// findById normalizes into the find bucket, save into create, and
	// the duplicate collapses.
	assert.Len(t, calls, 2)
	assert.Contains(t, calls, "findbyid")
	assert.Contains(t, calls, "create")
}

func TestExtractCalls_NilAndEmpty(t *testing.T) {
	assert.Empty(t, extractCalls(nil))
	assert.Empty(t, extractCalls(tree("block", tree("return_statement"))))
}

func TestCallName_QualifiedReceiver(t *testing.T) {
	n := callNode("call", "function", "self.owner.getName")
	assert.Equal(t, "getName", callName(n))
}

func TestNormalizeCallName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"accessor prefix stripped", "getOwner", "owner"},
		{"set accessor stripped", "setAddress", "address"},
		{"short tail falls through to synonym prefix", "getId", "findid"},
		{"bare get collapses to find", "get", "find"},
		{"load synonym", "loadUser", "finduser"},
		{"search synonym", "searchUser", "finduser"},
		{"find canonical unchanged", "findUser", "finduser"},
		{"save synonym", "saveOwner", "createowner"},
		{"remove synonym", "removePet", "deletepet"},
		{"update synonym", "updateVisit", "editvisit"},
		{"plain name lowercased", "validateOwner", "validateowner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeCallName(tt.in))
		})
	}
}

func TestJaccard(t *testing.T) {
	set := func(names ...string) map[string]struct{} {
		s := make(map[string]struct{})
		for _, n := range names {
			s[n] = struct{}{}
		}
		return s
	}

	assert.Equal(t, 1.0, jaccard(set(), set()))
	assert.Equal(t, 0.0, jaccard(set("a"), set()))
	assert.Equal(t, 1.0, jaccard(set("a", "b"), set("a", "b")))
	assert.InDelta(t, 1.0/3.0, jaccard(set("a", "b"), set("b", "c")), 1e-9)
}

// Package family reconstructs the continuity family of an application by
// walking parent and child links and orders the resulting members.
package family

import (
	"encoding/json"

	"github.com/turtacn/KeyIP-Continuity/internal/domain/patent"
)

// Outcome classifies how a node's continuity lookup ended.
type Outcome string

const (
	OutcomeResolved Outcome = "resolved"
	OutcomeNotFound Outcome = "not_found"
	OutcomeFailed   Outcome = "failed"
)

// Node is one application visited during traversal.
type Node struct {
	ApplicationNumber string                      `json:"application_number"`
	Depth             int                         `json:"depth"`
	Outcome           Outcome                     `json:"outcome"`
	Parents           []patent.ContinuityRelation `json:"parents,omitempty"`
	Children          []patent.ContinuityRelation `json:"children,omitempty"`
	Raw               json.RawMessage             `json:"-"`
	Reason            string                      `json:"reason,omitempty"`
}

// Tree is the set of visited nodes keyed by application number.  Order holds
// the keys in visit order, root first.
type Tree struct {
	Root  string           `json:"root"`
	Nodes map[string]*Node `json:"nodes"`
	Order []string         `json:"order"`
}

func newTree(root string) *Tree {
	return &Tree{Root: root, Nodes: make(map[string]*Node)}
}

func (t *Tree) add(n *Node) {
	if _, ok := t.Nodes[n.ApplicationNumber]; ok {
		return
	}
	t.Nodes[n.ApplicationNumber] = n
	t.Order = append(t.Order, n.ApplicationNumber)
}

// Len returns the number of visited nodes, root included.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Nodes)
}

// Get returns the node for an application number.
func (t *Tree) Get(app string) (*Node, bool) {
	if t == nil {
		return nil, false
	}
	n, ok := t.Nodes[app]
	return n, ok
}

// Members returns every visited application number except the root, in
// visit order.
func (t *Tree) Members() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.Order))
	for _, app := range t.Order {
		if app != t.Root {
			out = append(out, app)
		}
	}
	return out
}

// Outcomes counts nodes per outcome.
func (t *Tree) Outcomes() map[string]int {
	out := make(map[string]int, 3)
	if t == nil {
		return out
	}
	for _, n := range t.Nodes {
		out[string(n.Outcome)]++
	}
	return out
}

// Edge is a directed continuity link.
type Edge struct {
	Parent string `json:"parent"`
	Child  string `json:"child"`
}

// AsymmetricEdges lists links reported by one resolved node but not mirrored
// by the other resolved endpoint.  Links touching an unresolved node are not
// reported.  Traversal does not depend on this; it is diagnostic only.
func (t *Tree) AsymmetricEdges() []Edge {
	if t == nil {
		return nil
	}
	var out []Edge
	seen := make(map[Edge]struct{})
	report := func(e Edge) {
		if _, dup := seen[e]; dup {
			return
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}

	for _, app := range t.Order {
		n := t.Nodes[app]
		if n.Outcome != OutcomeResolved {
			continue
		}
		for _, rel := range n.Children {
			child, ok := t.Nodes[rel.ChildApplicationNumber]
			if !ok || child.Outcome != OutcomeResolved || child.ApplicationNumber == app {
				continue
			}
			if !listsParent(child, app) {
				report(Edge{Parent: app, Child: child.ApplicationNumber})
			}
		}
		for _, rel := range n.Parents {
			parent, ok := t.Nodes[rel.ParentApplicationNumber]
			if !ok || parent.Outcome != OutcomeResolved || parent.ApplicationNumber == app {
				continue
			}
			if !listsChild(parent, app) {
				report(Edge{Parent: parent.ApplicationNumber, Child: app})
			}
		}
	}
	return out
}

func listsParent(n *Node, parent string) bool {
	for _, rel := range n.Parents {
		if rel.ParentApplicationNumber == parent {
			return true
		}
	}
	return false
}

func listsChild(n *Node, child string) bool {
	for _, rel := range n.Children {
		if rel.ChildApplicationNumber == child {
			return true
		}
	}
	return false
}

//Personal.AI order the ending

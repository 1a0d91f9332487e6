package mcts

import "fmt"

const (
	CanExpand    uint32 = 0
	ExpandedMask uint32 = 2 // untried actions are known
	TerminalMask uint32 = 4
)

type NodeBase[S StateLike[S, A], A any] struct {
	Stats    NodeStats
	State    S
	Action   A // action which led from the parent to this node
	Children []*NodeBase[S, A]
	Parent   *NodeBase[S, A]
	Flags    uint32
	untried  []A
}

func newRootNode[S StateLike[S, A], A any](state S) *NodeBase[S, A] {
	return &NodeBase[S, A]{
		State: state,
		Flags: TerminalFlag(state.IsTerminal()),
	}
}

func NewBaseNode[S StateLike[S, A], A any](parent *NodeBase[S, A], action A, state S) *NodeBase[S, A] {
	return &NodeBase[S, A]{
		State:  state,
		Action: action,
		Parent: parent,
		Flags:  TerminalFlag(state.IsTerminal()),
	}
}

// Reads the node's flags, and return wheter the node is terminal
func (node *NodeBase[S, A]) Terminal() bool {
	return node.Flags&TerminalMask == TerminalMask
}

func TerminalFlag(terminal bool) uint32 {
	flag := uint32(0)
	if terminal {
		flag |= TerminalMask
	}
	return flag
}

// Whether the possible actions of the state were already generated
func (node *NodeBase[S, A]) Expanded() bool {
	return node.Flags&ExpandedMask == ExpandedMask
}

// Every action has a child node
func (node *NodeBase[S, A]) FullyExpanded() bool {
	return node.Expanded() && len(node.untried) == 0
}

// Number of actions without a child yet
func (node *NodeBase[S, A]) Untried() int {
	return len(node.untried)
}

// Generate the actions of the state, only the first call does anything
func (node *NodeBase[S, A]) expandActions() {
	if node.Expanded() {
		return
	}
	node.Flags |= ExpandedMask
	if node.Terminal() {
		return
	}
	actions := node.State.PossibleActions()
	node.untried = make([]A, len(actions))
	copy(node.untried, actions)
}

// Pop the next untried action, in the order the state returned them,
// and attach the resulting child
func (node *NodeBase[S, A]) expandNext() *NodeBase[S, A] {
	action := node.untried[0]
	node.untried = node.untried[1:]
	child := NewBaseNode(node, action, node.State.TakeAction(action))
	node.Children = append(node.Children, child)
	return child
}

// Depth of the node, root has 0
func (node *NodeBase[S, A]) Depth() int {
	depth := 0
	for n := node.Parent; n != nil; n = n.Parent {
		depth++
	}
	return depth
}

func (node *NodeBase[S, A]) String() string {
	return fmt.Sprintf("Node{action=%v, stats=%v, children=%d, untried=%d, terminal=%v}",
		node.Action, node.Stats, len(node.Children), len(node.untried), node.Terminal())
}

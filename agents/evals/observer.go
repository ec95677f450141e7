/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"path"
	"sort"
	"sync"
)

// Observer receives the outcome of each case as a Runner completes it.
// Implementations must be safe for concurrent use when runs are parallel.
type Observer interface {
	// Fail records a task or scorer failure for a case
	Fail(string)
	// Log records an informational message
	Log(string)
	// Grade records a score (0.0-1.0) with reasoning
	Grade(score float64, reasoning string)
	// Increment is called once per case observed
	Increment()
	// Total returns the number of observed cases
	Total() int64
}

// namespacer is implemented by observers that hand out one child per scorer.
type namespacer interface {
	Namespace(name string) Observer
}

// NamespacedObserver provides hierarchical namespacing for Observer instances.
// A Runner given a NamespacedObserver reports each scorer under its own child.
type NamespacedObserver[T Observer] struct {
	name     string                            // The name of this namespace node
	inner    T                                 // The Observer instance for this namespace
	factory  func(string) T                    // Factory function to create new T instances
	children map[string]*NamespacedObserver[T] // Child namespaces
	mu       sync.Mutex                        // Protects children map
}

var _ namespacer = (*NamespacedObserver[Observer])(nil)

// NewNamespacedObserver creates a new root NamespacedObserver with the given factory function
func NewNamespacedObserver[T Observer](factory func(string) T) *NamespacedObserver[T] {
	return &NamespacedObserver[T]{
		name:     "/",
		inner:    factory("/"),
		factory:  factory,
		children: make(map[string]*NamespacedObserver[T]),
	}
}

// Name returns the full path of this namespace.
func (n *NamespacedObserver[T]) Name() string { return n.name }

// Inner returns the Observer backing this namespace.
func (n *NamespacedObserver[T]) Inner() T { return n.inner }

func (n *NamespacedObserver[T]) Fail(msg string) { n.inner.Fail(msg) }

func (n *NamespacedObserver[T]) Log(msg string) { n.inner.Log(msg) }

func (n *NamespacedObserver[T]) Grade(score float64, reasoning string) {
	n.inner.Grade(score, reasoning)
}

func (n *NamespacedObserver[T]) Increment() { n.inner.Increment() }

func (n *NamespacedObserver[T]) Total() int64 { return n.inner.Total() }

// Namespace returns Child(name) as an Observer.
func (n *NamespacedObserver[T]) Namespace(name string) Observer {
	return n.Child(name)
}

// Child returns the child namespace with the given name, creating it if necessary
func (n *NamespacedObserver[T]) Child(name string) *NamespacedObserver[T] {
	n.mu.Lock()
	defer n.mu.Unlock()

	if child, exists := n.children[name]; exists {
		return child
	}

	childPath := path.Join(n.name, name)
	child := &NamespacedObserver[T]{
		name:     childPath,
		inner:    n.factory(childPath),
		factory:  n.factory,
		children: make(map[string]*NamespacedObserver[T]),
	}
	n.children[name] = child
	return child
}

// Walk traverses the observer tree in depth-first order, calling the visitor function
// on the current node first, then on all children in sorted order by name
func (n *NamespacedObserver[T]) Walk(visitor func(string, T)) {
	visitor(n.name, n.inner)

	n.mu.Lock()
	children := make([]*NamespacedObserver[T], 0, len(n.children))
	for _, child := range n.children {
		children = append(children, child)
	}
	n.mu.Unlock()

	sort.Slice(children, func(i, j int) bool { return children[i].name < children[j].name })
	for _, child := range children {
		child.Walk(visitor)
	}
}

type nopObserver struct{}

func (nopObserver) Fail(string)           {}
func (nopObserver) Log(string)            {}
func (nopObserver) Grade(float64, string) {}
func (nopObserver) Increment()            {}
func (nopObserver) Total() int64          { return 0 }

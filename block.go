package gochan

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNoChannel is returned by Connect when a component does not own the
// channel end it is asked to expose.
var ErrNoChannel = errors.New("gochan: component has no channel")

// Component represents any building block that can be part of a Block.
// All gochan runners implement this interface.
type Component interface {
	// Stop stops the component and cleans up resources
	Stop() error

	// IsRunning returns true if the component is currently running
	IsRunning() bool
}

// InputComponent represents a component fed through a channel it owns.
type InputComponent[T any] interface {
	Component

	// InputChan returns the sender feeding this component
	InputChan() *Sender[T]
}

// OutputComponent represents a component that emits into a channel it owns.
type OutputComponent[T any] interface {
	Component

	// OutputChan returns the receiver for this component's output
	OutputChan() *Receiver[T]
}

// Block represents a composite component made up of multiple connected primitives.
// A Block itself acts as a component and can be nested within other Blocks.
type Block struct {
	name       string
	components []Component
	mu         sync.RWMutex
}

// NewBlock creates a new block with the given name
func NewBlock(name string) *Block {
	return &Block{
		name:       name,
		components: make([]Component, 0),
	}
}

// Add adds components to this block. They are stopped in reverse order
// of addition, so add upstream components first.
func (b *Block) Add(components ...Component) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.components = append(b.components, components...)
}

// Connect pipes the output of one component into the input of another.
// Both ends are cloned, so the components keep their own handles. Returns
// the pipe so it can be managed if needed.
func Connect[T any](from OutputComponent[T], to InputComponent[T]) (*Mapper[T, T], error) {
	return ConnectWith(from, to, idMapperFunc[T])
}

// ConnectWith connects two components using a custom mapper function
func ConnectWith[I, O any](from OutputComponent[I], to InputComponent[O],
	mapper func(I) (O, bool, bool)) (*Mapper[I, O], error) {
	out, in := from.OutputChan(), to.InputChan()
	if out == nil || in == nil {
		return nil, ErrNoChannel
	}
	rx, err := out.Clone()
	if err != nil {
		return nil, err
	}
	tx, err := in.Clone()
	if err != nil {
		rx.Close()
		return nil, err
	}
	return NewMapper(rx, tx, mapper), nil
}

// Stop stops every component in reverse order of addition, so downstream
// stages go first. A failing component does not keep the others running;
// all failures are joined into the returned error.
func (b *Block) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	for i := len(b.components) - 1; i >= 0; i-- {
		if err := b.components[i].Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop component %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// IsRunning returns true if any component in the block is running
func (b *Block) IsRunning() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, comp := range b.components {
		if comp.IsRunning() {
			return true
		}
	}
	return false
}

// Name returns the block's name
func (b *Block) Name() string {
	return b.name
}

// Count returns the number of components in this block
func (b *Block) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.components)
}

// Merge pattern - multiple inputs, one output
type Merge[T any] struct {
	*Block
	fanin *FanIn[T]
}

// NewMerge creates a merge block using FanIn
func NewMerge[T any](name string) *Merge[T] {
	fanin := NewFanIn[T](nil)
	block := NewBlock(name)
	block.Add(fanin)

	return &Merge[T]{
		Block: block,
		fanin: fanin,
	}
}

// OutputChan implements OutputComponent
func (m *Merge[T]) OutputChan() *Receiver[T] {
	return m.fanin.OutputChan()
}

// AddInput adds a new input receiver to the merge
func (m *Merge[T]) AddInput(input *Receiver[T]) error {
	return m.fanin.Add(input)
}

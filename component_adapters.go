package gochan

// This file contains adapter methods to make existing components
// conform to the Component, InputComponent, and OutputComponent interfaces.

var (
	_ OutputComponent[Message[int]] = (*Reader[int])(nil)
	_ InputComponent[int]           = (*Reducer[int, []int, []int])(nil)
	_ OutputComponent[[]int]        = (*Reducer[int, []int, []int])(nil)
	_ OutputComponent[int]          = (*FanIn[int])(nil)
	_ OutputComponent[int]          = (*Merge[int])(nil)
	_ InputComponent[int]           = (*WorkerPool[int, int])(nil)
	_ OutputComponent[Message[int]] = (*WorkerPool[int, int])(nil)
	_ Component                     = (*Mapper[int, int])(nil)
	_ Component                     = (*Block)(nil)
)

// WorkerPool adapters

// InputChan is an alias for the pool's job sender to conform to InputComponent
func (p *WorkerPool[J, R]) InputChan() *Sender[J] {
	return p.jobs
}

// OutputChan is an alias for Results to conform to OutputComponent
func (p *WorkerPool[J, R]) OutputChan() *Receiver[Message[R]] {
	return p.Results()
}

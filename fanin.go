package gochan

import "sync"

// FanIn merges multiple input channels into a single output channel.
// Every input gets its own Pipe holding a clone of the output Sender, so
// values from all inputs land in one FIFO stream.
//
// The merged stream ends (receivers see ErrDisconnected) once the FanIn is
// stopped and every pipe has closed its clone.
type FanIn[T any] struct {
	*RunnerBase
	// OnChannelRemoved is called when a channel is removed so the caller can
	// perform other cleanups etc based on this
	OnChannelRemoved func(fi *FanIn[T], input *Receiver[T])

	mu      sync.Mutex
	stopped bool
	inputs  []*Mapper[T, T]
	output  *Sender[T]
	outRecv *Receiver[T]
}

// NewFanIn creates a FanIn that merges into output. If output is nil, a new
// unbounded channel is created and its receiver is returned by
// OutputChan. The FanIn owns output and closes it on Stop.
func NewFanIn[T any](output *Sender[T]) *FanIn[T] {
	out := &FanIn[T]{
		RunnerBase: newRunnerBase("fanin"),
		output:     output,
	}
	if output == nil {
		out.output, out.outRecv = NewUnbounded[T]()
	}
	out.start()
	return out
}

// OutputChan returns the merged receiver when the FanIn created its own
// output channel, nil otherwise.
func (fi *FanIn[T]) OutputChan() *Receiver[T] {
	return fi.outRecv
}

// Add starts merging the given inputs. The FanIn takes ownership of each
// receiver and closes it when the input is removed or drained.
func (fi *FanIn[T]) Add(inputs ...*Receiver[T]) error {
	fi.mu.Lock()
	defer fi.mu.Unlock()
	if fi.stopped {
		return ErrHandleClosed
	}
	for _, input := range inputs {
		if input == nil {
			panic("Cannot add nil receivers")
		}
		tx, err := fi.output.Clone()
		if err != nil {
			return err
		}
		pipe := NewPipe(input, tx, WithMapperOnDone(fi.pipeClosed))
		fi.inputs = append(fi.inputs, pipe)
	}
	return nil
}

// Remove stops merging target. Values still buffered in target are left
// for its other receivers, if any.
func (fi *FanIn[T]) Remove(target *Receiver[T]) {
	fi.mu.Lock()
	var found *Mapper[T, T]
	for index, input := range fi.inputs {
		if input.Input() == target {
			found = input
			fi.removeAt(index)
			break
		}
	}
	fi.mu.Unlock()
	if found != nil {
		found.Stop()
		fi.notifyRemoved(target)
	}
}

// Count returns the number of input channels currently being merged.
func (fi *FanIn[T]) Count() int {
	fi.mu.Lock()
	defer fi.mu.Unlock()
	return len(fi.inputs)
}

func (fi *FanIn[T]) start() {
	fi.RunnerBase.start()
	go func() {
		<-fi.ctx.Done()
		fi.mu.Lock()
		fi.stopped = true
		inputs := fi.inputs
		fi.inputs = nil
		fi.mu.Unlock()
		for _, input := range inputs {
			input.Stop()
		}
		fi.output.Close()
		fi.RunnerBase.cleanup(nil)
	}()
}

func (fi *FanIn[T]) removeAt(index int) {
	fi.inputs[index] = fi.inputs[len(fi.inputs)-1]
	fi.inputs = fi.inputs[:len(fi.inputs)-1]
}

// pipeClosed runs on a pipe's goroutine when its input drained.
func (fi *FanIn[T]) pipeClosed(p *Mapper[T, T]) {
	fi.mu.Lock()
	removed := false
	for index, input := range fi.inputs {
		if input == p {
			fi.removeAt(index)
			removed = true
			break
		}
	}
	fi.mu.Unlock()
	if removed {
		fi.notifyRemoved(p.Input())
	}
}

func (fi *FanIn[T]) notifyRemoved(input *Receiver[T]) {
	if fi.OnChannelRemoved != nil {
		fi.OnChannelRemoved(fi, input)
	}
}

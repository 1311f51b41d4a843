// Package gochan provides a multi-producer multi-consumer channel with
// explicit handles, and a few pipeline components built on top of it.
//
// A channel is created as a (Sender, Receiver) pair:
//
//	tx, rx, err := gochan.NewBounded[int](16)
//	tx, rx := gochan.NewUnbounded[string]()
//
// Either handle can be cloned. Cloned Senders push into one global FIFO
// (fan-in); cloned Receivers compete for values, each value going to
// exactly one of them (fan-out). Every handle is closed exactly once:
//
//   - closing the last Sender lets receivers drain what is buffered, after
//     which Recv returns ErrDisconnected
//   - closing the last Receiver discards what is buffered, and every Send
//     returns ErrDisconnected together with the unsent value
//
// Sends on a full bounded channel and receives on an empty channel block;
// TrySend/TryRecv never block, and the Timeout and Context variants bound
// the wait.
//
// The pipeline components include:
//
//   - Reader: A goroutine wrapper that continuously calls a reader function and sends results to a channel
//   - Mapper: Transform and/or filter data between channels
//   - Pipe: Connect a receiver and a sender with identity transform
//   - FanIn: Merge multiple input channels into a single output channel
//   - Reducer: Collect and reduce values from an input channel with configurable time windows
//   - WorkerPool: N workers competing for jobs and fanning results into one channel
//   - Block: Group components and stop them together
//
// Runners take ownership of the handles they are given and close them when
// they finish, so end-of-stream propagates down a pipeline.
package gochan

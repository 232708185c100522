// Package schedule provides the host task queue that mutation delivery runs on.
//
// Everything in the mutate module is single-threaded: listeners, batch
// flushes and native observer deliveries all run on one logical thread. What
// the host provides is a way to run a function "on the next tick", after the
// currently running code has returned. Scheduler is that abstraction.
//
// Queue is a plain FIFO that the caller drains explicitly. Tests use it to
// step through ticks deterministically:
//
//	q := schedule.NewQueue()
//	engine := mutate.New(mutate.WithScheduler(q))
//	engine.DispatchInsertion(node, nil)
//	q.Drain() // listeners run here
//
// Loop owns a goroutine and drains its queue continuously. Other goroutines
// hand work to the loop with Do, so that all tree access stays on the loop
// goroutine.
package schedule

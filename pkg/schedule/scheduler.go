package schedule

// Scheduler runs tasks asynchronously, after the caller returns.
//
// Implementations must run tasks in the order they were scheduled and must
// never run a task synchronously inside Schedule.
type Scheduler interface {
	Schedule(task func())
}

// Func adapts a function to the Scheduler interface.
type Func func(task func())

// Schedule implements Scheduler.
func (f Func) Schedule(task func()) {
	f(task)
}

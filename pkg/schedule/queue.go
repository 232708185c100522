package schedule

// Queue is a FIFO task queue drained by its owner.
//
// Queue is not safe for concurrent use. Use Loop when tasks are produced on
// other goroutines.
type Queue struct {
	tasks []func()
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Schedule appends a task to the queue.
func (q *Queue) Schedule(task func()) {
	if task == nil {
		return
	}
	q.tasks = append(q.tasks, task)
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int {
	return len(q.tasks)
}

// RunOne runs the oldest pending task. It reports whether a task ran.
func (q *Queue) RunOne() bool {
	if len(q.tasks) == 0 {
		return false
	}
	task := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	task()
	return true
}

// Drain runs tasks until the queue is empty, including tasks scheduled by
// the tasks it runs. It returns the number of tasks run.
func (q *Queue) Drain() int {
	n := 0
	for q.RunOne() {
		n++
	}
	return n
}

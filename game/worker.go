package game

// Worker runs an Agent on its own goroutine. Callers submit one request, then
// wait for or poll its result before submitting the next.
type Worker struct {
	requests chan MoveRequest
	results  chan MoveResult
	done     chan struct{}
}

func StartWorker(agent *Agent) *Worker {
	w := &Worker{
		requests: make(chan MoveRequest, 1),
		results:  make(chan MoveResult, 1),
		done:     make(chan struct{}),
	}
	go func() {
		defer close(w.done)
		agent.Run(w.requests, w.results)
	}()
	return w
}

// Submit hands req to the worker. The board is copied, so the caller may keep
// mutating its own.
func (w *Worker) Submit(req MoveRequest) {
	w.requests <- req
}

// Poll returns a finished result without blocking.
func (w *Worker) Poll() (MoveResult, bool) {
	select {
	case res := <-w.results:
		return res, true
	default:
		return MoveResult{}, false
	}
}

func (w *Worker) Results() <-chan MoveResult {
	return w.results
}

// Close stops accepting requests and waits for the worker goroutine to exit.
// A request still being computed is finished first; its result is dropped if
// nobody reads it.
func (w *Worker) Close() {
	close(w.requests)
	for {
		select {
		case <-w.done:
			return
		case <-w.results:
		}
	}
}

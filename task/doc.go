// Package task runs background work for the loading queue.
//
// A Pool owns a fixed set of workers; Spawn hands a function to it and
// returns a Task that the caller polls:
//
//	pool := task.NewPool(task.Options{Workers: 4})
//	defer pool.Close()
//
//	t := task.Spawn(pool, func(ctx context.Context) ([]byte, error) {
//	    return src.ReadFile(ctx, "textures/grass.png")
//	})
//
//	// later, on the polling goroutine
//	if t.IsFinished() {
//	    data, err := t.Join()
//	}
//
// A panic inside a task function is recovered and surfaces from Join as an
// error wrapping ErrTaskPanicked. Tasks cannot be canceled individually.
package task

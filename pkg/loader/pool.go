package loader

import (
	"sync"

	"github.com/netpublish/sifloader/pkg/logging"
)

// filePool runs per-file pipelines on a fixed set of worker goroutines.
// A panic in one task is recovered and logged so the other files still run.
type filePool struct {
	tasks  chan func()
	wg     sync.WaitGroup
	once   sync.Once
	mu     sync.RWMutex // protects tasks from concurrent close during send
	closed bool
	log    logging.Logger
}

func newFilePool(workers int, log logging.Logger) *filePool {
	if workers <= 0 {
		workers = 1
	}
	p := &filePool{
		tasks: make(chan func(), workers*2),
		log:   log,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *filePool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					p.log.Error("file task panicked", logging.Any("panic", r))
				}
			}()
			task()
		}()
	}
}

// submit queues a task. Returns false if the pool is already closed.
func (p *filePool) submit(task func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	p.tasks <- task
	return true
}

// wait closes the queue and blocks until all queued tasks finish.
func (p *filePool) wait() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.tasks)
		p.mu.Unlock()
	})
	p.wg.Wait()
}

package game

import (
	"runtime"
	"sync"
)

// workChunk is a range of panel indices for a worker to step.
type workChunk struct {
	start, end int
}

// panelPool steps panels on persistent worker goroutines. Each panel owns its
// world and RNG, so panels never share mutable state and the result does not
// depend on scheduling.
type panelPool struct {
	panels     []*Panel
	numWorkers int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

// newPanelPool creates a pool for panels. workers <= 0 uses GOMAXPROCS.
// The pool never runs more workers than panels.
func newPanelPool(panels []*Panel, workers int) *panelPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(panels) {
		workers = len(panels)
	}
	if workers < 1 {
		workers = 1
	}
	return &panelPool{panels: panels, numWorkers: workers}
}

// startWorkers launches persistent worker goroutines.
func (p *panelPool) startWorkers() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *panelPool) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, stepping chunks until stopped.
func (p *panelPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			for i := chunk.start; i < chunk.end; i++ {
				p.panels[i].Step()
			}
			p.doneChan <- struct{}{}
		}
	}
}

// step advances every panel one tick and returns once all are done.
func (p *panelPool) step() {
	n := len(p.panels)
	if n == 0 {
		return
	}

	// Single-threaded when there is nothing to overlap.
	if p.numWorkers == 1 {
		for _, panel := range p.panels {
			panel.Step()
		}
		return
	}

	if !p.running {
		p.startWorkers()
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	chunksDispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		p.workChan <- workChunk{start: start, end: end}
		chunksDispatched++
	}

	// Wait for all chunks to complete
	for i := 0; i < chunksDispatched; i++ {
		<-p.doneChan
	}
}

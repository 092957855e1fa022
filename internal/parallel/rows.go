package parallel

// minBandRows is the smallest band worth dispatching to a worker.
// Tiny bands cost more in scheduling than they save in parallelism.
const minBandRows = 16

// ForRows splits [0, height) into contiguous row bands and runs fn on each
// band via the pool, blocking until every band completes. fn receives the
// half-open range [y0, y1).
//
// Small frames run inline on the caller without touching the pool.
func ForRows(pool *WorkerPool, height int, fn func(y0, y1 int)) {
	if height <= 0 {
		return
	}

	workers := 1
	if pool != nil {
		workers = pool.Workers()
	}

	bands := workers * 2
	rowsPer := (height + bands - 1) / bands
	if rowsPer < minBandRows {
		rowsPer = minBandRows
	}

	if pool == nil || height <= rowsPer {
		fn(0, height)
		return
	}

	var work []func()
	for y0 := 0; y0 < height; y0 += rowsPer {
		y1 := y0 + rowsPer
		if y1 > height {
			y1 = height
		}
		start, end := y0, y1
		work = append(work, func() { fn(start, end) })
	}

	pool.ExecuteAll(work)
}

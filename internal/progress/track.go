package progress

import (
	"io"
	"sync"

	"github.com/ziadkadry99/vibe-studio/internal/pages"
)

// Track wraps each upload input so that opening it advances r. Start is
// called immediately with len(files); the caller calls Finish.
func Track(files []pages.File, r Reporter) []pages.File {
	r.Start(len(files))

	var (
		mu   sync.Mutex
		done int
	)
	out := make([]pages.File, len(files))
	for i, f := range files {
		f := f
		out[i] = pages.File{
			Name: f.Name,
			Open: func() (io.ReadCloser, error) {
				mu.Lock()
				done++
				r.Update(done, f.Name)
				mu.Unlock()
				return f.Open()
			},
		}
	}
	return out
}

package halfblock

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/bodgit/halfblock/chunk"
	"github.com/bodgit/halfblock/frame"
)

type job struct {
	index int
	data  []byte
}

func readChunks(ctx context.Context, r io.Reader) (<-chan job, <-chan error, error) {
	out := make(chan job)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		for i := 0; ; i++ {
			b := make([]byte, chunk.Size)
			n, err := io.ReadFull(r, b)
			switch err {
			case nil:
			case io.EOF:
				return
			case io.ErrUnexpectedEOF:
				// Short final chunk, but it must still be whole frames
				if n%frame.Size != 0 {
					errc <- frame.ErrShortFrame
					return
				}
			default:
				errc <- err
				return
			}

			select {
			case out <- job{i, b[:n]}:
			case <-ctx.Done():
				errc <- errors.New("split cancelled")
				return
			}

			if n < chunk.Size {
				return
			}
		}
	}()
	return out, errc, nil
}

func writeChunk(file string, b []byte) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}

	if err := chunk.Encode(f, b); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func chunkWorker(ctx context.Context, in <-chan job, dir, prefix string, logger *log.Logger) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for j := range in {
			file := filepath.Join(dir, chunk.Name(prefix, j.index))
			if err := writeChunk(file, j.data); err != nil {
				errc <- err
				return
			}
			logger.Printf("Wrote %d frames to \"%s\"\n", len(j.data)/frame.Size, file)
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Split reads raw frames from r and writes them to dir as compressed chunks
// named with prefix, using the given number of compression workers.
func Split(ctx context.Context, r io.Reader, dir, prefix string, workers int, logger *log.Logger) error {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	var errcList []<-chan error

	jobs, errc, err := readChunks(ctx, r)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < workers; i++ {
		errc, err := chunkWorker(ctx, jobs, dir, prefix, logger)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}

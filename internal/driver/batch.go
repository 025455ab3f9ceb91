package driver

import (
	"fmt"
	"sync"

	"martianoff/matchcore/matcherr"
)

// PanicError wraps a panic raised while checking one fixture.
type PanicError struct {
	Path    string
	Message string
}

func (e PanicError) Error() string {
	return fmt.Sprintf("%s: panic: %s", e.Path, e.Message)
}

func panicToError(path string, r any) error {
	switch v := r.(type) {
	case error:
		return PanicError{Path: path, Message: v.Error()}
	case string:
		return PanicError{Path: path, Message: v}
	}
	return PanicError{Path: path, Message: "unknown panic"}
}

// CheckAll checks independent fixtures on up to workers goroutines. Results
// are in path order; a fixture that failed has a nil Result and its error is
// part of the returned *matcherr.MultiError.
func (p *Pipeline) CheckAll(paths []string, workers int) ([]*Result, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]*Result, len(paths))
	errs := make([]error, len(paths))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers && w < len(paths); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = p.checkRecovered(paths[i])
			}
		}()
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var failed []error
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err)
		}
	}
	if len(failed) > 0 {
		return results, &matcherr.MultiError{Errors: failed}
	}
	return results, nil
}

func (p *Pipeline) checkRecovered(path string) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, panicToError(path, r)
		}
	}()
	return p.Check(path)
}

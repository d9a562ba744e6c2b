package stackwiretest_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/danpasecinic/stackwire"
	"github.com/danpasecinic/stackwire/outputs"
	"github.com/danpasecinic/stackwire/stackwiretest"
)

type Queue struct {
	Name string
}

type Worker struct {
	Queue *Queue
}

type workerFactory struct {
	generator *stackwiretest.CountingGenerator[*Worker]
}

func newWorkerFactory() *workerFactory {
	f := &workerFactory{}
	f.generator = stackwiretest.NewCountingGenerator(
		"jobs", func(ctx stackwire.GeneratorContext) (*Worker, error) {
			return &Worker{}, nil
		},
	)
	return f
}

func (f *workerFactory) Instance(ctx stackwire.FactoryContext) (any, error) {
	w, err := stackwire.GetOrCompute[*Worker](ctx.Container, f.generator)
	if err != nil {
		return nil, err
	}
	q, ok, err := stackwire.LookupInstance[*Queue](ctx, "queue-provider")
	if err != nil || !ok {
		return nil, fmt.Errorf("lookup queue: ok=%v err=%v", ok, err)
	}
	w.Queue = q
	return w, nil
}

func newQueueFactory() stackwire.Factory {
	return stackwire.NewFactory(
		"jobs", func(stackwire.GeneratorContext) (*Queue, error) {
			return &Queue{Name: "work"}, nil
		}, stackwire.WithToken("queue-provider"),
	)
}

type fatalRecorder struct {
	testing.TB
	fatals []string
}

func (r *fatalRecorder) Helper() {}

func (r *fatalRecorder) Fatalf(format string, args ...any) {
	r.fatals = append(r.fatals, fmt.Sprintf(format, args...))
}

func TestNew(t *testing.T) {
	t.Parallel()

	worker := newWorkerFactory()
	tb := stackwiretest.New(
		t, map[string]stackwire.Factory{
			"worker": worker,
			"queue":  newQueueFactory(),
		},
	)

	w := stackwiretest.RequireResource[*Worker](tb, "worker")
	q := stackwiretest.RequireResource[*Queue](tb, "queue")
	if w.Queue != q {
		t.Error("worker should share the queue resource")
	}
	if got := worker.generator.Calls(); got != 1 {
		t.Errorf("Calls() = %d, want 1", got)
	}
	tb.AssertToken("queue-provider")

	if tb.Identifier() != stackwiretest.Identifier {
		t.Errorf("Identifier() = %v", tb.Identifier())
	}
}

func TestRecordingStorage(t *testing.T) {
	t.Parallel()

	tb := stackwiretest.New(t, nil)
	tb.RequireOutput(outputs.Fragment{"api": "https://example.com"})

	calls := tb.Storage.Calls()
	if len(calls) != 2 {
		t.Fatalf("len(Calls()) = %d, want 2", len(calls))
	}
	if calls[0].Key != outputs.PlatformOutputKey {
		t.Errorf("first call key = %q", calls[0].Key)
	}
	if calls[1].Key != outputs.CustomOutputKey {
		t.Errorf("second call key = %q", calls[1].Key)
	}

	platform, ok := tb.Storage.Entry(outputs.PlatformOutputKey)
	if !ok || platform.Payload["deploymentType"] != "sandbox" {
		t.Errorf("platform entry = %+v", platform)
	}
}

func TestRecordingStorageError(t *testing.T) {
	t.Parallel()

	errFull := errors.New("storage full")
	tb := stackwiretest.New(t, nil)
	tb.Storage.Err = errFull

	err := tb.AddOutput(outputs.Fragment{"api": "x"})
	if !errors.Is(err, errFull) {
		t.Errorf("AddOutput() error = %v, want %v", err, errFull)
	}
	if len(tb.Outputs()) != 0 {
		t.Errorf("Outputs() = %v, want empty", tb.Outputs())
	}
}

func TestRequireCreateStack(t *testing.T) {
	t.Parallel()

	tb := stackwiretest.New(t, nil)
	u := tb.RequireCreateStack("custom")
	if u.Name() != "custom" {
		t.Errorf("Name() = %q", u.Name())
	}
}

func TestFromModules(t *testing.T) {
	t.Parallel()

	jobs := stackwire.NewModule("jobs").
		Add("queue", newQueueFactory()).
		Add("worker", newWorkerFactory())

	tb := stackwiretest.FromModules(t, []*stackwire.Module{jobs})
	if got := tb.Names(); len(got) != 2 || got[0] != "queue" {
		t.Errorf("Names() = %v", got)
	}
}

func TestFailuresAreReported(t *testing.T) {
	t.Parallel()

	rec := &fatalRecorder{TB: t}
	tb := stackwiretest.New(rec, nil)
	stackwiretest.RequireResource[*Queue](tb, "missing")
	tb.AssertToken("nothing")

	if len(rec.fatals) != 2 {
		t.Errorf("fatals = %v, want 2 entries", rec.fatals)
	}
}

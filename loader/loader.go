// Package loader iterates a dataset in batches using a pool of workers.
//
// Every sample is generated with its own random source seeded by
// (seed, epoch, index), so batches are reproducible regardless of the
// number of workers and of goroutine scheduling.
package loader

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidOptions = errors.New("invalid loader options")

// Dataset is an indexable set of samples.
type Dataset[T any] interface {
	Len() int
	Get(rng *rand.Rand, i int) (T, error)
}

type Options struct {
	BatchSize int    `yaml:"batch_size"`
	Workers   int    `yaml:"workers"`
	Shuffle   bool   `yaml:"shuffle"`
	Seed      uint64 `yaml:"seed"`
	DropLast  bool   `yaml:"drop_last"`
}

func DefaultOptions() Options {
	return Options{
		BatchSize: 32,
		Workers:   4,
		Shuffle:   true,
	}
}

func (o Options) Validate() error {
	if o.BatchSize <= 0 {
		return fmt.Errorf("%w: batch_size must be positive, got %d", ErrInvalidOptions, o.BatchSize)
	}
	if o.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidOptions, o.Workers)
	}
	return nil
}

// Batch is a set of consecutive samples in the epoch order.
type Batch[T any] struct {
	Index   int
	Indice  []int
	Samples []T
}

type Option func(*settings)

type settings struct {
	logger  *zap.Logger
	metrics *Metrics
}

func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records sample generation to m.
func WithMetrics(m *Metrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

type Loader[T any] struct {
	ds      Dataset[T]
	opts    Options
	logger  *zap.Logger
	metrics *Metrics
}

func New[T any](ds Dataset[T], opts Options, options ...Option) (*Loader[T], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	s := settings{logger: zap.NewNop()}
	for _, o := range options {
		o(&s)
	}
	return &Loader[T]{ds: ds, opts: opts, logger: s.logger, metrics: s.metrics}, nil
}

// NumBatches returns the number of batches in an epoch.
func (l *Loader[T]) NumBatches() int {
	n := l.ds.Len()
	if l.opts.DropLast {
		return n / l.opts.BatchSize
	}
	return (n + l.opts.BatchSize - 1) / l.opts.BatchSize
}

// Order returns dataset indice in the order visited in the epoch.
func (l *Loader[T]) Order(epoch int) []int {
	n := l.ds.Len()
	if l.opts.Shuffle {
		return rand.New(rand.NewPCG(^l.opts.Seed, uint64(epoch))).Perm(n)
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

func (l *Loader[T]) sampleRand(epoch, i int) *rand.Rand {
	return rand.New(rand.NewPCG(l.opts.Seed, uint64(epoch)<<32|uint64(i)))
}

// Epoch calls fn for each batch of the epoch in order.
// Next batch is loaded while fn processes the current one.
// Iteration stops at the first error returned by the dataset or fn,
// or when ctx is canceled.
func (l *Loader[T]) Epoch(ctx context.Context, epoch int, fn func(Batch[T]) error) error {
	order := l.Order(epoch)
	nb := l.NumBatches()
	l.logger.Debug("epoch started",
		zap.Int("epoch", epoch),
		zap.Int("samples", len(order)),
		zap.Int("batches", nb),
	)

	g, ctx := errgroup.WithContext(ctx)
	batches := make(chan Batch[T], 1)

	g.Go(func() error {
		defer close(batches)
		for b := 0; b < nb; b++ {
			end := min((b+1)*l.opts.BatchSize, len(order))
			batch, err := l.load(ctx, epoch, b, order[b*l.opts.BatchSize:end])
			if err != nil {
				return err
			}
			select {
			case batches <- batch:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	g.Go(func() error {
		for b := range batches {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(b); err != nil {
				return err
			}
			l.metrics.observeBatch()
		}
		return nil
	})
	return g.Wait()
}

func (l *Loader[T]) load(ctx context.Context, epoch, index int, indice []int) (Batch[T], error) {
	batch := Batch[T]{
		Index:   index,
		Indice:  append([]int{}, indice...),
		Samples: make([]T, len(indice)),
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Workers)
	for k, i := range indice {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			s, err := l.ds.Get(l.sampleRand(epoch, i), i)
			l.metrics.observeSample(time.Since(start).Seconds(), err)
			if err != nil {
				return fmt.Errorf("sample %d: %w", i, err)
			}
			batch.Samples[k] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Batch[T]{}, err
	}
	return batch, nil
}

// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/icdmap/hierarchy"
)

const (
	// DefaultDimensions matches the vector length stored on code records.
	DefaultDimensions = 64

	defaultWindow       = 5
	defaultNegatives    = 5
	defaultEpochs       = 15
	defaultLearningRate = 0.025
	defaultWalksPerNode = 10
	defaultWalkLength   = 40
	defaultSeed         = 1

	// unigramTableSize bounds the memory of the negative sampling table.
	unigramTableSize = 1 << 18

	// minLearningRateFactor floors the linear learning rate decay.
	minLearningRateFactor = 1e-4
)

// Trainer runs skip-gram with negative sampling over hierarchy walks.
type Trainer struct {
	dimensions   int
	window       int
	negatives    int
	epochs       int
	learningRate float64
	walksPerNode int
	walkLength   int
	workers      int
	seed         uint64
	logger       *slog.Logger
}

// Option configures a Trainer.
type Option func(*Trainer) error

// WithDimensions sets the embedding vector length. Default is 64.
func WithDimensions(dimensions int) Option {
	return func(t *Trainer) error {
		if dimensions < 1 {
			return fmt.Errorf("%w: dimensions must be positive, got %d", ErrInvalidConfig, dimensions)
		}
		t.dimensions = dimensions
		return nil
	}
}

// WithWindow sets the skip-gram context window. Default is 5.
func WithWindow(window int) Option {
	return func(t *Trainer) error {
		if window < 1 {
			return fmt.Errorf("%w: window must be positive, got %d", ErrInvalidConfig, window)
		}
		t.window = window
		return nil
	}
}

// WithNegatives sets the number of negative samples per pair. Default is 5.
func WithNegatives(negatives int) Option {
	return func(t *Trainer) error {
		if negatives < 1 {
			return fmt.Errorf("%w: negatives must be positive, got %d", ErrInvalidConfig, negatives)
		}
		t.negatives = negatives
		return nil
	}
}

// WithEpochs sets how many passes to make over the walk corpus. Default is 15.
func WithEpochs(epochs int) Option {
	return func(t *Trainer) error {
		if epochs < 1 {
			return fmt.Errorf("%w: epochs must be positive, got %d", ErrInvalidConfig, epochs)
		}
		t.epochs = epochs
		return nil
	}
}

// WithLearningRate sets the initial learning rate, which decays linearly
// over the run. Default is 0.025.
func WithLearningRate(rate float64) Option {
	return func(t *Trainer) error {
		if rate <= 0 {
			return fmt.Errorf("%w: learning rate must be positive, got %g", ErrInvalidConfig, rate)
		}
		t.learningRate = rate
		return nil
	}
}

// WithWalks sets how many walks start from each node and how long each walk
// runs. Defaults are 10 walks of 40 nodes.
func WithWalks(perNode, length int) Option {
	return func(t *Trainer) error {
		if perNode < 1 || length < 2 {
			return fmt.Errorf("%w: need at least 1 walk per node of length 2, got %d x %d",
				ErrInvalidConfig, perNode, length)
		}
		t.walksPerNode = perNode
		t.walkLength = length
		return nil
	}
}

// WithWorkers sets the training worker count. Default is runtime.NumCPU().
// Training is deterministic only with a single worker.
func WithWorkers(workers int) Option {
	return func(t *Trainer) error {
		if workers < 1 {
			workers = 1
		}
		t.workers = workers
		return nil
	}
}

// WithSeed sets the seed for walk generation, weight initialization, and
// negative sampling. Default is 1.
func WithSeed(seed uint64) Option {
	return func(t *Trainer) error {
		t.seed = seed
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(t *Trainer) error {
		if logger == nil {
			logger = slog.Default()
		}
		t.logger = logger
		return nil
	}
}

// NewTrainer creates a Trainer with the given options applied over defaults.
func NewTrainer(opts ...Option) (*Trainer, error) {
	t := &Trainer{
		dimensions:   DefaultDimensions,
		window:       defaultWindow,
		negatives:    defaultNegatives,
		epochs:       defaultEpochs,
		learningRate: defaultLearningRate,
		walksPerNode: defaultWalksPerNode,
		walkLength:   defaultWalkLength,
		workers:      runtime.NumCPU(),
		seed:         defaultSeed,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Train generates the walk corpus from the graph and fits the embedding.
// The returned model has a unit-length vector for every graph node.
func (t *Trainer) Train(ctx context.Context, g *hierarchy.Graph) (*Model, error) {
	if g == nil {
		return nil, ErrGraphRequired
	}

	walker := hierarchy.NewWalker(g, t.walksPerNode, t.walkLength, t.seed)
	walks := walker.Walks()

	nodes := g.Len()
	t.logger.Info("training hierarchy embedding",
		"nodes", nodes,
		"walks", len(walks),
		"dimensions", t.dimensions,
		"epochs", t.epochs,
		"workers", t.workers)

	run := &trainingRun{
		trainer: t,
		nodes:   nodes,
		syn0:    t.initWeights(nodes),
		syn1:    make([]float32, nodes*t.dimensions),
		table:   buildUnigramTable(walks, nodes),
	}
	run.totalTokens = uint64(t.epochs) * countTokens(walks)

	pool, err := ants.NewPool(t.workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create training pool: %w", err)
	}
	defer pool.Release()

	shuffler := rand.New(rand.NewPCG(t.seed, t.seed+1))
	for epoch := 0; epoch < t.epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		shuffler.Shuffle(len(walks), func(i, j int) {
			walks[i], walks[j] = walks[j], walks[i]
		})

		if err := run.runEpoch(ctx, pool, walks, uint64(epoch)); err != nil {
			return nil, err
		}
		t.logger.Debug("training epoch complete", "epoch", epoch+1, "epochs", t.epochs)
	}

	return run.model(g), nil
}

// initWeights fills the input matrix with small uniform values, the way
// word2vec seeds its projection layer.
func (t *Trainer) initWeights(nodes int) []float32 {
	rng := rand.New(rand.NewPCG(t.seed^0xda3e39cb94b95bdb, t.seed))
	syn0 := make([]float32, nodes*t.dimensions)
	scale := 1.0 / float32(t.dimensions)
	for i := range syn0 {
		syn0[i] = (rng.Float32() - 0.5) * scale
	}
	return syn0
}

// trainingRun holds the shared mutable state of one Train call.
type trainingRun struct {
	trainer *Trainer
	nodes   int
	syn0    []float32 // input vectors, nodes x dimensions
	syn1    []float32 // output vectors, nodes x dimensions
	table   []int32   // unigram^0.75 negative sampling table

	totalTokens uint64
	processed   atomic.Uint64
}

func (r *trainingRun) runEpoch(ctx context.Context, pool *ants.Pool, walks [][]int32, epoch uint64) error {
	workers := r.trainer.workers
	if workers > len(walks) {
		workers = len(walks)
	}
	chunkSize := (len(walks) + workers - 1) / workers

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, len(walks))
		if start >= end {
			break
		}
		chunk := walks[start:end]
		workerSeed := r.trainer.seed + epoch*1000 + uint64(w)

		wg.Add(1)
		task := func() {
			defer wg.Done()
			if err := r.trainChunk(ctx, chunk, workerSeed); err != nil {
				select {
				case errs <- err:
				default:
				}
			}
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			return fmt.Errorf("failed to submit training task: %w", err)
		}
	}
	wg.Wait()

	select {
	case err := <-errs:
		return err
	default:
		return nil
	}
}

// trainChunk processes a slice of walks with one worker. Weight updates go
// straight to the shared matrices.
func (r *trainingRun) trainChunk(ctx context.Context, walks [][]int32, seed uint64) error {
	t := r.trainer
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	grad := make([]float32, t.dimensions)

	for _, walk := range walks {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i, center := range walk {
			processed := r.processed.Add(1)
			alpha := r.alphaAt(processed)

			// Random reduced window, as in word2vec.
			b := 1 + rng.IntN(t.window)
			lo := max(i-b, 0)
			hi := min(i+b, len(walk)-1)
			for j := lo; j <= hi; j++ {
				if j == i {
					continue
				}
				r.trainPair(center, walk[j], alpha, rng, grad)
			}
		}
	}
	return nil
}

// trainPair applies one gradient step for a (center, context) pair plus its
// negative samples.
func (r *trainingRun) trainPair(center, context int32, alpha float64, rng *rand.Rand, grad []float32) {
	t := r.trainer
	dims := t.dimensions
	l1 := int(center) * dims
	v := r.syn0[l1 : l1+dims]

	for i := range grad {
		grad[i] = 0
	}

	for k := 0; k <= t.negatives; k++ {
		var target int32
		var label float64
		if k == 0 {
			target = context
			label = 1
		} else {
			target = r.table[rng.IntN(len(r.table))]
			if target == context {
				continue
			}
			label = 0
		}

		l2 := int(target) * dims
		u := r.syn1[l2 : l2+dims]

		var dot float64
		for d := 0; d < dims; d++ {
			dot += float64(v[d]) * float64(u[d])
		}
		g := float32((label - sigmoid(dot)) * alpha)

		for d := 0; d < dims; d++ {
			grad[d] += g * u[d]
			u[d] += g * v[d]
		}
	}

	for d := 0; d < dims; d++ {
		v[d] += grad[d]
	}
}

// alphaAt returns the linearly decayed learning rate after n tokens.
func (r *trainingRun) alphaAt(n uint64) float64 {
	remaining := 1 - float64(n)/float64(r.totalTokens+1)
	alpha := r.trainer.learningRate * remaining
	floor := r.trainer.learningRate * minLearningRateFactor
	if alpha < floor {
		alpha = floor
	}
	return alpha
}

// model extracts normalized input vectors for every graph node.
func (r *trainingRun) model(g *hierarchy.Graph) *Model {
	dims := r.trainer.dimensions
	vectors := make(map[string][]float32, r.nodes)
	for i := 0; i < r.nodes; i++ {
		row := r.syn0[i*dims : (i+1)*dims]
		vectors[g.Node(int32(i)).Key] = NormalizeVector(row)
	}
	return &Model{dimensions: dims, vectors: vectors}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// buildUnigramTable fills the negative sampling table with node indices in
// proportion to their corpus frequency raised to 3/4.
func buildUnigramTable(walks [][]int32, nodes int) []int32 {
	counts := make([]float64, nodes)
	for _, walk := range walks {
		for _, idx := range walk {
			counts[idx]++
		}
	}

	var total float64
	for i := range counts {
		counts[i] = math.Pow(counts[i], 0.75)
		total += counts[i]
	}

	table := make([]int32, unigramTableSize)
	node := 0
	cum := counts[0] / total
	for i := range table {
		table[i] = int32(node)
		if float64(i)/float64(len(table)) > cum && node < nodes-1 {
			node++
			cum += counts[node] / total
		}
	}
	return table
}

func countTokens(walks [][]int32) uint64 {
	var n uint64
	for _, walk := range walks {
		n += uint64(len(walk))
	}
	return n
}

package model

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	ErrEmptyInput     = errors.New("dtree: empty X")
	ErrLengthMismatch = errors.New("dtree: X and y length mismatch")
	ErrRaggedInput    = errors.New("dtree: inconsistent number of features in X rows")
	ErrNaNInput       = errors.New("dtree: NaN in X")
	ErrNotFitted      = errors.New("dtree: tree not trained")
	ErrCriterion      = errors.New("dtree: unknown criterion")
)

// Split criteria.
const (
	Gini    = "gini"
	Entropy = "entropy"
)

// ---------------------------
// Types & options
// ---------------------------

// DecisionTreeClassifier is a CART-style classifier with axis-aligned
// threshold splits.
type DecisionTreeClassifier struct {
	// Hyperparameters / options
	MaxDepth            int     // maximum depth (root depth = 0). 0 => no limit
	MinSamplesSplit     int     // minimum samples to attempt a split
	MinSamplesLeaf      int     // minimum samples required in each leaf
	Criterion           string  // "gini" (default) or "entropy"
	MaxFeatures         int     // 0 => use all features, >0 => number of features to sample when looking for split
	MinImpurityDecrease float64 // minimal weighted impurity decrease to accept a split
	RandomState         int64   // seed for randomness (feature subsampling)

	// internals
	root        *dtNode
	classes     []int // sorted class labels (order used by probas)
	nFeatures   int
	importances []float64
}

// dtNode holds a node in the tree.
type dtNode struct {
	isLeaf    bool
	feature   int
	threshold float64 // x <= threshold => left
	impurity  float64
	left      *dtNode
	right     *dtNode

	n         int
	counts    []int
	probas    []float64 // aligned with tree.classes
	predIndex int
}

// Option functional config
type Option func(*DecisionTreeClassifier)

func WithMaxDepth(d int) Option { return func(t *DecisionTreeClassifier) { t.MaxDepth = d } }
func WithMinSamplesSplit(n int) Option {
	return func(t *DecisionTreeClassifier) { t.MinSamplesSplit = n }
}
func WithMinSamplesLeaf(n int) Option {
	return func(t *DecisionTreeClassifier) { t.MinSamplesLeaf = n }
}
func WithCriterion(c string) Option { return func(t *DecisionTreeClassifier) { t.Criterion = c } }
func WithMaxFeatures(k int) Option  { return func(t *DecisionTreeClassifier) { t.MaxFeatures = k } }
func WithMinImpurityDecrease(v float64) Option {
	return func(t *DecisionTreeClassifier) { t.MinImpurityDecrease = v }
}
func WithRandomState(seed int64) Option {
	return func(t *DecisionTreeClassifier) { t.RandomState = seed }
}

// NewDecisionTreeClassifier returns a classifier with sensible defaults.
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	d := &DecisionTreeClassifier{
		MaxDepth:            0,
		MinSamplesSplit:     2,
		MinSamplesLeaf:      1,
		Criterion:           Gini,
		MaxFeatures:         0,
		MinImpurityDecrease: 0.0,
		RandomState:         time.Now().UnixNano(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// ---------------------------
// Public API
// ---------------------------

// Fit trains the decision tree on X (n x p) and y (n labels as ints).
// Rows must share one width and hold no NaN.
func (t *DecisionTreeClassifier) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X[0]) == 0 {
		return ErrEmptyInput
	}
	n := len(X)
	if len(y) != n {
		return fmt.Errorf("%w: %d rows, %d labels", ErrLengthMismatch, n, len(y))
	}
	p := len(X[0])
	for i := range X {
		if len(X[i]) != p {
			return fmt.Errorf("%w: row %d has %d, want %d", ErrRaggedInput, i, len(X[i]), p)
		}
		for j, v := range X[i] {
			if math.IsNaN(v) {
				return fmt.Errorf("%w at row %d, column %d", ErrNaNInput, i, j)
			}
		}
	}

	var impurity func([]int) float64
	switch t.Criterion {
	case Gini, "":
		impurity = giniFromCounts
	case Entropy:
		impurity = entropyFromCounts
	default:
		return fmt.Errorf("%w %q", ErrCriterion, t.Criterion)
	}

	t.classes = uniqueSorted(y)
	t.nFeatures = p
	t.importances = make([]float64, p)

	// y as class indexes
	yi := make([]int, n)
	for i, lab := range y {
		yi[i] = classIndex(lab, t.classes)
	}

	idx := make([]int, n)
	for i := 0; i < n; i++ {
		idx[i] = i
	}

	rnd := rand.New(rand.NewSource(t.RandomState))
	b := &builder{tree: t, X: X, y: yi, n: n, p: p, impurity: impurity, rnd: rnd}
	t.root = b.buildNode(idx, 0)

	total := 0.0
	for _, v := range t.importances {
		total += v
	}
	if total > 0 {
		for j := range t.importances {
			t.importances[j] /= total
		}
	}
	return nil
}

// Predict returns predicted class labels aligned with the labels the tree was trained on.
func (t *DecisionTreeClassifier) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i := range X {
		out[i] = t.classes[t.leaf(X[i]).predIndex]
	}
	return out
}

// Classes returns the sorted labels seen during Fit.
func (t *DecisionTreeClassifier) Classes() []int { return append([]int(nil), t.classes...) }

// FeatureImportances returns the impurity decrease contributed by each
// feature, normalised to sum to 1 (all zeros for a single-leaf tree).
func (t *DecisionTreeClassifier) FeatureImportances() []float64 {
	return append([]float64(nil), t.importances...)
}

// Depth returns the depth of the deepest leaf.
func (t *DecisionTreeClassifier) Depth() int { return depth(t.root) }

// NLeaves returns the number of leaves.
func (t *DecisionTreeClassifier) NLeaves() int { return leaves(t.root) }

// Export renders the fitted tree as indented text, one line per decision.
// Missing or short name slices fall back to feature_<j> and the class label.
func (t *DecisionTreeClassifier) Export(featureNames, classNames []string) (string, error) {
	if t.root == nil {
		return "", ErrNotFitted
	}
	var sb strings.Builder
	t.export(&sb, t.root, 0, featureNames, classNames)
	return sb.String(), nil
}

// ---------------------------
// Internal builders & helpers
// ---------------------------

type builder struct {
	tree     *DecisionTreeClassifier
	X        [][]float64
	y        []int
	n, p     int
	impurity func([]int) float64
	rnd      *rand.Rand
}

// splitResult holds the best split found for a single feature.
type splitResult struct {
	gain      float64
	feature   int
	threshold float64
	leftIdx   []int
	rightIdx  []int
}

// pair is a named type for a value and its original index.
type pair struct {
	v float64
	i int
}

func (b *builder) buildNode(idx []int, depth int) *dtNode {
	t := b.tree
	counts := countsFromIndices(b.y, idx, len(t.classes))
	node := &dtNode{n: len(idx), counts: counts, impurity: b.impurity(counts)}
	node.probas = countsToProbas(counts)
	node.predIndex = argmax(counts)
	node.isLeaf = true

	if isPure(counts) || len(idx) < t.MinSamplesSplit || len(idx) < 2*max(t.MinSamplesLeaf, 1) {
		return node
	}
	if t.MaxDepth > 0 && depth >= t.MaxDepth {
		return node
	}

	featIndices := b.sampleFeatures()

	// Per-feature searches run in parallel; results are read back in
	// featIndices order so ties resolve the same way on every run.
	results := make([]splitResult, len(featIndices))
	var wg sync.WaitGroup
	for k, f := range featIndices {
		wg.Add(1)
		go func(k, f int) {
			defer wg.Done()
			results[k] = b.findBestSplitForFeature(idx, f, counts, node.impurity)
		}(k, f)
	}
	wg.Wait()

	best := splitResult{feature: -1}
	for _, r := range results {
		if r.feature >= 0 && r.gain > best.gain {
			best = r
		}
	}

	// the decrease is weighted by the node's share of all samples
	weighted := float64(len(idx)) / float64(b.n) * best.gain
	if best.feature == -1 || best.gain <= 0 || weighted < t.MinImpurityDecrease {
		return node
	}

	t.importances[best.feature] += weighted
	node.isLeaf = false
	node.feature = best.feature
	node.threshold = best.threshold
	node.left = b.buildNode(best.leftIdx, depth+1)
	node.right = b.buildNode(best.rightIdx, depth+1)
	return node
}

// sampleFeatures draws MaxFeatures distinct features with a partial
// Fisher-Yates shuffle, or returns all of them.
func (b *builder) sampleFeatures() []int {
	p := b.p
	featIndices := make([]int, p)
	for j := 0; j < p; j++ {
		featIndices[j] = j
	}
	k := b.tree.MaxFeatures
	if k <= 0 || k >= p {
		return featIndices
	}
	for i := 0; i < k; i++ {
		j := i + b.rnd.Intn(p-i)
		featIndices[i], featIndices[j] = featIndices[j], featIndices[i]
	}
	return featIndices[:k]
}

// findBestSplitForFeature sorts the node's samples on feature f and sweeps
// the candidate thresholds, moving one sample at a time from right to left.
func (b *builder) findBestSplitForFeature(idx []int, f int, counts []int, parentImpurity float64) splitResult {
	result := splitResult{feature: -1}
	minLeaf := max(b.tree.MinSamplesLeaf, 1)

	valid := make([]pair, len(idx))
	for k, ii := range idx {
		valid[k] = pair{b.X[ii][f], ii}
	}
	sort.SliceStable(valid, func(a, c int) bool { return valid[a].v < valid[c].v })
	if valid[0].v == valid[len(valid)-1].v {
		return result
	}

	n := float64(len(valid))
	left := make([]int, len(counts))
	right := append([]int(nil), counts...)
	bestS := -1
	for s := 1; s < len(valid); s++ {
		c := b.y[valid[s-1].i]
		left[c]++
		right[c]--
		if valid[s].v == valid[s-1].v {
			continue
		}
		if s < minLeaf || len(valid)-s < minLeaf {
			continue
		}
		weighted := float64(s)/n*b.impurity(left) + float64(len(valid)-s)/n*b.impurity(right)
		gain := parentImpurity - weighted
		if gain > result.gain {
			result.gain = gain
			result.feature = f
			result.threshold = (valid[s-1].v + valid[s].v) / 2.0
			bestS = s
		}
	}
	if bestS < 0 {
		return splitResult{feature: -1}
	}
	result.leftIdx = indicesFromPairs(valid[:bestS])
	result.rightIdx = indicesFromPairs(valid[bestS:])
	return result
}

func indicesFromPairs(pairs []pair) []int {
	out := make([]int, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, p.i)
	}
	return out
}

func countsFromIndices(y []int, idx []int, nClasses int) []int {
	counts := make([]int, nClasses)
	for _, ii := range idx {
		counts[y[ii]]++
	}
	return counts
}

// ---------------------------
// Prediction & export helpers
// ---------------------------

func (t *DecisionTreeClassifier) leaf(x []float64) *dtNode {
	node := t.root
	if node == nil {
		panic(ErrNotFitted)
	}
	for !node.isLeaf {
		if x[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node
}

func (t *DecisionTreeClassifier) export(sb *strings.Builder, node *dtNode, level int, featureNames, classNames []string) {
	indent := strings.Repeat("|   ", level) + "|--- "
	if node.isLeaf {
		fmt.Fprintf(sb, "%sclass: %s (samples=%d, %s=%.3f, value=%s)\n", indent,
			className(t.classes, node.predIndex, classNames), node.n, t.criterionName(), node.impurity, proportions(node.probas))
		return
	}
	name := fmt.Sprintf("feature_%d", node.feature)
	if node.feature < len(featureNames) {
		name = featureNames[node.feature]
	}
	fmt.Fprintf(sb, "%s%s <= %.4f\n", indent, name, node.threshold)
	t.export(sb, node.left, level+1, featureNames, classNames)
	fmt.Fprintf(sb, "%s%s >  %.4f\n", indent, name, node.threshold)
	t.export(sb, node.right, level+1, featureNames, classNames)
}

func (t *DecisionTreeClassifier) criterionName() string {
	if t.Criterion == "" {
		return Gini
	}
	return t.Criterion
}

// proportions formats class shares as [0.70, 0.30].
func proportions(p []float64) string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = fmt.Sprintf("%.2f", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func className(classes []int, i int, names []string) string {
	if i < len(names) {
		return names[i]
	}
	return fmt.Sprint(classes[i])
}

func depth(node *dtNode) int {
	if node == nil || node.isLeaf {
		return 0
	}
	return 1 + max(depth(node.left), depth(node.right))
}

func leaves(node *dtNode) int {
	if node == nil {
		return 0
	}
	if node.isLeaf {
		return 1
	}
	return leaves(node.left) + leaves(node.right)
}

// ---------------------------
// Utilities: impurity & misc
// ---------------------------

func giniFromCounts(counts []int) float64 {
	n := 0.0
	for _, c := range counts {
		n += float64(c)
	}
	if n == 0 {
		return 0
	}
	res := 1.0
	for _, c := range counts {
		p := float64(c) / n
		res -= p * p
	}
	return res
}

func entropyFromCounts(counts []int) float64 {
	n := 0.0
	for _, c := range counts {
		n += float64(c)
	}
	if n == 0 {
		return 0
	}
	res := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		res -= p * math.Log2(p)
	}
	return res
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func countsToProbas(counts []int) []float64 {
	n := 0
	for _, c := range counts {
		n += c
	}
	p := make([]float64, len(counts))
	if n == 0 {
		return p
	}
	for i := range counts {
		p[i] = float64(counts[i]) / float64(n)
	}
	return p
}

// argmax returns the first index of the largest count.
func argmax(counts []int) int {
	best := 0
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return best
}

func uniqueSorted(y []int) []int {
	seen := map[int]struct{}{}
	var out []int
	for _, v := range y {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

// classIndex returns index of label in the sorted classes slice.
func classIndex(label int, classes []int) int {
	return sort.SearchInts(classes, label)
}

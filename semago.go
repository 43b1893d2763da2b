package semago

import (
	"fmt"

	"github.com/hupe1980/semago/ast"
	"github.com/hupe1980/semago/graph"
	"github.com/hupe1980/semago/vocab"
)

// Compiler is the top-level construction context. It owns the
// vocabularies, the growing dataflow graph and the memo table that
// shares lowered sub-expressions by node identity.
//
// A Compiler is a single-threaded construction tool; it is not safe
// for concurrent use.
type Compiler struct {
	opts Options
	log  *Logger

	registry *vocab.Registry
	vocabs   map[string]*vocab.Vocabulary

	g          *graph.Graph
	memo       map[ast.Node]graph.PortID
	sinkVocabs map[string]*vocab.Vocabulary

	selection *ActionSelection
	closed    bool
}

// New creates a Compiler.
//
// Example:
//
//	c, err := semago.New(
//	    semago.WithSeed(42),
//	    semago.WithStrict(false),
//	)
func New(optFns ...func(*Options)) (*Compiler, error) {
	opts := DefaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return newCompiler(opts)
}

func newCompiler(opts Options) (*Compiler, error) {
	if opts.Algebra == nil {
		return nil, fmt.Errorf("no binding algebra configured")
	}
	log := opts.Logger
	if log == nil {
		log = NoopLogger()
	}

	vocabOpts := func(o *vocab.Options) {
		o.Algebra = opts.Algebra
		o.Seed = opts.Seed
		o.Strict = opts.Strict
		o.MaxSimilarity = opts.MaxSimilarity
		o.MaxRetries = opts.MaxRetries
		o.FailOnSimilarity = opts.FailOnSimilarity
		o.Logger = log.Logger
	}

	return &Compiler{
		opts:       opts,
		log:        log,
		registry:   vocab.NewRegistry(vocabOpts),
		vocabs:     make(map[string]*vocab.Vocabulary),
		g:          graph.New(),
		memo:       make(map[ast.Node]graph.PortID),
		sinkVocabs: make(map[string]*vocab.Vocabulary),
	}, nil
}

// Graph returns the compiler's dataflow graph. The graph is live:
// later statements keep appending to it.
func (c *Compiler) Graph() *graph.Graph { return c.g }

// Vocabulary returns the compiler's default vocabulary for
// dimensionality d, creating it on first use. Default vocabularies
// inherit the compiler's algebra, strictness and generation policy.
func (c *Compiler) Vocabulary(d int) (*vocab.Vocabulary, error) {
	if c.closed {
		return nil, ErrCompilerClosed
	}
	v, err := c.registry.GetOrCreate(d)
	if err != nil {
		return nil, err
	}
	if _, ok := c.vocabs[v.Label()]; !ok {
		c.vocabs[v.Label()] = v
		c.log.LogVocabulary(v.Label(), d)
	}
	return v, nil
}

// NewVocabulary creates a vocabulary with the compiler's settings as
// defaults and registers it under its label for use in textual casts.
func (c *Compiler) NewVocabulary(label string, d int, optFns ...func(*vocab.Options)) (*vocab.Vocabulary, error) {
	if c.closed {
		return nil, ErrCompilerClosed
	}
	if _, ok := c.vocabs[label]; ok {
		return nil, &ErrVocabExists{Label: label}
	}

	base := func(o *vocab.Options) {
		o.Algebra = c.opts.Algebra
		o.Seed = c.opts.Seed
		o.Strict = c.opts.Strict
		o.MaxSimilarity = c.opts.MaxSimilarity
		o.MaxRetries = c.opts.MaxRetries
		o.FailOnSimilarity = c.opts.FailOnSimilarity
		o.Logger = c.log.Logger
	}
	v, err := vocab.New(label, d, append([]func(*vocab.Options){base}, optFns...)...)
	if err != nil {
		return nil, err
	}
	c.vocabs[label] = v
	c.log.LogVocabulary(label, d)
	return v, nil
}

// RegisterVocabulary registers an externally constructed vocabulary
// under its label for use in textual casts.
func (c *Compiler) RegisterVocabulary(v *vocab.Vocabulary) error {
	if c.closed {
		return ErrCompilerClosed
	}
	if _, ok := c.vocabs[v.Label()]; ok {
		return &ErrVocabExists{Label: v.Label()}
	}
	c.vocabs[v.Label()] = v
	return nil
}

// LookupVocabulary returns a registered vocabulary by label.
func (c *Compiler) LookupVocabulary(label string) (*vocab.Vocabulary, bool) {
	v, ok := c.vocabs[label]
	return v, ok
}

// Sink declares a typed sink the execution substrate must provide. A
// nil vocabulary declares a scalar sink.
func (c *Compiler) Sink(name string, v *vocab.Vocabulary) error {
	if c.closed {
		return ErrCompilerClosed
	}
	if _, ok := c.g.Sink(name); ok {
		return &ErrSinkExists{Name: name}
	}

	dim, vocabID := 1, ""
	if v != nil {
		dim, vocabID = v.Dim(), v.Label()
		f := c.g.NewFragment()
		f.EnsureVocab(v.Label(), v.Dim(), v.AlgebraName())
		f.Commit()
		if _, ok := c.vocabs[v.Label()]; !ok {
			c.vocabs[v.Label()] = v
		}
	}
	if err := c.g.DeclareSink(name, dim, vocabID); err != nil {
		return err
	}
	c.sinkVocabs[name] = v
	return nil
}

// Input declares an externally driven input and returns its expression
// node. A nil vocabulary declares a scalar input. The returned node is
// pre-lowered: every statement using it shares the same input port.
func (c *Compiler) Input(handle string, v *vocab.Vocabulary) (ast.Node, error) {
	if c.closed {
		return nil, ErrCompilerClosed
	}

	f := c.g.NewFragment()
	var node *ast.ExternalPortNode
	var port graph.PortID
	if v == nil {
		node = ast.Port(handle, nil)
		port = f.AddInput(handle, 1, "")
	} else {
		node = ast.Port(handle, v)
		f.EnsureVocab(v.Label(), v.Dim(), v.AlgebraName())
		port = f.AddInput(handle, v.Dim(), v.Label())
		if _, ok := c.vocabs[v.Label()]; !ok {
			c.vocabs[v.Label()] = v
		}
	}
	f.Commit()
	c.memo[node] = port
	return node, nil
}

// Parse parses src into a typed expression. Bare symbols resolve
// against ambient; textual casts resolve vocabulary names against the
// compiler's registered vocabularies. A nil ambient is allowed for
// expressions without bare symbols or untyped literals.
func (c *Compiler) Parse(src string, ambient *vocab.Vocabulary) (ast.Node, error) {
	node, err := ast.Parse(src)
	if err != nil {
		return nil, err
	}
	if _, err := ast.Infer(node, c.inferContext(ambient)); err != nil {
		return nil, err
	}
	return node, nil
}

// MustParse is like Parse but panics on error. It simplifies
// statement blocks over a known-good vocabulary.
func (c *Compiler) MustParse(src string, ambient *vocab.Vocabulary) ast.Node {
	node, err := c.Parse(src, ambient)
	if err != nil {
		panic(err)
	}
	return node
}

// Connect routes the value of expr into the named sink. Bare symbols
// in expr resolve against the sink's vocabulary. Several statements
// routing into the same sink superpose.
//
// The statement is atomic: on any error the graph is unchanged.
func (c *Compiler) Connect(expr ast.Node, sink string) error {
	err := c.connect(expr, sink)
	c.log.LogConnect(sink, err)
	return err
}

func (c *Compiler) connect(expr ast.Node, sink string) error {
	if c.closed {
		return ErrCompilerClosed
	}
	spec, ok := c.g.Sink(sink)
	if !ok {
		return fmt.Errorf("unknown sink %q", sink)
	}
	sinkVocab := c.sinkVocabs[sink]

	t, err := ast.Infer(expr, c.inferContext(sinkVocab))
	if err != nil {
		return err
	}
	if err := c.checkSinkType(spec, sinkVocab, t); err != nil {
		return err
	}

	f := c.g.NewFragment()
	overlay := make(map[ast.Node]graph.PortID)
	port, err := c.lower(f, overlay, expr)
	if err != nil {
		return err
	}
	if err := f.ConnectSink(port, sink); err != nil {
		return err
	}
	f.Commit()
	c.mergeMemo(overlay)
	return nil
}

// ActionSelection opens an action-selection scope. Only one scope may
// be open at a time; nothing reaches the graph until the scope's
// Close.
func (c *Compiler) ActionSelection() (*ActionSelection, error) {
	if c.closed {
		return nil, ErrCompilerClosed
	}
	if c.selection != nil {
		return nil, ErrSelectionOpen
	}
	c.selection = &ActionSelection{
		c:     c,
		names: make(map[string]struct{}),
	}
	return c.selection, nil
}

// Close finalizes the compiler. Further statements fail with
// ErrCompilerClosed. Closing with an open action-selection scope
// fails.
func (c *Compiler) Close() error {
	if c.closed {
		return ErrCompilerClosed
	}
	if c.selection != nil {
		return ErrSelectionOpen
	}
	c.closed = true
	return nil
}

func (c *Compiler) inferContext(ambient *vocab.Vocabulary) *ast.Context {
	ctx := &ast.Context{
		LookupVocab: func(name string) (ast.Vocab, bool) {
			v, ok := c.vocabs[name]
			if !ok {
				return nil, false
			}
			return v, true
		},
	}
	if ambient != nil {
		ctx.Ambient = ambient
	}
	return ctx
}

// checkSinkType verifies that an expression type matches a sink's
// declared type. Vector sinks require the identical vocabulary, not
// merely an equal dimensionality.
func (c *Compiler) checkSinkType(spec graph.SinkSpec, sinkVocab *vocab.Vocabulary, t ast.Type) error {
	if sinkVocab == nil {
		if t != ast.Scalar {
			return &ast.ErrTypeMismatch{Op: "connect to " + spec.Name, Want: "scalar", Got: t.String()}
		}
		return nil
	}
	vt, ok := t.(ast.VocabType)
	if !ok {
		return &ast.ErrTypeMismatch{Op: "connect to " + spec.Name, Want: "vocab(" + spec.Vocab + ")", Got: t.String()}
	}
	if vt.Vocab != ast.Vocab(sinkVocab) {
		return &ast.ErrVocabMismatch{Op: "connect to " + spec.Name, Left: vt.Vocab.Label(), Right: sinkVocab.Label()}
	}
	return nil
}

func (c *Compiler) mergeMemo(overlay map[ast.Node]graph.PortID) {
	for n, p := range overlay {
		c.memo[n] = p
	}
}

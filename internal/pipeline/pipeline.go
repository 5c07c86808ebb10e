// Package pipeline wires the catalog, proposal and render packages into
// one generation flow: load snapshot, handle request, render, write file.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/proposta/internal/cache"
	"github.com/ppiankov/proposta/internal/catalog"
	"github.com/ppiankov/proposta/internal/model"
	"github.com/ppiankov/proposta/internal/proposal"
	"github.com/ppiankov/proposta/internal/render"
	"github.com/ppiankov/proposta/internal/store"
)

// Pipeline orchestrates proposal generation against one catalog store
type Pipeline struct {
	store    store.Store
	cache    cache.Cache
	loader   *catalog.Loader
	writer   *catalog.Writer
	renderer render.Renderer
	config   *model.Config
	logger   *zap.Logger

	snapshot *catalog.Snapshot // pinned by WithSnapshot
	watcher  *store.Watcher
}

// New connects to the configured store and builds a pipeline around it
func New(ctx context.Context, cfg *model.Config, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s, err := catalog.Connect(ctx, cfg.Store, cfg.HTTP, logger)
	if err != nil {
		return nil, err
	}
	p, err := NewWithStore(s, cfg, logger)
	if err != nil {
		return nil, err
	}

	if ds, ok := s.(*store.DirStore); ok && cfg.Store.Watch {
		if err := p.watch(ctx, ds); err != nil {
			logger.Warn("catalog directory not watched", zap.String("dir", ds.Dir()), zap.Error(err))
		}
	}
	return p, nil
}

// watch drops cached tables whose files change outside the process
func (p *Pipeline) watch(ctx context.Context, ds *store.DirStore) error {
	w, err := store.NewWatcher(ds.Dir(), func(table string) {
		if err := p.loader.Invalidate(table); err != nil {
			p.logger.Warn("invalidate cache", zap.String("table", table), zap.Error(err))
		}
	}, p.logger)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	p.watcher = w
	return nil
}

// NewWithStore builds a pipeline around an already opened store
func NewWithStore(s store.Store, cfg *model.Config, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	r, err := render.New(cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	var c cache.Cache = cache.Nop{}
	if cfg.Cache.Enabled {
		c = cache.New(cfg.Cache.TTL, cfg.Cache.Dir)
	}

	return &Pipeline{
		store:    s,
		cache:    c,
		loader:   catalog.NewLoader(s, c, cfg.Cache.TTL, logger),
		writer:   catalog.NewWriter(s, c, logger),
		renderer: r,
		config:   cfg,
		logger:   logger,
	}, nil
}

// Loader returns the pipeline's table loader
func (p *Pipeline) Loader() *catalog.Loader { return p.loader }

// Writer returns the pipeline's catalog writer, sharing the loader's cache
func (p *Pipeline) Writer() *catalog.Writer { return p.writer }

// Store returns the connected store
func (p *Pipeline) Store() store.Store { return p.store }

// Close stops the directory watcher and releases the store
func (p *Pipeline) Close() error {
	if p.watcher != nil {
		p.watcher.Stop()
	}
	if c, ok := p.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Snapshot loads every catalog table, or returns the pinned snapshot
func (p *Pipeline) Snapshot(ctx context.Context) (*catalog.Snapshot, error) {
	if p.snapshot != nil {
		return p.snapshot, nil
	}
	return catalog.LoadSnapshot(ctx, p.loader, catalog.SnapshotOptions{
		LegacyTitles: p.config.Store.LegacyTitles,
	})
}

// WithSnapshot returns a copy of p that generates every request against snap
func (p *Pipeline) WithSnapshot(snap *catalog.Snapshot) *Pipeline {
	cp := *p
	cp.snapshot = snap
	return &cp
}

// Options are the request defaults taken from configuration
func (p *Pipeline) Options() proposal.Options {
	return proposal.Options{
		QuantityLabel: p.config.Proposal.QuantityLabel,
		Section:       p.config.Proposal.Section,
		Revision:      p.config.Proposal.Revision,
		Mode:          p.config.Proposal.Mode,
	}
}

// Result is one generated document
type Result struct {
	RequestID  string
	Source     string // form path, when generated from a file
	Context    *model.ProposalContext
	OutputPath string
}

// BuildContext loads the catalog and turns form into a proposal context
// without rendering anything
func (p *Pipeline) BuildContext(ctx context.Context, form *proposal.Form) (*model.ProposalContext, error) {
	snap, err := p.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return proposal.HandleRequest(snap, form, p.Options())
}

// Generate builds the context for form and writes the rendered document
// into the output directory
func (p *Pipeline) Generate(ctx context.Context, form *proposal.Form) (*Result, error) {
	id := uuid.NewString()
	log := p.logger.With(zap.String("request_id", id), zap.String("proposal", form.ProposalNumber))

	pctx, err := p.BuildContext(ctx, form)
	if err != nil {
		log.Warn("request rejected", zap.Error(err))
		return nil, err
	}

	client := ""
	if p.config.Output.ClientInName {
		client = pctx.Project.Client.Company
	}
	out := filepath.Join(p.config.Output.Dir, proposal.Filename(pctx.Project.ProposalNumber, client, p.renderer.Ext()))

	if err := p.writeDocument(out, pctx); err != nil {
		log.Error("render failed", zap.String("path", out), zap.Error(err))
		return nil, err
	}

	log.Info("proposal generated", zap.String("path", out), zap.String("mode", string(pctx.Mode)))
	return &Result{RequestID: id, Context: pctx, OutputPath: out}, nil
}

// GenerateFile reads a YAML form from path and generates its document
func (p *Pipeline) GenerateFile(ctx context.Context, path string) (*Result, error) {
	form, err := proposal.LoadForm(path)
	if err != nil {
		return nil, err
	}
	res, err := p.Generate(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	res.Source = path
	return res, nil
}

// Render writes the document for pctx to w
func (p *Pipeline) Render(w io.Writer, pctx *model.ProposalContext) error {
	return p.renderer.Render(w, render.TemplateFor(pctx.Mode), pctx.Fields())
}

// writeDocument renders into a temporary file and renames it into place,
// so a failed render never leaves a partial document behind
func (p *Pipeline) writeDocument(path string, pctx *model.ProposalContext) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".proposta-*")
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = p.Render(tmp, pctx); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod output file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return nil
}

// IsRetryable reports whether err is a transient failure the user can retry
// without changing the form
func IsRetryable(err error) bool {
	var conn *catalog.ConnectionError
	var rerr *render.RenderError
	return errors.As(err, &conn) || errors.As(err, &rerr) || errors.Is(err, store.ErrUnavailable)
}

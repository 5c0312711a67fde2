// ABOUTME: Asset resolver mapping image references onto files under candidate roots
// ABOUTME: Probes roots sequentially in priority order, first existing file wins

package assets

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"diagnostic-report-api/core/domain"
	coreerrors "diagnostic-report-api/core/errors"
	"diagnostic-report-api/core/interfaces"
)

// StatFunc stats a path; tests swap it to simulate I/O failures
type StatFunc func(name string) (fs.FileInfo, error)

// Resolver resolves asset references. It is safe for concurrent use.
type Resolver struct {
	cache  *LookupCache
	logger interfaces.Logger
	stat   StatFunc
}

// Option configures a Resolver
type Option func(*Resolver)

// WithLookupCache memoizes positive lookups
func WithLookupCache(c *LookupCache) Option {
	return func(r *Resolver) {
		r.cache = c
	}
}

// WithStat replaces os.Stat
func WithStat(stat StatFunc) Option {
	return func(r *Resolver) {
		r.stat = stat
	}
}

// NewResolver creates a resolver
func NewResolver(logger interfaces.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		logger: logger,
		stat:   os.Stat,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveName resolves a bare filename against the ordered name roots
func (r *Resolver) ResolveName(ctx context.Context, name string, dc domain.DeploymentContext) (*domain.ResolvedAsset, error) {
	if err := ValidateName(name); err != nil {
		r.warn("Rejected asset reference", name, err)
		return nil, err
	}

	roots := dc.AbsNameRoots()
	key := lookupKey("name", name, dc)
	if asset := r.cached(ctx, key, name, roots); asset != nil {
		return asset, nil
	}

	asset, err := r.probe(ctx, name, roots)
	if err != nil {
		return nil, err
	}
	r.remember(ctx, key, asset)
	return asset, nil
}

// ResolvePath resolves a path hint. Rooted hints are checked directly and
// must lie under a configured root; anything else is probed against the
// ordered path roots.
func (r *Resolver) ResolvePath(ctx context.Context, hint string, dc domain.DeploymentContext) (*domain.ResolvedAsset, error) {
	if LooksLikePath(hint) {
		return r.resolveDirect(ctx, hint, dc)
	}

	rel, err := ValidateRelativePath(hint)
	if err != nil {
		r.warn("Rejected asset path", hint, err)
		return nil, err
	}

	roots := dc.AbsPathRoots()
	key := lookupKey("path", rel, dc)
	if asset := r.cached(ctx, key, rel, roots); asset != nil {
		return asset, nil
	}

	asset, err := r.probe(ctx, rel, roots)
	if err != nil {
		return nil, err
	}
	r.remember(ctx, key, asset)
	return asset, nil
}

func (r *Resolver) resolveDirect(ctx context.Context, hint string, dc domain.DeploymentContext) (*domain.ResolvedAsset, error) {
	p, err := ValidateAbsolutePath(hint)
	if err != nil {
		r.warn("Rejected asset path", hint, err)
		return nil, err
	}

	root := ""
	for _, candidate := range append(dc.AbsPathRoots(), dc.AbsNameRoots()...) {
		if within(candidate, p) {
			root = candidate
			break
		}
	}
	if root == "" {
		err := &coreerrors.InvalidReferenceError{Reference: hint, Reason: "path is outside the asset roots"}
		r.warn("Rejected asset path", hint, err)
		return nil, err
	}

	found, err := r.probeOne(ctx, p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &coreerrors.NotFoundError{Resource: "asset", ID: hint}
	}
	return &domain.ResolvedAsset{AbsolutePath: p, ContentType: ContentTypeFor(p), Root: root}, nil
}

// probe checks root/rel for each root in order and stops at the first hit
func (r *Resolver) probe(ctx context.Context, rel string, roots []string) (*domain.ResolvedAsset, error) {
	for _, root := range roots {
		candidate := filepath.Join(root, rel)
		if !within(root, candidate) {
			continue
		}

		found, err := r.probeOne(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if found {
			r.debug("Asset resolved", map[string]interface{}{
				"reference": rel,
				"root":      root,
			})
			return &domain.ResolvedAsset{
				AbsolutePath: candidate,
				ContentType:  ContentTypeFor(rel),
				Root:         root,
			}, nil
		}
		r.debug("Asset not found under root", map[string]interface{}{
			"reference": rel,
			"root":      root,
		})
	}

	if r.logger != nil {
		r.logger.Warn("Asset not found in any candidate root", map[string]interface{}{
			"reference": rel,
			"roots":     roots,
		})
	}
	return nil, &coreerrors.NotFoundError{Resource: "asset", ID: rel}
}

type statResult struct {
	info fs.FileInfo
	err  error
}

// probeOne stats path, giving up when ctx ends. An abandoned stat finishes
// in the background with nothing observing it.
func (r *Resolver) probeOne(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	done := make(chan statResult, 1)
	go func() {
		info, err := r.stat(path)
		done <- statResult{info: info, err: err}
	}()

	var res statResult
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case res = <-done:
	}

	if res.err != nil {
		if isAbsent(res.err) {
			return false, nil
		}
		if r.logger != nil {
			r.logger.Error("Asset probe failed", map[string]interface{}{
				"path":  path,
				"error": res.err.Error(),
			})
		}
		return false, &coreerrors.UnexpectedIOError{Op: "stat", Path: path, Err: res.err}
	}
	return res.info.Mode().IsRegular(), nil
}

func isAbsent(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

// cached returns a remembered hit only while it is still the first match:
// the remembered file must exist and no higher-priority root may have gained
// rel since. Otherwise the entry is dropped and the caller probes in full.
func (r *Resolver) cached(ctx context.Context, key, rel string, roots []string) *domain.ResolvedAsset {
	if r.cache == nil {
		return nil
	}
	asset, ok := r.cache.Get(ctx, key)
	if !ok {
		return nil
	}

	idx := -1
	for i, root := range roots {
		if root == asset.Root {
			idx = i
			break
		}
	}
	if idx < 0 || filepath.Join(asset.Root, rel) != asset.AbsolutePath {
		r.cache.Forget(ctx, key)
		return nil
	}

	for _, root := range roots[:idx] {
		candidate := filepath.Join(root, rel)
		if !within(root, candidate) {
			continue
		}
		if found, err := r.probeOne(ctx, candidate); err != nil || found {
			r.cache.Forget(ctx, key)
			return nil
		}
	}

	if found, err := r.probeOne(ctx, asset.AbsolutePath); err != nil || !found {
		r.cache.Forget(ctx, key)
		return nil
	}
	return asset
}

func (r *Resolver) remember(ctx context.Context, key string, asset *domain.ResolvedAsset) {
	if r.cache == nil {
		return
	}
	r.cache.Put(ctx, key, asset)
}

func (r *Resolver) warn(msg, reference string, err error) {
	if r.logger == nil {
		return
	}
	r.logger.Warn(msg, map[string]interface{}{
		"reference": reference,
		"error":     err.Error(),
	})
}

func (r *Resolver) debug(msg string, fields map[string]interface{}) {
	if r.logger != nil {
		r.logger.Debug(msg, fields)
	}
}

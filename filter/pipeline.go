package filter

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/easel"
	"github.com/gogpu/easel/wire"
)

// Pipeline errors.
var (
	// ErrSessionActive is returned when a dialog is already open on the
	// target layer.
	ErrSessionActive = errors.New("filter: preview session already active on layer")

	// ErrNoSession is returned when no dialog is open on the target layer.
	ErrNoSession = errors.New("filter: no preview session on layer")

	// ErrUnknownParam is returned when a parameter id is not declared by
	// the filter being edited.
	ErrUnknownParam = errors.New("filter: unknown parameter")

	// ErrInvalidValue is returned when a parameter value fails its
	// declared constraints.
	ErrInvalidValue = errors.New("filter: invalid parameter value")
)

// DefaultDebounceWindow is the trailing quiet window a parameter edit
// must survive before a preview recompute is issued.
const DefaultDebounceWindow = 150 * time.Millisecond

// surfaceOwnerPreview names the pipeline in the surface ownership
// registry.
const surfaceOwnerPreview = "filter-preview"

// Executor runs one filter on the execution service and blocks for the
// result. wire.Client implements it over HTTP.
type Executor interface {
	Execute(ctx context.Context, filterID string, req wire.Request) ([]uint8, error)
}

// ExecRequest is one issued preview execution: the addressing the
// pipeline needs to apply the response, plus the wire payload.
type ExecRequest struct {
	LayerID  uuid.UUID
	Seq      uint64
	FilterID string
	Region   easel.Rect
	Payload  wire.Request
}

// IssueFunc dispatches an execution request. The default issuer runs the
// executor on its own goroutine and re-enters through Session.Post;
// tests substitute one that captures requests.
type IssueFunc func(ExecRequest)

// Stats counts pipeline activity. All counters are cumulative.
type Stats struct {
	issued   atomic.Uint64
	applied  atomic.Uint64
	stale    atomic.Uint64
	failures atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of the pipeline counters.
type StatsSnapshot struct {
	// Issued counts preview execution requests sent.
	Issued uint64

	// Applied counts responses written back to a surface.
	Applied uint64

	// Stale counts responses discarded for carrying a superseded
	// sequence number or arriving after their session closed.
	Stale uint64

	// Failures counts executions that returned an error.
	Failures uint64
}

// PipelineOption configures a Pipeline during creation.
type PipelineOption func(*pipelineOptions)

// pipelineOptions holds optional configuration for Pipeline creation.
type pipelineOptions struct {
	debounce time.Duration
	issue    IssueFunc
	messages func(string)
}

// defaultPipelineOptions returns the default pipeline options.
func defaultPipelineOptions() pipelineOptions {
	return pipelineOptions{
		debounce: DefaultDebounceWindow,
	}
}

// WithDebounceWindow overrides the trailing debounce window for
// parameter edits.
func WithDebounceWindow(d time.Duration) PipelineOption {
	return func(o *pipelineOptions) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// WithIssuer replaces the execution dispatch. The pipeline calls it once
// per recompute; whoever receives the request must eventually call
// Deliver with the request's layer id and sequence number.
func WithIssuer(fn IssueFunc) PipelineOption {
	return func(o *pipelineOptions) {
		if fn != nil {
			o.issue = fn
		}
	}
}

// WithMessageSink routes the short non-fatal messages the pipeline
// surfaces on execution failures. The default sink logs them.
func WithMessageSink(fn func(string)) PipelineOption {
	return func(o *pipelineOptions) {
		if fn != nil {
			o.messages = fn
		}
	}
}

// Pipeline is the speculative filter pipeline: it owns every preview
// session, speaks to the execution service, and guarantees that pixels
// and history survive any interleaving of edits, responses, commits,
// and cancels.
//
// Pipeline is confined to the editor loop. Responses arriving on other
// goroutines re-enter through Session.Post before touching it.
type Pipeline struct {
	sess *easel.Session
	reg  *Registry
	exec Executor

	debounceWindow time.Duration
	issue          IssueFunc
	messages       func(string)

	sessions map[uuid.UUID]*PreviewSession
	stats    Stats
}

// NewPipeline creates a pipeline over the given session and registry.
// exec may be nil only when WithIssuer supplies a custom dispatch.
func NewPipeline(sess *easel.Session, reg *Registry, exec Executor, opts ...PipelineOption) *Pipeline {
	o := defaultPipelineOptions()
	for _, opt := range opts {
		opt(&o)
	}
	p := &Pipeline{
		sess:           sess,
		reg:            reg,
		exec:           exec,
		debounceWindow: o.debounce,
		issue:          o.issue,
		messages:       o.messages,
		sessions:       make(map[uuid.UUID]*PreviewSession),
	}
	if p.issue == nil {
		p.issue = p.defaultIssue
	}
	if p.messages == nil {
		p.messages = func(msg string) {
			easel.Logger().Warn("filter: " + msg)
		}
	}
	return p
}

// defaultIssue executes on a fresh goroutine and re-enters the loop with
// the result. In-flight work is never aborted; superseded responses are
// discarded on arrival instead.
func (p *Pipeline) defaultIssue(req ExecRequest) {
	go func() {
		pixels, err := p.exec.Execute(context.Background(), req.FilterID, req.Payload)
		p.sess.Post(func() {
			p.Deliver(req.LayerID, req.Seq, pixels, err)
		})
	}()
}

// Session returns the active preview session for the layer, if any.
func (p *Pipeline) Session(layerID uuid.UUID) (*PreviewSession, bool) {
	ps, ok := p.sessions[layerID]
	return ps, ok
}

// Stats returns a snapshot of the pipeline counters.
func (p *Pipeline) Stats() StatsSnapshot {
	return StatsSnapshot{
		Issued:   p.stats.issued.Load(),
		Applied:  p.stats.applied.Load(),
		Stale:    p.stats.stale.Load(),
		Failures: p.stats.failures.Load(),
	}
}

// OpenDialog opens the filter dialog for a registered filter on the
// given layer. A parameterless filter is applied once immediately with
// no preview state, and OpenDialog returns (nil, nil) on its success.
// Otherwise a new filter-list entry is appended with default parameters,
// the pre-dialog pixels and list form are captured, and the returned
// session enters StateEditing.
func (p *Pipeline) OpenDialog(layerID uuid.UUID, filterID string) (*PreviewSession, error) {
	def, ok := p.reg.ByID(filterID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, filterID)
	}
	if def.Parameterless() {
		return nil, p.Apply(layerID, filterID, nil)
	}

	layer, err := p.editableLayer(layerID)
	if err != nil {
		return nil, err
	}
	if _, active := p.sessions[layerID]; active {
		return nil, fmt.Errorf("%w: %s", ErrSessionActive, layerID)
	}
	if err := p.sess.AcquireSurface(layerID, surfaceOwnerPreview); err != nil {
		return nil, err
	}

	preList := layer.FiltersSnapshot()
	inst := easel.FilterInstance{
		ID:       uuid.New(),
		FilterID: def.ID,
		Enabled:  true,
		Params:   DefaultParams(def),
	}
	layer.Filters = append(layer.Filters, inst)
	p.sess.Stack().TouchLayer(layerID)

	ps := &PreviewSession{
		layerID:    layerID,
		def:        def,
		instanceID: inst.ID,
		appended:   true,
		snapshot:   layer.Surface().Clone(),
		preList:    preList,
		state:      StateEditing,
	}
	p.sessions[layerID] = ps
	easel.Logger().Debug("filter: dialog opened",
		"layer", layerID, "filter", def.ID)
	return ps, nil
}

// OpenDialogFor reopens the dialog on an existing filter-list entry. The
// entry's current parameters become the dialog's starting values and are
// restored if the dialog is cancelled.
func (p *Pipeline) OpenDialogFor(layerID, instanceID uuid.UUID) (*PreviewSession, error) {
	layer, err := p.editableLayer(layerID)
	if err != nil {
		return nil, err
	}
	i := layer.FilterIndex(instanceID)
	if i < 0 {
		return nil, fmt.Errorf("%w: instance %s", ErrUnknownFilter, instanceID)
	}
	inst := layer.Filters[i]
	def, ok := p.reg.ByID(inst.FilterID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, inst.FilterID)
	}
	if def.Parameterless() {
		return nil, fmt.Errorf("%w: %q has no parameters to edit", ErrUnknownFilter, inst.FilterID)
	}
	if _, active := p.sessions[layerID]; active {
		return nil, fmt.Errorf("%w: %s", ErrSessionActive, layerID)
	}
	if err := p.sess.AcquireSurface(layerID, surfaceOwnerPreview); err != nil {
		return nil, err
	}

	ps := &PreviewSession{
		layerID:    layerID,
		def:        def,
		instanceID: instanceID,
		appended:   false,
		prevParams: copyParams(inst.Params),
		snapshot:   layer.Surface().Clone(),
		preList:    layer.FiltersSnapshot(),
		state:      StateEditing,
	}
	p.sessions[layerID] = ps
	easel.Logger().Debug("filter: dialog reopened",
		"layer", layerID, "filter", def.ID, "instance", instanceID)
	return ps, nil
}

// SetParam records a parameter edit and restarts the trailing debounce
// window. Only the last edit of a burst triggers a recompute; the first
// edit does not fire early.
func (p *Pipeline) SetParam(layerID uuid.UUID, name string, value any) error {
	ps, ok := p.sessions[layerID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSession, layerID)
	}
	decl, ok := ps.def.Param(name)
	if !ok {
		return fmt.Errorf("%w: %q on %q", ErrUnknownParam, name, ps.def.ID)
	}
	v, ok := Normalize(decl, value)
	if !ok {
		return fmt.Errorf("%w: %q = %v", ErrInvalidValue, name, value)
	}

	layer := p.sess.Stack().ByID(layerID)
	if layer == nil {
		return easel.ErrLayerNotFound
	}
	i := layer.FilterIndex(ps.instanceID)
	if i < 0 {
		return fmt.Errorf("%w: instance %s", ErrUnknownFilter, ps.instanceID)
	}
	layer.Filters[i].Params[name] = v
	p.sess.Stack().TouchLayer(layerID)

	ps.stopDebounce()
	ps.debounce = p.sess.After(p.debounceWindow, func() {
		p.recompute(layerID)
	})
	return nil
}

// recompute restores the pre-dialog snapshot silently, then issues an
// execution request for the current region and parameters. It runs only
// after a debounce window survives untouched.
func (p *Pipeline) recompute(layerID uuid.UUID) {
	ps, ok := p.sessions[layerID]
	if !ok || ps.state != StateEditing {
		return
	}
	ps.debounce = nil

	layer := p.sess.Stack().ByID(layerID)
	if layer == nil || layer.Surface() == nil {
		return
	}
	i := layer.FilterIndex(ps.instanceID)
	if i < 0 {
		return
	}

	region := layer.EffectiveRegion(p.sess.Selection())
	if region.Empty() {
		easel.Logger().Debug("filter: empty region, preview skipped",
			"layer", layerID, "filter", ps.def.ID)
		return
	}

	// Every preview starts from the same input: the pre-dialog pixels.
	copy(layer.Surface().Data(), ps.snapshot.Data())

	pixels, err := ps.snapshot.Region(region)
	if err != nil {
		easel.Logger().Warn("filter: region extract failed",
			"layer", layerID, "error", err)
		return
	}

	ps.seq++
	ps.region = region
	p.stats.issued.Add(1)
	easel.Logger().Debug("filter: issuing preview",
		"layer", layerID, "filter", ps.def.ID, "seq", ps.seq,
		"region", fmt.Sprintf("%+v", region))

	p.issue(ExecRequest{
		LayerID:  layerID,
		Seq:      ps.seq,
		FilterID: ps.def.ID,
		Region:   region,
		Payload: wire.Request{
			Width:  region.W,
			Height: region.H,
			Params: copyParams(layer.Filters[i].Params),
			Pixels: pixels,
		},
	})
}

// Deliver applies one execution result. Responses may arrive in any
// order; only the one matching the session's most recently issued
// sequence number is applied, and anything else is discarded silently.
// A failure restores and refreshes the original snapshot, reports a
// short message, and keeps the dialog open.
func (p *Pipeline) Deliver(layerID uuid.UUID, seq uint64, pixels []uint8, execErr error) {
	ps, ok := p.sessions[layerID]
	if !ok || seq != ps.seq {
		p.stats.stale.Add(1)
		easel.Logger().Debug("filter: discarding stale response",
			"layer", layerID, "seq", seq)
		return
	}

	layer := p.sess.Stack().ByID(layerID)
	if layer == nil || layer.Surface() == nil {
		return
	}

	if execErr != nil {
		p.stats.failures.Add(1)
		copy(layer.Surface().Data(), ps.snapshot.Data())
		p.sess.Stack().TouchLayer(layerID)
		p.sess.Refresher().RefreshLayer(layerID)
		p.messages(fmt.Sprintf("%s failed: %v", ps.def.Name, execErr))
		return
	}

	if err := layer.Surface().SetRegion(ps.region, pixels); err != nil {
		p.stats.failures.Add(1)
		copy(layer.Surface().Data(), ps.snapshot.Data())
		p.sess.Stack().TouchLayer(layerID)
		p.sess.Refresher().RefreshLayer(layerID)
		p.messages(fmt.Sprintf("%s failed: %v", ps.def.Name, err))
		return
	}

	p.stats.applied.Add(1)
	p.sess.Stack().TouchLayer(layerID)
	p.sess.Refresher().RefreshLayer(layerID)
}

// Commit accepts the currently applied pixels as final and closes the
// session. A history entry is recorded only when the filter list's
// serialized form differs from the pre-dialog capture; a dialog whose
// edits changed nothing records nothing.
func (p *Pipeline) Commit(layerID uuid.UUID) error {
	ps, ok := p.sessions[layerID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSession, layerID)
	}
	ps.stopDebounce()
	ps.state = StateCommitted
	delete(p.sessions, layerID)
	p.sess.ReleaseSurface(layerID, surfaceOwnerPreview)

	layer := p.sess.Stack().ByID(layerID)
	if layer == nil {
		return nil
	}
	if layer.FiltersSnapshot() != ps.preList {
		p.sess.History().SaveState("Apply " + ps.def.Name)
		p.sess.History().FinishState()
	}
	easel.Logger().Debug("filter: committed",
		"layer", layerID, "filter", ps.def.ID)
	return nil
}

// Cancel restores the pre-dialog pixels byte-for-byte, rolls the filter
// list back (removing an appended entry, restoring prior parameters of
// a reopened one), and closes the session with no history entry.
func (p *Pipeline) Cancel(layerID uuid.UUID) error {
	ps, ok := p.sessions[layerID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSession, layerID)
	}
	ps.stopDebounce()
	ps.state = StateCancelled
	delete(p.sessions, layerID)
	p.sess.ReleaseSurface(layerID, surfaceOwnerPreview)

	layer := p.sess.Stack().ByID(layerID)
	if layer == nil {
		return nil
	}
	if layer.Surface() != nil {
		copy(layer.Surface().Data(), ps.snapshot.Data())
	}
	if i := layer.FilterIndex(ps.instanceID); i >= 0 {
		if ps.appended {
			layer.Filters = append(layer.Filters[:i], layer.Filters[i+1:]...)
		} else {
			layer.Filters[i].Params = copyParams(ps.prevParams)
		}
	}
	p.sess.Stack().TouchLayer(layerID)
	p.sess.Refresher().RefreshLayer(layerID)
	easel.Logger().Debug("filter: cancelled",
		"layer", layerID, "filter", ps.def.ID)
	return nil
}

// Apply runs a filter directly, without a dialog: synchronous execution,
// one unconditional history capture. On failure the capture is aborted
// and no partial pixel state survives. nil params mean the registry
// defaults; supplied params are validated against the declaration.
func (p *Pipeline) Apply(layerID uuid.UUID, filterID string, params map[string]any) error {
	def, ok := p.reg.ByID(filterID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFilter, filterID)
	}
	layer, err := p.editableLayer(layerID)
	if err != nil {
		return err
	}

	effective := DefaultParams(def)
	for name, value := range params {
		decl, ok := def.Param(name)
		if !ok {
			return fmt.Errorf("%w: %q on %q", ErrUnknownParam, name, def.ID)
		}
		v, ok := Normalize(decl, value)
		if !ok {
			return fmt.Errorf("%w: %q = %v", ErrInvalidValue, name, value)
		}
		effective[name] = v
	}

	if p.exec == nil {
		return fmt.Errorf("filter: apply %q: no executor configured", def.ID)
	}
	region := layer.EffectiveRegion(p.sess.Selection())
	if region.Empty() {
		return nil
	}
	pixels, err := layer.Surface().Region(region)
	if err != nil {
		return err
	}

	if err := p.sess.AcquireSurface(layerID, "filter-apply"); err != nil {
		return err
	}
	defer p.sess.ReleaseSurface(layerID, "filter-apply")

	hist := p.sess.History()
	hist.BeginCapture("Apply " + def.Name)

	out, err := p.exec.Execute(context.Background(), def.ID, wire.Request{
		Width:  region.W,
		Height: region.H,
		Params: effective,
		Pixels: pixels,
	})
	if err != nil {
		hist.AbortCapture()
		p.stats.failures.Add(1)
		p.messages(fmt.Sprintf("%s failed: %v", def.Name, err))
		return fmt.Errorf("filter: apply %q: %w", def.ID, err)
	}
	if err := layer.Surface().SetRegion(region, out); err != nil {
		hist.AbortCapture()
		p.stats.failures.Add(1)
		p.messages(fmt.Sprintf("%s failed: %v", def.Name, err))
		return fmt.Errorf("filter: apply %q: %w", def.ID, err)
	}

	p.sess.Stack().TouchLayer(layerID)
	hist.CommitCapture()
	p.sess.Refresher().RefreshLayer(layerID)
	easel.Logger().Debug("filter: applied directly",
		"layer", layerID, "filter", def.ID, "region", fmt.Sprintf("%+v", region))
	return nil
}

// Close tears the pipeline down: every pending debounce timer is
// stopped and every session's surface lock released. Open dialogs are
// dropped without restore; Close is for document teardown, not cancel.
func (p *Pipeline) Close() {
	for layerID, ps := range p.sessions {
		ps.stopDebounce()
		p.sess.ReleaseSurface(layerID, surfaceOwnerPreview)
		delete(p.sessions, layerID)
	}
}

// editableLayer resolves a layer that filter execution can target.
func (p *Pipeline) editableLayer(layerID uuid.UUID) (*easel.Layer, error) {
	layer := p.sess.Stack().ByID(layerID)
	if layer == nil {
		return nil, easel.ErrLayerNotFound
	}
	if layer.Surface() == nil {
		return nil, fmt.Errorf("%w: %q is a %s layer", easel.ErrNotRaster, layer.Name, layer.Kind)
	}
	return layer, nil
}

// copyParams returns an independent copy of a params map.
func copyParams(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}

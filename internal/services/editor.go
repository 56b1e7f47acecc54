package services

import (
	"context"
	"errors"
	"sync"

	"earnhub/internal/domain"
	applog "earnhub/internal/log"
	"earnhub/internal/repos"
)

var (
	ErrSaveDisabled = errors.New("title and description are required")
	ErrSaveInFlight = errors.New("another request is still in flight")
	ErrNoSelection  = errors.New("no opportunity selected")
	ErrBadState     = errors.New("action not allowed right now")
)

type EditorState int

const (
	StateIdle EditorState = iota
	StateCreating
	StateEditing
	StateSaving
	StateConfirmingDelete
	StateDeleting
)

func (s EditorState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCreating:
		return "creating"
	case StateEditing:
		return "editing"
	case StateSaving:
		return "saving"
	case StateConfirmingDelete:
		return "confirming_delete"
	case StateDeleting:
		return "deleting"
	}
	return "unknown"
}

// EditorView is a consistent copy of the editor for rendering.
type EditorView struct {
	State      EditorState
	Form       domain.OpportunityForm
	EditingID  string
	DeleteID   string
	Items      []domain.Opportunity
	LoadFailed bool
	Err        error
	CanSave    bool
}

// FormOpen reports whether the create/edit form should be shown.
func (v EditorView) FormOpen() bool {
	return v.State == StateCreating || v.State == StateEditing || v.State == StateSaving
}

// Deleting returns the record awaiting confirmation, if it is in the list.
func (v EditorView) Deleting() *domain.Opportunity {
	for i := range v.Items {
		if v.Items[i].ID == v.DeleteID {
			return &v.Items[i]
		}
	}
	return nil
}

// Editor holds the admin form and drives create/update/delete against the
// store. The mutex is released while a store call runs, so a second save or
// delete arriving meanwhile sees Saving/Deleting and is rejected.
type Editor struct {
	store repos.OpportunityStore

	mu         sync.Mutex
	state      EditorState
	resume     EditorState
	form       domain.OpportunityForm
	editingID  string
	deleteID   string
	items      []domain.Opportunity
	loadFailed bool
	err        error
}

func NewEditor(store repos.OpportunityStore) *Editor {
	return &Editor{store: store, items: []domain.Opportunity{}}
}

func (e *Editor) busy() bool { return e.state == StateSaving || e.state == StateDeleting }

func (e *Editor) View() EditorView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EditorView{
		State:      e.state,
		Form:       e.form,
		EditingID:  e.editingID,
		DeleteID:   e.deleteID,
		Items:      append([]domain.Opportunity(nil), e.items...),
		LoadFailed: e.loadFailed,
		Err:        e.err,
		CanSave:    e.canSave(),
	}
}

func (e *Editor) State() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Editor) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Load re-fetches the admin list. A failed read leaves an empty list.
func (e *Editor) Load(ctx context.Context) error {
	items, err := e.store.List(ctx, repos.DefaultSort, AdminLimit)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.items = []domain.Opportunity{}
		e.loadFailed = true
		return err
	}
	e.items = items
	e.loadFailed = false
	return nil
}

// OpenNew resets the form to defaults and clears the editing id.
func (e *Editor) OpenNew() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.busy() {
		return ErrSaveInFlight
	}
	e.state = StateCreating
	e.form = domain.NewForm()
	e.editingID = ""
	e.deleteID = ""
	e.err = nil
	return nil
}

// OpenEdit loads a record into the form, looking in the loaded list first.
func (e *Editor) OpenEdit(ctx context.Context, id string) error {
	if id == "" {
		return ErrNoSelection
	}
	e.mu.Lock()
	if e.busy() {
		e.mu.Unlock()
		return ErrSaveInFlight
	}
	var found *domain.Opportunity
	for i := range e.items {
		if e.items[i].ID == id {
			o := e.items[i]
			found = &o
			break
		}
	}
	e.mu.Unlock()

	if found == nil {
		list, err := e.store.Filter(ctx, domain.Predicate{ID: domain.Ref(id)}, repos.DefaultSort, 1)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			return repos.ErrNotFound
		}
		found = &list[0]
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.busy() {
		return ErrSaveInFlight
	}
	e.state = StateEditing
	e.form = domain.FormFrom(*found)
	e.editingID = found.ID
	e.deleteID = ""
	e.err = nil
	return nil
}

// SetForm replaces the open form's contents.
func (e *Editor) SetForm(f domain.OpportunityForm) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case StateCreating, StateEditing:
		e.form = f
		return nil
	case StateSaving, StateDeleting:
		return ErrSaveInFlight
	}
	return ErrBadState
}

func (e *Editor) CanSave() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.canSave()
}

func (e *Editor) canSave() bool {
	return (e.state == StateCreating || e.state == StateEditing) && e.form.Complete()
}

// Save creates or updates the record behind the form. On success the list
// is re-fetched and the form closed; on failure the form stays open with
// its contents and Err set.
func (e *Editor) Save(ctx context.Context) (domain.Opportunity, error) {
	e.mu.Lock()
	if e.busy() {
		e.mu.Unlock()
		return domain.Opportunity{}, ErrSaveInFlight
	}
	if e.state != StateCreating && e.state != StateEditing {
		e.mu.Unlock()
		return domain.Opportunity{}, ErrBadState
	}
	rec, id, err := e.beginSave()
	e.mu.Unlock()
	if err != nil {
		return domain.Opportunity{}, err
	}
	return e.persist(ctx, id, rec)
}

// Submit opens the form for id ("" for a new record), fills it with f and
// starts the save in one step, so a request always saves the form it sent.
// A submit while another save or delete runs gets ErrSaveInFlight.
func (e *Editor) Submit(ctx context.Context, id string, f domain.OpportunityForm) (domain.Opportunity, error) {
	e.mu.Lock()
	if e.busy() {
		e.mu.Unlock()
		return domain.Opportunity{}, ErrSaveInFlight
	}
	e.state = StateCreating
	if id != "" {
		e.state = StateEditing
	}
	e.form = f
	e.editingID = id
	e.deleteID = ""
	e.err = nil
	rec, id, err := e.beginSave()
	e.mu.Unlock()
	if err != nil {
		return domain.Opportunity{}, err
	}
	return e.persist(ctx, id, rec)
}

// beginSave validates the open form and moves to Saving. Callers hold mu.
func (e *Editor) beginSave() (domain.Opportunity, string, error) {
	if !e.form.Complete() {
		return domain.Opportunity{}, "", ErrSaveDisabled
	}
	rec, err := e.form.Record()
	if err != nil {
		e.err = err
		return domain.Opportunity{}, "", err
	}
	e.resume = e.state
	e.state = StateSaving
	e.err = nil
	return rec, e.editingID, nil
}

func (e *Editor) persist(ctx context.Context, id string, rec domain.Opportunity) (domain.Opportunity, error) {
	var (
		saved domain.Opportunity
		err   error
	)
	if id == "" {
		saved, err = e.store.Create(ctx, rec)
	} else {
		saved, err = e.store.Update(ctx, id, domain.PatchFrom(rec))
	}

	e.mu.Lock()
	if err != nil {
		e.state = e.resume
		e.err = err
		e.mu.Unlock()
		return domain.Opportunity{}, err
	}
	e.state = StateIdle
	e.form = domain.OpportunityForm{}
	e.editingID = ""
	e.mu.Unlock()

	e.reload(ctx)
	return saved, nil
}

// reload refreshes the list after a write. The write already succeeded, so
// a failed read is only logged.
func (e *Editor) reload(ctx context.Context) {
	if err := e.Load(ctx); err != nil {
		applog.ErrorCtx(ctx, "admin.list.reload.fail", err, nil)
	}
}

// Cancel closes the form or the delete confirmation without saving.
func (e *Editor) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.busy() {
		return ErrSaveInFlight
	}
	e.state = StateIdle
	e.form = domain.OpportunityForm{}
	e.editingID = ""
	e.deleteID = ""
	e.err = nil
	return nil
}

// RequestDelete asks for confirmation before deleting id. An open form must
// be closed first.
func (e *Editor) RequestDelete(id string) error {
	if id == "" {
		return ErrNoSelection
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case StateIdle, StateConfirmingDelete:
	case StateSaving, StateDeleting:
		return ErrSaveInFlight
	default:
		return ErrBadState
	}
	e.state = StateConfirmingDelete
	e.deleteID = id
	e.err = nil
	return nil
}

func (e *Editor) CancelDelete() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case StateConfirmingDelete:
		e.state = StateIdle
		e.deleteID = ""
		e.err = nil
		return nil
	case StateDeleting:
		return ErrSaveInFlight
	}
	return ErrBadState
}

// ConfirmDelete deletes the record awaiting confirmation. A record that is
// already gone counts as deleted.
func (e *Editor) ConfirmDelete(ctx context.Context) error {
	e.mu.Lock()
	if e.busy() {
		e.mu.Unlock()
		return ErrSaveInFlight
	}
	if e.state != StateConfirmingDelete || e.deleteID == "" {
		e.mu.Unlock()
		return ErrNoSelection
	}
	id := e.deleteID
	e.state = StateDeleting
	e.err = nil
	e.mu.Unlock()

	err := e.store.Delete(ctx, id)
	if errors.Is(err, repos.ErrNotFound) {
		err = nil
	}

	e.mu.Lock()
	if err != nil {
		e.state = StateConfirmingDelete
		e.err = err
		e.mu.Unlock()
		return err
	}
	kept := e.items[:0:0]
	for _, o := range e.items {
		if o.ID != id {
			kept = append(kept, o)
		}
	}
	e.items = kept
	e.deleteID = ""
	e.state = StateIdle
	e.mu.Unlock()

	e.reload(ctx)
	return nil
}

// EditorRegistry keeps one Editor per admin session.
type EditorRegistry struct {
	store repos.OpportunityStore

	mu      sync.Mutex
	editors map[string]*Editor
}

func NewEditorRegistry(store repos.OpportunityStore) *EditorRegistry {
	return &EditorRegistry{store: store, editors: map[string]*Editor{}}
}

func (r *EditorRegistry) Get(sid string) *Editor {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.editors[sid]
	if !ok {
		e = NewEditor(r.store)
		r.editors[sid] = e
	}
	return e
}

// Release drops the session's editor, e.g. on logout.
func (r *EditorRegistry) Release(sid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.editors, sid)
}

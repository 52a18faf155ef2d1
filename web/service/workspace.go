package service

import (
	"context"
	"errors"
	"sync"

	"github.com/invcheck/invcheck/backend"
	"github.com/invcheck/invcheck/logger"
	"github.com/invcheck/invcheck/util/common"
)

var (
	ErrRowNotFound   = errors.New("inventory record not found")
	ErrRowLocked     = errors.New("inventory record is confirmed and can no longer be edited")
	ErrNotEditing    = errors.New("inventory record is not being edited")
	ErrUnknownField  = errors.New("field cannot be edited")
	ErrInvalidStatus = errors.New("invalid inventory check status")
	ErrUnknownTab    = errors.New("unknown tab")
	ErrTabForbidden  = errors.New("tab is only available to the administrator")
)

// InventoryBackend is the part of the backend client a workspace needs.
type InventoryBackend interface {
	ListUsers(ctx context.Context) ([]backend.User, error)
	ListInventories(ctx context.Context, ownerID string) ([]backend.Inventory, error)
	UpdateInventory(ctx context.Context, id int, inv backend.Inventory) error
	ConfirmInventory(ctx context.Context, id int) error
}

type Tab string

const (
	TabUsers       Tab = "users"
	TabInventories Tab = "inventories"
)

// Editable inventory fields.
const (
	FieldInventoryCheck = "inventoryCheck"
	FieldRemark         = "remark"
)

// EditState is either NotEditing or Editing. A workspace holds exactly one.
type EditState interface {
	isEditState()
}

// NotEditing means no row has an open draft.
type NotEditing struct{}

// Editing holds the draft of the single row being edited.
type Editing struct {
	RowID int
	Draft backend.Inventory
}

func (NotEditing) isEditState() {}
func (Editing) isEditState()    {}

type RowState int

const (
	RowViewing RowState = iota
	RowEditing
	RowConfirmedLocal
	RowLocked
)

func (s RowState) String() string {
	switch s {
	case RowEditing:
		return "editing"
	case RowConfirmedLocal:
		return "confirmed"
	case RowLocked:
		return "locked"
	}
	return "viewing"
}

// Row is an inventory record as the panel renders it. Draft is set only while
// the row is being edited.
type Row struct {
	backend.Inventory
	State RowState
	Draft *backend.Inventory
}

func (r Row) Editable() bool {
	return r.State == RowViewing || r.State == RowEditing
}

// WorkspaceOptions configures a new workspace.
type WorkspaceOptions struct {
	Username string
	Admin    bool
	// Rollback reverts optimistic changes when the backend call fails.
	Rollback bool
}

// Workspace is the panel state of one logged-in browser: the fetched users and
// inventories, the single edit buffer, the locally confirmed ids and the
// active tab. Local state is guarded by mu, which is never held across a
// backend call.
type Workspace struct {
	backend  InventoryBackend
	username string
	admin    bool
	rollback bool

	mu          sync.Mutex
	loaded      bool
	users       []backend.User
	inventories []backend.Inventory
	edit        EditState
	confirmed   map[int]struct{}
	tab         Tab
}

func NewWorkspace(b InventoryBackend, opts WorkspaceOptions) *Workspace {
	return &Workspace{
		backend:   b,
		username:  opts.Username,
		admin:     opts.Admin,
		rollback:  opts.Rollback,
		edit:      NotEditing{},
		confirmed: make(map[int]struct{}),
		tab:       TabInventories,
	}
}

func (w *Workspace) Username() string { return w.username }

func (w *Workspace) IsAdmin() bool { return w.admin }

// Loaded reports whether Load has run at least once.
func (w *Workspace) Loaded() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loaded
}

// Load fetches the user list and the inventories visible to this identity.
// The administrator sees every record, everybody else only their own. A failed
// fetch leaves the previous list in place. The edit buffer is discarded and
// the confirmed set kept.
func (w *Workspace) Load(ctx context.Context) error {
	owner := w.username
	if w.admin {
		owner = ""
	}

	users, errUsers := w.backend.ListUsers(ctx)
	if errUsers != nil {
		logger.Warning("fetch users failed:", errUsers)
		errUsers = common.NewErrorf("fetch users: %w", errUsers)
	}
	inventories, errInv := w.backend.ListInventories(ctx, owner)
	if errInv != nil {
		logger.Warning("fetch inventories failed:", errInv)
		errInv = common.NewErrorf("fetch inventories: %w", errInv)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if errUsers == nil {
		w.users = users
	}
	if errInv == nil {
		w.inventories = inventories
	}
	w.edit = NotEditing{}
	w.loaded = true
	return common.Combine(errUsers, errInv)
}

// Editable reports whether row id exists and may still be edited or confirmed.
func (w *Workspace) Editable(id int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx := w.indexOf(id)
	return idx >= 0 && w.editableLocked(&w.inventories[idx])
}

// StartEditing copies row id into the edit buffer. Any other open draft is
// abandoned.
func (w *Workspace) StartEditing(id int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	idx := w.indexOf(id)
	if idx < 0 {
		return ErrRowNotFound
	}
	if !w.editableLocked(&w.inventories[idx]) {
		return ErrRowLocked
	}
	w.edit = Editing{RowID: id, Draft: w.inventories[idx]}
	return nil
}

// SetField changes one field of the draft of row id. The row list is untouched
// until Commit.
func (w *Workspace) SetField(id int, field, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	editing, ok := w.edit.(Editing)
	if !ok || editing.RowID != id {
		return ErrNotEditing
	}
	switch field {
	case FieldInventoryCheck:
		if !backend.IsCheckStatus(value) {
			return common.NewErrorf("%w: %q", ErrInvalidStatus, value)
		}
		editing.Draft.InventoryCheck = value
	case FieldRemark:
		editing.Draft.Remark = value
	default:
		return common.NewErrorf("%w: %q", ErrUnknownField, field)
	}
	w.edit = editing
	return nil
}

// Commit writes the draft of row id into the local list, closes the edit
// buffer and sends the full record to the backend. The local change is kept
// when the backend call fails unless the workspace rolls back.
func (w *Workspace) Commit(ctx context.Context, id int) error {
	w.mu.Lock()
	editing, ok := w.edit.(Editing)
	if !ok || editing.RowID != id {
		w.mu.Unlock()
		return ErrNotEditing
	}
	draft := editing.Draft
	var previous backend.Inventory
	idx := w.indexOf(id)
	if idx >= 0 {
		previous = w.inventories[idx]
		w.inventories[idx] = draft
	}
	w.edit = NotEditing{}
	w.mu.Unlock()

	err := w.backend.UpdateInventory(ctx, id, draft)
	if err == nil {
		return nil
	}
	logger.Warningf("save inventory %d failed: %v", id, err)

	if w.rollback && idx >= 0 {
		w.mu.Lock()
		if i := w.indexOf(id); i >= 0 && w.inventories[i] == draft {
			w.inventories[i] = previous
		}
		w.mu.Unlock()
	}
	return common.NewErrorf("save inventory %d: %w", id, err)
}

// Confirm locks row id. The id joins the confirmed set before the backend
// call, so the row is locked while the call is pending, and a repeated
// confirm of the same id never reaches the backend again.
func (w *Workspace) Confirm(ctx context.Context, id int) error {
	w.mu.Lock()
	if _, done := w.confirmed[id]; done {
		w.mu.Unlock()
		return nil
	}
	idx := w.indexOf(id)
	if idx < 0 {
		w.mu.Unlock()
		return ErrRowNotFound
	}
	if w.inventories[idx].IsConfirmed() {
		w.mu.Unlock()
		return ErrRowLocked
	}
	w.confirmed[id] = struct{}{}
	if editing, ok := w.edit.(Editing); ok && editing.RowID == id {
		w.edit = NotEditing{}
	}
	w.mu.Unlock()

	err := w.backend.ConfirmInventory(ctx, id)
	if err == nil {
		return nil
	}
	logger.Warningf("confirm inventory %d failed: %v", id, err)

	if w.rollback {
		w.mu.Lock()
		delete(w.confirmed, id)
		w.mu.Unlock()
	}
	return common.NewErrorf("confirm inventory %d: %w", id, err)
}

// IsConfirmed reports whether this workspace has confirmed id.
func (w *Workspace) IsConfirmed(id int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.confirmed[id]
	return ok
}

func (w *Workspace) SwitchTab(tab Tab) error {
	switch tab {
	case TabInventories:
	case TabUsers:
		if !w.admin {
			return ErrTabForbidden
		}
	default:
		return common.NewErrorf("%w: %q", ErrUnknownTab, tab)
	}
	w.mu.Lock()
	w.tab = tab
	w.mu.Unlock()
	return nil
}

func (w *Workspace) ActiveTab() Tab {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tab
}

// Edit returns the current edit state.
func (w *Workspace) Edit() EditState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.edit
}

// Users returns a copy of the fetched users.
func (w *Workspace) Users() []backend.User {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]backend.User(nil), w.users...)
}

// Inventories returns a copy of the local inventory list.
func (w *Workspace) Inventories() []backend.Inventory {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]backend.Inventory(nil), w.inventories...)
}

// Rows returns the inventory list with each row's state resolved.
func (w *Workspace) Rows() []Row {
	w.mu.Lock()
	defer w.mu.Unlock()

	editing, isEditing := w.edit.(Editing)
	rows := make([]Row, 0, len(w.inventories))
	for i := range w.inventories {
		inv := w.inventories[i]
		row := Row{Inventory: inv}
		switch {
		case inv.IsConfirmed():
			row.State = RowLocked
		case w.isConfirmedLocked(inv.Id):
			row.State = RowConfirmedLocal
		case isEditing && editing.RowID == inv.Id:
			row.State = RowEditing
			draft := editing.Draft
			row.Draft = &draft
		default:
			row.State = RowViewing
		}
		rows = append(rows, row)
	}
	return rows
}

func (w *Workspace) indexOf(id int) int {
	for i := range w.inventories {
		if w.inventories[i].Id == id {
			return i
		}
	}
	return -1
}

func (w *Workspace) isConfirmedLocked(id int) bool {
	_, ok := w.confirmed[id]
	return ok
}

func (w *Workspace) editableLocked(inv *backend.Inventory) bool {
	return !w.isConfirmedLocked(inv.Id) && !inv.IsConfirmed()
}

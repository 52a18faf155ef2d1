package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/invcheck/invcheck/backend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu sync.Mutex

	users       []backend.User
	inventories []backend.Inventory

	owners     []string
	updates    []backend.Inventory
	confirms   []int
	updateErr  error
	confirmErr error
	listErr    error

	// confirmGate, when set, blocks ConfirmInventory until it is closed.
	confirmGate chan struct{}
	confirmSeen chan int
}

func (f *fakeBackend) ListUsers(ctx context.Context) ([]backend.User, error) {
	return f.users, nil
}

func (f *fakeBackend) ListInventories(ctx context.Context, ownerID string) ([]backend.Inventory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.owners = append(f.owners, ownerID)
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []backend.Inventory
	for _, inv := range f.inventories {
		if ownerID == "" || inv.OwnerId == ownerID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeBackend) UpdateInventory(ctx context.Context, id int, inv backend.Inventory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, inv)
	return f.updateErr
}

func (f *fakeBackend) ConfirmInventory(ctx context.Context, id int) error {
	if f.confirmSeen != nil {
		f.confirmSeen <- id
	}
	if f.confirmGate != nil {
		<-f.confirmGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirms = append(f.confirms, id)
	return f.confirmErr
}

func sampleInventories() []backend.Inventory {
	return []backend.Inventory{
		{Id: 3, OwnerId: "alice", Name: "Alice", Brand: "Apple", Model: "iPhone 13", InventoryCheck: "", Remark: ""},
		{Id: 7, OwnerId: "bob", Name: "Bob", Brand: "Samsung", Model: "S22", InventoryCheck: backend.CheckConfirmed, Remark: "desk"},
		{Id: 8, OwnerId: "bob", Name: "Bob", Brand: "Dell", Model: "5420", Confirm: "true"},
		{Id: 9, OwnerId: "bob", Name: "Bob", Brand: "Lenovo", Model: "T14"},
	}
}

func newLoadedWorkspace(t *testing.T, fb *fakeBackend, username string, admin, rollback bool) *Workspace {
	t.Helper()
	if fb.inventories == nil {
		fb.inventories = sampleInventories()
	}
	ws := NewWorkspace(fb, WorkspaceOptions{Username: username, Admin: admin, Rollback: rollback})
	require.NoError(t, ws.Load(context.Background()))
	return ws
}

func findRow(rows []Row, id int) Row {
	for _, r := range rows {
		if r.Id == id {
			return r
		}
	}
	return Row{}
}

func TestLoadOwnerFilter(t *testing.T) {
	fb := &fakeBackend{}
	ws := newLoadedWorkspace(t, fb, "bob", false, false)

	assert.Equal(t, []string{"bob"}, fb.owners)
	for _, inv := range ws.Inventories() {
		assert.Equal(t, "bob", inv.OwnerId)
	}
	assert.Len(t, ws.Inventories(), 3)
	assert.True(t, ws.Loaded())
}

func TestLoadAdminUnfiltered(t *testing.T) {
	fb := &fakeBackend{users: []backend.User{{Id: 1, Username: "45420191"}}}
	ws := newLoadedWorkspace(t, fb, "45420191", true, false)

	assert.Equal(t, []string{""}, fb.owners)
	assert.Len(t, ws.Inventories(), 4)
	assert.Len(t, ws.Users(), 1)
	assert.NoError(t, ws.SwitchTab(TabUsers))
	assert.Equal(t, TabUsers, ws.ActiveTab())
}

func TestLoadFailureKeepsPreviousList(t *testing.T) {
	fb := &fakeBackend{}
	ws := newLoadedWorkspace(t, fb, "bob", false, false)

	fb.listErr = errors.New("connection refused")
	err := ws.Load(context.Background())
	assert.Error(t, err)
	assert.Len(t, ws.Inventories(), 3)
}

func TestEditableInvariant(t *testing.T) {
	fb := &fakeBackend{}
	ws := newLoadedWorkspace(t, fb, "bob", false, false)

	require.NoError(t, ws.Confirm(context.Background(), 9))

	for _, row := range ws.Rows() {
		want := !ws.IsConfirmed(row.Id) && row.Confirm != "true"
		assert.Equal(t, want, ws.Editable(row.Id), "row %d", row.Id)
		assert.Equal(t, want, row.Editable(), "row %d", row.Id)
	}
	assert.False(t, ws.Editable(404))
}

func TestStartEditingGuards(t *testing.T) {
	fb := &fakeBackend{}
	ws := newLoadedWorkspace(t, fb, "bob", false, false)

	assert.ErrorIs(t, ws.StartEditing(8), ErrRowLocked)
	assert.ErrorIs(t, ws.StartEditing(404), ErrRowNotFound)
	assert.Equal(t, NotEditing{}, ws.Edit())

	require.NoError(t, ws.Confirm(context.Background(), 9))
	assert.ErrorIs(t, ws.StartEditing(9), ErrRowLocked)
}

func TestStartEditingAbandonsOtherDraft(t *testing.T) {
	fb := &fakeBackend{}
	ws := newLoadedWorkspace(t, fb, "bob", false, false)

	require.NoError(t, ws.StartEditing(7))
	require.NoError(t, ws.SetField(7, FieldRemark, "unsaved"))
	require.NoError(t, ws.StartEditing(9))

	editing, ok := ws.Edit().(Editing)
	require.True(t, ok)
	assert.Equal(t, 9, editing.RowID)
	assert.Equal(t, "desk", findRow(ws.Rows(), 7).Remark)
	assert.Equal(t, RowViewing, findRow(ws.Rows(), 7).State)

	assert.ErrorIs(t, ws.SetField(7, FieldRemark, "late"), ErrNotEditing)
	assert.ErrorIs(t, ws.Commit(context.Background(), 7), ErrNotEditing)
	assert.Empty(t, fb.updates)
}

func TestSetFieldOnlyTouchesDraft(t *testing.T) {
	fb := &fakeBackend{}
	ws := newLoadedWorkspace(t, fb, "bob", false, false)

	require.NoError(t, ws.StartEditing(7))
	require.NoError(t, ws.SetField(7, FieldInventoryCheck, backend.CheckLost))
	require.NoError(t, ws.SetField(7, FieldRemark, "missing"))
	assert.ErrorIs(t, ws.SetField(7, FieldInventoryCheck, "Stolen"), ErrInvalidStatus)
	assert.ErrorIs(t, ws.SetField(7, "ownerId", "mallory"), ErrUnknownField)

	row := findRow(ws.Rows(), 7)
	assert.Equal(t, RowEditing, row.State)
	assert.Equal(t, "desk", row.Remark)
	require.NotNil(t, row.Draft)
	assert.Equal(t, "missing", row.Draft.Remark)
	assert.Equal(t, backend.CheckLost, row.Draft.InventoryCheck)
	assert.Equal(t, "bob", row.Draft.OwnerId)
}

func TestCommitSendsFullRecord(t *testing.T) {
	fb := &fakeBackend{}
	ws := newLoadedWorkspace(t, fb, "bob", false, false)

	require.NoError(t, ws.StartEditing(7))
	require.NoError(t, ws.SetField(7, FieldRemark, "missing"))
	require.NoError(t, ws.Commit(context.Background(), 7))

	require.Len(t, fb.updates, 1)
	sent := fb.updates[0]
	assert.Equal(t, 7, sent.Id)
	assert.Equal(t, "missing", sent.Remark)
	assert.Equal(t, "Samsung", sent.Brand)
	assert.Equal(t, backend.CheckConfirmed, sent.InventoryCheck)

	assert.Equal(t, "missing", findRow(ws.Rows(), 7).Remark)
	assert.Equal(t, NotEditing{}, ws.Edit())
}

func TestCommitFailureKeepsOptimisticRow(t *testing.T) {
	fb := &fakeBackend{updateErr: errors.New("timeout")}
	ws := newLoadedWorkspace(t, fb, "bob", false, false)

	require.NoError(t, ws.StartEditing(7))
	require.NoError(t, ws.SetField(7, FieldRemark, "missing"))
	assert.Error(t, ws.Commit(context.Background(), 7))

	assert.Equal(t, "missing", findRow(ws.Rows(), 7).Remark)
	assert.Equal(t, NotEditing{}, ws.Edit())
}

func TestCommitFailureRollsBack(t *testing.T) {
	fb := &fakeBackend{updateErr: errors.New("timeout")}
	ws := newLoadedWorkspace(t, fb, "bob", false, true)

	require.NoError(t, ws.StartEditing(7))
	require.NoError(t, ws.SetField(7, FieldRemark, "missing"))
	assert.Error(t, ws.Commit(context.Background(), 7))

	assert.Equal(t, "desk", findRow(ws.Rows(), 7).Remark)
}

func TestConfirmIsIdempotent(t *testing.T) {
	fb := &fakeBackend{}
	ws := newLoadedWorkspace(t, fb, "bob", false, false)

	require.NoError(t, ws.StartEditing(7))
	require.NoError(t, ws.Confirm(context.Background(), 7))
	require.NoError(t, ws.Confirm(context.Background(), 7))

	assert.Equal(t, []int{7}, fb.confirms)
	assert.Equal(t, NotEditing{}, ws.Edit())
	assert.Equal(t, RowConfirmedLocal, findRow(ws.Rows(), 7).State)

	assert.ErrorIs(t, ws.Confirm(context.Background(), 8), ErrRowLocked)
	assert.ErrorIs(t, ws.Confirm(context.Background(), 404), ErrRowNotFound)
	assert.Equal(t, []int{7}, fb.confirms)
}

func TestConfirmLocksWhilePending(t *testing.T) {
	fb := &fakeBackend{confirmGate: make(chan struct{}), confirmSeen: make(chan int, 1)}
	ws := newLoadedWorkspace(t, fb, "bob", false, false)

	done := make(chan error, 1)
	go func() { done <- ws.Confirm(context.Background(), 7) }()

	select {
	case id := <-fb.confirmSeen:
		assert.Equal(t, 7, id)
	case <-time.After(2 * time.Second):
		t.Fatal("confirm never reached the backend")
	}
	assert.False(t, ws.Editable(7))
	assert.ErrorIs(t, ws.StartEditing(7), ErrRowLocked)

	close(fb.confirmGate)
	assert.NoError(t, <-done)
}

func TestConfirmFailure(t *testing.T) {
	fb := &fakeBackend{confirmErr: errors.New("503")}
	ws := newLoadedWorkspace(t, fb, "bob", false, false)
	assert.Error(t, ws.Confirm(context.Background(), 7))
	assert.True(t, ws.IsConfirmed(7))

	fb2 := &fakeBackend{confirmErr: errors.New("503")}
	ws2 := newLoadedWorkspace(t, fb2, "bob", false, true)
	assert.Error(t, ws2.Confirm(context.Background(), 7))
	assert.False(t, ws2.IsConfirmed(7))
	assert.True(t, ws2.Editable(7))
}

func TestLoadKeepsConfirmedSet(t *testing.T) {
	fb := &fakeBackend{}
	ws := newLoadedWorkspace(t, fb, "bob", false, false)

	require.NoError(t, ws.Confirm(context.Background(), 9))
	require.NoError(t, ws.StartEditing(7))
	require.NoError(t, ws.Load(context.Background()))

	assert.False(t, ws.Editable(9))
	assert.Equal(t, NotEditing{}, ws.Edit())
}

func TestSwitchTab(t *testing.T) {
	ws := NewWorkspace(&fakeBackend{}, WorkspaceOptions{Username: "bob"})

	assert.Equal(t, TabInventories, ws.ActiveTab())
	assert.ErrorIs(t, ws.SwitchTab(TabUsers), ErrTabForbidden)
	assert.ErrorIs(t, ws.SwitchTab(Tab("settings")), ErrUnknownTab)
	assert.Equal(t, TabInventories, ws.ActiveTab())
}

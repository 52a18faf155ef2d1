// Package entity defines the JSON shapes the panel's API answers with.
package entity

import (
	"github.com/invcheck/invcheck/backend"
)

// Msg represents a standard API response message with success status, message text, and optional data object.
type Msg struct {
	Success bool   `json:"success"` // Indicates if the operation was successful
	Msg     string `json:"msg"`     // Response message text
	Obj     any    `json:"obj"`     // Optional data object
}

// InventoryRow is one inventory record with its row state as the browser sees it.
type InventoryRow struct {
	backend.Inventory
	State    string             `json:"state"`    // viewing, editing, confirmed or locked
	Editable bool               `json:"editable"` // edit and confirm buttons are enabled
	Draft    *backend.Inventory `json:"draft,omitempty"`
}

// PanelState summarises the workspace for the browser.
type PanelState struct {
	Username  string         `json:"username"`
	Admin     bool           `json:"admin"`
	Tab       string         `json:"tab"`
	BackendUp bool           `json:"backendUp"`
	Rows      []InventoryRow `json:"rows"`
}

package backend

// User is an account known to the inventory backend.
type User struct {
	Id       int    `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Inventory check statuses a user can record against a device.
const (
	CheckConfirmed = "Confirmed"
	CheckBroken    = "Broken"
	CheckLost      = "Lost"
	CheckOthers    = "Others"
)

// CheckStatuses lists the allowed inventoryCheck values in display order.
var CheckStatuses = []string{CheckConfirmed, CheckBroken, CheckLost, CheckOthers}

// IsCheckStatus reports whether s is an allowed inventoryCheck value.
func IsCheckStatus(s string) bool {
	for _, v := range CheckStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Inventory is one device record. OwnerId holds the username of the user the
// device is assigned to.
type Inventory struct {
	Id             int    `json:"id"`
	Gbgf           string `json:"gbgf"`
	ManagerName    string `json:"managerName"`
	LegalEntity    string `json:"legalEntity"`
	OwnerId        string `json:"ownerId"`
	Name           string `json:"name"`
	EmplClass      string `json:"emplClass"`
	Brand          string `json:"brand"`
	Model          string `json:"model"`
	ImeiMeid       string `json:"imeiMeid"`
	DeviceType     string `json:"deviceType"`
	AssetId        string `json:"assetId"`
	InventoryCheck string `json:"inventoryCheck"`
	Remark         string `json:"remark"`
	Confirm        string `json:"confirm"`
}

// IsConfirmed reports whether the backend has permanently locked the record.
func (i *Inventory) IsConfirmed() bool {
	return i.Confirm == "true"
}

package redis

const (
	// KeyCatalog holds the JSON snapshot of all catalog entries.
	KeyCatalog = "appstore:catalog"
	// KeyAccounts holds the JSON snapshot of all backend accounts.
	KeyAccounts = "appstore:accounts"
	// KeySNOwners holds the JSON snapshot of the SN-ownership map.
	KeySNOwners = "appstore:snowners"
)

package permission

const (
	OrdersRead   = "orders:read"
	OrdersUpdate = "orders:update"
	OrdersDelete = "orders:delete"
	OrdersExport = "orders:export"

	ProductsRead   = "products:read"
	ProductsUpdate = "products:update"
	ProductsDelete = "products:delete"
	ProductsExport = "products:export"

	NotificationsRead   = "notifications:read"
	NotificationsUpdate = "notifications:update"
	NotificationsDelete = "notifications:delete"
	NotificationsExport = "notifications:export"
)

// All lists every permission the console and API know about.
var All = []string{
	OrdersRead, OrdersUpdate, OrdersDelete, OrdersExport,
	ProductsRead, ProductsUpdate, ProductsDelete, ProductsExport,
	NotificationsRead, NotificationsUpdate, NotificationsDelete, NotificationsExport,
}

// DefaultRoles maps the seeded role names to their grants.
var DefaultRoles = map[string][]string{
	"admin":       All,
	"fulfillment": {OrdersRead, OrdersUpdate, OrdersExport, NotificationsRead, NotificationsUpdate},
	"catalog":     {ProductsRead, ProductsUpdate, ProductsDelete, ProductsExport, NotificationsRead},
	"viewer":      {OrdersRead, ProductsRead, NotificationsRead},
}

package apperr

import "github.com/m-mizutani/goerr/v2"

// Request related keys
var (
	MethodKey     = goerr.NewTypedKey[string]("method")
	PathKey       = goerr.NewTypedKey[string]("path")
	StatusKey     = goerr.NewTypedKey[int]("status")
	RequestIDKey  = goerr.NewTypedKey[string]("request_id")
	OperationKey  = goerr.NewTypedKey[string]("operation")
	ErrorCodeKey  = goerr.NewTypedKey[string]("error_code")
	BaseURLKey    = goerr.NewTypedKey[string]("base_url")
	ExportTypeKey = goerr.NewTypedKey[string]("export_type")
)

// Domain entity related keys
var (
	EmailKey     = goerr.NewTypedKey[string]("email")
	UserIDKey    = goerr.NewTypedKey[string]("user_id")
	ProductIDKey = goerr.NewTypedKey[string]("product_id")
	OrderIDKey   = goerr.NewTypedKey[string]("order_id")
	ProfileKey   = goerr.NewTypedKey[string]("profile")
)

// Storage related keys
var (
	StorageKeyKey = goerr.NewTypedKey[string]("storage_key")
	BucketKey     = goerr.NewTypedKey[string]("bucket")
	CollectionKey = goerr.NewTypedKey[string]("collection")
	DocumentIDKey = goerr.NewTypedKey[string]("document_id")
	ProjectIDKey  = goerr.NewTypedKey[string]("project_id")
)

// Package docs is generated by swag from the handler annotations. Regenerate with
// `swag init -g cmd/server/main.go` after changing them.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/stores/{id}/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "List mirrored products of a store",
                "parameters": [
                    {"type": "string", "description": "Store ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ProductListResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/v1/sync": {
            "post": {
                "description": "Mirrors the store's WooCommerce products, variations and images into the local tables.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sync"],
                "summary": "Sync a store catalog",
                "parameters": [
                    {"description": "Store to sync", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SyncRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SyncResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "common.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "handlers.ProductListResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "products": {"type": "array", "items": {"$ref": "#/definitions/services.ProductWithImages"}},
                "store_id": {"type": "string"}
            }
        },
        "handlers.SyncRequest": {
            "type": "object",
            "properties": {"store_id": {"type": "string"}}
        },
        "handlers.SyncResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "result": {"$ref": "#/definitions/models.SyncResult"},
                "success": {"type": "boolean"}
            }
        },
        "models.ProductImage": {
            "type": "object",
            "properties": {
                "alt_text": {"type": "string"},
                "created_at": {"type": "string"},
                "description": {"type": "string"},
                "display_order": {"type": "integer"},
                "id": {"type": "string"},
                "original_url": {"type": "string"},
                "product_id": {"type": "string"},
                "source": {"type": "string"},
                "store_id": {"type": "string"},
                "synced_at": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "models.ProductSyncError": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "product_id": {"type": "string"},
                "stage": {"type": "string"},
                "woo_id": {"type": "integer"}
            }
        },
        "models.ProductVariation": {
            "type": "object",
            "properties": {
                "attributes": {"type": "object", "additionalProperties": {"type": "string"}},
                "price": {"type": "number"},
                "sku": {"type": "string"},
                "status": {"type": "string"},
                "stock_quantity": {"type": "integer"},
                "woo_id": {"type": "integer"}
            }
        },
        "models.SyncResult": {
            "type": "object",
            "properties": {
                "currency_updated": {"type": "boolean"},
                "finished_at": {"type": "string"},
                "images_deleted": {"type": "integer"},
                "images_upserted": {"type": "integer"},
                "mode": {"type": "string"},
                "product_errors": {"type": "array", "items": {"$ref": "#/definitions/models.ProductSyncError"}},
                "products_deleted": {"type": "integer"},
                "products_fetched": {"type": "integer"},
                "products_written": {"type": "integer"},
                "run_id": {"type": "string"},
                "started_at": {"type": "string"},
                "store_id": {"type": "string"}
            }
        },
        "services.ProductWithImages": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "id": {"type": "string"},
                "images": {"type": "array", "items": {"$ref": "#/definitions/models.ProductImage"}},
                "name": {"type": "string"},
                "price": {"type": "number"},
                "status": {"type": "string"},
                "stock_quantity": {"type": "integer"},
                "store_id": {"type": "string"},
                "synced_at": {"type": "string"},
                "type": {"type": "string"},
                "updated_at": {"type": "string"},
                "variations": {"type": "array", "items": {"$ref": "#/definitions/models.ProductVariation"}},
                "woo_id": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "woosync API",
	Description:      "Mirrors WooCommerce store catalogs into PostgreSQL.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

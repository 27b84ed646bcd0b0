// Package swagger registers the OpenAPI document for the orders service.
package swagger

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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/orders": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "List the caller's orders",
                "parameters": [
                    {"type": "integer", "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size", "name": "limit", "in": "query"},
                    {"type": "string", "description": "Status filter", "name": "status", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/infrastructure.OrderResponse"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Place an order",
                "parameters": [
                    {"description": "Cart and checkout details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/application.CreateOrderInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/infrastructure.OrderResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/orders/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Get one of the caller's orders",
                "parameters": [
                    {"type": "integer", "description": "Order ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/infrastructure.OrderResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/orders/{id}/cancel": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Cancel one of the caller's orders",
                "parameters": [
                    {"type": "integer", "description": "Order ID", "name": "id", "in": "path", "required": true},
                    {"description": "Cancellation reason", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/infrastructure.CancelOrderRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/infrastructure.OrderResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/admin/orders": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "List all orders",
                "parameters": [
                    {"type": "integer", "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size", "name": "limit", "in": "query"},
                    {"type": "string", "description": "Status filter", "name": "status", "in": "query"},
                    {"type": "string", "description": "Payment status filter", "name": "paymentStatus", "in": "query"},
                    {"type": "string", "description": "Order number or customer name", "name": "search", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/infrastructure.OrderResponse"}}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/admin/orders/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Get any order",
                "parameters": [
                    {"type": "integer", "description": "Order ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/infrastructure.OrderResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/admin/orders/{id}/status": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Set an order's status",
                "parameters": [
                    {"type": "integer", "description": "Order ID", "name": "id", "in": "path", "required": true},
                    {"description": "New status and note", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/infrastructure.UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/infrastructure.OrderResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "application.AddressInput": {
            "type": "object",
            "properties": {
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "street": {"type": "string"},
                "city": {"type": "string"},
                "state": {"type": "string"},
                "zipCode": {"type": "string"},
                "country": {"type": "string"},
                "phone": {"type": "string"}
            }
        },
        "application.OrderItemInput": {
            "type": "object",
            "properties": {
                "product": {"type": "integer"},
                "quantity": {"type": "integer"}
            }
        },
        "application.CreateOrderInput": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/application.OrderItemInput"}},
                "paymentMethod": {"type": "string", "enum": ["cash", "bank_transfer", "credit_card", "paypal", "momo", "zalopay"]},
                "shippingAddress": {"$ref": "#/definitions/application.AddressInput"},
                "billingAddress": {"$ref": "#/definitions/application.AddressInput"},
                "notes": {"type": "string"}
            }
        },
        "infrastructure.CancelOrderRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"}
            }
        },
        "infrastructure.UpdateStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["pending", "confirmed", "processing", "shipped", "delivered", "cancelled", "refunded"]},
                "note": {"type": "string"}
            }
        },
        "infrastructure.OrderItemResponse": {
            "type": "object",
            "properties": {
                "product": {"type": "integer"},
                "productName": {"type": "string"},
                "quantity": {"type": "integer"},
                "price": {"type": "string"},
                "total": {"type": "string"}
            }
        },
        "infrastructure.PricingResponse": {
            "type": "object",
            "properties": {
                "subtotal": {"type": "string"},
                "tax": {"type": "string"},
                "shipping": {"type": "string"},
                "discount": {"type": "string"},
                "total": {"type": "string"},
                "formattedTotal": {"type": "string"}
            }
        },
        "infrastructure.TimelineEntryResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "note": {"type": "string"},
                "updatedBy": {"type": "integer"},
                "timestamp": {"type": "string"}
            }
        },
        "infrastructure.OrderResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "orderNumber": {"type": "string"},
                "customer": {"type": "integer"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/infrastructure.OrderItemResponse"}},
                "pricing": {"$ref": "#/definitions/infrastructure.PricingResponse"},
                "paymentMethod": {"type": "string"},
                "paymentStatus": {"type": "string"},
                "shippingAddress": {"$ref": "#/definitions/application.AddressInput"},
                "billingAddress": {"$ref": "#/definitions/application.AddressInput"},
                "notes": {"type": "string"},
                "status": {"type": "string"},
                "statusVN": {"type": "string"},
                "timeline": {"type": "array", "items": {"$ref": "#/definitions/infrastructure.TimelineEntryResponse"}},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"},
                "deliveredAt": {"type": "string"},
                "cancelledAt": {"type": "string"}
            }
        },
        "errors.ErrorBody": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "reason": {"type": "string"},
                "message": {"type": "string"},
                "details": {}
            }
        },
        "errors.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/errors.ErrorBody"},
                "trace_id": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Storefront Orders API",
	Description:      "Order placement, cancellation and admin status management.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

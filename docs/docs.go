// Package docs registers the OpenAPI description served at /swagger/doc.json.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/api/login": {"post": {"tags": ["auth"], "summary": "Sign in with phone and password"}},
        "/api/logout": {"post": {"tags": ["auth"], "summary": "Revoke the bearer token", "security": [{"BearerAuth": []}]}},
        "/api/menu": {"get": {"tags": ["auth"], "summary": "Navigation tree of the user", "security": [{"BearerAuth": []}]}},
        "/api/get-workflow-permission": {"post": {"tags": ["auth"], "summary": "SAF actions the role may take", "security": [{"BearerAuth": []}]}},
        "/api/property/get-saf-master-data": {"post": {"tags": ["masters"], "summary": "Dropdown data of the SAF screens", "security": [{"BearerAuth": []}]}},
        "/api/property/get-new-ward-by-old": {"post": {"tags": ["masters"], "summary": "New wards of an old ward", "security": [{"BearerAuth": []}]}},
        "/api/property/get-apartment-by-old-ward": {"post": {"tags": ["masters"], "summary": "Apartments of an old ward", "security": [{"BearerAuth": []}]}},
        "/api/property/inbox": {"post": {"tags": ["property"], "summary": "Applications waiting at the user's role", "security": [{"BearerAuth": []}]}},
        "/api/property/search-saf": {"post": {"tags": ["property"], "summary": "Search applications", "security": [{"BearerAuth": []}]}},
        "/api/property/get-saf-dtl": {"post": {"tags": ["property"], "summary": "Full application", "security": [{"BearerAuth": []}]}},
        "/api/property/get-saf-field-verification": {"post": {"tags": ["verification"], "summary": "Field cards for a new verification", "security": [{"BearerAuth": []}]}},
        "/api/property/field-verification-dtl": {"post": {"tags": ["verification"], "summary": "Declared versus verified comparison", "security": [{"BearerAuth": []}]}},
        "/api/property/field-verification-dtl/{id}/export": {"get": {"tags": ["verification"], "summary": "Comparison as xlsx", "security": [{"BearerAuth": []}]}},
        "/api/property/verification-draft": {"post": {"tags": ["verification"], "summary": "Start a verification draft", "security": [{"BearerAuth": []}]}},
        "/api/property/verification-draft/{id}": {
            "get": {"tags": ["verification"], "summary": "Draft with preview", "security": [{"BearerAuth": []}]},
            "delete": {"tags": ["verification"], "summary": "Discard draft", "security": [{"BearerAuth": []}]}
        },
        "/api/property/verification-draft/{id}/field": {"post": {"tags": ["verification"], "summary": "Apply one card interaction", "security": [{"BearerAuth": []}]}},
        "/api/property/geotag/session": {"post": {"tags": ["geotag"], "summary": "Start a capture session", "security": [{"BearerAuth": []}]}},
        "/api/property/geotag/session/{id}/location": {"post": {"tags": ["geotag"], "summary": "Report permission and fix", "security": [{"BearerAuth": []}]}},
        "/api/property/geotag/session/{id}/permission": {"post": {"tags": ["geotag"], "summary": "Answer a permission denial", "security": [{"BearerAuth": []}]}},
        "/api/property/geotag/session/{id}/photo/{side}": {
            "post": {"tags": ["geotag"], "summary": "Capture one side", "consumes": ["multipart/form-data"], "security": [{"BearerAuth": []}]},
            "delete": {"tags": ["geotag"], "summary": "Remove one side", "security": [{"BearerAuth": []}]}
        },
        "/api/property/geotag/session/{id}/done": {"post": {"tags": ["geotag"], "summary": "Close the session", "security": [{"BearerAuth": []}]}},
        "/api/property/payment-receipt": {"post": {"tags": ["receipts"], "summary": "Printable payment receipt", "security": [{"BearerAuth": []}]}},
        "/api/property/memo-receipt": {"post": {"tags": ["receipts"], "summary": "Printable SAM memo", "security": [{"BearerAuth": []}]}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "SAF Field Verification API",
	Description:      "Self assessment forms, field verification, geo tagging, receipts and memos.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

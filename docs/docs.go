// Package docs registers the OpenAPI description served at /swagger.
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
        "/healthz": {
            "get": {
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/layouts/default": {
            "get": {
                "produces": ["application/json"],
                "summary": "Default layout",
                "parameters": [
                    {"type": "integer", "default": 13, "description": "table count, 4..16", "name": "tables", "in": "query"},
                    {"type": "string", "default": "less", "description": "less or more", "name": "mode", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpgin.PlanSnapshot"}}
                }
            }
        },
        "/plans": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Save plan (idempotent)",
                "parameters": [
                    {"description": "plan snapshot, any version", "name": "snapshot", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpgin.PlanSnapshot"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/httpgin.SavePlanResponse"}, "headers": {"Idempotency-Key": {"type": "string", "description": "echo"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}},
                    "409": {"description": "idem in progress", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}},
                    "429": {"description": "rate limited", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}}
                }
            }
        },
        "/plans/{id}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Load plan",
                "parameters": [
                    {"type": "string", "description": "Plan ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpgin.PlanSnapshot"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}}
                }
            }
        },
        "/plans/{id}/summary": {
            "get": {
                "produces": ["application/json"],
                "summary": "Plan summary",
                "parameters": [
                    {"type": "string", "description": "Plan ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Summary"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Summary": {
            "type": "object",
            "properties": {
                "assignedGuests": {"type": "integer"},
                "freeSeats": {"type": "integer"},
                "guests": {"type": "integer"},
                "tables": {"type": "integer"},
                "totalSeats": {"type": "integer"},
                "unassignedGuests": {"type": "integer"}
            }
        },
        "httpgin.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "httpgin.PlanSnapshot": {
            "type": "object",
            "properties": {
                "guests": {"type": "array", "items": {}},
                "settings": {"type": "object", "additionalProperties": true},
                "tables": {"type": "array", "items": {}},
                "version": {"type": "integer", "example": 4}
            }
        },
        "httpgin.SavePlanResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "3f9a0c1be27d"},
                "success": {"type": "boolean", "example": true},
                "url": {"type": "string", "example": "https://plan.example.com/?id=3f9a0c1be27d"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Seatplan API",
	Description:      "Stores and serves shared banquet hall floor plans.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// Package docs registers the generated OpenAPI document with swag.
// Regenerate with: swag init -g cmd/main.go
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
        "/api/v1/pump/start": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["pump"],
                "summary": "Start pump",
                "responses": {
                    "200": {"description": "status, state"},
                    "401": {"description": "Unauthorized"},
                    "409": {"description": "Conflict"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },
        "/api/v1/pump/stop": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["pump"],
                "summary": "Stop pump",
                "responses": {
                    "200": {"description": "status, state"},
                    "401": {"description": "Unauthorized"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/api/v1/pump/level": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["pump"],
                "summary": "Set operating level",
                "responses": {
                    "200": {"description": "status, state"},
                    "400": {"description": "Bad Request"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/api/v1/pump/filter/reset": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["pump"],
                "summary": "Reset filter",
                "responses": {"200": {"description": "status, state"}}
            }
        },
        "/api/v1/pump/oil/change": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["pump"],
                "summary": "Change oil",
                "responses": {"200": {"description": "status, state"}}
            }
        },
        "/api/v1/pump/state": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["pump"],
                "summary": "Get pump state",
                "responses": {"200": {"description": "pump state"}}
            }
        },
        "/api/v1/config": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["config"],
                "summary": "Get simulation parameters",
                "responses": {"200": {"description": "parameters"}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["config"],
                "summary": "Update simulation parameters",
                "responses": {
                    "200": {"description": "parameters"},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/api/v1/logs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["logs"],
                "summary": "List audit log",
                "responses": {"200": {"description": "count, events"}}
            }
        },
        "/auth/sign-up": {
            "post": {"tags": ["auth"], "summary": "Register operator", "responses": {"200": {"description": "id"}}}
        },
        "/auth/sign-in": {
            "post": {"tags": ["auth"], "summary": "Obtain token", "responses": {"200": {"description": "token"}}}
        },
        "/health": {
            "get": {"tags": ["system"], "summary": "Health check", "responses": {"200": {"description": "ok"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Pump Simulator API",
	Description:      "Simulated industrial pump with live state and control methods.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

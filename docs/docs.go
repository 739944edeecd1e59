// Package docs registers the OpenAPI description served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {"name": "MIT", "url": "https://opensource.org/licenses/MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "tags": [
        {"name": "Boards", "description": "Boards addressed by slug"},
        {"name": "Columns", "description": "Column operations"},
        {"name": "Tasks", "description": "Task operations"},
        {"name": "Transfer", "description": "JSON export and import"}
    ],
    "paths": {
        "/api/slugs/{slug}/board": {
            "get": {"tags": ["Boards"], "summary": "Get board by slug",
                "parameters": [{"name": "slug", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Board not found"}}}
        },
        "/api/slugs/{slug}/full": {
            "get": {"tags": ["Boards"], "summary": "Get board with columns and tasks",
                "parameters": [{"name": "slug", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Board not found"}}}
        },
        "/api/slugs/{slug}/export": {
            "get": {"tags": ["Transfer"], "summary": "Download the board as JSON",
                "parameters": [{"name": "slug", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Board not found"}}}
        },
        "/api/slugs/{slug}/import": {
            "post": {"tags": ["Transfer"], "summary": "Replace the board with an exported document",
                "parameters": [{"name": "slug", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid document"}}}
        },
        "/api/boards": {
            "post": {"tags": ["Boards"], "summary": "Create a board",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Slug taken"}}}
        },
        "/api/boards/{id}": {
            "delete": {"tags": ["Boards"], "summary": "Delete a board",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "No Content"}}}
        },
        "/api/columns": {
            "post": {"tags": ["Columns"], "summary": "Create a column",
                "responses": {"201": {"description": "Created"}}}
        },
        "/api/columns/positions": {
            "put": {"tags": ["Columns"], "summary": "Batch update column positions",
                "responses": {"204": {"description": "No Content"}}}
        },
        "/api/columns/{id}": {
            "patch": {"tags": ["Columns"], "summary": "Update a column",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Column not found"}}},
            "delete": {"tags": ["Columns"], "summary": "Delete a column",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "No Content"}}}
        },
        "/api/tasks": {
            "post": {"tags": ["Tasks"], "summary": "Create a task",
                "responses": {"201": {"description": "Created"}}}
        },
        "/api/tasks/positions": {
            "put": {"tags": ["Tasks"], "summary": "Batch update task positions and columns",
                "responses": {"204": {"description": "No Content"}}}
        },
        "/api/tasks/{id}": {
            "patch": {"tags": ["Tasks"], "summary": "Update a task",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Task not found"}}},
            "delete": {"tags": ["Tasks"], "summary": "Delete a task",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "No Content"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "OpenKanban API",
	Description:      "REST API behind URL-addressed collaborative kanban boards.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

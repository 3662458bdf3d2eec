// Package docs registers the OpenAPI description served at /swagger.
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
    "paths": {
        "/session": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Start or switch the active session",
                "description": "Loads today's completions of every feature for the caller. Without a token the session is a guest session.",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.sessionResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.errorResponse"}}
                }
            }
        },
        "/daily/{feature}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["daily"],
                "summary": "Today's completions for a feature",
                "parameters": [
                    {"type": "string", "description": "tips or quizzes", "name": "feature", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.DailySummary"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.errorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["daily"],
                "summary": "Forget today's completions for a feature",
                "parameters": [
                    {"type": "string", "description": "tips or quizzes", "name": "feature", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.errorResponse"}}
                }
            }
        },
        "/daily/{feature}/items/{itemID}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["daily"],
                "summary": "Whether an item was already credited today",
                "parameters": [
                    {"type": "string", "description": "tips or quizzes", "name": "feature", "in": "path", "required": true},
                    {"type": "string", "description": "item id", "name": "itemID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.statusResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.errorResponse"}}
                }
            }
        },
        "/daily/{feature}/items/{itemID}/complete": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["daily"],
                "summary": "Claim the reward for an item, at most once per day",
                "parameters": [
                    {"type": "string", "description": "tips or quizzes", "name": "feature", "in": "path", "required": true},
                    {"type": "string", "description": "item id", "name": "itemID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Reward"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.errorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/http.errorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/http.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.DailySummary": {
            "type": "object",
            "properties": {
                "feature": {"type": "string"},
                "userId": {"type": "string"},
                "guest": {"type": "boolean"},
                "date": {"type": "string", "example": "2025-01-02"},
                "completedIds": {"type": "array", "items": {"type": "string"}}
            }
        },
        "domain.Reward": {
            "type": "object",
            "properties": {
                "itemId": {"type": "string"},
                "feature": {"type": "string"},
                "pointsAwarded": {"type": "integer"}
            }
        },
        "http.errorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "http.sessionResponse": {
            "type": "object",
            "properties": {
                "userId": {"type": "string"},
                "guest": {"type": "boolean"},
                "features": {"type": "array", "items": {"$ref": "#/definitions/domain.DailySummary"}}
            }
        },
        "http.statusResponse": {
            "type": "object",
            "properties": {
                "feature": {"type": "string"},
                "itemId": {"type": "string"},
                "completed": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "ecoquest daily completion API",
	Description:      "Once-per-day reward claims for tips and quizzes.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

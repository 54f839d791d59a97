// Package docs registers the Swagger document served under /swagger.
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
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign in",
                "parameters": [{"description": "Login credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.UserResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/auth/signup": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Create an account and sign in",
                "parameters": [{"description": "Signup form", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.SignupRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.UserResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign out",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/session": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Current session",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.SessionResponse"}}}
            }
        },
        "/session/watch": {
            "get": {
                "description": "Server-sent events. Each event is named loading, redirect or admit and carries the session as data.",
                "produces": ["text/event-stream"],
                "tags": ["session"],
                "summary": "Stream guard decisions",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.SessionResponse"}}}
            }
        },
        "/profile": {
            "get": {
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Get profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.User"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "patch": {
                "description": "Shallow merge: only the fields present in the body change.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Update profile",
                "parameters": [{"description": "Fields to change", "name": "patch", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.User"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.User"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/districts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["views"],
                "summary": "Karnataka districts",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"type": "string"}}}}
            }
        },
        "/chat/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Chat transcript",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MessagesResponse"}}}
            },
            "delete": {
                "tags": ["chat"],
                "summary": "Clear the chat transcript",
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/chat/messages": {
            "post": {
                "description": "Returns the stored user message and the assistant reply.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Send a chat message",
                "parameters": [{"description": "Message", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.SendMessageRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.MessagesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "errors.ErrorResponse": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "error": {"type": "string"}}
        },
        "handler.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "handler.SignupRequest": {
            "type": "object",
            "required": ["name", "email", "password", "confirmPassword", "district"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "password": {"type": "string", "minLength": 6},
                "confirmPassword": {"type": "string"},
                "district": {"type": "string"},
                "farmSize": {"type": "string"},
                "experience": {"type": "string"},
                "language": {"type": "string"},
                "farmType": {"type": "string"},
                "mainCrops": {"type": "array", "items": {"type": "string"}},
                "address": {"type": "string"},
                "notifications": {"type": "boolean"},
                "weatherAlerts": {"type": "boolean"},
                "marketUpdates": {"type": "boolean"},
                "acceptTerms": {"type": "boolean"}
            }
        },
        "handler.UserResponse": {
            "type": "object",
            "properties": {"user": {"$ref": "#/definitions/model.User"}}
        },
        "handler.SessionResponse": {
            "type": "object",
            "properties": {
                "state": {"type": "string"},
                "isAuthenticated": {"type": "boolean"},
                "isLoading": {"type": "boolean"},
                "user": {"$ref": "#/definitions/model.User"}
            }
        },
        "handler.SendMessageRequest": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "handler.MessagesResponse": {
            "type": "object",
            "properties": {"messages": {"type": "array", "items": {"$ref": "#/definitions/model.ChatMessage"}}}
        },
        "model.ChatMessage": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "role": {"type": "string"},
                "content": {"type": "string"},
                "timestamp": {"type": "integer"}
            }
        },
        "model.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "district": {"type": "string"},
                "farmSize": {"type": "string"},
                "experience": {"type": "string"},
                "language": {"type": "string"},
                "farmType": {"type": "string"},
                "mainCrops": {"type": "array", "items": {"type": "string"}},
                "address": {"type": "string"},
                "notifications": {"type": "boolean"},
                "weatherAlerts": {"type": "boolean"},
                "marketUpdates": {"type": "boolean"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Karnataka Krishi API",
	Description:      "Farmer accounts, session state, protected views and the crop assistant.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

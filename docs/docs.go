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
        "/auth/login": {"post": {"summary": "Log in with CPF and password", "tags": ["auth"], "responses": {"200": {"description": "token, role and requireNewPassword"}, "401": {"description": "invalid credentials"}}}},
        "/users": {"post": {"summary": "Register a user (admin)", "tags": ["users"], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "created"}, "409": {"description": "duplicate cpf, email or enrollment"}}}},
        "/users/{id}": {
            "get": {"summary": "Get a user (self or staff)", "tags": ["users"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "user"}}},
            "put": {"summary": "Update contact data (self or admin)", "tags": ["users"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "user"}}}
        },
        "/users/{id}/password": {"put": {"summary": "Change own password", "tags": ["users"], "security": [{"BearerAuth": []}], "responses": {"204": {"description": "changed"}}}},
        "/announcements": {
            "get": {"summary": "List announcements, newest first", "tags": ["announcements"], "responses": {"200": {"description": "summaries"}}},
            "post": {"summary": "Create an announcement (admin)", "tags": ["announcements"], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "created"}, "400": {"description": "invalid definition"}}}
        },
        "/announcements/closed": {"get": {"summary": "Announcements whose enrollment ended and are not finalized", "tags": ["announcements"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "announcements"}}}},
        "/announcements/validate-formula": {"post": {"summary": "Check a formula against question identifiers", "tags": ["announcements"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "valid"}, "400": {"description": "rejected"}}}},
        "/announcements/{id}": {
            "get": {"summary": "Get an announcement", "tags": ["announcements"], "responses": {"200": {"description": "announcement"}}},
            "put": {"summary": "Update an announcement (admin)", "tags": ["announcements"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "announcement"}}},
            "delete": {"summary": "Delete an announcement (admin)", "tags": ["announcements"], "security": [{"BearerAuth": []}], "responses": {"204": {"description": "deleted"}}}
        },
        "/announcements/{id}/maximum-score": {"get": {"summary": "Maximum attainable score, null when unavailable", "tags": ["announcements"], "responses": {"200": {"description": "score"}}}},
        "/announcements/{id}/finalize": {"post": {"summary": "Rank evaluated applications and approve the top ones (admin)", "tags": ["announcements"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "result"}, "409": {"description": "already finalized"}}}},
        "/announcements/{id}/ranking": {"get": {"summary": "Live ranking (staff)", "tags": ["announcements"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "entries"}}}},
        "/applications/available": {"get": {"summary": "Announcements open for enrollment", "tags": ["applications"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "announcements"}}}},
        "/applications": {"post": {"summary": "Submit an application (student)", "tags": ["applications"], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "application"}, "422": {"description": "enrollment closed"}}}},
        "/applications/import-documents": {"post": {"summary": "Match approved documents against required types", "tags": ["applications"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "imported and missing"}}}},
        "/applications/mine": {"get": {"summary": "Own applications, optionally by status", "tags": ["applications"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "applications"}}}},
        "/applications/{id}": {"delete": {"summary": "Cancel a pending application", "tags": ["applications"], "security": [{"BearerAuth": []}], "responses": {"204": {"description": "cancelled"}}}},
        "/review/pending": {"get": {"summary": "Pending applications with maximum score", "tags": ["review"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "pending"}}}},
        "/review/{id}": {"get": {"summary": "Application with its announcement", "tags": ["review"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "review view"}}}},
        "/review/{id}/evaluate": {"post": {"summary": "Record reviewer weights and rescore", "tags": ["review"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "application"}}}},
        "/documents": {
            "get": {"summary": "Documents of a user", "tags": ["documents"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "documents"}}},
            "post": {"summary": "Upload a document (multipart file, type)", "tags": ["documents"], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "document"}}}
        },
        "/documents/submitted": {"get": {"summary": "Documents awaiting review", "tags": ["documents"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "documents"}}}},
        "/documents/{id}/content": {"get": {"summary": "Stream the stored file", "tags": ["documents"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "file"}}}},
        "/documents/{id}/status": {"post": {"summary": "Approve or reject a document", "tags": ["documents"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "document"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Bolsas API",
	Description:      "Student financial-aid portal: announcements, applications, review and scoring",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
